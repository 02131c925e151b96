// Package imagehost signs direct browser uploads to the image CDN.
package imagehost

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Defaults for product image uploads.
const (
	DefaultFolder       = "sportmaroc"
	DefaultUploadPreset = "sportmaroc_uploads"
)

// ErrNotConfigured is returned when no API secret is set.
var ErrNotConfigured = errors.New("image host is not configured")

// Config holds the CDN account credentials.
type Config struct {
	CloudName    string
	APIKey       string
	APISecret    string
	Folder       string
	UploadPreset string
}

// UploadSignature is what the browser needs to upload directly to the CDN.
type UploadSignature struct {
	Signature    string `json:"signature"`
	Timestamp    int64  `json:"timestamp"`
	CloudName    string `json:"cloudName"`
	APIKey       string `json:"apiKey"`
	Folder       string `json:"folder"`
	UploadPreset string `json:"uploadPreset"`
}

// Signer produces upload signatures.
type Signer struct {
	cfg Config
	now func() time.Time
}

// NewSigner creates a new Signer, filling in the default folder and preset.
func NewSigner(cfg Config) *Signer {
	if cfg.Folder == "" {
		cfg.Folder = DefaultFolder
	}
	if cfg.UploadPreset == "" {
		cfg.UploadPreset = DefaultUploadPreset
	}
	return &Signer{cfg: cfg, now: time.Now}
}

// Sign returns a signature valid for the current second.
func (s *Signer) Sign() (*UploadSignature, error) {
	if s.cfg.APISecret == "" {
		return nil, ErrNotConfigured
	}
	ts := s.now().Unix()
	sig := SignParams(map[string]string{
		"timestamp":     strconv.FormatInt(ts, 10),
		"folder":        s.cfg.Folder,
		"upload_preset": s.cfg.UploadPreset,
	}, s.cfg.APISecret)

	return &UploadSignature{
		Signature:    sig,
		Timestamp:    ts,
		CloudName:    s.cfg.CloudName,
		APIKey:       s.cfg.APIKey,
		Folder:       s.cfg.Folder,
		UploadPreset: s.cfg.UploadPreset,
	}, nil
}

// SignParams joins the non-empty params as sorted key=value pairs with '&',
// appends the secret and returns the hex SHA-1 digest.
func SignParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
