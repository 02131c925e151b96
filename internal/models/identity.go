package models

import (
	"fmt"
	"strconv"
)

// IdentityKind tags the variant held by an Identity.
type IdentityKind int

const (
	KindGuest IdentityKind = iota
	KindUser
)

// Identity is who a request acts as: a guest browser session or an
// authenticated user. Build it with GuestIdentity or UserIdentity.
type Identity struct {
	Kind      IdentityKind
	SessionID string
	UserID    uint
	IsAdmin   bool
}

// GuestIdentity returns the identity of an anonymous session.
func GuestIdentity(sessionID string) Identity {
	return Identity{Kind: KindGuest, SessionID: sessionID}
}

// UserIdentity returns the identity of an authenticated user.
func UserIdentity(userID uint, isAdmin bool) Identity {
	return Identity{Kind: KindUser, UserID: userID, IsAdmin: isAdmin}
}

func (id Identity) IsGuest() bool { return id.Kind == KindGuest }

func (id Identity) IsUser() bool { return id.Kind == KindUser }

// CartKey is the storage key under which this identity's cart lives.
func (id Identity) CartKey() string {
	if id.IsUser() {
		return "user:" + strconv.FormatUint(uint64(id.UserID), 10)
	}
	return "guest:" + id.SessionID
}

// RequireUser fails with ErrUnauthorized for guests.
func (id Identity) RequireUser() error {
	if !id.IsUser() {
		return ErrUnauthorized
	}
	return nil
}

// RequireAdmin fails with ErrUnauthorized for guests and ErrForbidden for
// authenticated non-admins.
func (id Identity) RequireAdmin() error {
	if err := id.RequireUser(); err != nil {
		return err
	}
	if !id.IsAdmin {
		return ErrForbidden
	}
	return nil
}

func (id Identity) String() string {
	if id.IsUser() {
		return fmt.Sprintf("user(%d, admin=%t)", id.UserID, id.IsAdmin)
	}
	return fmt.Sprintf("guest(%s)", id.SessionID)
}
