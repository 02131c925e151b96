package middleware

import (
	"errors"
	"time"

	"sportshop/internal/models"
	"sportshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	identityKey = "identity"
	// SessionUserKey is the session field holding the logged-in user id.
	SessionUserKey = "user_id"
	// SessionCookie is the name of the session cookie.
	SessionCookie = "sportshop_session"
)

// NewSessionStore creates the cookie-backed session store shared by guests
// and logged-in users.
func NewSessionStore(expiration time.Duration) *session.Store {
	return session.New(session.Config{
		Expiration:     expiration,
		KeyLookup:      "cookie:" + SessionCookie,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		KeyGenerator:   uuid.NewString,
	})
}

// Identify resolves who the request acts as and stores it for GetIdentity.
// A bearer token wins over the session cookie; a request with neither gets a
// fresh guest session.
func Identify(authService *services.AuthService, store *session.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := bearerIdentity(c, authService)
		if ok {
			if err != nil {
				if errors.Is(err, models.ErrUnauthorized) {
					return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
						"message": "Invalid or expired token",
						"error":   err.Error(),
					})
				}
				logger.Error("token identity lookup failed", zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Internal server error",
				})
			}
			c.Locals(identityKey, id)
			return c.Next()
		}

		id, err = sessionIdentity(c, authService, store)
		if err != nil {
			logger.Error("session lookup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
			})
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

func sessionIdentity(c *fiber.Ctx, authService *services.AuthService, store *session.Store) (models.Identity, error) {
	sess, err := store.Get(c)
	if err != nil {
		return models.Identity{}, err
	}
	// Save releases the session, so read everything first.
	sid := sess.ID()
	fresh := sess.Fresh()

	if uid, ok := sess.Get(SessionUserKey).(uint); ok {
		user, err := authService.GetUser(c.UserContext(), uid)
		switch {
		case err == nil:
			return models.UserIdentity(user.ID, user.IsAdmin), nil
		case errors.Is(err, models.ErrUserNotFound):
			// Account deleted while logged in: continue as a guest.
			sess.Delete(SessionUserKey)
			return models.GuestIdentity(sid), sess.Save()
		default:
			return models.Identity{}, err
		}
	}

	if fresh {
		// Persist the new session so the cookie is issued.
		if err := sess.Save(); err != nil {
			return models.Identity{}, err
		}
	}
	return models.GuestIdentity(sid), nil
}

// GetIdentity returns the identity resolved by Identify. Requests that did
// not pass through it are treated as an anonymous guest.
func GetIdentity(c *fiber.Ctx) models.Identity {
	if id, ok := c.Locals(identityKey).(models.Identity); ok {
		return id
	}
	return models.GuestIdentity("")
}

// Login rebinds the session to user under a new id.
func Login(c *fiber.Ctx, store *session.Store, user *models.User) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(SessionUserKey, user.ID)
	return sess.Save()
}

// Logout destroys the session; the next request starts a new guest session.
func Logout(c *fiber.Ctx, store *session.Store) error {
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
