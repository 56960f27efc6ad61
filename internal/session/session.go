// Package session wires the fiber session store and keeps the per-request
// session in the request locals, together with flash notices.
package session

import (
	"encoding/json"
	"quizbox/internal/config"
	"quizbox/internal/domain"
	"quizbox/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

const (
	localsKey = "session"
	flashKey  = "flash"
)

// Flash kinds understood by the layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a notice shown once, on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewStore creates the session store. storage may be nil, in which case
// fiber keeps sessions in process memory.
func NewStore(cfg config.SessionConfig, storage fiber.Storage) *session.Store {
	return session.New(session.Config{
		Expiration:     cfg.Expiration,
		Storage:        storage,
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
}

// Middleware loads the session once per request and saves it after the rest
// of the chain has run, also when the chain returned an error, so notices
// queued before a failure reach the next page. The session must not be used
// by the error handler.
func Middleware(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return domain.NewCacheError("failed to load session", err)
		}
		c.Locals(localsKey, sess)

		chainErr := c.Next()

		c.Locals(localsKey, nil)
		if err := sess.Save(); err != nil {
			logger.Get().Error("Failed to save session", zap.Error(err), zap.String("path", c.Path()))
			if chainErr == nil {
				return domain.NewCacheError("failed to save session", err)
			}
		}
		return chainErr
	}
}

// From returns the session loaded by Middleware, or nil outside of it.
func From(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(localsKey).(*session.Session)
	return sess
}

// ID returns the id of the current session, or "" outside of Middleware.
func ID(c *fiber.Ctx) string {
	if sess := From(c); sess != nil {
		return sess.ID()
	}
	return ""
}

// AddFlash queues a notice for the next rendered page.
func AddFlash(c *fiber.Ctx, kind, message string) {
	sess := From(c)
	if sess == nil {
		logger.Get().Warn("Flash dropped, no session on request", zap.String("message", message))
		return
	}
	flashes := append(readFlashes(sess), Flash{Kind: kind, Message: message})
	data, err := json.Marshal(flashes)
	if err != nil {
		logger.Get().Error("Failed to encode flash", zap.Error(err))
		return
	}
	sess.Set(flashKey, string(data))
}

// PopFlashes returns the queued notices and clears them.
func PopFlashes(c *fiber.Ctx) []Flash {
	sess := From(c)
	if sess == nil {
		return nil
	}
	flashes := readFlashes(sess)
	if len(flashes) > 0 {
		sess.Delete(flashKey)
	}
	return flashes
}

func readFlashes(sess *session.Session) []Flash {
	raw, ok := sess.Get(flashKey).(string)
	if !ok || raw == "" {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		logger.Get().Warn("Discarding unreadable flash data", zap.Error(err))
		return nil
	}
	return flashes
}
