package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/newsreel/internal/studio"
	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/mohammad-safakhou/newsreel/session"
)

const (
	sessionCookie = "newsreel_session"
	sessionKey    = "studio_session"
)

// withSession resolves the operator session from its cookie, creating one when needed.
func withSession(store session.Store, ttl time.Duration) echo.MiddlewareFunc {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if ck, err := c.Cookie(sessionCookie); err == nil {
				id = ck.Value
			}
			sess, err := store.EnsureSession(id, ttl)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			if sess.ID() != id {
				c.SetCookie(&http.Cookie{
					Name:     sessionCookie,
					Value:    sess.ID(),
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

// existingSession resolves the session from its cookie and never creates one.
func existingSession(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(sessionCookie)
			if err != nil {
				return echo.NewHTTPError(http.StatusNotFound, "no studio session")
			}
			sess, err := store.GetSession(ck.Value)
			if errors.Is(err, models.ErrSessionNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "no studio session")
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

func currentSession(c echo.Context) *studio.Session {
	return c.Get(sessionKey).(*studio.Session)
}
