package middleware

import (
	"net/http"
	"time"

	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/ds124wfegd/autotagger/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	SessionKey   = "session"
	SessionIDKey = "session_id"
)

type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session loads the caller's session from its cookie, creating one when the
// cookie is missing or points at a purged session.
func Session(sessions service.SessionService, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(opts.CookieName)

		session, created := sessions.Session(id, c.GetHeader("Accept-Language"))
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(opts.CookieName, session.ID, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
		}

		c.Set(SessionKey, session)
		c.Set(SessionIDKey, session.ID)
		c.Next()
	}
}

func CurrentSession(c *gin.Context) *entity.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*entity.Session)
	return session
}
