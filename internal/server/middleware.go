package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/session"
)

const (
	// SessionHeader carries the session ID in requests and responses.
	SessionHeader = "X-Session-ID"
	// SessionCookie is the cookie fallback for browsers.
	SessionCookie = "session_id"

	sessionKey = "session"
)

// withSession resolves the caller's session from the header or cookie,
// creating one when absent or unknown, and echoes its ID back.
func (s *Server) withSession(c *gin.Context) {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id, _ = c.Cookie(SessionCookie)
	}

	sess, created := s.deps.Sessions.Get(id)
	if created {
		s.logger.Debug("Session created", logging.F(logging.FieldSession, sess.ID))
	}

	c.Header(SessionHeader, sess.ID)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sess.ID, 0, "/", "", false, true)
	c.Set(sessionKey, sess)
	c.Next()
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// requestLogger logs one line per request through the application logger.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logging.Field{
			logging.F("method", c.Request.Method),
			logging.F("path", c.Request.URL.Path),
			logging.F(logging.FieldStatus, c.Writer.Status()),
			logging.F(logging.FieldDuration, time.Since(start).String()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.F(logging.FieldError, c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("Request failed", fields...)
		case c.Request.URL.Path == "/healthz":
			logger.Debug("Request handled", fields...)
		default:
			logger.Info("Request handled", fields...)
		}
	}
}
