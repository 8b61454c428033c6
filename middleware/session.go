package middleware

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quickpoll-backend/repository"
)

const (
	// SessionHeader carries the anonymous session identity.
	SessionHeader = "X-Session-Id"

	sessionKey = "sessionID"
)

// Session resolves the caller's session id from the request header, minting
// a fresh one when absent. Minted ids are echoed back in the response header
// so the client can persist them. The session row is upserted best-effort;
// a storage hiccup must not fail the request itself.
func Session(sessions *repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
			c.Header(SessionHeader, sessionID)
		}

		if err := sessions.Ensure(c.Request.Context(), sessionID); err != nil {
			log.Printf("failed to persist session %s: %v", sessionID, err)
		}

		c.Set(sessionKey, sessionID)
		c.Next()
	}
}

// SessionID returns the session id resolved by the Session middleware.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
