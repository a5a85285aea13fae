package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vexara-llm/internal/identity"
	"vexara-llm/internal/service"
)

const (
	sessionCookieName = "vexara_session"
	sessionIDKey      = "session_id"
	userIDKey         = "user_id"

	// Header opcional con el que un caller externo aporta su propio token
	// de identidad; se adopta solo si la sesión no tiene una ya ligada.
	clientTokenHeader = "X-Client-Token"
)

// SessionMiddleware asegura que cada request tenga una sesión firmada y una
// identidad de usuario resuelta, y las deja en el contexto de gin. La
// identidad fluye desde acá como argumento explícito; ningún handler muta
// estado de sesión por fuera de bind/clear.
func SessionMiddleware(logger *zap.Logger, tokens *service.SessionTokenService, resolver *identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := ""
		if cookie, err := c.Cookie(sessionCookieName); err == nil {
			if sid, err := tokens.Parse(cookie); err == nil {
				sessionID = sid
			}
		}

		if sessionID == "" {
			signed, sid, err := tokens.Issue()
			if err != nil {
				logger.Error("issue session token failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
				c.Abort()
				return
			}
			setSessionCookie(c, signed, int(tokens.TTL().Seconds()))
			sessionID = sid
		}

		userID, err := resolver.Resolve(c.Request.Context(), sessionID, c.GetHeader(clientTokenHeader))
		if err != nil {
			logger.Error("resolve identity failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
			c.Abort()
			return
		}

		c.Set(sessionIDKey, sessionID)
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, value, maxAge, "/", "", false, true)
}

// currentUserID devuelve la identidad resuelta para el request.
func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// currentSessionID devuelve el id de sesión del request.
func currentSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
