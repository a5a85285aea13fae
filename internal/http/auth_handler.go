package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vexara-llm/internal/identity"
	"vexara-llm/internal/service"
)

// AuthHandler expone el ciclo de vida de identidad: guest login, logout y
// consulta de la identidad actual.
type AuthHandler struct {
	logger   *zap.Logger
	tokens   *service.SessionTokenService
	resolver *identity.Resolver
}

func NewAuthHandler(logger *zap.Logger, tokens *service.SessionTokenService, resolver *identity.Resolver) *AuthHandler {
	return &AuthHandler{logger: logger, tokens: tokens, resolver: resolver}
}

// GuestLogin maneja POST /auth/guest: descarta la sesión actual y acuña una
// identidad guest nueva de forma incondicional.
func (h *AuthHandler) GuestLogin(c *gin.Context) {
	signed, sessionID, err := h.tokens.Issue()
	if err != nil {
		h.logger.Error("issue session token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start guest session"})
		return
	}

	userID, err := h.resolver.BindGuest(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("bind guest identity failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start guest session"})
		return
	}

	setSessionCookie(c, signed, int(h.tokens.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"status": "success", "user_id": userID})
}

// Logout maneja POST /auth/logout: borra la identidad ligada y expira la cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.resolver.Clear(c.Request.Context(), currentSessionID(c)); err != nil {
		h.logger.Warn("clear identity failed", zap.Error(err))
	}
	setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Me maneja GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": currentUserID(c)})
}
