package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vexara-llm/internal/identity"
	"vexara-llm/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	tokens *service.SessionTokenService,
	resolver *identity.Resolver,
	chatH *ChatHandler,
	authH *AuthHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(
		zapLoggerMiddleware(logger),
		gin.Recovery(),
		jsonContentTypeMiddleware(),
		SessionMiddleware(logger, tokens, resolver),
	)

	r.POST("/ask", chatH.Ask)

	chats := r.Group("/chats")
	chats.POST("", chatH.StartNewChat)
	chats.GET("", chatH.ListChats)
	chats.GET("/:chat_id/messages", chatH.GetChatMessages)
	chats.POST("/clear", chatH.ClearAllChats)

	auth := r.Group("/auth")
	auth.POST("/guest", authH.GuestLogin)
	auth.POST("/logout", authH.Logout)
	auth.GET("/me", authH.Me)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
