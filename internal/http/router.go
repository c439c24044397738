package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-tutor/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	verifier *service.TokenVerifier,
	chatH *ChatHandler,
	sessionH *SessionHandler,
	imageH *ImageHandler,
	healthH *HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y CORS.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware())

	r.GET("/health", healthH.Health)

	// La identidad es opcional: sin token el caller es anonimo, con token
	// invalido se rechaza.
	authed := r.Group("", OptionalAuthMiddleware(verifier))
	authed.POST("/chat", chatH.Chat)
	authed.POST("/generate-image", imageH.GenerateImage)
	authed.GET("/sessions", sessionH.ListSessions)
	authed.GET("/sessions/:id/messages", sessionH.GetMessages)
	authed.DELETE("/sessions/:id", sessionH.DeleteSession)
	authed.POST("/feedback", sessionH.Feedback)
	authed.GET("/memory/context/:user_id", sessionH.MemoryContext)

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

// corsMiddleware permite el acceso desde el frontend web.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
