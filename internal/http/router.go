package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forum-account/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	userH *UserHandler,
	healthH *HealthHandler,
	jwtSvc *service.JWTService,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", healthH.Check)

	public := r.Group("/user")
	public.POST("/register", userH.Register)
	public.POST("/login", userH.Login)
	public.PUT("/forgot/:email", userH.ForgotPassword)

	authed := r.Group("/user", JWTAuthMiddleware(jwtSvc))
	authed.GET("", userH.GetUser)
	authed.PUT("", userH.UpdateUser)

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
			zap.String("path", c.FullPath()),
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
