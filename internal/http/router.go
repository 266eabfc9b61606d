package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas del quiz.
// metrics puede ser nil; en ese caso /metrics no se expone.
func NewRouter(
	logger *zap.Logger,
	quizH *QuizHandler,
	sessionH *SessionHandler,
	metrics http.Handler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", quizH.Health)
	r.GET("/questions", quizH.ListQuestions)

	dishes := r.Group("/dishes")
	dishes.GET("", quizH.ListDishes)
	dishes.GET("/:id", quizH.GetDish)
	dishes.GET("/:id/pairings", quizH.GetPairings)

	r.POST("/result", quizH.SubmitResult)

	session := r.Group("/session")
	session.POST("", sessionH.CreateSession)
	session.GET("/:id", sessionH.GetSession)
	session.PUT("/:id/answers", sessionH.SaveAnswer)
	session.POST("/:id/result", sessionH.SubmitSession)

	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}
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
