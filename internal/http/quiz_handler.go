package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"makan-match/internal/domain"
	"makan-match/internal/service"
)

// QuizHandler expone el catalogo y el calculo del resultado sin sesion.
type QuizHandler struct {
	logger  *zap.Logger
	quiz    *service.QuizService
	limiter service.QuizRateLimiter
}

// NewQuizHandler crea el handler; limiter nil deja pasar todos los envios.
func NewQuizHandler(logger *zap.Logger, quiz *service.QuizService, limiter service.QuizRateLimiter) *QuizHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizHandler{
		logger:  logger,
		quiz:    quiz,
		limiter: limiter,
	}
}

// Health maneja GET /healthz.
func (h *QuizHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"strategy": h.quiz.Strategy(),
		"dishes":   len(h.quiz.Dishes()),
	})
}

// ListQuestions maneja GET /questions.
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.quiz.Questions()})
}

// ListDishes maneja GET /dishes.
func (h *QuizHandler) ListDishes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dishes": h.quiz.Dishes()})
}

// GetDish maneja GET /dishes/:id.
func (h *QuizHandler) GetDish(c *gin.Context) {
	id := c.Param("id")
	dish, err := h.quiz.Dish(id)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}
	paired, err := h.quiz.PairedDishes(id)
	if err != nil {
		h.writeLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dish": dish, "paired_dishes": paired})
}

// GetPairings maneja GET /dishes/:id/pairings.
func (h *QuizHandler) GetPairings(c *gin.Context) {
	dish, err := h.quiz.Dish(c.Param("id"))
	if err != nil {
		h.writeLookupError(c, err)
		return
	}
	resp := gin.H{"dish_id": dish.ID, "pairings": pairingsOrEmpty(dish.PairedWith)}
	if best, info, ok := h.quiz.Catalog().BestPairing(dish.ID); ok {
		resp["best"] = gin.H{"dish": best, "pairing": info}
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitResult maneja POST /result.
func (h *QuizHandler) SubmitResult(c *gin.Context) {
	var req struct {
		Responses domain.UserResponseSet `json:"responses"`
		Strategy  string                 `json:"strategy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid result request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !allowRequest(c, h.logger, h.limiter, service.RateActionSubmit) {
		return
	}

	result, err := h.quiz.Submit(c.Request.Context(), req.Responses, req.Strategy)
	if err != nil {
		writeSubmitError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrDishNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "dish not found"})
		return
	}
	h.logger.Error("dish lookup failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load dish"})
}

func writeSubmitError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownStrategy):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("submit quiz failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute result"})
	}
}

// allowRequest consulta el limiter y responde 429 con Retry-After si corresponde.
// Si el limiter falla se registra y se deja pasar.
func allowRequest(c *gin.Context, logger *zap.Logger, limiter service.QuizRateLimiter, action service.RateAction) bool {
	if limiter == nil {
		return true
	}
	decision, err := limiter.Allow(c.Request.Context(), action, c.ClientIP())
	if err != nil {
		logger.Warn("rate limiter unavailable", zap.String("action", string(action)), zap.Error(err))
		return true
	}
	if decision.Allowed {
		return true
	}
	retry := int(math.Ceil(decision.RetryAfter.Seconds()))
	if retry < 1 {
		retry = 1
	}
	c.Header("Retry-After", strconv.Itoa(retry))
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests", "retry_after_seconds": retry})
	return false
}

func pairingsOrEmpty(p []domain.PairedWith) []domain.PairedWith {
	if p == nil {
		return []domain.PairedWith{}
	}
	return p
}
