package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"makan-match/internal/service"
)

// SessionHandler guarda respuestas parciales y calcula el resultado al final.
type SessionHandler struct {
	logger  *zap.Logger
	quiz    *service.QuizService
	store   service.ResponseStore
	limiter service.QuizRateLimiter
}

func NewSessionHandler(
	logger *zap.Logger,
	quiz *service.QuizService,
	store service.ResponseStore,
	limiter service.QuizRateLimiter,
) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		logger:  logger,
		quiz:    quiz,
		store:   store,
		limiter: limiter,
	}
}

// CreateSession maneja POST /session.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	if !allowRequest(c, h.logger, h.limiter, service.RateActionSession) {
		return
	}
	session, err := h.store.Create(c.Request.Context())
	if err != nil {
		h.logger.Error("create quiz session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session_id": session.ID, "expires_at": session.ExpiresAt})
}

// GetSession maneja GET /session/:id.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// SaveAnswer maneja PUT /session/:id/answers.
func (h *SessionHandler) SaveAnswer(c *gin.Context) {
	var req struct {
		QuestionID string `json:"question_id" binding:"required"`
		AnswerID   string `json:"answer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid answer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.quiz.ValidateAnswer(req.QuestionID, req.AnswerID); err != nil {
		if errors.Is(err, service.ErrUnknownAnswer) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("validate answer failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save answer"})
		return
	}

	session, err := h.store.Answer(c.Request.Context(), c.Param("id"), req.QuestionID, req.AnswerID)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// SubmitSession maneja POST /session/:id/result. La sesion se borra al resolver.
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	var req struct {
		Strategy string `json:"strategy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("invalid session result request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if !allowRequest(c, h.logger, h.limiter, service.RateActionSubmit) {
		return
	}

	ctx := c.Request.Context()
	sessionID := c.Param("id")
	session, err := h.store.Get(ctx, sessionID)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	result, err := h.quiz.Submit(ctx, session.Responses, req.Strategy)
	if err != nil {
		writeSubmitError(c, h.logger, err)
		return
	}
	if err := h.store.Delete(ctx, sessionID); err != nil {
		h.logger.Warn("delete quiz session failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	h.logger.Error("quiz session store failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "session store unavailable"})
}
