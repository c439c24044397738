package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-tutor/internal/repository"
	"ai-tutor/internal/service"
)

// SessionHandler expone la lectura y administracion de sesiones, el feedback
// por mensaje y la consulta de memoria del estudiante.
type SessionHandler struct {
	logger   *zap.Logger
	sessions repository.SessionRepository
	messages repository.MessageRepository
	memory   *service.MemoryService
}

func NewSessionHandler(
	logger *zap.Logger,
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	memory *service.MemoryService,
) *SessionHandler {
	return &SessionHandler{
		logger:   logger,
		sessions: sessions,
		messages: messages,
		memory:   memory,
	}
}

// ListSessions maneja GET /sessions.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if claims, ok := GetAuthClaims(c); ok {
		userID = claims.UserID
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	sessions, err := h.sessions.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list sessions failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetMessages maneja GET /sessions/:id/messages.
func (h *SessionHandler) GetMessages(c *gin.Context) {
	sessionID := c.Param("id")

	messages, err := h.messages.ListBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("list messages failed", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// DeleteSession maneja DELETE /sessions/:id. Borra la sesion y todos sus
// mensajes en una sola transaccion.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.sessions.Delete(c.Request.Context(), sessionID); err != nil {
		h.logger.Error("delete session failed", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Feedback maneja POST /feedback. El flag helpful se fija a lo sumo una vez
// por mensaje.
func (h *SessionHandler) Feedback(c *gin.Context) {
	var req struct {
		MessageID string `json:"message_id" binding:"required"`
		Helpful   *bool  `json:"helpful" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid feedback request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.messages.SetHelpful(c.Request.Context(), req.MessageID, *req.Helpful)
	if err != nil {
		if errors.Is(err, repository.ErrHelpfulAlreadySet) {
			c.JSON(http.StatusConflict, gin.H{"error": "feedback already recorded"})
			return
		}
		h.logger.Error("set helpful failed", zap.String("message_id", req.MessageID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recorded": true})
}

// MemoryContext maneja GET /memory/context/:user_id. Devuelve el bloque de
// memoria que el tutor inyectaria para la consulta dada.
func (h *SessionHandler) MemoryContext(c *gin.Context) {
	userID := c.Param("user_id")
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	context := h.memory.RecallContext(c.Request.Context(), userID, query, 5)
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "context": context})
}
