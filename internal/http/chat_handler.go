package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/service"
)

// ChatHandler expone el endpoint de conversacion con respuesta streaming.
type ChatHandler struct {
	logger     *zap.Logger
	supervisor *service.Supervisor
}

func NewChatHandler(logger *zap.Logger, supervisor *service.Supervisor) *ChatHandler {
	return &ChatHandler{logger: logger, supervisor: supervisor}
}

// Chat maneja POST /chat. Valida y arranca la pipeline; si pasa la
// validacion, la respuesta es un stream SSE de eventos ordenados que cierra
// siempre con una linea done.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req struct {
		Message   string `json:"message"`
		ThreadID  string `json:"thread_id"`
		SessionID string `json:"session_id"`
		Language  string `json:"language"`
		UserID    string `json:"user_id"`
		Tool      string `json:"tool"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	input := service.ChatInput{
		Message:   req.Message,
		ThreadID:  req.ThreadID,
		SessionID: req.SessionID,
		Language:  req.Language,
		UserID:    req.UserID,
		Tool:      req.Tool,
	}
	// La identidad verificada pisa lo que el body declare.
	if claims, ok := GetAuthClaims(c); ok {
		input.UserID = claims.UserID
	}

	sink, err := h.supervisor.HandleMessage(c.Request.Context(), input)
	if err != nil {
		var toolErr *domain.ToolError
		if errors.As(err, &toolErr) {
			status := http.StatusInternalServerError
			switch toolErr.Kind {
			case domain.ErrKindValidation:
				status = http.StatusBadRequest
			case domain.ErrKindRateLimited:
				status = http.StatusTooManyRequests
			}
			c.JSON(status, gin.H{"error": toolErr.Message})
			return
		}
		h.logger.Error("chat start failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start chat"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	for ev := range sink.Events() {
		for _, line := range wireLines(ev) {
			h.writeEventLine(c, line)
		}
	}
}

// wireLines traduce un StreamEvent a las lineas JSON del protocolo. Un
// terminal de error se escribe como su linea de error seguida de done, de
// modo que el cliente siempre puede cerrar al ver done.
func wireLines(ev domain.StreamEvent) []gin.H {
	switch ev.Type {
	case domain.EventRouting:
		return []gin.H{{"status": "routing", "tool": ev.Tool, "reason": ev.Reason}}
	case domain.EventGenerating:
		return []gin.H{{"status": "generating"}}
	case domain.EventToken:
		return []gin.H{{"token": ev.Token}}
	case domain.EventMetadata:
		return []gin.H{{"metadata": ev.Metadata}}
	case domain.EventError:
		errorLine := gin.H{"error": ev.Err.Message, "kind": ev.Err.Kind}
		return []gin.H{errorLine, {"done": true}}
	case domain.EventDone:
		doneLine := gin.H{"done": true, "tool_used": ev.Tool}
		if ev.Metadata != nil && len(ev.Metadata.Slides) > 0 {
			doneLine["slideData"] = ev.Metadata.Slides
		}
		return []gin.H{doneLine}
	default:
		return nil
	}
}

func (h *ChatHandler) writeEventLine(c *gin.Context, line gin.H) {
	payload, err := json.Marshal(line)
	if err != nil {
		h.logger.Error("marshal stream event failed", zap.Error(err))
		return
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
		// Caller desconectado; el sink se drena igual hasta el terminal.
		return
	}
	c.Writer.Flush()
}
