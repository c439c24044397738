package service

import (
	"context"
	"fmt"
	"strings"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/llm"
	"ai-tutor/internal/repository"
)

// ContextService define contrato para recuperar el historial conversacional.
type ContextService interface {
	GetHistory(ctx context.Context, sessionID string, limit int) ([]llm.ChatMessage, error)
}

// BasicContextService obtiene los ultimos mensajes de la sesion y los
// convierte al formato que espera el LLM.
type BasicContextService struct {
	messageRepo repository.MessageRepository
}

func NewBasicContextService(messageRepo repository.MessageRepository) *BasicContextService {
	return &BasicContextService{messageRepo: messageRepo}
}

func (s *BasicContextService) GetHistory(ctx context.Context, sessionID string, limit int) ([]llm.ChatMessage, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	messages, err := s.messageRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	history := make([]llm.ChatMessage, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == domain.RoleAssistant {
			role = "assistant"
		}
		history = append(history, llm.ChatMessage{Role: role, Content: m.Content})
	}
	return history, nil
}
