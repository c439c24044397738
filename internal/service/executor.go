package service

import (
	"context"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/llm"
)

// Invocation es la unidad de trabajo efimera que recibe un executor.
type Invocation struct {
	SessionID     string
	UserID        string
	Tool          domain.Tool
	UserText      string
	Language      string
	Reason        string
	History       []llm.ChatMessage
	MemoryContext string
	Topic         string
}

// ExecResult es el mensaje del asistente ya ensamblado por el executor.
type ExecResult struct {
	Content  string
	Metadata *domain.MessageMetadata
}

// ToolExecutor implementa la logica de generacion de un tool. Puede emitir
// tokens y metadata parciales por el sink; el terminal lo emite el
// supervisor. Los errores devueltos se clasifican con ClassifyUpstreamError.
type ToolExecutor interface {
	Execute(ctx context.Context, inv Invocation, sink *EventSink) (ExecResult, error)
}
