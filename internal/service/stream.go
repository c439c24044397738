package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"ai-tutor/internal/domain"
)

// ErrStreamClosed indica que se intento emitir despues del evento terminal.
var ErrStreamClosed = errors.New("stream already closed")

// EventSink es el canal ordenado de StreamEvents de una invocacion hacia el
// caller. Garantiza exactamente un evento terminal (error XOR done) y
// descarta con warning cualquier emision posterior. Esta pensado para un
// unico productor (la pipeline del supervisor es secuencial).
type EventSink struct {
	ctx    context.Context
	logger *zap.Logger
	events chan domain.StreamEvent

	mu         sync.Mutex
	terminated bool
	closeOnce  sync.Once
}

// NewEventSink crea el sink atado al contexto del request: si el caller se
// desconecta, las emisiones pendientes se abortan.
func NewEventSink(ctx context.Context, logger *zap.Logger) *EventSink {
	return &EventSink{
		ctx:    ctx,
		logger: logger,
		events: make(chan domain.StreamEvent, 64),
	}
}

// Events expone el canal de consumo. Se cierra tras el evento terminal.
func (s *EventSink) Events() <-chan domain.StreamEvent {
	return s.events
}

func (s *EventSink) Routing(tool domain.Tool, reason string) error {
	return s.send(domain.StreamEvent{Type: domain.EventRouting, Tool: tool, Reason: reason})
}

func (s *EventSink) Generating() error {
	return s.send(domain.StreamEvent{Type: domain.EventGenerating})
}

func (s *EventSink) Token(token string) error {
	return s.send(domain.StreamEvent{Type: domain.EventToken, Token: token})
}

func (s *EventSink) Metadata(metadata *domain.MessageMetadata) error {
	return s.send(domain.StreamEvent{Type: domain.EventMetadata, Metadata: metadata})
}

// Fail emite el terminal de error. Idempotente frente a dobles terminales.
func (s *EventSink) Fail(toolErr *domain.ToolError) {
	_ = s.send(domain.StreamEvent{Type: domain.EventError, Err: toolErr})
}

// Done emite el terminal exitoso con la metadata final del mensaje.
func (s *EventSink) Done(tool domain.Tool, metadata *domain.MessageMetadata) {
	_ = s.send(domain.StreamEvent{Type: domain.EventDone, Tool: tool, Metadata: metadata})
}

// Close marca el stream como terminado y cierra el canal para liberar al
// consumidor. Es el respaldo cuando el caller se desconecta a mitad de
// stream y nunca llega un terminal; tras un terminal normal es un no-op.
func (s *EventSink) Close() {
	s.mu.Lock()
	s.terminated = true
	s.mu.Unlock()
	s.closeEvents()
}

func (s *EventSink) closeEvents() {
	s.closeOnce.Do(func() { close(s.events) })
}

func (s *EventSink) send(ev domain.StreamEvent) error {
	s.mu.Lock()
	if s.terminated {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Warn("stream event dropped after terminal", zap.String("type", string(ev.Type)))
		}
		return ErrStreamClosed
	}
	if ev.IsTerminal() {
		s.terminated = true
	}
	s.mu.Unlock()

	select {
	case s.events <- ev:
		if ev.IsTerminal() {
			s.closeEvents()
		}
		return nil
	case <-s.ctx.Done():
		// Caller desconectado: se cierra el canal aunque el evento no sea
		// terminal, si no el consumidor queda bloqueado en el range.
		s.Close()
		return s.ctx.Err()
	}
}
