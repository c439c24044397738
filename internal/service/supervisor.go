package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/repository"
)

// ChatInput es el contrato de entrada de una invocacion de chat.
type ChatInput struct {
	Message   string
	ThreadID  string
	SessionID string
	Language  string
	UserID    string
	Tool      string
}

// Supervisor media entre el mensaje del usuario y los executors: valida,
// rutea, coordina el streaming y reconcilia el resultado en un unico mensaje
// del asistente que persiste solo al llegar al terminal exitoso.
type Supervisor struct {
	logger    *zap.Logger
	router    *ToolRouter
	executors map[domain.Tool]ToolExecutor
	sessions  repository.SessionRepository
	messages  repository.MessageRepository
	history   ContextService
	memory    *MemoryService
	limiter   RateLimiter
	timeout   time.Duration
}

func NewSupervisor(
	logger *zap.Logger,
	router *ToolRouter,
	executors map[domain.Tool]ToolExecutor,
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	history ContextService,
	memory *MemoryService,
	limiter RateLimiter,
	timeout time.Duration,
) *Supervisor {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Supervisor{
		logger:    logger,
		router:    router,
		executors: executors,
		sessions:  sessions,
		messages:  messages,
		history:   history,
		memory:    memory,
		limiter:   limiter,
		timeout:   timeout,
	}
}

// HandleMessage valida la entrada y arranca la pipeline asincrona. Los
// errores devueltos aqui (validacion, rate limit) rechazan el request antes
// de abrir el stream; despues de eso todo fallo viaja como evento.
func (s *Supervisor) HandleMessage(ctx context.Context, input ChatInput) (*EventSink, error) {
	input.Message = strings.TrimSpace(input.Message)
	if input.Message == "" {
		return nil, domain.NewValidationError("message must not be empty")
	}
	if strings.TrimSpace(input.ThreadID) == "" {
		return nil, domain.NewValidationError("thread_id is required")
	}

	override, err := domain.ParseTool(input.Tool)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	limitKey := input.UserID
	if limitKey == "" {
		limitKey = input.ThreadID
	}
	if s.limiter != nil && !s.limiter.Allow(limitKey) {
		return nil, &domain.ToolError{Kind: domain.ErrKindRateLimited, Message: msgRateLimited}
	}

	if input.SessionID == "" {
		input.SessionID = input.ThreadID
	}

	sink := NewEventSink(ctx, s.logger)
	go s.run(ctx, sink, input, override)
	return sink, nil
}

func (s *Supervisor) run(ctx context.Context, sink *EventSink, input ChatInput, override domain.Tool) {
	// Pase lo que pase el canal se cierra al salir; un return temprano por
	// desconexion del caller no puede dejar al consumidor colgado del range.
	defer sink.Close()

	selected, reason := s.router.Route(input.Message, override)
	if err := sink.Routing(selected, reason); err != nil {
		return
	}
	_ = sink.Generating()

	s.logger.Info("tool routed",
		zap.String("session_id", input.SessionID),
		zap.String("tool", string(selected)),
		zap.String("reason", reason),
	)

	topic := DeriveTopic(input.Message)
	now := time.Now().UTC()

	// Creacion perezosa e idempotente: el titulo heuristico solo aplica si
	// la sesion no existia (ON CONFLICT DO NOTHING conserva el original).
	session := domain.Session{
		ID:                 input.SessionID,
		UserID:             input.UserID,
		Title:              truncateText(input.Message, 60),
		LastMessagePreview: truncateText(input.Message, 80),
		Topic:              topic,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.sessions.CreateIfAbsent(ctx, session); err != nil {
		s.logger.Error("create session failed", zap.String("session_id", input.SessionID), zap.Error(err))
	}

	// El historial se carga antes de anexar el turno actual para no duplicarlo.
	history, err := s.history.GetHistory(ctx, input.SessionID, 10)
	if err != nil {
		s.logger.Warn("load history failed", zap.String("session_id", input.SessionID), zap.Error(err))
		history = nil
	}

	userMessage := domain.Message{
		ID:        uuid.NewString(),
		SessionID: input.SessionID,
		UserID:    input.UserID,
		Role:      domain.RoleUser,
		Content:   input.Message,
		CreatedAt: now,
	}
	if err := s.messages.Append(ctx, userMessage); err != nil {
		s.logger.Error("persist user message failed", zap.String("session_id", input.SessionID), zap.Error(err))
	}

	executor, ok := s.executors[selected]
	if !ok {
		sink.Fail(domain.NewValidationError("unsupported tool"))
		return
	}

	inv := Invocation{
		SessionID:     input.SessionID,
		UserID:        input.UserID,
		Tool:          selected,
		UserText:      input.Message,
		Language:      input.Language,
		Reason:        reason,
		History:       history,
		MemoryContext: s.memory.RecallContext(ctx, input.UserID, input.Message, 5),
		Topic:         topic,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, execErr := executor.Execute(callCtx, inv, sink)
	if ctx.Err() != nil {
		// Caller desconectado: no hay a quien emitir y no se persiste parcial.
		return
	}
	if execErr != nil {
		toolErr := ClassifyUpstreamError(execErr)
		s.logger.Warn("executor failed",
			zap.String("session_id", input.SessionID),
			zap.String("tool", string(selected)),
			zap.String("kind", string(toolErr.Kind)),
			zap.Error(execErr),
		)
		sink.Fail(toolErr)
		return
	}

	// Copia propia: la metadata del executor ya pudo viajar por el sink y el
	// consumidor puede estar leyendola.
	metadata := &domain.MessageMetadata{}
	metadata.Merge(result.Metadata)
	metadata.ToolUsed = selected

	if strings.TrimSpace(result.Content) == "" {
		sink.Fail(&domain.ToolError{Kind: domain.ErrKindMalformedOutput, Message: msgUnavailable})
		return
	}

	assistantMessage := domain.Message{
		ID:        uuid.NewString(),
		SessionID: input.SessionID,
		UserID:    input.UserID,
		Role:      domain.RoleAssistant,
		Content:   result.Content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Append(ctx, assistantMessage); err != nil {
		// El contenido ya fue entregado por el stream; solo se pierde la copia durable.
		s.logger.Error("persist assistant message failed", zap.String("session_id", input.SessionID), zap.Error(err))
	}

	preview := truncateText(result.Content, 80)
	summary := domain.SessionSummary{LastMessagePreview: &preview}
	if topic != "" {
		summary.Topic = &topic
	}
	if err := s.sessions.UpdateSummary(ctx, input.SessionID, summary); err != nil {
		s.logger.Warn("update session summary failed", zap.String("session_id", input.SessionID), zap.Error(err))
	}

	// Escritura de memoria en background: emitida, no esperada, y sus fallos
	// se loguean y se tragan.
	if s.memory != nil && input.UserID != "" {
		go func(userID, sessionID, userText, response, topic string, facts []domain.LearnedFact) {
			bgCtx, bgCancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer bgCancel()
			s.memory.Remember(bgCtx, userID, sessionID, userText, response, topic, facts)
		}(input.UserID, input.SessionID, input.Message, result.Content, topic, metadata.Facts)
	}

	sink.Done(selected, metadata)
}
