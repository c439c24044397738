package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/llm"
	"ai-tutor/internal/repository"
)

// MemoryService mantiene la memoria episodica de aprendizaje por usuario:
// guarda resumenes de interacciones con su embedding y los recupera por
// similitud para personalizar turnos futuros. Todo es best-effort; un fallo
// de memoria nunca afecta la conversacion.
type MemoryService struct {
	llmClient  llm.LLMClient
	memoryRepo repository.MemoryRepository
	logger     *zap.Logger
}

func NewMemoryService(llmClient llm.LLMClient, memoryRepo repository.MemoryRepository, logger *zap.Logger) *MemoryService {
	return &MemoryService{
		llmClient:  llmClient,
		memoryRepo: memoryRepo,
		logger:     logger,
	}
}

// Remember persiste la interaccion completada y los hechos extraidos.
func (s *MemoryService) Remember(ctx context.Context, userID, sessionID, userMessage, response, topic string, facts []domain.LearnedFact) {
	if s == nil || userID == "" {
		return
	}

	summary := fmt.Sprintf("Student asked: %s\nTutor answered: %s", userMessage, truncateText(response, 500))
	s.store(ctx, userID, sessionID, summary, topic, domain.ImportanceMedium)

	for _, fact := range facts {
		content := fmt.Sprintf("[%s] %s", fact.Category, fact.Fact)
		s.store(ctx, userID, sessionID, content, topic, domain.ImportanceHigh)
	}
}

func (s *MemoryService) store(ctx context.Context, userID, sessionID, content, topic string, importance domain.Importance) {
	embedding, err := s.llmClient.Embed(ctx, content)
	if err != nil {
		s.logger.Warn("memory embedding failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	memory := domain.EpisodicMemory{
		ID:         uuid.NewString(),
		UserID:     userID,
		SessionID:  sessionID,
		Content:    content,
		Topic:      topic,
		Importance: importance,
		Embedding:  pgvector.NewVector(embedding),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.memoryRepo.Create(ctx, memory); err != nil {
		s.logger.Warn("memory store failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// RecallContext arma el bloque de memoria para inyectar en el prompt.
// Devuelve cadena vacia si no hay recuerdos o si algo falla.
func (s *MemoryService) RecallContext(ctx context.Context, userID, query string, k int) string {
	if s == nil || userID == "" || strings.TrimSpace(query) == "" {
		return ""
	}

	embedding, err := s.llmClient.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("memory query embedding failed", zap.String("user_id", userID), zap.Error(err))
		return ""
	}

	memories, err := s.memoryRepo.Search(ctx, userID, pgvector.NewVector(embedding), k)
	if err != nil {
		s.logger.Warn("memory search failed", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	if len(memories) == 0 {
		return ""
	}

	lines := make([]string, 0, len(memories))
	for _, m := range memories {
		lines = append(lines, "- "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// DeriveTopic es la heuristica de topic sobre el ultimo mensaje del usuario:
// quita frases de comando comunes y se queda con el nucleo del pedido.
func DeriveTopic(userText string) string {
	topic := strings.TrimSpace(strings.ToLower(userText))
	prefixes := []string{
		"create a presentation about", "make a presentation about",
		"create a presentation on", "make slides about",
		"create a diagram of", "draw me", "generate an image of",
		"write a report about", "write a report on", "write an essay about",
		"explain", "what is", "what are", "tell me about", "how does", "help me with",
	}
	for _, p := range prefixes {
		if strings.HasPrefix(topic, p) {
			topic = strings.TrimSpace(topic[len(p):])
			break
		}
	}
	topic = strings.Trim(topic, " ?!.\"")
	return truncateText(topic, 60)
}

func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	// El corte por bytes puede partir una runa; se retrocede hasta un limite
	// valido para no producir UTF-8 invalido en titulos y previews.
	for len(cut) > 0 {
		if r, size := utf8.DecodeLastRuneInString(cut); r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	if idx := strings.LastIndexByte(cut, ' '); idx > max/2 {
		cut = cut[:idx]
	}
	return cut
}
