package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/llm"
)

type mockMemoryRepo struct {
	created   []domain.EpisodicMemory
	found     []domain.EpisodicMemory
	createErr error
	searchErr error
}

func (m *mockMemoryRepo) Create(_ context.Context, memory domain.EpisodicMemory) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, memory)
	return nil
}

func (m *mockMemoryRepo) Search(context.Context, string, pgvector.Vector, int) ([]domain.EpisodicMemory, error) {
	return m.found, m.searchErr
}

func (m *mockMemoryRepo) ListBySessionID(context.Context, string) ([]domain.EpisodicMemory, error) {
	return nil, errors.New("not implemented")
}

func TestMemoryService_RememberStoresSummaryAndFacts(t *testing.T) {
	repo := &mockMemoryRepo{}
	svc := NewMemoryService(&llm.MockClient{}, repo, zap.NewNop())

	svc.Remember(context.Background(), "user-1", "session-1", "what is photosynthesis?", "Plants convert light into energy.", "photosynthesis", []domain.LearnedFact{
		{Category: "preference", Fact: "likes biology"},
	})

	if len(repo.created) != 2 {
		t.Fatalf("expected summary + 1 fact, got %d memories", len(repo.created))
	}
	summary := repo.created[0]
	if summary.Importance != domain.ImportanceMedium {
		t.Errorf("interaction summary should be medium importance, got %s", summary.Importance)
	}
	fact := repo.created[1]
	if fact.Importance != domain.ImportanceHigh {
		t.Errorf("learned facts should be high importance, got %s", fact.Importance)
	}
	if fact.Content != "[preference] likes biology" {
		t.Errorf("unexpected fact content: %q", fact.Content)
	}
}

func TestMemoryService_RememberSkipsAnonymous(t *testing.T) {
	repo := &mockMemoryRepo{}
	svc := NewMemoryService(&llm.MockClient{}, repo, zap.NewNop())

	svc.Remember(context.Background(), "", "session-1", "q", "a", "", nil)

	if len(repo.created) != 0 {
		t.Fatal("anonymous turns must not be remembered")
	}
}

func TestMemoryService_EmbedFailureIsSwallowed(t *testing.T) {
	repo := &mockMemoryRepo{}
	svc := NewMemoryService(&llm.MockClient{Err: errors.New("embeddings down")}, repo, zap.NewNop())

	svc.Remember(context.Background(), "user-1", "s", "q", "a", "", nil)

	if len(repo.created) != 0 {
		t.Fatal("no memory should be stored when embedding fails")
	}
}

func TestMemoryService_RecallContextJoinsMemories(t *testing.T) {
	repo := &mockMemoryRepo{found: []domain.EpisodicMemory{
		{Content: "Student asked: what is gravity?"},
		{Content: "[preference] likes visual explanations"},
	}}
	svc := NewMemoryService(&llm.MockClient{}, repo, zap.NewNop())

	got := svc.RecallContext(context.Background(), "user-1", "gravity again", 5)
	want := "- Student asked: what is gravity?\n- [preference] likes visual explanations"
	if got != want {
		t.Fatalf("RecallContext = %q, want %q", got, want)
	}
}

func TestMemoryService_RecallContextEmptyOnFailure(t *testing.T) {
	repo := &mockMemoryRepo{searchErr: errors.New("db down")}
	svc := NewMemoryService(&llm.MockClient{}, repo, zap.NewNop())

	if got := svc.RecallContext(context.Background(), "user-1", "query", 5); got != "" {
		t.Fatalf("expected empty context on search failure, got %q", got)
	}
	if got := svc.RecallContext(context.Background(), "", "query", 5); got != "" {
		t.Fatalf("expected empty context for anonymous user, got %q", got)
	}

	var nilSvc *MemoryService
	if got := nilSvc.RecallContext(context.Background(), "user-1", "query", 5); got != "" {
		t.Fatalf("nil service should return empty context, got %q", got)
	}
}

func TestDeriveTopic(t *testing.T) {
	cases := map[string]string{
		"Create a presentation about the French Revolution": "the french revolution",
		"explain quantum entanglement":                      "quantum entanglement",
		"What is a black hole?":                             "a black hole",
		"photosynthesis":                                    "photosynthesis",
	}
	for in, want := range cases {
		if got := DeriveTopic(in); got != want {
			t.Errorf("DeriveTopic(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("short", 60); got != "short" {
		t.Fatalf("short text should pass through, got %q", got)
	}

	long := "this is a rather long sentence that should be cut on a word boundary somewhere"
	got := truncateText(long, 40)
	if len(got) > 40 {
		t.Fatalf("truncated text too long: %d", len(got))
	}
	if got[len(got)-1] == ' ' {
		t.Fatal("truncated text should not end with a space")
	}
}

func TestTruncateText_KeepsRuneBoundaries(t *testing.T) {
	// 40 runas de dos bytes: un corte en byte impar cae a mitad de runa.
	got := truncateText(strings.Repeat("ñ", 40), 61)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if got != strings.Repeat("ñ", 30) {
		t.Fatalf("expected cut on a rune boundary, got %q", got)
	}
}
