package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/llm"
)

func TestChatExecutor_StreamsTokensAndReturnsFullText(t *testing.T) {
	mock := &llm.MockClient{Tokens: []string{"Great ", "question ", "about gravity!"}}
	executor := NewChatExecutor(mock)
	sink := NewEventSink(context.Background(), zap.NewNop())

	result, err := executor.Execute(context.Background(), Invocation{
		UserText: "why do things fall?",
		Topic:    "gravity",
	}, sink)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Content != "Great question about gravity!" {
		t.Fatalf("unexpected content: %q", result.Content)
	}

	var streamed strings.Builder
	for i := 0; i < len(mock.Tokens); i++ {
		ev := <-sink.Events()
		if ev.Type != domain.EventToken {
			t.Fatalf("expected token event, got %s", ev.Type)
		}
		streamed.WriteString(ev.Token)
	}
	if streamed.String() != result.Content {
		t.Fatalf("streamed tokens %q differ from final content %q", streamed.String(), result.Content)
	}
}

func TestChatExecutor_ExtractsFactMarkers(t *testing.T) {
	mock := &llm.MockClient{
		Response: "Let's explore that together!\n<!--FACT:preference:likes visual explanations--><!--FACT:goal:preparing for physics exam-->",
	}
	executor := NewChatExecutor(mock)
	sink := NewEventSink(context.Background(), zap.NewNop())

	result, err := executor.Execute(context.Background(), Invocation{UserText: "teach me optics"}, sink)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if strings.Contains(result.Content, "FACT:") {
		t.Fatalf("fact markers must not survive in content: %q", result.Content)
	}
	facts := result.Metadata.Facts
	if len(facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(facts))
	}
	if facts[0].Category != "preference" || facts[0].Fact != "likes visual explanations" {
		t.Fatalf("unexpected first fact: %+v", facts[0])
	}
}

func drainTokens(t *testing.T, sink *EventSink) string {
	t.Helper()
	var streamed strings.Builder
	for {
		select {
		case ev := <-sink.Events():
			if ev.Type != domain.EventToken {
				t.Fatalf("unexpected event type %s", ev.Type)
			}
			streamed.WriteString(ev.Token)
		default:
			return streamed.String()
		}
	}
}

func TestChatExecutor_StreamedTokensMatchPersistedContent(t *testing.T) {
	mock := &llm.MockClient{Tokens: []string{"Gravity pulls. ", "<!--FACT:interest:likes physics-->"}}
	executor := NewChatExecutor(mock)
	sink := NewEventSink(context.Background(), zap.NewNop())

	result, err := executor.Execute(context.Background(), Invocation{UserText: "why do things fall?"}, sink)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	streamed := drainTokens(t, sink)
	if streamed != result.Content {
		t.Fatalf("streamed tokens %q differ from persisted content %q", streamed, result.Content)
	}
	if strings.Contains(streamed, "FACT") {
		t.Fatalf("fact markers must never reach the client: %q", streamed)
	}
	if len(result.Metadata.Facts) != 1 {
		t.Fatalf("expected 1 extracted fact, got %d", len(result.Metadata.Facts))
	}
}

func TestChatExecutor_SuppressesMarkerSplitAcrossChunks(t *testing.T) {
	mock := &llm.MockClient{Tokens: []string{"Nice question! <!--FA", "CT:goal:physics exam-->", " Keep going."}}
	executor := NewChatExecutor(mock)
	sink := NewEventSink(context.Background(), zap.NewNop())

	result, err := executor.Execute(context.Background(), Invocation{UserText: "quiz me"}, sink)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	streamed := drainTokens(t, sink)
	if streamed != result.Content {
		t.Fatalf("streamed tokens %q differ from persisted content %q", streamed, result.Content)
	}
	if strings.Contains(streamed, "<!--") {
		t.Fatalf("partial marker leaked into the stream: %q", streamed)
	}
	facts := result.Metadata.Facts
	if len(facts) != 1 || facts[0].Category != "goal" {
		t.Fatalf("expected the split marker to be extracted, got %+v", facts)
	}
}

func TestChatExecutor_PromptCarriesMemoryAndTopic(t *testing.T) {
	mock := &llm.MockClient{Response: "ok"}
	executor := NewChatExecutor(mock)
	sink := NewEventSink(context.Background(), zap.NewNop())

	_, err := executor.Execute(context.Background(), Invocation{
		UserText:      "more about derivatives",
		Topic:         "derivatives",
		MemoryContext: "- struggles with chain rule",
		Language:      "es",
	}, sink)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.Contains(mock.LastSystem, "struggles with chain rule") {
		t.Error("system prompt should include memory context")
	}
	if !strings.Contains(mock.LastSystem, "CURRENT TOPIC: derivatives") {
		t.Error("system prompt should include the topic")
	}
	if !strings.Contains(mock.LastSystem, `"es"`) {
		t.Error("system prompt should carry the requested language")
	}
}

func TestHistoryWindow(t *testing.T) {
	history := make([]llm.ChatMessage, 15)
	for i := range history {
		history[i] = llm.ChatMessage{Role: "user", Content: strings.Repeat("x", i+1)}
	}

	got := historyWindow(history, 10)
	if len(got) != 10 {
		t.Fatalf("expected 10 messages, got %d", len(got))
	}
	if got[len(got)-1].Content != history[len(history)-1].Content {
		t.Fatal("window should keep the most recent messages")
	}

	short := history[:3]
	if len(historyWindow(short, 10)) != 3 {
		t.Fatal("short history should pass through unchanged")
	}
}
