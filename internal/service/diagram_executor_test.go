package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/llm"
)

func TestDiagramExecutor_ValidSVG(t *testing.T) {
	mock := &llm.MockClient{Response: "Here you go:\n" + validSVG}
	executor := NewDiagramExecutor(mock)
	sink := NewEventSink(context.Background(), zap.NewNop())

	result, err := executor.Execute(context.Background(), Invocation{
		UserText: "draw a flowchart of the scientific method",
		Topic:    "the scientific method",
	}, sink)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Metadata.Diagram != validSVG {
		t.Fatalf("diagram metadata should carry the extracted markup")
	}
	if result.Content == "" {
		t.Fatal("content should not be empty")
	}

	ev := <-sink.Events()
	if ev.Type != domain.EventMetadata || ev.Metadata.Diagram == "" {
		t.Fatalf("expected a metadata event with the diagram, got %+v", ev)
	}
}

func TestDiagramExecutor_NoSVGProduced(t *testing.T) {
	mock := &llm.MockClient{Response: "Sorry, I can only describe it in words."}
	executor := NewDiagramExecutor(mock)
	sink := NewEventSink(context.Background(), zap.NewNop())

	_, err := executor.Execute(context.Background(), Invocation{UserText: "diagram"}, sink)
	var toolErr *domain.ToolError
	if !errors.As(err, &toolErr) || toolErr.Kind != domain.ErrKindMalformedOutput {
		t.Fatalf("expected malformed_output, got %v", err)
	}
}

func TestDiagramExecutor_MalformedSVGDegradesToError(t *testing.T) {
	mock := &llm.MockClient{Response: `<svg width="10" height="10" viewBox="0 0 10 10"><rect></svg>`}
	executor := NewDiagramExecutor(mock)
	sink := NewEventSink(context.Background(), zap.NewNop())

	_, err := executor.Execute(context.Background(), Invocation{UserText: "diagram"}, sink)
	var toolErr *domain.ToolError
	if !errors.As(err, &toolErr) || toolErr.Kind != domain.ErrKindMalformedOutput {
		t.Fatalf("expected malformed_output for corrupted markup, got %v", err)
	}

	// Nunca se entrega un diagrama parcial.
	select {
	case ev := <-sink.Events():
		t.Fatalf("no events expected on failure, got %+v", ev)
	default:
	}
}
