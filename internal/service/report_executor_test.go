package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"ai-tutor/internal/llm"
)

func TestReportExecutor_ExposesFullTextAsDocument(t *testing.T) {
	report := "# Volcanoes\n\n## Executive summary\n\nMagma rises.\n\n## Formation\n\n...\n\n## Conclusion\n\nDone."
	mock := &llm.MockClient{Response: report}
	executor := NewReportExecutor(mock)
	sink := NewEventSink(context.Background(), zap.NewNop())

	result, err := executor.Execute(context.Background(), Invocation{
		UserText: "write a report on volcanoes",
		Topic:    "volcanoes",
	}, sink)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Content != report {
		t.Fatalf("unexpected content: %q", result.Content)
	}
	if result.Metadata == nil || result.Metadata.DocumentContent != report {
		t.Fatal("metadata should carry the full document text")
	}
	if result.Metadata.Topic != "volcanoes" {
		t.Fatalf("unexpected topic: %q", result.Metadata.Topic)
	}
}

func TestReportExecutor_PromptRequestsStructure(t *testing.T) {
	mock := &llm.MockClient{Response: "# x"}
	executor := NewReportExecutor(mock)
	sink := NewEventSink(context.Background(), zap.NewNop())

	_, err := executor.Execute(context.Background(), Invocation{UserText: "report", Language: "es"}, sink)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.Contains(mock.LastSystem, "Executive summary") {
		t.Error("system prompt should ask for an executive summary")
	}
	if !strings.Contains(mock.LastSystem, `"es"`) {
		t.Error("system prompt should carry the requested language")
	}
}
