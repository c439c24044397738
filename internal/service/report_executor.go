package service

import (
	"context"
	"fmt"
	"strings"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/llm"
)

// ReportExecutor genera documentos largos y estructurados. Streamea tokens y
// al terminar expone el texto completo como documentContent para exportar.
type ReportExecutor struct {
	llmClient llm.LLMClient
}

func NewReportExecutor(llmClient llm.LLMClient) *ReportExecutor {
	return &ReportExecutor{llmClient: llmClient}
}

func (e *ReportExecutor) Execute(ctx context.Context, inv Invocation, sink *EventSink) (ExecResult, error) {
	system := buildReportPrompt(inv.Language)
	history := append(historyWindow(inv.History, 4), llm.ChatMessage{Role: "user", Content: inv.UserText})

	full, err := e.llmClient.StreamChat(ctx, system, history, sink.Token)
	if err != nil {
		return ExecResult{}, fmt.Errorf("stream report: %w", err)
	}

	content := strings.TrimSpace(full)
	metadata := &domain.MessageMetadata{
		Topic:           inv.Topic,
		DocumentContent: content,
	}
	return ExecResult{Content: content, Metadata: metadata}, nil
}

func buildReportPrompt(language string) string {
	if language == "" {
		language = "en"
	}
	var sb strings.Builder
	sb.WriteString("You are an expert academic writer producing a long-form, well-structured report.\n\n")
	sb.WriteString("STRUCTURE (markdown):\n")
	sb.WriteString("1. Title (# heading)\n")
	sb.WriteString("2. Executive summary\n")
	sb.WriteString("3. At least four substantive sections with ## headings\n")
	sb.WriteString("4. Conclusion\n\n")
	sb.WriteString("Be thorough and educational; cite well-known facts rather than inventing sources.\n")
	sb.WriteString(fmt.Sprintf("Write in %q.", language))
	return sb.String()
}
