package service

import (
	"context"
	"fmt"
	"strings"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/llm"
)

// DiagramExecutor pide al modelo un unico documento SVG y lo valida antes de
// exponerlo. Markup malformado degrada a error con diagnostico, nunca a un
// diagrama parcial.
type DiagramExecutor struct {
	llmClient llm.LLMClient
}

func NewDiagramExecutor(llmClient llm.LLMClient) *DiagramExecutor {
	return &DiagramExecutor{llmClient: llmClient}
}

func (e *DiagramExecutor) Execute(ctx context.Context, inv Invocation, sink *EventSink) (ExecResult, error) {
	raw, err := e.llmClient.GenerateChat(ctx, buildDiagramPrompt(), []llm.ChatMessage{
		{Role: "user", Content: inv.UserText},
	})
	if err != nil {
		return ExecResult{}, fmt.Errorf("generate diagram: %w", err)
	}

	markup := ExtractSVG(raw)
	if markup == "" {
		return ExecResult{}, NewMalformedOutputError("no SVG document was produced")
	}
	if err := ValidateSVG(markup); err != nil {
		return ExecResult{}, NewMalformedOutputError(err.Error())
	}

	metadata := &domain.MessageMetadata{Topic: inv.Topic, Diagram: markup}
	if err := sink.Metadata(metadata); err != nil {
		return ExecResult{}, err
	}

	return ExecResult{
		Content:  "Here is the diagram you asked for. Open it in the workspace panel to explore it.",
		Metadata: metadata,
	}, nil
}

func buildDiagramPrompt() string {
	var sb strings.Builder
	sb.WriteString("You are a visual learning specialist that produces educational diagrams as SVG.\n\n")
	sb.WriteString("Choose the diagram type that best fits the request: flowchart, hierarchy, mind map, cycle, timeline or comparison.\n\n")
	sb.WriteString("RULES:\n")
	sb.WriteString("- Respond with a single well-formed <svg> document and nothing else.\n")
	sb.WriteString("- Include width, height and viewBox attributes.\n")
	sb.WriteString("- Use simple shapes, readable labels and a white background.\n")
	sb.WriteString("- No external images, scripts or style sheets.")
	return sb.String()
}
