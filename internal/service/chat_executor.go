package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/llm"
)

// ChatExecutor es el tutor socratico por defecto: streamea tokens y no
// adjunta mas metadata estructurada que el topic y los hechos aprendidos.
type ChatExecutor struct {
	llmClient llm.LLMClient
}

func NewChatExecutor(llmClient llm.LLMClient) *ChatExecutor {
	return &ChatExecutor{llmClient: llmClient}
}

var reFactMarker = regexp.MustCompile(`<!--FACT:(\w+):(.+?)-->`)

func (e *ChatExecutor) Execute(ctx context.Context, inv Invocation, sink *EventSink) (ExecResult, error) {
	system := buildTutorPrompt(inv)
	history := append(historyWindow(inv.History, 10), llm.ChatMessage{Role: "user", Content: inv.UserText})

	// Los marcadores FACT son instrucciones internas del prompt: se filtran
	// del stream para que el cliente reciba exactamente el texto que se
	// persiste como contenido del mensaje.
	filter := newFactStreamFilter(sink.Token)
	full, err := e.llmClient.StreamChat(ctx, system, history, filter.Feed)
	if err != nil {
		return ExecResult{}, fmt.Errorf("stream chat: %w", err)
	}
	if err := filter.Flush(); err != nil {
		return ExecResult{}, fmt.Errorf("flush chat stream: %w", err)
	}

	content, facts := extractFacts(full)

	metadata := &domain.MessageMetadata{Topic: inv.Topic, Facts: facts}
	return ExecResult{Content: content, Metadata: metadata}, nil
}

const factMarkerOpen = "<!--FACT:"

// factStreamFilter reenvia tokens suprimiendo los marcadores FACT y el
// espacio de los bordes: la concatenacion de lo emitido es identica al
// contenido que queda persistido tras extractFacts.
type factStreamFilter struct {
	emit    func(string) error
	buf     string
	started bool
}

func newFactStreamFilter(emit func(string) error) *factStreamFilter {
	return &factStreamFilter{emit: emit}
}

// Feed acumula el chunk y emite lo que ya es seguro: retiene la cola que
// podria ser el comienzo de un marcador y el espacio que la precede.
func (f *factStreamFilter) Feed(chunk string) error {
	f.buf += chunk
	f.buf = reFactMarker.ReplaceAllString(f.buf, "")
	out := strings.TrimRightFunc(f.buf[:f.markerHold()], unicode.IsSpace)
	f.buf = f.buf[len(out):]
	return f.send(out)
}

// Flush emite lo retenido al cerrar el stream, sin el espacio final.
func (f *factStreamFilter) Flush() error {
	f.buf = reFactMarker.ReplaceAllString(f.buf, "")
	out := strings.TrimRightFunc(f.buf, unicode.IsSpace)
	f.buf = ""
	return f.send(out)
}

func (f *factStreamFilter) send(out string) error {
	if !f.started {
		out = strings.TrimLeftFunc(out, unicode.IsSpace)
	}
	if out == "" {
		return nil
	}
	f.started = true
	return f.emit(out)
}

// markerHold devuelve hasta donde puede emitirse sin riesgo de partir un
// marcador: antes de un marcador aun incompleto o de un prefijo suyo al
// final del buffer.
func (f *factStreamFilter) markerHold() int {
	if open := strings.Index(f.buf, factMarkerOpen); open != -1 {
		return open
	}
	for k := len(factMarkerOpen) - 1; k > 0; k-- {
		if strings.HasSuffix(f.buf, factMarkerOpen[:k]) {
			return len(f.buf) - k
		}
	}
	return len(f.buf)
}

// extractFacts separa los marcadores <!--FACT:categoria:hecho--> del texto
// visible. Los marcadores nunca se persisten como contenido.
func extractFacts(response string) (string, []domain.LearnedFact) {
	matches := reFactMarker.FindAllStringSubmatch(response, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(response), nil
	}

	facts := make([]domain.LearnedFact, 0, len(matches))
	for _, m := range matches {
		facts = append(facts, domain.LearnedFact{
			Category: m[1],
			Fact:     strings.TrimSpace(m[2]),
		})
	}
	cleaned := strings.TrimSpace(reFactMarker.ReplaceAllString(response, ""))
	return cleaned, facts
}

func buildTutorPrompt(inv Invocation) string {
	var sb strings.Builder

	sb.WriteString("You are an expert Socratic tutor. Guide students to discover answers themselves instead of just providing information.\n\n")
	sb.WriteString("TEACHING APPROACH:\n")
	sb.WriteString("1. Acknowledge the student's curiosity before anything else.\n")
	sb.WriteString("2. Prefer guiding questions over direct answers.\n")
	sb.WriteString("3. Use analogies and real-world examples.\n")
	sb.WriteString("4. Break complex topics into small, digestible pieces.\n")
	sb.WriteString("5. Correct misconceptions gently and celebrate progress.\n\n")

	if strings.TrimSpace(inv.MemoryContext) != "" {
		sb.WriteString("WHAT YOU REMEMBER ABOUT THIS STUDENT:\n")
		sb.WriteString(strings.TrimSpace(inv.MemoryContext))
		sb.WriteString("\n\n")
	}
	if inv.Topic != "" {
		sb.WriteString(fmt.Sprintf("CURRENT TOPIC: %s\n\n", inv.Topic))
	}

	language := inv.Language
	if language == "" {
		language = "en"
	}
	sb.WriteString(fmt.Sprintf("LANGUAGE: respond primarily in %q. Keep technical terms in English with a short explanation when needed.\n\n", language))

	sb.WriteString("FORMATTING: use markdown, short paragraphs, sparse emojis.\n\n")
	sb.WriteString("If you learn something new about this student's learning preferences, strengths or goals, append it as <!--FACT:category:fact--> markers at the end of the response.")

	return sb.String()
}

// historyWindow corta el historial a los ultimos n turnos.
func historyWindow(history []llm.ChatMessage, n int) []llm.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
