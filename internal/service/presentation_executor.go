package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/imagegen"
	"ai-tutor/internal/llm"
)

// PresentationExecutor genera el deck completo en un solo tiro (no streamea
// tokens) y lanza la generacion de imagenes por lamina en paralelo. Un fallo
// individual de imagen no tumba la presentacion: la lamina queda sin imagen.
type PresentationExecutor struct {
	llmClient llm.LLMClient
	images    imagegen.Generator
	parser    SlideParser
	logger    *zap.Logger
}

func NewPresentationExecutor(llmClient llm.LLMClient, images imagegen.Generator, logger *zap.Logger) *PresentationExecutor {
	return &PresentationExecutor{
		llmClient: llmClient,
		images:    images,
		logger:    logger,
	}
}

func (e *PresentationExecutor) Execute(ctx context.Context, inv Invocation, sink *EventSink) (ExecResult, error) {
	raw, err := e.llmClient.GenerateChat(ctx, buildPresentationPrompt(inv.Language), []llm.ChatMessage{
		{Role: "user", Content: "Create a presentation about: " + inv.UserText},
	})
	if err != nil {
		return ExecResult{}, fmt.Errorf("generate slides: %w", err)
	}

	slides, err := e.parser.ParseSlides(raw)
	if err != nil {
		return ExecResult{}, NewMalformedOutputError("the slide data was not valid")
	}

	e.generateSlideImages(ctx, inv.SessionID, slides)

	metadata := &domain.MessageMetadata{Topic: inv.Topic, Slides: slides}
	if err := sink.Metadata(metadata); err != nil {
		return ExecResult{}, err
	}

	return ExecResult{Content: buildSlideOverview(slides), Metadata: metadata}, nil
}

// generateSlideImages hace fan-out concurrente con aislamiento por llamada:
// los fallos se loguean y se descartan, las laminas hermanas no se cancelan.
func (e *PresentationExecutor) generateSlideImages(ctx context.Context, sessionID string, slides []domain.Slide) {
	if e.images == nil {
		return
	}

	var wg sync.WaitGroup
	for i := range slides {
		if slides[i].ImagePrompt == "" {
			continue
		}
		wg.Add(1)
		go func(slide *domain.Slide) {
			defer wg.Done()
			result, err := e.images.GenerateImage(ctx, imagegen.Params{
				Prompt: slide.ImagePrompt,
				Width:  768,
				Height: 512,
			})
			if err != nil {
				if e.logger != nil {
					e.logger.Warn("slide image generation failed",
						zap.String("session_id", sessionID),
						zap.String("slide", slide.Title),
						zap.Error(err),
					)
				}
				return
			}
			slide.ImageURL = fmt.Sprintf("data:%s;base64,%s", result.MimeType, result.ImageBase64)
		}(&slides[i])
	}
	wg.Wait()
}

func buildSlideOverview(slides []domain.Slide) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 I've generated a %d-slide presentation for you.\n\n**Slides overview:**\n", len(slides)))
	for i, slide := range slides {
		sb.WriteString(fmt.Sprintf("%d. **%s**\n", i+1, slide.Title))
	}
	return sb.String()
}

func buildPresentationPrompt(language string) string {
	if language == "" {
		language = "en"
	}
	var sb strings.Builder
	sb.WriteString("You are an expert at creating educational presentations. Create a 5-7 slide presentation on the requested topic.\n\n")
	sb.WriteString("RESPOND WITH VALID JSON in this exact format:\n")
	sb.WriteString("```json\n")
	sb.WriteString(`{"slides": [{"title": "Presentation Title", "body": "Subtitle or brief description", "imagePrompt": null}, {"title": "First Topic", "body": "- Key point 1\n- Key point 2\n- Key point 3", "imagePrompt": "educational diagram of concept, simple, clean, labeled"}]}`)
	sb.WriteString("\n```\n\n")
	sb.WriteString("GUIDELINES:\n")
	sb.WriteString("- The first slide is always the title slide.\n")
	sb.WriteString("- Each content slide has 3-5 bullet points, newline separated.\n")
	sb.WriteString("- imagePrompt only for slides that benefit from a visual, null otherwise.\n")
	sb.WriteString(fmt.Sprintf("- Slide text in %q.\n\n", language))
	sb.WriteString("RESPOND ONLY WITH THE JSON, no additional text.")
	return sb.String()
}
