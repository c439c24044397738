package service

import (
	"context"
	"fmt"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/imagegen"
)

// ImageExecutor llama al backend de imagenes y entrega el resultado binario
// como un unico evento de metadata (no hay tokens que streamear).
type ImageExecutor struct {
	images imagegen.Generator
}

func NewImageExecutor(images imagegen.Generator) *ImageExecutor {
	return &ImageExecutor{images: images}
}

func (e *ImageExecutor) Execute(ctx context.Context, inv Invocation, sink *EventSink) (ExecResult, error) {
	if e.images == nil {
		return ExecResult{}, &domain.ToolError{
			Kind:    domain.ErrKindUpstreamUnavailable,
			Message: "Image generation is not available right now.",
		}
	}

	result, err := e.images.GenerateImage(ctx, imagegen.Params{Prompt: inv.UserText})
	if err != nil {
		return ExecResult{}, fmt.Errorf("generate image: %w", err)
	}

	metadata := &domain.MessageMetadata{Topic: inv.Topic, Image: &result}
	if err := sink.Metadata(metadata); err != nil {
		return ExecResult{}, err
	}

	return ExecResult{
		Content:  fmt.Sprintf("Here is the image I generated for: %s", inv.UserText),
		Metadata: metadata,
	}, nil
}
