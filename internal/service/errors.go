package service

import (
	"context"
	"errors"
	"net"

	"ai-tutor/internal/domain"
	"ai-tutor/internal/imagegen"
	"ai-tutor/internal/llm"
)

// Mensajes visibles para el usuario final; nunca detalles tecnicos.
const (
	msgRateLimited = "I'm receiving too many requests right now. Please try again in a moment."
	msgUnavailable = "Sorry, I couldn't reach the model right now. Please try again shortly."
)

// ClassifyUpstreamError convierte cualquier fallo de upstream en un ToolError
// de la taxonomia. Los ToolError ya clasificados pasan sin cambios.
func ClassifyUpstreamError(err error) *domain.ToolError {
	if err == nil {
		return nil
	}

	var toolErr *domain.ToolError
	if errors.As(err, &toolErr) {
		return toolErr
	}

	var llmErr *llm.APIError
	if errors.As(err, &llmErr) {
		if llmErr.RateLimited() {
			return &domain.ToolError{Kind: domain.ErrKindRateLimited, Message: msgRateLimited}
		}
		return &domain.ToolError{Kind: domain.ErrKindUpstreamUnavailable, Message: msgUnavailable}
	}

	var imgErr *imagegen.APIError
	if errors.As(err, &imgErr) {
		if imgErr.RateLimited() {
			return &domain.ToolError{Kind: domain.ErrKindRateLimited, Message: msgRateLimited}
		}
		return &domain.ToolError{Kind: domain.ErrKindUpstreamUnavailable, Message: msgUnavailable}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.ToolError{Kind: domain.ErrKindUpstreamUnavailable, Message: msgUnavailable}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &domain.ToolError{Kind: domain.ErrKindUpstreamUnavailable, Message: msgUnavailable}
	}

	// Cualquier otro fallo upstream se trata como indisponibilidad generica.
	return &domain.ToolError{Kind: domain.ErrKindUpstreamUnavailable, Message: msgUnavailable}
}

// NewMalformedOutputError construye el error para salida estructural invalida,
// con un diagnostico corto apto para mostrar.
func NewMalformedOutputError(diagnostic string) *domain.ToolError {
	return &domain.ToolError{
		Kind:    domain.ErrKindMalformedOutput,
		Message: "The response could not be generated correctly: " + diagnostic,
	}
}
