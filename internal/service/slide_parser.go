package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ai-tutor/internal/domain"
)

// SlideParser centraliza la limpieza y parseo del JSON de laminas que emite
// el modelo. El esquema esperado es {"slides":[{title,body,imagePrompt}]}.
type SlideParser struct{}

// ParseSlides intenta extraer la secuencia de laminas de la salida cruda del
// modelo. Devuelve error si no hay JSON parseable o la secuencia es invalida.
func (SlideParser) ParseSlides(raw string) ([]domain.Slide, error) {
	cleaned := CleanLLMJSONResponse(raw)

	jsonObj := extractFirstJSONObject(cleaned)
	if jsonObj == "" {
		jsonObj = extractFirstJSONObject(raw)
	}
	if jsonObj == "" {
		return nil, fmt.Errorf("no JSON object found in model output")
	}

	var payload struct {
		Slides []struct {
			Title       string `json:"title"`
			Body        string `json:"body"`
			ImagePrompt string `json:"imagePrompt"`
		} `json:"slides"`
	}
	if err := json.Unmarshal([]byte(jsonObj), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal slides: %w", err)
	}
	if len(payload.Slides) == 0 {
		return nil, fmt.Errorf("model output has no slides")
	}

	slides := make([]domain.Slide, 0, len(payload.Slides))
	for i, s := range payload.Slides {
		title := strings.TrimSpace(s.Title)
		if title == "" {
			return nil, fmt.Errorf("slide %d has empty title", i)
		}
		slides = append(slides, domain.Slide{
			Title:       title,
			Body:        strings.TrimSpace(s.Body),
			ImagePrompt: strings.TrimSpace(s.ImagePrompt),
		})
	}
	return slides, nil
}

// CleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func CleanLLMJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "\uFEFF")

	reStart := regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	reEnd := regexp.MustCompile("(?is)\\s*```\\s*$")
	s = reStart.ReplaceAllString(s, "")
	s = reEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
