package service

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ExtractSVG recorta el documento <svg>...</svg> de la salida del modelo,
// tolerando fences y texto alrededor.
func ExtractSVG(raw string) string {
	s := CleanLLMJSONResponse(raw)
	start := strings.Index(s, "<svg")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "</svg>")
	if end == -1 || end < start {
		return ""
	}
	return s[start : end+len("</svg>")]
}

var reSVGDimension = regexp.MustCompile(`(?i)\b(?:width|height|viewBox)\s*=`)

// ValidateSVG verifica que el markup sea XML bien formado con raiz <svg>.
// Nunca deja pasar markup parcial o corrupto.
func ValidateSVG(markup string) error {
	trimmed := strings.TrimSpace(markup)
	if trimmed == "" {
		return fmt.Errorf("empty diagram markup")
	}

	decoder := xml.NewDecoder(strings.NewReader(trimmed))
	decoder.Strict = false

	sawRoot := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("malformed markup: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok && !sawRoot {
			if start.Name.Local != "svg" {
				return fmt.Errorf("root element is <%s>, expected <svg>", start.Name.Local)
			}
			sawRoot = true
		}
	}
	if !sawRoot {
		return fmt.Errorf("no <svg> root element found")
	}
	if !reSVGDimension.MatchString(trimmed) {
		return fmt.Errorf("svg has no dimensions or viewBox")
	}
	return nil
}
