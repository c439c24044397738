package service

import (
	"fmt"
	"strings"

	"ai-tutor/internal/domain"
)

// routingRule asocia un conjunto de keywords con un tool. Las reglas se
// evaluan en orden y gana la primera coincidencia.
type routingRule struct {
	tool     domain.Tool
	keywords []string
}

// defaultRoutingRules fija la prioridad: presentation → diagram → image →
// report. Un mensaje que matchee varias categorias resuelve a la primera.
var defaultRoutingRules = []routingRule{
	{
		tool:     domain.ToolPresentation,
		keywords: []string{"presentation", "slide", "slides", "powerpoint", "ppt", "deck"},
	},
	{
		tool:     domain.ToolDiagram,
		keywords: []string{"diagram", "flowchart", "flow chart", "mind map", "mindmap", "org chart", "hierarchy"},
	},
	{
		tool:     domain.ToolImage,
		keywords: []string{"image", "picture", "illustration", "photo", "draw me", "drawing"},
	},
	{
		tool:     domain.ToolReport,
		keywords: []string{"report", "essay", "study guide", "write a document", "research paper"},
	},
}

// ToolRouter clasifica el texto del usuario hacia un tool. Es una funcion
// pura del texto y la tabla de keywords; nunca falla.
type ToolRouter struct {
	rules []routingRule
}

func NewToolRouter() *ToolRouter {
	return &ToolRouter{rules: defaultRoutingRules}
}

// Route devuelve el tool elegido y un rationale corto legible. Un override
// explicito distinto de auto es autoritativo y corta el analisis.
func (r *ToolRouter) Route(userText string, override domain.Tool) (domain.Tool, string) {
	if override != "" && override != domain.ToolAuto {
		return override, "explicit tool selection"
	}

	lowered := strings.ToLower(userText)
	for _, rule := range r.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.tool, fmt.Sprintf("matched keyword %q", kw)
			}
		}
	}

	return domain.ToolChat, "no tool keywords matched"
}
