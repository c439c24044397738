package domain

import "fmt"

// Tool identifica una estrategia de generacion de respuestas.
type Tool string

const (
	ToolAuto         Tool = "auto"
	ToolChat         Tool = "chat"
	ToolReport       Tool = "report"
	ToolPresentation Tool = "presentation"
	ToolDiagram      Tool = "diagram"
	ToolImage        Tool = "image"
)

// ParseTool valida el nombre de tool recibido del caller. Vacio equivale a auto.
func ParseTool(name string) (Tool, error) {
	switch Tool(name) {
	case "", ToolAuto:
		return ToolAuto, nil
	case ToolChat, ToolReport, ToolPresentation, ToolDiagram, ToolImage:
		return Tool(name), nil
	}
	return "", fmt.Errorf("unsupported tool %q", name)
}
