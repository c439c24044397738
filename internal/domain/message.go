package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message es un turno individual dentro de una sesion. Inmutable una vez
// persistido, excepto el flag Helpful que el usuario puede fijar una sola vez.
type Message struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	UserID    string           `json:"user_id,omitempty"`
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
	Helpful   *bool            `json:"helpful,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// MessageMetadata es la union cerrada de resultados estructurados que un
// executor puede adjuntar al mensaje. Cada campo se valida por separado.
type MessageMetadata struct {
	ToolUsed        Tool            `json:"tool_used,omitempty"`
	Topic           string          `json:"topic,omitempty"`
	Slides          []Slide         `json:"slideData,omitempty"`
	Diagram         string          `json:"diagram,omitempty"`
	DocumentContent string          `json:"documentContent,omitempty"`
	Image           *ImageResult    `json:"image,omitempty"`
	CalendarEvent   *CalendarAction `json:"calendarEvent,omitempty"`
	Facts           []LearnedFact   `json:"facts,omitempty"`
}

// Merge aplica other sobre m campo a campo; el valor mas reciente gana.
func (m *MessageMetadata) Merge(other *MessageMetadata) {
	if other == nil {
		return
	}
	if other.ToolUsed != "" {
		m.ToolUsed = other.ToolUsed
	}
	if other.Topic != "" {
		m.Topic = other.Topic
	}
	if len(other.Slides) > 0 {
		m.Slides = other.Slides
	}
	if other.Diagram != "" {
		m.Diagram = other.Diagram
	}
	if other.DocumentContent != "" {
		m.DocumentContent = other.DocumentContent
	}
	if other.Image != nil {
		m.Image = other.Image
	}
	if other.CalendarEvent != nil {
		m.CalendarEvent = other.CalendarEvent
	}
	if len(other.Facts) > 0 {
		m.Facts = append(m.Facts, other.Facts...)
	}
}

// IsEmpty indica si no hay ningun campo estructurado presente.
func (m *MessageMetadata) IsEmpty() bool {
	return m == nil || (m.ToolUsed == "" && m.Topic == "" && len(m.Slides) == 0 &&
		m.Diagram == "" && m.DocumentContent == "" && m.Image == nil &&
		m.CalendarEvent == nil && len(m.Facts) == 0)
}

// Slide es una lamina de presentacion. El body son bullets separados por \n.
type Slide struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	ImagePrompt string `json:"imagePrompt,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// ImageResult es el payload binario de una generacion de imagen.
type ImageResult struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Prompt      string `json:"prompt"`
	Model       string `json:"model"`
}

// CalendarAction describe una accion de calendario que el frontend sincroniza
// con el proveedor externo. El backend solo la transporta como metadata.
type CalendarAction struct {
	Action      string `json:"action"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

// LearnedFact es un hecho sobre el estudiante extraido de la respuesta del
// modelo (marcadores <!--FACT:categoria:hecho-->).
type LearnedFact struct {
	Category string `json:"category"`
	Fact     string `json:"fact"`
}
