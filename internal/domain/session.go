package domain

import "time"

// Session agrupa la secuencia ordenada de mensajes de una conversacion.
// Se crea de forma perezosa con el primer mensaje del usuario.
type Session struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id,omitempty"`
	Title              string    `json:"title"`
	LastMessagePreview string    `json:"last_message_preview,omitempty"`
	Topic              string    `json:"topic,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SessionSummary son los campos heuristicos que se actualizan tras cada
// turno del asistente. Punteros nil significan "no tocar".
type SessionSummary struct {
	Title              *string
	LastMessagePreview *string
	Topic              *string
}
