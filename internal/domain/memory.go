package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// Importance pondera cuanto pesa un recuerdo al consolidar memoria.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// EpisodicMemory es un recuerdo de aprendizaje por usuario, recuperable por
// similitud semantica para personalizar turnos futuros.
type EpisodicMemory struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	SessionID  string          `json:"session_id,omitempty"`
	Content    string          `json:"content"`
	Topic      string          `json:"topic,omitempty"`
	Importance Importance      `json:"importance"`
	Embedding  pgvector.Vector `json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}
