package domain

// EventType clasifica los eventos del canal de streaming hacia el caller.
type EventType string

const (
	EventRouting    EventType = "routing"
	EventGenerating EventType = "generating"
	EventToken      EventType = "token"
	EventMetadata   EventType = "metadata"
	EventError      EventType = "error"
	EventDone       EventType = "done"
)

// StreamEvent es una unidad del protocolo de entrega ordenada. El contrato:
// routing (0 o 1, siempre primero) → generating/token/metadata intercalados →
// exactamente un terminal (error XOR done).
type StreamEvent struct {
	Type     EventType
	Tool     Tool             // routing y done
	Reason   string           // rationale del router, solo routing
	Token    string           // token
	Metadata *MessageMetadata // metadata y done
	Err      *ToolError       // error
}

// IsTerminal indica si el evento cierra el stream.
func (e StreamEvent) IsTerminal() bool {
	return e.Type == EventError || e.Type == EventDone
}
