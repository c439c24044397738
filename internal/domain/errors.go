package domain

// ErrorKind es la taxonomia de fallos que puede reportar un executor.
type ErrorKind string

const (
	ErrKindRateLimited         ErrorKind = "rate_limited"
	ErrKindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	ErrKindMalformedOutput     ErrorKind = "malformed_output"
	ErrKindValidation          ErrorKind = "validation_error"
	ErrKindPartialFanout       ErrorKind = "partial_fanout_failure"
)

// ToolError es un fallo clasificado con mensaje apto para el usuario final.
// Nunca expone detalles tecnicos del upstream.
type ToolError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *ToolError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// NewValidationError construye un error de contrato de entrada.
func NewValidationError(message string) *ToolError {
	return &ToolError{Kind: ErrKindValidation, Message: message}
}
