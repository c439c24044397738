package imagegen

import (
	"context"
	"sync"

	"ai-tutor/internal/domain"
)

// MockGenerator permite tests sin backend de imagenes real. Es seguro para
// llamadas concurrentes (el fan-out de presentaciones lo requiere).
type MockGenerator struct {
	Result domain.ImageResult
	Err    error
	// FailPrompts hace fallar solo los prompts listados, para simular
	// fallos parciales en fan-out.
	FailPrompts map[string]error

	mu    sync.Mutex
	calls []Params
}

func (m *MockGenerator) GenerateImage(ctx context.Context, params Params) (domain.ImageResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, params)
	m.mu.Unlock()

	if err, ok := m.FailPrompts[params.Prompt]; ok {
		return domain.ImageResult{}, err
	}
	if m.Err != nil {
		return domain.ImageResult{}, m.Err
	}
	result := m.Result
	if result.ImageBase64 == "" {
		result.ImageBase64 = "aW1n"
		result.MimeType = "image/png"
	}
	result.Prompt = params.Prompt
	return result, nil
}

// Calls devuelve una copia de los parametros recibidos hasta el momento.
func (m *MockGenerator) Calls() []Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Params, len(m.calls))
	copy(out, m.calls)
	return out
}
