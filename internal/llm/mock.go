package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response   string
	Tokens     []string
	Embedding  []float32
	Err        error
	LastSystem string
	LastPrompt string
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	return m.Response, m.Err
}

func (m *MockClient) GenerateChat(ctx context.Context, system string, history []ChatMessage) (string, error) {
	m.LastSystem = system
	if len(history) > 0 {
		m.LastPrompt = history[len(history)-1].Content
	}
	return m.Response, m.Err
}

func (m *MockClient) StreamChat(ctx context.Context, system string, history []ChatMessage, onToken func(string) error) (string, error) {
	m.LastSystem = system
	if len(history) > 0 {
		m.LastPrompt = history[len(history)-1].Content
	}
	if m.Err != nil {
		return "", m.Err
	}
	tokens := m.Tokens
	if len(tokens) == 0 && m.Response != "" {
		tokens = []string{m.Response}
	}
	var full string
	for _, tok := range tokens {
		if err := ctx.Err(); err != nil {
			return full, err
		}
		full += tok
		if err := onToken(tok); err != nil {
			return full, err
		}
	}
	return full, nil
}

func (m *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Embedding != nil {
		return m.Embedding, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}
