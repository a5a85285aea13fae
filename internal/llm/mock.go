package llm

import "context"

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response  string
	Err       error
	LastTurns []Turn
	Calls     int
}

func (m *MockClient) Chat(_ context.Context, turns []Turn) (string, error) {
	m.Calls++
	m.LastTurns = turns
	return m.Response, m.Err
}
