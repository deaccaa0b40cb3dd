package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for MockProvider.Generate.
type MockResponse struct {
	Content json.RawMessage
	Err     error
}

// MockProvider is a deterministic Provider for tests and local runs.
// Generate pops canned responses in FIFO order; Stream replays Chunks;
// Embed returns a fixed vector per input.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Chunks    []StreamChunk
	StreamErr error
	EmbedErr  error
	Vector    []float32
	Calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses, Vector: []float32{0.1, 0.2, 0.3}}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{Content: resp.Content, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) Stream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	chunks := append([]StreamChunk(nil), m.Chunks...)
	startErr := m.StreamErr
	m.mu.Unlock()
	if startErr != nil {
		return nil, startErr
	}
	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		for _, c := range chunks {
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (m *MockProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EmbedErr != nil {
		return nil, m.EmbedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = append([]float32(nil), m.Vector...)
	}
	return out, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
