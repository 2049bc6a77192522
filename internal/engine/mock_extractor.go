package engine

import (
	"context"
	"sync"

	"github.com/Veraticus/spent/internal/model"
)

// MockExtractor is a test implementation of the Extractor interface. It
// returns queued responses in order and repeats the last one when the queue
// runs dry.
type MockExtractor struct {
	// Block, when set, is waited on before each call returns.
	Block     chan struct{}
	responses []MockExtraction
	calls     []string
	mu        sync.Mutex
}

// MockExtraction is one queued extractor response.
type MockExtraction struct {
	Err    error
	Result model.ExtractionResult
}

// NewMockExtractor creates a mock extractor with the given responses.
func NewMockExtractor(responses ...MockExtraction) *MockExtractor {
	return &MockExtractor{responses: responses}
}

// Extract records the call and returns the next queued response.
func (m *MockExtractor) Extract(ctx context.Context, text string) (model.ExtractionResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	var resp MockExtraction
	if len(m.responses) > 0 {
		resp = m.responses[0]
		if len(m.responses) > 1 {
			m.responses = m.responses[1:]
		}
	}
	block := m.Block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return model.ExtractionResult{}, ctx.Err()
		}
	}
	return resp.Result, resp.Err
}

// Calls returns the texts passed to Extract.
func (m *MockExtractor) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
