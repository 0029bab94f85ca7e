package ai

import (
	"context"
	"sync"

	"github.com/myrjola/sherlockchat/internal/models"
)

// MockClient is a scripted [Generator] and [Embedder] for tests and offline development.
type MockClient struct {
	GenerateReplyFunc func(ctx context.Context, system string, history []models.Turn, message string) (string, error)
	EmbedFunc         func(ctx context.Context, texts []string) ([][]float32, error)

	// Track calls for testing
	GenerateReplyCalls []GenerateReplyCall
	EmbedCalls         [][]string

	mu sync.Mutex // protects all fields above
}

type GenerateReplyCall struct {
	System  string
	History []models.Turn
	Message string
}

func NewMockClient() *MockClient {
	return &MockClient{
		GenerateReplyFunc:  nil,
		EmbedFunc:          nil,
		GenerateReplyCalls: make([]GenerateReplyCall, 0),
		EmbedCalls:         make([][]string, 0),
		mu:                 sync.Mutex{},
	}
}

func (m *MockClient) GenerateReply(
	ctx context.Context, system string, history []models.Turn, message string) (string, error) {
	m.mu.Lock()
	m.GenerateReplyCalls = append(m.GenerateReplyCalls, GenerateReplyCall{
		System:  system,
		History: append([]models.Turn(nil), history...),
		Message: message,
	})
	fn := m.GenerateReplyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, system, history, message)
	}
	return "Mock response", nil
}

func (m *MockClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.EmbedCalls = append(m.EmbedCalls, append([]string(nil), texts...))
	fn := m.EmbedFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

// SetReply makes every generation return reply.
func (m *MockClient) SetReply(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateReplyFunc = func(context.Context, string, []models.Turn, string) (string, error) {
		return reply, nil
	}
}

// SetGenerateReplyError makes every generation fail with err.
func (m *MockClient) SetGenerateReplyError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateReplyFunc = func(context.Context, string, []models.Turn, string) (string, error) {
		return "", err
	}
}

// Calls returns a copy of the recorded generation calls.
func (m *MockClient) Calls() []GenerateReplyCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]GenerateReplyCall, len(m.GenerateReplyCalls))
	copy(calls, m.GenerateReplyCalls)
	return calls
}
