// Package llmtest provides an llm.Client test double.
package llmtest

import (
	"context"
	"strings"
	"sync"

	"github.com/WeBuildYourAi/compliance-agent/internal/llm"
)

// MockClient implements llm.Client by delegating to function fields and records every prompt.
type MockClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GetModelFunc        func(tier llm.ModelTier) string
	CloseFunc           func() error

	mu      sync.Mutex
	prompts []string
}

// GenerateContent implements llm.Client.
func (m *MockClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(prompt)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

// GenerateJSON implements llm.Client.
func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(prompt)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

// GetModel implements llm.Client.
func (m *MockClient) GetModel(tier llm.ModelTier) string {
	if m.GetModelFunc != nil {
		return m.GetModelFunc(tier)
	}
	return "mock-model"
}

// Close implements llm.Client.
func (m *MockClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockClient) record(prompt string) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
}

// Prompts returns every prompt received so far.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// PromptsForTask returns the prompts whose task line matches task.
func (m *MockClient) PromptsForTask(task string) []string {
	var out []string
	for _, p := range m.Prompts() {
		if TaskOf(p) == task {
			out = append(out, p)
		}
	}
	return out
}

// TaskOf returns the task name from a prompt's leading "TASK: <name>" line.
func TaskOf(prompt string) string {
	first, _, _ := strings.Cut(prompt, "\n")
	name, ok := strings.CutPrefix(strings.TrimSpace(first), "TASK:")
	if !ok {
		return ""
	}
	return strings.TrimSpace(name)
}

// Handler answers one prompt.
type Handler func(ctx context.Context, prompt string) (string, error)

// ByTask routes prompts to handlers keyed by task name. Unrouted tasks get "{}".
func ByTask(handlers map[string]Handler) func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return func(ctx context.Context, prompt string, _ llm.ModelTier) (string, error) {
		if h, ok := handlers[TaskOf(prompt)]; ok {
			return h(ctx, prompt)
		}
		return "{}", nil
	}
}

// Static returns a handler that always answers resp.
func Static(resp string) Handler {
	return func(context.Context, string) (string, error) { return resp, nil }
}

// Failing returns a handler that always fails with err.
func Failing(err error) Handler {
	return func(context.Context, string) (string, error) { return "", err }
}
