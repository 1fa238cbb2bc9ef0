// File: internal/services/ai/interface.go
package ai

import "context"

// Message is one role-tagged entry of a conversation sent to the model.
type Message struct {
	Role    string
	Content string
}

// ProviderStatus represents AI provider health
type ProviderStatus struct {
	IsHealthy bool
	Message   string
}

// CompletionProvider handles chat completions against an OpenAI-compatible
// endpoint.
type CompletionProvider interface {
	GetCompletion(ctx context.Context, model string, messages []Message) (string, error)
	StreamChat(ctx context.Context, model string, messages []Message, onDelta func(string) error) error
	HealthCheck(ctx context.Context) error
	GetStatus(ctx context.Context) ProviderStatus
}
