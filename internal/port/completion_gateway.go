package port

import "context"

// CompletionRequest carries a single prompt to a language model provider.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// CompletionGateway abstracts free-text completions from an external
// language model. Implementations are treated as unreliable and rate
// limited; callers must be prepared to fall back on any error.
type CompletionGateway interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
