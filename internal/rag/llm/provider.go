package llm

import (
	"context"

	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
)

// Request is a single generation call. History carries prior turns
// oldest first, already windowed and truncated by the caller.
type Request struct {
	Model       string
	System      string
	History     []chatModel.Turn
	UserMessage string
}

// TokenFunc receives each answer fragment as the model emits it.
// Returning an error aborts the stream.
type TokenFunc func(token string) error

type Provider interface {
	Generate(ctx context.Context, req Request) (chatModel.GenerationResult, error)
	GenerateStream(ctx context.Context, req Request, onToken TokenFunc) (chatModel.GenerationResult, error)
}
