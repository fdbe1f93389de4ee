package chatModel

import (
	"context"
	"time"

	"github.com/clearpathhq/supportbot/internal/domain/queryModel"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Conversation struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// GenerationResult is what the LLM edge hands back, usage comes from the
// provider when available.
type GenerationResult struct {
	Answer    string     `json:"answer"`
	Usage     TokenUsage `json:"usage"`
	LatencyMs int64      `json:"latency_ms"`
}

// QueryResult is the full pipeline outcome for one question.
type QueryResult struct {
	Answer    string                     `json:"answer"`
	Decision  queryModel.RouteDecision   `json:"decision"`
	Retrieval queryModel.RetrievalResult `json:"retrieval"`
	Flags     []queryModel.Flag          `json:"flags"`
	Usage     TokenUsage                 `json:"usage"`
	LatencyMs int64                      `json:"latency_ms"`
}

type ConversationStore interface {
	CreateConversation(ctx context.Context, conv Conversation) error
	GetConversation(ctx context.Context, id string) (Conversation, bool)
	ListConversations(ctx context.Context) ([]Conversation, error)
	RenameConversation(ctx context.Context, id string, title string) error
	DeleteConversation(ctx context.Context, id string) error
	AppendTurn(ctx context.Context, conversationId string, turn Turn) error
	RecentTurns(ctx context.Context, conversationId string, maxTurns int) ([]Turn, error)
}
