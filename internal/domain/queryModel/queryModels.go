package queryModel

import "github.com/clearpathhq/supportbot/internal/domain/commonModels"

type Tier string

const (
	TierSimple  Tier = "simple"
	TierComplex Tier = "complex"
)

// Signal is one scored contribution of the complexity classifier, kept on
// the decision so the routing log can explain the outcome.
type Signal struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Detail string `json:"detail,omitempty"`
}

type RouteDecision struct {
	Classification Tier     `json:"classification"`
	Score          int      `json:"score"`
	Signals        []Signal `json:"signals"`
	Model          string   `json:"model"`
	Greeting       bool     `json:"greeting"`
}

type ScoredChunk struct {
	Chunk commonModels.DocChunk `json:"chunk"`
	Score float32               `json:"score"`
}

type Citation struct {
	Document string  `json:"document"`
	Page     int     `json:"page"`
	Score    float32 `json:"relevance_score"`
}

// RetrievalResult carries everything downstream of search: the assembled
// context block for the generator and the citation list for the client.
// ChunkCount is what the evaluator keys no_context off, zero is a valid
// outcome and not an error.
type RetrievalResult struct {
	Context    string        `json:"context"`
	Citations  []Citation    `json:"citations"`
	Chunks     []ScoredChunk `json:"chunks"`
	ChunkCount int           `json:"chunk_count"`
}

type Flag string

const (
	FlagNoContext       Flag = "no_context"
	FlagRefusal         Flag = "refusal"
	FlagConflictingInfo Flag = "conflicting_info"
)
