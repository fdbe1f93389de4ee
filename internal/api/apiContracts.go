package api

import "time"

// requests---------------------

type QueryRequest struct {
	Query          string `json:"query" validate:"required" example:"How do I reset my password?"`
	ConversationID string `json:"conversation_id,omitempty" example:"conv_550"`
}

type RenameConversationRequest struct {
	Title string `json:"title" validate:"required" example:"Password reset help"`
}

// responses--------------------

type TokenUsage struct {
	Input  int `json:"input" example:"512"`
	Output int `json:"output" example:"128"`
}

type QueryMetadata struct {
	ModelUsed       string     `json:"model_used" example:"llama-3.1-8b-instant"`
	Classification  string     `json:"classification" example:"simple"`
	Tokens          TokenUsage `json:"tokens"`
	LatencyMs       int64      `json:"latency_ms" example:"412"`
	ChunksRetrieved int        `json:"chunks_retrieved" example:"3"`
	EvaluatorFlags  []string   `json:"evaluator_flags"`
}

type Source struct {
	Document       string  `json:"document" example:"billing_guide.pdf"`
	Page           int     `json:"page" example:"3"`
	RelevanceScore float64 `json:"relevance_score" example:"0.8214"`
}

type QueryResponse struct {
	Answer         string        `json:"answer"`
	Metadata       QueryMetadata `json:"metadata"`
	Sources        []Source      `json:"sources"`
	ConversationID string        `json:"conversation_id" example:"conv_550"`
}

type ConversationSummary struct {
	Id        string    `json:"id" example:"conv_550"`
	Title     string    `json:"title" example:"Password reset help"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ConversationTurn struct {
	Role      string    `json:"role" example:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationDetail struct {
	ConversationSummary
	Turns []ConversationTurn `json:"turns"`
}

// SSE payloads, one struct per event name on /query/stream

type StreamMetadataEvent struct {
	ConversationID  string   `json:"conversation_id"`
	Classification  string   `json:"classification"`
	ModelUsed       string   `json:"model_used"`
	ChunksRetrieved int      `json:"chunks_retrieved"`
	Sources         []Source `json:"sources"`
}

type StreamTokenEvent struct {
	Token string `json:"token"`
}

type StreamDoneEvent struct {
	Tokens         TokenUsage `json:"tokens"`
	LatencyMs      int64      `json:"latency_ms"`
	EvaluatorFlags []string   `json:"evaluator_flags"`
	Warning        string     `json:"warning,omitempty"`
}

// StreamErrorEvent carries a user-displayable message, the detail is for
// operators chasing logs.
type StreamErrorEvent struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ingest jobs------------------

type InitJobResponse struct {
	Id        string `json:"id" example:"job_cz109"`
	StatusURL string `json:"status_url" example:"documents/status/job_cz109"`
}

type IngestOutcome struct {
	Document       string `json:"document" example:"billing_guide.pdf"`
	PagesExtracted int    `json:"pages_extracted" example:"12"`
	ChunksIndexed  int    `json:"chunks_indexed" example:"48"`
}

type Result struct {
	Status string         `json:"status" example:"COMPLETE"`
	Step   string         `json:"step,omitempty" example:"Indexing"`
	Ingest *IngestOutcome `json:"ingest,omitempty"`
}

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

// errors and health------------

type ErrorResponse struct {
	Id    string            `json:"id,omitempty"`
	Error *JobOutgoingError `json:"error"`
}

type HealthResponse struct {
	Status        string `json:"status" example:"ok"`
	IndexedChunks int    `json:"indexed_chunks" example:"1024"`
	StoreMode     string `json:"store_mode" example:"redis"`
	UptimeSeconds int64  `json:"uptime_seconds" example:"3600"`
}
