package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, conversations and jobs fall back to in-memory stores
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5

	//chunking
	ChunkSize    = 500
	ChunkOverlap = 100

	//retrieval
	TopK                        = 5
	SimilarityThreshold float32 = 0.3
	MaxContextChars             = 4000

	//embeddings are produced locally, no provider round trip
	EmbeddingDimensions   = 384
	EmbeddingModelVersion = "fnv-hash-384-v1"

	//routing
	ComplexityBoundary = 2
	GreetingMaxWords   = 5
	LongQueryWords     = 15
	ModerateQueryWords = 10

	//generation models, groq serves both tiers
	ModelSimple              = "llama-3.1-8b-instant"
	ModelComplex             = "llama-3.3-70b-versatile"
	GroqBaseURL              = "https://api.groq.com/openai/v1"
	ModelTemperature float32 = 0.3
	ModelMaxTokens           = 1024
	LLMTimeout               = 60 * time.Second

	//gemini fallback provider, selected with LLM_PROVIDER=gemini
	GeminiModelName = "gemini-2.5-flash-lite-preview-09-2025"

	//conversation history sent to the generator
	HistoryMaxTurns          = 5
	HistoryAssistantMaxChars = 500

	//auth, override the token with API_AUTH_TOKEN
	NoAuthBypass = !IS_PROD
	AuthToken    = "dev-token"

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":8000"

	//ingest job buffer limit
	BufferLimit      = 100
	IngestJobTimeout = 5 * time.Minute

	//document intake
	DocsDir        = "docs"
	MaxUploadBytes = 32 << 20
	IngestBatchLen = 100

	//vector backend: "memory" (default) or "qdrant", override with VECTOR_BACKEND
	VectorBackend           = "memory"
	QdrantCollection        = "clearpath-docs"
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantKeepAliveTimeout  = 30 * time.Second

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisJobStore          = 0
	RedisConversationStore = 1

	//redis timeouts
	RedisJobStoreTTL          = 24 * time.Hour
	RedisConversationStoreTTL = 7 * 24 * time.Hour
)

// SystemPrompt frames every generation call. Keep rule numbering stable,
// the evaluator phrase lists assume rule 3's canned sentence.
const SystemPrompt = `You are ClearPath AI, the official intelligent support agent for ClearPath, a project management SaaS platform.

Response rules:
1. Answer ONLY from the documentation provided in the context block.
2. Always cite which document and page your answer comes from.
3. If the context does not contain the answer, say exactly: "I don't have enough information in my documentation to answer that accurately. Please contact our support team for help with this."
4. Keep answers concise and actionable. Use numbered steps for procedures.
5. Never invent features, prices, or policies that are not in the documentation.
6. If documents disagree with each other, say so explicitly and cite both.
7. Maintain a friendly, professional tone.`

const (
	UserMessageTemplate = "<context>\n%s\n</context>\n\nQuestion: %s"
	EmptyContextLine    = "No relevant documentation found for this query."
	GreetingContext     = "The user is greeting you. Respond warmly and ask how you can help with ClearPath."
	FallbackAnswer      = "I'm sorry, I'm having trouble generating a response right now. Please try again in a moment."
	TitlePrompt         = "Generate a 3-5 word title for a support conversation that starts with this question. Reply with the title only, no quotes:\n\n%s"
)
