package gemini

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	"github.com/clearpathhq/supportbot/internal/rag/llm"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var instance *llmClient
var once sync.Once

// GetGeminiClient builds the shared Gemini provider, selected with
// LLM_PROVIDER=gemini. Returns nil when GEMINI_API_KEY is not set or the
// client cannot be created.
func GetGeminiClient(ctx context.Context, httpClient *http.Client) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			logger.Error("GEMINI_API_KEY not set, gemini provider unavailable")
			return
		}

		c, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: httpClient,
		})
		if err != nil {
			logger.Error("Error creating Gemini client", "error", err)
			return
		}
		instance = &llmClient{client: c, modelName: config.GeminiModelName}
		logger.Info("Gemini client created", "model", config.GeminiModelName)
	})

	if instance == nil {
		return nil
	}
	return instance
}

func (c *llmClient) Generate(ctx context.Context, req llm.Request) (chatModel.GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, config.LLMTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, contents(req), generateConfig(req))
	if err != nil {
		return chatModel.GenerationResult{}, err
	}

	return chatModel.GenerationResult{
		Answer:    resp.Text(),
		Usage:     usageFrom(resp.UsageMetadata),
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (c *llmClient) GenerateStream(ctx context.Context, req llm.Request, onToken llm.TokenFunc) (chatModel.GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, config.LLMTimeout)
	defer cancel()

	start := time.Now()
	var sb strings.Builder
	var usage chatModel.TokenUsage
	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.modelName, contents(req), generateConfig(req)) {
		if err != nil {
			return chatModel.GenerationResult{}, err
		}
		if piece := resp.Text(); piece != "" {
			sb.WriteString(piece)
			if err := onToken(piece); err != nil {
				return chatModel.GenerationResult{}, err
			}
		}
		if resp.UsageMetadata != nil {
			usage = usageFrom(resp.UsageMetadata)
		}
	}

	return chatModel.GenerationResult{
		Answer:    sb.String(),
		Usage:     usage,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// contents maps conversation turns onto gemini roles, assistant turns
// become the model role.
func contents(req llm.Request) []*genai.Content {
	out := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.RoleUser
		if turn.Role == chatModel.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(turn.Content, genai.Role(role)))
	}
	return append(out, genai.NewContentFromText(req.UserMessage, genai.RoleUser))
}

func generateConfig(req llm.Request) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		},
		Temperature:     genai.Ptr(config.ModelTemperature),
		MaxOutputTokens: config.ModelMaxTokens,
	}
}

func usageFrom(meta *genai.GenerateContentResponseUsageMetadata) chatModel.TokenUsage {
	if meta == nil {
		return chatModel.TokenUsage{}
	}
	return chatModel.TokenUsage{
		Input:  int(meta.PromptTokenCount),
		Output: int(meta.CandidatesTokenCount),
	}
}
