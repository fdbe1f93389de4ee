package groq

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	"github.com/clearpathhq/supportbot/internal/rag/llm"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

// Groq exposes an OpenAI-compatible API, so the official openai client
// pointed at config.GroqBaseURL is the whole integration.

type groqClient struct {
	client openai.Client
}

var logger *logger_i.Logger
var instance *groqClient
var once sync.Once

// GetGroqClient builds the shared Groq provider. Returns nil when
// GROQ_API_KEY is not set.
func GetGroqClient(httpClient *http.Client) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_groq")
		apiKey := os.Getenv("GROQ_API_KEY")
		if apiKey == "" {
			logger.Error("GROQ_API_KEY not set, groq provider unavailable")
			return
		}

		opts := []option.RequestOption{
			option.WithAPIKey(apiKey),
			option.WithBaseURL(config.GroqBaseURL),
		}
		if httpClient != nil {
			opts = append(opts, option.WithHTTPClient(httpClient))
		}
		instance = &groqClient{client: openai.NewClient(opts...)}
		logger.Info("Groq client created", "baseUrl", config.GroqBaseURL)
	})

	if instance == nil {
		return nil
	}
	return instance
}

func (g *groqClient) Generate(ctx context.Context, req llm.Request) (chatModel.GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, config.LLMTimeout)
	defer cancel()

	start := time.Now()
	completion, err := g.client.Chat.Completions.New(ctx, buildParams(req))
	if err != nil {
		return chatModel.GenerationResult{}, err
	}
	if len(completion.Choices) == 0 {
		return chatModel.GenerationResult{}, errors.New("groq returned no choices")
	}

	return chatModel.GenerationResult{
		Answer: completion.Choices[0].Message.Content,
		Usage: chatModel.TokenUsage{
			Input:  int(completion.Usage.PromptTokens),
			Output: int(completion.Usage.CompletionTokens),
		},
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (g *groqClient) GenerateStream(ctx context.Context, req llm.Request, onToken llm.TokenFunc) (chatModel.GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, config.LLMTimeout)
	defer cancel()

	params := buildParams(req)
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{
		IncludeUsage: openai.Bool(true),
	}

	start := time.Now()
	stream := g.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var acc openai.ChatCompletionAccumulator
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if err := onToken(delta); err != nil {
				return chatModel.GenerationResult{}, err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return chatModel.GenerationResult{}, err
	}

	result := chatModel.GenerationResult{
		Usage: chatModel.TokenUsage{
			Input:  int(acc.Usage.PromptTokens),
			Output: int(acc.Usage.CompletionTokens),
		},
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if len(acc.Choices) > 0 {
		result.Answer = acc.Choices[0].Message.Content
	}
	return result, nil
}

func buildParams(req llm.Request) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	messages = append(messages, openai.SystemMessage(req.System))
	for _, turn := range req.History {
		if turn.Role == chatModel.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.UserMessage))

	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(float64(config.ModelTemperature)),
		MaxTokens:   openai.Int(int64(config.ModelMaxTokens)),
	}
}
