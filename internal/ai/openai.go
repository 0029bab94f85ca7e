package ai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/sashabaranov/go-openai"
)

const MaxTokens = 1024

type OpenAIConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint. Empty uses the public OpenAI API.
	BaseURL string
}

// OpenAIClient generates replies with the chat completion API and embeddings with text-embedding-3-small.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (c *OpenAIClient) GenerateReply(
	ctx context.Context, system string, history []models.Turn, message string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2) //nolint:mnd // system and user message
	messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // this is better for readability
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // this is better for readability
			Role:    role,
			Content: turn.Text,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // this is better for readability
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	completion, err := c.client.CreateChatCompletion(ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     c.model,
			MaxTokens: MaxTokens,
			Messages:  messages,
		},
	)
	if err != nil {
		return "", generationError(err, "create chat completion", slog.String("model", c.model))
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrGeneration, "no choices in completion", slog.String("model", c.model))
	}
	reply := strings.TrimSpace(completion.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.Wrap(ErrGeneration, "empty completion", slog.String("model", c.model))
	}
	return truncate(reply), nil
}

func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{ //nolint:exhaustruct // defaults are fine
		Input: texts,
		Model: openai.SmallEmbedding3,
	})
	if err != nil {
		return nil, generationError(err, "create embeddings", slog.Int("texts", len(texts)))
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.Wrap(ErrGeneration, "embedding count mismatch",
			slog.Int("want", len(texts)), slog.Int("got", len(resp.Data)))
	}
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, errors.Wrap(ErrGeneration, "embedding index out of range", slog.Int("index", d.Index))
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
