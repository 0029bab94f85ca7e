package ai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/sherlockchat/internal/errors"
	"github.com/myrjola/sherlockchat/internal/models"
	"google.golang.org/genai"
)

const (
	defaultGeminiModel          = "gemini-2.0-flash"
	defaultGeminiEmbeddingModel = "gemini-embedding-001"
)

type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiClient generates replies and embeddings with the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{ //nolint:exhaustruct // defaults are fine
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) GenerateReply(
	ctx context.Context, system string, history []models.Turn, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == models.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents,
		&genai.GenerateContentConfig{ //nolint:exhaustruct // this is better for readability
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			MaxOutputTokens:   MaxTokens,
		})
	if err != nil {
		return "", generationError(err, "generate content", slog.String("model", c.model))
	}
	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", errors.Wrap(ErrGeneration, "empty content", slog.String("model", c.model))
	}
	return truncate(reply), nil
}

func (c *GeminiClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}
	result, err := c.client.Models.EmbedContent(ctx, defaultGeminiEmbeddingModel, contents,
		&genai.EmbedContentConfig{ //nolint:exhaustruct // defaults are fine
			TaskType: "SEMANTIC_SIMILARITY",
		})
	if err != nil {
		return nil, generationError(err, "embed content", slog.Int("texts", len(texts)))
	}
	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
