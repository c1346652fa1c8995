package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/cyberbench/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder embeds answer text through an OpenAI-compatible endpoint.
// Blank texts never reach the service: they embed to a nil vector, which
// every similarity treats as zero.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(tokenOrNone(config.APIKey)),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}
	return newEmbedderWithClient(client, config)
}

func newEmbedderWithClient(client embeddings.EmbedderClient, config *ai.Config) (*Embedder, error) {
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}
	return &Embedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder", "model", config.EmbeddingModel),
	}, nil
}

// NewEmbedder creates an embedder for config.EmbeddingHost.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts embeds the non-blank texts in one batch and returns one vector
// per input, in input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var batch []string
	var positions []int
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		batch = append(batch, text)
		positions = append(positions, i)
	}
	if len(batch) == 0 {
		return vectors, nil
	}

	e.logger.Debug("embedding texts", "count", len(batch), "blank", len(texts)-len(batch))
	embedded, err := e.embedder.EmbedDocuments(ctx, batch)
	if err != nil {
		e.logger.Error("failed to embed texts", "count", len(batch), "err", err)
		return nil, fmt.Errorf("embed %d texts: %w", len(batch), err)
	}
	if len(embedded) != len(batch) {
		return nil, fmt.Errorf("embed %d texts: service returned %d vectors", len(batch), len(embedded))
	}
	for i, pos := range positions {
		vectors[pos] = embedded[i]
	}
	return vectors, nil
}

// tokenOrNone lets local OpenAI-compatible servers run without a key.
func tokenOrNone(key string) string {
	if key == "" {
		return "none"
	}
	return key
}
