package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/cyberbench/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/embeddings"
)

// lengthClient embeds every text as {len(text)} and records the batches.
type lengthClient struct {
	batches [][]string
	err     error
}

func (c *lengthClient) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	c.batches = append(c.batches, texts)
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text))}
	}
	return out, nil
}

func TestEmbedder_EmbedTexts(t *testing.T) {
	ctx := context.Background()

	t.Run("blank texts skip the service", func(t *testing.T) {
		client := &lengthClient{}
		e, err := newEmbedderWithClient(client, ai.DefaultConfig())
		require.NoError(t, err)

		vectors, err := e.EmbedTexts(ctx, []string{"sql injection", "  ", "xss", ""})
		require.NoError(t, err)
		require.Len(t, vectors, 4)
		assert.Equal(t, []float32{13}, vectors[0])
		assert.Nil(t, vectors[1])
		assert.Equal(t, []float32{3}, vectors[2])
		assert.Nil(t, vectors[3])
		require.Len(t, client.batches, 1)
		assert.Equal(t, []string{"sql injection", "xss"}, client.batches[0])
	})

	t.Run("all blank makes no call", func(t *testing.T) {
		client := &lengthClient{}
		e, err := newEmbedderWithClient(client, ai.DefaultConfig())
		require.NoError(t, err)

		vector, err := e.EmbedText(ctx, "\n\t")
		require.NoError(t, err)
		assert.Nil(t, vector)
		assert.Empty(t, client.batches)
	})

	t.Run("service errors are wrapped", func(t *testing.T) {
		quota := errors.New("quota exceeded")
		e, err := newEmbedderWithClient(&lengthClient{err: quota}, ai.DefaultConfig())
		require.NoError(t, err)

		_, err = e.EmbedText(ctx, "csrf")
		assert.ErrorIs(t, err, quota)
	})

	t.Run("short responses are rejected", func(t *testing.T) {
		client := embeddings.EmbedderClientFunc(func(context.Context, []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		})
		e, err := newEmbedderWithClient(client, ai.DefaultConfig())
		require.NoError(t, err)

		_, err = e.EmbedTexts(ctx, []string{"a", "b"})
		assert.ErrorContains(t, err, "returned 1 vectors")
	})
}
