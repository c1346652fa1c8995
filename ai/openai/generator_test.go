package openai

import (
	"context"
	"testing"

	"github.com/poiesic/cyberbench/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms/fake"
)

func TestGenerator_Generate(t *testing.T) {
	llm := fake.NewFakeLLM([]string{"  {\"name\": \"Heartbleed\"}\n", "second"})
	g := newGeneratorWithModel(llm, ai.DefaultConfig())

	answer, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Heartbleed"}`, answer)

	answer, err = g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "second", answer)
}

func TestGenerator_Error(t *testing.T) {
	g := newGeneratorWithModel(fake.NewFakeLLM(nil), ai.DefaultConfig())

	_, err := g.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(ai.NewConfig(ai.WithEmbeddingModel("")))
	assert.ErrorContains(t, err, "EmbeddingModel is required")
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(ai.DefaultConfig())
	require.NoError(t, err)
	defer p.Close()

	assert.NotNil(t, p.Embedder())
	assert.NotNil(t, p.Generator())
}
