package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func TestMockEmbedder_Default(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	a, err := m.EmbedText(ctx, "Heartbleed critical")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "heartbleed, CRITICAL!")
	require.NoError(t, err)

	assert.Len(t, a, DefaultDimension)
	assert.InDelta(t, 1.0, dot(a, b), 1e-5, "case and punctuation do not matter")
	assert.Equal(t, 2, m.CallCount())

	empty, err := m.EmbedText(ctx, "{}")
	require.NoError(t, err)
	assert.Zero(t, dot(empty, empty))
}

func TestMockEmbedder_Batch(t *testing.T) {
	m := NewMockEmbedder()
	vectors, err := m.EmbedTexts(context.Background(), []string{"one", "two"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.Equal(t, 1, m.CallCount())
}

func TestMockEmbedder_Injection(t *testing.T) {
	m := NewMockEmbedder()
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("boom")
	}

	_, err := m.EmbedTexts(context.Background(), []string{"x"})
	assert.EqualError(t, err, "boom")

	m.Reset()
	assert.Zero(t, m.CallCount())
	_, err = m.EmbedTexts(context.Background(), []string{"x"})
	assert.NoError(t, err)
}

func TestMockGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("replays responses and repeats the last", func(t *testing.T) {
		g := NewMockGenerator("first", "second")
		for _, want := range []string{"first", "second", "second"} {
			got, err := g.Generate(ctx, "p")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
		assert.Equal(t, 3, g.CallCount())
	})

	t.Run("records prompts", func(t *testing.T) {
		g := NewMockGenerator()
		_, _ = g.Generate(ctx, "a")
		_, _ = g.Generate(ctx, "b")
		assert.Equal(t, []string{"a", "b"}, g.Prompts())
	})

	t.Run("returns configured error", func(t *testing.T) {
		g := NewMockGenerator("ignored")
		g.Err = errors.New("quota")
		_, err := g.Generate(ctx, "p")
		assert.EqualError(t, err, "quota")
	})
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider().(*MockProvider)
	assert.Same(t, p.GetMockEmbedder(), p.Embedder())
	assert.Same(t, p.GetMockGenerator(), p.Generator())
	assert.NoError(t, p.Close())
	assert.Equal(t, 1, p.CloseCount())

	p.CloseErr = errors.New("busy")
	assert.EqualError(t, p.Close(), "busy")
	assert.Equal(t, 2, p.CloseCount())
}
