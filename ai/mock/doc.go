// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Generator,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Canned answers
//	gen := mock.NewMockGenerator(`{"name":"Heartbleed"}`)
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("unavailable")
//	}
//
// # Default Behavior
//
//   - MockEmbedder: bag-of-words vectors, so identical wording (ignoring case
//     and punctuation) gives cosine 1 and disjoint wording gives cosine 0
//   - MockGenerator: replays canned answers in order, repeating the last one
//   - MockProvider: aggregates mock embedder and generator
package mock
