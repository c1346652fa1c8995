// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the model services used by cyberbench.
//
// Two collaborators are modeled:
//
//   - Embedder: turns text into vectors for the semantic similarity signal
//   - Generator: the assistant under evaluation, answering a prompt with text
//
// AIProvider aggregates both so that a benchmark run or the live assistant
// holds one explicitly constructed handle instead of process-wide state.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible embedder and generator (Ollama, vLLM, OpenAI)
//   - ai/gemini: Gemini generator
//   - ai/cache: memoizing Embedder wrapper
//   - ai/mock: deterministic test doubles
//
// # Constructor Return Type Pattern
//
// Public constructors of production implementations (openai.NewProvider,
// openai.NewEmbedder, gemini.NewGenerator) return INTERFACE types.
// Test utility constructors (mock.NewMockEmbedder, mock.NewMockGenerator)
// return CONCRETE types so tests can inject behavior and inspect calls.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	answer, err := provider.Generator().Generate(ctx, ai.BenchmarkPrompt(instruction, input))
//	vector, err := provider.Embedder().EmbedText(ctx, answer)
package ai
