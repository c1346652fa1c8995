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


// Package openai talks to OpenAI-compatible services (OpenAI, Ollama, vLLM)
// through langchaingo.
//
// The Embedder backs the semantic similarity signal of the scorer; the
// Generator answers benchmark and assistant prompts when the configured
// backend is openai. With the gemini backend the workspace pairs this
// package's Embedder with a Gemini generator via NewProviderWithGenerator.
//
//	provider, err := openai.NewProvider(ai.NewConfig(
//	    ai.WithEmbeddingHost("http://localhost:11434"),
//	    ai.WithGeneratorModel("qwen2.5:3b"),
//	))
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//
//	answer, err := provider.Generator().Generate(ctx, ai.BenchmarkPrompt(entry.Instruction, entry.Input))
package openai
