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


// Package gemini provides an ai.Generator backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/cyberbench/ai"
	"google.golang.org/genai"
)

// DefaultModel is used when the configuration does not name a Gemini model.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model produces no text.
var ErrEmptyResponse = errors.New("gemini returned no text")

// contentGenerator is the slice of genai.Models the generator uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator implements ai.Generator with genai.
type Generator struct {
	models contentGenerator
	model  string
	config *genai.GenerateContentConfig
	logger *slog.Logger
}

// NewGenerator creates a Gemini generator. The config must select the
// gemini backend and carry an API key.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(ctx context.Context, config *ai.Config) (ai.Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Backend != ai.BackendGemini {
		return nil, errors.New("gemini: config backend is " + string(config.Backend))
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return newGenerator(client.Models, config), nil
}

func newGenerator(models contentGenerator, config *ai.Config) *Generator {
	model := config.GeneratorModel
	if model == "" || !strings.HasPrefix(model, "gemini") {
		model = DefaultModel
	}
	return &Generator{
		models: models,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(config.Temperature)),
			MaxOutputTokens: int32(config.MaxTokens),
		},
		logger: slog.Default().With("component", "gemini-generator", "model", model),
	}
}

// Generate sends prompt as a single user turn and returns the trimmed text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.logger.Debug("generating answer", "prompt_length", len(prompt))

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		g.logger.Error("failed to generate answer", "err", err)
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
