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


package openai

import (
	"io"
	"log/slog"

	"github.com/poiesic/cyberbench/ai"
)

// Provider pairs the OpenAI-compatible embedder with a generator. The
// generator comes from this package or from another backend.
type Provider struct {
	backend   ai.Backend
	embedder  *Embedder
	generator ai.Generator
	logger    *slog.Logger
}

// NewProvider builds an embedder and a generator that both talk to
// OpenAI-compatible endpoints.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	generator, err := newGenerator(config)
	if err != nil {
		return nil, err
	}
	return NewProviderWithGenerator(config, embedder, generator), nil
}

// NewProviderWithGenerator pairs embedder with a generator of config.Backend.
// Close closes the generator when it implements io.Closer.
func NewProviderWithGenerator(config *ai.Config, embedder *Embedder, generator ai.Generator) ai.AIProvider {
	return &Provider{
		backend:   config.Backend,
		embedder:  embedder,
		generator: generator,
		logger:    slog.Default().With("component", "ai-provider", "backend", config.Backend),
	}
}

// NewConcreteEmbedder returns the concrete embedder for provider assembly.
func NewConcreteEmbedder(config *ai.Config) (*Embedder, error) {
	return newEmbedder(config)
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) Generator() ai.Generator {
	return p.generator
}

func (p *Provider) Close() error {
	p.logger.Debug("closing provider")
	if c, ok := p.generator.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
