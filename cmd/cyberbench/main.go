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


package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/cyberbench/ai"
	"github.com/poiesic/cyberbench/bench"
	"github.com/poiesic/cyberbench/guard"
	"github.com/urfave/cli/v2"
)

const defaultDBPath = ".cyberbench"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cyberbench",
		Usage: "Benchmark and run a cybersecurity education assistant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"CYBERBENCH_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "Load environment variables from this .env file",
				Value:   ".env",
				EnvVars: []string{"ENV_PATH"},
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return loadDotEnv(c.String("env-file"))
		},
		Commands: []*cli.Command{
			{
				Name:   "bench",
				Usage:  "Run a JSONL dataset through the assistant and score every answer",
				Action: benchCommand,
				Flags: append(append([]cli.Flag{
					&cli.StringFlag{
						Name:     "dataset",
						Usage:    "Path to the JSONL dataset",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Where to write the JSON report",
						Value: "results/benchmark_results.json",
					},
					dbFlag(),
					&cli.DurationFlag{
						Name:  "delay",
						Usage: "Pause between queries (0 disables)",
						Value: bench.DefaultDelay,
					},
					&cli.StringFlag{
						Name:  "run-id",
						Usage: "Name of the run (default: random)",
					},
					&cli.StringFlag{
						Name:  "resume",
						Usage: "Resume the given run, skipping recorded entries",
					},
					&cli.BoolFlag{
						Name:  "repair-json",
						Usage: "Repair unquoted keys before giving up on a model answer",
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address during the run (e.g. :9090)",
					},
					&cli.StringFlag{
						Name:  "validator",
						Usage: "Output validator (schema, passthrough)",
						Value: "schema",
					},
					&cli.IntFlag{
						Name:  "max-depth",
						Usage: "Flattening depth for structured answers",
						Value: 3,
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Do not print the result table",
					},
				}, aiFlags()...), embeddingCacheFlag()),
			},
			{
				Name:      "score",
				Usage:     "Score one predicted answer against a gold answer",
				Action:    scoreCommand,
				ArgsUsage: " ",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "gold",
						Usage:    "File holding the gold JSON answer",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "pred",
						Usage:    "File holding the predicted answer",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-depth",
						Usage: "Flattening depth for structured answers",
						Value: 3,
					},
				}, embeddingFlags()...),
			},
			{
				Name:   "rescore",
				Usage:  "Recompute scores of a report file or a stored run without querying",
				Action: rescoreCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "report",
						Usage: "Report file to rescore",
					},
					&cli.StringFlag{
						Name:  "run",
						Usage: "Stored run to rescore",
					},
					dbFlag(),
					&cli.StringFlag{
						Name:  "output",
						Usage: "Where to write the rescored report (default: overwrite --report)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent workers",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per embedding call",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entries",
						Value: 10,
					},
				}, embeddingFlags()...),
			},
			{
				Name:      "sanitize",
				Usage:     "Check a prompt against the sanitizer rules",
				ArgsUsage: "[prompt...] (reads stdin when empty)",
				Action:    sanitizeCommand,
				Flags:     sanitizerFlags(),
			},
			{
				Name:      "ask",
				Usage:     "Ask the assistant a question within a session",
				ArgsUsage: "<prompt...>",
				Action:    askCommand,
				Flags: append(append([]cli.Flag{
					dbFlag(),
					sessionFlag(),
					&cli.StringFlag{
						Name:  "validator",
						Usage: "Output validator (schema, passthrough)",
						Value: "schema",
					},
					&cli.IntFlag{
						Name:  "history-turns",
						Usage: "Prior messages replayed to the model",
						Value: 10,
					},
				}, sanitizerFlags()...), aiFlags()...),
			},
			{
				Name:   "history",
				Usage:  "Print the conversation history of a session",
				Action: historyCommand,
				Flags: []cli.Flag{
					dbFlag(),
					sessionFlag(),
				},
			},
			{
				Name:   "runs",
				Usage:  "List stored benchmark runs",
				Action: runsCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "delete",
						Usage: "Delete the given run instead of listing",
					},
				},
			},
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory",
		Value:   defaultDBPath,
		EnvVars: []string{"CYBERBENCH_DB"},
	}
}

func sessionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "session",
		Aliases:  []string{"s"},
		Usage:    "Conversation session key",
		Required: true,
	}
}

func sanitizerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "policy",
			Usage: "Built-in sanitizer policy (full, minimal)",
			Value: guard.PolicyFull,
		},
		&cli.StringFlag{
			Name:  "rules",
			Usage: "YAML rule table replacing the built-in policy",
		},
	}
}

func embeddingFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   defaults.EmbeddingHost,
			EnvVars: []string{"EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   defaults.EmbeddingModel,
			EnvVars: []string{"EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "embedding-api-key",
			Usage:   "API key for the embedding service",
			Value:   "none",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
	}
}

func embeddingCacheFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:  "embedding-cache",
		Usage: "Embedding cache budget in bytes (0 selects the default)",
	}
}

func aiFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	return append(embeddingFlags(),
		&cli.StringFlag{
			Name:    "backend",
			Usage:   "Generator backend (openai, gemini)",
			Value:   string(defaults.Backend),
			EnvVars: []string{"CYBERBENCH_BACKEND"},
		},
		&cli.StringFlag{
			Name:    "generator-host",
			Usage:   "Generator service host URL (openai backend)",
			Value:   defaults.GeneratorHost,
			EnvVars: []string{"GENERATOR_HOST"},
		},
		&cli.StringFlag{
			Name:    "generator-model",
			Usage:   "Generator model name",
			Value:   defaults.GeneratorModel,
			EnvVars: []string{"GENERATOR_MODEL"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the generator service",
			EnvVars: []string{"GEMINI_API_KEY", "GENERATOR_API_KEY"},
		},
		&cli.Float64Flag{
			Name:  "temperature",
			Usage: "Sampling temperature",
			Value: defaults.Temperature,
		},
		&cli.IntFlag{
			Name:  "max-tokens",
			Usage: "Maximum tokens per answer",
			Value: defaults.MaxTokens,
		},
	)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// loadDotEnv loads path into the environment. A missing file is not an error;
// variables already set are kept.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no .env file", "path", path)
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	slog.Debug("loaded .env file", "path", path)
	return nil
}
