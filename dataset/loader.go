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


package dataset

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/cyberbench/core"
	"github.com/tidwall/gjson"
)

// maxLineSize bounds a single dataset line.
const maxLineSize = 16 * 1024 * 1024

// Dataset is the result of loading a JSONL file.
type Dataset struct {
	Entries []core.DatasetEntry
	Skipped []*LineError
}

// Option configures loading.
type Option func(*loader)

type loader struct {
	logger *slog.Logger
}

// WithLogger sets the logger that reports skipped lines.
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		l.logger = logger
	}
}

// LoadJSONL reads a newline-delimited JSON dataset from path. A missing or
// unreadable file is an error wrapping ErrDatasetFile; malformed lines are
// skipped and reported in Dataset.Skipped.
func LoadJSONL(path string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetFile, err)
	}
	defer f.Close()

	ds, err := ReadJSONL(f, opts...)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// ReadJSONL reads dataset entries from r, one JSON object per non-blank line.
//
// Missing string fields default to empty; instruction, input and output are
// trimmed. An entry without an id is named "<no-id-N>" where N is its 1-based
// position among loaded entries. Non-string field values are kept as their
// JSON text.
func ReadJSONL(r io.Reader, opts ...Option) (*Dataset, error) {
	l := &loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	logger := l.logger.With("component", "dataset")

	ds := &Dataset{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineno := 0
	for scanner.Scan() {
		lineno++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		entry, hasID, err := parseLine(raw)
		if err != nil {
			lerr := &LineError{Line: lineno, Err: err}
			ds.Skipped = append(ds.Skipped, lerr)
			logger.Warn("skipping invalid dataset line", "line", lineno, "err", err)
			continue
		}
		if !hasID {
			entry.ID = fmt.Sprintf("<no-id-%d>", len(ds.Entries)+1)
		}
		ds.Entries = append(ds.Entries, *entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: line %d: %w", ErrDatasetFile, lineno+1, err)
	}

	logger.Info("loaded dataset", "entries", len(ds.Entries), "skipped", len(ds.Skipped))
	return ds, nil
}

func parseLine(raw string) (*core.DatasetEntry, bool, error) {
	if !gjson.Valid(raw) {
		return nil, false, fmt.Errorf("%w: invalid JSON", ErrLineParse)
	}
	obj := gjson.Parse(raw)
	if !obj.IsObject() {
		return nil, false, fmt.Errorf("%w: got %s", ErrLineParse, obj.Type)
	}

	entry := &core.DatasetEntry{
		ID:          field(obj, "id"),
		Category:    field(obj, "category"),
		Instruction: strings.TrimSpace(field(obj, "instruction")),
		Input:       strings.TrimSpace(field(obj, "input")),
		Output:      strings.TrimSpace(field(obj, "output")),
	}
	return entry, obj.Get("id").Exists(), nil
}

func field(obj gjson.Result, name string) string {
	v := obj.Get(gjson.Escape(name))
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return v.String()
}
