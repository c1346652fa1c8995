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


package storage

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/cyberbench/core"
)

func marshal[T any](v *T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

func unmarshal[T any](data []byte) (*T, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &v, nil
}

// MarshalBenchmarkEntry serializes a BenchmarkEntry to bytes.
func MarshalBenchmarkEntry(entry *core.BenchmarkEntry) ([]byte, error) {
	return marshal(entry)
}

// UnmarshalBenchmarkEntry deserializes a BenchmarkEntry from bytes.
func UnmarshalBenchmarkEntry(data []byte) (*core.BenchmarkEntry, error) {
	return unmarshal[core.BenchmarkEntry](data)
}

// MarshalSummary serializes a Summary to bytes.
func MarshalSummary(summary *core.Summary) ([]byte, error) {
	return marshal(summary)
}

// UnmarshalSummary deserializes a Summary from bytes.
func UnmarshalSummary(data []byte) (*core.Summary, error) {
	return unmarshal[core.Summary](data)
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) ([]byte, error) {
	return marshal(checkpoint)
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	return unmarshal[core.Checkpoint](data)
}

// MarshalTurn serializes a Turn to bytes.
func MarshalTurn(turn *core.Turn) ([]byte, error) {
	return marshal(turn)
}

// UnmarshalTurn deserializes a Turn from bytes.
func UnmarshalTurn(data []byte) (*core.Turn, error) {
	return unmarshal[core.Turn](data)
}
