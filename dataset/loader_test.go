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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONL(t *testing.T) {
	input := strings.Join([]string{
		`{"id": "q1", "category": "web", "instruction": "  Describe XSS ", "input": "", "output": " {\"name\": \"XSS\"} "}`,
		``,
		`   `,
		`{not json`,
		`{"category": "vuln", "instruction": "Name the CVE", "output": "{}"}`,
		`["array", "line"]`,
		`{"id": 7, "output": {"inline": true}}`,
	}, "\n")

	ds, err := ReadJSONL(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, ds.Entries, 3)

	first := ds.Entries[0]
	assert.Equal(t, "q1", first.ID)
	assert.Equal(t, "web", first.Category)
	assert.Equal(t, "Describe XSS", first.Instruction)
	assert.Equal(t, `{"name": "XSS"}`, first.Output)

	assert.Equal(t, "<no-id-2>", ds.Entries[1].ID)
	assert.Equal(t, "", ds.Entries[1].Input)

	assert.Equal(t, "7", ds.Entries[2].ID)
	assert.Equal(t, `{"inline": true}`, ds.Entries[2].Output)

	require.Len(t, ds.Skipped, 2)
	assert.Equal(t, 4, ds.Skipped[0].Line)
	assert.Equal(t, 6, ds.Skipped[1].Line)
	for _, s := range ds.Skipped {
		assert.ErrorIs(t, s, ErrLineParse)
	}
}

func TestReadJSONL_Empty(t *testing.T) {
	ds, err := ReadJSONL(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, ds.Entries)
	assert.Empty(t, ds.Skipped)
}

func TestReadJSONL_EmptyIDIsKept(t *testing.T) {
	ds, err := ReadJSONL(strings.NewReader(`{"id": "", "output": "x"}`))
	require.NoError(t, err)
	require.Len(t, ds.Entries, 1)
	assert.Equal(t, "", ds.Entries[0].ID)
}

func TestLoadJSONL(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadJSONL(filepath.Join(t.TempDir(), "nope.jsonl"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDatasetFile))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.jsonl")
		require.NoError(t, os.WriteFile(path, []byte(`{"id":"a","output":"{}"}`+"\n"+`{"id":"b","output":"{}"}`+"\n"), 0o644))

		ds, err := LoadJSONL(path)
		require.NoError(t, err)
		require.Len(t, ds.Entries, 2)
		assert.Equal(t, "b", ds.Entries[1].ID)
	})
}
