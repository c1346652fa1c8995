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


package badger

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComponentRoundTrip(t *testing.T) {
	buf := appendComponent(nil, "run:1")
	s, rest, ok := readComponent(buf)
	assert.True(t, ok)
	assert.Equal(t, "run:1", s)
	assert.Empty(t, rest)

	_, _, ok = readComponent([]byte{0, 0})
	assert.False(t, ok)

	_, _, ok = readComponent([]byte{0, 0, 0, 9, 'a'})
	assert.False(t, ok)
}

func TestSessionPrefixIsolation(t *testing.T) {
	key := makeTurnKey("alice:2", time.Unix(0, 0), 1)
	assert.False(t, bytes.HasPrefix(key, makeSessionPrefix("alice")))
	assert.True(t, bytes.HasPrefix(key, makeSessionPrefix("alice:2")))
}

func TestResultKeyOrder(t *testing.T) {
	a := makeResultKey("r", 2)
	b := makeResultKey("r", 10)
	assert.Negative(t, bytes.Compare(a, b))

	index, ok := resultIndex(b, len(makeRunResultsPrefix("r")))
	assert.True(t, ok)
	assert.Equal(t, 10, index)
}

func TestTurnKeyOrder(t *testing.T) {
	t0 := time.Unix(1000, 0)
	assert.Negative(t, bytes.Compare(makeTurnKey("s", t0, 5), makeTurnKey("s", t0.Add(time.Microsecond), 1)))
	assert.Negative(t, bytes.Compare(makeTurnKey("s", t0, 1), makeTurnKey("s", t0, 2)))
}
