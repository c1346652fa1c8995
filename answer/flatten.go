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


package answer

import (
	"strconv"
	"strings"
)

// DefaultMaxDepth is the nesting depth Flatten expands before stringifying.
const DefaultMaxDepth = 3

// Entry is one path/value pair of a FlatMap.
type Entry struct {
	Key   string
	Value string
}

// FlatMap is an ordered mapping from paths to text values. Re-setting an
// existing path replaces its value and keeps its position.
type FlatMap struct {
	entries []Entry
	index   map[string]int
}

// NewFlatMap returns an empty FlatMap.
func NewFlatMap() *FlatMap {
	return &FlatMap{index: map[string]int{}}
}

// Set stores value at key.
func (m *FlatMap) Set(key, value string) {
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Get returns the value at key.
func (m *FlatMap) Get(key string) (string, bool) {
	i, ok := m.index[key]
	if !ok {
		return "", false
	}
	return m.entries[i].Value, true
}

// Len returns the number of entries.
func (m *FlatMap) Len() int {
	return len(m.entries)
}

// Entries returns the entries in traversal order.
func (m *FlatMap) Entries() []Entry {
	return m.entries
}

// Keys returns the paths in traversal order.
func (m *FlatMap) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Values returns the values in traversal order.
func (m *FlatMap) Values() []string {
	values := make([]string, len(m.entries))
	for i, e := range m.entries {
		values[i] = e.Value
	}
	return values
}

// Text joins all values with single spaces.
func (m *FlatMap) Text() string {
	return strings.Join(m.Values(), " ")
}

// Flatten projects n onto a FlatMap. Containers are expanded up to maxDepth
// levels; deeper substructure is stored as its compact JSON text. Arrays of
// strings collapse into one " | "-joined value; other arrays expand into
// indexed paths (path[i], or item_i at the root).
func Flatten(n *Node, maxDepth int) *FlatMap {
	m := NewFlatMap()
	flattenInto(m, n, "", maxDepth)
	return m
}

func flattenInto(m *FlatMap, n *Node, parent string, depth int) {
	if depth <= 0 || n == nil {
		m.Set(parent, n.Text())
		return
	}

	switch n.Kind {
	case Object:
		for _, f := range n.Fields {
			key := f.Key
			if parent != "" {
				key = parent + "." + f.Key
			}
			flattenChild(m, f.Value, key, depth)
		}
	case Array:
		if strs, ok := allStrings(n.Items); ok {
			m.Set(parent, strings.Join(strs, " | "))
			return
		}
		for i, item := range n.Items {
			key := "item_" + strconv.Itoa(i)
			if parent != "" {
				key = parent + "[" + strconv.Itoa(i) + "]"
			}
			flattenChild(m, item, key, depth)
		}
	default:
		m.Set(parent, n.Text())
	}
}

func flattenChild(m *FlatMap, child *Node, key string, depth int) {
	if child.IsContainer() && depth > 1 {
		flattenInto(m, child, key, depth-1)
		return
	}
	m.Set(key, child.Text())
}

func allStrings(items []*Node) ([]string, bool) {
	strs := make([]string, len(items))
	for i, it := range items {
		if it == nil || it.Kind != String {
			return nil, false
		}
		strs[i] = it.Str
	}
	return strs, true
}
