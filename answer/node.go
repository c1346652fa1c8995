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
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// Kind identifies the JSON type of a Node.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Object
	Array
)

// Field is one key/value pair of an object node.
type Field struct {
	Key   string
	Value *Node
}

// Node is a structured answer tree. Object fields keep document order.
type Node struct {
	Kind   Kind
	Bool   bool
	Number string // JSON literal text of a number
	Str    string
	Fields []Field
	Items  []*Node
}

// NewString returns a string node.
func NewString(s string) *Node {
	return &Node{Kind: String, Str: s}
}

// NewObject returns an object node with the given fields in order.
func NewObject(fields ...Field) *Node {
	return &Node{Kind: Object, Fields: fields}
}

// NewArray returns an array node.
func NewArray(items ...*Node) *Node {
	return &Node{Kind: Array, Items: items}
}

// RawOutput wraps unparseable text as {"raw_output": text}.
func RawOutput(text string) *Node {
	return NewObject(Field{Key: "raw_output", Value: NewString(text)})
}

// IsContainer reports whether n is an object or array.
func (n *Node) IsContainer() bool {
	return n != nil && (n.Kind == Object || n.Kind == Array)
}

// Get returns the value of key in an object node.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != Object {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// set replaces an existing key in place or appends it.
func (n *Node) set(key string, value *Node) {
	for i := range n.Fields {
		if n.Fields[i].Key == key {
			n.Fields[i].Value = value
			return
		}
	}
	n.Fields = append(n.Fields, Field{Key: key, Value: value})
}

// Text renders n for flat maps: strings verbatim, other scalars as their
// JSON literal, containers as compact JSON in document order.
func (n *Node) Text() string {
	if n == nil {
		return "null"
	}
	if n.Kind == String {
		return n.Str
	}
	var buf bytes.Buffer
	n.writeJSON(&buf)
	return buf.String()
}

// MarshalJSON renders n as compact JSON preserving key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	n.writeJSON(&buf)
	return buf.Bytes(), nil
}

// UnmarshalJSON parses data into n, preserving key order.
func (n *Node) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*n = *parsed
	return nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) {
	if n == nil {
		buf.WriteString("null")
		return
	}
	switch n.Kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if n.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		buf.WriteString(n.Number)
	case String:
		writeString(buf, n.Str)
	case Array:
		buf.WriteByte('[')
		for i, it := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			it.writeJSON(buf)
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, f := range n.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, f.Key)
			buf.WriteByte(':')
			f.Value.writeJSON(buf)
		}
		buf.WriteByte('}')
	}
}

func writeString(buf *bytes.Buffer, s string) {
	// json.Marshal of a string cannot fail
	b, _ := json.Marshal(s)
	buf.Write(b)
}

// Canonical renders n as JSON with object keys sorted at every level and
// ", " / ": " separators.
func (n *Node) Canonical() string {
	var buf bytes.Buffer
	n.writeCanonical(&buf)
	return buf.String()
}

func (n *Node) writeCanonical(buf *bytes.Buffer) {
	if n == nil {
		buf.WriteString("null")
		return
	}
	switch n.Kind {
	case Array:
		buf.WriteByte('[')
		for i, it := range n.Items {
			if i > 0 {
				buf.WriteString(", ")
			}
			it.writeCanonical(buf)
		}
		buf.WriteByte(']')
	case Object:
		fields := slices.Clone(n.Fields)
		slices.SortStableFunc(fields, func(a, b Field) int {
			return strings.Compare(a.Key, b.Key)
		})
		buf.WriteByte('{')
		for i, f := range fields {
			if i > 0 {
				buf.WriteString(", ")
			}
			writeString(buf, f.Key)
			buf.WriteString(": ")
			f.Value.writeCanonical(buf)
		}
		buf.WriteByte('}')
	default:
		n.writeJSON(buf)
	}
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return n.Text()
}
