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
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrParse indicates text is not a valid JSON document.
var ErrParse = errors.New("answer is not valid JSON")

// Parse parses a JSON document into a Node, keeping object key order.
// Duplicate keys keep their first position and take the last value.
func Parse(text string) (*Node, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: %s", ErrParse, preview(text))
	}
	return fromResult(gjson.Parse(text)), nil
}

// ParseOrRaw parses text, substituting {"raw_output": text} when it is not
// valid JSON. The returned error reports the substitution and wraps ErrParse.
func ParseOrRaw(text string) (*Node, error) {
	n, err := Parse(text)
	if err != nil {
		return RawOutput(text), err
	}
	return n, nil
}

// ExtractJSON narrows fenced model output to the span between the first
// '{' and the last '}'. Text without a ``` fence is returned unchanged.
func ExtractJSON(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

func fromResult(r gjson.Result) *Node {
	switch r.Type {
	case gjson.True:
		return &Node{Kind: Bool, Bool: true}
	case gjson.False:
		return &Node{Kind: Bool}
	case gjson.Number:
		return &Node{Kind: Number, Number: r.Raw}
	case gjson.String:
		return &Node{Kind: String, Str: r.Str}
	case gjson.JSON:
		if r.IsArray() {
			n := &Node{Kind: Array, Items: []*Node{}}
			r.ForEach(func(_, value gjson.Result) bool {
				n.Items = append(n.Items, fromResult(value))
				return true
			})
			return n
		}
		n := &Node{Kind: Object, Fields: []Field{}}
		r.ForEach(func(key, value gjson.Result) bool {
			n.set(key.Str, fromResult(value))
			return true
		})
		return n
	default:
		return &Node{Kind: Null}
	}
}

func preview(text string) string {
	const limit = 40
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return fmt.Sprintf("%q", text)
	}
	return fmt.Sprintf("%q...", text[:limit])
}
