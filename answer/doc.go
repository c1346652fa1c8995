// Package answer models structured answers: arbitrarily nested JSON trees
// that keep the document order of object keys. It parses gold and model
// answers (with the fenced-block and raw-text fallbacks the harness needs),
// flattens them into ordered path/value maps and renders canonical
// sorted-key JSON for whole-answer comparison.
package answer
