// Package guard screens text entering and leaving the model.
//
// The Sanitizer rejects user prompts that match a rule table of disallowed
// patterns. Rule tables are YAML documents; the "full" and "minimal"
// policies are embedded and any other table can be loaded from disk.
//
// A Validator checks model output. SchemaValidator accepts only the
// {"generated_output": "..."} envelope and rejects output that matches the
// output rule table. ValidateWithFallback applies a Validator the way both
// the benchmark harness and the assistant need it: validate the raw text,
// then the re-wrapped text, then give up and keep the raw text.
package guard
