// Package textnorm normalizes free text for comparison: lowercasing,
// punctuation stripping, tokenization, stopword removal and Porter stemming.
package textnorm
