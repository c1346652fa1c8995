// Package scoring compares a gold structured answer with a predicted one.
//
// Both answers are flattened to path/value maps and scored on four axes:
// relevance (concept overlap, whole-text similarity and best field matches),
// accuracy (agreement on security-critical fields), completeness (coverage of
// gold values) and whole-answer semantic similarity. Composite combines them
// into one weighted score.
//
// A Scorer only reads its collaborators, so one instance may score many
// pairs concurrently.
package scoring
