// Package similarity provides the comparison signals used to score answers:
// exact match, substring containment, Ratcliff/Obershelp sequence ratio and
// embedding cosine similarity, plus a Matcher that combines them into one
// gated fuzzy score.
//
// Every signal returns a value in [0, 1] and never fails; zero is the
// canonical "no match" result, including for empty input.
package similarity
