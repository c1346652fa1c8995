package concept

import "slices"

// Set is an unordered set of concept strings.
type Set map[string]struct{}

// NewSet builds a set from items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Contains reports membership.
func (s Set) Contains(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Overlap is the Jaccard index of gold and pred with an asymmetric empty
// case: an empty gold set scores 1 only against an empty pred set.
func Overlap(gold, pred Set) float64 {
	if len(gold) == 0 {
		if len(pred) == 0 {
			return 1
		}
		return 0
	}
	if len(pred) == 0 {
		return 0
	}
	intersection := 0
	for k := range gold {
		if pred.Contains(k) {
			intersection++
		}
	}
	union := len(gold) + len(pred) - intersection
	return float64(intersection) / float64(union)
}
