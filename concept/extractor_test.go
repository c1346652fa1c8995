package concept

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	e := MustNewExtractor()

	t.Run("pattern matches", func(t *testing.T) {
		set := e.Extract("CVE-2014-0160 is listed under OWASP Top 10 and NIST guidance")
		assert.True(t, set.Contains("cve-2014-0160"))
		assert.True(t, set.Contains("owasp top 10"))
		assert.True(t, set.Contains("nist"))
	})

	t.Run("multi-word patterns", func(t *testing.T) {
		set := e.Extract("Broken Access  Control leads to privilege escalation")
		assert.True(t, set.Contains("broken access  control"))
		assert.True(t, set.Contains("access  control"))
		assert.True(t, set.Contains("privilege escalation"))
	})

	t.Run("lexicon filters stemmed tokens", func(t *testing.T) {
		set := e.Extract("attackers target systems")
		assert.True(t, set.Contains("attack"))
		assert.True(t, set.Contains("system"))
		assert.False(t, set.Contains("target"))
	})

	t.Run("order independent", func(t *testing.T) {
		a := e.Extract("malware exploit")
		b := e.Extract("exploit malware")
		assert.Equal(t, a.Sorted(), b.Sorted())
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, e.Extract(""))
		assert.Empty(t, e.Extract("the weather is nice"))
	})
}

func TestNewExtractor_Options(t *testing.T) {
	e, err := NewExtractor(WithPatterns(`heartbleed`), WithLexicon("tls"))
	require.NoError(t, err)
	assert.Equal(t, []string{"heartbleed"}, e.Extract("Heartbleed nist").Sorted())

	_, err = NewExtractor(WithPatterns(`(`))
	assert.Error(t, err)
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name       string
		gold, pred Set
		want       float64
	}{
		{"both empty", NewSet(), NewSet(), 1},
		{"gold empty pred not", NewSet(), NewSet("nist"), 0},
		{"pred empty", NewSet("nist"), NewSet(), 0},
		{"identical", NewSet("a", "b"), NewSet("b", "a"), 1},
		{"half", NewSet("a", "b"), NewSet("b", "c", "a", "d"), 0.5},
		{"disjoint", NewSet("a"), NewSet("b"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Overlap(tt.gold, tt.pred), 1e-9)
		})
	}
}
