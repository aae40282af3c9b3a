package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestQualityFilter_RejectsTooShort(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	_, ok := n.Normalize("hi")
	assert.False(t, ok, "length 2 must be rejected")
}

func TestQualityFilter_AcceptsMinimumLength(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	_, ok := n.Normalize("yes")
	assert.True(t, ok, "length 3 with sufficient letters must be accepted")
}

func TestQualityFilter_RejectsGarbageOCR(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quality.GarbagePatterns = []string{`\bbrc\b`, `\bpada\b`}
	n := NewNormalizer(cfg)
	_, ok := n.Normalize("pel brc pada L-. - af te")
	assert.False(t, ok, "two known garbage-pattern hits must reject")
}

func TestQualityFilter_RejectsHighDigitFraction(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	_, ok := n.Normalize("4 g0t 99 c0lns 42 7ex7")
	assert.False(t, ok)
}

func TestQualityFilter_RejectsDashRun(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	_, ok := n.Normalize("loading----please wait")
	assert.False(t, ok)
}

func TestQualityFilter_DomainWordsOverrideRejection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quality.DomainWords = []string{"Astos", "Elfheim"}
	n := NewNormalizer(cfg)
	_, ok := n.Normalize("99 99 Astos of Elfheim 99")
	assert.True(t, ok, "two domain-word hits accept regardless of digit noise")
}

func TestNormalize_FixesKnownCharacterName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NameFixes = map[string]string{"ASIoS": "Astos"}
	n := NewNormalizer(cfg)
	got, ok := n.Normalize("I am ASIoS the sage")
	require.True(t, ok)
	assert.Contains(t, got, "Astos")
}

func TestNormalize_RepairsContractionApostrophe(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	got, ok := n.Normalize("I don?t think so, traveler")
	require.True(t, ok)
	assert.Contains(t, got, "don't")
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	got, ok := n.Normalize("  Welcome,    travelers.  ")
	require.True(t, ok)
	assert.Equal(t, "Welcome, travelers.", got)
}

// TestNormalize_Idempotent is the universal property from the spec:
// normalize(normalize(T)) == normalize(T).
func TestNormalize_Idempotent(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	samples := []string{
		"Welcome, travelers.",
		"I don?t think so",
		"I am a sage. The future is revealed to me.",
		"Our kingdom needs help.",
	}
	for _, s := range samples {
		once, ok1 := n.Normalize(s)
		if !ok1 {
			continue
		}
		twice, ok2 := n.Normalize(once)
		require.True(t, ok2, "a normalized acceptable string must remain acceptable")
		assert.Equal(t, once, twice)
	}
}

// TestNormalize_Deterministic is the ∀ property: normalize is a pure
// function of its input.
func TestNormalize_Deterministic(t *testing.T) {
	n := NewNormalizer(DefaultConfig())
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.StringMatching(`[A-Za-z ,.'?]{0,80}`).Draw(rt, "s")
		out1, ok1 := n.Normalize(s)
		out2, ok2 := n.Normalize(s)
		assert.Equal(rt, ok1, ok2)
		assert.Equal(rt, out1, out2)
	})
}
