package text

import (
	"regexp"
	"strings"
)

// rule is one ordered substitution in the normalization pipeline. Every
// rule must be total (never fail) and idempotent when applied
// repeatedly, so that normalize as a whole is idempotent.
type rule struct {
	pattern *regexp.Regexp
	replace string
}

// Config bundles the quality filter and the normalization rule table.
// NameFixes is a configurable map of known OCR misreads of character
// names (e.g. "ASIoS" -> "Astos") applied after the confusion and
// quote rules.
type Config struct {
	Quality   QualityConfig
	NameFixes map[string]string
}

// DefaultConfig returns quality defaults and an empty name-fix table;
// callers seed NameFixes from a game pack's known cast.
func DefaultConfig() Config {
	return Config{Quality: DefaultQualityConfig()}
}

var compactWhitespaceRe = regexp.MustCompile(`\s+`)

// confusionRules are the common OCR misreads the spec calls out:
// "Il " -> "I ", standalone "15" -> "is", lone "0" -> "o" between
// letters, and a couple of their word-boundary-aware variants.
var confusionRules = []rule{
	{regexp.MustCompile(`\bIl\b`), "I"},
	{regexp.MustCompile(`\b15\b`), "is"},
	{regexp.MustCompile(`(\p{L})0(\p{L})`), "${1}o${2}"},
	{regexp.MustCompile(`\bl'`), "I'"},
	{regexp.MustCompile(`\brn\b`), "m"},
}

// quoteRules repair smart-quote/apostrophe OCR damage: a literal "?"
// standing in for an apostrophe inside a contraction, then any
// remaining stray "?" adjacent to letters on both sides.
var quoteRules = []rule{
	{regexp.MustCompile(`(\p{L})\?t\b`), "${1}'t"},
	{regexp.MustCompile(`(\p{L})\?(s|d|ll|re|ve|m)\b`), "${1}'${2}"},
	{regexp.MustCompile(`(\p{L})\?(\p{L})`), "${1}'${2}"},
}

// Normalizer cleans raw OCR text and rejects low-quality strings. It
// holds no mutable state; Normalize is a pure function of its input
// given a fixed Config.
type Normalizer struct {
	cfg Config
}

// NewNormalizer builds a Normalizer from cfg.
func NewNormalizer(cfg Config) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// Normalize implements normalize(RawText) -> NormalizedText | Rejected.
// The quality filter runs first against the whitespace-compacted
// candidate; only accepted text is run through the substitution rules.
func (n *Normalizer) Normalize(raw string) (string, bool) {
	compacted := compactWhitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
	if !passesQuality(compacted, n.cfg.Quality) {
		return "", false
	}

	s := compacted
	for _, r := range confusionRules {
		s = r.pattern.ReplaceAllString(s, r.replace)
	}
	for _, r := range quoteRules {
		s = r.pattern.ReplaceAllString(s, r.replace)
	}
	for broken, fixed := range n.cfg.NameFixes {
		s = strings.ReplaceAll(s, broken, fixed)
	}
	s = compactWhitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")

	return s, true
}
