// Package text cleans raw OCR output into normalized dialogue text and
// rejects strings that look like OCR noise rather than dialogue.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

// QualityConfig tunes the quality filter's acceptance thresholds.
type QualityConfig struct {
	MinLen             int
	MaxLen             int
	MinLetterFraction  float64
	DomainWords        []string
	GarbagePatterns    []string
}

// DefaultQualityConfig returns the spec's documented defaults with an
// empty domain-word/garbage-pattern whitelist; callers seed those from
// a game pack.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		MinLen:            3,
		MaxLen:            500,
		MinLetterFraction: 0.40,
	}
}

var dashRunRe = regexp.MustCompile(`[.\-_]{4,}`)

// passesQuality implements the spec's quality filter, applied to the
// whitespace-compacted candidate before any normalization rules run.
func passesQuality(compacted string, cfg QualityConfig) bool {
	runes := []rune(compacted)
	n := len(runes)

	if n < cfg.MinLen || n > cfg.MaxLen {
		return false
	}

	var letters, digits, vowels, otherSymbols int
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			letters++
			if isVowel(r) {
				vowels++
			}
		case unicode.IsDigit(r):
			digits++
		case unicode.IsSpace(r) || unicode.IsPunct(r):
			// counted in n but not a symbol violation
		default:
			otherSymbols++
		}
	}

	letterFrac := frac(letters, n)
	digitFrac := frac(digits, n)
	symbolFrac := frac(otherSymbols, n)
	vowelFrac := frac(vowels, letters)

	// The domain-word exception is a full bypass ("accept regardless");
	// the letters/letterFrac exception only rescues the min-letter-
	// fraction check below, not the structural garbage checks that
	// follow it.
	domainHits := countDomainWords(compacted, cfg.DomainWords)
	if domainHits >= 2 {
		return true
	}
	rescuedLetterFraction := letters >= 5 && letterFrac >= 0.60

	if !rescuedLetterFraction && letterFrac < cfg.MinLetterFraction {
		return false
	}
	if symbolFrac > 0.30 {
		return false
	}
	if digitFrac > 0.30 {
		return false
	}
	if dashRunRe.MatchString(compacted) {
		return false
	}
	if singleCharTokenFraction(compacted) > 0.40 {
		return false
	}
	if letters > 0 && vowelFrac < 0.15 {
		return false
	}
	if countGarbagePatterns(compacted, cfg.GarbagePatterns) >= 2 {
		return false
	}

	return true
}

func frac(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func singleCharTokenFraction(s string) float64 {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return 0
	}
	single := 0
	for _, tok := range tokens {
		if len([]rune(tok)) == 1 {
			single++
		}
	}
	return float64(single) / float64(len(tokens))
}

func countDomainWords(s string, words []string) int {
	lower := strings.ToLower(s)
	count := 0
	for _, w := range words {
		if w == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(w)) {
			count++
		}
	}
	return count
}

func countGarbagePatterns(s string, patterns []string) int {
	count := 0
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if re, err := regexp.Compile(p); err == nil && re.MatchString(s) {
			count++
		}
	}
	return count
}
