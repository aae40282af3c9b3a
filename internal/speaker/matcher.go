package speaker

import "strings"

// MatchContext carries the optional location hint the spec's scoring
// formula adds 3 points for.
type MatchContext struct {
	Location string
}

// Matcher maps normalized dialogue text to a speaker profile by
// keyword/pattern scoring against the Catalog, the textual analog of
// the teacher's embedding-based FindBestMatch.
type Matcher struct {
	catalog       *Catalog
	defaultType   string
}

// NewMatcher builds a Matcher over catalog. defaultType selects which
// per-character-type voice the generic fallback profile uses when no
// profile scores above zero.
func NewMatcher(catalog *Catalog, defaultType string) *Matcher {
	if defaultType == "" {
		defaultType = "npc"
	}
	return &Matcher{catalog: catalog, defaultType: defaultType}
}

// Match implements match(NormalizedText, context?) -> SpeakerProfile:
// score = 10*keywordHits + 5*patternHits + 3*(location in context),
// case-insensitive substring matching. The highest positive score
// wins; ties break by Priority, then by most-recent LastUsed. A
// zero-or-negative top score falls back to the generic NPC default.
// On a non-generic match the profile's last_used/usage_count are
// bumped atomically with respect to catalog readers.
func (m *Matcher) Match(text string, ctx MatchContext) Profile {
	lower := strings.ToLower(text)

	var best Profile
	bestScore := 0
	haveBest := false

	for _, p := range m.catalog.All() {
		score := scoreProfile(p, lower, ctx)
		if score <= 0 {
			continue
		}
		if !haveBest || betterMatch(score, p, bestScore, best) {
			best, bestScore, haveBest = p, score, true
		}
	}

	if !haveBest {
		return m.catalog.EnsureGeneric(m.defaultType)
	}

	m.catalog.touch(best.ID)
	return best
}

// CatalogLookup returns a copy of the named profile without scoring,
// for callers that already know which profile an entry resolved to.
func (m *Matcher) CatalogLookup(name string) (Profile, bool) {
	return m.catalog.GetByName(name)
}

func scoreProfile(p Profile, lowerText string, ctx MatchContext) int {
	score := 0
	for _, kw := range p.NameKeywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowerText, strings.ToLower(kw)) {
			score += 10
		}
	}
	for _, pat := range p.DialoguePatterns {
		if pat == "" {
			continue
		}
		if strings.Contains(lowerText, strings.ToLower(pat)) {
			score += 5
		}
	}
	if ctx.Location != "" && strings.EqualFold(ctx.Location, p.Location) {
		score += 3
	}
	return score
}

// betterMatch reports whether candidate (score, p) should replace the
// current best (bestScore, best): higher score wins; ties break by
// Priority (higher first), then by most recently used.
func betterMatch(score int, p Profile, bestScore int, best Profile) bool {
	if score != bestScore {
		return score > bestScore
	}
	if p.Priority != best.Priority {
		return p.Priority > best.Priority
	}
	return p.LastUsed.After(best.LastUsed)
}
