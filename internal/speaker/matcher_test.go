package speaker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(filepath.Join(t.TempDir(), "speakers.json"), nil)
	require.NoError(t, err)
	return c
}

func TestMatcher_KeywordHitWins(t *testing.T) {
	c := newTestCatalog(t)
	m := NewMatcher(c, "npc")

	got := m.Match("I am a sage. The future is revealed to me.", MatchContext{})
	assert.Equal(t, "Sage of Elfheim", got.Name)
}

func TestMatcher_NoMatchFallsBackToGeneric(t *testing.T) {
	c := newTestCatalog(t)
	m := NewMatcher(c, "npc")

	got := m.Match("A completely unrelated sentence about nothing.", MatchContext{})
	assert.True(t, got.IsDefault || got.CharacterType == "npc")
}

func TestMatcher_ProfileWithNoKeywordsNeverWinsUnlessDefault(t *testing.T) {
	c := newTestCatalog(t)
	bare, err := c.AddOrUpdate(Profile{Name: "Bystander", CharacterType: "npc"})
	require.NoError(t, err)

	m := NewMatcher(c, "npc")
	got := m.Match("some arbitrary dialogue text with no special words", MatchContext{})
	assert.NotEqual(t, bare.ID, got.ID)
}

func TestMatcher_TouchUpdatesLastUsedAndUsageCount(t *testing.T) {
	c := newTestCatalog(t)
	m := NewMatcher(c, "npc")

	before, _ := c.GetByName("Sage of Elfheim")
	m.Match("the future is revealed to me", MatchContext{})
	after, _ := c.GetByName("Sage of Elfheim")

	assert.Equal(t, before.UsageCount+1, after.UsageCount)
	assert.True(t, after.LastUsed.After(before.LastUsed) || after.LastUsed.Equal(before.LastUsed))
}

func TestMatcher_LocationBonusBreaksTie(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.AddOrUpdate(Profile{
		Name: "Castle Guard", CharacterType: "guard", Location: "castle",
		NameKeywords: []string{"guard"},
	})
	require.NoError(t, err)
	_, err = c.AddOrUpdate(Profile{
		Name: "Field Guard", CharacterType: "guard", Location: "field",
		NameKeywords: []string{"guard"},
	})
	require.NoError(t, err)

	m := NewMatcher(c, "npc")
	got := m.Match("halt, says the guard", MatchContext{Location: "castle"})
	assert.Equal(t, "Castle Guard", got.Name)
}

func TestScoreProfile_ZeroWhenNothingMatches(t *testing.T) {
	p := Profile{NameKeywords: []string{"king"}, DialoguePatterns: []string{"majesty"}}
	assert.Equal(t, 0, scoreProfile(p, "a dog barks", MatchContext{}))
}
