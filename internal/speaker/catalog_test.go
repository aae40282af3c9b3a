package speaker

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_SeedsDefaultsWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCatalog(filepath.Join(dir, "speakers.json"), nil)
	require.NoError(t, err)

	all := c.All()
	assert.NotEmpty(t, all)

	_, ok := c.GetByName("Sage of Elfheim")
	assert.True(t, ok, "the sage default profile must be seeded")

	defaults := 0
	for _, p := range all {
		if p.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults, "at most one profile is marked default")
}

func TestCatalog_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speakers.json")
	c1, err := NewCatalog(path, nil)
	require.NoError(t, err)

	added, err := c1.AddOrUpdate(Profile{Name: "Merchant Joe", CharacterType: "merchant"})
	require.NoError(t, err)

	c2, err := NewCatalog(path, nil)
	require.NoError(t, err)

	got, ok := c2.GetByID(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Merchant Joe", got.Name)
	assert.Equal(t, len(c1.All()), len(c2.All()))
}

func TestCatalog_DeriveID_DeterministicAndUnique(t *testing.T) {
	a := DeriveID("King Astos", "king")
	b := DeriveID("King Astos", "king")
	c := DeriveID("King Astos", "sage")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCatalog_EnsureGeneric_CreatesOnce(t *testing.T) {
	c, err := NewCatalog(filepath.Join(t.TempDir(), "speakers.json"), nil)
	require.NoError(t, err)

	before := len(c.All())
	first := c.EnsureGeneric("sage")
	second := c.EnsureGeneric("sage")

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, before+1, len(c.All()))
	assert.Equal(t, "ethereal", first.TTSVoiceID)
}
