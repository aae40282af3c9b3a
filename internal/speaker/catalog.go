package speaker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"dialogwatch/internal/logx"
)

// idNamespace anchors the deterministic profile-id derivation so the
// same (name, characterType) pair always yields the same id across
// processes and across a save/load round trip.
var idNamespace = uuid.MustParse("6f6d9a5e-9e0b-4f0a-8e8d-2a6b6c9f5d11")

// DeriveID computes SpeakerProfile.id = H(name, characterType).
func DeriveID(name, characterType string) string {
	return uuid.NewSHA1(idNamespace, []byte(name+"\x00"+characterType)).String()
}

// Catalog is the persisted, concurrently accessed store of speaker
// profiles. All mutations serialize under mu; save() runs while the
// lock is held so the file on disk never reflects a half-applied
// mutation.
type Catalog struct {
	path string
	log  *logx.Logger

	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewCatalog loads path if it exists (missing files yield an empty
// catalog) and seeds the default roster when the store was empty.
func NewCatalog(path string, log *logx.Logger) (*Catalog, error) {
	c := &Catalog{path: path, log: log, profiles: make(map[string]Profile)}

	if err := c.load(); err != nil {
		return nil, fmt.Errorf("speaker catalog: load %s: %w", path, err)
	}
	if len(c.profiles) == 0 {
		c.seedDefaults()
		if err := c.saveLocked(); err != nil {
			return nil, fmt.Errorf("speaker catalog: seed defaults: %w", err)
		}
	}
	return c, nil
}

func (c *Catalog) load() error {
	raw, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var s store
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("parse %s: %w", c.path, err)
	}
	for _, p := range s {
		c.profiles[p.ID] = p
	}
	return nil
}

// Save persists the current profile set atomically: write to a
// temporary sibling, then rename, so readers never observe a
// partially written file.
func (c *Catalog) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Catalog) saveLocked() error {
	s := make(store, 0, len(c.profiles))
	for _, p := range c.profiles {
		s = append(s, p)
	}

	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	dir := filepath.Dir(c.path)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// AddOrUpdate inserts p (deriving its ID if unset) or replaces the
// existing profile with the same ID, then persists.
func (c *Catalog) AddOrUpdate(p Profile) (Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.ID == "" {
		p.ID = DeriveID(p.Name, p.CharacterType)
	}
	c.profiles[p.ID] = p
	if err := c.saveLocked(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Remove deletes the profile with the given id and persists.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.profiles, id)
	return c.saveLocked()
}

// GetByID returns a copy of the profile with the given id.
func (c *Catalog) GetByID(id string) (Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.profiles[id]
	return p, ok
}

// GetByName returns a copy of the first profile whose Name matches.
func (c *Catalog) GetByName(name string) (Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// All returns a snapshot copy of every profile.
func (c *Catalog) All() []Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Profile, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p)
	}
	return out
}

// touch bumps last_used/usage_count for id atomically with respect to
// readers, and persists the change. Used by the Matcher after a match.
func (c *Catalog) touch(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.profiles[id]
	if !ok {
		return
	}
	p.LastUsed = time.Now()
	p.UsageCount++
	c.profiles[id] = p
	if err := c.saveLocked(); err != nil && c.log != nil {
		c.log.Error(logx.EventError, "speaker catalog persistence failed", "err", err.Error())
	}
}

// EnsureGeneric returns the generic NPC profile for characterType,
// creating and persisting it on demand with a per-character-type
// default voice when none exists yet.
func (c *Catalog) EnsureGeneric(characterType string) Profile {
	id := DeriveID(genericName(characterType), characterType)

	c.mu.RLock()
	p, ok := c.profiles[id]
	c.mu.RUnlock()
	if ok {
		return p
	}

	p = Profile{
		ID:            id,
		Name:          genericName(characterType),
		Description:   "An unnamed NPC.",
		CharacterType: characterType,
		TTSVoiceID:    defaultVoiceFor(characterType),
		TTSSpeed:      1.0,
		Effects:       "generic",
	}
	out, err := c.AddOrUpdate(p)
	if err != nil && c.log != nil {
		c.log.Error(logx.EventError, "failed to persist generic profile", "err", err.Error())
	}
	return out
}

func genericName(characterType string) string {
	if characterType == "" {
		characterType = "npc"
	}
	return "Unknown " + characterType
}

// defaultVoiceFor implements the per-character-type synthesis fallback
// table: the spec names king/sage/merchant explicitly; the remaining
// seeded default profiles (princess, mysterious voice) are extended here
// so every character type this catalog ever seeds has a defined voice.
func defaultVoiceFor(characterType string) string {
	switch characterType {
	case "king":
		return "deep"
	case "sage":
		return "ethereal"
	case "merchant":
		return "friendly"
	case "princess", "prince":
		return "bright"
	case "mysterious_voice":
		return "whisper"
	default:
		return "neutral"
	}
}

// seedDefaults populates an empty catalog with the spec's small
// built-in roster: a king, a sage, a princess, a mysterious voice, and
// the generic NPC default.
func (c *Catalog) seedDefaults() {
	defaults := []Profile{
		{
			Name: "King Astos", CharacterType: "king", Location: "throne_room",
			Description: "The ruling monarch.", TTSVoiceID: "deep", TTSSpeed: 0.9,
			NameKeywords: []string{"king", "astos", "majesty"}, Effects: "throne_room",
		},
		{
			Name: "Sage of Elfheim", CharacterType: "sage", Location: "elfheim",
			Description: "A keeper of old knowledge.", TTSVoiceID: "ethereal", TTSSpeed: 0.85,
			NameKeywords: []string{"sage", "elder"}, DialoguePatterns: []string{"the future", "revealed to me", "prophecy"},
			Effects: "mystical",
		},
		{
			Name: "Princess Sara", CharacterType: "princess", Location: "castle",
			Description: "The kidnapped princess.", TTSVoiceID: "bright", TTSSpeed: 1.05,
			NameKeywords: []string{"princess", "sara"}, Effects: "chamber",
		},
		{
			Name: "Mysterious Voice", CharacterType: "mysterious_voice",
			Description: "An unseen speaker.", TTSVoiceID: "whisper", TTSSpeed: 0.8, TTSPitch: -0.2,
			DialoguePatterns: []string{"beware", "listen closely"}, Effects: "mystical",
		},
	}
	for _, p := range defaults {
		p.ID = DeriveID(p.Name, p.CharacterType)
		c.profiles[p.ID] = p
	}

	generic := Profile{
		Name: genericName(""), CharacterType: "npc", IsDefault: true,
		TTSVoiceID: defaultVoiceFor(""), TTSSpeed: 1.0, Effects: "generic",
	}
	generic.ID = DeriveID(generic.Name, generic.CharacterType)
	c.profiles[generic.ID] = generic
}
