package dialogue

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

var idNamespace = uuid.MustParse("a3f5e6d2-8b1c-4e9a-9f4d-7c6a5b3e2d10")

// DeriveID computes DialogueEntry.id = H(text).
func DeriveID(text string) string {
	return uuid.NewSHA1(idNamespace, []byte(text)).String()
}

// SpeakerResolver picks the initial speaker attribution for a
// brand-new entry. The Pipeline Driver supplies the Speaker Matcher
// here; the catalog itself never imports the speaker package so the
// two stay coupled only through this function value, per the spec's
// no-owning-pointers-across-catalogs design.
type SpeakerResolver func(text string) (speakerName, voiceProfile string)

// Catalog is the persisted, concurrently accessed store of dialogue
// entries. All mutations serialize under mu; OnAdded/OnUpdated fire
// synchronously while still holding it, so listeners must not re-enter
// the catalog.
type Catalog struct {
	path     string
	log      *logx.Logger
	resolver SpeakerResolver

	mu      sync.RWMutex
	entries map[string]Entry

	OnAdded   func(Entry)
	OnUpdated func(Entry)
}

// NewCatalog loads path if present (a missing file yields an empty
// catalog) and wires resolver for first-seen speaker attribution.
func NewCatalog(path string, resolver SpeakerResolver, log *logx.Logger) (*Catalog, error) {
	c := &Catalog{path: path, resolver: resolver, log: log, entries: make(map[string]Entry)}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("dialogue catalog: load %s: %w", path, err)
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
	for _, e := range s {
		c.entries[e.ID] = e
	}
	return nil
}

// Save persists the current entry set atomically.
func (c *Catalog) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Catalog) saveLocked() error {
	s := make(store, 0, len(c.entries))
	for _, e := range c.entries {
		s = append(s, e)
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

// AddOrUpdate implements the spec's add_or_update(NormalizedText,
// raw_ocr?): an existing entry with the same text has its last_seen
// and seen_count bumped (speaker is never reassigned); a new text gets
// a freshly attributed entry. Persistence failures are logged but
// leave the in-memory state authoritative, per the spec's persistence
// failure policy — the mutation itself always succeeds.
func (c *Catalog) AddOrUpdate(text, rawOCR string) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	id := DeriveID(text)

	if existing, ok := c.entries[id]; ok {
		existing.LastSeen = now
		existing.SeenCount++
		if rawOCR != "" {
			existing.RawOCR = rawOCR
		}
		c.entries[id] = existing
		c.persistAndNotify(existing, c.OnUpdated)
		return existing
	}

	var speakerName, voiceProfile string
	if c.resolver != nil {
		speakerName, voiceProfile = c.resolver(text)
	}

	entry := Entry{
		ID:           id,
		Text:         text,
		RawOCR:       rawOCR,
		Speaker:      speakerName,
		VoiceProfile: voiceProfile,
		FirstSeen:    now,
		LastSeen:     now,
		SeenCount:    1,
	}
	c.entries[id] = entry
	c.persistAndNotify(entry, c.OnAdded)
	return entry
}

func (c *Catalog) persistAndNotify(e Entry, listener func(Entry)) {
	if err := c.saveLocked(); err != nil && c.log != nil {
		c.log.Error(logx.EventError, "dialogue catalog persistence failed", "err", err.Error())
	}
	if listener != nil {
		listener(e)
	}
}

// Get returns a copy of the entry with the given id.
func (c *Catalog) Get(id string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

// GetByText returns a copy of the entry with the given canonical text.
func (c *Catalog) GetByText(text string) (Entry, bool) {
	return c.Get(DeriveID(text))
}

// GetBySpeaker returns copies of every entry attributed to name.
func (c *Catalog) GetBySpeaker(name string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Entry
	for _, e := range c.entries {
		if e.Speaker == name {
			out = append(out, e)
		}
	}
	return out
}

// Remove deletes the entry with the given id and persists.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return c.saveLocked()
}

// RemoveByText deletes the entry with the given canonical text.
func (c *Catalog) RemoveByText(text string) error {
	return c.Remove(DeriveID(text))
}

// Count returns the number of entries in the catalog.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// All returns a snapshot copy of every entry.
func (c *Catalog) All() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

// SetAudio atomically records a successful external TTS/playback
// confirmation for the entry with the given id.
func (c *Catalog) SetAudio(id, audioPath string, generatedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return fmt.Errorf("dialogue catalog: unknown entry %s", id)
	}
	e.AudioPath = audioPath
	e.HasAudio = true
	e.GeneratedAt = generatedAt
	c.entries[id] = e
	return c.saveLocked()
}
