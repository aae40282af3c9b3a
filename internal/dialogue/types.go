// Package dialogue holds the persisted catalog of de-duplicated,
// speaker-attributed dialogue entries.
package dialogue

import "time"

// Entry is one canonical, normalized dialogue line and everything the
// core knows about having seen it.
type Entry struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	RawOCR       string    `json:"rawOcr"`
	Speaker      string    `json:"speaker"`
	VoiceProfile string    `json:"voiceProfile"`
	FirstSeen    time.Time `json:"firstSeen"`
	LastSeen     time.Time `json:"lastSeen"`
	SeenCount    int       `json:"seenCount"`

	// Maintained only by external collaborators (TTS/audio playback);
	// the core reads and writes these atomically but never decides
	// their values itself.
	AudioPath   string    `json:"audioPath,omitempty"`
	HasAudio    bool      `json:"hasAudio"`
	GeneratedAt time.Time `json:"generatedAt,omitempty"`
}

// store is the on-disk JSON shape: a bare array of entries, matching
// "dialogue_catalog.json — an array of DialogueEntry objects."
type store []Entry
