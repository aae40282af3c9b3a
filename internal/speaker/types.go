// Package speaker holds the persisted speaker profile store and the
// scoring matcher that attributes normalized dialogue text to a voice.
package speaker

import "time"

// Profile is a named, voiced persona with matching rules and audio
// metadata. Id is derived deterministically from Name+CharacterType so
// re-seeding defaults never produces duplicates.
type Profile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	CharacterType  string    `json:"characterType"`
	IsDefault      bool      `json:"isDefault"`

	TTSVoiceID string  `json:"ttsVoiceId"`
	TTSSpeed   float64 `json:"ttsSpeed"`
	TTSPitch   float64 `json:"ttsPitch"`

	NameKeywords     []string `json:"nameKeywords"`
	DialoguePatterns []string `json:"dialoguePatterns"`
	Effects          string   `json:"effects"`

	Priority  int       `json:"priority"`
	LastUsed  time.Time `json:"lastUsed"`
	UsageCount int      `json:"usageCount"`
}

// ClampSpeed bounds TTSSpeed to the spec's [0.25, 4.0] range.
func ClampSpeed(v float64) float64 {
	switch {
	case v < 0.25:
		return 0.25
	case v > 4.0:
		return 4.0
	default:
		return v
	}
}

// store is the on-disk JSON shape: a bare array of profiles, matching
// the spec's "speaker_catalog.json — an array of SpeakerProfile
// objects."
type store []Profile
