package playback

import (
	"bytes"
	"fmt"

	shine "github.com/braheezy/shine-mp3/pkg/mp3"
)

// EncodeConfirmedAudio packages externally-synthesized 16-bit PCM
// (the output of whatever TTS engine produced it) into an mp3 byte
// stream, ready to persist at the path a dialogue entry's SetAudio
// call will record. It is the encode half of the playback path: this
// repository never calls it itself since synthesis is out of scope,
// but the SetAudio contract in the dialogue catalog exists precisely
// so an external caller has somewhere to write the result this
// produces.
func EncodeConfirmedAudio(pcm []byte, sampleRate, channels, bitrateKbps int) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("playback: no PCM samples to encode")
	}

	var out bytes.Buffer
	enc := shine.NewWriter(&out, &shine.Config{
		SampleRate: sampleRate,
		Channels:   channels,
		Bitrate:    bitrateKbps,
	})

	if _, err := enc.Write(pcm); err != nil {
		return nil, fmt.Errorf("playback: encode mp3: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("playback: flush mp3 encoder: %w", err)
	}
	return out.Bytes(), nil
}
