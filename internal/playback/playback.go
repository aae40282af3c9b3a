// Package playback does best-effort, fire-and-forget audio playback
// of mp3 files an external TTS collaborator has already confirmed and
// written to a dialogue entry's audio_path. The core never blocks on
// it and never decides when playback happens on its own.
package playback

import (
	"fmt"
	"os"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/hajimehoshi/go-mp3"

	"dialogwatch/internal/logx"
)

// Player owns one malgo playback device and decodes mp3s on demand.
// Calls serialize: a second Play while one is already running waits
// for it to finish, matching the spec's "best-effort, single active
// playback" framing for a narration-style dialogue stream.
type Player struct {
	ctx *malgo.AllocatedContext
	log *logx.Logger

	mu sync.Mutex
}

// New initializes the underlying malgo playback context.
func New(log *logx.Logger) (*Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("playback: init context: %w", err)
	}
	return &Player{ctx: ctx, log: log}, nil
}

// Play decodes the mp3 at path and streams it to the default playback
// device, blocking until playback finishes. Errors are logged and
// swallowed by PlayAsync; Play itself returns them for callers that
// want to handle failures directly.
func (p *Player) Play(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("playback: open %s: %w", path, err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return fmt.Errorf("playback: decode %s: %w", path, err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = 2
	deviceConfig.SampleRate = uint32(dec.SampleRate())

	done := make(chan struct{})
	var closeOnce sync.Once
	finish := func() { closeOnce.Do(func() { close(done) }) }

	onSendFrames := func(pOutput, pInput []byte, framecount uint32) {
		n, err := dec.Read(pOutput)
		if n < len(pOutput) {
			for i := n; i < len(pOutput); i++ {
				pOutput[i] = 0
			}
		}
		if err != nil {
			finish()
		}
	}

	device, err := malgo.InitDevice(p.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSendFrames,
	})
	if err != nil {
		return fmt.Errorf("playback: init device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("playback: start device: %w", err)
	}
	defer device.Stop()

	<-done
	return nil
}

// PlayAsync runs Play in its own goroutine and logs a failure instead
// of returning it, since nothing downstream can act on a playback
// error — it is a side effect, not a pipeline stage.
func (p *Player) PlayAsync(path string) {
	go func() {
		if err := p.Play(path); err != nil && p.log != nil {
			p.log.Warn(logx.EventError, "audio playback failed", "path", path, "err", err.Error())
		}
	}()
}

// Close releases the playback context.
func (p *Player) Close() error {
	p.ctx.Uninit()
	return p.ctx.Free()
}
