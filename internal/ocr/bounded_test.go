package ocr

import (
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	delay   time.Duration
	text    string
	err     error
	inFlight int32
	maxSeen  int32
}

func (f *fakeEngine) Recognize(img image.Image, language string) (string, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	for {
		max := atomic.LoadInt32(&f.maxSeen)
		if n <= max || atomic.CompareAndSwapInt32(&f.maxSeen, max, n) {
			break
		}
	}
	time.Sleep(f.delay)
	atomic.AddInt32(&f.inFlight, -1)
	return f.text, f.err
}

func (f *fakeEngine) Close() error { return nil }

func TestBounded_ReturnsUnderlyingResult(t *testing.T) {
	fe := &fakeEngine{text: "hello"}
	b := NewBounded(fe, 1, time.Second)
	text, err := b.Recognize(image.NewGray(image.Rect(0, 0, 1, 1)), "eng")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestBounded_TimesOutOnSlowEngine(t *testing.T) {
	fe := &fakeEngine{text: "too late", delay: 200 * time.Millisecond}
	b := NewBounded(fe, 1, 20*time.Millisecond)
	text, err := b.Recognize(image.NewGray(image.Rect(0, 0, 1, 1)), "eng")
	assert.Error(t, err)
	assert.Empty(t, text)
}

func TestBounded_CapsConcurrency(t *testing.T) {
	fe := &fakeEngine{text: "x", delay: 50 * time.Millisecond}
	b := NewBounded(fe, 2, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = b.Recognize(image.NewGray(image.Rect(0, 0, 1, 1)), "eng")
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&fe.maxSeen), int32(2))
}
