// Package logx wraps a process-wide structured logger with the event
// vocabulary the pipeline emits, and decouples log I/O from the
// driver's tick loop with a bounded async buffer.
package logx

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Event is one of the structured event kinds the pipeline emits.
type Event string

const (
	EventFrameCaptured    Event = "frame_captured"
	EventStabilityState   Event = "stability_state"
	EventTextboxDetected  Event = "textbox_detected"
	EventTextboxLost      Event = "textbox_lost"
	EventOCRRaw           Event = "ocr_raw"
	EventOCRCleaned       Event = "ocr_cleaned"
	EventDialogueRejected Event = "dialogue_rejected"
	EventDialogueAdded    Event = "dialogue_added"
	EventDialogueUpdated  Event = "dialogue_updated"
	EventPerformanceSlow  Event = "performance_slow"
	EventError            Event = "error"
)

type record struct {
	level  log.Level
	event  Event
	msg    string
	fields []any
}

// Logger batches writes onto a bounded channel drained by a background
// goroutine, so the driver's tick loop never blocks on log I/O.
type Logger struct {
	inner *log.Logger
	ch    chan record
	done  chan struct{}
}

// New builds a Logger writing to w (os.Stderr in production), JSON
// formatted when json is true, filtered to at least minLevel.
func New(w io.Writer, json bool, minLevel string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	inner := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
	})
	if json {
		inner.SetFormatter(log.JSONFormatter)
	}
	inner.SetLevel(parseLevel(minLevel))

	l := &Logger{
		inner: inner,
		ch:    make(chan record, 256),
		done:  make(chan struct{}),
	}
	go l.drain()
	return l
}

func parseLevel(s string) log.Level {
	switch s {
	case "debug":
		return log.DebugLevel
	case "warning", "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func (l *Logger) drain() {
	for {
		select {
		case r, ok := <-l.ch:
			if !ok {
				close(l.done)
				return
			}
			fields := append([]any{"event", string(r.event)}, r.fields...)
			switch r.level {
			case log.DebugLevel:
				l.inner.Debug(r.msg, fields...)
			case log.WarnLevel:
				l.inner.Warn(r.msg, fields...)
			case log.ErrorLevel:
				l.inner.Error(r.msg, fields...)
			default:
				l.inner.Info(r.msg, fields...)
			}
		}
	}
}

func (l *Logger) enqueue(r record) {
	select {
	case l.ch <- r:
	default:
		// Buffer full: drop rather than block the caller. A driver
		// tick must never stall on logging.
	}
}

func (l *Logger) Debug(event Event, msg string, fields ...any) {
	l.enqueue(record{level: log.DebugLevel, event: event, msg: msg, fields: fields})
}

func (l *Logger) Info(event Event, msg string, fields ...any) {
	l.enqueue(record{level: log.InfoLevel, event: event, msg: msg, fields: fields})
}

func (l *Logger) Warn(event Event, msg string, fields ...any) {
	l.enqueue(record{level: log.WarnLevel, event: event, msg: msg, fields: fields})
}

func (l *Logger) Error(event Event, msg string, fields ...any) {
	l.enqueue(record{level: log.ErrorLevel, event: event, msg: msg, fields: fields})
}

// Close stops accepting new records and waits for the drain goroutine
// to flush what remains.
func (l *Logger) Close() {
	close(l.ch)
	<-l.done
}
