package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/config"
)

// Sink plays streams. Playback devices live outside this package. Streams
// handed to Play are read on the sink's own goroutine while it holds the
// Locker, so callers mutate them only under Lock.
type Sink interface {
	sync.Locker
	Play(s beep.Streamer)
}

// NullSink discards everything it is given.
type NullSink struct{}

// Play implements Sink.
func (NullSink) Play(beep.Streamer) {}

// Lock implements Sink.
func (NullSink) Lock() {}

// Unlock implements Sink.
func (NullSink) Unlock() {}

// Source builds a fresh stream each time a cue starts.
type Source func() beep.Streamer

// Cue is a restartable sound with a playing state. Each run has a
// generation; a run is playing until it is stopped, replaced or drained.
type Cue struct {
	name   string
	source Source
	sink   Sink
	logger *zap.Logger

	// mu guards ctrl and next. It is never held while calling the sink.
	mu   sync.Mutex
	ctrl *beep.Ctrl
	next uint64

	current atomic.Uint64 // generation playing, 0 when stopped
	drained atomic.Uint64 // highest generation whose stream ended
}

// NewCue creates a stopped cue.
//
// Precondition: source, sink and logger must not be nil.
func NewCue(name string, source Source, sink Sink, logger *zap.Logger) *Cue {
	return &Cue{name: name, source: source, sink: sink, logger: logger}
}

// NewWinCue creates the chime played while a Win crest is in view.
func NewWinCue(cfg config.AudioConfig, sink Sink, logger *zap.Logger) *Cue {
	rate := beep.SampleRate(cfg.SampleRate)
	return NewCue("win", func() beep.Streamer {
		return WinChime(rate, cfg.WinCue, cfg.Volume)
	}, sink, logger)
}

// Play starts the cue from the beginning, cutting off any previous run.
func (c *Cue) Play() {
	c.mu.Lock()
	prev := c.ctrl
	c.next++
	gen := c.next
	ctrl := &beep.Ctrl{Streamer: c.source()}
	c.ctrl = ctrl
	c.current.Store(gen)
	c.mu.Unlock()

	c.silence(prev)
	c.sink.Play(beep.Seq(ctrl, beep.Callback(func() { c.markDrained(gen) })))
	c.logger.Debug("cue started", zap.String("cue", c.name), zap.Uint64("run", gen))
}

// Stop silences the cue. Stopping a stopped cue is a no-op.
func (c *Cue) Stop() {
	c.mu.Lock()
	prev := c.ctrl
	c.ctrl = nil
	c.current.Store(0)
	c.mu.Unlock()

	if prev != nil {
		c.silence(prev)
		c.logger.Debug("cue stopped", zap.String("cue", c.name))
	}
}

// Playing reports whether the cue has been started and has neither finished nor been stopped.
func (c *Cue) Playing() bool {
	gen := c.current.Load()
	return gen != 0 && c.drained.Load() < gen
}

// silence ends ctrl's stream on the sink's side.
func (c *Cue) silence(ctrl *beep.Ctrl) {
	if ctrl == nil {
		return
	}
	c.sink.Lock()
	ctrl.Streamer = nil
	c.sink.Unlock()
}

// markDrained runs on the sink's goroutine and must not take c.mu.
func (c *Cue) markDrained(gen uint64) {
	for {
		d := c.drained.Load()
		if d >= gen || c.drained.CompareAndSwap(d, gen) {
			return
		}
	}
}

// Length returns the number of samples s yields before ending.
func Length(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

// Duration converts a sample count to a duration at rate.
func Duration(rate beep.SampleRate, samples int) time.Duration {
	return rate.D(samples)
}
