package loop

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Ticker advances the game by one frame of dt seconds.
type Ticker interface {
	Frame(dt float32) error
}

// TickerFunc adapts a function to Ticker.
type TickerFunc func(dt float32) error

// Frame calls f.
func (f TickerFunc) Frame(dt float32) error { return f(dt) }

// FrameLoop is a Service that drives a Ticker at a fixed rate.
type FrameLoop struct {
	ticker    Ticker
	interval  time.Duration
	dt        float32
	maxFrames int64
	frames    atomic.Int64
	stop      chan struct{}
	once      sync.Once
	logger    *zap.Logger
}

// NewFrameLoop creates a loop running hz frames per second.
//
// Precondition: hz > 0; maxFrames >= 0 where 0 means run until stopped.
func NewFrameLoop(t Ticker, hz float32, maxFrames int, logger *zap.Logger) *FrameLoop {
	return &FrameLoop{
		ticker:    t,
		interval:  time.Duration(float64(time.Second) / float64(hz)),
		dt:        1 / hz,
		maxFrames: int64(maxFrames),
		stop:      make(chan struct{}),
		logger:    logger,
	}
}

// Start runs frames until Stop, the frame limit or a frame error.
func (l *FrameLoop) Start() error {
	t := time.NewTicker(l.interval)
	defer t.Stop()
	for {
		select {
		case <-l.stop:
			return nil
		case <-t.C:
		}
		if err := l.ticker.Frame(l.dt); err != nil {
			return err
		}
		n := l.frames.Add(1)
		if l.maxFrames > 0 && n >= l.maxFrames {
			l.logger.Info("frame limit reached", zap.Int64("frames", n))
			return nil
		}
	}
}

// Stop ends the loop after the current frame. It is safe to call more than once.
func (l *FrameLoop) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// Frames returns how many frames have completed.
func (l *FrameLoop) Frames() int {
	return int(l.frames.Load())
}
