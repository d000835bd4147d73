// Package device plays cues through the host sound card.
package device

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"

	"github.com/cory-johannsen/periphery/internal/config"
)

// Speaker is an audio.Sink backed by the system output device.
type Speaker struct {
	rate   beep.SampleRate
	mixer  *beep.Mixer
	logger *zap.Logger
}

// Open initialises the speaker at the configured rate with a 100ms buffer.
//
// Postcondition: the returned Speaker must be closed with Close.
func Open(cfg config.AudioConfig, logger *zap.Logger) (*Speaker, error) {
	rate := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}
	s := &Speaker{rate: rate, mixer: &beep.Mixer{}, logger: logger}
	speaker.Play(s.mixer)
	logger.Info("audio device open", zap.Int("sample_rate", cfg.SampleRate))
	return s, nil
}

// Play implements audio.Sink.
func (s *Speaker) Play(st beep.Streamer) {
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Lock implements audio.Sink; it holds the speaker's streaming lock.
func (s *Speaker) Lock() { speaker.Lock() }

// Unlock implements audio.Sink.
func (s *Speaker) Unlock() { speaker.Unlock() }

// Close stops playback and releases the device.
func (s *Speaker) Close() {
	speaker.Clear()
	speaker.Close()
	s.logger.Debug("audio device closed")
}
