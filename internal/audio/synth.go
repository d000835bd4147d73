// Package audio synthesises gameplay cues and hands them to an output sink.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	beepfx "github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// tone returns length of a sine at freq. Frequencies the rate cannot
// carry yield silence.
func tone(rate beep.SampleRate, freq float64, length time.Duration) beep.Streamer {
	n := rate.N(length)
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return beep.Silence(n)
	}
	return beep.Take(n, sine)
}

// decay fades a stream linearly to silence over its length.
type decay struct {
	streamer beep.Streamer
	position int
	total    int
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		g := 1 - float64(d.position)/float64(d.total)
		if g < 0 {
			g = 0
		}
		samples[i][0] *= g
		samples[i][1] *= g
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// gain wraps s in a volume effect. Non-positive volumes are silent.
func gain(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &beepfx.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &beepfx.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// WinChime returns a two-tone chime of the given length: a fifth over A5, fading out.
func WinChime(rate beep.SampleRate, length time.Duration, volume float64) beep.Streamer {
	total := rate.N(length)
	root := &decay{streamer: tone(rate, 880, length), total: total}
	fifth := &decay{streamer: tone(rate, 1318.5, length), total: total}
	return gain(beep.Mix(gain(root, 0.6), gain(fifth, 0.4)), volume)
}
