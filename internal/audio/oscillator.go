package audio

import (
	"math"

	"github.com/Conceptual-Machines/art2music-api/internal/music"
	"github.com/Conceptual-Machines/art2music-api/internal/synth"
)

// Oscillator is a periodic source with an a-rate frequency.
type Oscillator struct {
	*node
	waveform  music.Waveform
	frequency *Param
	phase     float64
	started   bool
	start     float64
	stop      float64

	out   []float64
	freqs []float64
}

func (o *Oscillator) Frequency() synth.Param { return o.frequency }

// Start schedules the oscillator to begin at t.
func (o *Oscillator) Start(t float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	if o.started {
		return ErrAlreadyStarted
	}
	o.started = true
	o.start = t
	return nil
}

// Stop schedules the oscillator to end at t. It fails once the
// oscillator has already ended.
func (o *Oscillator) Stop(t float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()

	if !o.started {
		return ErrNotStarted
	}
	if o.stop <= o.ctx.timeLocked() {
		return ErrAlreadyStopped
	}
	o.stop = t
	return nil
}

func (o *Oscillator) process(_ []float64, block int64) []float64 {
	if !o.started {
		return nil
	}
	sr := float64(o.ctx.sampleRate)
	first := block * BlockSize
	t0 := float64(first) / sr
	t1 := float64(first+BlockSize) / sr
	if t1 <= o.start || t0 >= o.stop {
		return nil
	}

	freqs := o.frequency.fill(block, o.freqs)
	for i := range o.out {
		t := float64(first+int64(i)) / sr
		if t < o.start || t >= o.stop {
			o.out[i] = 0
			continue
		}
		o.out[i] = waveAt(o.waveform, o.phase)
		o.phase += freqs[i] / sr
		o.phase -= math.Floor(o.phase)
	}
	return o.out
}

// waveAt evaluates one period of w at phase p in [0,1).
func waveAt(w music.Waveform, p float64) float64 {
	switch w {
	case music.WaveSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case music.WaveSawtooth:
		return 2*p - 1
	case music.WaveTriangle:
		switch {
		case p < 0.25:
			return 4 * p
		case p < 0.75:
			return 2 - 4*p
		default:
			return 4*p - 4
		}
	default:
		return math.Sin(2 * math.Pi * p)
	}
}
