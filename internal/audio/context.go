// Package audio is a software audio graph: oscillators, gains, biquad
// filters, delay lines and an FFT convolver rendered block by block,
// offline into a buffer or live into the sound card.
package audio

import (
	"fmt"
	"math"
	"sync"

	"github.com/Conceptual-Machines/art2music-api/internal/music"
	"github.com/Conceptual-Machines/art2music-api/internal/synth"
)

const (
	// DefaultSampleRate is used when a context is created with rate 0.
	DefaultSampleRate = 44100

	// BlockSize is the number of frames rendered per processing block.
	BlockSize = 256

	maxDelaySeconds = 5.0
)

// Context owns a graph and its clock. All methods are safe for
// concurrent use; graph mutation and rendering are serialised.
type Context struct {
	mu         sync.Mutex
	sampleRate int
	block      int64
	dest       *node
	pending    []float64
	closed     bool
}

// NewContext returns an empty graph at sampleRate frames per second.
func NewContext(sampleRate int) *Context {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	c := &Context{sampleRate: sampleRate}
	c.dest = c.newNode(passthrough{})
	return c
}

func (c *Context) SampleRate() int { return c.sampleRate }

// CurrentTime returns the time of the next frame to be rendered.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeLocked()
}

func (c *Context) timeLocked() float64 {
	frames := c.block*BlockSize - int64(len(c.pending))
	return float64(frames) / float64(c.sampleRate)
}

// Destination is the graph's output.
func (c *Context) Destination() synth.Node { return c.dest }

// Close stops rendering. Further node creation fails with ErrClosed.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.dest.inputs = nil
	return nil
}

func (c *Context) checkOpen() error {
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Context) CreateOscillator(waveform music.Waveform, frequency float64) (synth.Oscillator, error) {
	if !waveform.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWaveform, waveform)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	o := &Oscillator{
		waveform:  waveform,
		frequency: c.newParam(frequency),
		stop:      math.Inf(1),
		out:       make([]float64, BlockSize),
		freqs:     make([]float64, BlockSize),
	}
	o.node = c.newNode(o)
	return o, nil
}

func (c *Context) CreateGain(gain float64) (synth.Gain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	g := &Gain{
		gain: c.newParam(gain),
		out:  make([]float64, BlockSize),
		vals: make([]float64, BlockSize),
	}
	g.node = c.newNode(g)
	return g, nil
}

func (c *Context) CreateBiquadFilter(kind synth.FilterType, cutoff, q float64) (synth.BiquadFilter, error) {
	switch kind {
	case synth.Lowpass, synth.Highpass, synth.Bandpass:
	default:
		return nil, fmt.Errorf("%w: filter type %q", ErrInvalidSetting, kind)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	f := &BiquadFilter{
		kind:      kind,
		frequency: c.newParam(cutoff),
		q:         c.newParam(q),
		out:       make([]float64, BlockSize),
	}
	f.node = c.newNode(f)
	return f, nil
}

func (c *Context) CreateDelay(seconds float64) (synth.Delay, error) {
	if seconds < 0 || seconds > maxDelaySeconds || math.IsNaN(seconds) {
		return nil, fmt.Errorf("%w: delay %.3fs", ErrInvalidSetting, seconds)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	length := int(math.Max(2*seconds, 1) * float64(c.sampleRate))
	d := &Delay{
		delayTime: c.newParam(seconds),
		buf:       make([]float64, length),
		out:       make([]float64, BlockSize),
	}
	d.node = c.newNode(d)
	return d, nil
}

// CreateConvolver builds a convolver. The graph is mono: the channels of
// impulse are averaged.
func (c *Context) CreateConvolver(impulse [][]float64) (synth.Convolver, error) {
	if len(impulse) == 0 {
		return nil, fmt.Errorf("%w: empty impulse", ErrInvalidSetting)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return c.newConvolver(mixDown(impulse)), nil
}

func mixDown(channels [][]float64) []float64 {
	n := 0
	for _, ch := range channels {
		n = max(n, len(ch))
	}
	out := make([]float64, n)
	scale := 1 / float64(len(channels))
	for _, ch := range channels {
		for i, v := range ch {
			out[i] += v * scale
		}
	}
	return out
}

// Read renders len(dst) frames into dst, advancing the clock.
func (c *Context) Read(dst []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(dst) > 0 {
		if len(c.pending) == 0 {
			c.pending = c.renderBlockLocked()
		}
		n := copy(dst, c.pending)
		dst = dst[n:]
		c.pending = c.pending[n:]
	}
}

// Render renders the next seconds of output.
func (c *Context) Render(seconds float64) []float64 {
	if !(seconds > 0) {
		return nil
	}
	out := make([]float64, int(math.Round(seconds*float64(c.sampleRate))))
	c.Read(out)
	return out
}

func (c *Context) renderBlockLocked() []float64 {
	buf := make([]float64, BlockSize)
	if !c.closed {
		if out := c.dest.pull(c.block); out != nil {
			copy(buf, out)
		}
	}
	c.block++
	return buf
}
