package audio

import (
	"math"

	"github.com/Conceptual-Machines/art2music-api/internal/synth"
)

const quietLevel = 1e-10

// BiquadFilter is a second-order IIR filter with RBJ cookbook
// coefficients, recomputed once per block.
type BiquadFilter struct {
	*node
	kind      synth.FilterType
	frequency *Param
	q         *Param

	x1, x2, y1, y2 float64
	out            []float64
}

func (f *BiquadFilter) Frequency() synth.Param { return f.frequency }
func (f *BiquadFilter) Q() synth.Param         { return f.q }

func (f *BiquadFilter) quiet() bool {
	return math.Abs(f.x1) < quietLevel && math.Abs(f.x2) < quietLevel &&
		math.Abs(f.y1) < quietLevel && math.Abs(f.y2) < quietLevel
}

func (f *BiquadFilter) process(in []float64, block int64) []float64 {
	if in == nil && f.quiet() {
		f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
		return nil
	}

	b0, b1, b2, a1, a2 := biquadCoefficients(f.kind, f.frequency.blockValue(block), f.q.blockValue(block), float64(f.ctx.sampleRate))
	for i := range f.out {
		x := 0.0
		if in != nil {
			x = in[i]
		}
		y := b0*x + b1*f.x1 + b2*f.x2 - a1*f.y1 - a2*f.y2
		f.x2, f.x1 = f.x1, x
		f.y2, f.y1 = f.y1, y
		f.out[i] = y
	}
	return f.out
}

// biquadCoefficients returns normalised coefficients (a0 = 1).
func biquadCoefficients(kind synth.FilterType, cutoff, q, sampleRate float64) (b0, b1, b2, a1, a2 float64) {
	nyquist := sampleRate / 2
	cutoff = math.Min(math.Max(cutoff, 1), nyquist*0.999)
	if q <= 0 {
		q = 1e-4
	}

	w0 := 2 * math.Pi * cutoff / sampleRate
	cosW, sinW := math.Cos(w0), math.Sin(w0)
	alpha := sinW / (2 * q)
	a0 := 1 + alpha

	switch kind {
	case synth.Highpass:
		b0 = (1 + cosW) / 2
		b1 = -(1 + cosW)
		b2 = (1 + cosW) / 2
	case synth.Bandpass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	default:
		b0 = (1 - cosW) / 2
		b1 = 1 - cosW
		b2 = (1 - cosW) / 2
	}
	a1 = -2 * cosW
	a2 = 1 - alpha
	return b0 / a0, b1 / a0, b2 / a0, a1 / a0, a2 / a0
}
