package audio

import (
	"math"

	"github.com/Conceptual-Machines/art2music-api/internal/synth"
)

// Delay is a ring-buffer delay line. Its delay time is evaluated once
// per block and clamped to the buffer length.
type Delay struct {
	*node
	delayTime *Param
	buf       []float64
	write     int
	tail      int

	out []float64
}

func (d *Delay) DelayTime() synth.Param { return d.delayTime }

func (d *Delay) process(in []float64, block int64) []float64 {
	samples := int(math.Round(d.delayTime.blockValue(block) * float64(d.ctx.sampleRate)))
	samples = min(max(samples, 0), len(d.buf)-1)

	if in != nil {
		d.tail = samples + BlockSize
	} else {
		if d.tail <= 0 {
			return nil
		}
		d.tail -= BlockSize
	}

	n := len(d.buf)
	for i := range d.out {
		x := 0.0
		if in != nil {
			x = in[i]
		}
		d.buf[d.write] = x
		d.out[i] = d.buf[(d.write-samples+n)%n]
		d.write = (d.write + 1) % n
	}
	return d.out
}
