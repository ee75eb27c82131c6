package audio

import (
	"io"
	"math"
)

// FrameBytes is the size of one stereo float32 frame.
const FrameBytes = 8

// Stream returns an endless reader of stereo float32 little-endian
// frames, the format the speaker output expects. Reads advance the
// context's clock. After Close the reader returns io.EOF.
func (c *Context) Stream() io.Reader {
	return &streamReader{ctx: c}
}

type streamReader struct {
	ctx *Context
	buf []float64
}

func (r *streamReader) Read(p []byte) (int, error) {
	r.ctx.mu.Lock()
	closed := r.ctx.closed
	r.ctx.mu.Unlock()
	if closed {
		return 0, io.EOF
	}

	frames := len(p) / FrameBytes
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([]float64, frames)
	}
	samples := r.buf[:frames]
	r.ctx.Read(samples)
	for i, s := range samples {
		putStereoF32(p, i, softSat(s))
	}
	return frames * FrameBytes, nil
}

// putStereoF32 writes a [-1,1] sample as float32 LE to both stereo
// channels of frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	buf[i*8] = byte(v)
	buf[i*8+1] = byte(v >> 8)
	buf[i*8+2] = byte(v >> 16)
	buf[i*8+3] = byte(v >> 24)
	buf[i*8+4] = byte(v)
	buf[i*8+5] = byte(v >> 8)
	buf[i*8+6] = byte(v >> 16)
	buf[i*8+7] = byte(v >> 24)
}

// softSat is a gentle cubic saturator that never clips hard. It is
// continuous and monotonic, approaching ±1 beyond |x| = 1.
func softSat(x float64) float64 {
	if x > 1.0 {
		return 2.0/3.0 + (1.0-1.0/x)/3.0
	}
	if x < -1.0 {
		return -softSat(-x)
	}
	return x - x*x*x/3.0
}
