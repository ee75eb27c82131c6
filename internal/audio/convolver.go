package audio

import (
	"github.com/mjibson/go-dsp/fft"
)

// Convolver applies an impulse response with uniformly partitioned
// overlap-save convolution: the impulse is split into BlockSize
// partitions whose spectra are multiplied against a delay line of past
// input spectra.
type Convolver struct {
	*node
	partitions [][]complex128
	history    [][]complex128
	head       int
	window     []float64
	tail       int

	acc []complex128
	out []float64
}

func (c *Context) newConvolver(impulse []float64) *Convolver {
	parts := (len(impulse) + BlockSize - 1) / BlockSize
	cv := &Convolver{
		partitions: make([][]complex128, parts),
		history:    make([][]complex128, parts),
		window:     make([]float64, 2*BlockSize),
		acc:        make([]complex128, 2*BlockSize),
		out:        make([]float64, BlockSize),
	}
	for p := range cv.partitions {
		padded := make([]float64, 2*BlockSize)
		copy(padded, impulse[p*BlockSize:min((p+1)*BlockSize, len(impulse))])
		cv.partitions[p] = fft.FFTReal(padded)
		cv.history[p] = make([]complex128, 2*BlockSize)
	}
	cv.node = c.newNode(cv)
	return cv
}

func (cv *Convolver) process(in []float64, _ int64) []float64 {
	if len(cv.partitions) == 0 {
		return nil
	}
	if in != nil {
		cv.tail = len(cv.partitions) + 1
	} else {
		if cv.tail <= 0 {
			return nil
		}
		cv.tail--
	}

	// Slide the input window: previous block, then this one.
	copy(cv.window, cv.window[BlockSize:])
	if in != nil {
		copy(cv.window[BlockSize:], in)
	} else {
		clear(cv.window[BlockSize:])
	}

	cv.head = (cv.head + len(cv.history) - 1) % len(cv.history)
	cv.history[cv.head] = fft.FFTReal(cv.window)

	clear(cv.acc)
	for p, h := range cv.partitions {
		x := cv.history[(cv.head+p)%len(cv.history)]
		for k := range cv.acc {
			cv.acc[k] += x[k] * h[k]
		}
	}

	y := fft.IFFT(cv.acc)
	for i := range cv.out {
		cv.out[i] = real(y[BlockSize+i])
	}
	return cv.out
}
