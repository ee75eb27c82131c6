// Package export writes rendered compositions to standard file formats.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/floats"
)

const (
	// BitDepth is the PCM sample size of exported WAV files.
	BitDepth = 16
	// Channels is the channel count of exported WAV files. The mono
	// signal is duplicated to both sides.
	Channels = 2

	wavFormatPCM = 1
)

// ErrInvalidSampleRate is returned for non-positive sample rates.
var ErrInvalidSampleRate = errors.New("sample rate must be positive")

// WriteWAV encodes samples as 16-bit stereo PCM. Signals whose peak
// exceeds full scale are normalised to it; quieter signals are written
// unchanged.
func WriteWAV(w io.WriteSeeker, samples []float64, sampleRate int) error {
	if sampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	scale := 1.0
	if len(samples) > 0 {
		peak := math.Max(math.Abs(floats.Max(samples)), math.Abs(floats.Min(samples)))
		if peak > 1 {
			scale = 1 / peak
		}
	}

	maxInt := float64(int(1)<<(BitDepth-1) - 1)
	data := make([]int, 0, len(samples)*Channels)
	for _, s := range samples {
		if math.IsNaN(s) {
			s = 0
		}
		v := int(math.Round(s * scale * maxInt))
		for ch := 0; ch < Channels; ch++ {
			data = append(data, v)
		}
	}

	enc := wav.NewEncoder(w, sampleRate, BitDepth, Channels, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: Channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write pcm: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}
