// Package synth realises scheduled events as generator chains on an
// audio graph.
package synth

import "github.com/Conceptual-Machines/art2music-api/internal/music"

// FilterType selects a biquad response.
type FilterType string

const (
	Lowpass  FilterType = "lowpass"
	Highpass FilterType = "highpass"
	Bandpass FilterType = "bandpass"
)

// Param is an automatable node parameter. Times are absolute graph times
// in seconds.
type Param interface {
	Value() float64
	SetValue(v float64)
	SetValueAtTime(v, t float64)
	LinearRampToValueAtTime(v, t float64)
	ExponentialRampToValueAtTime(v, t float64)
}

// Node is a vertex of an audio graph.
type Node interface {
	// Connect routes this node's output into dst's input.
	Connect(dst Node) error
	// ConnectParam routes this node's output into a parameter, adding to
	// its automated value.
	ConnectParam(dst Param) error
	// Disconnect removes every outgoing connection.
	Disconnect()
}

// Source is a node that produces signal between a start and stop time.
type Source interface {
	Node
	Start(t float64) error
	// Stop schedules the end of the source. Stopping a source that has
	// already ended returns an error.
	Stop(t float64) error
}

type Oscillator interface {
	Source
	Frequency() Param
}

type Gain interface {
	Node
	Gain() Param
}

type BiquadFilter interface {
	Node
	Frequency() Param
	Q() Param
}

type Delay interface {
	Node
	DelayTime() Param
}

type Convolver interface {
	Node
}

// Graph is the audio output sink the renderer builds against.
type Graph interface {
	CurrentTime() float64
	SampleRate() int
	Destination() Node
	CreateOscillator(waveform music.Waveform, frequency float64) (Oscillator, error)
	CreateGain(gain float64) (Gain, error)
	CreateBiquadFilter(kind FilterType, cutoff, q float64) (BiquadFilter, error)
	CreateDelay(seconds float64) (Delay, error)
	// CreateConvolver takes one impulse response per output channel.
	CreateConvolver(impulse [][]float64) (Convolver, error)
}
