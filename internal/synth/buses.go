package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Conceptual-Machines/art2music-api/internal/compose"
)

const (
	MasterVolume   = 0.3
	DelayTime      = 0.3
	DelayLevel     = 0.2
	ReverbLevel    = 0.3
	ReverbSeconds  = 2.0
	ReverbChannels = 2
)

// Buses is the shared routing every event of one playback feeds into.
//
//	dry    → master → destination
//	delay  → delay line → delay level → master
//	reverb → convolver → reverb level → master
type Buses struct {
	Master       Gain
	Delay        Delay
	DelayReturn  Gain
	Reverb       Convolver
	ReverbReturn Gain
}

// NewBuses builds the master, delay and reverb paths on g. The reverb
// impulse is decaying noise drawn from rng.
func NewBuses(g Graph, rng *rand.Rand) (*Buses, error) {
	b := &Buses{}
	var err error

	if b.Master, err = g.CreateGain(MasterVolume); err != nil {
		return nil, fmt.Errorf("master gain: %w", err)
	}
	if b.Delay, err = g.CreateDelay(DelayTime); err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}
	if b.DelayReturn, err = g.CreateGain(DelayLevel); err != nil {
		return nil, fmt.Errorf("delay return: %w", err)
	}
	if b.Reverb, err = g.CreateConvolver(ImpulseResponse(g.SampleRate(), ReverbSeconds, rng)); err != nil {
		return nil, fmt.Errorf("convolver: %w", err)
	}
	if b.ReverbReturn, err = g.CreateGain(ReverbLevel); err != nil {
		return nil, fmt.Errorf("reverb return: %w", err)
	}

	links := []struct {
		src, dst Node
	}{
		{b.Master, g.Destination()},
		{b.Delay, b.DelayReturn},
		{b.DelayReturn, b.Master},
		{b.Reverb, b.ReverbReturn},
		{b.ReverbReturn, b.Master},
	}
	for _, l := range links {
		if err := l.src.Connect(l.dst); err != nil {
			b.Disconnect()
			return nil, fmt.Errorf("connect buses: %w", err)
		}
	}
	return b, nil
}

// Input returns the node events on bus should connect to. Unknown buses
// route dry.
func (b *Buses) Input(bus compose.Bus) Node {
	switch bus {
	case compose.BusDelay:
		return b.Delay
	case compose.BusReverb:
		return b.Reverb
	default:
		return b.Master
	}
}

// Disconnect tears the bus graph down.
func (b *Buses) Disconnect() {
	for _, n := range []Node{b.Master, b.Delay, b.DelayReturn, b.Reverb, b.ReverbReturn} {
		if n != nil {
			n.Disconnect()
		}
	}
}

// ImpulseResponse returns a stereo noise burst with a quadratic decay,
// seconds long.
func ImpulseResponse(sampleRate int, seconds float64, rng *rand.Rand) [][]float64 {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	n := int(float64(sampleRate) * seconds)
	out := make([][]float64, ReverbChannels)
	for ch := range out {
		data := make([]float64, n)
		for i := range data {
			data[i] = (rng.Float64()*2 - 1) * math.Pow(1-float64(i)/float64(n), 2)
		}
		out[ch] = data
	}
	return out
}
