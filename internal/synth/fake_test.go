package synth

import (
	"errors"

	"github.com/Conceptual-Machines/art2music-api/internal/music"
)

var errFake = errors.New("fake failure")

type paramEvent struct {
	kind string
	v, t float64
}

type fakeParam struct {
	value  float64
	events []paramEvent
	inputs []*fakeNode
}

func (p *fakeParam) Value() float64     { return p.value }
func (p *fakeParam) SetValue(v float64) { p.value = v }
func (p *fakeParam) SetValueAtTime(v, t float64) {
	p.events = append(p.events, paramEvent{"set", v, t})
}
func (p *fakeParam) LinearRampToValueAtTime(v, t float64) {
	p.events = append(p.events, paramEvent{"linear", v, t})
}
func (p *fakeParam) ExponentialRampToValueAtTime(v, t float64) {
	p.events = append(p.events, paramEvent{"exp", v, t})
}

type fakeNode struct {
	kind     string
	waveform music.Waveform
	filter   FilterType
	impulse  [][]float64
	outs     []*fakeNode
	params   []*fakeParam
	starts   []float64
	stops    []float64
	ended    bool
	cleared  int
	freq     *fakeParam
	gain     *fakeParam
	q        *fakeParam
	delay    *fakeParam
}

func (n *fakeNode) Connect(dst Node) error {
	d, ok := unwrap(dst).(*fakeNode)
	if !ok {
		return errFake
	}
	n.outs = append(n.outs, d)
	return nil
}

func (n *fakeNode) ConnectParam(dst Param) error {
	p, ok := dst.(*fakeParam)
	if !ok {
		return errFake
	}
	p.inputs = append(p.inputs, n)
	n.params = append(n.params, p)
	return nil
}

func (n *fakeNode) Disconnect() {
	n.outs = nil
	n.params = nil
	n.cleared++
}

func (n *fakeNode) Start(t float64) error {
	n.starts = append(n.starts, t)
	return nil
}

func (n *fakeNode) Stop(t float64) error {
	if n.ended {
		return errFake
	}
	n.stops = append(n.stops, t)
	return nil
}

func (n *fakeNode) Frequency() Param { return n.freq }
func (n *fakeNode) Gain() Param      { return n.gain }
func (n *fakeNode) Q() Param         { return n.q }
func (n *fakeNode) DelayTime() Param { return n.delay }

// fakeOscillator hides the Source methods from non-source nodes.
type fakeOscillator struct{ *fakeNode }

type fakeGraph struct {
	now     float64
	nodes   []*fakeNode
	dest    *fakeNode
	failOn  string
	created int
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{dest: &fakeNode{kind: "destination"}}
}

func (g *fakeGraph) CurrentTime() float64 { return g.now }
func (g *fakeGraph) SampleRate() int      { return 8000 }
func (g *fakeGraph) Destination() Node    { return g.dest }

func (g *fakeGraph) node(kind string) (*fakeNode, error) {
	if g.failOn == kind {
		return nil, errFake
	}
	n := &fakeNode{kind: kind}
	g.nodes = append(g.nodes, n)
	g.created++
	return n, nil
}

func (g *fakeGraph) CreateOscillator(w music.Waveform, f float64) (Oscillator, error) {
	n, err := g.node("oscillator")
	if err != nil {
		return nil, err
	}
	n.waveform = w
	n.freq = &fakeParam{value: f}
	return fakeOscillator{n}, nil
}

func (g *fakeGraph) CreateGain(v float64) (Gain, error) {
	n, err := g.node("gain")
	if err != nil {
		return nil, err
	}
	n.gain = &fakeParam{value: v}
	return gainNode{n}, nil
}

func (g *fakeGraph) CreateBiquadFilter(kind FilterType, cutoff, q float64) (BiquadFilter, error) {
	n, err := g.node("filter")
	if err != nil {
		return nil, err
	}
	n.filter = kind
	n.freq = &fakeParam{value: cutoff}
	n.q = &fakeParam{value: q}
	return filterNode{n}, nil
}

func (g *fakeGraph) CreateDelay(seconds float64) (Delay, error) {
	n, err := g.node("delay")
	if err != nil {
		return nil, err
	}
	n.delay = &fakeParam{value: seconds}
	return delayNode{n}, nil
}

func (g *fakeGraph) CreateConvolver(impulse [][]float64) (Convolver, error) {
	n, err := g.node("convolver")
	if err != nil {
		return nil, err
	}
	n.impulse = impulse
	return plainNode{n}, nil
}

// Wrappers exposing only the methods of each node kind, so a Handle's
// Source detection sees oscillators alone.
type plainNode struct{ n *fakeNode }

func (p plainNode) Connect(dst Node) error       { return p.n.Connect(dst) }
func (p plainNode) ConnectParam(dst Param) error { return p.n.ConnectParam(dst) }
func (p plainNode) Disconnect()                  { p.n.Disconnect() }

type gainNode struct{ n *fakeNode }

func (p gainNode) Connect(dst Node) error       { return p.n.Connect(dst) }
func (p gainNode) ConnectParam(dst Param) error { return p.n.ConnectParam(dst) }
func (p gainNode) Disconnect()                  { p.n.Disconnect() }
func (p gainNode) Gain() Param                  { return p.n.gain }

type filterNode struct{ n *fakeNode }

func (p filterNode) Connect(dst Node) error       { return p.n.Connect(dst) }
func (p filterNode) ConnectParam(dst Param) error { return p.n.ConnectParam(dst) }
func (p filterNode) Disconnect()                  { p.n.Disconnect() }
func (p filterNode) Frequency() Param             { return p.n.freq }
func (p filterNode) Q() Param                     { return p.n.q }

type delayNode struct{ n *fakeNode }

func (p delayNode) Connect(dst Node) error       { return p.n.Connect(dst) }
func (p delayNode) ConnectParam(dst Param) error { return p.n.ConnectParam(dst) }
func (p delayNode) Disconnect()                  { p.n.Disconnect() }
func (p delayNode) DelayTime() Param             { return p.n.delay }

func unwrap(n Node) Node {
	switch v := n.(type) {
	case fakeOscillator:
		return v.fakeNode
	case plainNode:
		return v.n
	case gainNode:
		return v.n
	case filterNode:
		return v.n
	case delayNode:
		return v.n
	}
	return n
}

func (g *fakeGraph) ofKind(kind string) []*fakeNode {
	var out []*fakeNode
	for _, n := range g.nodes {
		if n.kind == kind {
			out = append(out, n)
		}
	}
	return out
}
