package synth

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/Conceptual-Machines/art2music-api/internal/compose"
	"github.com/Conceptual-Machines/art2music-api/internal/music"
)

const (
	// NoteAttack is the linear attack of short notes.
	NoteAttack = 0.05
	// NoteFloor is the level the exponential note release decays to.
	NoteFloor = 0.001
	// PadMaxFade caps the fade in and out of pads.
	PadMaxFade = 2.0
	// PadFadeRatio is the share of a pad's duration spent fading.
	PadFadeRatio = 0.3
	// PadQ is the resonance of the pad lowpass.
	PadQ = 1.0
	// LFODepth is the pitch wobble of pads relative to their frequency.
	LFODepth = 0.02

	lfoMinRate  = 0.5
	lfoRateSpan = 0.5
)

// Renderer builds generator chains for events.
type Renderer struct {
	graph Graph
	rng   *rand.Rand
}

// NewRenderer returns a Renderer for g. rng sets LFO rates; nil uses a
// fixed seed.
func NewRenderer(g Graph, rng *rand.Rand) *Renderer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	return &Renderer{graph: g, rng: rng}
}

// Render schedules e at origin+e.Start on the graph and routes it into
// its bus. The chain stops itself compose.TailAllowance after the event
// ends.
func (r *Renderer) Render(e compose.Event, buses *Buses, origin float64) (*Handle, error) {
	h := &Handle{graph: r.graph}
	var err error
	if e.IsPad() {
		err = r.renderPad(h, e, buses, origin)
	} else {
		err = r.renderNote(h, e, buses, origin)
	}
	if err != nil {
		h.Stop()
		return nil, err
	}
	return h, nil
}

func (r *Renderer) renderNote(h *Handle, e compose.Event, buses *Buses, origin float64) error {
	start := origin + e.Start
	end := start + e.Duration

	osc, err := r.graph.CreateOscillator(e.Waveform, e.Frequency)
	if err != nil {
		return fmt.Errorf("note oscillator: %w", err)
	}
	h.add(osc)
	env, err := r.graph.CreateGain(0)
	if err != nil {
		return fmt.Errorf("note envelope: %w", err)
	}
	h.add(env)

	attack := min(NoteAttack, e.Duration/2)
	env.Gain().SetValueAtTime(0, start)
	env.Gain().LinearRampToValueAtTime(e.Volume, start+attack)
	env.Gain().ExponentialRampToValueAtTime(NoteFloor, end)

	if err := osc.Connect(env); err != nil {
		return err
	}
	if err := env.Connect(buses.Input(e.Bus)); err != nil {
		return err
	}
	return h.startAll(start, end+compose.TailAllowance)
}

func (r *Renderer) renderPad(h *Handle, e compose.Event, buses *Buses, origin float64) error {
	start := origin + e.Start
	end := start + e.Duration

	osc, err := r.graph.CreateOscillator(e.Waveform, e.Frequency)
	if err != nil {
		return fmt.Errorf("pad oscillator: %w", err)
	}
	h.add(osc)
	lfo, err := r.graph.CreateOscillator(music.WaveSine, lfoMinRate+r.rng.Float64()*lfoRateSpan)
	if err != nil {
		return fmt.Errorf("pad lfo: %w", err)
	}
	h.add(lfo)
	depth, err := r.graph.CreateGain(e.Frequency * LFODepth)
	if err != nil {
		return fmt.Errorf("pad lfo depth: %w", err)
	}
	h.add(depth)
	filter, err := r.graph.CreateBiquadFilter(Lowpass, e.FilterCutoff, PadQ)
	if err != nil {
		return fmt.Errorf("pad filter: %w", err)
	}
	h.add(filter)
	env, err := r.graph.CreateGain(0)
	if err != nil {
		return fmt.Errorf("pad envelope: %w", err)
	}
	h.add(env)

	fade := min(e.Duration*PadFadeRatio, PadMaxFade)
	env.Gain().SetValueAtTime(0, start)
	env.Gain().LinearRampToValueAtTime(e.Volume, start+fade)
	env.Gain().SetValueAtTime(e.Volume, end-fade)
	env.Gain().LinearRampToValueAtTime(0, end)

	if err := lfo.Connect(depth); err != nil {
		return err
	}
	if err := depth.ConnectParam(osc.Frequency()); err != nil {
		return err
	}
	if err := osc.Connect(filter); err != nil {
		return err
	}
	if err := filter.Connect(env); err != nil {
		return err
	}
	if err := env.Connect(buses.Input(e.Bus)); err != nil {
		return err
	}
	return h.startAll(start, end+compose.TailAllowance)
}

// Handle owns the nodes of one rendered event.
type Handle struct {
	graph   Graph
	nodes   []Node
	sources []Source
	stopAt  float64
	once    sync.Once
}

func (h *Handle) add(n Node) {
	h.nodes = append(h.nodes, n)
	if s, ok := n.(Source); ok {
		h.sources = append(h.sources, s)
	}
}

func (h *Handle) startAll(start, stop float64) error {
	h.stopAt = stop
	for _, s := range h.sources {
		if err := s.Start(start); err != nil {
			return fmt.Errorf("start source: %w", err)
		}
		if err := s.Stop(stop); err != nil {
			return fmt.Errorf("schedule stop: %w", err)
		}
	}
	return nil
}

// StopTime returns the graph time at which the chain stops on its own.
func (h *Handle) StopTime() float64 {
	return h.stopAt
}

// Stop silences and disconnects the chain now. Only the first call has
// any effect; sources that already ended are ignored.
func (h *Handle) Stop() {
	h.once.Do(func() {
		now := h.graph.CurrentTime()
		for _, s := range h.sources {
			_ = s.Stop(now)
		}
		for _, n := range h.nodes {
			n.Disconnect()
		}
	})
}
