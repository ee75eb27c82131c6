package audio

import (
	"fmt"
	"math/rand/v2"

	"github.com/Conceptual-Machines/art2music-api/internal/compose"
	"github.com/Conceptual-Machines/art2music-api/internal/synth"
)

// RenderComposition renders comp into a fresh graph and returns its mono
// output, including the generators' stop tail. seed fixes the reverb
// impulse and the pad LFO rates.
func RenderComposition(comp compose.Composition, sampleRate int, seed uint64) ([]float64, error) {
	c := NewContext(sampleRate)
	defer c.Close()

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	buses, err := synth.NewBuses(c, rng)
	if err != nil {
		return nil, fmt.Errorf("build buses: %w", err)
	}
	r := synth.NewRenderer(c, rng)
	for _, e := range comp.Events {
		if _, err := r.Render(e, buses, 0); err != nil {
			return nil, fmt.Errorf("render %s event at %.2fs: %w", e.Layer, e.Start, err)
		}
	}
	return c.Render(comp.TotalDuration + compose.TailAllowance), nil
}
