// Package compose schedules the five voices of a composition as
// time-stamped events.
package compose

import (
	"slices"

	"github.com/Conceptual-Machines/art2music-api/internal/music"
)

// Layer is one independently scheduled voice.
type Layer string

const (
	LayerChord      Layer = "chord"
	LayerBass       Layer = "bass"
	LayerMelody     Layer = "melody"
	LayerArpeggio   Layer = "arpeggio"
	LayerAtmosphere Layer = "atmosphere"
)

// Layers lists every layer in scheduling order.
var Layers = []Layer{LayerChord, LayerBass, LayerMelody, LayerArpeggio, LayerAtmosphere}

// Bus is the shared routing destination of an event.
type Bus string

const (
	BusDry    Bus = "dry"
	BusDelay  Bus = "delay"
	BusReverb Bus = "reverb"
)

// Event is one scheduled note or pad. Start is relative to the start of
// the composition.
type Event struct {
	Layer     Layer          `json:"layer"`
	Frequency float64        `json:"frequency"`
	Start     float64        `json:"start"`
	Duration  float64        `json:"duration"`
	Waveform  music.Waveform `json:"waveform"`
	Volume    float64        `json:"volume"`
	Bus       Bus            `json:"bus"`

	// FilterCutoff is the lowpass cutoff of pad events. Zero for notes.
	FilterCutoff float64 `json:"filter_cutoff,omitempty"`
}

// End returns the time the event's envelope reaches silence.
func (e Event) End() float64 {
	return e.Start + e.Duration
}

// IsPad reports whether the event is a sustained pad (chord or
// atmosphere) rather than a short note.
func (e Event) IsPad() bool {
	return e.Layer == LayerChord || e.Layer == LayerAtmosphere
}

// Composition is the full schedule for one set of parameters.
type Composition struct {
	Events        []Event         `json:"events"`
	TotalDuration float64         `json:"total_duration"`
	Tempo         float64         `json:"tempo"`
	Mood          music.Mood      `json:"mood"`
	Scale         music.ScaleName `json:"scale"`
}

// Layer returns the events of one layer in start order.
func (c Composition) Layer(l Layer) []Event {
	var out []Event
	for _, e := range c.Events {
		if e.Layer == l {
			out = append(out, e)
		}
	}
	return out
}

// Sorted returns all events ordered by start time. Events starting
// together keep their layer order.
func (c Composition) Sorted() []Event {
	out := slices.Clone(c.Events)
	slices.SortStableFunc(out, func(a, b Event) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	return out
}
