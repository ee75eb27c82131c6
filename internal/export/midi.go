package export

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Conceptual-Machines/art2music-api/internal/compose"
)

const (
	// TicksPerQuarter is the resolution of exported MIDI files.
	TicksPerQuarter = 960

	// FullScaleVolume is the event volume mapped to velocity 127.
	FullScaleVolume = 0.15
)

// layerChannels assigns each layer its own channel and General MIDI
// program.
var layerChannels = map[compose.Layer]struct {
	channel uint8
	program uint8
}{
	compose.LayerChord:      {channel: 0, program: 89}, // warm pad
	compose.LayerBass:       {channel: 1, program: 38}, // synth bass
	compose.LayerMelody:     {channel: 2, program: 80}, // square lead
	compose.LayerArpeggio:   {channel: 3, program: 46}, // harp
	compose.LayerAtmosphere: {channel: 4, program: 94}, // halo pad
}

type noteEdge struct {
	tick uint32
	on   bool
	key  uint8
	vel  uint8
}

// WriteMIDI writes comp as a format 1 standard MIDI file: a conductor
// track carrying the tempo, then one track per non-empty layer.
func WriteMIDI(w io.Writer, comp compose.Composition) error {
	tempo := comp.Tempo
	if tempo <= 0 {
		tempo = 120
	}
	ticksPerSecond := tempo / 60 * TicksPerQuarter

	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("art2music %s", comp.Mood)))
	conductor.Add(0, smf.MetaTempo(tempo))
	conductor.Close(0)
	if err := s.Add(conductor); err != nil {
		return fmt.Errorf("add conductor track: %w", err)
	}

	for _, layer := range compose.Layers {
		events := comp.Layer(layer)
		if len(events) == 0 {
			continue
		}
		track := layerTrack(layer, events, ticksPerSecond)
		if err := s.Add(track); err != nil {
			return fmt.Errorf("add %s track: %w", layer, err)
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write smf: %w", err)
	}
	return nil
}

func layerTrack(layer compose.Layer, events []compose.Event, ticksPerSecond float64) smf.Track {
	ch := layerChannels[layer]

	edges := make([]noteEdge, 0, len(events)*2)
	for _, e := range events {
		key := Key(e.Frequency)
		start := toTicks(e.Start, ticksPerSecond)
		end := toTicks(e.End(), ticksPerSecond)
		if end <= start {
			end = start + 1
		}
		edges = append(edges,
			noteEdge{tick: start, on: true, key: key, vel: Velocity(e.Volume)},
			noteEdge{tick: end, key: key},
		)
	}
	// Releases sort before attacks on the same tick so a repeated key
	// is not cut short.
	slices.SortStableFunc(edges, func(a, b noteEdge) int {
		if c := cmp.Compare(a.tick, b.tick); c != 0 {
			return c
		}
		switch {
		case a.on == b.on:
			return 0
		case !a.on:
			return -1
		default:
			return 1
		}
	})

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(string(layer)))
	track.Add(0, midi.ProgramChange(ch.channel, ch.program))

	var last uint32
	for _, edge := range edges {
		delta := edge.tick - last
		last = edge.tick
		if edge.on {
			track.Add(delta, midi.NoteOn(ch.channel, edge.key, edge.vel))
		} else {
			track.Add(delta, midi.NoteOff(ch.channel, edge.key))
		}
	}
	track.Close(0)
	return track
}

// Key returns the MIDI key nearest to freq, clamped to 0..127.
func Key(freq float64) uint8 {
	if freq <= 0 || math.IsNaN(freq) {
		return 0
	}
	k := math.Round(69 + 12*math.Log2(freq/440))
	return uint8(math.Max(0, math.Min(127, k)))
}

// Velocity maps an event volume to a note-on velocity in 1..127.
func Velocity(volume float64) uint8 {
	v := math.Round(volume / FullScaleVolume * 127)
	return uint8(math.Max(1, math.Min(127, v)))
}

func toTicks(seconds, ticksPerSecond float64) uint32 {
	if seconds <= 0 {
		return 0
	}
	return uint32(math.Round(seconds * ticksPerSecond))
}
