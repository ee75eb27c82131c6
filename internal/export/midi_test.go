package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Conceptual-Machines/art2music-api/internal/compose"
	"github.com/Conceptual-Machines/art2music-api/internal/music"
)

func TestKey(t *testing.T) {
	tests := []struct {
		freq float64
		want uint8
	}{
		{440, 69},
		{261.63, 60},
		{130.81, 48},
		{0, 0},
		{-1, 0},
		{1e6, 127},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Key(tt.freq), "freq %v", tt.freq)
	}
}

func TestVelocity(t *testing.T) {
	assert.Equal(t, uint8(127), Velocity(FullScaleVolume))
	assert.Equal(t, uint8(127), Velocity(1))
	assert.Equal(t, uint8(1), Velocity(0))
	assert.Equal(t, uint8(102), Velocity(0.12))
}

func TestWriteMIDI_OneTrackPerLayer(t *testing.T) {
	comp := compose.Composition{
		Tempo:         120,
		Mood:          music.MoodCalm,
		TotalDuration: 2,
		Events: []compose.Event{
			{Layer: compose.LayerBass, Frequency: 130.81, Start: 0, Duration: 0.5, Volume: 0.12},
			{Layer: compose.LayerMelody, Frequency: 440, Start: 0.5, Duration: 0.25, Volume: 0.1},
			{Layer: compose.LayerMelody, Frequency: 440, Start: 0.75, Duration: 0.25, Volume: 0.1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMIDI(&buf, comp))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, s.Tracks, 3) // conductor + bass + melody
	assert.Equal(t, smf.MetricTicks(TicksPerQuarter), s.TimeFormat)

	var bpm float64
	found := false
	for _, ev := range s.Tracks[0] {
		if ev.Message.GetMetaTempo(&bpm) {
			found = true
		}
	}
	require.True(t, found)
	assert.InDelta(t, 120, bpm, 0.01)

	// Melody notes start one beat and a half beat later.
	var starts []uint32
	var abs uint32
	for _, ev := range s.Tracks[2] {
		abs += ev.Delta
		var ch, key, vel uint8
		if midi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
			assert.Equal(t, uint8(69), key)
			assert.Equal(t, uint8(2), ch)
			starts = append(starts, abs)
		}
	}
	assert.Equal(t, []uint32{960, 1440}, starts)
}

func TestWriteMIDI_Scheduled(t *testing.T) {
	sched := compose.NewScheduler(compose.WithSeed(7))
	comp := sched.Schedule(music.DefaultParameters())

	var buf bytes.Buffer
	require.NoError(t, WriteMIDI(&buf, comp))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	layers := 0
	for _, l := range compose.Layers {
		if len(comp.Layer(l)) > 0 {
			layers++
		}
	}
	assert.Len(t, s.Tracks, layers+1)
}
