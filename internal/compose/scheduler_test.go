package compose

import (
	"math"
	"testing"

	"github.com/Conceptual-Machines/art2music-api/internal/music"
	"github.com/Conceptual-Machines/art2music-api/internal/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

func redParams() music.Parameters {
	return music.NewSeededMapper(1).Map(palette.Statistics{
		AverageR: 220, AverageG: 60, AverageB: 40,
		Brightness: 106.7, ColoredPixels: 400,
		Colors: []palette.RGB{{R: 220, G: 60, B: 40}, {R: 200, G: 40, B: 20}, {R: 255, G: 120, B: 80}},
	})
}

func allParams() []music.Parameters {
	params := []music.Parameters{music.DefaultParameters(), redParams()}
	for _, avg := range [][3]float64{{30, 60, 200}, {40, 180, 60}, {200, 180, 50}, {150, 40, 160}, {100, 100, 100}} {
		colors := make([]palette.RGB, 50)
		for i := range colors {
			colors[i] = palette.RGB{R: uint8(i * 5), G: uint8(255 - i*5), B: uint8(i * 3)}
		}
		params = append(params, music.NewSeededMapper(3).Map(palette.Statistics{
			AverageR: avg[0], AverageG: avg[1], AverageB: avg[2],
			Brightness: (avg[0] + avg[1] + avg[2]) / 3, ColoredPixels: 100, Colors: colors,
		}))
	}
	return params
}

func TestSchedule_EventsFitComposition(t *testing.T) {
	for _, p := range allParams() {
		for _, d := range []float64{DefaultDuration, 4, 30} {
			comp := NewScheduler(WithSeed(9), WithDuration(d)).Schedule(p)
			assert.Equal(t, d, comp.TotalDuration)
			require.NotEmpty(t, comp.Events)
			for _, e := range comp.Events {
				assert.GreaterOrEqual(t, e.Start, 0.0)
				assert.Greater(t, e.Duration, 0.0)
				assert.LessOrEqual(t, e.End(), d+TailAllowance+epsilon, "%s event at %.3f", e.Layer, e.Start)
				assert.Greater(t, e.Volume, 0.0)
				assert.LessOrEqual(t, e.Volume, 1.0)
				assert.Greater(t, e.Frequency, 0.0)
				assert.True(t, e.Waveform.IsValid())
			}
		}
	}
}

func TestSchedule_LayersAreOrdered(t *testing.T) {
	for _, p := range allParams() {
		comp := NewScheduler(WithSeed(4)).Schedule(p)
		for _, layer := range Layers {
			events := comp.Layer(layer)
			for i := 1; i < len(events); i++ {
				assert.GreaterOrEqual(t, events[i].Start, events[i-1].Start, "layer %s", layer)
			}
		}
	}
}

func TestSchedule_SeedIsReproducible(t *testing.T) {
	p := redParams()
	a := NewScheduler(WithSeed(11)).Schedule(p)
	b := NewScheduler(WithSeed(11)).Schedule(p)
	assert.Equal(t, a, b)
}

func TestSchedule_Chords(t *testing.T) {
	p := music.DefaultParameters()
	comp := NewScheduler(WithSeed(1)).Schedule(p)
	chords := comp.Layer(LayerChord)

	// Four triads.
	require.Len(t, chords, 12)
	slice := DefaultDuration / 4
	for i, e := range chords {
		assert.InDelta(t, float64(i/3)*slice, e.Start, epsilon)
		assert.InDelta(t, slice*0.95, e.Duration, epsilon)
		assert.Equal(t, BusDry, e.Bus)
		assert.Equal(t, PadVolume, e.Volume)
		assert.Equal(t, p.FilterCutoff, e.FilterCutoff)
		assert.True(t, e.IsPad())
	}
	assert.InDelta(t, p.BaseFrequency*0.5, chords[0].Frequency, epsilon)
	assert.InDelta(t, music.Transpose(p.BaseFrequency*0.5, 4), chords[1].Frequency, epsilon)
}

func TestSchedule_Bass(t *testing.T) {
	p := music.DefaultParameters() // 80 bpm, steady
	comp := NewScheduler(WithSeed(1)).Schedule(p)
	bass := comp.Layer(LayerBass)

	beat := 60 / p.Tempo
	require.Len(t, bass, int(math.Ceil(DefaultDuration/beat)))

	scale := music.Scales[music.ScaleMajor]
	for i, e := range bass[:8] {
		assert.InDelta(t, float64(i)*beat, e.Start, epsilon)
		assert.InDelta(t, music.Transpose(p.BaseFrequency/2, scale[bassDegrees[i]]), e.Frequency, epsilon)
		assert.Equal(t, music.WaveSine, e.Waveform)
		if i%4 == 0 {
			assert.InDelta(t, 0.17, e.Volume, epsilon)
		} else {
			assert.InDelta(t, 0.12, e.Volume, epsilon)
		}
	}
	assert.InDelta(t, beat*0.85, bass[0].Duration, epsilon)
}

func TestSchedule_MelodyTiming(t *testing.T) {
	p := music.DefaultParameters()
	p.RhythmPattern = music.RhythmFlowing
	comp := NewScheduler(WithSeed(1)).Schedule(p)

	melody := comp.Layer(LayerMelody)
	require.NotEmpty(t, melody)
	beat := p.BeatDuration()
	assert.GreaterOrEqual(t, melody[0].Start, 2*beat-epsilon)

	for _, e := range melody {
		assert.Less(t, e.Start, DefaultDuration-beat)
		switch e.Bus {
		case BusDelay:
			// Echoes only follow notes of at least 1.5 beats.
			assert.InDelta(t, 2*beat*0.75, e.Duration, epsilon)
		case BusDry:
		default:
			t.Fatalf("unexpected melody bus %s", e.Bus)
		}
	}
}

func TestSchedule_MelodyEchoLevel(t *testing.T) {
	p := music.DefaultParameters()
	p.RhythmPattern = music.RhythmCalm // first step is 2 beats
	comp := NewScheduler(WithSeed(5)).Schedule(p)

	var dry, echo []Event
	for _, e := range comp.Layer(LayerMelody) {
		if e.Bus == BusDelay {
			echo = append(echo, e)
		} else {
			dry = append(dry, e)
		}
	}
	require.NotEmpty(t, echo)
	for _, e := range echo {
		found := false
		for _, d := range dry {
			if d.Start == e.Start && d.Frequency == e.Frequency {
				assert.InDelta(t, d.Volume*echoLevel, e.Volume, epsilon)
				found = true
			}
		}
		assert.True(t, found, "echo at %.3f has no dry note", e.Start)
	}
}

func TestSchedule_MelodyRestsVaryWithSeed(t *testing.T) {
	p := music.DefaultParameters()
	counts := map[int]bool{}
	for seed := uint64(0); seed < 20; seed++ {
		comp := NewScheduler(WithSeed(seed)).Schedule(p)
		counts[len(comp.Layer(LayerMelody))] = true
	}
	assert.Greater(t, len(counts), 1)
}

func TestSchedule_ArpeggioFromColors(t *testing.T) {
	p := redParams()
	comp := NewScheduler(WithSeed(1)).Schedule(p)
	arp := comp.Layer(LayerArpeggio)

	require.Len(t, arp, len(p.Colors)*4)
	slot := DefaultDuration / float64(len(p.Colors))
	scale := music.ScaleFor(p.Scale)

	first := p.Colors[0]
	root := int(first.R/40) % len(scale)
	third := int(first.G/40) % len(scale)
	assert.InDelta(t, music.Transpose(p.BaseFrequency*1.5, scale[root]), arp[0].Frequency, epsilon)
	assert.InDelta(t, music.Transpose(p.BaseFrequency*1.5, scale[third]), arp[1].Frequency, epsilon)
	assert.InDelta(t, arp[1].Frequency, arp[3].Frequency, epsilon)
	assert.InDelta(t, 0.06, arp[0].Volume, epsilon)
	assert.InDelta(t, 0.04, arp[1].Volume, epsilon)
	assert.InDelta(t, slot/4, arp[1].Start, epsilon)
	assert.InDelta(t, slot/4*0.8, arp[0].Duration, epsilon)
	assert.InDelta(t, slot, arp[4].Start, epsilon)
	for _, e := range arp {
		assert.Equal(t, BusReverb, e.Bus)
		assert.Equal(t, p.Waveform, e.Waveform)
	}
}

func TestSchedule_NoColorsNoArpeggio(t *testing.T) {
	comp := NewScheduler(WithSeed(1)).Schedule(music.DefaultParameters())
	assert.Empty(t, comp.Layer(LayerArpeggio))
}

func TestSchedule_Atmosphere(t *testing.T) {
	p := music.DefaultParameters()
	comp := NewScheduler(WithSeed(1)).Schedule(p)
	atmo := comp.Layer(LayerAtmosphere)

	settings := music.Atmospheres[music.MoodPeaceful]
	require.Len(t, atmo, len(settings.Multipliers))
	for i, e := range atmo {
		assert.InDelta(t, float64(i)*0.5, e.Start, epsilon)
		assert.InDelta(t, DefaultDuration, e.End(), epsilon)
		assert.InDelta(t, p.BaseFrequency*0.25*settings.Multipliers[i], e.Frequency, epsilon)
		assert.Equal(t, settings.Volume, e.Volume)
		assert.Equal(t, settings.FilterCutoff, e.FilterCutoff)
	}
}

func TestSchedule_DegenerateParameters(t *testing.T) {
	p := music.Parameters{Tempo: -10, BaseFrequency: math.NaN(), Scale: "unknown", Mood: "unknown"}
	comp := NewScheduler(WithSeed(1), WithDuration(-5)).Schedule(p)

	assert.Equal(t, DefaultDuration, comp.TotalDuration)
	assert.Equal(t, 80.0, comp.Tempo)
	require.NotEmpty(t, comp.Events)
	for _, e := range comp.Events {
		assert.False(t, math.IsNaN(e.Frequency))
		assert.True(t, e.Waveform.IsValid())
	}
}

func TestSubsample(t *testing.T) {
	colors := make([]palette.RGB, 50)
	for i := range colors {
		colors[i] = palette.RGB{R: uint8(i)}
	}

	got := subsample(colors, 20)
	require.Len(t, got, 20)
	assert.Equal(t, uint8(0), got[0].R)
	assert.Equal(t, uint8(2), got[1].R)

	assert.Len(t, subsample(colors[:7], 20), 7)
	assert.Empty(t, subsample(nil, 20))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, 7, wrap(-1, 8))
	assert.Equal(t, 0, wrap(8, 8))
	assert.Equal(t, 3, wrap(3, 7))
	assert.Equal(t, 4, wrap(-10, 7))
}

func TestComposition_Sorted(t *testing.T) {
	comp := NewScheduler(WithSeed(2)).Schedule(redParams())
	sorted := comp.Sorted()
	require.Len(t, sorted, len(comp.Events))
	for i := 1; i < len(sorted); i++ {
		assert.GreaterOrEqual(t, sorted[i].Start, sorted[i-1].Start)
	}
}
