// Package music maps canvas colour statistics to the parameters a
// composition is scheduled from.
package music

import (
	"math/rand/v2"
	"time"

	"github.com/Conceptual-Machines/art2music-api/internal/palette"
)

const (
	// MinColoredPixels is the fewest coloured samples that produce a
	// colour-driven parameter set. Sparser canvases get DefaultParameters.
	MinColoredPixels = 10

	// TempoJitter is the width of the random tempo range added to a
	// hue's base tempo. Replaying one drawing may vary the tempo but
	// never the scale, mood or patterns.
	TempoJitter = 15

	// MaxColors bounds Parameters.Colors.
	MaxColors = 50

	darkBrightness   = 80
	brightBrightness = 180
)

// Hue is the dominant colour family of a canvas.
type Hue string

const (
	HueYellowOrange Hue = "yellow_orange"
	HuePurple       Hue = "purple"
	HueRed          Hue = "red"
	HueBlue         Hue = "blue"
	HueGreen        Hue = "green"
	HueNeutral      Hue = "neutral"
)

// Parameters is everything the scheduler needs to compose a piece.
type Parameters struct {
	Tempo            float64         `json:"tempo"`
	Scale            ScaleName       `json:"scale"`
	BaseFrequency    float64         `json:"base_frequency"`
	Mood             Mood            `json:"mood"`
	ChordProgression ProgressionName `json:"chord_progression"`
	MelodyPattern    MelodyName      `json:"melody_pattern"`
	RhythmPattern    RhythmName      `json:"rhythm_pattern"`
	Waveform         Waveform        `json:"waveform"`
	FilterCutoff     float64         `json:"filter_cutoff"`
	Hue              Hue             `json:"hue,omitempty"`
	Colors           []palette.RGB   `json:"colors"`
}

// BeatDuration is the length of one beat in seconds.
func (p Parameters) BeatDuration() float64 {
	return 60 / p.Tempo
}

// DefaultParameters is the blank-canvas parameter set.
func DefaultParameters() Parameters {
	return Parameters{
		Tempo:            80,
		Scale:            ScaleMajor,
		BaseFrequency:    261.63,
		Mood:             MoodPeaceful,
		ChordProgression: ProgressionPop,
		MelodyPattern:    MelodyGentle,
		RhythmPattern:    RhythmSteady,
		Waveform:         WaveTriangle,
		FilterCutoff:     1000,
		Colors:           []palette.RGB{},
	}
}

type hueProfile struct {
	tempo         float64
	jitter        bool
	scale         ScaleName
	baseFrequency float64
	mood          Mood
	progression   ProgressionName
	melody        MelodyName
	rhythm        RhythmName
	waveform      Waveform
	filterCutoff  float64
}

var hueProfiles = map[Hue]hueProfile{
	HueRed:          {125, true, ScaleMixolydian, 329.63, MoodEnergetic, ProgressionEnergetic, MelodyDramatic, RhythmEnergetic, WaveSawtooth, 2000},
	HueBlue:         {65, true, ScaleDorian, 220.00, MoodCalm, ProgressionCalm, MelodyGentle, RhythmCalm, WaveSine, 600},
	HueGreen:        {85, true, ScalePentatonic, 293.66, MoodNatural, ProgressionPop, MelodyWave, RhythmFlowing, WaveTriangle, 1000},
	HueYellowOrange: {115, true, ScaleMajor, 349.23, MoodHappy, ProgressionHappy, MelodyAscending, RhythmSyncopated, WaveTriangle, 1500},
	HuePurple:       {75, true, ScaleBlues, 261.63, MoodDreamy, ProgressionDreamy, MelodyWave, RhythmWaltz, WaveSine, 800},
	HueNeutral:      {90, false, ScaleMajor, 261.63, MoodNeutral, ProgressionPop, MelodyGentle, RhythmSteady, WaveTriangle, 1000},
}

// ClassifyHue picks the dominant colour family. Rules are checked in
// order and the first match wins, so a yellow average (high red and
// green) is not reported as red.
func ClassifyHue(r, g, b float64) Hue {
	switch {
	case r > 150 && g > 120 && b < 100:
		return HueYellowOrange
	case r > 100 && b > 100 && g < 100:
		return HuePurple
	case r > g && r > b:
		return HueRed
	case b > r && b > g:
		return HueBlue
	case g > r && g > b:
		return HueGreen
	default:
		return HueNeutral
	}
}

// Mapper turns colour statistics into Parameters. A Mapper is not safe
// for concurrent use.
type Mapper struct {
	rng *rand.Rand
}

// NewMapper returns a mapper drawing tempo jitter from rng. A nil rng is
// replaced by a time-seeded generator.
func NewMapper(rng *rand.Rand) *Mapper {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Mapper{rng: rng}
}

// NewSeededMapper returns a mapper whose jitter is reproducible.
func NewSeededMapper(seed uint64) *Mapper {
	return NewMapper(rand.New(rand.NewPCG(seed, seed)))
}

// Map derives the parameter set for stats. Brightness scaling is
// applied after tempo jitter.
func (m *Mapper) Map(stats palette.Statistics) Parameters {
	if stats.ColoredPixels < MinColoredPixels {
		return DefaultParameters()
	}

	hue := ClassifyHue(stats.AverageR, stats.AverageG, stats.AverageB)
	profile := hueProfiles[hue]

	tempo := profile.tempo
	if profile.jitter {
		tempo += m.rng.Float64() * TempoJitter
	}
	baseFrequency := profile.baseFrequency
	cutoff := profile.filterCutoff

	switch {
	case stats.Brightness < darkBrightness:
		tempo *= 0.85
		baseFrequency *= 0.75
		cutoff *= 0.7
	case stats.Brightness > brightBrightness:
		tempo *= 1.1
		baseFrequency *= 1.15
		cutoff *= 1.3
	}

	n := min(len(stats.Colors), MaxColors)
	colors := make([]palette.RGB, n)
	copy(colors, stats.Colors[:n])

	return Parameters{
		Tempo:            tempo,
		Scale:            profile.scale,
		BaseFrequency:    baseFrequency,
		Mood:             profile.mood,
		ChordProgression: profile.progression,
		MelodyPattern:    profile.melody,
		RhythmPattern:    profile.rhythm,
		Waveform:         profile.waveform,
		FilterCutoff:     cutoff,
		Hue:              hue,
		Colors:           colors,
	}
}
