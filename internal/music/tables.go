package music

import "math"

// ScaleName identifies a scale in Scales.
type ScaleName string

const (
	ScaleMajor      ScaleName = "major"
	ScaleMinor      ScaleName = "minor"
	ScalePentatonic ScaleName = "pentatonic"
	ScaleBlues      ScaleName = "blues"
	ScaleDorian     ScaleName = "dorian"
	ScaleMixolydian ScaleName = "mixolydian"
)

// ProgressionName identifies a chord progression in ChordProgressions.
type ProgressionName string

const (
	ProgressionPop       ProgressionName = "pop"
	ProgressionSad       ProgressionName = "sad"
	ProgressionHappy     ProgressionName = "happy"
	ProgressionDreamy    ProgressionName = "dreamy"
	ProgressionEnergetic ProgressionName = "energetic"
	ProgressionCalm      ProgressionName = "calm"
)

// MelodyName identifies a melody contour in MelodyPatterns.
type MelodyName string

const (
	MelodyAscending  MelodyName = "ascending"
	MelodyDescending MelodyName = "descending"
	MelodyWave       MelodyName = "wave"
	MelodyJump       MelodyName = "jump"
	MelodyGentle     MelodyName = "gentle"
	MelodyDramatic   MelodyName = "dramatic"
)

// RhythmName identifies a rhythm in RhythmPatterns.
type RhythmName string

const (
	RhythmSteady     RhythmName = "steady"
	RhythmSyncopated RhythmName = "syncopated"
	RhythmWaltz      RhythmName = "waltz"
	RhythmFlowing    RhythmName = "flowing"
	RhythmEnergetic  RhythmName = "energetic"
	RhythmCalm       RhythmName = "calm"
)

// Mood tags the character of a composition.
type Mood string

const (
	MoodEnergetic Mood = "energetic"
	MoodCalm      Mood = "calm"
	MoodNatural   Mood = "natural"
	MoodHappy     Mood = "happy"
	MoodDreamy    Mood = "dreamy"
	MoodNeutral   Mood = "neutral"
	MoodPeaceful  Mood = "peaceful"
)

// Waveform is the oscillator shape used for a voice.
type Waveform string

const (
	WaveSine     Waveform = "sine"
	WaveSquare   Waveform = "square"
	WaveSawtooth Waveform = "sawtooth"
	WaveTriangle Waveform = "triangle"
)

// Scales maps each scale to its semitone offsets from the root.
var Scales = map[ScaleName][]int{
	ScaleMajor:      {0, 2, 4, 5, 7, 9, 11, 12},
	ScaleMinor:      {0, 2, 3, 5, 7, 8, 10, 12},
	ScalePentatonic: {0, 2, 4, 7, 9, 12, 14, 16},
	ScaleBlues:      {0, 3, 5, 6, 7, 10, 12},
	ScaleDorian:     {0, 2, 3, 5, 7, 9, 10, 12},
	ScaleMixolydian: {0, 2, 4, 5, 7, 9, 10, 12},
}

// ChordProgressions holds four chords each, as semitone offsets.
var ChordProgressions = map[ProgressionName][][]int{
	ProgressionPop:       {{0, 4, 7}, {5, 9, 12}, {7, 11, 14}, {0, 4, 7}},
	ProgressionSad:       {{0, 3, 7}, {5, 8, 12}, {3, 7, 10}, {0, 3, 7}},
	ProgressionHappy:     {{0, 4, 7}, {4, 7, 11}, {5, 9, 12}, {7, 11, 14}},
	ProgressionDreamy:    {{0, 4, 7, 11}, {2, 5, 9, 12}, {4, 7, 11, 14}, {0, 4, 7, 11}},
	ProgressionEnergetic: {{0, 4, 7}, {7, 11, 14}, {5, 9, 12}, {0, 4, 7}},
	ProgressionCalm:      {{0, 4, 7}, {9, 12, 16}, {5, 9, 12}, {0, 4, 7}},
}

// MelodyPatterns holds scale-degree offsets; negative values step below
// the phrase's base degree.
var MelodyPatterns = map[MelodyName][]int{
	MelodyAscending:  {0, 1, 2, 3, 4, 5, 4, 3},
	MelodyDescending: {5, 4, 3, 2, 1, 0, 1, 2},
	MelodyWave:       {0, 2, 4, 2, 0, -2, 0, 2},
	MelodyJump:       {0, 4, 2, 5, 3, 6, 4, 7},
	MelodyGentle:     {0, 1, 0, 2, 1, 0, 1, 2},
	MelodyDramatic:   {0, 4, 7, 4, 0, -3, 0, 4},
}

// RhythmPatterns holds note lengths in beats.
var RhythmPatterns = map[RhythmName][]float64{
	RhythmSteady:     {1, 1, 1, 1, 1, 1, 1, 1},
	RhythmSyncopated: {1.5, 0.5, 1, 1, 1.5, 0.5, 1, 1},
	RhythmWaltz:      {1.5, 0.75, 0.75, 1.5, 0.75, 0.75},
	RhythmFlowing:    {2, 1, 1, 2, 1, 1, 1, 1},
	RhythmEnergetic:  {0.5, 0.5, 1, 0.5, 0.5, 1, 1, 1},
	RhythmCalm:       {2, 2, 1, 1, 2, 2},
}

// Atmosphere describes the background pad layer for a mood.
type Atmosphere struct {
	Multipliers  []float64
	Volume       float64
	FilterCutoff float64
}

// Atmospheres maps moods to their background pad settings.
var Atmospheres = map[Mood]Atmosphere{
	MoodEnergetic: {Multipliers: []float64{1, 1.5, 2}, Volume: 0.06, FilterCutoff: 1500},
	MoodCalm:      {Multipliers: []float64{0.5, 1, 1.25}, Volume: 0.04, FilterCutoff: 400},
	MoodNatural:   {Multipliers: []float64{1, 1.33, 1.5}, Volume: 0.05, FilterCutoff: 800},
	MoodHappy:     {Multipliers: []float64{1, 1.25, 1.5}, Volume: 0.05, FilterCutoff: 1200},
	MoodDreamy:    {Multipliers: []float64{1, 1.2, 1.5, 2}, Volume: 0.04, FilterCutoff: 600},
	MoodNeutral:   {Multipliers: []float64{1, 1.5}, Volume: 0.04, FilterCutoff: 800},
	MoodPeaceful:  {Multipliers: []float64{1, 1.5, 2}, Volume: 0.03, FilterCutoff: 500},
}

// MoodDescriptions are the display strings shown next to a result.
var MoodDescriptions = map[Mood]string{
	MoodEnergetic: "🔥 에너지 넘치는",
	MoodCalm:      "🌊 차분한",
	MoodNatural:   "🌿 자연스러운",
	MoodHappy:     "☀️ 밝고 경쾌한",
	MoodDreamy:    "🌙 몽환적인",
	MoodNeutral:   "🎵 부드러운",
	MoodPeaceful:  "✨ 평화로운",
}

// ScaleFor returns the offsets for name, falling back to major.
func ScaleFor(name ScaleName) []int {
	if s, ok := Scales[name]; ok {
		return s
	}
	return Scales[ScaleMajor]
}

// ProgressionFor returns the chords for name, falling back to pop.
func ProgressionFor(name ProgressionName) [][]int {
	if p, ok := ChordProgressions[name]; ok {
		return p
	}
	return ChordProgressions[ProgressionPop]
}

// MelodyFor returns the contour for name, falling back to gentle.
func MelodyFor(name MelodyName) []int {
	if m, ok := MelodyPatterns[name]; ok {
		return m
	}
	return MelodyPatterns[MelodyGentle]
}

// RhythmFor returns the note lengths for name, falling back to steady.
func RhythmFor(name RhythmName) []float64 {
	if r, ok := RhythmPatterns[name]; ok {
		return r
	}
	return RhythmPatterns[RhythmSteady]
}

// AtmosphereFor returns the pad settings for mood, falling back to neutral.
func AtmosphereFor(mood Mood) Atmosphere {
	if a, ok := Atmospheres[mood]; ok {
		return a
	}
	return Atmospheres[MoodNeutral]
}

// DescribeMood returns the display string for mood.
func DescribeMood(mood Mood) string {
	if d, ok := MoodDescriptions[mood]; ok {
		return d
	}
	return MoodDescriptions[MoodNeutral]
}

// IsValid reports whether w is a known oscillator shape.
func (w Waveform) IsValid() bool {
	switch w {
	case WaveSine, WaveSquare, WaveSawtooth, WaveTriangle:
		return true
	}
	return false
}

// Transpose returns the frequency semitones above base in equal temperament.
func Transpose(base float64, semitones int) float64 {
	return base * math.Pow(2, float64(semitones)/12)
}
