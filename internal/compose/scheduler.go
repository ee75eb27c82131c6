package compose

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/Conceptual-Machines/art2music-api/internal/music"
	"github.com/Conceptual-Machines/art2music-api/internal/palette"
)

const (
	// DefaultDuration is the length of a composition in seconds.
	DefaultDuration = 15.0

	// TailAllowance is how long a generator keeps running past its
	// event's end before it is hard-stopped.
	TailAllowance = 0.1

	// RestProbability is the chance that a melody step is silent.
	RestProbability = 0.15

	// PadVolume is the peak level of chord pads.
	PadVolume = 0.06

	// MaxArpeggioColors bounds how many sampled colours become arpeggios.
	MaxArpeggioColors = 20

	phraseLength      = 8
	melodyLeadInBeats = 2
	melodyStartDegree = 2
	echoMinBeats      = 1.5
	echoLevel         = 0.4
	atmosphereStagger = 0.5
)

var (
	bassDegrees  = []int{0, 0, 4, 0, 2, 4, 0, 2}
	phraseDrifts = []int{2, -1, 3, -2}
)

// Scheduler turns Parameters into a Composition. A Scheduler is not safe
// for concurrent use.
type Scheduler struct {
	duration float64
	rng      *rand.Rand
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDuration sets the composition length. Non-positive values are ignored.
func WithDuration(seconds float64) Option {
	return func(s *Scheduler) {
		if seconds > 0 && !math.IsInf(seconds, 0) {
			s.duration = seconds
		}
	}
}

// WithSeed makes melody rests reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Scheduler) {
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithRand sets the generator used for melody rests.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// NewScheduler returns a Scheduler for DefaultDuration seconds with a
// time-seeded generator unless configured otherwise.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{duration: DefaultDuration}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return s
}

// Duration returns the configured composition length.
func (s *Scheduler) Duration() float64 {
	return s.duration
}

// Schedule composes all five layers from p. Every event ends no later
// than the composition's total duration.
func (s *Scheduler) Schedule(p music.Parameters) Composition {
	p = sanitize(p)
	comp := Composition{
		TotalDuration: s.duration,
		Tempo:         p.Tempo,
		Mood:          p.Mood,
		Scale:         p.Scale,
	}

	b := &builder{total: s.duration}
	s.chords(b, p)
	s.bass(b, p)
	s.melody(b, p)
	s.arpeggio(b, p)
	s.atmosphere(b, p)

	comp.Events = b.events
	return comp
}

// sanitize replaces values that would make scheduling degenerate.
func sanitize(p music.Parameters) music.Parameters {
	def := music.DefaultParameters()
	if !(p.Tempo > 0) || math.IsInf(p.Tempo, 0) {
		p.Tempo = def.Tempo
	}
	if !(p.BaseFrequency > 0) || math.IsInf(p.BaseFrequency, 0) {
		p.BaseFrequency = def.BaseFrequency
	}
	if !(p.FilterCutoff > 0) || math.IsInf(p.FilterCutoff, 0) {
		p.FilterCutoff = def.FilterCutoff
	}
	return p
}

type builder struct {
	total  float64
	events []Event
}

// add clips e to the composition and drops it if nothing remains.
func (b *builder) add(e Event) {
	if e.Start >= b.total || !(e.Duration > 0) {
		return
	}
	if e.End() > b.total {
		e.Duration = b.total - e.Start
	}
	b.events = append(b.events, e)
}

func (s *Scheduler) chords(b *builder, p music.Parameters) {
	progression := music.ProgressionFor(p.ChordProgression)
	slice := s.duration / float64(len(progression))

	for i, chord := range progression {
		start := float64(i) * slice
		for _, semitone := range chord {
			b.add(Event{
				Layer:        LayerChord,
				Frequency:    music.Transpose(p.BaseFrequency*0.5, semitone),
				Start:        start,
				Duration:     slice * 0.95,
				Waveform:     music.WaveSine,
				Volume:       PadVolume,
				Bus:          BusDry,
				FilterCutoff: p.FilterCutoff,
			})
		}
	}
}

func (s *Scheduler) bass(b *builder, p music.Parameters) {
	scale := music.ScaleFor(p.Scale)
	rhythm := music.RhythmFor(p.RhythmPattern)
	beat := p.BeatDuration()

	for i, t := 0, 0.0; t < s.duration; i++ {
		step := beat * rhythm[i%len(rhythm)]
		degree := bassDegrees[i%len(bassDegrees)] % len(scale)

		volume := 0.12
		if i%4 == 0 {
			volume += 0.05
		}
		b.add(Event{
			Layer:     LayerBass,
			Frequency: music.Transpose(p.BaseFrequency/2, scale[degree]),
			Start:     t,
			Duration:  step * 0.85,
			Waveform:  music.WaveSine,
			Volume:    volume,
			Bus:       BusDry,
		})
		t += step
	}
}

func (s *Scheduler) melody(b *builder, p music.Parameters) {
	scale := music.ScaleFor(p.Scale)
	contour := music.MelodyFor(p.MelodyPattern)
	rhythm := music.RhythmFor(p.RhythmPattern)
	beat := p.BeatDuration()
	waveform := p.Waveform
	if !waveform.IsValid() {
		waveform = music.WaveTriangle
	}

	baseDegree := melodyStartDegree
	phrase := 0
	t := beat * melodyLeadInBeats

	for i := 0; t < s.duration-beat; {
		step := beat * rhythm[i%len(rhythm)]
		degree := wrap(baseDegree+contour[i%len(contour)], len(scale))
		freq := music.Transpose(p.BaseFrequency, scale[degree])

		volume := 0.10
		switch i % phraseLength {
		case 0:
			volume = 0.14
		case phraseLength - 1:
			volume = 0.06
		}

		if s.rng.Float64() > RestProbability {
			note := Event{
				Layer:     LayerMelody,
				Frequency: freq,
				Start:     t,
				Duration:  step * 0.75,
				Waveform:  waveform,
				Volume:    volume,
				Bus:       BusDry,
			}
			b.add(note)
			if step >= beat*echoMinBeats {
				note.Volume = volume * echoLevel
				note.Bus = BusDelay
				b.add(note)
			}
		}

		t += step
		i++
		if i%phraseLength == 0 {
			baseDegree = wrap(baseDegree+phraseDrifts[phrase%len(phraseDrifts)], len(scale))
			phrase++
		}
	}
}

func (s *Scheduler) arpeggio(b *builder, p music.Parameters) {
	colors := subsample(p.Colors, MaxArpeggioColors)
	if len(colors) == 0 {
		return
	}
	scale := music.ScaleFor(p.Scale)
	waveform := p.Waveform
	if !waveform.IsValid() {
		waveform = music.WaveSine
	}

	slot := s.duration / float64(len(colors))
	noteTime := slot / 4

	for i, c := range colors {
		root := int(c.R/40) % len(scale)
		third := int(c.G/40) % len(scale)
		fifth := int(c.B/40) % len(scale)

		for j, degree := range []int{root, third, fifth, third} {
			volume := 0.04
			if j == 0 {
				volume += 0.02
			}
			b.add(Event{
				Layer:     LayerArpeggio,
				Frequency: music.Transpose(p.BaseFrequency*1.5, scale[degree]),
				Start:     float64(i)*slot + float64(j)*noteTime,
				Duration:  noteTime * 0.8,
				Waveform:  waveform,
				Volume:    volume,
				Bus:       BusReverb,
			})
		}
	}
}

func (s *Scheduler) atmosphere(b *builder, p music.Parameters) {
	settings := music.AtmosphereFor(p.Mood)
	for i, mult := range settings.Multipliers {
		offset := float64(i) * atmosphereStagger
		b.add(Event{
			Layer:        LayerAtmosphere,
			Frequency:    p.BaseFrequency * 0.25 * mult,
			Start:        offset,
			Duration:     s.duration - offset,
			Waveform:     music.WaveSine,
			Volume:       settings.Volume,
			Bus:          BusDry,
			FilterCutoff: settings.FilterCutoff,
		})
	}
}

// subsample picks up to n colours at an even stride, keeping order.
func subsample(colors []palette.RGB, n int) []palette.RGB {
	step := max(1, len(colors)/n)
	out := make([]palette.RGB, 0, min(len(colors), n))
	for i := 0; i < len(colors) && len(out) < n; i += step {
		out = append(out, colors[i])
	}
	return out
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
