// Package playback owns the lifecycle of a rendered composition: it
// starts a new one, stops it on demand and stops it automatically when
// the composition ends.
package playback

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Conceptual-Machines/art2music-api/internal/compose"
	"github.com/Conceptual-Machines/art2music-api/internal/logger"
	"github.com/Conceptual-Machines/art2music-api/internal/music"
	"github.com/Conceptual-Machines/art2music-api/internal/synth"
	"github.com/google/uuid"
)

// DefaultLeadTime is how far ahead of the graph clock a composition is
// scheduled, so the first notes are not cut by rendering latency.
const DefaultLeadTime = 0.05

// Timer is the cancellable handle of a deferred call.
type Timer interface {
	Stop() bool
}

// AfterFunc runs f once d has elapsed.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Playback describes a composition that has been started.
type Playback struct {
	ID          string              `json:"id"`
	Mood        music.Mood          `json:"mood"`
	Description string              `json:"description"`
	Tempo       float64             `json:"tempo"`
	Scale       music.ScaleName     `json:"scale"`
	Origin      float64             `json:"origin"`
	Composition compose.Composition `json:"composition"`
}

// Controller plays one composition at a time on a graph. It is safe for
// concurrent use; the auto-stop timer runs on its own goroutine.
type Controller struct {
	mu        sync.Mutex
	graph     synth.Graph
	scheduler *compose.Scheduler
	renderer  *synth.Renderer
	rng       *rand.Rand
	afterFunc AfterFunc
	leadTime  float64

	generation string
	handles    []*synth.Handle
	buses      *synth.Buses
	timer      Timer
	closed     bool
}

// Option configures a Controller.
type Option func(*controllerOptions)

type controllerOptions struct {
	schedulerOpts []compose.Option
	seed          *uint64
	afterFunc     AfterFunc
	leadTime      float64
}

// WithSchedulerOptions configures the scheduler compositions come from.
func WithSchedulerOptions(opts ...compose.Option) Option {
	return func(o *controllerOptions) {
		o.schedulerOpts = append(o.schedulerOpts, opts...)
	}
}

// WithSeed fixes every random choice made during playback.
func WithSeed(seed uint64) Option {
	return func(o *controllerOptions) {
		o.seed = &seed
	}
}

// WithAfterFunc replaces time.AfterFunc for the auto-stop timer.
func WithAfterFunc(f AfterFunc) Option {
	return func(o *controllerOptions) {
		o.afterFunc = f
	}
}

// WithLeadTime sets how far ahead of the graph clock playback starts.
func WithLeadTime(seconds float64) Option {
	return func(o *controllerOptions) {
		if seconds >= 0 {
			o.leadTime = seconds
		}
	}
}

// NewController returns a Controller rendering onto graph.
func NewController(graph synth.Graph, opts ...Option) *Controller {
	o := controllerOptions{afterFunc: realAfterFunc, leadTime: DefaultLeadTime}
	for _, opt := range opts {
		opt(&o)
	}

	var rng *rand.Rand
	schedOpts := o.schedulerOpts
	if o.seed != nil {
		rng = rand.New(rand.NewPCG(*o.seed, ^*o.seed))
		schedOpts = append([]compose.Option{compose.WithSeed(*o.seed)}, schedOpts...)
	} else {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, ^seed))
	}

	return &Controller{
		graph:     graph,
		scheduler: compose.NewScheduler(schedOpts...),
		renderer:  synth.NewRenderer(graph, rng),
		rng:       rng,
		afterFunc: o.afterFunc,
		leadTime:  o.leadTime,
	}
}

// Play stops whatever is playing, schedules params and starts it. It
// returns once every event is scheduled on the graph.
func (c *Controller) Play(params music.Parameters) (*Playback, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	c.stopLocked()

	buses, err := synth.NewBuses(c.graph, c.rng)
	if err != nil {
		return nil, fmt.Errorf("build buses: %w", err)
	}
	c.buses = buses

	comp := c.scheduler.Schedule(params)
	origin := c.graph.CurrentTime() + c.leadTime
	for _, e := range comp.Events {
		h, err := c.renderer.Render(e, buses, origin)
		if err != nil {
			c.stopLocked()
			return nil, fmt.Errorf("render %s event: %w", e.Layer, err)
		}
		c.handles = append(c.handles, h)
	}

	gen := uuid.NewString()
	c.generation = gen
	wait := time.Duration((c.leadTime + comp.TotalDuration) * float64(time.Second))
	c.timer = c.afterFunc(wait, func() { c.expire(gen) })

	logger.Info("Playback started", logger.Fields{
		"playback_id": gen,
		"mood":        string(comp.Mood),
		"tempo":       comp.Tempo,
		"events":      len(comp.Events),
		"duration_s":  comp.TotalDuration,
	})

	return &Playback{
		ID:          gen,
		Mood:        comp.Mood,
		Description: music.DescribeMood(comp.Mood),
		Tempo:       comp.Tempo,
		Scale:       comp.Scale,
		Origin:      origin,
		Composition: comp,
	}, nil
}

// Stop silences the current composition. It is safe to call at any time
// and any number of times.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// expire is the auto-stop callback. It only acts if gen is still the
// current playback.
func (c *Controller) expire(gen string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return
	}
	logger.Debug("Playback finished", logger.Fields{"playback_id": gen})
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	for _, h := range c.handles {
		h.Stop()
	}
	if c.buses != nil {
		c.buses.Disconnect()
		c.buses = nil
	}
	c.handles = nil
	c.generation = ""
}

// Active returns how many rendered events are held.
func (c *Controller) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

// Current returns the id of the playing composition, or "" when idle.
func (c *Controller) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Close stops playback and rejects further Play calls.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.closed = true
}
