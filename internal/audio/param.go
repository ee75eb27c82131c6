package audio

import (
	"math"
	"sort"
)

type rampKind int

const (
	setValue rampKind = iota
	linearRamp
	exponentialRamp
)

type automation struct {
	kind  rampKind
	value float64
	time  float64
}

// Param is an a-rate parameter: automation is evaluated per sample and
// connected nodes add their output to it.
type Param struct {
	ctx    *Context
	value  float64
	events []automation
	inputs []*node

	modBuf []float64
}

func (c *Context) newParam(v float64) *Param {
	return &Param{ctx: c, value: v, modBuf: make([]float64, BlockSize)}
}

// Value returns the automated value at the context's current time.
func (p *Param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.valueAt(p.ctx.timeLocked())
}

// SetValue replaces the intrinsic value and drops scheduled automation.
func (p *Param) SetValue(v float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.value = v
	p.events = nil
}

func (p *Param) SetValueAtTime(v, t float64) {
	p.schedule(automation{setValue, v, t})
}

func (p *Param) LinearRampToValueAtTime(v, t float64) {
	p.schedule(automation{linearRamp, v, t})
}

// ExponentialRampToValueAtTime ramps geometrically. A ramp between values
// of different sign, or to or from zero, holds the previous value.
func (p *Param) ExponentialRampToValueAtTime(v, t float64) {
	p.schedule(automation{exponentialRamp, v, t})
}

func (p *Param) schedule(a automation) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()

	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > a.time })
	p.events = append(p.events, automation{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = a
}

func (p *Param) valueAt(t float64) float64 {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t })
	prevValue, prevTime := p.value, 0.0
	if i > 0 {
		prevValue, prevTime = p.events[i-1].value, p.events[i-1].time
	}
	if i == len(p.events) {
		return prevValue
	}

	next := p.events[i]
	span := next.time - prevTime
	if span <= 0 {
		return prevValue
	}
	frac := (t - prevTime) / span

	switch next.kind {
	case linearRamp:
		return prevValue + (next.value-prevValue)*frac
	case exponentialRamp:
		if prevValue*next.value <= 0 {
			return prevValue
		}
		return prevValue * math.Pow(next.value/prevValue, frac)
	default:
		return prevValue
	}
}

// fill writes the per-sample values for block into buf and returns it.
func (p *Param) fill(block int64, buf []float64) []float64 {
	sr := float64(p.ctx.sampleRate)
	start := block * BlockSize

	if len(p.events) == 0 {
		for i := range buf {
			buf[i] = p.value
		}
	} else {
		for i := range buf {
			buf[i] = p.valueAt(float64(start+int64(i)) / sr)
		}
	}

	if mod := mixInputs(p.inputs, block, p.modBuf); mod != nil {
		for i, v := range mod {
			buf[i] += v
		}
	}
	return buf
}

// blockValue returns the value at the start of block, for parameters
// evaluated once per block.
func (p *Param) blockValue(block int64) float64 {
	v := p.valueAt(float64(block*BlockSize) / float64(p.ctx.sampleRate))
	if mod := mixInputs(p.inputs, block, p.modBuf); mod != nil {
		v += mod[0]
	}
	return v
}
