package audio

import (
	"slices"

	"github.com/Conceptual-Machines/art2music-api/internal/synth"
)

// processor produces one block of output from the summed input of a
// node. A nil input or output means silence.
type processor interface {
	process(in []float64, block int64) []float64
}

// node is the shared graph plumbing of every node type.
type node struct {
	ctx     *Context
	proc    processor
	inputs  []*node
	outputs []*node
	params  []*Param

	scratch     []float64
	cachedBlock int64
	cache       []float64
	visiting    bool
}

func (c *Context) newNode(p processor) *node {
	return &node{
		ctx:         c,
		proc:        p,
		scratch:     make([]float64, BlockSize),
		cachedBlock: -1,
	}
}

func (n *node) base() *node { return n }

type graphNode interface {
	base() *node
}

// Connect routes n's output into dst.
func (n *node) Connect(dst synth.Node) error {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	gn, ok := dst.(graphNode)
	if !ok {
		return ErrUnknownNode
	}
	d := gn.base()
	if d.ctx != n.ctx {
		return ErrForeignNode
	}
	d.inputs = append(d.inputs, n)
	n.outputs = append(n.outputs, d)
	return nil
}

// ConnectParam adds n's output to dst's value.
func (n *node) ConnectParam(dst synth.Param) error {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	p, ok := dst.(*Param)
	if !ok {
		return ErrUnknownNode
	}
	if p.ctx != n.ctx {
		return ErrForeignNode
	}
	p.inputs = append(p.inputs, n)
	n.params = append(n.params, p)
	return nil
}

// Disconnect removes all of n's outgoing connections.
func (n *node) Disconnect() {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	for _, d := range n.outputs {
		d.inputs = removeNode(d.inputs, n)
	}
	for _, p := range n.params {
		p.inputs = removeNode(p.inputs, n)
	}
	n.outputs = nil
	n.params = nil
}

func removeNode(list []*node, target *node) []*node {
	return slices.DeleteFunc(list, func(x *node) bool { return x == target })
}

// pull returns n's output for block, computing it at most once.
func (n *node) pull(block int64) []float64 {
	if n.cachedBlock == block {
		return n.cache
	}
	if n.visiting {
		// Cycles without a delay read as silence.
		return nil
	}
	n.visiting = true
	defer func() { n.visiting = false }()

	in := mixInputs(n.inputs, block, n.scratch)
	n.cache = n.proc.process(in, block)
	n.cachedBlock = block
	return n.cache
}

// mixInputs sums the outputs of inputs into buf. It returns nil when
// every input is silent.
func mixInputs(inputs []*node, block int64, buf []float64) []float64 {
	var mixed []float64
	for _, src := range inputs {
		out := src.pull(block)
		if out == nil {
			continue
		}
		if mixed == nil {
			mixed = buf
			copy(mixed, out)
			continue
		}
		for i, v := range out {
			mixed[i] += v
		}
	}
	return mixed
}

// passthrough is the destination: it outputs its summed input.
type passthrough struct{}

func (passthrough) process(in []float64, _ int64) []float64 { return in }

// Gain scales its input by an automatable factor.
type Gain struct {
	*node
	gain *Param
	out  []float64
	vals []float64
}

func (g *Gain) Gain() synth.Param { return g.gain }

func (g *Gain) process(in []float64, block int64) []float64 {
	if in == nil {
		return nil
	}
	gains := g.gain.fill(block, g.vals)
	for i, v := range in {
		g.out[i] = v * gains[i]
	}
	return g.out
}
