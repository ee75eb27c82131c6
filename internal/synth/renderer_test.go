package synth

import (
	"math/rand/v2"
	"testing"

	"github.com/Conceptual-Machines/art2music-api/internal/compose"
	"github.com/Conceptual-Machines/art2music-api/internal/music"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuses(t *testing.T, g *fakeGraph) *Buses {
	t.Helper()
	b, err := NewBuses(g, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	return b
}

func assertParamEvents(t *testing.T, want, got []paramEvent) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].kind, got[i].kind, "event %d", i)
		assert.InDelta(t, want[i].v, got[i].v, 1e-9, "event %d value", i)
		assert.InDelta(t, want[i].t, got[i].t, 1e-9, "event %d time", i)
	}
}

func TestNewBuses_Routing(t *testing.T) {
	g := newFakeGraph()
	b := newTestBuses(t, g)

	master := unwrap(b.Master).(*fakeNode)
	delay := unwrap(b.Delay).(*fakeNode)
	delayReturn := unwrap(b.DelayReturn).(*fakeNode)
	reverb := unwrap(b.Reverb).(*fakeNode)
	reverbReturn := unwrap(b.ReverbReturn).(*fakeNode)

	assert.Equal(t, []*fakeNode{g.dest}, master.outs)
	assert.Equal(t, []*fakeNode{delayReturn}, delay.outs)
	assert.Equal(t, []*fakeNode{master}, delayReturn.outs)
	assert.Equal(t, []*fakeNode{reverbReturn}, reverb.outs)
	assert.Equal(t, []*fakeNode{master}, reverbReturn.outs)

	assert.Equal(t, MasterVolume, master.gain.value)
	assert.Equal(t, DelayTime, delay.delay.value)
	assert.Equal(t, DelayLevel, delayReturn.gain.value)
	assert.Equal(t, ReverbLevel, reverbReturn.gain.value)
	require.Len(t, reverb.impulse, ReverbChannels)
	assert.Len(t, reverb.impulse[0], int(8000*ReverbSeconds))

	assert.Equal(t, b.Master, b.Input(compose.BusDry))
	assert.Equal(t, b.Delay, b.Input(compose.BusDelay))
	assert.Equal(t, b.Reverb, b.Input(compose.BusReverb))
	assert.Equal(t, b.Master, b.Input("unknown"))
}

func TestNewBuses_CreateFailure(t *testing.T) {
	g := newFakeGraph()
	g.failOn = "convolver"
	_, err := NewBuses(g, nil)
	assert.ErrorIs(t, err, errFake)
}

func TestImpulseResponse_Decays(t *testing.T) {
	ir := ImpulseResponse(1000, 2, rand.New(rand.NewPCG(3, 3)))
	require.Len(t, ir, 2)
	require.Len(t, ir[0], 2000)
	for ch := range ir {
		for i, v := range ir[ch] {
			limit := (1 - float64(i)/2000) * (1 - float64(i)/2000)
			assert.LessOrEqual(t, v, limit+1e-12)
			assert.GreaterOrEqual(t, v, -limit-1e-12)
		}
	}
	assert.NotEqual(t, ir[0][:10], ir[1][:10])
}

func TestRender_Note(t *testing.T) {
	g := newFakeGraph()
	b := newTestBuses(t, g)
	before := g.created

	e := compose.Event{
		Layer: compose.LayerMelody, Frequency: 440, Start: 1, Duration: 0.5,
		Waveform: music.WaveTriangle, Volume: 0.1, Bus: compose.BusDelay,
	}
	h, err := NewRenderer(g, nil).Render(e, b, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, g.created-before)

	osc := g.nodes[before]
	env := g.nodes[before+1]
	assert.Equal(t, music.WaveTriangle, osc.waveform)
	assert.Equal(t, 440.0, osc.freq.value)
	assert.Equal(t, []*fakeNode{env}, osc.outs)
	assert.Equal(t, []*fakeNode{unwrap(b.Delay).(*fakeNode)}, env.outs)

	assertParamEvents(t, []paramEvent{
		{"set", 0, 11},
		{"linear", 0.1, 11 + NoteAttack},
		{"exp", NoteFloor, 11.5},
	}, env.gain.events)
	assert.Equal(t, []float64{11}, osc.starts)
	assert.InDelta(t, 11.5+compose.TailAllowance, osc.stops[0], 1e-9)
	assert.InDelta(t, 11.5+compose.TailAllowance, h.StopTime(), 1e-9)
}

func TestRender_ShortNoteAttack(t *testing.T) {
	g := newFakeGraph()
	b := newTestBuses(t, g)
	before := len(g.nodes)

	e := compose.Event{Layer: compose.LayerBass, Frequency: 100, Duration: 0.02, Waveform: music.WaveSine, Volume: 0.1}
	_, err := NewRenderer(g, nil).Render(e, b, 0)
	require.NoError(t, err)

	env := g.nodes[before+1]
	assert.InDelta(t, 0.01, env.gain.events[1].t, 1e-12)
}

func TestRender_Pad(t *testing.T) {
	g := newFakeGraph()
	b := newTestBuses(t, g)
	before := len(g.nodes)

	e := compose.Event{
		Layer: compose.LayerChord, Frequency: 200, Start: 0, Duration: 3.5,
		Waveform: music.WaveSine, Volume: 0.06, Bus: compose.BusDry, FilterCutoff: 900,
	}
	_, err := NewRenderer(g, rand.New(rand.NewPCG(1, 1))).Render(e, b, 2)
	require.NoError(t, err)

	nodes := g.nodes[before:]
	require.Len(t, nodes, 5)
	osc, lfo, depth, filter, env := nodes[0], nodes[1], nodes[2], nodes[3], nodes[4]

	assert.GreaterOrEqual(t, lfo.freq.value, 0.5)
	assert.Less(t, lfo.freq.value, 1.0)
	assert.InDelta(t, 200*LFODepth, depth.gain.value, 1e-12)
	assert.Equal(t, []*fakeNode{depth}, lfo.outs)
	assert.Equal(t, []*fakeNode{depth}, osc.freq.inputs)
	assert.Equal(t, []*fakeNode{filter}, osc.outs)
	assert.Equal(t, Lowpass, filter.filter)
	assert.Equal(t, 900.0, filter.freq.value)
	assert.Equal(t, PadQ, filter.q.value)
	assert.Equal(t, []*fakeNode{env}, filter.outs)
	assert.Equal(t, []*fakeNode{unwrap(b.Master).(*fakeNode)}, env.outs)

	fade := 3.5 * PadFadeRatio
	assertParamEvents(t, []paramEvent{
		{"set", 0, 2},
		{"linear", 0.06, 2 + fade},
		{"set", 0.06, 5.5 - fade},
		{"linear", 0, 5.5},
	}, env.gain.events)
	assert.Equal(t, []float64{2}, osc.starts)
	assert.Equal(t, []float64{2}, lfo.starts)
}

func TestRender_PadFadeIsCapped(t *testing.T) {
	g := newFakeGraph()
	b := newTestBuses(t, g)
	before := len(g.nodes)

	e := compose.Event{Layer: compose.LayerAtmosphere, Frequency: 60, Duration: 15, Waveform: music.WaveSine, Volume: 0.03, FilterCutoff: 500}
	_, err := NewRenderer(g, nil).Render(e, b, 0)
	require.NoError(t, err)

	env := g.nodes[before+4]
	assert.Equal(t, PadMaxFade, env.gain.events[1].t)
	assert.Equal(t, 15-PadMaxFade, env.gain.events[2].t)
}

func TestRender_FailureReleasesNodes(t *testing.T) {
	g := newFakeGraph()
	b := newTestBuses(t, g)
	before := len(g.nodes)
	g.failOn = "filter"

	e := compose.Event{Layer: compose.LayerChord, Frequency: 60, Duration: 2, Waveform: music.WaveSine, Volume: 0.06, FilterCutoff: 500}
	h, err := NewRenderer(g, nil).Render(e, b, 0)
	assert.ErrorIs(t, err, errFake)
	assert.Nil(t, h)
	for _, n := range g.nodes[before:] {
		assert.Equal(t, 1, n.cleared)
	}
}

func TestHandle_StopIsAtMostOnce(t *testing.T) {
	g := newFakeGraph()
	b := newTestBuses(t, g)
	before := len(g.nodes)

	e := compose.Event{Layer: compose.LayerMelody, Frequency: 440, Duration: 1, Waveform: music.WaveSine, Volume: 0.1}
	h, err := NewRenderer(g, nil).Render(e, b, 0)
	require.NoError(t, err)

	osc := g.nodes[before]
	g.now = 0.5
	h.Stop()
	h.Stop()

	require.Len(t, osc.stops, 2)
	assert.InDelta(t, 1+compose.TailAllowance, osc.stops[0], 1e-9)
	assert.Equal(t, 0.5, osc.stops[1])
	assert.Equal(t, 1, osc.cleared)
	assert.Empty(t, osc.outs)
}

func TestHandle_StopAfterNaturalEnd(t *testing.T) {
	g := newFakeGraph()
	b := newTestBuses(t, g)
	before := len(g.nodes)

	e := compose.Event{Layer: compose.LayerBass, Frequency: 80, Duration: 1, Waveform: music.WaveSine, Volume: 0.1}
	h, err := NewRenderer(g, nil).Render(e, b, 0)
	require.NoError(t, err)

	g.nodes[before].ended = true
	g.now = 5
	assert.NotPanics(t, h.Stop)
	assert.Equal(t, 1, g.nodes[before].cleared)
}
