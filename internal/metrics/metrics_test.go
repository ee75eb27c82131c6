package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudWatch struct {
	mu     sync.Mutex
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func (f *fakeCloudWatch) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, in := range f.inputs {
		out = append(out, aws.ToString(in.MetricData[0].MetricName))
	}
	return out
}

func newTestClient(cw *fakeCloudWatch) *Client {
	return &Client{client: cw, enabled: true, environment: "test"}
}

func TestNewClient_DisabledOutsideProduction(t *testing.T) {
	c, err := NewClient(context.Background(), "development")
	require.NoError(t, err)
	assert.False(t, c.enabled)

	// Disabled clients are no-ops.
	c.RecordAPIRequest("/health", 200, time.Millisecond)
	c.RecordComposition(context.Background(), "calm", time.Second, true)
}

func TestClient_RecordAPIRequest(t *testing.T) {
	cw := &fakeCloudWatch{}
	c := newTestClient(cw)

	c.RecordAPIRequest("/api/v1/compositions", 200, 20*time.Millisecond)
	c.RecordAPIRequest("/api/v1/compositions", 503, 20*time.Millisecond)

	assert.Equal(t, []string{"APIRequests", "APILatency", "APIErrors", "APILatency"}, cw.names())
	assert.Equal(t, namespace, aws.ToString(cw.inputs[0].Namespace))
}

func TestClient_RecordComposition(t *testing.T) {
	cw := &fakeCloudWatch{}
	c := newTestClient(cw)

	c.RecordComposition(context.Background(), "calm", 40*time.Millisecond, true)

	require.Len(t, cw.inputs, 2)
	dims := cw.inputs[0].MetricData[0].Dimensions
	require.Len(t, dims, 3)
	assert.Equal(t, "Mood", aws.ToString(dims[0].Name))
	assert.Equal(t, "calm", aws.ToString(dims[0].Value))
	assert.Equal(t, "Environment", aws.ToString(dims[2].Name))
	assert.Equal(t, 40.0, aws.ToFloat64(cw.inputs[1].MetricData[0].Value))
}

func TestClient_PutErrorsAreSwallowed(t *testing.T) {
	cw := &fakeCloudWatch{err: errors.New("throttled")}
	c := newTestClient(cw)

	assert.NotPanics(t, func() { c.RecordRender(context.Background(), 15, time.Second) })
	assert.Equal(t, []string{"RenderDuration", "RenderedAudio"}, cw.names())
}

type countingRecorder struct {
	compositions, renders, recommendations int
}

func (r *countingRecorder) RecordComposition(context.Context, string, time.Duration, bool) {
	r.compositions++
}

func (r *countingRecorder) RecordRender(context.Context, float64, time.Duration) {
	r.renders++
}

func (r *countingRecorder) RecordRecommendation(context.Context, string, int, bool) {
	r.recommendations++
}

func TestMulti(t *testing.T) {
	a, b := &countingRecorder{}, &countingRecorder{}
	m := Multi(a, nil, b, NewSentryMetrics())

	m.RecordComposition(context.Background(), "happy", time.Millisecond, true)
	m.RecordRender(context.Background(), 1, time.Millisecond)
	m.RecordRecommendation(context.Background(), "q", 3, true)

	for _, r := range []*countingRecorder{a, b} {
		assert.Equal(t, 1, r.compositions)
		assert.Equal(t, 1, r.renders)
		assert.Equal(t, 1, r.recommendations)
	}
}
