package nodes_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	goaudiowav "github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/synth/catalog"
	"github.com/pipelined/synth/nodes"
	"github.com/pipelined/synth/signal"
	"github.com/pipelined/synth/wav"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	require.NoError(t, nodes.Register(c))
	return c
}

func call(t *testing.T, c *catalog.Catalog, name string, ctx signal.RenderContext, values map[string]interface{}) (signal.Float64, error) {
	t.Helper()
	d, ok := c.Lookup(name)
	require.True(t, ok, "function %s is not registered", name)
	bound := make(map[string]interface{})
	for _, p := range d.Params() {
		switch p.Class() {
		case catalog.ClassContext:
		case catalog.ClassSignal:
			bound[p.Name] = signal.Broadcast(p.DefaultFloat(), ctx.Samples)
		default:
			bound[p.Name] = p.Default
		}
	}
	for k, v := range values {
		bound[k] = v
	}
	return d.Call(catalog.NewArgs(ctx, bound))
}

func TestRegister(t *testing.T) {
	c := newCatalog(t)
	sink := c.Sink()
	require.NotNil(t, sink)
	assert.Equal(t, nodes.Output, sink.Name())

	var names []string
	for _, d := range c.List() {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{
		nodes.Output,
		nodes.Sin,
		nodes.Rectangle,
		nodes.Sawtooth,
		nodes.Triangle,
		nodes.Noise,
		nodes.Clamp,
		nodes.Mix,
		nodes.Multiply,
		nodes.Gain,
		nodes.Delay,
		nodes.Lowpass,
		nodes.Wavefile,
	}, names)

	// second registration collides with the first one
	assert.ErrorIs(t, nodes.Register(c), catalog.ErrDuplicateSink)
}

func TestSin(t *testing.T) {
	c := newCatalog(t)
	ctx := signal.NewRenderContext(8000, 1, 1)
	result, err := call(t, c, nodes.Sin, ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 8000, len(result))
	for i, v := range result {
		assert.InDelta(t, math.Sin(2*math.Pi*440*float64(i)/8000), v, 1e-9)
	}

	// frequency shift adds to frequency
	shift := signal.Broadcast(60, ctx.Samples)
	result, err = call(t, c, nodes.Sin, ctx, map[string]interface{}{
		"frequencyShift": shift,
		"amplitude":      0.5,
	})
	require.NoError(t, err)
	for i, v := range result {
		assert.InDelta(t, 0.5*math.Sin(2*math.Pi*500*float64(i)/8000), v, 1e-9)
	}
}

func TestWaveforms(t *testing.T) {
	c := newCatalog(t)
	// 4 samples per period
	ctx := signal.NewRenderContext(8, 1, 1)
	tests := []struct {
		name     string
		values   map[string]interface{}
		expected signal.Float64
	}{
		{
			name:     nodes.Rectangle,
			values:   map[string]interface{}{"frequency": 2.0},
			expected: signal.Float64{1, 1, 1, -1, 1, 1, 1, -1},
		},
		{
			name:     nodes.Rectangle,
			values:   map[string]interface{}{"frequency": 2.0, "duty": 0.25, "amplitude": 2.0},
			expected: signal.Float64{2, 2, -2, -2, 2, 2, -2, -2},
		},
		{
			name:     nodes.Sawtooth,
			values:   map[string]interface{}{"frequency": 2.0},
			expected: signal.Float64{-1, -0.5, 0, 0.5, -1, -0.5, 0, 0.5},
		},
		{
			name:     nodes.Triangle,
			values:   map[string]interface{}{"frequency": 2.0},
			expected: signal.Float64{-1, 0, 1, 0, -1, 0, 1, 0},
		},
	}
	for _, test := range tests {
		result, err := call(t, c, test.name, ctx, test.values)
		require.NoError(t, err)
		assert.InDeltaSlice(t, test.expected, result, 1e-9, test.name)
	}

	_, err := call(t, c, nodes.Rectangle, ctx, map[string]interface{}{"duty": 1.5})
	assert.ErrorIs(t, err, nodes.ErrInvalidParameter)
}

func TestNoise(t *testing.T) {
	c := newCatalog(t)
	ctx := signal.NewRenderContext(100, 1, 1)
	seeded := map[string]interface{}{"seed": 42, "amplitude": 0.5}
	a, err := call(t, c, nodes.Noise, ctx, seeded)
	require.NoError(t, err)
	b, err := call(t, c, nodes.Noise, ctx, seeded)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	for _, v := range a {
		assert.True(t, v >= -0.5 && v <= 0.5)
	}

	a, err = call(t, c, nodes.Noise, ctx, nil)
	require.NoError(t, err)
	b, err = call(t, c, nodes.Noise, ctx, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEffects(t *testing.T) {
	c := newCatalog(t)
	ctx := signal.NewRenderContext(4, 1, 1)
	tests := []struct {
		name     string
		values   map[string]interface{}
		expected signal.Float64
	}{
		{
			name:     nodes.Clamp,
			values:   map[string]interface{}{"channel": signal.Float64{-2, -0.5, 0.5, 2}, "level": 1.0},
			expected: signal.Float64{-1, -0.5, 0.5, 1},
		},
		{
			name: nodes.Mix,
			values: map[string]interface{}{
				"channelA": signal.Float64{1, 1, 1, 1},
				"channelB": signal.Float64{2, 2, 2, 2},
			},
			expected: signal.Float64{1.5, 1.5, 1.5, 1.5},
		},
		{
			name: nodes.Mix,
			values: map[string]interface{}{
				"channelA": signal.Float64{1, 1, 1, 1},
				"channelB": signal.Float64{2, 2, 2, 2},
				"mixA":     signal.Float64{0, 1, 0, 1},
				"mixB":     0.0,
			},
			expected: signal.Float64{0, 1, 0, 1},
		},
		{
			name: nodes.Multiply,
			values: map[string]interface{}{
				"channelA": signal.Float64{1, 2, 3, 4},
				"channelB": signal.Float64{2, 2, -1, 0},
			},
			expected: signal.Float64{2, 4, -3, 0},
		},
		{
			name:     nodes.Multiply,
			values:   map[string]interface{}{"channelA": signal.Float64{1, 2, 3, 4}},
			expected: signal.Float64{1, 2, 3, 4},
		},
		{
			name:     nodes.Gain,
			values:   map[string]interface{}{"channel": signal.Float64{1, 2, 3, 4}, "gain": 0.5},
			expected: signal.Float64{0.5, 1, 1.5, 2},
		},
		{
			name: nodes.Gain,
			values: map[string]interface{}{
				"channel": signal.Float64{1, 2, 3, 4},
				"gain":    signal.Float64{1, 0, -1},
			},
			expected: signal.Float64{1, 0, -3, 0},
		},
		{
			name: nodes.Delay,
			values: map[string]interface{}{
				"channel":  signal.Float64{1, 0, 0, 0},
				"time":     0.25,
				"feedback": 0.5,
			},
			expected: signal.Float64{1, 0.5, 0.25, 0.125},
		},
		{
			name: nodes.Delay,
			values: map[string]interface{}{
				"channel":  signal.Float64{1, 2, 3, 4},
				"time":     0.0,
				"feedback": 0.5,
			},
			expected: signal.Float64{1, 2, 3, 4},
		},
		{
			name: nodes.Delay,
			values: map[string]interface{}{
				"channel":  signal.Float64{1, 2, 3, 4},
				"time":     1e300,
				"feedback": 0.5,
			},
			expected: signal.Float64{1, 2, 3, 4},
		},
	}
	for _, test := range tests {
		result, err := call(t, c, test.name, ctx, test.values)
		require.NoError(t, err)
		assert.InDeltaSlice(t, test.expected, result, 1e-9, test.name)
	}

	for _, values := range []map[string]interface{}{
		{"feedback": 1.0},
		{"feedback": math.NaN()},
		{"time": -1.0},
		{"time": math.NaN()},
		{"time": math.Inf(1)},
	} {
		_, err := call(t, c, nodes.Delay, ctx, values)
		assert.ErrorIs(t, err, nodes.ErrInvalidParameter, "%v", values)
	}
}

func TestLowpass(t *testing.T) {
	c := newCatalog(t)
	ctx := signal.NewRenderContext(1024, 1, 1)
	low, high := make(signal.Float64, ctx.Samples), make(signal.Float64, ctx.Samples)
	in := make(signal.Float64, ctx.Samples)
	for i := range in {
		low[i] = math.Sin(2 * math.Pi * 10 * ctx.Time(i))
		high[i] = 0.5 * math.Sin(2*math.Pi*200*ctx.Time(i))
		in[i] = low[i] + high[i]
	}

	result, err := call(t, c, nodes.Lowpass, ctx, map[string]interface{}{
		"channel": in,
		"cutoff":  50.0,
	})
	require.NoError(t, err)
	assert.InDeltaSlice(t, low, result, 1e-6)

	result, err = call(t, c, nodes.Lowpass, ctx, map[string]interface{}{
		"channel": signal.Float64{},
	})
	require.NoError(t, err)
	assert.Empty(t, result)

	_, err = call(t, c, nodes.Lowpass, ctx, map[string]interface{}{"cutoff": 0.0})
	assert.ErrorIs(t, err, nodes.ErrInvalidParameter)
}

func TestWavefile(t *testing.T) {
	c := newCatalog(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "source.wav")
	source := signal.Float64{0, 0.5, 1, 0.5}
	require.NoError(t, wav.Write(path, source, signal.NewRenderContext(4, 1, 1)))

	tests := []struct {
		description string
		ctx         signal.RenderContext
		gain        float64
		expected    signal.Float64
	}{
		{
			description: "same rate",
			ctx:         signal.NewRenderContext(4, 1, 1),
			gain:        1,
			expected:    source,
		},
		{
			description: "padded and attenuated",
			ctx:         signal.NewRenderContext(4, 1.5, 1),
			gain:        0.5,
			expected:    signal.Float64{0, 0.25, 0.5, 0.25, 0, 0},
		},
		{
			description: "upsampled",
			ctx:         signal.NewRenderContext(8, 1, 1),
			gain:        1,
			expected: signal.Float64{
				0, 0.5 * 3 / 7, 0.5 * 6 / 7, 0.5 + 0.5*2/7, 0.5 + 0.5*5/7, 1 - 0.5*1/7, 1 - 0.5*4/7, 0.5,
			},
		},
	}
	for _, test := range tests {
		result, err := call(t, c, nodes.Wavefile, test.ctx, map[string]interface{}{
			"path": path,
			"gain": test.gain,
		})
		require.NoError(t, err, test.description)
		require.Equal(t, test.ctx.Samples, len(result), test.description)
		assert.InDeltaSlice(t, test.expected, result, 1e-4, test.description)
	}

	_, err := call(t, c, nodes.Wavefile, signal.NewRenderContext(4, 1, 1), nil)
	assert.ErrorIs(t, err, nodes.ErrInvalidFile)

	_, err = call(t, c, nodes.Wavefile, signal.NewRenderContext(4, 1, 1), map[string]interface{}{
		"path": filepath.Join(dir, "missing.wav"),
	})
	assert.ErrorIs(t, err, os.ErrNotExist)

	// 8-bit wav samples are stored unsigned around 128
	unsigned := filepath.Join(dir, "unsigned.wav")
	f, err := os.Create(unsigned)
	require.NoError(t, err)
	e := goaudiowav.NewEncoder(f, 4, 8, 1, 1)
	require.NoError(t, e.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 4},
		Data:           []int{128, 255, 1, 128},
		SourceBitDepth: 8,
	}))
	require.NoError(t, e.Close())
	require.NoError(t, f.Close())
	result, err := call(t, c, nodes.Wavefile, signal.NewRenderContext(4, 1, 1), map[string]interface{}{
		"path": unsigned,
	})
	require.NoError(t, err)
	assert.InDeltaSlice(t, signal.Float64{0, 1, -1, 0}, result, 1e-9)

	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not audio data"), 0o600))
	_, err = call(t, c, nodes.Wavefile, signal.NewRenderContext(4, 1, 1), map[string]interface{}{
		"path": garbage,
	})
	assert.ErrorIs(t, err, nodes.ErrInvalidFile)
}
