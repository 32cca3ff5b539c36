package catalog_test

import (
	"math"
	"testing"

	"github.com/pipelined/synth/catalog"
	"github.com/pipelined/synth/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(catalog.Args) (signal.Float64, error) {
	return nil, nil
}

func sinkSpec(name string) *catalog.Spec {
	return catalog.Function(name, noop).
		Context("params").
		Signal(catalog.SinkInput, 0).
		Int(catalog.SinkSampleRate, 44100).
		Float(catalog.SinkLength, 2.0).
		Float(catalog.SinkSpeed, 1.0)
}

func TestRegister(t *testing.T) {
	tests := []struct {
		description string
		spec        *catalog.Spec
		err         error
	}{
		{
			description: "all classes",
			spec: catalog.Function("sin", noop).
				Context("params").
				Signal("frequencyShift", 0).
				FloatOrSignal("frequency", 440).
				Float("amplitude", 1).
				Int("harmonics", 1).
				Text("name", "x"),
		},
		{
			description: "typed without default",
			spec:        catalog.Function("f", noop).Param(catalog.Param{Name: "a", Type: catalog.Float}),
			err:         catalog.ErrInvalidSignature,
		},
		{
			description: "default without type",
			spec:        catalog.Function("f", noop).Param(catalog.Param{Name: "a", Default: 1.0}),
			err:         catalog.ErrInvalidSignature,
		},
		{
			description: "untyped without default",
			spec:        catalog.Function("f", noop).Param(catalog.Param{Name: "a"}),
			err:         catalog.ErrInvalidSignature,
		},
		{
			description: "variadic",
			spec:        catalog.Function("f", noop).Param(catalog.Param{Name: "a", Type: catalog.Signal, Default: 0.0, Form: catalog.Variadic}),
			err:         catalog.ErrInvalidSignature,
		},
		{
			description: "keyword only",
			spec:        catalog.Function("f", noop).Param(catalog.Param{Name: "a", Type: catalog.Float, Default: 0.0, Form: catalog.KeywordOnly}),
			err:         catalog.ErrInvalidSignature,
		},
		{
			description: "context with default",
			spec:        catalog.Function("f", noop).Param(catalog.Param{Name: "a", Type: catalog.Context, Default: 1}),
			err:         catalog.ErrInvalidSignature,
		},
		{
			description: "default of wrong kind",
			spec:        catalog.Function("f", noop).Param(catalog.Param{Name: "a", Type: catalog.Int, Default: "ten"}),
			err:         catalog.ErrInvalidSignature,
		},
		{
			description: "duplicate parameter",
			spec:        catalog.Function("f", noop).Float("a", 1).Float("a", 2),
			err:         catalog.ErrInvalidSignature,
		},
		{
			description: "nil function",
			spec:        catalog.Function("f", nil),
			err:         catalog.ErrInvalidSignature,
		},
		{
			description: "no name",
			spec:        catalog.Function("", noop),
			err:         catalog.ErrInvalidSignature,
		},
		{
			description: "nil spec",
			err:         catalog.ErrInvalidSignature,
		},
	}

	for _, test := range tests {
		c := catalog.New()
		d, err := c.Register(test.spec)
		if test.err != nil {
			assert.ErrorIs(t, err, test.err, test.description)
			assert.Nil(t, d, test.description)
			assert.Empty(t, c.List(), test.description)
			continue
		}
		require.NoError(t, err, test.description)
		assert.Equal(t, test.spec.Name, d.Name())
		assert.Same(t, c, d.Catalog())
	}
}

func TestClassification(t *testing.T) {
	c := catalog.New()
	d, err := c.Register(catalog.Function("sin", noop).
		Context("params").
		Signal("frequencyShift", 0).
		FloatOrSignal("frequency", 440).
		Float("amplitude", 1).
		Int("harmonics", 3).
		Text("name", "x"))
	require.NoError(t, err)

	expected := map[string]catalog.Class{
		"params":         catalog.ClassContext,
		"frequencyShift": catalog.ClassSignal,
		"frequency":      catalog.ClassHybrid,
		"amplitude":      catalog.ClassConstant,
		"harmonics":      catalog.ClassConstant,
		"name":           catalog.ClassConstant,
	}
	for name, class := range expected {
		p, ok := d.Param(name)
		require.True(t, ok, name)
		assert.Equal(t, class, p.Class(), name)
	}

	inputs := d.Inputs()
	require.Len(t, inputs, 2)
	assert.Equal(t, "frequencyShift", inputs[0].Name)
	assert.Equal(t, "frequency", inputs[1].Name)

	p, _ := d.Param("harmonics")
	assert.Equal(t, 3, p.Default)
	p, _ = d.Param("frequency")
	assert.Equal(t, 440.0, p.DefaultFloat())
	assert.True(t, p.Editable())
	assert.True(t, p.SignalCapable())
	p, _ = d.Param("frequencyShift")
	assert.False(t, p.Editable())
	assert.Equal(t, "frequency shift", p.Label())
}

func TestRegisterSink(t *testing.T) {
	c := catalog.New()
	out, err := c.RegisterSink(sinkSpec("Output"))
	require.NoError(t, err)
	assert.True(t, out.IsSink())
	assert.Same(t, out, c.Sink())

	_, err = c.RegisterSink(sinkSpec("Output2"))
	assert.ErrorIs(t, err, catalog.ErrDuplicateSink)
	assert.Same(t, out, c.Sink())
	assert.Len(t, c.List(), 1)
	_, ok := c.Lookup("Output2")
	assert.False(t, ok)

	// sink must declare render parameters
	c = catalog.New()
	_, err = c.RegisterSink(catalog.Function("Output", noop).Signal(catalog.SinkInput, 0))
	assert.ErrorIs(t, err, catalog.ErrInvalidSignature)
	assert.Nil(t, c.Sink())
}

func TestList(t *testing.T) {
	c := catalog.New()
	names := []string{"sin", "rectangle", "clamp", "mix"}
	for _, name := range names {
		_, err := c.Register(catalog.Function(name, noop))
		require.NoError(t, err)
	}
	_, err := c.Register(catalog.Function("sin", noop))
	assert.ErrorIs(t, err, catalog.ErrDuplicateFunction)

	list := c.List()
	require.Len(t, list, len(names))
	for i, d := range list {
		assert.Equal(t, names[i], d.Name())
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		t        catalog.Type
		value    interface{}
		expected interface{}
		err      bool
	}{
		{t: catalog.Float, value: 1, expected: 1.0},
		{t: catalog.Float, value: float32(0.5), expected: 0.5},
		{t: catalog.FloatOrSignal, value: " 2.5 ", expected: 2.5},
		{t: catalog.Float, value: "abc", err: true},
		{t: catalog.Float, value: "NaN", err: true},
		{t: catalog.Signal, value: "-Inf", err: true},
		{t: catalog.FloatOrSignal, value: math.Inf(1), err: true},
		{t: catalog.Int, value: 2.0, expected: 2},
		{t: catalog.Int, value: 2.5, err: true},
		{t: catalog.Int, value: 1e300, err: true},
		{t: catalog.Int, value: "44100", expected: 44100},
		{t: catalog.String, value: "x", expected: "x"},
		{t: catalog.String, value: 1, err: true},
		{t: catalog.Context, value: 1, err: true},
	}
	for _, test := range tests {
		v, err := catalog.Convert(test.t, test.value)
		if test.err {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, test.expected, v)
	}
}

func TestArgs(t *testing.T) {
	ctx := signal.NewRenderContext(4, 1, 1)
	args := catalog.NewArgs(ctx, map[string]interface{}{
		"sig":    signal.Float64{1, 2, 3, 4},
		"scalar": 0.5,
		"n":      3,
		"s":      "path",
	})
	assert.Equal(t, ctx, args.Context())
	assert.Equal(t, signal.Float64{1, 2, 3, 4}, args.Signal("sig"))
	assert.Equal(t, signal.Float64{0.5, 0.5, 0.5, 0.5}, args.Signal("scalar"))
	assert.Equal(t, signal.Float64{0, 0, 0, 0}, args.Signal("missing"))

	in := args.Input("sig")
	assert.True(t, in.IsSignal())
	assert.Equal(t, 3.0, in.At(2))
	assert.Equal(t, 0.0, in.At(10))
	in = args.Input("scalar")
	assert.False(t, in.IsSignal())
	assert.Equal(t, 0.5, in.At(100))

	assert.Equal(t, 0.5, args.Float("scalar"))
	assert.Equal(t, 3, args.Int("n"))
	assert.Equal(t, "path", args.Text("s"))
}
