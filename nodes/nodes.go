// Package nodes provides built-in functions: the Output sink, oscillators,
// effects and a wave file source.
package nodes

import (
	"errors"
	"fmt"
	"math"

	"github.com/pipelined/synth/catalog"
	"github.com/pipelined/synth/signal"
)

// Function names.
const (
	Output    = "Output"
	Sin       = "sin"
	Rectangle = "rectangle"
	Sawtooth  = "sawtooth"
	Triangle  = "triangle"
	Noise     = "noise"
	Clamp     = "clamp"
	Mix       = "mix"
	Multiply  = "multiply"
	Gain      = "gain"
	Delay     = "delay"
	Lowpass   = "lowpass"
	Wavefile  = "wavefile"
)

// Output sink defaults.
const (
	DefaultSampleRate = 44100
	DefaultLength     = 2.0
)

var (
	// ErrInvalidParameter is returned when literal is out of function range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupportedBitDepth is returned when file has unsupported bit depth.
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
	// ErrInvalidFile is returned when file is neither wav nor aiff.
	ErrInvalidFile = errors.New("invalid audio file")
)

// Register adds all built-in functions to catalog. Output is registered as
// the sink function.
func Register(c *catalog.Catalog) error {
	if _, err := c.RegisterSink(catalog.Function(Output, output).
		Context("params").
		Signal(catalog.SinkInput, 0).
		Int(catalog.SinkSampleRate, DefaultSampleRate).
		Float(catalog.SinkLength, DefaultLength).
		Float(catalog.SinkSpeed, 1.0)); err != nil {
		return err
	}
	for _, s := range functions() {
		if _, err := c.Register(s); err != nil {
			return err
		}
	}
	return nil
}

func functions() []*catalog.Spec {
	return []*catalog.Spec{
		catalog.Function(Sin, sin).
			Context("params").
			Signal("frequencyShift", 0).
			FloatOrSignal("frequency", 440).
			FloatOrSignal("amplitude", 1),
		catalog.Function(Rectangle, rectangle).
			Context("params").
			FloatOrSignal("frequency", 440).
			FloatOrSignal("amplitude", 1).
			FloatOrSignal("duty", 0.5),
		catalog.Function(Sawtooth, sawtooth).
			Context("params").
			FloatOrSignal("frequency", 440).
			FloatOrSignal("amplitude", 1),
		catalog.Function(Triangle, triangle).
			Context("params").
			FloatOrSignal("frequency", 440).
			FloatOrSignal("amplitude", 1),
		catalog.Function(Noise, noise).
			Context("params").
			FloatOrSignal("amplitude", 1).
			Int("seed", 0),
		catalog.Function(Clamp, clamp).
			Signal("channel", 0).
			Float("level", 1),
		catalog.Function(Mix, mix).
			Signal("channelA", 0).
			Signal("channelB", 0).
			FloatOrSignal("mixA", 0.5).
			FloatOrSignal("mixB", 0.5),
		catalog.Function(Multiply, multiply).
			Context("params").
			Signal("channelA", 1).
			Signal("channelB", 1),
		catalog.Function(Gain, gain).
			Context("params").
			Signal("channel", 0).
			FloatOrSignal("gain", 1),
		catalog.Function(Delay, delay).
			Context("params").
			Signal("channel", 0).
			Float("time", 0.25).
			Float("feedback", 0.5),
		catalog.Function(Lowpass, lowpass).
			Context("params").
			Signal("channel", 0).
			Float("cutoff", 1000),
		catalog.Function(Wavefile, wavefile).
			Context("params").
			Text("path", "").
			Float("gain", 1),
	}
}

// output is the sink function. Engine takes the rendered buffer from its
// bound input.
func output(catalog.Args) (signal.Float64, error) {
	return nil, nil
}

func clamp(args catalog.Args) (signal.Float64, error) {
	return args.Signal("channel").Clamp(args.Float("level")), nil
}

func mix(args catalog.Args) (signal.Float64, error) {
	a, b := args.Signal("channelA"), args.Signal("channelB")
	mixA, mixB := args.Input("mixA"), args.Input("mixB")
	size := len(a)
	if len(b) > size {
		size = len(b)
	}
	a, b = a.Fit(size), b.Fit(size)
	result := make(signal.Float64, size)
	for i := range result {
		result[i] = a[i]*mixA.At(i) + b[i]*mixB.At(i)
	}
	return result, nil
}

func delay(args catalog.Args) (signal.Float64, error) {
	in := args.Signal("channel")
	t, feedback := args.Float("time"), args.Float("feedback")
	if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return nil, fmt.Errorf("%w: delay time must be a finite value >= 0: %v", ErrInvalidParameter, t)
	}
	if !(feedback > -1 && feedback < 1) {
		return nil, fmt.Errorf("%w: feedback must be in (-1, 1): %v", ErrInvalidParameter, feedback)
	}
	result := make(signal.Float64, len(in))
	copy(result, in)
	// echo starting beyond the buffer never sounds
	samples := math.Round(t * float64(args.Context().SampleRate))
	if samples == 0 || samples >= float64(len(result)) {
		return result, nil
	}
	d := int(samples)
	for i := d; i < len(result); i++ {
		result[i] += feedback * result[i-d]
	}
	return result, nil
}
