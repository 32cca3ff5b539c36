// Package mock provides mock functions and sinks which allow to execute
// integration tests of graphs.
package mock

import (
	"sync"

	"github.com/pipelined/synth/catalog"
	"github.com/pipelined/synth/signal"
)

// Function names registered by Catalog.
const (
	Output   = "Output"
	Constant = "const"
	Sum      = "sum"
	Scale    = "scale"
	Fail     = "fail"
	Count    = "count"
	Pass     = "pass"
)

// PassDefault is the default of unconnected Pass input.
const PassDefault = 0.25

// Functions holds mocks registered in catalog.
type Functions struct {
	*catalog.Catalog
	Output   *catalog.Descriptor
	Constant *catalog.Descriptor
	Sum      *catalog.Descriptor
	Scale    *catalog.Descriptor
	Fail     *catalog.Descriptor
	Count    *catalog.Descriptor
	Pass     *catalog.Descriptor

	// Counter counts calls of Count function.
	Counter *Counter
	// ErrorOnCall is returned by Fail function.
	ErrorOnCall error
}

// Catalog returns a catalog with mock functions:
//
//	Output(input, sampleRate, length, playbackSpeedFactor) - sink;
//	const(value)                                           - broadcast value;
//	sum(a, b)                                              - a + b;
//	scale(channel, factor)                                 - channel * factor;
//	fail(input)                                            - returns ErrorOnCall;
//	count(input)                                           - passes input and counts calls;
//	pass(input)                                            - passes input, PassDefault if unconnected.
func Catalog(errorOnCall error) *Functions {
	f := &Functions{
		Catalog:     catalog.New(),
		Counter:     &Counter{},
		ErrorOnCall: errorOnCall,
	}
	f.Output = must(f.RegisterSink(catalog.Function(Output, func(catalog.Args) (signal.Float64, error) {
		return nil, nil
	}).
		Context("params").
		Signal(catalog.SinkInput, 0).
		Int(catalog.SinkSampleRate, 8).
		Float(catalog.SinkLength, 1).
		Float(catalog.SinkSpeed, 1)))
	f.Constant = must(f.Register(catalog.Function(Constant, func(a catalog.Args) (signal.Float64, error) {
		return signal.Broadcast(a.Float("value"), a.Context().Samples), nil
	}).
		Context("params").
		Float("value", 1)))
	f.Sum = must(f.Register(catalog.Function(Sum, func(a catalog.Args) (signal.Float64, error) {
		x, y := a.Signal("a"), a.Signal("b")
		result := make(signal.Float64, len(x))
		for i := range x {
			result[i] = x[i] + y[i]
		}
		return result, nil
	}).
		Signal("a", 0).
		Signal("b", 0)))
	f.Scale = must(f.Register(catalog.Function(Scale, func(a catalog.Args) (signal.Float64, error) {
		channel, factor := a.Signal("channel"), a.Input("factor")
		result := make(signal.Float64, len(channel))
		for i := range channel {
			result[i] = channel[i] * factor.At(i)
		}
		return result, nil
	}).
		Signal("channel", 0).
		FloatOrSignal("factor", 1)))
	f.Fail = must(f.Register(catalog.Function(Fail, func(catalog.Args) (signal.Float64, error) {
		return nil, f.ErrorOnCall
	}).
		Signal("input", 0)))
	f.Count = must(f.Register(catalog.Function(Count, func(a catalog.Args) (signal.Float64, error) {
		f.Counter.advance()
		return a.Signal("input"), nil
	}).
		Signal("input", 0)))
	f.Pass = must(f.Register(catalog.Function(Pass, func(a catalog.Args) (signal.Float64, error) {
		return a.Signal("input"), nil
	}).
		Signal("input", PassDefault)))
	return f
}

func must(d *catalog.Descriptor, err error) *catalog.Descriptor {
	if err != nil {
		panic(err)
	}
	return d
}

// Counter counts function calls. It's safe for concurrent use.
type Counter struct {
	m     sync.Mutex
	calls int
}

func (c *Counter) advance() {
	c.m.Lock()
	defer c.m.Unlock()
	c.calls++
}

// Calls returns number of calls.
func (c *Counter) Calls() int {
	c.m.Lock()
	defer c.m.Unlock()
	return c.calls
}

// AudioSink mocks up an audio device. Played buffers are appended.
type AudioSink struct {
	m           sync.Mutex
	buffer      signal.Float64
	sampleRate  int
	plays       int
	ErrorOnCall error
}

// Play appends buffer.
func (s *AudioSink) Play(b signal.Float64, sampleRate int) error {
	if s.ErrorOnCall != nil {
		return s.ErrorOnCall
	}
	s.m.Lock()
	defer s.m.Unlock()
	s.buffer = append(s.buffer, b...)
	s.sampleRate = sampleRate
	s.plays++
	return nil
}

// Buffer returns played samples and the last sample rate.
func (s *AudioSink) Buffer() (signal.Float64, int) {
	s.m.Lock()
	defer s.m.Unlock()
	return s.buffer, s.sampleRate
}

// Plays returns number of Play calls.
func (s *AudioSink) Plays() int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.plays
}
