// Package catalog is a registry of processing functions which can be placed
// into a graph as nodes.
//
// Every function declares a static parameter table. Parameters are classified
// at registration time by their declared type:
//
//	Float, Int, String - constant-only literals;
//	Signal             - signal-only inputs;
//	FloatOrSignal      - literals which might be overridden by a signal;
//	Context            - render context injected by the engine.
//
// Tables are built with Function:
//
//	c := catalog.New()
//	sin, err := c.Register(catalog.Function("sin", sinFn).
//		Context("params").
//		Signal("frequencyShift", 0.0).
//		FloatOrSignal("frequency", 440.0))
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pipelined/synth/signal"
)

var (
	// ErrInvalidSignature is returned when function declares unsupported parameters.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrDuplicateSink is returned when second sink function is registered.
	ErrDuplicateSink = errors.New("sink function already registered")
	// ErrDuplicateFunction is returned when function name is already taken.
	ErrDuplicateFunction = errors.New("function already registered")
)

// Parameters required by sink function.
const (
	SinkInput      = "input"
	SinkSampleRate = "sampleRate"
	SinkLength     = "length"
	SinkSpeed      = "playbackSpeedFactor"
)

var sinkParams = []struct {
	name string
	Type
}{
	{name: SinkInput, Type: Signal},
	{name: SinkSampleRate, Type: Int},
	{name: SinkLength, Type: Float},
	{name: SinkSpeed, Type: Float},
}

// Func is a processing function. Sink functions return nil buffer.
type Func func(Args) (signal.Float64, error)

// Spec is a function declaration. It's validated and turned into Descriptor
// during registration.
type Spec struct {
	Name   string
	Fn     Func
	Params []Param
}

// Function starts a new function declaration.
func Function(name string, fn Func) *Spec {
	return &Spec{
		Name: name,
		Fn:   fn,
	}
}

// Param appends raw parameter declaration.
func (s *Spec) Param(p Param) *Spec {
	s.Params = append(s.Params, p)
	return s
}

// Context declares render context parameter.
func (s *Spec) Context(name string) *Spec {
	return s.Param(Param{Name: name, Type: Context})
}

// Signal declares signal-only parameter with default used for broadcast.
func (s *Spec) Signal(name string, def float64) *Spec {
	return s.Param(Param{Name: name, Type: Signal, Default: def})
}

// FloatOrSignal declares signal-or-constant parameter.
func (s *Spec) FloatOrSignal(name string, def float64) *Spec {
	return s.Param(Param{Name: name, Type: FloatOrSignal, Default: def})
}

// Float declares constant float parameter.
func (s *Spec) Float(name string, def float64) *Spec {
	return s.Param(Param{Name: name, Type: Float, Default: def})
}

// Int declares constant int parameter.
func (s *Spec) Int(name string, def int) *Spec {
	return s.Param(Param{Name: name, Type: Int, Default: def})
}

// Text declares constant string parameter.
func (s *Spec) Text(name string, def string) *Spec {
	return s.Param(Param{Name: name, Type: String, Default: def})
}

// Descriptor is a registered function.
type Descriptor struct {
	name    string
	fn      Func
	params  []Param
	byName  map[string]int
	sink    bool
	catalog *Catalog
}

// Name returns function name.
func (d *Descriptor) Name() string {
	return d.name
}

// IsSink returns true for the sink function.
func (d *Descriptor) IsSink() bool {
	return d.sink
}

// Params returns parameters in declaration order.
func (d *Descriptor) Params() []Param {
	result := make([]Param, len(d.params))
	copy(result, d.params)
	return result
}

// Param returns parameter by name.
func (d *Descriptor) Param(name string) (Param, bool) {
	if i, ok := d.byName[name]; ok {
		return d.params[i], true
	}
	return Param{}, false
}

// Inputs returns signal-capable parameters in declaration order.
func (d *Descriptor) Inputs() []Param {
	var result []Param
	for _, p := range d.params {
		if p.SignalCapable() {
			result = append(result, p)
		}
	}
	return result
}

// Call invokes function with bound arguments.
func (d *Descriptor) Call(args Args) (signal.Float64, error) {
	return d.fn(args)
}

// Catalog returns catalog where descriptor is registered.
func (d *Descriptor) Catalog() *Catalog {
	return d.catalog
}

func (d *Descriptor) String() string {
	return d.name
}

// Catalog is a registry of functions available for placement.
type Catalog struct {
	m           sync.RWMutex
	descriptors []*Descriptor
	byName      map[string]*Descriptor
	sink        *Descriptor
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		byName: make(map[string]*Descriptor),
	}
}

// Register validates function declaration and adds it to catalog.
func (c *Catalog) Register(s *Spec) (*Descriptor, error) {
	return c.register(s, false)
}

// RegisterSink registers the sink function. Only one sink function is allowed.
func (c *Catalog) RegisterSink(s *Spec) (*Descriptor, error) {
	return c.register(s, true)
}

func (c *Catalog) register(s *Spec, sink bool) (*Descriptor, error) {
	d, err := newDescriptor(s, sink)
	if err != nil {
		return nil, err
	}

	c.m.Lock()
	defer c.m.Unlock()
	if sink && c.sink != nil {
		return nil, fmt.Errorf("%w: %s, registered: %s", ErrDuplicateSink, d.name, c.sink.name)
	}
	if _, ok := c.byName[d.name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateFunction, d.name)
	}
	d.catalog = c
	c.descriptors = append(c.descriptors, d)
	c.byName[d.name] = d
	if sink {
		c.sink = d
	}
	return d, nil
}

// List returns registered functions in registration order.
func (c *Catalog) List() []*Descriptor {
	c.m.RLock()
	defer c.m.RUnlock()
	result := make([]*Descriptor, len(c.descriptors))
	copy(result, c.descriptors)
	return result
}

// Lookup returns function by name.
func (c *Catalog) Lookup(name string) (*Descriptor, bool) {
	c.m.RLock()
	defer c.m.RUnlock()
	d, ok := c.byName[name]
	return d, ok
}

// Sink returns the sink function or nil if it's not registered.
func (c *Catalog) Sink() *Descriptor {
	c.m.RLock()
	defer c.m.RUnlock()
	return c.sink
}

// newDescriptor validates declaration. It's the only validation pass, nothing
// is checked during evaluation.
func newDescriptor(s *Spec, sink bool) (*Descriptor, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil function", ErrInvalidSignature)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("%w: function without name", ErrInvalidSignature)
	}
	if s.Fn == nil {
		return nil, fmt.Errorf("%w: %s: nil function value", ErrInvalidSignature, s.Name)
	}
	d := &Descriptor{
		name:   s.Name,
		fn:     s.Fn,
		params: make([]Param, 0, len(s.Params)),
		byName: make(map[string]int, len(s.Params)),
		sink:   sink,
	}
	for _, p := range s.Params {
		p, err := validateParam(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s(%s): %v", ErrInvalidSignature, s.Name, p.Name, err)
		}
		if _, ok := d.byName[p.Name]; ok {
			return nil, fmt.Errorf("%w: %s(%s): duplicate parameter", ErrInvalidSignature, s.Name, p.Name)
		}
		d.byName[p.Name] = len(d.params)
		d.params = append(d.params, p)
	}
	if sink {
		for _, required := range sinkParams {
			p, ok := d.Param(required.name)
			if !ok || p.Type != required.Type {
				return nil, fmt.Errorf("%w: sink %s must declare %s %v", ErrInvalidSignature, s.Name, required.name, required.Type)
			}
		}
	}
	return d, nil
}

// validateParam checks parameter declaration and normalizes default value.
func validateParam(p Param) (Param, error) {
	if p.Name == "" {
		return p, errors.New("parameter without name")
	}
	switch p.Form {
	case Positional:
	case Variadic:
		return p, errors.New("variadic parameters are not supported")
	case KeywordOnly:
		return p, errors.New("keyword-only parameters are not supported")
	default:
		return p, fmt.Errorf("unknown parameter form %d", p.Form)
	}
	switch p.Type {
	case TypeNone:
		if p.Default != nil {
			return p, errors.New("parameter with default value must declare type")
		}
		return p, errors.New("parameter must declare type and default value")
	case Context:
		if p.Default != nil {
			return p, errors.New("context parameter cannot have default value")
		}
		return p, nil
	case Signal, FloatOrSignal, Float, Int, String:
		if p.Default == nil {
			return p, fmt.Errorf("%v parameter must have default value", p.Type)
		}
		v, err := Convert(p.Type, p.Default)
		if err != nil {
			return p, fmt.Errorf("default value: %v", err)
		}
		p.Default = v
		return p, nil
	}
	return p, fmt.Errorf("unknown parameter type %d", p.Type)
}
