package catalog

import (
	"github.com/pipelined/synth/signal"
)

// Args is a fully bound parameter set passed to function.
//
// Values have the following representation:
//
//	Signal        - signal.Float64;
//	FloatOrSignal - signal.Float64 if connected, float64 otherwise;
//	Float         - float64;
//	Int           - int;
//	String        - string.
type Args struct {
	ctx    signal.RenderContext
	values map[string]interface{}
}

// NewArgs creates bound parameter set.
func NewArgs(ctx signal.RenderContext, values map[string]interface{}) Args {
	if values == nil {
		values = make(map[string]interface{})
	}
	return Args{
		ctx:    ctx,
		values: values,
	}
}

// Context returns render context.
func (a Args) Context() signal.RenderContext {
	return a.ctx
}

// Value returns raw bound value.
func (a Args) Value(name string) (interface{}, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Signal returns a buffer bound to parameter. Scalars are broadcast to the
// render length.
func (a Args) Signal(name string) signal.Float64 {
	switch v := a.values[name].(type) {
	case signal.Float64:
		return v
	case float64:
		return signal.Broadcast(v, a.ctx.Samples)
	}
	return signal.Broadcast(0, a.ctx.Samples)
}

// Input returns a value bound to signal-or-constant parameter.
func (a Args) Input(name string) Input {
	switch v := a.values[name].(type) {
	case signal.Float64:
		return Input{Signal: v}
	case float64:
		return Input{Scalar: v}
	}
	return Input{}
}

// Float returns float parameter value.
func (a Args) Float(name string) float64 {
	v, _ := a.values[name].(float64)
	return v
}

// Int returns int parameter value.
func (a Args) Int(name string) int {
	v, _ := a.values[name].(int)
	return v
}

// Text returns string parameter value.
func (a Args) Text(name string) string {
	v, _ := a.values[name].(string)
	return v
}
