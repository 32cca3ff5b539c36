package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/pipelined/synth/signal"
)

// Type is a declared parameter type.
type Type int

// Declared parameter types. Type determines parameter class.
const (
	// TypeNone is a parameter without declared type. It cannot be registered.
	TypeNone Type = iota
	// Signal is a sample sequence. Its default is a scalar broadcast to render length.
	Signal
	// FloatOrSignal is a scalar which can be overridden by a sample sequence.
	FloatOrSignal
	// Float is a constant scalar.
	Float
	// Int is a constant integer.
	Int
	// String is a constant string.
	String
	// Context is the render context injected by engine.
	Context
)

func (t Type) String() string {
	switch t {
	case Signal:
		return "signal"
	case FloatOrSignal:
		return "float|signal"
	case Float:
		return "float"
	case Int:
		return "int"
	case String:
		return "string"
	case Context:
		return "context"
	}
	return "none"
}

// Class is a parameter classification.
type Class int

// Parameter classes.
const (
	// ClassConstant parameters are fixed literals.
	ClassConstant Class = iota + 1
	// ClassSignal parameters must be sample sequences.
	ClassSignal
	// ClassHybrid parameters are literals by default and might be fed by signal.
	ClassHybrid
	// ClassContext parameters are supplied with render context.
	ClassContext
)

func (c Class) String() string {
	switch c {
	case ClassConstant:
		return "constant"
	case ClassSignal:
		return "signal"
	case ClassHybrid:
		return "signal-or-constant"
	case ClassContext:
		return "context"
	}
	return "unknown"
}

// Form is the way argument is passed to function.
type Form int

// Parameter forms. Only positional parameters are supported.
const (
	Positional Form = iota
	Variadic
	KeywordOnly
)

// Param describes a single function parameter.
type Param struct {
	Name    string
	Type    Type
	Default interface{}
	Form    Form
}

// Class returns parameter classification.
func (p Param) Class() Class {
	switch p.Type {
	case Signal:
		return ClassSignal
	case FloatOrSignal:
		return ClassHybrid
	case Context:
		return ClassContext
	}
	return ClassConstant
}

// Editable returns true if parameter has a literal value.
func (p Param) Editable() bool {
	c := p.Class()
	return c == ClassConstant || c == ClassHybrid
}

// SignalCapable returns true if parameter can be bound to upstream signal.
func (p Param) SignalCapable() bool {
	c := p.Class()
	return c == ClassSignal || c == ClassHybrid
}

// DefaultFloat returns default value as float64. It's used to broadcast
// unconnected signal parameters.
func (p Param) DefaultFloat() float64 {
	v, _ := p.Default.(float64)
	return v
}

// Label returns human-readable parameter name: frequencyShift becomes
// "frequency shift".
func (p Param) Label() string {
	var b strings.Builder
	for _, r := range p.Name {
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Convert converts value to the representation of provided type:
// float64 for Signal, FloatOrSignal and Float, int for Int and string for
// String. Strings are parsed for numeric types.
func Convert(t Type, v interface{}) (interface{}, error) {
	switch t {
	case Signal, FloatOrSignal, Float:
		return toFloat(v)
	case Int:
		return toInt(v)
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("cannot convert %T to %v", v, t)
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as float", n)
		}
		return finite(f)
	}
	return 0, fmt.Errorf("cannot convert %T to float", v)
}

func finite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value must be finite: %v", f)
	}
	return f, nil
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) >= 1<<63 {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as int", n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("cannot convert %T to int", v)
}

// Input is a value bound to signal-or-constant parameter. It's either a
// signal or a scalar, function decides how to broadcast it.
type Input struct {
	Signal signal.Float64
	Scalar float64
}

// IsSignal returns true if input is bound to upstream signal.
func (in Input) IsSignal() bool {
	return in.Signal != nil
}

// At returns value of input at i-th sample. Scalar inputs return the same
// value for every position, signals shorter than i return zero.
func (in Input) At(i int) float64 {
	if in.Signal == nil {
		return in.Scalar
	}
	if i < len(in.Signal) {
		return in.Signal[i]
	}
	return 0
}
