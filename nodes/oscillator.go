package nodes

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pipelined/synth/catalog"
	"github.com/pipelined/synth/signal"
)

// sin returns a·sin(2π(f+shift)t).
func sin(args catalog.Args) (signal.Float64, error) {
	ctx := args.Context()
	shift := args.Signal("frequencyShift")
	frequency, amplitude := args.Input("frequency"), args.Input("amplitude")
	result := make(signal.Float64, ctx.Samples)
	for i := range result {
		var s float64
		if i < len(shift) {
			s = shift[i]
		}
		result[i] = amplitude.At(i) * math.Sin(2*math.Pi*(frequency.At(i)+s)*ctx.Time(i))
	}
	return result, nil
}

// rectangle is high while the phase is within duty cycle.
func rectangle(args catalog.Args) (signal.Float64, error) {
	duty := args.Input("duty")
	if !duty.IsSignal() && (duty.Scalar < 0 || duty.Scalar > 1) {
		return nil, fmt.Errorf("%w: duty must be in [0, 1]: %v", ErrInvalidParameter, duty.Scalar)
	}
	return oscillate(args, func(i int, phase float64) float64 {
		if phase <= duty.At(i) {
			return 1
		}
		return -1
	}), nil
}

func sawtooth(args catalog.Args) (signal.Float64, error) {
	return oscillate(args, func(_ int, phase float64) float64 {
		return 2*phase - 1
	}), nil
}

func triangle(args catalog.Args) (signal.Float64, error) {
	return oscillate(args, func(_ int, phase float64) float64 {
		return 1 - 4*math.Abs(phase-0.5)
	}), nil
}

// oscillate evaluates waveform of phase in [0, 1) and scales it by
// amplitude.
func oscillate(args catalog.Args, wave func(i int, phase float64) float64) signal.Float64 {
	ctx := args.Context()
	frequency, amplitude := args.Input("frequency"), args.Input("amplitude")
	result := make(signal.Float64, ctx.Samples)
	for i := range result {
		t := ctx.Time(i) * frequency.At(i)
		result[i] = amplitude.At(i) * wave(i, t-math.Floor(t))
	}
	return result
}

// noiseCalls distinguishes seeds of noise calls made at the same time.
var noiseCalls int64

// noise returns uniform white noise. Zero seed produces a fresh sequence on
// every call.
func noise(args catalog.Args) (signal.Float64, error) {
	ctx := args.Context()
	amplitude := args.Input("amplitude")
	seed := int64(args.Int("seed"))
	if seed == 0 {
		seed = time.Now().UnixNano() + atomic.AddInt64(&noiseCalls, 1)
	}
	r := rand.New(rand.NewSource(seed))
	result := make(signal.Float64, ctx.Samples)
	for i := range result {
		result[i] = amplitude.At(i) * (2*r.Float64() - 1)
	}
	return result, nil
}
