package nodes

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/pipelined/synth/catalog"
	"github.com/pipelined/synth/signal"
)

// multiply returns sample-wise product of two channels.
func multiply(args catalog.Args) (signal.Float64, error) {
	size := args.Context().Samples
	a := args.Signal("channelA").Fit(size)
	b := args.Signal("channelB").Fit(size)
	result := make(signal.Float64, size)
	vecmath.MulBlock(result, a, b)
	return result, nil
}

// gain scales channel by a constant or by a signal.
func gain(args catalog.Args) (signal.Float64, error) {
	in := args.Signal("channel")
	g := args.Input("gain")
	var factor signal.Float64
	if g.IsSignal() {
		factor = g.Signal.Fit(len(in))
	} else {
		factor = signal.Broadcast(g.Scalar, len(in))
	}
	result := make(signal.Float64, len(in))
	copy(result, in)
	vecmath.MulBlockInPlace(result, factor)
	return result, nil
}

// lowpass removes all spectrum components above cutoff frequency.
func lowpass(args catalog.Args) (signal.Float64, error) {
	in := args.Signal("channel")
	cutoff := args.Float("cutoff")
	if cutoff <= 0 {
		return nil, fmt.Errorf("%w: cutoff must be > 0: %v", ErrInvalidParameter, cutoff)
	}
	if len(in) == 0 {
		return signal.Float64{}, nil
	}
	size := nextPowerOf2(len(in))
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("lowpass: failed to create FFT plan: %w", err)
	}

	padded := make([]complex128, size)
	for i, v := range in {
		padded[i] = complex(v, 0)
	}
	spectrum := make([]complex128, size)
	if err := plan.Forward(spectrum, padded); err != nil {
		return nil, err
	}

	// bin k and its mirror size-k hold frequency k*sampleRate/size
	binWidth := float64(args.Context().SampleRate) / float64(size)
	for k := 1; k <= size/2; k++ {
		if float64(k)*binWidth <= cutoff {
			continue
		}
		spectrum[k] = 0
		spectrum[(size-k)%size] = 0
	}

	filtered := make([]complex128, size)
	if err := plan.Inverse(filtered, spectrum); err != nil {
		return nil, err
	}
	result := make(signal.Float64, len(in))
	for i := range result {
		result[i] = real(filtered[i])
	}
	return result, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
