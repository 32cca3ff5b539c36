// Package signal provides an API to manipulate mono digital signals. It allows to:
// 	- broadcast scalars to full-length buffers
//	- fit and clamp buffers
//	- convert bit depth for int signals
package signal

import (
	"math"
	"time"
)

// Float64 is a mono float64 signal.
type Float64 []float64

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// BitDepth contains values required for int-to-float and backward conversion.
type BitDepth int

// Supported returns true if int samples of this bit depth can be converted.
func (bitDepth BitDepth) Supported() bool {
	switch bitDepth {
	case BitDepth8, BitDepth16, BitDepth24, BitDepth32:
		return true
	}
	return false
}

// devider is used when int to float conversion is done.
func (bitDepth BitDepth) devider() float64 {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8
	case BitDepth16:
		return math.MaxInt16
	case BitDepth24:
		return 1<<23 - 1
	case BitDepth32:
		return math.MaxInt32
	default:
		return 1
	}
}

// multiplier is used when float to int conversion is done.
func (bitDepth BitDepth) multiplier() float64 {
	return bitDepth.devider()
}

// InterInt is an interleaved int signal.
type InterInt struct {
	Data        []int
	NumChannels int
	BitDepth
}

// Mono converts interleaved int signal to a mono float64 signal. Channels are
// averaged.
func (ints InterInt) Mono() Float64 {
	if ints.Data == nil || ints.NumChannels <= 0 {
		return nil
	}
	frames := len(ints.Data) / ints.NumChannels
	devider := ints.BitDepth.devider() * float64(ints.NumChannels)
	floats := make([]float64, frames)
	for i := range floats {
		var sum int
		for j := 0; j < ints.NumChannels; j++ {
			sum += ints.Data[i*ints.NumChannels+j]
		}
		floats[i] = float64(sum) / devider
	}
	return floats
}

// AsInts converts a float64 signal to ints of provided bit depth. Samples are
// clamped to [-1, 1] first.
func (floats Float64) AsInts(bitDepth BitDepth) []int {
	if floats == nil {
		return nil
	}
	multiplier := bitDepth.multiplier()
	ints := make([]int, len(floats))
	for i, v := range floats {
		ints[i] = int(math.Round(clamp(v, 1) * multiplier))
	}
	return ints
}

// Broadcast returns a buffer of provided size filled with value.
func Broadcast(value float64, size int) Float64 {
	if size < 0 {
		size = 0
	}
	result := make([]float64, size)
	if value != 0 {
		for i := range result {
			result[i] = value
		}
	}
	return result
}

// Size returns number of samples.
func (floats Float64) Size() int {
	return len(floats)
}

// Fit returns a copy of buffer with exactly size samples. Longer buffers are
// truncated, shorter ones are padded with zeros.
func (floats Float64) Fit(size int) Float64 {
	if size < 0 {
		size = 0
	}
	result := make([]float64, size)
	copy(result, floats)
	return result
}

// Clamp returns a copy of buffer with all samples limited to [-level, level].
func (floats Float64) Clamp(level float64) Float64 {
	if floats == nil {
		return nil
	}
	result := make([]float64, len(floats))
	for i, v := range floats {
		result[i] = clamp(v, level)
	}
	return result
}

// Resample returns a buffer of provided size which spans the same time
// domain. Values are linearly interpolated, the first and the last samples
// are aligned.
func (floats Float64) Resample(size int) Float64 {
	if size <= 0 {
		return Float64{}
	}
	result := make([]float64, size)
	n := len(floats)
	switch {
	case n == 0:
		return result
	case n == 1 || size == 1:
		for i := range result {
			result[i] = floats[0]
		}
		return result
	}
	step := float64(n-1) / float64(size-1)
	for i := range result {
		pos := float64(i) * step
		j := int(pos)
		if j >= n-1 {
			result[i] = floats[n-1]
			continue
		}
		result[i] = floats[j] + (floats[j+1]-floats[j])*(pos-float64(j))
	}
	return result
}

// Float32 converts the buffer to float32 samples.
func (floats Float64) Float32() []float32 {
	result := make([]float32, len(floats))
	for i, v := range floats {
		result[i] = float32(v)
	}
	return result
}

func clamp(v, level float64) float64 {
	level = math.Abs(level)
	switch {
	case v > level:
		return level
	case v < -level:
		return -level
	}
	return v
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}
