package signal

import (
	"fmt"
	"math"
	"time"
)

// MaxSamples is the largest buffer size a render can produce.
const MaxSamples = math.MaxInt32

// RenderContext is the shared read-only bundle of render attributes for one
// render pass.
type RenderContext struct {
	SampleRate int     // samples per second
	Duration   float64 // seconds
	Samples    int     // round(Duration * SampleRate)
	Speed      float64 // playback speed factor
}

// NewRenderContext derives sample count from rate and duration.
func NewRenderContext(sampleRate int, duration, speed float64) RenderContext {
	return RenderContext{
		SampleRate: sampleRate,
		Duration:   duration,
		Samples:    int(math.Round(duration * float64(sampleRate))),
		Speed:      speed,
	}
}

// Validate checks that context can be used for rendering.
func (c RenderContext) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("sample rate must be > 0: %d", c.SampleRate)
	case c.Duration < 0 || math.IsNaN(c.Duration) || math.IsInf(c.Duration, 0):
		return fmt.Errorf("duration must be a finite value >= 0: %v", c.Duration)
	case c.Duration*float64(c.SampleRate) > MaxSamples:
		return fmt.Errorf("duration is too long: %v seconds at %d Hz exceeds %d samples", c.Duration, c.SampleRate, MaxSamples)
	case c.Speed <= 0 || math.IsNaN(c.Speed) || math.IsInf(c.Speed, 0):
		return fmt.Errorf("speed factor must be a finite value > 0: %v", c.Speed)
	}
	return nil
}

// Time returns time in seconds of i-th sample.
func (c RenderContext) Time(i int) float64 {
	return float64(i) / float64(c.SampleRate)
}

// WithSamples returns a copy of context which describes a buffer of provided
// size at the same sample rate.
func (c RenderContext) WithSamples(samples int) RenderContext {
	c.Samples = samples
	c.Duration = float64(samples) / float64(c.SampleRate)
	return c
}

// Length returns duration as time.Duration.
func (c RenderContext) Length() time.Duration {
	return DurationOf(c.SampleRate, int64(c.Samples))
}
