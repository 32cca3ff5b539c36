// Package playback turns rendered buffers into playable ones: it applies
// playback speed, parses note names and hands buffers to audio sinks.
package playback

import (
	"errors"
	"fmt"
	"math"

	"github.com/pipelined/synth/signal"
)

var (
	// ErrInvalidSpeed is returned when effective speed is not positive.
	ErrInvalidSpeed = errors.New("invalid playback speed")
	// ErrInvalidNote is returned when note name cannot be parsed.
	ErrInvalidNote = errors.New("invalid note")
)

// ToPlaybackBuffer resamples buffer along the time axis. Result has
// round(samples/(ctx.Speed*extraSpeed)) samples spanning the same duration,
// values are interpolated linearly. Speed above 1 shortens the buffer and
// raises the pitch.
func ToPlaybackBuffer(b signal.Float64, ctx signal.RenderContext, extraSpeed float64) (signal.Float64, error) {
	speed := ctx.Speed * extraSpeed
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	size := math.Round(float64(ctx.Samples) / speed)
	if size > signal.MaxSamples {
		return nil, fmt.Errorf("%w: %v is too slow for %d samples", ErrInvalidSpeed, speed, ctx.Samples)
	}
	return b.Fit(ctx.Samples).Resample(int(size)), nil
}

// semitones of note letters within octave. With them a4 has index 49.
var semitones = map[byte]int{
	'c': 0,
	'd': 2,
	'e': 4,
	'f': 5,
	'g': 7,
	'a': 9,
	'b': 11,
}

// NoteToSpeedFactor returns frequency ratio of note relative to a4. Note is
// a letter, optional accidental # or b, and an octave from 0 to 8: c4, f#2,
// Bb5.
func NoteToSpeedFactor(note string) (float64, error) {
	if len(note) < 2 || len(note) > 3 {
		return 0, fmt.Errorf("%w: %q must have 2 or 3 characters", ErrInvalidNote, note)
	}
	semitone, ok := semitones[lower(note[0])]
	if !ok {
		return 0, fmt.Errorf("%w: %q has unknown letter", ErrInvalidNote, note)
	}
	accidental := 0
	if len(note) == 3 {
		switch note[1] {
		case '#':
			accidental = 1
		case 'b':
			accidental = -1
		default:
			return 0, fmt.Errorf("%w: %q has unknown accidental", ErrInvalidNote, note)
		}
	}
	octave := int(note[len(note)-1]) - '0'
	if octave < 0 || octave > 8 {
		return 0, fmt.Errorf("%w: %q octave must be in 0..8", ErrInvalidNote, note)
	}
	n := octave*12 + semitone + accidental - 8
	return math.Pow(2, float64(n-49)/12), nil
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
