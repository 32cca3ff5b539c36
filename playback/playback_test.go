package playback_test

import (
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/synth/internal/mock"
	"github.com/pipelined/synth/playback"
	"github.com/pipelined/synth/signal"
)

func TestToPlaybackBuffer(t *testing.T) {
	ctx := signal.NewRenderContext(4, 1, 1)
	tests := []struct {
		description string
		in          signal.Float64
		ctx         signal.RenderContext
		extra       float64
		expected    signal.Float64
		err         error
	}{
		{
			description: "unchanged",
			in:          signal.Float64{0, 1, 2, 3},
			ctx:         ctx,
			extra:       1,
			expected:    signal.Float64{0, 1, 2, 3},
		},
		{
			description: "double speed",
			in:          signal.Float64{0, 1, 2, 3},
			ctx:         ctx,
			extra:       2,
			expected:    signal.Float64{0, 3},
		},
		{
			description: "half speed from context",
			in:          signal.Float64{0, 1, 2, 3},
			ctx:         signal.NewRenderContext(4, 1, 0.5),
			extra:       1,
			expected:    signal.Float64{0, 3.0 / 7, 6.0 / 7, 9.0 / 7, 12.0 / 7, 15.0 / 7, 18.0 / 7, 3},
		},
		{
			description: "short buffer is padded",
			in:          signal.Float64{3},
			ctx:         ctx,
			extra:       1,
			expected:    signal.Float64{3, 0, 0, 0},
		},
		{
			description: "zero speed",
			in:          signal.Float64{0, 1, 2, 3},
			ctx:         ctx,
			extra:       0,
			err:         playback.ErrInvalidSpeed,
		},
		{
			description: "negative speed",
			in:          signal.Float64{0, 1, 2, 3},
			ctx:         ctx,
			extra:       -1,
			err:         playback.ErrInvalidSpeed,
		},
		{
			description: "too slow to fit",
			in:          make(signal.Float64, 8000),
			ctx:         signal.NewRenderContext(8000, 1, 1),
			extra:       1e-12,
			err:         playback.ErrInvalidSpeed,
		},
	}
	for _, test := range tests {
		result, err := playback.ToPlaybackBuffer(test.in, test.ctx, test.extra)
		if test.err != nil {
			assert.ErrorIs(t, err, test.err, test.description)
			assert.Nil(t, result, test.description)
			continue
		}
		require.NoError(t, err, test.description)
		assert.Equal(t, len(test.expected), len(result), test.description)
		assert.InDeltaSlice(t, test.expected, result, 1e-12, test.description)
	}
}

func TestToPlaybackBufferLength(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("unit speed keeps buffer", prop.ForAll(
		func(samples []float64) bool {
			ctx := signal.NewRenderContext(len(samples)+1, 1, 1).WithSamples(len(samples))
			result, err := playback.ToPlaybackBuffer(samples, ctx, 1)
			if err != nil || len(result) != len(samples) {
				return false
			}
			for i := range samples {
				if math.Abs(result[i]-samples[i]) > 1e-9 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(-1, 1)),
	))

	properties.Property("length is scaled by speed", prop.ForAll(
		func(samples int, speed float64) bool {
			ctx := signal.NewRenderContext(8000, 1, speed).WithSamples(samples)
			result, err := playback.ToPlaybackBuffer(signal.Broadcast(0.5, samples), ctx, 1)
			return err == nil && len(result) == int(math.Round(float64(samples)/speed))
		},
		gen.IntRange(0, 2000),
		gen.Float64Range(0.25, 4),
	))

	properties.TestingRun(t)
}

func TestNoteToSpeedFactor(t *testing.T) {
	tests := []struct {
		note     string
		expected float64
		err      error
	}{
		{note: "a4", expected: 1},
		{note: "A4", expected: 1},
		{note: "a5", expected: 2},
		{note: "a3", expected: 0.5},
		{note: "a#4", expected: math.Pow(2, 1.0/12)},
		{note: "bb4", expected: math.Pow(2, 1.0/12)},
		{note: "c4", expected: math.Pow(2, -9.0/12)},
		{note: "c0", expected: math.Pow(2, -57.0/12)},
		{note: "b8", expected: math.Pow(2, 50.0/12)},
		{note: "h4", err: playback.ErrInvalidNote},
		{note: "c9", err: playback.ErrInvalidNote},
		{note: "c", err: playback.ErrInvalidNote},
		{note: "c#44", err: playback.ErrInvalidNote},
		{note: "c*4", err: playback.ErrInvalidNote},
		{note: "cx", err: playback.ErrInvalidNote},
		{note: "", err: playback.ErrInvalidNote},
	}
	for _, test := range tests {
		result, err := playback.NoteToSpeedFactor(test.note)
		if test.err != nil {
			assert.ErrorIs(t, err, test.err, test.note)
			continue
		}
		require.NoError(t, err, test.note)
		assert.InDelta(t, test.expected, result, 1e-12, test.note)
	}
}

func TestPlayer(t *testing.T) {
	sink := &mock.AudioSink{}
	p := playback.NewPlayer(sink, 2)
	err := p.Play(signal.Float64{0, 1, 2, 3}, signal.NewRenderContext(4, 1, 1))
	require.NoError(t, err)
	b, sampleRate := sink.Buffer()
	assert.Equal(t, signal.Float64{0, 3}, b)
	assert.Equal(t, 4, sampleRate)
	assert.Equal(t, 1, sink.Plays())

	// speed is checked before hand-off
	p = playback.NewPlayer(sink, -1)
	err = p.Play(signal.Float64{0, 1, 2, 3}, signal.NewRenderContext(4, 1, 1))
	assert.ErrorIs(t, err, playback.ErrInvalidSpeed)
	assert.Equal(t, 1, sink.Plays())

	failing := &mock.AudioSink{ErrorOnCall: errors.New("device failure")}
	err = playback.NewPlayer(failing, 0).Play(signal.Float64{0}, signal.NewRenderContext(1, 1, 1))
	assert.Equal(t, failing.ErrorOnCall, err)
}
