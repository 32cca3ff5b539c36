// Package wav writes rendered buffers into wav files.
package wav

import (
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pipelined/synth/signal"
)

const (
	// BitDepth of written files.
	BitDepth = signal.BitDepth16
	// pcm audio format.
	format = 1
)

// Write creates a wav file with the buffer. Existing file is truncated.
func Write(path string, b signal.Float64, ctx signal.RenderContext) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, b, ctx); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes the buffer as mono 16-bit PCM. Samples are clamped to
// [-1, 1], the number of frames is taken from the context.
func Encode(w io.WriteSeeker, b signal.Float64, ctx signal.RenderContext) error {
	e := wav.NewEncoder(w, ctx.SampleRate, int(BitDepth), 1, format)
	ib := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  ctx.SampleRate,
		},
		Data:           b.Fit(ctx.Samples).AsInts(BitDepth),
		SourceBitDepth: int(BitDepth),
	}
	if err := e.Write(ib); err != nil {
		return err
	}
	return e.Close()
}
