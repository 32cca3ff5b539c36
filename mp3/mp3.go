// Package mp3 encodes rendered buffers with LAME.
package mp3

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/viert/lame"

	"github.com/pipelined/synth/signal"
)

// Default encoder settings.
const (
	DefaultBitRate = 192
	DefaultQuality = 2
)

// Options of encoder. Zero values are replaced with defaults.
type Options struct {
	BitRate int
	Quality int
}

func (o Options) withDefaults() Options {
	if o.BitRate <= 0 {
		o.BitRate = DefaultBitRate
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	return o
}

// Write creates mp3 file with the buffer.
func Write(path string, b signal.Float64, ctx signal.RenderContext, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, b, ctx, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes the buffer as mono mp3. Samples are clamped to [-1, 1], the
// number of samples is taken from the context.
func Encode(w io.Writer, b signal.Float64, ctx signal.RenderContext, opts Options) error {
	opts = opts.withDefaults()
	wr := lame.NewWriter(w)
	wr.Encoder.SetBitrate(opts.BitRate)
	wr.Encoder.SetQuality(opts.Quality)
	wr.Encoder.SetNumChannels(1)
	wr.Encoder.SetInSamplerate(ctx.SampleRate)
	wr.Encoder.SetMode(lame.MONO)
	wr.Encoder.SetVBR(lame.VBR_RH)
	wr.Encoder.InitParams()

	buf := new(bytes.Buffer)
	ints := b.Fit(ctx.Samples).AsInts(signal.BitDepth16)
	for i := range ints {
		if err := binary.Write(buf, binary.LittleEndian, int16(ints[i])); err != nil {
			return err
		}
	}
	if _, err := wr.Write(buf.Bytes()); err != nil {
		return err
	}
	return wr.Close()
}
