package nodes

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pipelined/synth/catalog"
	"github.com/pipelined/synth/signal"
)

// decoder is implemented by wav and aiff decoders.
type decoder interface {
	IsValidFile() bool
	FullPCMBuffer() (*audio.IntBuffer, error)
}

// wavefile reads wav or aiff file, mixes it down to mono and fits it to the
// render context.
func wavefile(args catalog.Args) (signal.Float64, error) {
	ctx := args.Context()
	path := args.Text("path")
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidFile)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	in, sampleRate, err := ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sampleRate != ctx.SampleRate && len(in) > 0 {
		size := int(float64(len(in))*float64(ctx.SampleRate)/float64(sampleRate) + 0.5)
		in = in.Resample(size)
	}
	result := in.Fit(ctx.Samples)
	if g := args.Float("gain"); g != 1 {
		for i := range result {
			result[i] *= g
		}
	}
	return result, nil
}

// ReadFile decodes wav or aiff data into mono buffer. It returns the buffer
// and the sample rate of the file.
func ReadFile(r io.ReadSeeker) (signal.Float64, int, error) {
	d, err := detect(r)
	if err != nil {
		return nil, 0, err
	}
	ib, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if ib == nil || ib.Format == nil {
		return nil, 0, fmt.Errorf("%w: missing format", ErrInvalidFile)
	}
	bitDepth := signal.BitDepth(ib.SourceBitDepth)
	if !bitDepth.Supported() {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, ib.SourceBitDepth)
	}
	if ib.Format.SampleRate <= 0 || ib.Format.NumChannels <= 0 {
		return nil, 0, fmt.Errorf("%w: sample rate %d, channels %d", ErrInvalidFile, ib.Format.SampleRate, ib.Format.NumChannels)
	}
	data := ib.Data
	if _, ok := d.(*wav.Decoder); ok && bitDepth == signal.BitDepth8 {
		// 8-bit wav samples are unsigned
		data = make([]int, len(ib.Data))
		for i, v := range ib.Data {
			data[i] = v - 128
		}
	}
	mono := signal.InterInt{
		Data:        data,
		NumChannels: ib.Format.NumChannels,
		BitDepth:    bitDepth,
	}.Mono()
	if mono == nil {
		mono = signal.Float64{}
	}
	return mono, ib.Format.SampleRate, nil
}

// detect returns decoder for wav or aiff content.
func detect(r io.ReadSeeker) (decoder, error) {
	if wd := wav.NewDecoder(r); wd.IsValidFile() {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return wav.NewDecoder(r), nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if ad := aiff.NewDecoder(r); ad.IsValidFile() {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return aiff.NewDecoder(r), nil
	}
	return nil, ErrInvalidFile
}
