package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/pipelined/synth/playback"
	"github.com/pipelined/synth/portaudio"
	"github.com/pipelined/synth/signal"
)

type playCommand struct {
	out             io.Writer
	patch           string
	note            string
	speed           float64
	framesPerBuffer int
}

func (cmd *playCommand) Name() string {
	return "play"
}

func (cmd *playCommand) Help() string {
	return "Play patch with default audio device"
}

func (cmd *playCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.patch, "patch", "", "patch to play (required)")
	fs.StringVar(&cmd.note, "note", "", "pitch shift relative to a4, e.g. c#5")
	fs.Float64Var(&cmd.speed, "speed", 1, "extra playback speed factor")
	fs.IntVar(&cmd.framesPerBuffer, "buffer", portaudio.DefaultFramesPerBuffer, "frames per device buffer")
}

func (cmd *playCommand) Run() error {
	speed, err := speedFactor(cmd.note, cmd.speed)
	if err != nil {
		return err
	}
	b, ctx, err := renderPatch(cmd.patch)
	if err != nil {
		return err
	}

	sink := portaudio.NewSink(cmd.framesPerBuffer)
	player := playback.NewPlayer(sink, speed)
	if err := player.Play(b, ctx); err != nil {
		sink.Close()
		return err
	}
	// sink doesn't block, wait until the queue is drained
	playing := signal.DurationOf(ctx.SampleRate, int64(sink.Pending()))
	fmt.Fprintf(cmd.out, "Playing %v\n", playing)
	time.Sleep(playing + 100*time.Millisecond)
	return sink.Close()
}
