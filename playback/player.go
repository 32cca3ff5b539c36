package playback

import (
	"github.com/sirupsen/logrus"

	"github.com/pipelined/synth/log"
	"github.com/pipelined/synth/signal"
)

// AudioSink plays buffers. Play doesn't wait for the buffer to be played.
type AudioSink interface {
	Play(b signal.Float64, sampleRate int) error
}

// Player applies playback speed to rendered buffers and passes them to
// audio sink.
type Player struct {
	Sink  AudioSink
	Speed float64
	log   log.Logger
}

// NewPlayer creates player with extra speed factor. Zero speed means no
// extra speed change.
func NewPlayer(sink AudioSink, speed float64) *Player {
	if speed == 0 {
		speed = 1
	}
	return &Player{
		Sink:  sink,
		Speed: speed,
		log:   log.GetLogger(),
	}
}

// Play resamples the buffer and hands it to the sink.
func (p *Player) Play(b signal.Float64, ctx signal.RenderContext) error {
	out, err := ToPlaybackBuffer(b, ctx, p.Speed)
	if err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{
		"samples":    len(out),
		"sampleRate": ctx.SampleRate,
		"speed":      ctx.Speed * p.Speed,
	}).Debug("play buffer")
	return p.Sink.Play(out, ctx.SampleRate)
}
