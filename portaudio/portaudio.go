// Package portaudio plays buffers with the default output device.
package portaudio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"

	"github.com/pipelined/synth/log"
	"github.com/pipelined/synth/signal"
)

// DefaultFramesPerBuffer is used when sink is created with zero buffer size.
const DefaultFramesPerBuffer = 512

// stream is an output stream of device.
type stream interface {
	Start() error
	Stop() error
	Close() error
}

// opener opens a started mono stream which pulls samples with callback.
type opener func(sampleRate, framesPerBuffer int, callback func([]float32)) (stream, error)

// Sink plays mono buffers. Buffers are appended to the queue which is
// drained by device callback, underruns are padded with silence. Stream is
// opened with the first Play call and reopened when sample rate changes.
type Sink struct {
	framesPerBuffer int
	open            opener
	log             log.Logger

	// device guards stream lifecycle.
	device     sync.Mutex
	stream     stream
	sampleRate int

	// m guards queue.
	m     sync.Mutex
	queue []float32
}

// NewSink creates a new sink for the default output device.
func NewSink(framesPerBuffer int) *Sink {
	if framesPerBuffer <= 0 {
		framesPerBuffer = DefaultFramesPerBuffer
	}
	return &Sink{
		framesPerBuffer: framesPerBuffer,
		open:            openDefault,
		log:             log.GetLogger(),
	}
}

// Play enqueues the buffer and returns without waiting for it to be played.
func (s *Sink) Play(b signal.Float64, sampleRate int) error {
	s.device.Lock()
	defer s.device.Unlock()
	if s.stream == nil || s.sampleRate != sampleRate {
		if err := s.reinit(sampleRate); err != nil {
			return err
		}
	}
	s.m.Lock()
	s.queue = append(s.queue, b.Float32()...)
	s.m.Unlock()
	return nil
}

// Pending returns number of samples waiting to be played.
func (s *Sink) Pending() int {
	s.m.Lock()
	defer s.m.Unlock()
	return len(s.queue)
}

// Close stops the stream and drops queued samples.
func (s *Sink) Close() error {
	s.device.Lock()
	defer s.device.Unlock()
	err := s.closeStream()
	s.m.Lock()
	s.queue = nil
	s.m.Unlock()
	return err
}

// reinit closes current stream and opens a new one with provided sample
// rate. Queued samples of the previous rate are dropped.
func (s *Sink) reinit(sampleRate int) error {
	if err := s.closeStream(); err != nil {
		return err
	}
	s.m.Lock()
	s.queue = nil
	s.m.Unlock()

	st, err := s.open(sampleRate, s.framesPerBuffer, s.fill)
	if err != nil {
		return err
	}
	s.stream = st
	s.sampleRate = sampleRate
	s.log.WithFields(logrus.Fields{
		"sampleRate":      sampleRate,
		"framesPerBuffer": s.framesPerBuffer,
	}).Debug("audio stream started")
	return nil
}

func (s *Sink) closeStream() error {
	if s.stream == nil {
		return nil
	}
	st := s.stream
	s.stream = nil
	s.sampleRate = 0
	if err := st.Stop(); err != nil {
		st.Close()
		return err
	}
	return st.Close()
}

// fill copies queued samples into device buffer and pads the rest with
// zeros.
func (s *Sink) fill(out []float32) {
	s.m.Lock()
	n := copy(out, s.queue)
	s.queue = s.queue[n:]
	if len(s.queue) == 0 {
		s.queue = nil
	}
	s.m.Unlock()
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
}

// paStream terminates portaudio when stream is closed.
type paStream struct {
	*portaudio.Stream
}

func (s paStream) Close() error {
	err := s.Stream.Close()
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}

func openDefault(sampleRate, framesPerBuffer int, callback func([]float32)) (stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	st, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), framesPerBuffer, callback)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	if err := st.Start(); err != nil {
		st.Close()
		portaudio.Terminate()
		return nil, err
	}
	return paStream{Stream: st}, nil
}
