package audio

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/gordonklaus/portaudio"
)

// Config represents a config that is used to open a new Stream.
type Config struct {
	// BlockSize refers to the buffer size for each block
	BlockSize int
	// Channels is the number of input channeles
	Channels int
	// SampleRate is the sample rate (Fs).
	SampleRate float64
}

// DefaultConfig is a mono 44.1kHz input read in 512 sample blocks.
func DefaultConfig() *Config {
	return &Config{BlockSize: 512, Channels: 1, SampleRate: 44100}
}

// NewSource opens the default input device with portaudio and returns a
// channel of sample blocks. This is the live audio-track handle: the channel
// is closed when ctx is cancelled or the stream fails, in which case the
// error is delivered on the second channel first.
func NewSource(ctx context.Context, cfg *Config) (<-chan []float32, <-chan error) {
	out := make(chan []float32)
	errc := make(chan error, 1)
	done := ctx.Done()

	go func() {
		defer close(out)

		if err := portaudio.Initialize(); err != nil {
			errc <- fmt.Errorf("initialize portaudio: %w", err)
			return
		}
		defer portaudio.Terminate()

		in := make([]float32, cfg.BlockSize*cfg.Channels)
		stream, err := portaudio.OpenDefaultStream(
			cfg.Channels, 0, cfg.SampleRate, cfg.BlockSize, in)
		if err != nil {
			errc <- fmt.Errorf("open stream: %w", err)
			return
		}
		defer stream.Close()
		if err := stream.Start(); err != nil {
			errc <- fmt.Errorf("start stream: %w", err)
			return
		}
		defer stream.Stop()
		glog.Infof("audio input started: %d ch @ %.0f Hz, block %d",
			cfg.Channels, cfg.SampleRate, cfg.BlockSize)

		for {
			select {
			case <-done:
				return
			default:
			}

			if err := stream.Read(); err != nil {
				errc <- fmt.Errorf("read stream: %w", err)
				return
			}

			block := downmix(in, cfg.Channels)
			select {
			case out <- block:
			case <-done:
				return
			}
		}
	}()

	return out, errc
}

// downmix averages interleaved channels into a new mono block.
func downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return append([]float32(nil), in...)
	}
	out := make([]float32, len(in)/channels)
	for i := range out {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += in[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
