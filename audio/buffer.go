package audio

import (
	"context"

	"github.com/golang/glog"
	"github.com/peragwin/agentfx/audio/util"
)

// Buffer turns every incoming block into an overlapping outgoing frame of the
// given size, holding the most recent samples. It also converts the float32
// input from a raw audio source to float64 for the analysis stages. Frames are
// dropped, not queued, when the consumer falls behind.
func Buffer(ctx context.Context, in <-chan []float32, size int) <-chan []float64 {

	out := make(chan []float64, 16) // allocate a small buffer for bursts

	go func() {
		defer close(out)
		var (
			y       []float64
			buffer  = util.NewRingBuffer(size)
			dropped int
		)

		for {
			select {
			case <-ctx.Done():
				return
			case x, ok := <-in:
				if !ok {
					return
				}
				if len(y) != len(x) {
					y = make([]float64, len(x))
				}
				for i := range x {
					y[i] = float64(x[i])
				}
				buffer.Push(y)

				select {
				case out <- buffer.Get(size):
				default:
					dropped++
					if dropped%100 == 1 {
						glog.Warningf("input buffer overrun, %d frames dropped", dropped)
					}
				}
			}
		}
	}()

	return out
}
