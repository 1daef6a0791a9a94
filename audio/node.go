package audio

import "context"

// Node runs fn over every frame from in on its own goroutine. The output is
// closed when in is closed or ctx is cancelled.
func Node(ctx context.Context, in <-chan []float64, fn func([]float64) []float64) <-chan []float64 {
	out := make(chan []float64)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case frame, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- fn(frame):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
