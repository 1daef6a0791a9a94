package blobfield

import (
	"image"
	"image/color"
	"runtime"
	"sync"

	"github.com/chewxy/math32"
	ml "github.com/go-gl/mathgl/mgl32"
)

// SoftwareTarget is a Backend that evaluates the field on the CPU into an
// RGBA image. It is used headless and for snapshots.
type SoftwareTarget struct {
	mu        sync.Mutex
	img       *image.RGBA
	presented int

	// OnPresent, when set, is called with the finished frame.
	OnPresent func(*image.RGBA)
}

// NewSoftwareTarget allocates a width x height target.
func NewSoftwareTarget(width, height int) *SoftwareTarget {
	return &SoftwareTarget{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Resize reallocates the image. A zero area makes Size report no drawable.
func (s *SoftwareTarget) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Image returns the image frames are drawn into.
func (s *SoftwareTarget) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img
}

// Presented counts presented frames.
func (s *SoftwareTarget) Presented() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presented
}

// Size implements Backend.
func (s *SoftwareTarget) Size() (int, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.img.Bounds()
	return b.Dx(), b.Dy(), b.Dx() > 0 && b.Dy() > 0
}

// Draw implements Backend. Rows are split across CPUs. As on the GPU, UV
// (0,0) is the bottom-left corner of the image.
func (s *SoftwareTarget) Draw(u Uniforms, palette []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.img.Bounds()
	w, h := b.Dx(), b.Dy()
	workers := runtime.NumCPU()
	if workers > h {
		workers = h
	}

	var wg sync.WaitGroup
	for k := 0; k < workers; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			for y := k; y < h; y += workers {
				v := 1 - (float32(y)+0.5)/float32(h)
				for x := 0; x < w; x++ {
					uv := ml.Vec2{(float32(x) + 0.5) / float32(w), v}
					s.img.SetRGBA(b.Min.X+x, b.Min.Y+y, toRGBA(Evaluate(uv, u, palette)))
				}
			}
		}(k)
	}
	wg.Wait()
	return nil
}

// Present implements Backend.
func (s *SoftwareTarget) Present() {
	s.mu.Lock()
	s.presented++
	img, fn := s.img, s.OnPresent
	s.mu.Unlock()
	if fn != nil {
		fn(img)
	}
}

func toRGBA(c ml.Vec4) color.RGBA {
	return color.RGBA{unit8(c[0]), unit8(c[1]), unit8(c[2]), unit8(c[3])}
}

func unit8(v float32) uint8 {
	return uint8(math32.Floor(ml.Clamp(v, 0, 1)*255 + 0.5))
}
