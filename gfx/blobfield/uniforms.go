package blobfield

import (
	"time"

	ml "github.com/go-gl/mathgl/mgl32"
)

// Uniforms is the per-frame parameter snapshot uploaded to the field shader.
type Uniforms struct {
	Time       float32
	Resolution ml.Vec2
	BlobCount  uint32
	Tightness  float32
	Sharpness  float32
	Warp1      float32
	Warp2      float32
	Warp3      float32
}

// NewUniforms snapshots cfg for a frame drawn elapsed after the renderer
// started, on a width x height target.
func NewUniforms(cfg *Config, elapsed time.Duration, width, height int) Uniforms {
	return Uniforms{
		Time:       float32(elapsed.Seconds()),
		Resolution: ml.Vec2{float32(width), float32(height)},
		BlobCount:  uint32(cfg.BlobCount),
		Tightness:  cfg.Tightness,
		Sharpness:  cfg.Sharpness,
		Warp1:      cfg.Warp1,
		Warp2:      cfg.Warp2,
		Warp3:      cfg.Warp3,
	}
}
