package blobfield

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/golang/glog"
)

// MaxBlobs is the size of the colour uniform array in the field shader.
const MaxBlobs = 64

// ErrInvalidConfig is returned for configurations the field cannot render.
var ErrInvalidConfig = errors.New("invalid blob field config")

// Config holds the host-owned parameters of the blob field. A new value
// handed to UpdateConfig takes effect on the next frame.
type Config struct {
	BlobCount int     `json:"blobCount"`
	Tightness float32 `json:"tightness"`
	Sharpness float32 `json:"sharpness"`
	Warp1     float32 `json:"warp1"`
	Warp2     float32 `json:"warp2"`
	Warp3     float32 `json:"warp3"`
	Colors    Palette `json:"colors"`
}

// DefaultConfig returns the stock four-blob look.
func DefaultConfig() *Config {
	return &Config{
		BlobCount: 4,
		Tightness: 0.2,
		Sharpness: 3.4,
		Warp1:     1.2,
		Warp2:     3.45,
		Warp3:     4.66,
		Colors: Palette{
			mustParseColor("blue"),
			mustParseColor("green"),
			mustParseColor("red"),
			mustParseColor("purple"),
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cc := *c
	cc.Colors = append(Palette(nil), c.Colors...)
	return &cc
}

// Validate checks that every parameter is renderable. An empty palette is
// allowed; missing colours are padded.
func (c *Config) Validate() error {
	if c.BlobCount < 1 || c.BlobCount > MaxBlobs {
		return fmt.Errorf("%w: blobCount %d not in [1, %d]", ErrInvalidConfig, c.BlobCount, MaxBlobs)
	}
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"tightness", c.Tightness},
		{"sharpness", c.Sharpness},
		{"warp1", c.Warp1},
		{"warp2", c.Warp2},
		{"warp3", c.Warp3},
	} {
		v := float64(f.v)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, f.name)
		}
	}
	// negative falloff overflows exp and pow(0, s) to +Inf
	if c.Tightness < 0 {
		return fmt.Errorf("%w: tightness %g is negative", ErrInvalidConfig, c.Tightness)
	}
	if c.Sharpness < 0 {
		return fmt.Errorf("%w: sharpness %g is negative", ErrInvalidConfig, c.Sharpness)
	}
	return nil
}

// LoadConfig reads a JSON config over the defaults. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		glog.Infof("config %s not found, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
