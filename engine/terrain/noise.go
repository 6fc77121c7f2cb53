package terrain

import (
	"fmt"
	"strings"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// NoiseKind names a coherent noise implementation.
type NoiseKind string

const (
	// NoisePerlin samples classic gradient noise, summed over a few octaves.
	NoisePerlin NoiseKind = "perlin"
	// NoiseSimplex samples OpenSimplex noise normalized to [0, 1).
	NoiseSimplex NoiseKind = "simplex"
)

const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// NoiseSource samples 2D coherent noise. Implementations must be deterministic for a given seed.
type NoiseSource interface {
	Eval2(x, y float64) float64
}

// perlinSource adapts go-perlin to NoiseSource.
type perlinSource struct {
	p *perlin.Perlin
}

func (s perlinSource) Eval2(x, y float64) float64 {
	return s.p.Noise2D(x, y)
}

// NewNoise builds the noise source of the given kind seeded with seed.
//
// Parameters:
//   - kind: the noise implementation to use
//   - seed: the generator seed
//
// Returns:
//   - NoiseSource: the seeded noise source
//   - error: error if kind is not a known noise implementation
func NewNoise(kind NoiseKind, seed uint32) (NoiseSource, error) {
	switch kind {
	case NoisePerlin, "":
		return perlinSource{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, int64(seed))}, nil
	case NoiseSimplex:
		return opensimplex.NewNormalized(int64(seed)), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

// ParseNoiseKind parses a case-insensitive noise name.
func ParseNoiseKind(s string) (NoiseKind, error) {
	k := NoiseKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case NoisePerlin, NoiseSimplex:
		return k, nil
	case "":
		return NoisePerlin, nil
	}
	return "", fmt.Errorf("unknown noise kind %q", s)
}
