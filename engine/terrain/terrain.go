// Package terrain generates hex tile layouts from seeded coherent noise.
package terrain

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/hexa/engine/geometry"
)

// ErrZeroSize is returned when a generation is requested for an empty grid.
var ErrZeroSize = errors.New("terrain: grid size must be at least 1")

// Params are the inputs of a terrain generation. A generation is a pure function of Params.
type Params struct {
	// Size is the grid edge length N; cells span [0, N)².
	Size uint32
	// Seed seeds the noise source.
	Seed uint32
	// Elevation scales the raw noise sample.
	Elevation float32
}

// generator is the implementation of the Generator interface.
type generator struct {
	policy        Policy
	noise         NoiseKind
	sparseColumns bool
}

// Generator produces deterministic tile sets from Params.
type Generator interface {
	// Generate samples noise at (x/N, y/N) for every grid cell and applies the configured policy.
	// Cells are visited column by column (x outer, y inner).
	//
	// Parameters:
	//   - p: the generation parameters
	//
	// Returns:
	//   - []geometry.Tile: the generated tiles
	//   - error: ErrZeroSize for an empty grid, or an error if the noise source cannot be built
	Generate(p Params) ([]geometry.Tile, error)

	// Policy returns the placement policy used by this generator.
	Policy() Policy

	// Noise returns the noise implementation used by this generator.
	Noise() NoiseKind
}

var _ Generator = &generator{}

// NewGenerator creates a Generator. Without options it uses the ring policy over Perlin noise.
//
// Parameters:
//   - opts: functional options to configure the generator
//
// Returns:
//   - Generator: the configured generator
func NewGenerator(opts ...GeneratorBuilderOption) Generator {
	g := &generator{
		policy: PolicyRing,
		noise:  NoisePerlin,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *generator) Policy() Policy {
	return g.policy
}

func (g *generator) Noise() NoiseKind {
	return g.noise
}

func (g *generator) Generate(p Params) ([]geometry.Tile, error) {
	if p.Size == 0 {
		return nil, ErrZeroSize
	}
	src, err := NewNoise(g.noise, p.Seed)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}

	n := float64(p.Size)
	tiles := make([]geometry.Tile, 0, p.Size*p.Size)
	for x := range p.Size {
		for y := range p.Size {
			sample := float32(src.Eval2(float64(x)/n, float64(y)/n)) * p.Elevation
			switch g.policy {
			case PolicyLayered:
				tiles = appendLayered(tiles, x, y, sample, p.Elevation, g.sparseColumns)
			default:
				tiles = appendRing(tiles, x, y, sample, n)
			}
		}
	}
	return tiles, nil
}
