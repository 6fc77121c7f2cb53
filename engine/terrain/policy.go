package terrain

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/hexa/engine/geometry"
	"github.com/chewxy/math32"
)

// Policy selects how noise samples become tiles.
type Policy string

const (
	// PolicyRing emits tiles only inside a disc around the grid center, with a raised snow cap in the inner half.
	PolicyRing Policy = "ring"
	// PolicyLayered emits a base column for every cell and stacks a snow cap where the sample is high.
	PolicyLayered Policy = "layered"
)

// Texture layers of the hex texture array.
const (
	LayerIceHat uint32 = iota
	LayerIceButt
	LayerSnowHat
	LayerSnowButt
)

// ParsePolicy parses a case-insensitive policy name. An empty name selects PolicyRing.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PolicyRing, PolicyLayered:
		return p, nil
	case "":
		return PolicyRing, nil
	}
	return "", fmt.Errorf("unknown terrain policy %q", s)
}

// appendRing places a cell by its distance from the grid center: snow caps inside n/4, ice inside n/2, nothing beyond.
func appendRing(tiles []geometry.Tile, x, y uint32, elevation float32, n float64) []geometry.Tile {
	half := float32(n / 2)
	d := math32.Hypot(float32(x)-half, float32(y)-half)
	pos := [2]uint32{x, y}

	switch {
	case d < half/2:
		return append(tiles, geometry.Tile{
			Position:  pos,
			Elevation: elevation + 0.9,
			Hat:       LayerSnowHat,
			Butt:      LayerSnowButt,
			ButtSize:  1.7,
		})
	case d < half:
		return append(tiles, geometry.Tile{
			Position:  pos,
			Elevation: elevation,
			Hat:       LayerIceHat,
			Butt:      LayerIceButt,
			ButtSize:  1.0,
		})
	}
	return tiles
}

// appendLayered emits a base column for the cell and a cap tile when the sample exceeds half the elevation scale.
// With sparse set, cells whose sample is not positive are skipped entirely.
func appendLayered(tiles []geometry.Tile, x, y uint32, sample, elevation float32, sparse bool) []geometry.Tile {
	if sparse && sample <= 0 {
		return tiles
	}
	pos := [2]uint32{x, y}
	tiles = append(tiles, geometry.Tile{
		Position: pos,
		Hat:      LayerSnowHat,
		Butt:     LayerSnowButt,
		ButtSize: sample + 0.3,
	})
	if sample > elevation/2 {
		tiles = append(tiles, geometry.Tile{
			Position: pos,
			Hat:      LayerIceHat,
			Butt:     LayerIceButt,
			ButtSize: sample * (sample / 1.5) * 0.4,
		})
	}
	return tiles
}
