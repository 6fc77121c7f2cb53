// Package geometry converts tile and sprite descriptors into the meshes and per-instance records consumed by the GPU.
package geometry

// Tile describes one hexagonal prism in the terrain grid.
// Tiles are immutable once produced; a regeneration replaces the whole collection.
type Tile struct {
	// Position is the (column, row) grid coordinate of the tile.
	Position [2]uint32
	// Elevation is the vertical offset applied before the prism is scaled.
	Elevation float32
	// ButtSize scales the prism along Z, stretching the side walls.
	ButtSize float32
	// Hat is the texture array layer used for the top face.
	Hat uint32
	// Butt is the texture array layer used for the side walls.
	Butt uint32
}

// Sprite is a camera-facing textured quad placed in world space.
type Sprite struct {
	// Image is the texture array layer sampled by the sprite.
	Image uint32
	// Position is the world-space XY position of the sprite center.
	Position [2]float32
	// Scale is the world-space width and height of the quad.
	Scale [2]float32
}

const (
	// hexWidth is the distance between the centers of two neighboring hexes in a row.
	hexWidth = float32(1.7320508) // sqrt(3)
	// hexHeight is the point-to-point height of a single hex.
	hexHeight = float32(2.0)
	// SpriteElevation is the fixed Z coordinate every sprite is placed at.
	SpriteElevation = float32(0.275)
)

// TileOrigin returns the world-space translation of a tile before any Z scaling.
// Odd rows are shifted by half a hex so the grid interlocks.
//
// Parameters:
//   - t: the tile to place
//
// Returns:
//   - [3]float32: the world-space X, Y, Z translation
func TileOrigin(t Tile) [3]float32 {
	x, y := t.Position[0], t.Position[1]
	return [3]float32{
		float32(x*2+(y&1)) / 2 * hexWidth,
		(0.75 * float32(y)) * hexHeight,
		t.Elevation,
	}
}
