package geometry

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUHexInstanceSource is the canonical WGSL definition of the HexInstance struct.
// Matches GPUHexInstance layout exactly (80 bytes).
//
//go:embed assets/hex_instance.wgsl
var GPUHexInstanceSource string

// GPUSpriteInstanceSource is the canonical WGSL definition of the SpriteInstance struct.
// Matches GPUSpriteInstance layout exactly (48 bytes, storage buffer aligned).
//
//go:embed assets/sprite_instance.wgsl
var GPUSpriteInstanceSource string

// GPUHexInstance is the GPU-aligned per-instance record of the hex pipeline.
// Size: 80 bytes.
type GPUHexInstance struct {
	Model          [16]float32 // offset  0: model matrix (mat4x4<f32>), column-major
	TextureIndexes [4]uint32   // offset 64: hat, butt, unused, unused (vec4<u32>)
}

// Size returns the size of the GPUHexInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUHexInstance) Size() int {
	return 80
}

// Marshal serializes the GPUHexInstance into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUHexInstance) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.marshalInto(buf)
	return buf
}

func (g *GPUHexInstance) marshalInto(buf []byte) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Model[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], g.TextureIndexes[i])
	}
}

// GPUSpriteInstance is the GPU-aligned per-instance record of the sprite pipeline.
// vec3 members are 16-byte aligned in storage buffers, so the struct is padded to 48 bytes.
type GPUSpriteInstance struct {
	Position       [3]float32 // offset  0: world position (vec3<f32>)
	_pad0          float32    // offset 12
	Scale          [3]float32 // offset 16: quad scale (vec3<f32>)
	_pad1          float32    // offset 28
	TextureIndexes [2]uint32  // offset 32: image layer, unused (vec2<u32>)
	_pad2          [2]uint32  // offset 40: struct tail padding
}

// Size returns the size of the GPUSpriteInstance struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUSpriteInstance) Size() int {
	return 48
}

// Marshal serializes the GPUSpriteInstance into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSpriteInstance) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.marshalInto(buf)
	return buf
}

func (g *GPUSpriteInstance) marshalInto(buf []byte) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Scale[i]))
	}
	binary.LittleEndian.PutUint32(buf[32:], g.TextureIndexes[0])
	binary.LittleEndian.PutUint32(buf[36:], g.TextureIndexes[1])
}

// TileModel builds the model matrix of a tile: a Z scale by ButtSize applied after the grid translation.
//
// Parameters:
//   - t: the tile to transform
//
// Returns:
//   - mgl32.Mat4: the model matrix
func TileModel(t Tile) mgl32.Mat4 {
	o := TileOrigin(t)
	return mgl32.Scale3D(1, 1, t.ButtSize).Mul4(mgl32.Translate3D(o[0], o[1], o[2]))
}

// HexInstance converts a tile into its GPU instance record.
func HexInstance(t Tile) GPUHexInstance {
	return GPUHexInstance{
		Model:          TileModel(t),
		TextureIndexes: [4]uint32{t.Hat, t.Butt, 0, 0},
	}
}

// SpriteInstance converts a sprite into its GPU instance record.
func SpriteInstance(s Sprite) GPUSpriteInstance {
	return GPUSpriteInstance{
		Position:       [3]float32{s.Position[0], s.Position[1], SpriteElevation},
		Scale:          [3]float32{s.Scale[0], s.Scale[1], 1},
		TextureIndexes: [2]uint32{s.Image, 0},
	}
}

// MarshalHexInstances converts and serializes tiles into one contiguous instance buffer.
//
// Parameters:
//   - tiles: the tiles to serialize, in draw order
//
// Returns:
//   - []byte: len(tiles)*80 bytes of instance data
func MarshalHexInstances(tiles []Tile) []byte {
	var g GPUHexInstance
	stride := g.Size()
	buf := make([]byte, len(tiles)*stride)
	for i, t := range tiles {
		inst := HexInstance(t)
		inst.marshalInto(buf[i*stride:])
	}
	return buf
}

// MarshalSpriteInstances converts and serializes sprites into one contiguous instance buffer.
//
// Parameters:
//   - sprites: the sprites to serialize, in draw order
//
// Returns:
//   - []byte: len(sprites)*48 bytes of instance data
func MarshalSpriteInstances(sprites []Sprite) []byte {
	var g GPUSpriteInstance
	stride := g.Size()
	buf := make([]byte, len(sprites)*stride)
	for i, s := range sprites {
		inst := SpriteInstance(s)
		inst.marshalInto(buf[i*stride:])
	}
	return buf
}
