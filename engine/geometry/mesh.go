package geometry

import (
	"encoding/binary"
	"math"
)

// HexVertex is a single vertex of the hex prism mesh.
// Matches the WGSL VertexInput of the hex shader (24 bytes).
type HexVertex struct {
	Position  [3]float32
	TexCoords [2]float32
	// Image selects the instance texture index: 0 for the top face (hat), 1 for the walls (butt).
	Image uint32
}

// QuadVertex is a single vertex of the sprite quad (12 bytes).
type QuadVertex struct {
	Position [3]float32
}

// HexVertices is a unit hexagonal prism: a 7-vertex top fan at z=0 and 12 wall vertices spanning z=0..-1.
var HexVertices = []HexVertex{
	{[3]float32{0, 0, 0}, [2]float32{0.5, 0.5}, 0},
	{[3]float32{0.866025, -0.5, 0}, [2]float32{0.933012, 0.25}, 0},
	{[3]float32{0, -1, 0}, [2]float32{0.5, 0}, 0},
	{[3]float32{-0.866025, -0.5, 0}, [2]float32{0.066988, 0.25}, 0},
	{[3]float32{-0.866025, 0.5, 0}, [2]float32{0.066988, 0.75}, 0},
	{[3]float32{0, 1, 0}, [2]float32{0.5, 1}, 0},
	{[3]float32{0.866025, 0.5, 0}, [2]float32{0.933012, 0.75}, 0},

	{[3]float32{0.866025, -0.5, 0}, [2]float32{0, 0}, 1},
	{[3]float32{0, -1, 0}, [2]float32{1, 0}, 1},
	{[3]float32{-0.866025, -0.5, 0}, [2]float32{0, 0}, 1},
	{[3]float32{-0.866025, 0.5, 0}, [2]float32{1, 0}, 1},
	{[3]float32{0, 1, 0}, [2]float32{0, 0}, 1},
	{[3]float32{0.866025, 0.5, 0}, [2]float32{1, 0}, 1},
	{[3]float32{0.866025, -0.5, -1}, [2]float32{0, 1}, 1},
	{[3]float32{0, -1, -1}, [2]float32{1, 1}, 1},
	{[3]float32{-0.866025, -0.5, -1}, [2]float32{0, 1}, 1},
	{[3]float32{-0.866025, 0.5, -1}, [2]float32{1, 1}, 1},
	{[3]float32{0, 1, -1}, [2]float32{0, 1}, 1},
	{[3]float32{0.866025, 0.5, -1}, [2]float32{1, 1}, 1},
}

// HexIndices triangulates HexVertices with clockwise front faces.
var HexIndices = []uint32{
	// top
	0, 1, 2, 0, 2, 3, 0, 3, 4, 0, 4, 5, 0, 5, 6, 0, 6, 1,
	// walls
	7, 14, 8, 7, 13, 14,
	8, 15, 9, 8, 14, 15,
	9, 16, 10, 9, 15, 16,
	10, 17, 11, 10, 16, 17,
	11, 18, 12, 11, 17, 18,
	12, 13, 7, 12, 18, 13,
}

// QuadVertices is a unit quad centered on the origin in the XY plane.
var QuadVertices = []QuadVertex{
	{[3]float32{-0.5, -0.5, 0}},
	{[3]float32{0.5, -0.5, 0}},
	{[3]float32{0.5, 0.5, 0}},
	{[3]float32{-0.5, 0.5, 0}},
}

// QuadIndices triangulates QuadVertices with clockwise front faces.
var QuadIndices = []uint32{2, 1, 0, 0, 3, 2}

// MarshalHexVertices serializes hex vertices for a vertex buffer.
func MarshalHexVertices(vs []HexVertex) []byte {
	const stride = 24
	buf := make([]byte, len(vs)*stride)
	for i, v := range vs {
		o := buf[i*stride:]
		putFloats(o, v.Position[:]...)
		putFloats(o[12:], v.TexCoords[:]...)
		binary.LittleEndian.PutUint32(o[20:], v.Image)
	}
	return buf
}

// MarshalQuadVertices serializes quad vertices for a vertex buffer.
func MarshalQuadVertices(vs []QuadVertex) []byte {
	const stride = 12
	buf := make([]byte, len(vs)*stride)
	for i, v := range vs {
		putFloats(buf[i*stride:], v.Position[:]...)
	}
	return buf
}

// MarshalIndices serializes 32-bit indices for an index buffer.
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func putFloats(buf []byte, fs ...float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}
