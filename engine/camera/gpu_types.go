package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (64 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUBillboardUniformSource is the canonical WGSL definition of the BillboardUniform struct.
// Matches GPUBillboardUniform layout exactly (96 bytes).
//
//go:embed assets/billboard_uniform.wgsl
var GPUBillboardUniformSource string

// GPUCameraUniform is the GPU-aligned camera uniform of the hex pipeline.
type GPUCameraUniform struct {
	ViewProj [16]float32 // offset 0: combined view-projection matrix (mat4x4<f32>)
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUCameraUniform) Size() int {
	return 64
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, g.ViewProj[:])
	return buf
}

// GPUBillboardUniform is the GPU-aligned camera uniform of the sprite pipeline.
// CameraUp and CameraRight are view-space axes expressed in world space, used to face quads towards the eye.
type GPUBillboardUniform struct {
	CameraUp    [4]float32  // offset  0: vec4<f32>, w = 1
	CameraRight [4]float32  // offset 16: vec4<f32>, w = 1
	ViewProj    [16]float32 // offset 32: mat4x4<f32>
}

// Size returns the size of the GPUBillboardUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUBillboardUniform) Size() int {
	return 96
}

// Marshal serializes the GPUBillboardUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUBillboardUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, g.CameraUp[:])
	putFloats(buf[16:], g.CameraRight[:])
	putFloats(buf[32:], g.ViewProj[:])
	return buf
}

func putFloats(buf []byte, fs []float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}
