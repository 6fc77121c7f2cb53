package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStructs = `
struct CameraUniform {
    view_proj: mat4x4<f32>,
}
struct HexInstance {
    model: mat4x4<f32>,
    texture_indexes: vec4<u32>,
}
`

const testBody = `
// @group(3) @binding(0) var<uniform> ignored: CameraUniform;
@group(0) @binding(0) var<uniform> camera: CameraUniform;
@group(1) @binding(1) var<storage, read> instances: array<HexInstance>;
@group(1) @binding(0) var layers: texture_2d_array<f32>;
@group(2) @binding(0) var layer_sampler: sampler;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) tex_coords: vec2f,
    @location(2) image: u32,
}

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) tex_coords: vec2<f32>,
}

/* @vertex fn commented_out() {} */
@vertex
fn vs_main(in: VertexInput, @builtin(instance_index) idx: u32) -> VertexOutput {
    var out: VertexOutput;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`

func TestNewShader_Vertex(t *testing.T) {
	s, err := NewShader("hex", StageVertex, Compose(testStructs, testBody))
	require.NoError(t, err)

	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, "hex", s.Module().Label)

	groups := s.BindGroupLayouts()
	require.Len(t, groups, 3)

	cam := groups[0].Entries
	require.Len(t, cam, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, cam[0].Buffer.Type)
	assert.Equal(t, uint64(64), cam[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageVertex, cam[0].Visibility)

	g1 := groups[1].Entries
	require.Len(t, g1, 2)
	assert.Equal(t, uint32(0), g1[0].Binding, "entries sorted by binding")
	assert.Equal(t, wgpu.TextureViewDimension2DArray, g1[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, g1[0].Texture.SampleType)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, g1[1].Buffer.Type)
	assert.Equal(t, uint64(80), g1[1].Buffer.MinBindingSize)

	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, groups[2].Entries[0].Sampler.Type)

	b, ok := s.Lookup("instances")
	require.True(t, ok)
	assert.Equal(t, Binding{Group: 1, Binding: 1}, b)
	_, ok = s.Lookup("ignored")
	assert.False(t, ok)

	layout := s.VertexLayout()
	require.NotNil(t, layout)
	assert.Equal(t, uint64(24), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[1].Format)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatUint32, layout.Attributes[2].Format)
	assert.Equal(t, uint32(2), layout.Attributes[2].ShaderLocation)
}

func TestNewShader_Fragment(t *testing.T) {
	s, err := NewShader("hex", StageFragment, Compose(testStructs, testBody))
	require.NoError(t, err)
	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Nil(t, s.VertexLayout())
	assert.Equal(t, wgpu.ShaderStageFragment, s.BindGroupLayouts()[0].Entries[0].Visibility)
}

func TestNewShader_Errors(t *testing.T) {
	_, err := NewShader("none", StageVertex, testStructs)
	assert.ErrorContains(t, err, "no @vertex entry point")

	dup := `
@group(0) @binding(0) var a: sampler;
@group(0) @binding(0) var b: sampler;
@fragment fn fs_main() {}
`
	_, err = NewShader("dup", StageFragment, dup)
	assert.Error(t, err)

	badVertex := `
struct VertexInput { @location(0) m: mat4x4<f32>, }
@vertex fn vs_main(in: VertexInput) {}
`
	_, err = NewShader("bad", StageVertex, badVertex)
	assert.ErrorContains(t, err, "VertexInput.m")

	assert.Panics(t, func() { MustNewShader("none", StageFragment, testStructs) })
}

func TestStructLayouts_Padding(t *testing.T) {
	structs := parseStructs(`
struct SpriteInstance {
    position: vec3<f32>,
    scale: vec3<f32>,
    texture_indexes: vec2<u32>,
}
struct Billboard {
    up: vec4<f32>,
    right: vec4<f32>,
    view_proj: mat4x4<f32>,
}
struct Nested {
    a: f32,
    items: array<SpriteInstance, 2>,
}
`)
	known := structLayouts(structs)
	assert.Equal(t, sizeAlign{48, 16}, known["SpriteInstance"])
	assert.Equal(t, sizeAlign{96, 16}, known["Billboard"])
	assert.Equal(t, sizeAlign{112, 16}, known["Nested"])
}

func TestStripComments(t *testing.T) {
	out := stripComments("a /* b /* c */ d */ e // f\ng")
	assert.Equal(t, "a  e \ng", out)
}
