package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func instanceLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{Entries: []wgpu.BindGroupLayoutEntry{
		{Binding: 0, Texture: wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat, ViewDimension: wgpu.TextureViewDimension2DArray}},
		{Binding: 1, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}},
		{Binding: 2, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
	}}
}

func TestNewBindGroupProvider_Label(t *testing.T) {
	p := NewBindGroupProvider("hex instances")
	assert.Equal(t, "hex instances", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
}

func TestValidate_ReportsMissingResources(t *testing.T) {
	layout := instanceLayout()

	err := NewBindGroupProvider("hex").Validate(layout)
	assert.ErrorContains(t, err, "texture binding 0")

	view := &wgpu.TextureView{}
	err = NewBindGroupProvider("hex", WithTextureView(0, view)).Validate(layout)
	assert.ErrorContains(t, err, "sampler binding 1")

	sampler := &wgpu.Sampler{}
	err = NewBindGroupProvider("hex", WithTextureView(0, view), WithSampler(1, sampler)).Validate(layout)
	assert.ErrorContains(t, err, "buffer binding 2 has no size")

	p := NewBindGroupProvider("hex", WithTextureView(0, view), WithSampler(1, sampler), WithBufferSize(2, 250*80))
	assert.NoError(t, p.Validate(layout))
	assert.Same(t, view, p.TextureView(0))
	assert.Same(t, sampler, p.Sampler(1))
}

func TestBuild_FailsBeforeTouchingDevice(t *testing.T) {
	p := NewBindGroupProvider("sprite")
	err := p.Build(nil, nil, instanceLayout())
	assert.Error(t, err)
	assert.Nil(t, p.BindGroup())
}

func TestBufferUsage(t *testing.T) {
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, bufferUsage(wgpu.BufferBindingTypeUniform))
	assert.Equal(t, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst, bufferUsage(wgpu.BufferBindingTypeReadOnlyStorage))
}
