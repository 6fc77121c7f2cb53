package pipeline

import (
	"github.com/Carmen-Shannon/hexa/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithShaders sets the vertex and fragment shaders of the pipeline.
//
// Parameters:
//   - vs: the vertex stage shader
//   - fs: the fragment stage shader
//
// Returns:
//   - PipelineBuilderOption: a function that sets both shaders
func WithShaders(vs, fs shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = vs
		p.fragmentShader = fs
	}
}

// WithDepthTestEnabled sets whether fragments are tested against the depth buffer.
//
// Parameters:
//   - enabled: false makes the depth compare always pass
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth test state
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether fragments write to the depth buffer.
//
// Parameters:
//   - enabled: whether depth writes are enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth write state
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthFormat sets the depth attachment format. TextureFormatUndefined removes the depth stencil state.
//
// Parameters:
//   - format: the depth texture format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth format
func WithDepthFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthFormat = format
	}
}

// WithBlendEnabled sets whether the color target blends with the existing contents.
//
// Parameters:
//   - enabled: whether blending is enabled
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend state
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithBlendState overrides the blend equation used when blending is enabled.
//
// Parameters:
//   - state: the blend state
//
// Returns:
//   - PipelineBuilderOption: a function that sets the blend equation
func WithBlendState(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = state
	}
}

// WithCullMode sets which faces are culled.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology.
//
// Parameters:
//   - topology: the primitive topology
//
// Returns:
//   - PipelineBuilderOption: a function that sets the topology
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the winding order of front faces.
//
// Parameters:
//   - frontFace: the front face winding
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithWriteMask sets the color write mask.
//
// Parameters:
//   - writeMask: the channels written by the pipeline
//
// Returns:
//   - PipelineBuilderOption: a function that sets the write mask
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}

// WithTargetFormat sets the format of the color attachment.
//
// Parameters:
//   - format: the color target format
//
// Returns:
//   - PipelineBuilderOption: a function that sets the target format
func WithTargetFormat(format wgpu.TextureFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.targetFormat = format
	}
}

// WithSampleCount sets the multisample count. Zero is treated as one.
//
// Parameters:
//   - count: the number of samples per pixel
//
// Returns:
//   - PipelineBuilderOption: a function that sets the sample count
func WithSampleCount(count uint32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.sampleCount = max(count, 1)
	}
}
