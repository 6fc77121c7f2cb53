package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBufferSize overrides the size of the buffer created for a binding.
// Runtime-sized storage arrays reflect a single element, so instance buffers set their full capacity here.
//
// Parameters:
//   - binding: the binding index
//   - size: the buffer size in bytes
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer size for the binding
func WithBufferSize(binding uint32, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bufferSizes[binding] = size
	}
}

// WithTextureView attaches a borrowed texture view to a binding.
//
// Parameters:
//   - binding: the binding index
//   - view: the texture view
//
// Returns:
//   - BindGroupProviderOption: a function that sets the texture view for the binding
func WithTextureView(binding uint32, view *wgpu.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.textureViews[binding] = view
	}
}

// WithSampler attaches an owned sampler to a binding.
//
// Parameters:
//   - binding: the binding index
//   - sampler: the sampler
//
// Returns:
//   - BindGroupProviderOption: a function that sets the sampler for the binding
func WithSampler(binding uint32, sampler *wgpu.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.samplers[binding] = sampler
	}
}
