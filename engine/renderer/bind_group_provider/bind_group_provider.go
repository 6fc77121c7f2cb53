package bind_group_provider

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	label string

	bindGroup *wgpu.BindGroup

	// buffers and samplers are owned and released by the provider.
	buffers     map[uint32]*wgpu.Buffer
	bufferSizes map[uint32]uint64
	samplers    map[uint32]*wgpu.Sampler
	// textureViews are borrowed; their textures belong to whoever created them.
	textureViews map[uint32]*wgpu.TextureView
}

// BindGroupProvider holds the resources behind one bind group and assembles the group from a reflected layout.
//
// Usage pattern:
//  1. Create the provider and attach texture views and samplers for handle bindings.
//  2. Call Build with the pipeline's layout for the group; missing buffers are created from MinBindingSize
//     or from a size set with WithBufferSize.
//  3. Bind BindGroup() on a render pass.
//  4. Replace a texture view with SetTextureView and call Build again to rebind it.
type BindGroupProvider interface {
	// Label returns the debug label for this provider.
	Label() string

	// BindGroup returns the bind group created by the last Build, or nil.
	BindGroup() *wgpu.BindGroup

	// Buffer returns the buffer for a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding uint32) *wgpu.Buffer

	// TextureView returns the texture view for a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding uint32) *wgpu.TextureView

	// Sampler returns the sampler for a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding uint32) *wgpu.Sampler

	// SetTextureView attaches a texture view to a binding. The caller keeps ownership of the view.
	//
	// Parameters:
	//   - binding: the binding index
	//   - view: the texture view
	SetTextureView(binding uint32, view *wgpu.TextureView)

	// SetSampler attaches a sampler to a binding. The provider takes ownership and releases any previous one.
	//
	// Parameters:
	//   - binding: the binding index
	//   - sampler: the sampler
	SetSampler(binding uint32, sampler *wgpu.Sampler)

	// Validate reports the first handle binding in the layout that has no resource attached.
	//
	// Parameters:
	//   - layout: the reflected layout of the group
	//
	// Returns:
	//   - error: nil when every texture and sampler binding is populated
	Validate(layout wgpu.BindGroupLayoutDescriptor) error

	// Build creates any missing buffers and (re)creates the bind group.
	//
	// Parameters:
	//   - device: the device that owns the created objects
	//   - layout: the GPU layout of the group
	//   - desc: the reflected descriptor the layout was created from
	//
	// Returns:
	//   - error: if a binding has no resource or a GPU object could not be created
	Build(device *wgpu.Device, layout *wgpu.BindGroupLayout, desc wgpu.BindGroupLayoutDescriptor) error

	// Release releases the bind group, buffers and samplers held by the provider.
	Release()
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label used for every object the provider creates
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[uint32]*wgpu.Buffer),
		bufferSizes:  make(map[uint32]uint64),
		samplers:     make(map[uint32]*wgpu.Sampler),
		textureViews: make(map[uint32]*wgpu.TextureView),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding uint32) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding uint32) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding uint32) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) SetTextureView(binding uint32, view *wgpu.TextureView) {
	p.textureViews[binding] = view
}

func (p *bindGroupProvider) SetSampler(binding uint32, sampler *wgpu.Sampler) {
	if old := p.samplers[binding]; old != nil && old != sampler {
		old.Release()
	}
	p.samplers[binding] = sampler
}

func (p *bindGroupProvider) Validate(layout wgpu.BindGroupLayoutDescriptor) error {
	for _, entry := range layout.Entries {
		switch {
		case isTexture(entry) && p.textureViews[entry.Binding] == nil:
			return fmt.Errorf("%s: texture binding %d has no texture view", p.label, entry.Binding)
		case isSampler(entry) && p.samplers[entry.Binding] == nil:
			return fmt.Errorf("%s: sampler binding %d has no sampler", p.label, entry.Binding)
		case isBuffer(entry) && p.buffers[entry.Binding] == nil && p.bufferSize(entry) == 0:
			return fmt.Errorf("%s: buffer binding %d has no size", p.label, entry.Binding)
		}
	}
	return nil
}

func (p *bindGroupProvider) Build(device *wgpu.Device, layout *wgpu.BindGroupLayout, desc wgpu.BindGroupLayoutDescriptor) error {
	if err := p.Validate(desc); err != nil {
		return err
	}

	entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
	for i, entry := range desc.Entries {
		entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding}
		switch {
		case isTexture(entry):
			entries[i].TextureView = p.textureViews[entry.Binding]
		case isSampler(entry):
			entries[i].Sampler = p.samplers[entry.Binding]
		default:
			buf := p.buffers[entry.Binding]
			if buf == nil {
				var err error
				buf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", p.label, entry.Binding),
					Size:  p.bufferSize(entry),
					Usage: bufferUsage(entry.Buffer.Type),
				})
				if err != nil {
					return fmt.Errorf("%s: buffer binding %d: %w", p.label, entry.Binding, err)
				}
				p.buffers[entry.Binding] = buf
			}
			entries[i].Buffer = buf
			entries[i].Size = wgpu.WholeSize
		}
	}

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.label + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%s: bind group: %w", p.label, err)
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	p.bindGroup = bindGroup
	return nil
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for i, buf := range p.buffers {
		buf.Release()
		delete(p.buffers, i)
	}
	for i, s := range p.samplers {
		s.Release()
		delete(p.samplers, i)
	}
	clear(p.textureViews)
}

func (p *bindGroupProvider) bufferSize(entry wgpu.BindGroupLayoutEntry) uint64 {
	if size, ok := p.bufferSizes[entry.Binding]; ok {
		return size
	}
	return entry.Buffer.MinBindingSize
}

func isTexture(entry wgpu.BindGroupLayoutEntry) bool {
	return entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
}

func isSampler(entry wgpu.BindGroupLayoutEntry) bool {
	return entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined
}

func isBuffer(entry wgpu.BindGroupLayoutEntry) bool {
	return entry.Buffer.Type != wgpu.BufferBindingTypeUndefined
}

// bufferUsage picks the usage for a provider-created buffer. Every buffer is a copy destination
// because updates arrive through staging copies.
func bufferUsage(t wgpu.BufferBindingType) wgpu.BufferUsage {
	if t == wgpu.BufferBindingTypeUniform {
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	}
	return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
}
