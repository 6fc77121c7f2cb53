// Package resource owns the GPU objects behind one render pipeline and the per-frame uploads into them.
package resource

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/hexa/common"
	"github.com/Carmen-Shannon/hexa/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/hexa/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/hexa/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultCapacity is the number of instance records an instance buffer holds.
const DefaultCapacity = 250

// ErrCapacityExceeded is wrapped by every CapacityError.
var ErrCapacityExceeded = errors.New("instance capacity exceeded")

// CapacityError reports an instance upload larger than the buffer behind it.
type CapacityError struct {
	Label     string
	Requested uint32
	Capacity  uint32
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: %d instances requested, capacity is %d", e.Label, e.Requested, e.Capacity)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// CheckCapacity returns a *CapacityError when count does not fit into capacity.
func CheckCapacity(label string, count, capacity uint32) error {
	if count > capacity {
		return &CapacityError{Label: label, Requested: count, Capacity: capacity}
	}
	return nil
}

type binding struct {
	name string
	loc  shader.Binding
}

type manager struct {
	label    string
	device   *wgpu.Device
	pipeline pipeline.Pipeline

	providers []bind_group_provider.BindGroupProvider

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32
	vertexCount  uint32

	uniform   *binding
	instances *binding
	texture   *binding
	sampler   *binding

	stride        uint64
	capacity      uint32
	instanceCount uint32
	// pendingCount replaces instanceCount once the frame that copies it has been submitted
	pendingCount uint32
	hasPending   bool

	// staging buffers stay alive until the encoder that copies from them is submitted
	staging []*wgpu.Buffer

	// construction inputs consumed by NewManager
	vertexData, indexData []byte
	textureView           *wgpu.TextureView
	samplerData           common.SamplerStagingData
}

// Manager holds the static resources of a pipeline (mesh, texture, sampler, layouts) and its
// mutable ones (uniform and instance buffers), and records draws against them.
type Manager interface {
	// Label returns the debug label.
	Label() string

	// Pipeline returns the pipeline the manager draws with.
	Pipeline() pipeline.Pipeline

	// Capacity returns how many instance records fit into the instance buffer, or 0 when the pipeline is not instanced.
	Capacity() uint32

	// InstanceCount returns the number of instances in the last submitted upload.
	InstanceCount() uint32

	// UploadUniform records a staging copy of data into the uniform buffer.
	//
	// Parameters:
	//   - encoder: the frame's command encoder
	//   - data: the marshalled uniform
	//
	// Returns:
	//   - error: if the manager has no uniform or the staging buffer could not be created
	UploadUniform(encoder *wgpu.CommandEncoder, data []byte) error

	// UploadInstances records a staging copy of count instance records. Draw uses them for the rest of
	// the frame; they become the live set only when FinishFrame reports the frame as submitted.
	// The capacity check runs before anything is recorded, so a rejected upload leaves the previous set drawn.
	//
	// Parameters:
	//   - encoder: the frame's command encoder
	//   - data: count records back to back
	//   - count: the number of records in data
	//
	// Returns:
	//   - error: a *CapacityError wrapping ErrCapacityExceeded, or a staging failure
	UploadInstances(encoder *wgpu.CommandEncoder, data []byte, count uint32) error

	// SetTexture points the texture binding at a new view and rebuilds its bind group.
	//
	// Parameters:
	//   - view: the texture view, still owned by the caller
	//
	// Returns:
	//   - error: if the manager has no texture binding or the bind group could not be rebuilt
	SetTexture(view *wgpu.TextureView) error

	// Draw records the pipeline's draw into pass. An instanced manager with no instances draws nothing.
	//
	// Parameters:
	//   - pass: the render pass being recorded
	Draw(pass *wgpu.RenderPassEncoder)

	// FinishFrame commits the frame's instance upload when submitted is true and discards it otherwise,
	// then releases the frame's staging buffers.
	//
	// Parameters:
	//   - submitted: whether the encoder holding this frame's copies reached the queue
	FinishFrame(submitted bool)

	// Release releases every GPU object the manager owns, the pipeline included.
	Release()
}

var _ Manager = &manager{}

// NewManager builds the pipeline and every resource the options describe.
//
// Parameters:
//   - device: the device that owns the created objects
//   - queue: the queue static data is written through
//   - p: the unbuilt pipeline description
//   - opts: options naming the pipeline's uniform, instance, texture and sampler bindings
//
// Returns:
//   - Manager: the ready-to-draw manager
//   - error: if a named binding does not exist or a GPU object could not be created
func NewManager(device *wgpu.Device, queue *wgpu.Queue, p pipeline.Pipeline, opts ...ManagerBuilderOption) (Manager, error) {
	m := &manager{
		label:    p.Key(),
		device:   device,
		pipeline: p,
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.resolve(); err != nil {
		return nil, err
	}
	if err := p.Build(device); err != nil {
		return nil, err
	}
	if err := m.initMesh(queue); err != nil {
		return nil, err
	}
	if err := m.initBindGroups(); err != nil {
		return nil, err
	}
	m.vertexData, m.indexData = nil, nil
	return m, nil
}

func (m *manager) Label() string {
	return m.label
}

func (m *manager) Pipeline() pipeline.Pipeline {
	return m.pipeline
}

func (m *manager) Capacity() uint32 {
	if m.instances == nil {
		return 0
	}
	return m.capacity
}

func (m *manager) InstanceCount() uint32 {
	return m.instanceCount
}

func (m *manager) UploadUniform(encoder *wgpu.CommandEncoder, data []byte) error {
	if m.uniform == nil {
		return fmt.Errorf("%s: no uniform binding", m.label)
	}
	return m.stageCopy(encoder, m.buffer(m.uniform), data)
}

func (m *manager) UploadInstances(encoder *wgpu.CommandEncoder, data []byte, count uint32) error {
	if m.instances == nil {
		return fmt.Errorf("%s: no instance binding", m.label)
	}
	if err := CheckCapacity(m.label, count, m.capacity); err != nil {
		return err
	}
	if uint64(len(data)) != uint64(count)*m.stride {
		return fmt.Errorf("%s: %d bytes is not %d records of %d bytes", m.label, len(data), count, m.stride)
	}
	if count > 0 {
		if err := m.stageCopy(encoder, m.buffer(m.instances), data); err != nil {
			return err
		}
	}
	m.pendingCount = count
	m.hasPending = true
	return nil
}

func (m *manager) SetTexture(view *wgpu.TextureView) error {
	if m.texture == nil {
		return fmt.Errorf("%s: no texture binding", m.label)
	}
	g := m.texture.loc.Group
	m.providers[g].SetTextureView(m.texture.loc.Binding, view)
	return m.providers[g].Build(m.device, m.pipeline.BindGroupLayout(g), m.pipeline.BindGroupLayouts()[g])
}

func (m *manager) Draw(pass *wgpu.RenderPassEncoder) {
	instances := uint32(1)
	if m.instances != nil {
		instances = m.instanceCount
		if m.hasPending {
			instances = m.pendingCount
		}
		if instances == 0 {
			return
		}
	}

	pass.SetPipeline(m.pipeline.RenderPipeline())
	for g, provider := range m.providers {
		pass.SetBindGroup(uint32(g), provider.BindGroup(), nil)
	}
	if m.vertexBuffer == nil {
		pass.Draw(m.vertexCount, instances, 0, 0)
		return
	}
	pass.SetVertexBuffer(0, m.vertexBuffer, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(m.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(m.indexCount, instances, 0, 0, 0)
}

func (m *manager) FinishFrame(submitted bool) {
	if m.hasPending && submitted {
		m.instanceCount = m.pendingCount
	}
	m.pendingCount, m.hasPending = 0, false
	m.releaseStaging()
}

func (m *manager) releaseStaging() {
	for _, buf := range m.staging {
		buf.Release()
	}
	m.staging = m.staging[:0]
}

func (m *manager) Release() {
	m.releaseStaging()
	for _, p := range m.providers {
		p.Release()
	}
	m.providers = nil
	for _, buf := range []*wgpu.Buffer{m.vertexBuffer, m.indexBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	m.vertexBuffer, m.indexBuffer = nil, nil
	m.pipeline.Release()
}

func (m *manager) buffer(b *binding) *wgpu.Buffer {
	return m.providers[b.loc.Group].Buffer(b.loc.Binding)
}

func (m *manager) stageCopy(encoder *wgpu.CommandEncoder, dst *wgpu.Buffer, data []byte) error {
	staging, err := m.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    m.label + " Staging",
		Contents: data,
		Usage:    wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("%s: staging buffer: %w", m.label, err)
	}
	m.staging = append(m.staging, staging)
	encoder.CopyBufferToBuffer(staging, 0, dst, 0, uint64(len(data)))
	return nil
}

// resolve maps binding names onto group and binding indices using either stage.
func (m *manager) resolve() error {
	for _, b := range []*binding{m.uniform, m.instances, m.texture, m.sampler} {
		if b == nil {
			continue
		}
		loc, ok := m.pipeline.Shader(shader.StageVertex).Lookup(b.name)
		if !ok {
			loc, ok = m.pipeline.Shader(shader.StageFragment).Lookup(b.name)
		}
		if !ok {
			return fmt.Errorf("%s: shader declares no binding %q", m.label, b.name)
		}
		b.loc = loc
	}
	return nil
}

func (m *manager) initMesh(queue *wgpu.Queue) error {
	if len(m.vertexData) == 0 {
		return nil
	}
	var err error
	m.vertexBuffer, err = m.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    m.label + " Vertex Buffer",
		Contents: m.vertexData,
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return fmt.Errorf("%s: vertex buffer: %w", m.label, err)
	}
	m.indexBuffer, err = m.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    m.label + " Index Buffer",
		Contents: m.indexData,
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return fmt.Errorf("%s: index buffer: %w", m.label, err)
	}
	return nil
}

func (m *manager) initBindGroups() error {
	layouts := m.pipeline.BindGroupLayouts()
	groups := 0
	for g := range layouts {
		groups = max(groups, int(g)+1)
	}
	m.providers = make([]bind_group_provider.BindGroupProvider, groups)
	for g := range m.providers {
		var opts []bind_group_provider.BindGroupProviderOption
		if m.instances != nil && m.instances.loc.Group == uint32(g) {
			opts = append(opts, bind_group_provider.WithBufferSize(m.instances.loc.Binding, m.stride*uint64(m.capacity)))
		}
		if m.texture != nil && m.texture.loc.Group == uint32(g) {
			opts = append(opts, bind_group_provider.WithTextureView(m.texture.loc.Binding, m.textureView))
		}
		if m.sampler != nil && m.sampler.loc.Group == uint32(g) {
			s, err := m.device.CreateSampler(SamplerDescriptor(m.label+" Sampler", m.samplerData))
			if err != nil {
				return fmt.Errorf("%s: sampler: %w", m.label, err)
			}
			opts = append(opts, bind_group_provider.WithSampler(m.sampler.loc.Binding, s))
		}

		m.providers[g] = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s group %d", m.label, g), opts...)
		if err := m.providers[g].Build(m.device, m.pipeline.BindGroupLayout(uint32(g)), layouts[uint32(g)]); err != nil {
			return err
		}
	}
	return nil
}

// SamplerDescriptor fills unset sampler fields with clamp-to-edge addressing and linear filtering.
func SamplerDescriptor(label string, s common.SamplerStagingData) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  common.Coalesce(s.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(s.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(s.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(s.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(s.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(s.MipmapFilter, wgpu.MipmapFilterModeNearest),
		LodMinClamp:   s.LodMinClamp,
		LodMaxClamp:   common.Coalesce(s.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(s.MaxAnisotropy, 1),
	}
}
