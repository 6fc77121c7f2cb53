package resource

import (
	"github.com/Carmen-Shannon/hexa/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// ManagerBuilderOption is a functional option used to configure a Manager during construction.
type ManagerBuilderOption func(*manager)

// WithMesh uploads an indexed mesh drawn by every instance.
//
// Parameters:
//   - vertexData: the marshalled vertices
//   - indexData: the marshalled 32-bit indices
//   - indexCount: the number of indices
//
// Returns:
//   - ManagerBuilderOption: a function that sets the mesh
func WithMesh(vertexData, indexData []byte, indexCount uint32) ManagerBuilderOption {
	return func(m *manager) {
		m.vertexData = vertexData
		m.indexData = indexData
		m.indexCount = indexCount
	}
}

// WithVertexCount makes the manager meshless: vertices are generated in the shader from the vertex index.
//
// Parameters:
//   - count: the number of vertices per draw
//
// Returns:
//   - ManagerBuilderOption: a function that sets the vertex count
func WithVertexCount(count uint32) ManagerBuilderOption {
	return func(m *manager) {
		m.vertexCount = count
	}
}

// WithUniform names the uniform buffer binding.
//
// Parameters:
//   - name: the WGSL variable name of the uniform
//
// Returns:
//   - ManagerBuilderOption: a function that sets the uniform binding
func WithUniform(name string) ManagerBuilderOption {
	return func(m *manager) {
		m.uniform = &binding{name: name}
	}
}

// WithInstances names the instance storage binding and its record stride.
//
// Parameters:
//   - name: the WGSL variable name of the storage array
//   - stride: the size of one record in bytes
//
// Returns:
//   - ManagerBuilderOption: a function that sets the instance binding
func WithInstances(name string, stride uint64) ManagerBuilderOption {
	return func(m *manager) {
		m.instances = &binding{name: name}
		m.stride = stride
	}
}

// WithCapacity overrides DefaultCapacity.
//
// Parameters:
//   - capacity: the number of records the instance buffer holds
//
// Returns:
//   - ManagerBuilderOption: a function that sets the capacity
func WithCapacity(capacity uint32) ManagerBuilderOption {
	return func(m *manager) {
		m.capacity = capacity
	}
}

// WithTexture names the texture binding and its initial view.
//
// Parameters:
//   - name: the WGSL variable name of the texture
//   - view: the view bound initially, owned by the caller
//
// Returns:
//   - ManagerBuilderOption: a function that sets the texture binding
func WithTexture(name string, view *wgpu.TextureView) ManagerBuilderOption {
	return func(m *manager) {
		m.texture = &binding{name: name}
		m.textureView = view
	}
}

// WithSampler names the sampler binding and the sampler's configuration.
//
// Parameters:
//   - name: the WGSL variable name of the sampler
//   - data: the sampler configuration, zero fields take defaults
//
// Returns:
//   - ManagerBuilderOption: a function that sets the sampler binding
func WithSampler(name string, data common.SamplerStagingData) ManagerBuilderOption {
	return func(m *manager) {
		m.sampler = &binding{name: name}
		m.samplerData = data
	}
}
