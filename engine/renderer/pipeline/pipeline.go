package pipeline

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/hexa/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the render state configured by builder options and, after Build, the GPU objects created from it.
type pipeline struct {
	key string

	vertexShader, fragmentShader shader.Shader

	renderPipeline   *wgpu.RenderPipeline
	bindGroupLayouts []*wgpu.BindGroupLayout
	layouts          map[uint32]wgpu.BindGroupLayoutDescriptor

	depthTestEnabled  bool
	depthWriteEnabled bool
	depthFormat       wgpu.TextureFormat
	blendEnabled      bool
	blendState        *wgpu.BlendState
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	targetFormat      wgpu.TextureFormat
	sampleCount       uint32
}

// Pipeline describes a render pipeline: a vertex and fragment shader pair plus fixed-function state.
// Build turns the description into GPU objects.
type Pipeline interface {
	// Key returns the label of this pipeline.
	Key() string

	// Shader returns the shader bound to the given stage, or nil.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//
	// Returns:
	//   - shader.Shader: the shader for that stage
	Shader(stage shader.Stage) shader.Shader

	// BindGroupLayouts returns the merged layout descriptors of both stages keyed by group index.
	//
	// Returns:
	//   - map[uint32]wgpu.BindGroupLayoutDescriptor: the merged descriptors
	BindGroupLayouts() map[uint32]wgpu.BindGroupLayoutDescriptor

	// BindGroupLayout returns the GPU layout created for a group, or nil before Build.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the created layout
	BindGroupLayout(group uint32) *wgpu.BindGroupLayout

	// RenderPipeline returns the created GPU pipeline, or nil before Build.
	RenderPipeline() *wgpu.RenderPipeline

	// SampleCount returns the multisample count the pipeline renders with.
	SampleCount() uint32

	// DepthFormat returns the depth attachment format, or TextureFormatUndefined when the pipeline has no depth.
	DepthFormat() wgpu.TextureFormat

	// Descriptor assembles the render pipeline descriptor from compiled modules and a pipeline layout.
	//
	// Parameters:
	//   - vs: the compiled vertex module
	//   - fs: the compiled fragment module
	//   - layout: the pipeline layout
	//
	// Returns:
	//   - *wgpu.RenderPipelineDescriptor: the descriptor ready for CreateRenderPipeline
	Descriptor(vs, fs *wgpu.ShaderModule, layout *wgpu.PipelineLayout) *wgpu.RenderPipelineDescriptor

	// Build compiles both shader modules and creates the bind group layouts, pipeline layout and render pipeline.
	//
	// Parameters:
	//   - device: the device that owns the created objects
	//
	// Returns:
	//   - error: if any GPU object could not be created
	Build(device *wgpu.Device) error

	// Release releases the GPU objects created by Build.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline description. Both shaders must be supplied through options.
//
// Parameters:
//   - key: the label of the pipeline
//   - opts: builder options configuring shaders and render state
//
// Returns:
//   - Pipeline: the new pipeline description
func NewPipeline(key string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:               key,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		depthFormat:       wgpu.TextureFormatDepth32Float,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		targetFormat:      wgpu.TextureFormatRGBA8Unorm,
		sampleCount:       1,
		blendState:        &AlphaBlending,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AlphaBlending is straight source-over alpha blending.
var AlphaBlending = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader(stage shader.Stage) shader.Shader {
	switch stage {
	case shader.StageVertex:
		return p.vertexShader
	case shader.StageFragment:
		return p.fragmentShader
	}
	return nil
}

func (p *pipeline) BindGroupLayouts() map[uint32]wgpu.BindGroupLayoutDescriptor {
	if p.layouts == nil && p.vertexShader != nil && p.fragmentShader != nil {
		p.layouts = MergeLayouts(p.vertexShader.BindGroupLayouts(), p.fragmentShader.BindGroupLayouts())
	}
	return p.layouts
}

func (p *pipeline) BindGroupLayout(group uint32) *wgpu.BindGroupLayout {
	if int(group) >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) Descriptor(vs, fs *wgpu.ShaderModule, layout *wgpu.PipelineLayout) *wgpu.RenderPipelineDescriptor {
	var buffers []wgpu.VertexBufferLayout
	if vl := p.vertexShader.VertexLayout(); vl != nil && len(vl.Attributes) > 0 {
		buffers = append(buffers, *vl)
	}

	target := wgpu.ColorTargetState{Format: p.targetFormat, WriteMask: p.writeMask}
	if p.blendEnabled {
		target.Blend = p.blendState
	}

	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.key + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: p.vertexShader.EntryPoint(),
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: p.fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: p.frontFace,
			CullMode:  p.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: p.sampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
	if p.depthFormat != wgpu.TextureFormatUndefined {
		compare := wgpu.CompareFunctionLess
		if !p.depthTestEnabled {
			compare = wgpu.CompareFunctionAlways
		}
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:            p.depthFormat,
			DepthWriteEnabled: p.depthWriteEnabled,
			DepthCompare:      compare,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}
	return desc
}

func (p *pipeline) Build(device *wgpu.Device) error {
	if p.vertexShader == nil || p.fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	vs, err := device.CreateShaderModule(p.vertexShader.Module())
	if err != nil {
		return fmt.Errorf("pipeline %s: vertex module: %w", p.key, err)
	}
	defer vs.Release()
	fs, err := device.CreateShaderModule(p.fragmentShader.Module())
	if err != nil {
		return fmt.Errorf("pipeline %s: fragment module: %w", p.key, err)
	}
	defer fs.Release()

	merged := p.BindGroupLayouts()
	count := 0
	for g := range merged {
		count = max(count, int(g)+1)
	}
	p.bindGroupLayouts = make([]*wgpu.BindGroupLayout, count)
	for g := range p.bindGroupLayouts {
		desc := merged[uint32(g)]
		desc.Label = fmt.Sprintf("%s group %d", p.key, g)
		layout, err := device.CreateBindGroupLayout(&desc)
		if err != nil {
			return fmt.Errorf("pipeline %s: bind group layout %d: %w", p.key, g, err)
		}
		p.bindGroupLayouts[g] = layout
	}

	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.key,
		BindGroupLayouts: p.bindGroupLayouts,
	})
	if err != nil {
		return fmt.Errorf("pipeline %s: layout: %w", p.key, err)
	}
	defer layout.Release()

	p.renderPipeline, err = device.CreateRenderPipeline(p.Descriptor(vs, fs, layout))
	if err != nil {
		return fmt.Errorf("pipeline %s: %w", p.key, err)
	}
	return nil
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	for _, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
		}
	}
	p.bindGroupLayouts = nil
}

// MergeLayouts combines the per-stage layouts of a vertex and fragment shader.
// A binding declared by both stages gets the union of their visibilities.
//
// Parameters:
//   - vertex: layouts reflected from the vertex stage
//   - fragment: layouts reflected from the fragment stage
//
// Returns:
//   - map[uint32]wgpu.BindGroupLayoutDescriptor: the merged layouts with entries sorted by binding
func MergeLayouts(vertex, fragment map[uint32]wgpu.BindGroupLayoutDescriptor) map[uint32]wgpu.BindGroupLayoutDescriptor {
	byGroup := map[uint32]map[uint32]wgpu.BindGroupLayoutEntry{}
	for _, stage := range []map[uint32]wgpu.BindGroupLayoutDescriptor{vertex, fragment} {
		for g, desc := range stage {
			if byGroup[g] == nil {
				byGroup[g] = map[uint32]wgpu.BindGroupLayoutEntry{}
			}
			for _, e := range desc.Entries {
				if existing, ok := byGroup[g][e.Binding]; ok {
					e.Visibility |= existing.Visibility
				}
				byGroup[g][e.Binding] = e
			}
		}
	}

	merged := make(map[uint32]wgpu.BindGroupLayoutDescriptor, len(byGroup))
	for g, entries := range byGroup {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, e)
		}
		slices.SortFunc(list, func(a, b wgpu.BindGroupLayoutEntry) int { return int(a.Binding) - int(b.Binding) })
		merged[g] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return merged
}
