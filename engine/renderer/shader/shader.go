// Package shader composes WGSL sources and reflects the pipeline metadata they declare.
package shader

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// Stage identifies the pipeline stage a shader entry point runs in.
type Stage int

const (
	// StageVertex selects the @vertex entry point and reflects the vertex input layout.
	StageVertex Stage = iota
	// StageFragment selects the @fragment entry point.
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) visibility() wgpu.ShaderStage {
	if s == StageVertex {
		return wgpu.ShaderStageVertex
	}
	return wgpu.ShaderStageFragment
}

type shader struct {
	key          string
	source       string
	stage        Stage
	entryPoint   string
	groups       map[uint32]wgpu.BindGroupLayoutDescriptor
	bindingNames map[string]Binding
	vertexLayout *wgpu.VertexBufferLayout
	module       *wgpu.ShaderModuleDescriptor
}

// Binding locates a named resource declaration.
type Binding struct {
	Group   uint32
	Binding uint32
}

// Shader is a single-stage view over a WGSL module with everything needed to build a render pipeline.
type Shader interface {
	// Key returns the shader's label.
	Key() string

	// Source returns the composed WGSL source.
	Source() string

	// Stage returns the stage this shader was built for.
	Stage() Stage

	// EntryPoint returns the name of the entry function for the stage.
	EntryPoint() string

	// BindGroupLayouts returns the reflected layouts keyed by group index.
	// Entries carry the visibility of this shader's stage only.
	BindGroupLayouts() map[uint32]wgpu.BindGroupLayoutDescriptor

	// Lookup returns the group and binding of a resource declared under name.
	//
	// Parameters:
	//   - name: the WGSL variable name
	//
	// Returns:
	//   - Binding: the resource location
	//   - bool: false if no resource of that name exists
	Lookup(name string) (Binding, bool)

	// VertexLayout returns the per-vertex buffer layout, or nil when the stage reads no vertex attributes.
	VertexLayout() *wgpu.VertexBufferLayout

	// Module returns the module descriptor ready for device.CreateShaderModule.
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// Compose concatenates WGSL fragments, typically shared struct definitions followed by a shader body.
func Compose(parts ...string) string {
	return strings.Join(parts, "\n")
}

// NewShader reflects a WGSL source for a single stage.
//
// Parameters:
//   - key: a label used for the module and for error messages
//   - stage: the stage whose entry point is reflected
//   - source: the complete WGSL source
//
// Returns:
//   - Shader: the reflected shader
//   - error: if the source has no entry point for the stage or declares a malformed binding
func NewShader(key string, stage Stage, source string) (Shader, error) {
	cleaned := stripComments(source)
	entry := findEntryPoint(cleaned, stage)
	if entry == "" {
		return nil, fmt.Errorf("shader %s: no @%s entry point", key, stage)
	}

	structs := parseStructs(cleaned)
	groups, names, err := reflectBindings(cleaned, stage.visibility(), structLayouts(structs))
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:          key,
		source:       source,
		stage:        stage,
		entryPoint:   entry,
		groups:       groups,
		bindingNames: names,
		module: &wgpu.ShaderModuleDescriptor{
			Label:          key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: source},
		},
	}
	if stage == StageVertex {
		layout, err := reflectVertexLayout(structs)
		if err != nil {
			return nil, fmt.Errorf("shader %s: %w", key, err)
		}
		s.vertexLayout = layout
	}
	return s, nil
}

// MustNewShader is NewShader for embedded sources; a reflection failure is a programming error and panics.
func MustNewShader(key string, stage Stage, source string) Shader {
	s, err := NewShader(key, stage, source)
	if err != nil {
		panic(err.Error())
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Stage() Stage {
	return s.stage
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayouts() map[uint32]wgpu.BindGroupLayoutDescriptor {
	return s.groups
}

func (s *shader) Lookup(name string) (Binding, bool) {
	b, ok := s.bindingNames[name]
	return b, ok
}

func (s *shader) VertexLayout() *wgpu.VertexBufferLayout {
	return s.vertexLayout
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
