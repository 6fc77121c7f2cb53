package shader

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexInputStruct is the struct name reflected into the vertex buffer layout.
const VertexInputStruct = "VertexInput"

var (
	structRegex   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)
	memberRegex   = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)
	bindingRegex  = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
	entryRegex    = map[Stage]*regexp.Regexp{
		StageVertex:   regexp.MustCompile(`@vertex\s+fn\s+(\w+)`),
		StageFragment: regexp.MustCompile(`@fragment\s+fn\s+(\w+)`),
	}
)

type member struct {
	name     string
	typ      string
	location int // -1 when the member has no @location
	builtin  bool
}

type wgslStruct struct {
	name    string
	members []member
}

// sizeAlign is the host-shareable size and alignment of a WGSL type.
type sizeAlign struct {
	size, align uint64
}

var vertexFormats = map[string]struct {
	format wgpu.VertexFormat
	size   uint64
}{
	"f32": {wgpu.VertexFormatFloat32, 4}, "vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12}, "vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32": {wgpu.VertexFormatUint32, 4}, "vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec3<u32>": {wgpu.VertexFormatUint32x3, 12}, "vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"i32": {wgpu.VertexFormatSint32, 4}, "vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec3<i32>": {wgpu.VertexFormatSint32x3, 12}, "vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
}

var textureDimensions = map[string]wgpu.TextureViewDimension{
	"texture_1d":       wgpu.TextureViewDimension1D,
	"texture_2d":       wgpu.TextureViewDimension2D,
	"texture_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_3d":       wgpu.TextureViewDimension3D,
	"texture_cube":     wgpu.TextureViewDimensionCube,
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// shorthand aliases such as vec3f resolve to their templated spelling
var typeAliases = strings.NewReplacer(
	"vec2f", "vec2<f32>", "vec3f", "vec3<f32>", "vec4f", "vec4<f32>",
	"vec2u", "vec2<u32>", "vec3u", "vec3<u32>", "vec4u", "vec4<u32>",
	"vec2i", "vec2<i32>", "vec3i", "vec3<i32>", "vec4i", "vec4<i32>",
	"mat4x4f", "mat4x4<f32>", "mat3x3f", "mat3x3<f32>",
)

func normalizeType(t string) string {
	return typeAliases.Replace(strings.Join(strings.Fields(t), ""))
}

func stripComments(src string) string {
	var sb strings.Builder
	sb.Grow(len(src))
	depth := 0
	for i := 0; i < len(src); i++ {
		switch {
		case strings.HasPrefix(src[i:], "/*"):
			depth++
			i++
		case depth > 0 && strings.HasPrefix(src[i:], "*/"):
			depth--
			i++
		case depth > 0:
		case strings.HasPrefix(src[i:], "//"):
			for i < len(src) && src[i] != '\n' {
				i++
			}
			sb.WriteByte('\n')
		default:
			sb.WriteByte(src[i])
		}
	}
	return sb.String()
}

func findEntryPoint(src string, stage Stage) string {
	re, ok := entryRegex[stage]
	if !ok {
		return ""
	}
	if m := re.FindStringSubmatch(src); m != nil {
		return m[1]
	}
	return ""
}

func parseStructs(src string) []wgslStruct {
	var out []wgslStruct
	for _, m := range structRegex.FindAllStringSubmatch(src, -1) {
		s := wgslStruct{name: m[1]}
		for _, raw := range splitMembers(m[2]) {
			raw = strings.TrimSpace(raw)
			mm := memberRegex.FindStringSubmatch(raw)
			if mm == nil {
				continue
			}
			f := member{name: mm[1], typ: normalizeType(mm[2]), location: -1}
			if loc := locationRegex.FindStringSubmatch(raw); loc != nil {
				f.location, _ = strconv.Atoi(loc[1])
			}
			f.builtin = strings.Contains(raw, "@builtin")
			s.members = append(s.members, f)
		}
		out = append(out, s)
	}
	return out
}

// splitMembers splits a struct body on commas outside template brackets.
func splitMembers(body string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range body {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, body[start:])
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) / align * align
}

var primitiveLayouts = func() map[string]sizeAlign {
	m := map[string]sizeAlign{}
	for _, scalar := range []string{"f32", "u32", "i32"} {
		m[scalar] = sizeAlign{4, 4}
		m["vec2<"+scalar+">"] = sizeAlign{8, 8}
		m["vec3<"+scalar+">"] = sizeAlign{12, 16}
		m["vec4<"+scalar+">"] = sizeAlign{16, 16}
	}
	for cols := 2; cols <= 4; cols++ {
		for rows := 2; rows <= 4; rows++ {
			col := m[fmt.Sprintf("vec%d<f32>", rows)]
			m[fmt.Sprintf("mat%dx%d<f32>", cols, rows)] = sizeAlign{uint64(cols) * alignUp(col.size, col.align), col.align}
		}
	}
	return m
}()

func typeLayout(t string, known map[string]sizeAlign) (sizeAlign, bool) {
	if l, ok := primitiveLayouts[t]; ok {
		return l, true
	}
	if l, ok := known[t]; ok {
		return l, true
	}
	if !strings.HasPrefix(t, "array<") || !strings.HasSuffix(t, ">") {
		return sizeAlign{}, false
	}
	elem, count, sized := strings.Cut(t[len("array<"):len(t)-1], ",")
	el, ok := typeLayout(elem, known)
	if !ok {
		return sizeAlign{}, false
	}
	stride := alignUp(el.size, el.align)
	if !sized {
		// runtime-sized: one element is the minimum binding
		return sizeAlign{stride, el.align}, true
	}
	n, err := strconv.ParseUint(count, 10, 64)
	if err != nil {
		return sizeAlign{}, false
	}
	return sizeAlign{n * stride, el.align}, true
}

// structLayouts resolves struct sizes, repeating until nested structs settle.
func structLayouts(structs []wgslStruct) map[string]sizeAlign {
	known := map[string]sizeAlign{}
	for progress := true; progress; {
		progress = false
	next:
		for _, s := range structs {
			if _, done := known[s.name]; done {
				continue
			}
			var offset uint64
			align := uint64(1)
			for _, m := range s.members {
				l, ok := typeLayout(m.typ, known)
				if !ok {
					continue next
				}
				offset = alignUp(offset, l.align) + l.size
				align = max(align, l.align)
			}
			known[s.name] = sizeAlign{alignUp(offset, align), align}
			progress = true
		}
	}
	return known
}

func reflectBindings(src string, visibility wgpu.ShaderStage, known map[string]sizeAlign) (map[uint32]wgpu.BindGroupLayoutDescriptor, map[string]Binding, error) {
	entries := map[uint32][]wgpu.BindGroupLayoutEntry{}
	names := map[string]Binding{}
	for _, m := range bindingRegex.FindAllStringSubmatch(src, -1) {
		group, _ := strconv.ParseUint(m[1], 10, 32)
		binding, _ := strconv.ParseUint(m[2], 10, 32)
		b := Binding{Group: uint32(group), Binding: uint32(binding)}
		for name, other := range names {
			if other == b {
				return nil, nil, fmt.Errorf("%s and %s both bound at group %d binding %d", name, m[4], group, binding)
			}
		}
		entry, err := layoutEntry(b.Binding, visibility, strings.TrimSpace(m[3]), normalizeType(m[5]), known)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", m[4], err)
		}
		entries[b.Group] = append(entries[b.Group], entry)
		names[m[4]] = b
	}

	out := make(map[uint32]wgpu.BindGroupLayoutDescriptor, len(entries))
	for g, es := range entries {
		slices.SortFunc(es, func(a, b wgpu.BindGroupLayoutEntry) int { return int(a.Binding) - int(b.Binding) })
		out[g] = wgpu.BindGroupLayoutDescriptor{Entries: es}
	}
	return out, names, nil
}

func layoutEntry(binding uint32, visibility wgpu.ShaderStage, space, typ string, known map[string]sizeAlign) (wgpu.BindGroupLayoutEntry, error) {
	e := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}
	switch {
	case space == "uniform":
		e.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(space, "storage"):
		e.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		if strings.Contains(space, "read_write") {
			e.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
	case space != "":
		return e, fmt.Errorf("unsupported address space %q", space)
	case typ == "sampler":
		e.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		return e, nil
	case strings.HasPrefix(typ, "texture_"):
		base, param, _ := strings.Cut(strings.TrimSuffix(typ, ">"), "<")
		dim, ok := textureDimensions[base]
		if !ok {
			return e, fmt.Errorf("unsupported texture type %q", typ)
		}
		e.Texture.ViewDimension = dim
		e.Texture.SampleType = sampleTypes[param]
		return e, nil
	default:
		return e, fmt.Errorf("unsupported resource type %q", typ)
	}
	if l, ok := typeLayout(typ, known); ok {
		e.Buffer.MinBindingSize = l.size
	}
	return e, nil
}

func reflectVertexLayout(structs []wgslStruct) (*wgpu.VertexBufferLayout, error) {
	idx := slices.IndexFunc(structs, func(s wgslStruct) bool { return s.name == VertexInputStruct })
	if idx < 0 {
		return nil, nil
	}
	layout := &wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
	for _, m := range structs[idx].members {
		if m.builtin {
			continue
		}
		f, ok := vertexFormats[m.typ]
		if !ok || m.location < 0 {
			return nil, fmt.Errorf("%s.%s: %q is not a vertex attribute", VertexInputStruct, m.name, m.typ)
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         f.format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(m.location),
		})
		layout.ArrayStride += f.size
	}
	return layout, nil
}
