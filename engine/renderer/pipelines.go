package renderer

import (
	"github.com/Carmen-Shannon/hexa/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/hexa/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func stages(key, source string) pipeline.PipelineBuilderOption {
	return pipeline.WithShaders(
		shader.MustNewShader(key, shader.StageVertex, source),
		shader.MustNewShader(key, shader.StageFragment, source),
	)
}

// newWorldPipeline describes a depth-tested instanced pipeline drawing into the scene target.
func newWorldPipeline(key, source string, sampleCount MSAASampleCount, cull wgpu.CullMode) pipeline.Pipeline {
	return pipeline.NewPipeline(key,
		stages(key, source),
		pipeline.WithDepthTestEnabled(true),
		pipeline.WithDepthWriteEnabled(true),
		pipeline.WithDepthFormat(DepthFormat),
		pipeline.WithCullMode(cull),
		pipeline.WithFrontFace(wgpu.FrontFaceCW),
		pipeline.WithTargetFormat(SceneFormat),
		pipeline.WithSampleCount(uint32(sampleCount)),
	)
}

// newScreenPipeline describes a meshless pipeline drawing into the swapchain without depth.
func newScreenPipeline(key, source string, format wgpu.TextureFormat, blend bool) pipeline.Pipeline {
	return pipeline.NewPipeline(key,
		stages(key, source),
		pipeline.WithDepthFormat(wgpu.TextureFormatUndefined),
		pipeline.WithBlendEnabled(blend),
		pipeline.WithTargetFormat(format),
	)
}

// newPipelines describes the four pipelines of a frame, in draw order.
func newPipelines(surfaceFormat wgpu.TextureFormat, sampleCount MSAASampleCount) (hex, sprite, post, overlay pipeline.Pipeline) {
	src := shaderSources()
	hex = newWorldPipeline("hex", src["hex"], sampleCount, wgpu.CullModeBack)
	sprite = newWorldPipeline("sprite", src["sprite"], sampleCount, wgpu.CullModeNone)
	post = newScreenPipeline("post", src["fullscreen"], surfaceFormat, false)
	overlay = newScreenPipeline("overlay", src["overlay"], surfaceFormat, true)
	return hex, sprite, post, overlay
}
