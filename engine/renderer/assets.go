package renderer

import (
	"embed"
	"fmt"

	"github.com/Carmen-Shannon/hexa/engine/camera"
	"github.com/Carmen-Shannon/hexa/engine/geometry"
	"github.com/Carmen-Shannon/hexa/engine/overlay"
	"github.com/Carmen-Shannon/hexa/engine/renderer/shader"
	"github.com/Carmen-Shannon/hexa/engine/renderer/texture"
)

//go:embed assets/shaders/*.wgsl
var shaderFS embed.FS

//go:embed assets/textures/*.png
var textureFS embed.FS

// HexTextureLayers names the hex texture array layers in layer order.
// The terrain generator's hat and butt indices point into this order.
var HexTextureLayers = []string{"ice_hat", "ice_butt", "snow_hat", "snow_butt"}

// SpriteTextureLayers names the sprite texture array layers in layer order.
var SpriteTextureLayers = []string{"stump"}

func loadShaderSource(name string) string {
	src, err := shaderFS.ReadFile("assets/shaders/" + name + ".wgsl")
	if err != nil {
		panic(fmt.Sprintf("renderer: missing shader %s: %v", name, err))
	}
	return string(src)
}

// shaderSources returns each pipeline's WGSL with the canonical struct definitions it uses prepended.
func shaderSources() map[string]string {
	return map[string]string{
		"hex":        shader.Compose(camera.GPUCameraUniformSource, geometry.GPUHexInstanceSource, loadShaderSource("hex")),
		"sprite":     shader.Compose(camera.GPUBillboardUniformSource, geometry.GPUSpriteInstanceSource, loadShaderSource("quad")),
		"fullscreen": loadShaderSource("fullscreen"),
		"overlay":    shader.Compose(overlay.GPUOverlayUniformSource, loadShaderSource("overlay")),
	}
}

func loadTextureLayers(names []string) ([]texture.Layer, error) {
	layers := make([]texture.Layer, len(names))
	for i, name := range names {
		data, err := textureFS.ReadFile("assets/textures/" + name + ".png")
		if err != nil {
			return nil, fmt.Errorf("texture layer %s: %w", name, err)
		}
		layers[i] = texture.Layer{Name: name, Data: data}
	}
	return layers, nil
}
