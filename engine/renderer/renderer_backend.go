package renderer

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. This is the default.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// MSAASampleCount is the number of samples per pixel of the world pass.
// WebGPU only guarantees 1 and 4, so those are the only accepted values.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing; the world pass draws straight into the resolve target.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

var (
	// ErrFrameDropped is returned by Render when no swapchain texture could be acquired after a retry.
	ErrFrameDropped = errors.New("renderer: frame dropped")

	// ErrFrameInFlight is returned when a frame is begun before the previous one was presented.
	ErrFrameInFlight = errors.New("renderer: previous frame not yet presented")
)

// ParseMSAA validates a sample count read from configuration.
//
// Parameters:
//   - n: the requested sample count
//
// Returns:
//   - MSAASampleCount: the sample count
//   - error: if n is neither 1 nor 4
func ParseMSAA(n int) (MSAASampleCount, error) {
	switch n {
	case 1:
		return MSAAOff, nil
	case 4:
		return MSAA4x, nil
	}
	return 0, fmt.Errorf("renderer: unsupported MSAA sample count %d (want 1 or 4)", n)
}

func (m MSAASampleCount) valid() bool {
	return m == MSAAOff || m == MSAA4x
}

func (p PresentMode) wgpu() wgpu.PresentMode {
	if p == PresentModeUncapped {
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

// acquireWithRetry calls acquire, and once more after reconfigure when the first attempt fails.
// A second failure drops the frame.
func acquireWithRetry[T any](acquire func() (T, error), reconfigure func()) (T, error) {
	v, err := acquire()
	if err == nil {
		return v, nil
	}
	if reconfigure != nil {
		reconfigure()
	}
	v, retryErr := acquire()
	if retryErr == nil {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %w", ErrFrameDropped, errors.Join(err, retryErr))
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
