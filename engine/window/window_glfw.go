package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/hexa/common"
	"github.com/Carmen-Shannon/hexa/engine/overlay"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent  *engineWindow
	window  *glfw.Window
	running bool
	cursors map[overlay.CursorHint]*glfw.Cursor
}

// newPlatformWindow creates the GLFW window with input callbacks and stores it as the internal window.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	gw := &glfwWindow{
		parent:  w,
		window:  win,
		running: true,
		cursors: map[overlay.CursorHint]*glfw.Cursor{
			overlay.CursorIdle:    glfw.CreateStandardCursor(glfw.ArrowCursor),
			overlay.CursorPointer: glfw.CreateStandardCursor(glfw.HandCursor),
		},
	}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		e := Event{Key: uint32(key), Modifiers: common.ModifierKey(mods)}
		switch action {
		case glfw.Press, glfw.Repeat:
			e.Kind = EventKeyDown
		case glfw.Release:
			e.Kind = EventKeyUp
		default:
			return
		}
		w.dispatch(e)
	})

	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		w.dispatch(Event{Kind: EventScroll, Delta: float32(yoff)})
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		xpos, ypos := win.GetCursorPos()
		e := Event{Button: int(button), X: xpos, Y: ypos, Modifiers: common.ModifierKey(mods)}
		switch action {
		case glfw.Press:
			e.Kind = EventMouseDown
		case glfw.Release:
			e.Kind = EventMouseUp
		default:
			return
		}
		w.dispatch(e)
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		w.dispatch(Event{Kind: EventCursorMoved, X: xpos, Y: ypos})
	})

	// Framebuffer size rather than window size: on high-DPI displays they differ and the
	// surface is configured in pixels.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.dispatch(Event{Kind: EventResize, Width: width, Height: height})
	})

	win.SetContentScaleCallback(func(_ *glfw.Window, x, y float32) {
		w.dispatch(Event{Kind: EventScaleFactorChanged, ScaleFactor: float64(x)})
	})

	w.width, w.height = win.GetFramebufferSize()
	sx, _ := win.GetContentScale()
	w.scaleFactor = float64(sx)
	return nil
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	gw := w.internalWindow.(*glfwWindow)
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func platformSetCursor(w *engineWindow, hint overlay.CursorHint) {
	if w.internalWindow == nil {
		return
	}
	gw := w.internalWindow.(*glfwWindow)
	if c, ok := gw.cursors[hint]; ok {
		gw.window.SetCursor(c)
	}
}

// platformIsRunningCheck returns whether the GLFW window is still active.
// Returns false if the internal window is nil, the running flag is cleared, or GLFW reports ShouldClose.
func platformIsRunningCheck(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	gw := w.internalWindow.(*glfwWindow)
	return gw.running && !gw.window.ShouldClose()
}

func platformRequestClose(w *engineWindow) {
	if w.internalWindow == nil {
		return
	}
	gw := w.internalWindow.(*glfwWindow)
	gw.running = false
	gw.window.SetShouldClose(true)
}

// platformCloseWindow destroys the cursors and the GLFW window and terminates the GLFW library.
func platformCloseWindow(w *engineWindow) error {
	if w.internalWindow == nil {
		return fmt.Errorf("window is not initialized")
	}
	gw := w.internalWindow.(*glfwWindow)
	gw.running = false
	for _, c := range gw.cursors {
		c.Destroy()
	}
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages waits for events up to the wait timeout, or polls when it is 0.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#WaitEventsTimeout
func platformProcessMessages(w *engineWindow) bool {
	if w.waitTimeout > 0 {
		glfw.WaitEventsTimeout(w.waitTimeout.Seconds())
	} else {
		glfw.PollEvents()
	}
	return platformIsRunningCheck(w)
}
