// Package window wraps the platform window and turns its callbacks into Events.
package window

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/hexa/common"
	"github.com/Carmen-Shannon/hexa/engine/overlay"
	"github.com/cogentcore/webgpu/wgpu"
)

// EventKind identifies what an Event carries.
type EventKind int

const (
	// EventKeyDown is a key press or auto-repeat. Key and Modifiers are set.
	EventKeyDown EventKind = iota
	// EventKeyUp is a key release. Key and Modifiers are set.
	EventKeyUp
	// EventResize is a framebuffer size change. Width and Height are set, either may be 0.
	EventResize
	// EventCursorMoved is a cursor move. X and Y are set in window coordinates.
	EventCursorMoved
	// EventMouseDown is a button press. Button, X and Y are set.
	EventMouseDown
	// EventMouseUp is a button release. Button, X and Y are set.
	EventMouseUp
	// EventScroll is a wheel movement. Delta is positive when scrolling up. Modifiers is the
	// state recorded from the last key or button event.
	EventScroll
	// EventScaleFactorChanged is a content scale change. ScaleFactor is set.
	EventScaleFactorChanged
)

func (k EventKind) String() string {
	switch k {
	case EventKeyDown:
		return "key_down"
	case EventKeyUp:
		return "key_up"
	case EventResize:
		return "resize"
	case EventCursorMoved:
		return "cursor_moved"
	case EventMouseDown:
		return "mouse_down"
	case EventMouseUp:
		return "mouse_up"
	case EventScroll:
		return "scroll"
	case EventScaleFactorChanged:
		return "scale_factor_changed"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one input or window event. Only the fields named by Kind are meaningful.
type Event struct {
	Kind        EventKind
	Key         uint32
	Modifiers   common.ModifierKey
	Width       int
	Height      int
	X, Y        float64
	Button      int
	Delta       float32
	ScaleFactor float64
}

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetEventCallback sets the function every input and window event is delivered to, on the window thread.
	//
	// Parameters:
	//   - callback: function receiving each event (or nil to drop events)
	SetEventCallback(callback func(Event))

	// SetCursor switches the cursor shape.
	//
	// Parameters:
	//   - hint: the cursor the panel asks for
	SetCursor(hint overlay.CursorHint)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose makes the message loop exit after the current iteration.
	RequestClose()

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop on the calling thread.
	// Blocks until the window is closed. Each iteration waits up to the configured wait timeout for
	// events (polling when it is 0), dispatches them, then calls the update callback.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// ScaleFactor returns the content scale of the monitor the window is on.
	ScaleFactor() float64

	// Modifiers returns the modifier keys held as of the last key or mouse button event.
	Modifiers() common.ModifierKey
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	title string

	maxWidth, maxHeight int
	minWidth, minHeight int

	// width and height are the framebuffer size in pixels.
	width, height int

	scaleFactor float64

	// modifiers is the held set from the last key or button event; scroll and cursor events carry none.
	modifiers common.ModifierKey

	// waitTimeout bounds how long an idle loop iteration sleeps in the event queue; 0 polls.
	waitTimeout time.Duration

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate func()
	onEvent  func(Event)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:       "hexa",
		maxWidth:    3840,
		maxHeight:   2160,
		minWidth:    320,
		minHeight:   240,
		width:       1280,
		height:      720,
		scaleFactor: 1,
		waitTimeout: 16 * time.Millisecond,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetEventCallback(callback func(Event)) {
	w.onEvent = callback
}

func (w *engineWindow) SetCursor(hint overlay.CursorHint) {
	platformSetCursor(w, hint)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) ScaleFactor() float64 {
	return w.scaleFactor
}

func (w *engineWindow) Modifiers() common.ModifierKey {
	return w.modifiers
}

// dispatch hands e to the event callback and keeps the cached size, scale and modifiers current.
// Events without modifier state of their own get the held set.
// applyModifierKey folds a modifier key's own press or release into mods. Some platforms report the
// state from before the event, so pressing Shift alone would otherwise arrive without ModShift.
func applyModifierKey(mods common.ModifierKey, key uint32, down bool) common.ModifierKey {
	var bit common.ModifierKey
	switch key {
	case common.KeyLeftShift, common.KeyRightShift:
		bit = common.ModShift
	case common.KeyLeftControl, common.KeyRightControl:
		bit = common.ModControl
	default:
		return mods
	}
	if down {
		return mods | bit
	}
	return mods &^ bit
}

func (w *engineWindow) dispatch(e Event) {
	switch e.Kind {
	case EventResize:
		w.width, w.height = e.Width, e.Height
	case EventScaleFactorChanged:
		w.scaleFactor = e.ScaleFactor
	case EventKeyDown:
		e.Modifiers = applyModifierKey(e.Modifiers, e.Key, true)
		w.modifiers = e.Modifiers
	case EventKeyUp:
		e.Modifiers = applyModifierKey(e.Modifiers, e.Key, false)
		w.modifiers = e.Modifiers
	case EventMouseDown, EventMouseUp:
		w.modifiers = e.Modifiers
	}
	if e.Modifiers == 0 {
		e.Modifiers = w.modifiers
	}
	if w.onEvent != nil {
		w.onEvent(e)
	}
}
