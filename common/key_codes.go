package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32 // Spacebar (ASCII)

	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)

	KeyR = 82 // R key (ASCII)
)

// Non-printable keys (GLFW).
const (
	KeyEsc       = 256
	KeyEnter     = 257
	KeyTab       = 258
	KeyBackspace = 259
	KeyRight     = 262
	KeyLeft      = 263
	KeyDown      = 264
	KeyUp        = 265
	KeyPageUp    = 266
	KeyPageDown  = 267
	KeyF5        = 294
	KeyKPEnter   = 335

	KeyLeftShift    = 340
	KeyLeftControl  = 341
	KeyRightShift   = 344
	KeyRightControl = 345
)

// ModifierKey is a bit set of held modifier keys, matching glfw.ModifierKey bits.
type ModifierKey uint32

const (
	ModShift   ModifierKey = 0x0001
	ModControl ModifierKey = 0x0002
	ModAlt     ModifierKey = 0x0004
	ModSuper   ModifierKey = 0x0008
)

// Has reports whether every bit of m2 is set in m.
func (m ModifierKey) Has(m2 ModifierKey) bool {
	return m&m2 == m2
}
