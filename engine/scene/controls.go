package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/Carmen-Shannon/hexa/common"
	"github.com/Carmen-Shannon/hexa/engine/overlay"
	"github.com/Carmen-Shannon/hexa/engine/storage"
	"github.com/Carmen-Shannon/hexa/engine/terrain"
	"github.com/chewxy/math32"
)

// Tab is one page of the control panel.
type Tab int

const (
	TabHome Tab = iota
	TabCamera
	TabTiling
	TabSave
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabHome:
		return "Home"
	case TabCamera:
		return "Camera"
	case TabTiling:
		return "Tiling"
	case TabSave:
		return "Save"
	}
	return fmt.Sprintf("Tab(%d)", int(t))
}

// field is one adjustable panel row.
type field struct {
	label string
	// tiling fields mark the terrain dirty when they change.
	tiling bool
	value  func(s *storage.Settings) string
	adjust func(s *storage.Settings, steps int) bool
	clamp  func(s *storage.Settings)
}

func floatField(label string, tiling bool, get func(s *storage.Settings) *float32, lo, hi, step float32) field {
	return field{
		label:  label,
		tiling: tiling,
		value: func(s *storage.Settings) string {
			return fmt.Sprintf("%.2f", *get(s))
		},
		adjust: func(s *storage.Settings, steps int) bool {
			v := get(s)
			next := common.Clamp(*v+step*float32(steps), lo, hi)
			if next == *v {
				return false
			}
			*v = next
			return true
		},
		clamp: func(s *storage.Settings) {
			v := get(s)
			if math32.IsNaN(*v) {
				*v = lo
			}
			*v = common.Clamp(*v, lo, hi)
		},
	}
}

func uintField(label string, tiling bool, get func(s *storage.Settings) *uint32, lo, hi uint32) field {
	return field{
		label:  label,
		tiling: tiling,
		value: func(s *storage.Settings) string {
			return fmt.Sprintf("%d", *get(s))
		},
		adjust: func(s *storage.Settings, steps int) bool {
			v := get(s)
			next := uint32(common.Clamp(int64(*v)+int64(steps), int64(lo), int64(hi)))
			if next == *v {
				return false
			}
			*v = next
			return true
		},
		clamp: func(s *storage.Settings) {
			v := get(s)
			*v = common.Clamp(*v, lo, hi)
		},
	}
}

var (
	cameraFields = []field{
		floatField("Fov", false, func(s *storage.Settings) *float32 { return &s.CameraTab.Fov }, 0, math32.Pi, math32.Pi/36),
		floatField("Height", false, func(s *storage.Settings) *float32 { return &s.CameraTab.Height }, 0, 50, 0.5),
		floatField("Angle", false, func(s *storage.Settings) *float32 { return &s.CameraTab.Angle }, 0, 2*math32.Pi, math32.Pi/36),
		floatField("Distance", false, func(s *storage.Settings) *float32 { return &s.CameraTab.Distance }, 0, 50, 0.5),
	}
	tilingFields = []field{
		floatField("Elevation", true, func(s *storage.Settings) *float32 { return &s.TilingTab.Data.Elevation }, 0, 3, 0.1),
		uintField("Size", true, func(s *storage.Settings) *uint32 { return &s.TilingTab.Data.Size }, 1, 15),
		uintField("Seed", true, func(s *storage.Settings) *uint32 { return &s.TilingTab.Data.Seed }, 1, math.MaxUint32),
	}
)

// fastStep multiplies a field step while Shift is held.
const fastStep = 10

// Controls is the keyboard-driven control panel state.
type Controls struct {
	settings storage.Settings
	tab      Tab
	selected [tabCount]int
	dirty    bool
}

// NewControls creates a panel showing s, clamped into the field ranges. The tiling starts dirty.
func NewControls(s storage.Settings) *Controls {
	c := &Controls{tab: TabHome, dirty: true}
	c.replace(s)
	return c
}

// Message is one panel input, produced by HandleEvent and applied during Update.
type Message interface {
	apply(c *Controls) []Command
}

type (
	// TabSelected switches to a tab.
	TabSelected struct{ Tab Tab }
	// TabCycled moves Delta tabs forward, wrapping around.
	TabCycled struct{ Delta int }
	// FieldSelected moves the highlighted row Delta rows, wrapping around.
	FieldSelected struct{ Delta int }
	// FieldAdjusted changes the highlighted field by Steps steps.
	FieldAdjusted struct{ Steps int }
	// Confirmed is Enter. On the Save tab it saves and returns Home.
	Confirmed struct{}
	// Retiled clears the dirty flag after the tiles reached the renderer.
	Retiled struct{}
	// SettingsReplaced swaps in new values and marks the tiling dirty.
	SettingsReplaced struct{ Settings storage.Settings }
)

func (m TabSelected) apply(c *Controls) []Command {
	if m.Tab >= 0 && m.Tab < tabCount {
		c.tab = m.Tab
	}
	return nil
}

func (m TabCycled) apply(c *Controls) []Command {
	c.tab = Tab(wrap(int(c.tab)+m.Delta, int(tabCount)))
	return nil
}

func (m FieldSelected) apply(c *Controls) []Command {
	fields := c.fields()
	if len(fields) == 0 {
		return nil
	}
	c.selected[c.tab] = wrap(c.selected[c.tab]+m.Delta, len(fields))
	return nil
}

func (m FieldAdjusted) apply(c *Controls) []Command {
	fields := c.fields()
	if len(fields) == 0 {
		return nil
	}
	f := fields[c.selected[c.tab]]
	if f.adjust(&c.settings, m.Steps) && f.tiling {
		c.dirty = true
	}
	return nil
}

func (m Confirmed) apply(c *Controls) []Command {
	if c.tab != TabSave {
		return nil
	}
	c.tab = TabHome
	return []Command{SaveCommand{Settings: c.settings}}
}

func (m Retiled) apply(c *Controls) []Command {
	c.dirty = false
	return nil
}

func (m SettingsReplaced) apply(c *Controls) []Command {
	c.replace(m.Settings)
	c.dirty = true
	return nil
}

// Update applies one message and returns the side effects it asks for.
func (c *Controls) Update(m Message) []Command {
	return m.apply(c)
}

// Settings returns a copy of the current values.
func (c *Controls) Settings() storage.Settings {
	return c.settings
}

// Tab returns the visible tab.
func (c *Controls) Tab() Tab {
	return c.tab
}

// Dirty reports whether the tiling changed since the last successful regeneration.
func (c *Controls) Dirty() bool {
	return c.dirty
}

// Params returns the terrain parameters of the tiling tab.
func (c *Controls) Params() terrain.Params {
	d := c.settings.TilingTab.Data
	return terrain.Params{Size: d.Size, Seed: d.Seed, Elevation: d.Elevation}
}

// Editable reports whether the visible tab has adjustable fields.
func (c *Controls) Editable() bool {
	return len(c.fields()) > 0
}

// Primitive renders the panel contents. status is shown under the rows.
func (c *Controls) Primitive(status string) overlay.Primitive {
	p := overlay.Primitive{Title: c.title(), Selected: -1, Status: status}
	switch c.tab {
	case TabHome:
		p.Lines = []string{
			"Tab/1-4  switch panel",
			"Up/Down  select field",
			"Left/Right  adjust (Shift x10)",
			"F5  reload scene",
			"Esc  quit",
		}
	case TabSave:
		p.Lines = []string{"Enter  save settings"}
	default:
		for _, f := range c.fields() {
			p.Lines = append(p.Lines, fmt.Sprintf("%-10s %s", f.label, f.value(&c.settings)))
		}
		p.Selected = c.selected[c.tab]
	}
	return p
}

func (c *Controls) title() string {
	var b strings.Builder
	for t := TabHome; t < tabCount; t++ {
		if t > 0 {
			b.WriteByte(' ')
		}
		if t == c.tab {
			fmt.Fprintf(&b, "[%s]", t)
		} else {
			fmt.Fprintf(&b, " %s ", t)
		}
	}
	return b.String()
}

func (c *Controls) fields() []field {
	switch c.tab {
	case TabCamera:
		return cameraFields
	case TabTiling:
		return tilingFields
	}
	return nil
}

func (c *Controls) replace(s storage.Settings) {
	for _, f := range cameraFields {
		f.clamp(&s)
	}
	for _, f := range tilingFields {
		f.clamp(&s)
	}
	c.settings = s
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
