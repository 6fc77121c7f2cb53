package window

import (
	"testing"

	"github.com/Carmen-Shannon/hexa/common"
	"github.com/stretchr/testify/assert"
)

func TestDispatch_TracksSizeAndScale(t *testing.T) {
	w := &engineWindow{width: 1280, height: 720, scaleFactor: 1}
	var got []Event
	w.SetEventCallback(func(e Event) { got = append(got, e) })

	w.dispatch(Event{Kind: EventResize, Width: 800, Height: 0})
	w.dispatch(Event{Kind: EventScaleFactorChanged, ScaleFactor: 2})
	w.dispatch(Event{Kind: EventKeyDown, Key: 258})

	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 0, w.Height())
	assert.Equal(t, 2.0, w.ScaleFactor())
	assert.Len(t, got, 3)
}

func TestDispatch_NoCallback(t *testing.T) {
	w := &engineWindow{}
	assert.NotPanics(t, func() { w.dispatch(Event{Kind: EventScroll, Delta: 1}) })
	assert.False(t, w.IsRunning())
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "resize", EventResize.String())
	assert.Equal(t, "event(99)", EventKind(99).String())
}

func TestDispatch_ScrollCarriesHeldModifiers(t *testing.T) {
	w := &engineWindow{}
	var got []Event
	w.SetEventCallback(func(e Event) { got = append(got, e) })

	// the press itself may arrive without its own bit
	w.dispatch(Event{Kind: EventKeyDown, Key: common.KeyLeftShift})
	assert.Equal(t, common.ModShift, w.Modifiers())
	w.dispatch(Event{Kind: EventScroll, Delta: 1})
	w.dispatch(Event{Kind: EventCursorMoved, X: 4, Y: 2})

	w.dispatch(Event{Kind: EventKeyUp, Key: common.KeyLeftShift, Modifiers: common.ModShift})
	assert.Equal(t, common.ModifierKey(0), w.Modifiers())
	w.dispatch(Event{Kind: EventScroll, Delta: -1})

	w.dispatch(Event{Kind: EventMouseDown, Modifiers: common.ModControl})
	w.dispatch(Event{Kind: EventScroll, Delta: 1})

	if assert.Len(t, got, 7) {
		assert.Equal(t, common.ModShift, got[1].Modifiers)
		assert.Equal(t, common.ModShift, got[2].Modifiers)
		assert.Equal(t, common.ModifierKey(0), got[3].Modifiers)
		assert.Equal(t, common.ModifierKey(0), got[4].Modifiers)
		assert.Equal(t, common.ModControl, got[6].Modifiers)
	}
}
