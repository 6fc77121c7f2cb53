package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c := New(800, 600)

	eye := c.Eye()
	assert.InDelta(t, 0, eye.X(), 1e-5)
	assert.InDelta(t, 6, eye.Y(), 1e-5)
	assert.InDelta(t, 3, eye.Z(), 1e-6)
	assert.Equal(t, mgl32.Vec3{}, c.Target())
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, c.Up())
	assert.InDelta(t, 800.0/600.0, c.Aspect(), 1e-6)
	assert.InDelta(t, math.Pi/2, c.Fovy(), 1e-6)
}

func TestSetAngle_OrbitKeepsHeight(t *testing.T) {
	c := New(100, 100)
	c.SetHeight(4)

	for _, angle := range []float32{0, 0.3, math32.Pi, 5.5} {
		c.SetAngle(angle, 7)
		eye := c.Eye()
		assert.InDelta(t, 7, math32.Hypot(eye.X(), eye.Y()), 1e-4)
		assert.InDelta(t, math32.Cos(angle)*7, eye.X(), 1e-4)
		assert.InDelta(t, math32.Sin(angle)*7, eye.Y(), 1e-4)
		assert.Equal(t, float32(4), eye.Z())
	}
}

func TestResize(t *testing.T) {
	c := New(100, 50)
	require.NoError(t, c.Resize(300, 100))
	assert.InDelta(t, 3, c.Aspect(), 1e-6)

	err := c.Resize(300, 0)
	assert.ErrorIs(t, err, ErrZeroHeight)
	assert.InDelta(t, 3, c.Aspect(), 1e-6)
	assert.False(t, math32.IsNaN(c.ViewProjection()[0]))
}

func TestNew_ZeroHeightKeepsUnitAspect(t *testing.T) {
	c := New(640, 0)
	assert.Equal(t, float32(1), c.Aspect())
}

func TestViewProjection_EyeIsOffsetFromTarget(t *testing.T) {
	c := New(100, 100)
	c.SetTarget(mgl32.Vec3{4, 4, 0})
	c.SetAngle(0, 5)
	c.SetHeight(2)

	want := mgl32.Perspective(math32.Pi/2, 1, 0.1, 100).Mul4(
		mgl32.LookAtV(mgl32.Vec3{9, 4, 2}, mgl32.Vec3{4, 4, 0}, mgl32.Vec3{0, 0, 1}),
	)
	got := c.ViewProjection()
	for i := range got {
		assert.InDelta(t, want[i], got[i], 1e-4, "element %d", i)
	}

	// the target projects onto the center of clip space
	clip := got.Mul4x1(mgl32.Vec4{4, 4, 0, 1})
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-4)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-4)
}

func TestBillboardUniform_AxesFromViewRows(t *testing.T) {
	c := New(100, 100, WithOrbit(0.7, 5, 3), WithTarget(mgl32.Vec3{1, 2, 0}))
	view := c.View()
	u := c.BillboardUniform()

	assert.Equal(t, [4]float32{view[0], view[4], view[8], 1}, u.CameraRight)
	assert.Equal(t, [4]float32{view[1], view[5], view[9], 1}, u.CameraUp)

	right := mgl32.Vec3{u.CameraRight[0], u.CameraRight[1], u.CameraRight[2]}
	up := mgl32.Vec3{u.CameraUp[0], u.CameraUp[1], u.CameraUp[2]}
	assert.InDelta(t, 1, right.Len(), 1e-4)
	assert.InDelta(t, 0, right.Dot(up), 1e-4)
	assert.InDelta(t, 0, right.Z(), 1e-5)
}

func TestUniformMarshal(t *testing.T) {
	c := New(100, 100)
	cu := c.CameraUniform()
	buf := cu.Marshal()
	require.Len(t, buf, 64)
	assert.Equal(t, cu.ViewProj[5], math.Float32frombits(binary.LittleEndian.Uint32(buf[20:])))

	bu := c.BillboardUniform()
	buf = bu.Marshal()
	require.Len(t, buf, 96)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])))
	assert.Equal(t, bu.CameraRight[0], math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])))
	assert.Equal(t, bu.ViewProj[0], math.Float32frombits(binary.LittleEndian.Uint32(buf[32:])))
}
