package camera

import (
	"errors"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrZeroHeight is returned by Resize when the viewport has no height.
var ErrZeroHeight = errors.New("camera: viewport height is zero")

const (
	defaultNear     float32 = 0.1
	defaultFar      float32 = 100
	defaultAngle    float32 = math32.Pi / 2
	defaultDistance float32 = 6
)

type cameraImpl struct {
	mu *sync.Mutex

	eye    mgl32.Vec3
	target mgl32.Vec3
	up     mgl32.Vec3

	aspect float32
	fovy   float32
	near   float32
	far    float32
}

// Camera is a perspective orbit camera looking down onto the XY plane with +Z up.
// The eye is stored as an offset from the target: the view is computed from eye+target towards target.
type Camera interface {
	// Eye returns the eye offset relative to the target.
	Eye() mgl32.Vec3

	// Target returns the point the camera looks at.
	Target() mgl32.Vec3

	// Up returns the up vector.
	Up() mgl32.Vec3

	// Aspect returns the current width / height ratio.
	Aspect() float32

	// Fovy returns the vertical field of view in radians.
	Fovy() float32

	// SetAngle places the eye on a circle of the given radius around the target.
	// Only the X and Y components of the eye are changed.
	//
	// Parameters:
	//   - angle: orbit angle in radians, measured from +X
	//   - distance: orbit radius
	SetAngle(angle, distance float32)

	// SetHeight sets the Z component of the eye offset.
	//
	// Parameters:
	//   - height: the eye height above the target
	SetHeight(height float32)

	// SetTarget moves the orbit pivot.
	//
	// Parameters:
	//   - target: the new look-at point
	SetTarget(target mgl32.Vec3)

	// SetFovy sets the vertical field of view in radians.
	// No clamping happens here; the caller owns the valid range.
	//
	// Parameters:
	//   - fovy: the field of view in radians
	SetFovy(fovy float32)

	// Resize recomputes the aspect ratio for a new viewport size.
	// A zero height leaves the previous aspect untouched.
	//
	// Parameters:
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	//
	// Returns:
	//   - error: ErrZeroHeight if height is zero
	Resize(width, height uint32) error

	// View returns the right-handed view matrix.
	View() mgl32.Mat4

	// Projection returns the perspective projection matrix.
	Projection() mgl32.Mat4

	// ViewProjection returns Projection × View.
	ViewProjection() mgl32.Mat4

	// CameraUniform builds the uniform consumed by the hex pipeline.
	CameraUniform() GPUCameraUniform

	// BillboardUniform builds the uniform consumed by the sprite pipeline.
	BillboardUniform() GPUBillboardUniform
}

var _ Camera = &cameraImpl{}

// New creates a camera for a viewport of the given size.
// The eye starts at (0, 0, 3) and is then swung to the default orbit angle and distance.
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//   - options: functional options applied after the defaults
//
// Returns:
//   - Camera: the newly created camera
func New(width, height uint32, options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    mgl32.Vec3{0, 0, 3},
		up:     mgl32.Vec3{0, 0, 1},
		aspect: 1,
		fovy:   math32.Pi / 2,
		near:   defaultNear,
		far:    defaultFar,
	}
	c.setAngle(defaultAngle, defaultDistance)
	_ = c.resize(width, height)
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	return c.up
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Fovy() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fovy
}

func (c *cameraImpl) SetAngle(angle, distance float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setAngle(angle, distance)
}

func (c *cameraImpl) SetHeight(height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye[2] = height
}

func (c *cameraImpl) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
}

func (c *cameraImpl) SetFovy(fovy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fovy = fovy
}

func (c *cameraImpl) Resize(width, height uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resize(width, height)
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection()
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection().Mul4(c.view())
}

func (c *cameraImpl) CameraUniform() GPUCameraUniform {
	return GPUCameraUniform{ViewProj: c.ViewProjection()}
}

func (c *cameraImpl) BillboardUniform() GPUBillboardUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := c.view()
	right := view.Row(0)
	up := view.Row(1)
	right[3], up[3] = 1, 1
	return GPUBillboardUniform{
		CameraUp:    up,
		CameraRight: right,
		ViewProj:    c.projection().Mul4(view),
	}
}

// caller must hold the mutex
func (c *cameraImpl) setAngle(angle, distance float32) {
	sin, cos := math32.Sincos(angle)
	c.eye[0] = cos * distance
	c.eye[1] = sin * distance
}

func (c *cameraImpl) resize(width, height uint32) error {
	if height == 0 {
		return ErrZeroHeight
	}
	c.aspect = float32(width) / float32(height)
	return nil
}

func (c *cameraImpl) view() mgl32.Mat4 {
	return mgl32.LookAtV(c.eye.Add(c.target), c.target, c.up)
}

func (c *cameraImpl) projection() mgl32.Mat4 {
	return mgl32.Perspective(c.fovy, c.aspect, c.near, c.far)
}
