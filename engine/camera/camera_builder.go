package camera

import "github.com/go-gl/mathgl/mgl32"

type CameraBuilderOption func(*cameraImpl)

// WithFovy sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fovy: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFovy(fovy float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fovy = fovy
	}
}

// WithOrbit places the eye at the given orbit angle, distance and height.
//
// Parameters:
//   - angle: orbit angle in radians
//   - distance: orbit radius
//   - height: eye height above the target
//
// Returns:
//   - CameraBuilderOption: a function that positions the eye
func WithOrbit(angle, distance, height float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.setAngle(angle, distance)
		c.eye[2] = height
	}
}

// WithTarget sets the orbit pivot.
//
// Parameters:
//   - target: the look-at point
//
// Returns:
//   - CameraBuilderOption: a function that sets the target
func WithTarget(target mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithClipPlanes overrides the near and far clipping distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}
