package physics

import (
	"cogentcore.org/core/math32"

	"github.com/cory-johannsen/periphery/internal/config"
)

// Camera is a perspective eye used for visibility queries.
type Camera struct {
	Eye    math32.Vector3
	Target math32.Vector3
	Up     math32.Vector3
	FovDeg float32
	Aspect float32
	Near   float32
	Far    float32
}

// NewCamera returns a camera at the origin looking down -Z with the configured lens.
//
// Precondition: cfg has passed validation.
func NewCamera(cfg config.VisionConfig) *Camera {
	return &Camera{
		Eye:    math32.Vec3(0, 0, 0),
		Target: math32.Vec3(0, 0, -1),
		Up:     math32.Vec3(0, 1, 0),
		FovDeg: cfg.FovDeg,
		Aspect: 1,
		Near:   cfg.Near,
		Far:    cfg.Far,
	}
}

// LookAt places the eye and aims it at target.
func (c *Camera) LookAt(eye, target math32.Vector3) {
	c.Eye = eye
	c.Target = target
}

// Look returns the unit view direction.
func (c *Camera) Look() math32.Vector3 {
	return c.Target.Sub(c.Eye).Normal()
}

// View returns the world-to-camera matrix.
func (c *Camera) View() *math32.Matrix4 {
	var look math32.Quat
	look.SetFromRotationMatrix(math32.NewLookAt(c.Eye, c.Target, c.Up))
	var pose math32.Matrix4
	pose.SetTransform(c.Eye, look, math32.Vec3(1, 1, 1))
	view, err := pose.Inverse()
	if err != nil {
		// degenerate pose; an identity view keeps projection defined
		view = &math32.Matrix4{}
		view.SetIdentity()
	}
	return view
}

// Projection returns the perspective matrix for the lens.
func (c *Camera) Projection() *math32.Matrix4 {
	var proj math32.Matrix4
	proj.SetPerspective(c.FovDeg, c.Aspect, c.Near, c.Far)
	return &proj
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() *math32.Matrix4 {
	var vp math32.Matrix4
	vp.MulMatrices(c.Projection(), c.View())
	return &vp
}

// Project maps a world point to clip space.
//
// Postcondition: ndc is only meaningful when w > 0.
func (c *Camera) Project(p math32.Vector3) (ndc math32.Vector3, w float32) {
	clip := math32.Vector4FromVector3(p, 1).MulMatrix4(c.ViewProjection())
	if clip.W == 0 {
		return math32.Vector3{}, 0
	}
	return clip.PerspDiv(), clip.W
}
