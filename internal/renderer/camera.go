// camera.go
package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Camera struct {
	// HOT DATA - Accessed every frame for view/projection calculations
	Position   mgl32.Vec3 // Camera position in world space
	Target     mgl32.Vec3 // Point the camera looks at and orbits around
	Up         mgl32.Vec3 // Up direction hint
	Projection mgl32.Mat4 // Projection matrix

	// COLD DATA - Configuration and input handling, accessed less frequently
	Orthographic  bool    // Orthographic (light) or perspective (viewer) projection
	Extent        float32 // Half size of the orthographic volume
	Fov           float32 // Field of view in degrees
	Near          float32 // Near clipping plane
	Far           float32 // Far clipping plane
	AspectRatio   float32 // Width / height
	MinDistance   float32 // Orbit distance limits
	MaxDistance   float32
	MaxPolarAngle float32 // Largest angle between the view offset and +Z
	Sensitivity   float32 // Radians per pixel of pointer drag

	Name string
}

// NewPerspectiveCamera creates the viewer camera for a width×height frame.
func NewPerspectiveCamera(width, height int, fov, near, far float32) *Camera {
	camera := Camera{
		Position:      mgl32.Vec3{0, 0, 2.25},
		Up:            mgl32.Vec3{0, 1, 0},
		Fov:           fov,
		Near:          near,
		Far:           far,
		AspectRatio:   float32(width) / float32(height),
		MinDistance:   0.1,
		MaxDistance:   7,
		MaxPolarAngle: math.Pi/2 - 0.1,
		Sensitivity:   0.005,
		Name:          "main",
	}
	camera.UpdateProjection()
	return &camera
}

// NewLightCamera creates the orthographic camera that views the scene from
// the light. The volume spans [-extent, extent]² and [near, far] along the
// view axis.
func NewLightCamera(position, target mgl32.Vec3, extent, near, far float32) *Camera {
	camera := Camera{
		Position:     position,
		Target:       target,
		Up:           mgl32.Vec3{0, 1, 0},
		Orthographic: true,
		Extent:       extent,
		Near:         near,
		Far:          far,
		AspectRatio:  1,
		Name:         "light",
	}
	camera.UpdateProjection()
	return &camera
}

func (c *Camera) UpdateProjection() {
	if c.Orthographic {
		c.Projection = mgl32.Ortho(-c.Extent, c.Extent, -c.Extent, c.Extent, c.Near, c.Far)
		return
	}
	c.Projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), c.AspectRatio, c.Near, c.Far)
}

// Setter methods that automatically update projection
func (c *Camera) SetFov(fov float32) {
	c.Fov = fov
	c.UpdateProjection()
}

func (c *Camera) SetAspectRatio(aspectRatio float32) {
	c.AspectRatio = aspectRatio
	c.UpdateProjection()
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.GetProjectionMatrix().Mul4(c.GetViewMatrix())
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	up := c.Up
	forward := c.Target.Sub(c.Position)
	if forward.Cross(up).Len() < 1e-6 {
		// Up parallel to the view direction; any perpendicular axis will do.
		up = mgl32.Vec3{0, 1, 0}
		if forward.Cross(up).Len() < 1e-6 {
			up = mgl32.Vec3{1, 0, 0}
		}
	}
	return mgl32.LookAtV(c.Position, c.Target, up)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return c.Projection
}

// Direction is the unit vector from the camera towards its target.
func (c *Camera) Direction() mgl32.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// LookAt retargets the camera without moving it.
func (c *Camera) LookAt(target mgl32.Vec3) {
	c.Target = target
}

// Orbit rotates the camera around its target, +Z being the pole. The polar
// angle and the distance are clamped to the configured limits.
func (c *Camera) Orbit(deltaAzimuth, deltaPolar float32) {
	offset := c.Position.Sub(c.Target)
	radius := offset.Len()
	if radius == 0 {
		radius = c.MinDistance
	}
	polar := math.Acos(float64(mgl32.Clamp(offset.Z()/radius, -1, 1)))
	azimuth := math.Atan2(float64(offset.Y()), float64(offset.X()))

	azimuth += float64(deltaAzimuth)
	polar += float64(deltaPolar)
	if polar < 0 {
		polar = 0
	}
	if c.MaxPolarAngle > 0 && polar > float64(c.MaxPolarAngle) {
		polar = float64(c.MaxPolarAngle)
	}
	c.place(float32(azimuth), float32(polar), radius)
}

// ProcessMouseMovement orbits by a pointer drag of (xoffset, yoffset) pixels.
func (c *Camera) ProcessMouseMovement(xoffset, yoffset float32) {
	c.Orbit(-xoffset*c.Sensitivity, -yoffset*c.Sensitivity)
}

// Zoom scales the orbit distance by factor within [MinDistance, MaxDistance].
func (c *Camera) Zoom(factor float32) {
	offset := c.Position.Sub(c.Target)
	radius := offset.Len() * factor
	if radius < c.MinDistance {
		radius = c.MinDistance
	}
	if c.MaxDistance > 0 && radius > c.MaxDistance {
		radius = c.MaxDistance
	}
	if l := offset.Len(); l > 0 {
		c.Position = c.Target.Add(offset.Mul(radius / l))
	}
}

func (c *Camera) place(azimuth, polar, radius float32) {
	sp, cp := math.Sincos(float64(polar))
	sa, ca := math.Sincos(float64(azimuth))
	c.Position = c.Target.Add(mgl32.Vec3{
		radius * float32(sp*ca),
		radius * float32(sp*sa),
		radius * float32(cp),
	})
}

// Distance from the camera to its target.
func (c *Camera) Distance() float32 {
	return c.Position.Sub(c.Target).Len()
}

// PolarAngle is the angle between +Z and the target-to-camera offset.
func (c *Camera) PolarAngle() float32 {
	offset := c.Position.Sub(c.Target)
	l := offset.Len()
	if l == 0 {
		return 0
	}
	return float32(math.Acos(float64(mgl32.Clamp(offset.Z()/l, -1, 1))))
}

// Project maps a world position to clip space.
func (c *Camera) Project(p mgl32.Vec3) mgl32.Vec4 {
	return c.GetViewProjection().Mul4x1(p.Vec4(1))
}
