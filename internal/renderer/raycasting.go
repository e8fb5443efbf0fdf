package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// RayIntersectSphere tests if a ray intersects a sphere
// Returns: (intersected, distance, intersection point)
func RayIntersectSphere(ray Ray, sphereCenter mgl32.Vec3, radius float32) (bool, float32, mgl32.Vec3) {
	oc := ray.Origin.Sub(sphereCenter)

	a := ray.Direction.Dot(ray.Direction)
	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return false, 0, mgl32.Vec3{}
	}

	sqrtDisc := float32(math.Sqrt(float64(discriminant)))
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)

	// Closest intersection in front of the origin
	var t float32
	switch {
	case t1 > 0:
		t = t1
	case t2 > 0:
		// Origin inside the sphere
		t = t2
	default:
		return false, 0, mgl32.Vec3{}
	}
	return true, t, ray.At(t)
}

// RayIntersectPlaneZ intersects the ray with the horizontal plane z = height.
func RayIntersectPlaneZ(ray Ray, height float32) (bool, float32, mgl32.Vec3) {
	const epsilon = 1e-7
	dz := ray.Direction.Z()
	if dz > -epsilon && dz < epsilon {
		return false, 0, mgl32.Vec3{}
	}
	t := (height - ray.Origin.Z()) / dz
	if t <= 0 {
		return false, 0, mgl32.Vec3{}
	}
	return true, t, ray.At(t)
}

// RayIntersectRect intersects the ray with the square [-half, half]² lying in
// the plane z = height. Mouse picking uses it with the 2×2 water square.
func RayIntersectRect(ray Ray, height, half float32) (bool, float32, mgl32.Vec3) {
	hit, t, p := RayIntersectPlaneZ(ray, height)
	if !hit || p.X() < -half || p.X() > half || p.Y() < -half || p.Y() > half {
		return false, 0, mgl32.Vec3{}
	}
	return true, t, p
}

// RayIntersectModel tests the ray against the model's triangles in world
// space, rejecting early with the bounding sphere.
// Returns: (intersected, distance, intersection point) of the nearest hit
func RayIntersectModel(ray Ray, model *Model) (bool, float32, mgl32.Vec3) {
	if model.BoundingSphereRadius > 0 {
		if hit, _, _ := RayIntersectSphere(ray, model.BoundingSphereCenter, model.BoundingSphereRadius); !hit {
			return false, 0, mgl32.Vec3{}
		}
	}
	found := false
	var best float32
	var point mgl32.Vec3
	for i := 0; i+2 < len(model.Faces); i += 3 {
		v0 := model.WorldVertex(int(model.Faces[i]))
		v1 := model.WorldVertex(int(model.Faces[i+1]))
		v2 := model.WorldVertex(int(model.Faces[i+2]))
		if hit, t, p := RayIntersectTriangle(ray, v0, v1, v2); hit && (!found || t < best) {
			found, best, point = true, t, p
		}
	}
	return found, best, point
}

// RayIntersectTriangle tests if a ray intersects a triangle
// Returns: (intersected, distance, intersection point)
// Uses Möller-Trumbore algorithm
func RayIntersectTriangle(ray Ray, v0, v1, v2 mgl32.Vec3) (bool, float32, mgl32.Vec3) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return false, 0, mgl32.Vec3{} // Ray is parallel to triangle
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return false, 0, mgl32.Vec3{}
	}

	t := f * edge2.Dot(q)
	if t > epsilon {
		return true, t, ray.At(t)
	}
	return false, 0, mgl32.Vec3{} // Line intersection but not ray intersection
}

// ScreenToRay converts a pixel position (origin top-left) to a world space
// ray leaving the camera.
func ScreenToRay(camera *Camera, screenX, screenY float32, windowWidth, windowHeight int) Ray {
	ndcX := 2.0*screenX/float32(windowWidth) - 1.0
	ndcY := 1.0 - 2.0*screenY/float32(windowHeight)
	return NDCToRay(camera, ndcX, ndcY)
}

// NDCToRay unprojects a point in normalised device coordinates into a ray from
// the near plane to the far plane.
func NDCToRay(camera *Camera, ndcX, ndcY float32) Ray {
	inv := camera.GetViewProjection().Inv()
	near := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	nearPoint := near.Vec3().Mul(1 / near.W())
	farPoint := far.Vec3().Mul(1 / far.W())
	return Ray{
		Origin:    nearPoint,
		Direction: farPoint.Sub(nearPoint).Normalize(),
	}
}
