package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRayIntersectPlaneZ(t *testing.T) {
	ray := Ray{Origin: mgl32.Vec3{0.5, 0, 3}, Direction: mgl32.Vec3{0, 0, -1}}

	hit, dist, point := RayIntersectPlaneZ(ray, 0.8)
	if !hit {
		t.Fatal("Expected a hit")
	}
	if math.Abs(float64(dist-2.2)) > 1e-5 || !vecClose(point, mgl32.Vec3{0.5, 0, 0.8}, 1e-5) {
		t.Errorf("Unexpected hit at %f %v", dist, point)
	}

	if hit, _, _ := RayIntersectPlaneZ(Ray{Origin: mgl32.Vec3{0, 0, 3}, Direction: mgl32.Vec3{1, 0, 0}}, 0.8); hit {
		t.Error("Parallel ray should miss")
	}
	if hit, _, _ := RayIntersectPlaneZ(Ray{Origin: mgl32.Vec3{0, 0, 3}, Direction: mgl32.Vec3{0, 0, 1}}, 0.8); hit {
		t.Error("Plane behind the ray should miss")
	}
}

func TestRayIntersectRect(t *testing.T) {
	down := mgl32.Vec3{0, 0, -1}
	if hit, _, _ := RayIntersectRect(Ray{Origin: mgl32.Vec3{0.9, -0.9, 2}, Direction: down}, 0.8, 1); !hit {
		t.Error("Expected a hit inside the square")
	}
	if hit, _, _ := RayIntersectRect(Ray{Origin: mgl32.Vec3{1.1, 0, 2}, Direction: down}, 0.8, 1); hit {
		t.Error("Expected a miss outside the square")
	}
}

func TestScreenToRayCentre(t *testing.T) {
	cam := NewPerspectiveCamera(800, 600, 55, 0.01, 100)

	ray := ScreenToRay(cam, 400, 300, 800, 600)

	if !vecClose(ray.Direction, mgl32.Vec3{0, 0, -1}, 1e-4) {
		t.Errorf("Centre ray should look at the target, got %v", ray.Direction)
	}
	hit, _, point := RayIntersectRect(ray, 0.8, 1)
	if !hit || !vecClose(point, mgl32.Vec3{0, 0, 0.8}, 1e-3) {
		t.Errorf("Expected to pick the water centre, got %v %v", hit, point)
	}
}

func TestScreenToRayCorners(t *testing.T) {
	cam := NewPerspectiveCamera(800, 600, 55, 0.01, 100)

	// Top of the window is +Y in the view.
	ray := ScreenToRay(cam, 400, 0, 800, 600)
	if ray.Direction.Y() <= 0 {
		t.Errorf("Expected the top edge ray to lean to +Y, got %v", ray.Direction)
	}
}

func TestRayIntersectSphere(t *testing.T) {
	ray := Ray{Origin: mgl32.Vec3{0, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}

	hit, dist, _ := RayIntersectSphere(ray, mgl32.Vec3{}, 1)
	if !hit || math.Abs(float64(dist-4)) > 1e-5 {
		t.Errorf("Expected a hit at 4, got %v %f", hit, dist)
	}

	inside := Ray{Origin: mgl32.Vec3{}, Direction: mgl32.Vec3{1, 0, 0}}
	if hit, dist, _ := RayIntersectSphere(inside, mgl32.Vec3{}, 1); !hit || math.Abs(float64(dist-1)) > 1e-5 {
		t.Errorf("Ray from inside should exit at 1, got %v %f", hit, dist)
	}
}

func TestRayIntersectModelNearestHit(t *testing.T) {
	floor := testGrid(2, 1, 0)
	ledge := testGrid(1, 0.25, 0.5)
	ray := Ray{Origin: mgl32.Vec3{0.1, 0.2, 3}, Direction: mgl32.Vec3{0, 0, -1}}

	hit, dist, point := RayIntersectModel(ray, floor)
	if !hit || math.Abs(float64(dist-3)) > 1e-5 {
		t.Errorf("Expected the floor at distance 3, got %v %f", hit, dist)
	}
	if !vecClose(point, mgl32.Vec3{0.1, 0.2, 0}, 1e-5) {
		t.Errorf("Unexpected hit point %v", point)
	}

	if hit, dist, _ := RayIntersectModel(ray, ledge); !hit || math.Abs(float64(dist-2.5)) > 1e-5 {
		t.Errorf("Expected the ledge at distance 2.5, got %v %f", hit, dist)
	}

	miss := Ray{Origin: mgl32.Vec3{5, 5, 3}, Direction: mgl32.Vec3{0, 0, -1}}
	if hit, _, _ := RayIntersectModel(miss, floor); hit {
		t.Error("Expected a miss beside the model")
	}
}
