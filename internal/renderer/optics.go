package renderer

import (
	"math"

	"Caustics/internal/water"

	"github.com/go-gl/mathgl/mgl32"
)

// Refract bends the incident direction i through a surface with normal n for
// the index ratio eta. Total internal reflection yields the zero vector.
func Refract(i, n mgl32.Vec3, eta float32) mgl32.Vec3 {
	d := n.Dot(i)
	k := 1 - eta*eta*(1-d*d)
	if k < 0 {
		return mgl32.Vec3{}
	}
	return i.Mul(eta).Sub(n.Mul(eta*d + float32(math.Sqrt(float64(k)))))
}

// Reflect mirrors the incident direction i about the normal n.
func Reflect(i, n mgl32.Vec3) mgl32.Vec3 {
	return i.Sub(n.Mul(2 * n.Dot(i)))
}

// Smoothstep is the cubic Hermite step between edge0 and edge1.
func Smoothstep(edge0, edge1, x float32) float32 {
	t := mgl32.Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// SurfaceNormal turns a height field texel into a world normal. The grid
// stores the normal with y up; the world has z up.
func SurfaceNormal(t water.Texel) mgl32.Vec3 {
	n := t.Normal()
	return safeNormalize(mgl32.Vec3{n.X(), n.Z(), n.Y()})
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

// windowDepth maps a clip space position to the [0,1] depth range.
func windowDepth(clip mgl32.Vec4) float32 {
	return 0.5 + 0.5*clip.Z()/clip.W()
}
