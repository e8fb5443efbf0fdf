package water

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Params are the wave propagation knobs. None of them are range checked: large
// gains or deltas can make the explicit integration unstable.
type Params struct {
	// Delta is the neighbour offset in texture coordinates.
	Delta float32
	// Gain scales the pull of each texel toward its neighbour average.
	Gain float32
	// Damping attenuates velocity every step; it must stay below 1 for waves
	// to die out.
	Damping float32
}

// DefaultParams is the reference gain and damping with a neighbour offset of
// one texel of a size×size grid.
func DefaultParams(size int) Params {
	return Params{Delta: 1 / float32(size), Gain: 2.0, Damping: 0.995}
}

// Drop is a radial impulse on the water plane. Center is in [-1,1]², Radius is
// in texture space and Strength may be negative.
type Drop struct {
	Center   mgl32.Vec2
	Radius   float32
	Strength float32
}

// DropFalloff is the cosine eased kernel 0.5 - cos(π·clamp(1 - dist/radius))/2.
// It is 1 at the centre and 0 at and beyond the radius. A drop without a
// radius has no footprint.
func DropFalloff(dist, radius float32) float32 {
	if !(radius > 0) {
		return 0
	}
	k := 1 - dist/radius
	if k < 0 {
		k = 0
	} else if k > 1 {
		k = 1
	}
	return 0.5 - float32(math.Cos(float64(k)*math.Pi))*0.5
}

// DropTexel returns texel (x, y) of src with the drop's height contribution
// added.
func DropTexel(src *Grid, x, y int, d Drop) Texel {
	info := src.Texels[y*src.Size+x]
	cx := d.Center.X()*0.5 + 0.5
	cy := d.Center.Y()*0.5 + 0.5
	dx := cx - src.Coord(x)
	dy := cy - src.Coord(y)
	dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	info.Height += DropFalloff(dist, d.Radius) * d.Strength
	return info
}

// UpdateTexel advances texel (x, y) of src by one damped wave step and
// recomputes its normal.
func UpdateTexel(src *Grid, x, y int, p Params) Texel {
	u := src.Coord(x)
	v := src.Coord(y)
	info := src.Texels[y*src.Size+x]

	average := (src.SampleHeight(u-p.Delta, v) +
		src.SampleHeight(u, v-p.Delta) +
		src.SampleHeight(u+p.Delta, v) +
		src.SampleHeight(u, v+p.Delta)) * 0.25

	info.Velocity += (average - info.Height) * p.Gain
	info.Velocity *= p.Damping
	info.Height += info.Velocity

	ddx := mgl32.Vec3{p.Delta, src.SampleHeight(u+p.Delta, v) - info.Height, 0}
	ddy := mgl32.Vec3{0, src.SampleHeight(u, v+p.Delta) - info.Height, p.Delta}
	n := ddy.Cross(ddx)
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	info.NormalX = n.X()
	info.NormalZ = n.Z()
	return info
}
