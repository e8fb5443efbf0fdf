package water

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Texel is one cell of the height field.
type Texel struct {
	Height   float32
	Velocity float32
	NormalX  float32
	NormalZ  float32
}

// Normal rebuilds the unit surface normal (y up) from the stored x and z
// components.
func (t Texel) Normal() mgl32.Vec3 {
	y := 1 - t.NormalX*t.NormalX - t.NormalZ*t.NormalZ
	if y < 0 {
		y = 0
	}
	return mgl32.Vec3{t.NormalX, float32(math.Sqrt(float64(y))), t.NormalZ}
}

// Grid is a square, row-major texture of texels. Texture coordinates run over
// [0,1] with texel centres at (i+0.5)/Size.
type Grid struct {
	Size   int
	Texels []Texel
}

// NewGrid allocates a flat, still grid.
func NewGrid(size int) *Grid {
	return &Grid{Size: size, Texels: make([]Texel, size*size)}
}

// At returns the texel at integer coordinates, clamped to the edge.
func (g *Grid) At(x, y int) Texel {
	if x < 0 {
		x = 0
	} else if x >= g.Size {
		x = g.Size - 1
	}
	if y < 0 {
		y = 0
	} else if y >= g.Size {
		y = g.Size - 1
	}
	return g.Texels[y*g.Size+x]
}

// Coord is the texture coordinate of the centre of texel i.
func (g *Grid) Coord(i int) float32 {
	return (float32(i) + 0.5) / float32(g.Size)
}

// Sample bilinearly filters the grid at texture coordinates (u, v) with
// clamp-to-edge addressing.
func (g *Grid) Sample(u, v float32) Texel {
	fx := u*float32(g.Size) - 0.5
	fy := v*float32(g.Size) - 0.5
	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	a := g.At(x0, y0)
	b := g.At(x0+1, y0)
	c := g.At(x0, y0+1)
	d := g.At(x0+1, y0+1)
	return lerpTexel(lerpTexel(a, b, tx), lerpTexel(c, d, tx), ty)
}

// SampleHeight is Sample restricted to the height channel.
func (g *Grid) SampleHeight(u, v float32) float32 {
	return g.Sample(u, v).Height
}

// Clear zeroes every texel.
func (g *Grid) Clear() {
	for i := range g.Texels {
		g.Texels[i] = Texel{}
	}
}

// KineticEnergy is the sum of squared velocities.
func (g *Grid) KineticEnergy() float64 {
	var e float64
	for _, t := range g.Texels {
		e += float64(t.Velocity) * float64(t.Velocity)
	}
	return e
}

// TotalHeight is the signed sum of heights.
func (g *Grid) TotalHeight() float64 {
	var s float64
	for _, t := range g.Texels {
		s += float64(t.Height)
	}
	return s
}

func lerpTexel(a, b Texel, t float32) Texel {
	if t == 0 {
		return a
	}
	return Texel{
		Height:   a.Height + (b.Height-a.Height)*t,
		Velocity: a.Velocity + (b.Velocity-a.Velocity)*t,
		NormalX:  a.NormalX + (b.NormalX-a.NormalX)*t,
		NormalZ:  a.NormalZ + (b.NormalZ-a.NormalZ)*t,
	}
}
