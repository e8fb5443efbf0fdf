package water

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Domain selects which texels a simulation pass writes. Texels outside the
// domain are carried over unchanged.
type Domain interface {
	// Contains reports whether the point (x, y) in [-1,1]² is simulated.
	Contains(x, y float32) bool
}

// PlaneDomain covers the whole grid.
type PlaneDomain struct{}

func (PlaneDomain) Contains(x, y float32) bool { return true }

// PolygonDomain is a regular polygon centred at the origin with its first
// vertex on the +x axis.
type PolygonDomain struct {
	Sides  int
	Radius float32
}

// Vertices lists the polygon corners counter-clockwise.
func (p PolygonDomain) Vertices() []mgl32.Vec2 {
	verts := make([]mgl32.Vec2, p.Sides)
	for i := range verts {
		a := float64(i) / float64(p.Sides) * 2 * math.Pi
		verts[i] = mgl32.Vec2{p.Radius * float32(math.Cos(a)), p.Radius * float32(math.Sin(a))}
	}
	return verts
}

func (p PolygonDomain) Contains(x, y float32) bool {
	if p.Sides < 3 {
		return false
	}
	verts := p.Vertices()
	pt := mgl32.Vec2{x, y}
	for i := range verts {
		a := verts[i]
		b := verts[(i+1)%len(verts)]
		edge := b.Sub(a)
		rel := pt.Sub(a)
		if edge.X()*rel.Y()-edge.Y()*rel.X() < 0 {
			return false
		}
	}
	return true
}

// domainMask evaluates d at every texel centre; nil means every texel is
// inside.
func domainMask(size int, d Domain) []bool {
	if d == nil {
		return nil
	}
	if _, ok := d.(PlaneDomain); ok {
		return nil
	}
	mask := make([]bool, size*size)
	for y := 0; y < size; y++ {
		py := (float32(y)+0.5)/float32(size)*2 - 1
		for x := 0; x < size; x++ {
			px := (float32(x)+0.5)/float32(size)*2 - 1
			mask[y*size+x] = d.Contains(px, py)
		}
	}
	return mask
}
