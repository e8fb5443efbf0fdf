package renderer

import (
	"math"
	"sync/atomic"

	"Caustics/internal/workers"

	"github.com/go-gl/mathgl/mgl32"
)

// Program is a pair of vertex and fragment stages run by the rasteriser.
//
// Vertex writes Varyings floats for vertex i into out and returns its clip
// space position. It is called concurrently for different vertices and must
// only write to out. Fragment shades one covered pixel; returning false discards
// it. When Derivatives is set every fragment carries the screen space
// derivatives of its varyings.
type Program struct {
	Varyings    int
	Derivatives bool
	Vertex      func(i int, out []float32) mgl32.Vec4
	Fragment    func(f *Fragment) (mgl32.Vec4, bool)
}

// Fragment is the input of a fragment stage. The slices are reused between
// calls and must not be retained.
type Fragment struct {
	X, Y        int
	Depth       float32
	FrontFacing bool
	Varyings    []float32
	DDX         []float32
	DDY         []float32
}

// DrawState holds the fixed function state of a draw call.
type DrawState struct {
	DepthTest     bool
	DepthWrite    bool
	CullBackFaces bool
	Blend         BlendState
}

// DrawStats reports what a draw call produced.
type DrawStats struct {
	Triangles int
	Fragments int
}

type clipVertex struct {
	pos  mgl32.Vec4
	vary []float32
}

type screenTriangle struct {
	x, y, z, iw [3]float32
	// varyings pre-divided by w for perspective correct interpolation
	vary    [3][]float32
	area    float32
	front   bool
	topLeft [3]bool
	minX    int
	maxX    int
	minY    int
	maxY    int
}

// Draw rasterises indexed triangles into the bound target. Triangles are
// clipped against the near and far planes. Fragments are written in
// primitive order within every pixel, so blending and depth writes are
// deterministic even though row bands are shaded concurrently.
func (d *Device) Draw(prog Program, vertexCount int, indices []uint32, state DrawState) DrawStats {
	rt := d.current
	if rt == nil || len(indices) < 3 {
		return DrawStats{}
	}
	n := prog.Varyings
	positions := make([]mgl32.Vec4, vertexCount)
	varyings := make([]float32, vertexCount*n)
	workers.Rows(vertexCount, func(i0, i1 int) {
		for i := i0; i < i1; i++ {
			positions[i] = prog.Vertex(i, varyings[i*n:(i+1)*n])
		}
	})

	width, height := rt.Width(), rt.Height()
	var tris []screenTriangle
	for t := 0; t+2 < len(indices); t += 3 {
		poly := make([]clipVertex, 3)
		for k := 0; k < 3; k++ {
			idx := indices[t+k]
			poly[k] = clipVertex{pos: positions[idx], vary: varyings[int(idx)*n : int(idx+1)*n]}
		}
		poly = clipPolygon(poly, func(p mgl32.Vec4) float32 { return p.Z() + p.W() }, n)
		poly = clipPolygon(poly, func(p mgl32.Vec4) float32 { return p.W() - p.Z() }, n)
		for k := 1; k+1 < len(poly); k++ {
			if tri, ok := setupTriangle(poly[0], poly[k], poly[k+1], width, height); ok {
				if state.CullBackFaces && !tri.front {
					continue
				}
				tris = append(tris, tri)
			}
		}
	}

	var fragments int64
	workers.Rows(height, func(y0, y1 int) {
		frag := &Fragment{
			Varyings: make([]float32, n),
			DDX:      make([]float32, n),
			DDY:      make([]float32, n),
		}
		scratch := make([]float32, n)
		var written int64
		for i := range tris {
			written += shadeTriangle(rt, &tris[i], prog, state, y0, y1, frag, scratch)
		}
		atomic.AddInt64(&fragments, written)
	})
	return DrawStats{Triangles: len(tris), Fragments: int(fragments)}
}

func clipPolygon(in []clipVertex, dist func(mgl32.Vec4) float32, n int) []clipVertex {
	if len(in) == 0 {
		return in
	}
	out := make([]clipVertex, 0, len(in)+1)
	for i := range in {
		a := in[i]
		b := in[(i+1)%len(in)]
		da := dist(a.pos)
		db := dist(b.pos)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			v := clipVertex{pos: a.pos.Add(b.pos.Sub(a.pos).Mul(t)), vary: make([]float32, n)}
			for j := 0; j < n; j++ {
				v.vary[j] = a.vary[j] + (b.vary[j]-a.vary[j])*t
			}
			out = append(out, v)
		}
	}
	return out
}

func setupTriangle(a, b, c clipVertex, width, height int) (screenTriangle, bool) {
	var tri screenTriangle
	verts := [3]clipVertex{a, b, c}
	for k, v := range verts {
		w := v.pos.W()
		if w <= 1e-9 {
			return tri, false
		}
		iw := 1 / w
		tri.x[k] = (v.pos.X()*iw*0.5 + 0.5) * float32(width)
		tri.y[k] = (v.pos.Y()*iw*0.5 + 0.5) * float32(height)
		tri.z[k] = v.pos.Z()*iw*0.5 + 0.5
		tri.iw[k] = iw
		tri.vary[k] = make([]float32, len(v.vary))
		for j, f := range v.vary {
			tri.vary[k][j] = f * iw
		}
	}
	area := edge(tri.x[0], tri.y[0], tri.x[1], tri.y[1], tri.x[2], tri.y[2])
	if area == 0 || math.IsNaN(float64(area)) {
		return tri, false
	}
	tri.front = area > 0
	if area < 0 {
		tri.x[1], tri.x[2] = tri.x[2], tri.x[1]
		tri.y[1], tri.y[2] = tri.y[2], tri.y[1]
		tri.z[1], tri.z[2] = tri.z[2], tri.z[1]
		tri.iw[1], tri.iw[2] = tri.iw[2], tri.iw[1]
		tri.vary[1], tri.vary[2] = tri.vary[2], tri.vary[1]
		area = -area
	}
	tri.area = area
	for k := 0; k < 3; k++ {
		// edge k is opposite vertex k
		i, j := (k+1)%3, (k+2)%3
		dx := tri.x[j] - tri.x[i]
		dy := tri.y[j] - tri.y[i]
		tri.topLeft[k] = dy < 0 || (dy == 0 && dx > 0)
	}

	minX := min3(tri.x[0], tri.x[1], tri.x[2])
	maxX := max3(tri.x[0], tri.x[1], tri.x[2])
	minY := min3(tri.y[0], tri.y[1], tri.y[2])
	maxY := max3(tri.y[0], tri.y[1], tri.y[2])
	tri.minX = clampInt(int(math.Floor(float64(minX))), 0, width-1)
	tri.maxX = clampInt(int(math.Ceil(float64(maxX))), 0, width-1)
	tri.minY = clampInt(int(math.Floor(float64(minY))), 0, height-1)
	tri.maxY = clampInt(int(math.Ceil(float64(maxY))), 0, height-1)
	if maxX < 0 || maxY < 0 || minX > float32(width) || minY > float32(height) {
		return tri, false
	}
	return tri, true
}

func shadeTriangle(rt *RenderTarget, tri *screenTriangle, prog Program, state DrawState, y0, y1 int, frag *Fragment, scratch []float32) int64 {
	top := tri.minY
	if top < y0 {
		top = y0
	}
	bottom := tri.maxY
	if bottom >= y1 {
		bottom = y1 - 1
	}
	var written int64
	width := rt.Width()
	for y := top; y <= bottom; y++ {
		py := float32(y) + 0.5
		for x := tri.minX; x <= tri.maxX; x++ {
			px := float32(x) + 0.5
			l, inside := tri.barycentric(px, py, true)
			if !inside {
				continue
			}
			depth := l[0]*tri.z[0] + l[1]*tri.z[1] + l[2]*tri.z[2]
			idx := y*width + x
			if state.DepthTest && rt.Depth != nil && depth >= rt.Depth[idx] {
				continue
			}
			tri.interpolate(l, frag.Varyings)
			if prog.Derivatives {
				lx, _ := tri.barycentric(px+1, py, false)
				tri.interpolate(lx, scratch)
				for j := range scratch {
					frag.DDX[j] = scratch[j] - frag.Varyings[j]
				}
				ly, _ := tri.barycentric(px, py+1, false)
				tri.interpolate(ly, scratch)
				for j := range scratch {
					frag.DDY[j] = scratch[j] - frag.Varyings[j]
				}
			}
			frag.X, frag.Y = x, y
			frag.Depth = depth
			frag.FrontFacing = tri.front
			color, keep := prog.Fragment(frag)
			if !keep {
				continue
			}
			rt.Texture.Pixels[idx] = state.Blend.Apply(rt.Texture.Pixels[idx], color)
			if state.DepthWrite && rt.Depth != nil {
				rt.Depth[idx] = depth
			}
			written++
		}
	}
	return written
}

// barycentric returns the screen space weights of (px, py). With test set it
// also reports coverage under the top-left fill rule.
func (tri *screenTriangle) barycentric(px, py float32, test bool) ([3]float32, bool) {
	var w [3]float32
	inside := true
	for k := 0; k < 3; k++ {
		i, j := (k+1)%3, (k+2)%3
		w[k] = edge(tri.x[i], tri.y[i], tri.x[j], tri.y[j], px, py)
		if test && (w[k] < 0 || (w[k] == 0 && !tri.topLeft[k])) {
			inside = false
		}
	}
	inv := 1 / tri.area
	return [3]float32{w[0] * inv, w[1] * inv, w[2] * inv}, inside
}

func (tri *screenTriangle) interpolate(l [3]float32, out []float32) {
	ow := l[0]*tri.iw[0] + l[1]*tri.iw[1] + l[2]*tri.iw[2]
	if ow == 0 {
		return
	}
	inv := 1 / ow
	for j := range out {
		out[j] = (l[0]*tri.vary[0][j] + l[1]*tri.vary[1][j] + l[2]*tri.vary[2][j]) * inv
	}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func min3(a, b, c float32) float32 {
	return float32(math.Min(float64(a), math.Min(float64(b), float64(c))))
}

func max3(a, b, c float32) float32 {
	return float32(math.Max(float64(a), math.Max(float64(b), float64(c))))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
