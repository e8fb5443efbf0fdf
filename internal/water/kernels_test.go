package water

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDropFalloff(t *testing.T) {
	tests := []struct {
		dist, radius, want float32
	}{
		{0, 0.2, 1},
		{0.1, 0.2, 0.5},
		{0.2, 0.2, 0},
		{0.5, 0.2, 0},
		{0, 0, 0},
		{0.1, 0, 0},
		{0.1, -0.2, 0},
	}
	for _, tt := range tests {
		got := DropFalloff(tt.dist, tt.radius)
		if math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("DropFalloff(%f, %f) = %f, want %f", tt.dist, tt.radius, got, tt.want)
		}
	}
}

func TestDropTexelIsLinearInStrength(t *testing.T) {
	g := NewGrid(16)
	d := Drop{Center: mgl32.Vec2{0, 0}, Radius: 0.3, Strength: 1}
	one := DropTexel(g, 8, 8, d)
	d.Strength = -2.5
	scaled := DropTexel(g, 8, 8, d)

	if math.Abs(float64(scaled.Height+2.5*one.Height)) > 1e-6 {
		t.Errorf("expected %f, got %f", -2.5*one.Height, scaled.Height)
	}
}

func TestUpdateTexelFlatIsStill(t *testing.T) {
	g := NewGrid(8)
	got := UpdateTexel(g, 3, 4, DefaultParams(8))
	if got.Height != 0 || got.Velocity != 0 || got.NormalX != 0 || got.NormalZ != 0 {
		t.Errorf("flat water should stay flat, got %+v", got)
	}
}

func TestUpdateTexelPullsTowardAverage(t *testing.T) {
	g := NewGrid(8)
	g.Texels[4*8+4].Height = 1
	p := DefaultParams(8)

	peak := UpdateTexel(g, 4, 4, p)
	if peak.Velocity >= 0 || peak.Height >= 1 {
		t.Errorf("a raised texel should accelerate downward, got %+v", peak)
	}
	neighbour := UpdateTexel(g, 5, 4, p)
	want := float32(0.25 * 2 * 0.995)
	if math.Abs(float64(neighbour.Velocity-want)) > 1e-5 {
		t.Errorf("neighbour velocity should be %f, got %f", want, neighbour.Velocity)
	}
}

func TestGridSampleClampsToEdge(t *testing.T) {
	g := NewGrid(4)
	for i := range g.Texels {
		g.Texels[i].Height = float32(i % 4)
	}
	if h := g.SampleHeight(-1, 0.5); h != 0 {
		t.Errorf("left of the grid should clamp to column 0, got %f", h)
	}
	if h := g.SampleHeight(2, 0.5); h != 3 {
		t.Errorf("right of the grid should clamp to column 3, got %f", h)
	}
	if h := g.SampleHeight(0.5, 0.5); math.Abs(float64(h-1.5)) > 1e-6 {
		t.Errorf("centre should interpolate columns 1 and 2, got %f", h)
	}
}
