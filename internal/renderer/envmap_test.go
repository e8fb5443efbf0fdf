package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestEnvironmentMapRecordsFloor(t *testing.T) {
	screen := NewRenderTarget("screen", 4, 4, false)
	dev := NewDevice(screen)
	envMap := NewEnvironmentMap(16, false)

	if !envMap.Render(dev, []*Model{testGrid(1, 3, 0)}, testLight()) {
		t.Fatal("Expected the map to be drawn")
	}
	if dev.Target() != screen {
		t.Error("Render should restore the bound target")
	}

	// Texel 12 spans light ndc [0.5, 0.625], centre 0.5625.
	p := envMap.Texture().At(12, 4)
	wantX := float32(0.5625 * 1.2)
	wantY := float32(-0.4375 * 1.2)
	if math.Abs(float64(p.X()-wantX)) > 1e-4 || math.Abs(float64(p.Y()-wantY)) > 1e-4 {
		t.Errorf("Expected world (%f, %f), got (%f, %f)", wantX, wantY, p.X(), p.Y())
	}
	if math.Abs(float64(p.Z())) > 1e-6 {
		t.Errorf("Expected floor height 0, got %f", p.Z())
	}
	if math.Abs(float64(p.W()-1)) > 1e-5 {
		t.Errorf("Expected floor depth 1, got %f", p.W())
	}
	if envMap.Delta() != 1.0/16 {
		t.Errorf("Expected delta 1/16, got %f", envMap.Delta())
	}
}

func TestEnvironmentMapKeepsNearestSurface(t *testing.T) {
	dev := NewDevice(nil)
	envMap := NewEnvironmentMap(8, false)
	floor := testGrid(1, 3, 0)
	ledge := testGrid(1, 0.5, 0.4)

	envMap.Render(dev, []*Model{ledge, floor}, testLight())

	center := envMap.Texture().At(4, 4)
	if math.Abs(float64(center.Z()-0.4)) > 1e-5 {
		t.Errorf("Expected the raised ledge at the centre, got z %f", center.Z())
	}
	edge := envMap.Texture().At(0, 0)
	if math.Abs(float64(edge.Z())) > 1e-5 {
		t.Errorf("Expected the floor at the edge, got z %f", edge.Z())
	}
}

func TestEnvironmentMapUncoveredTexelsStayZero(t *testing.T) {
	dev := NewDevice(nil)
	envMap := NewEnvironmentMap(8, false)

	envMap.Render(dev, []*Model{testGrid(1, 0.3, 0)}, testLight())

	if got := envMap.Texture().At(0, 0); got != (mgl32.Vec4{}) {
		t.Errorf("Expected an empty texel, got %v", got)
	}
}

func TestEnvironmentMapCache(t *testing.T) {
	dev := NewDevice(nil)
	light := testLight()
	floor := testGrid(1, 3, 0)

	uncached := NewEnvironmentMap(8, false)
	uncached.Render(dev, []*Model{floor}, light)
	if !uncached.Render(dev, []*Model{floor}, light) {
		t.Error("Uncached map should redraw every time")
	}

	cached := NewEnvironmentMap(8, true)
	if !cached.Render(dev, []*Model{floor}, light) {
		t.Fatal("First render must draw")
	}
	if cached.Render(dev, []*Model{floor}, light) {
		t.Error("Unchanged scene should be skipped")
	}

	floor.SetPosition(0, 0, 0.1)
	if !cached.Render(dev, []*Model{floor}, light) {
		t.Error("Moved geometry should redraw")
	}

	cached.Invalidate()
	if !cached.Render(dev, []*Model{floor}, light) {
		t.Error("Invalidated map should redraw")
	}

	light.Position = mgl32.Vec3{0.1, 0, 4}
	if !cached.Render(dev, []*Model{floor}, light) {
		t.Error("Moved light should redraw")
	}
}
