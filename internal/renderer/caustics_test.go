package renderer

import (
	"math"
	"testing"

	"Caustics/internal/water"

	"github.com/go-gl/mathgl/mgl32"
)

// testGrid builds an n×n quad grid over [-half, half]² at height z.
func testGrid(n int, half, z float32) *Model {
	var vertices []mgl32.Vec3
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			vertices = append(vertices, mgl32.Vec3{
				-half + 2*half*float32(x)/float32(n),
				-half + 2*half*float32(y)/float32(n),
				z,
			})
		}
	}
	var indices []uint32
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := uint32(y*(n+1) + x)
			indices = append(indices, i, i+1, i+uint32(n)+2, i, i+uint32(n)+2, i+uint32(n)+1)
		}
	}
	return CreateModel("grid", vertices, indices)
}

func testLight() *Camera {
	return NewLightCamera(mgl32.Vec3{0, 0, 4}, mgl32.Vec3{}, 1.2, 0, 4)
}

func TestMarchRayStopsOnFirstHit(t *testing.T) {
	env := NewTexture(4, 4)
	// Recorded depth always in front of the marching depth.
	env.Fill(mgl32.Vec4{0.1, 0.2, 0.3, -1})

	got := MarchRay(env, mgl32.Vec2{0.2, 0.1}, 0.5, mgl32.Vec2{1, 0}, 0.1, 0.25, 1)

	if got != (mgl32.Vec4{0.1, 0.2, 0.3, -1}) {
		t.Errorf("Expected the first environment sample, got %v", got)
	}
}

func TestMarchRayExhaustionReturnsLastSample(t *testing.T) {
	env := NewTexture(4, 1)
	for x := 0; x < 4; x++ {
		// Depth 10 is never reached.
		env.Set(x, 0, mgl32.Vec4{float32(x), 0, 0, 10})
	}

	// Two half texel steps from the centre of texel 0 land on texel 1.
	got := MarchRay(env, mgl32.Vec2{-0.75, 0}, 0, mgl32.Vec2{3, 0}, 0, 0.25, 2)

	if math.Abs(float64(got.X()-1)) > 1e-5 {
		t.Errorf("Expected the sample of texel 1, got %v", got)
	}
}

func TestMarchRayZeroDirection(t *testing.T) {
	env := NewTexture(2, 2)
	env.Fill(mgl32.Vec4{1, 2, 3, 10})

	got := MarchRay(env, mgl32.Vec2{}, 0, mgl32.Vec2{}, 1, 0.5, 50)

	if got != (mgl32.Vec4{1, 2, 3, 10}) {
		t.Errorf("Expected the starting sample, got %v", got)
	}
}

func TestAreaRatio(t *testing.T) {
	ratio := AreaRatio(
		mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0},
		mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{0, 0.5, 0},
	)
	if math.Abs(float64(ratio-4)) > 1e-6 {
		t.Errorf("Expected a fourfold concentration, got %f", ratio)
	}
}

func TestAreaRatioZeroAreaGuard(t *testing.T) {
	tests := []struct {
		name       string
		oldX, oldY mgl32.Vec3
	}{
		{"collapsed refracted area", mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{"both areas collapsed", mgl32.Vec3{}, mgl32.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio := AreaRatio(tt.oldX, tt.oldY, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{})
			if ratio != ZeroAreaRatio {
				t.Errorf("Expected %g, got %g", ZeroAreaRatio, ratio)
			}
			if math.IsNaN(float64(ratio)) || math.IsInf(float64(ratio), 0) {
				t.Error("Ratio must stay finite")
			}
		})
	}
}

func TestTraceCausticsVertexFlatWater(t *testing.T) {
	env := NewTexture(8, 8)
	env.Fill(mgl32.Vec4{0.1, 0.2, 0, 1})
	light := testLight()

	v := TraceCausticsVertex(mgl32.Vec3{0.1, 0.2, 0.8}, mgl32.Vec3{0, 0, 1}, env, 1.0/8, light.GetViewProjection(), DefaultShadingConfig())

	if !vecClose(v.New, mgl32.Vec3{0.1, 0.2, 0}, 1e-6) {
		t.Errorf("Light through flat water should land straight below, got %v", v.New)
	}
	if math.Abs(float64(v.WaterDepth-0.8)) > 1e-5 {
		t.Errorf("Expected water depth 0.8, got %f", v.WaterDepth)
	}
	if math.Abs(float64(v.Depth-1)) > 1e-5 {
		t.Errorf("Expected floor depth 1, got %f", v.Depth)
	}
}

func TestTraceCausticsVertexTiltedWaterMarches(t *testing.T) {
	light := testLight()
	env := NewRenderTarget("environment", 32, 32, true)
	dev := NewDevice(nil)
	envMap := &EnvironmentMap{Target: env}
	envMap.Render(dev, []*Model{testGrid(1, 3, 0)}, light)

	normal := mgl32.Vec3{0.3, 0, 1}.Normalize()
	v := TraceCausticsVertex(mgl32.Vec3{0, 0, 0.8}, normal, env.Texture, envMap.Delta(), light.GetViewProjection(), DefaultShadingConfig())

	// A normal tilted toward +x bends the light toward -x.
	if v.New.X() >= 0 {
		t.Errorf("Expected the landing point at negative x, got %v", v.New)
	}
	if math.Abs(float64(v.New.Z())) > 1e-5 {
		t.Errorf("Expected the landing point on the floor, got %v", v.New)
	}
}

func TestCausticsFlatWaterIsUniform(t *testing.T) {
	light := testLight()
	dev := NewDevice(nil)
	envMap := NewEnvironmentMap(32, false)
	envMap.Render(dev, []*Model{testGrid(1, 3, 0)}, light)

	estimator := NewCausticsEstimator(24, testGrid(8, 1, 0), DefaultShadingConfig())
	stats := estimator.Render(dev, water.NewGrid(8), envMap, light)

	if stats.Fragments == 0 {
		t.Fatal("Caustics pass wrote nothing")
	}
	if dev.Target() != nil {
		t.Error("Caustics pass should restore the bound target")
	}

	tex := estimator.Texture()
	center := tex.At(12, 12)
	if math.Abs(float64(center.X()-0.15)) > 0.01 {
		t.Errorf("Flat water should give the base intensity 0.15, got %f", center.X())
	}
	if math.Abs(float64(center.W()-1)) > 1e-4 {
		t.Errorf("Expected the floor depth in alpha, got %f", center.W())
	}
	if corner := tex.At(0, 0); corner != (mgl32.Vec4{}) {
		t.Errorf("Texels outside the water should stay clear, got %v", corner)
	}
}

func TestCausticsIntensityBehindWater(t *testing.T) {
	f := &Fragment{
		Varyings: []float32{0, 0, 0, 0, 0, 0, 0.8, 0.5},
		DDX:      []float32{1, 0, 0, 1, 0, 0, 0, 0},
		DDY:      []float32{0, 1, 0, 0, 1, 0, 0, 0},
	}
	if got := causticsIntensity(f, 0.15); got != 0 {
		t.Errorf("Light landing above the surface should contribute nothing, got %f", got)
	}

	f.Varyings[7] = 0.9
	if got := causticsIntensity(f, 0.15); math.Abs(float64(got-0.15)) > 1e-6 {
		t.Errorf("Expected 0.15, got %f", got)
	}
}
