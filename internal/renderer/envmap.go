package renderer

import (
	"Caustics/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// EnvironmentMap renders the static scene from the light. Every texel holds
// the world position of the nearest surface in xyz and its clip depth in w;
// texels no geometry covers stay zero.
type EnvironmentMap struct {
	Target *RenderTarget

	// Cached skips re-rendering while the light and the geometry are
	// unchanged since the last render.
	Cached bool

	valid    bool
	lastView mgl32.Mat4
	lastKeys []geometryKey
}

type geometryKey struct {
	model    *Model
	matrix   mgl32.Mat4
	vertices int
	faces    int
	visible  bool
}

// NewEnvironmentMap allocates a resolution² depth map.
func NewEnvironmentMap(resolution int, cached bool) *EnvironmentMap {
	return &EnvironmentMap{
		Target: NewRenderTarget("environment", resolution, resolution, true),
		Cached: cached,
	}
}

// Texture is the rendered map.
func (e *EnvironmentMap) Texture() *Texture {
	return e.Target.Texture
}

// Delta is the size of one texel in texture coordinates.
func (e *EnvironmentMap) Delta() float32 {
	return 1 / float32(e.Target.Width())
}

// Invalidate forces the next Render to redraw.
func (e *EnvironmentMap) Invalidate() {
	e.valid = false
}

// Render draws meshes through the light camera into the map and reports
// whether anything was drawn. The previously bound target is restored.
func (e *EnvironmentMap) Render(dev *Device, meshes []*Model, light *Camera) bool {
	viewProjection := light.GetViewProjection()
	keys := make([]geometryKey, len(meshes))
	for i, m := range meshes {
		keys[i] = geometryKey{m, m.ModelMatrix, len(m.Vertices), len(m.Faces), m.Visible}
	}
	if e.Cached && e.valid && viewProjection == e.lastView && sameKeys(keys, e.lastKeys) {
		return false
	}

	defer dev.Bind(e.Target)()
	dev.Clear(mgl32.Vec4{})

	fragments := 0
	for _, m := range meshes {
		if !m.Visible || len(m.Faces) == 0 {
			continue
		}
		mesh := m
		program := Program{
			Varyings: 4,
			Vertex: func(i int, out []float32) mgl32.Vec4 {
				world := mesh.WorldVertex(i)
				clip := viewProjection.Mul4x1(world.Vec4(1))
				out[0], out[1], out[2] = world.X(), world.Y(), world.Z()
				out[3] = clip.Z()
				return clip
			},
			Fragment: func(f *Fragment) (mgl32.Vec4, bool) {
				return mgl32.Vec4{f.Varyings[0], f.Varyings[1], f.Varyings[2], f.Varyings[3]}, true
			},
		}
		stats := dev.Draw(program, len(mesh.Vertices), mesh.Faces, DrawState{DepthTest: true, DepthWrite: true})
		fragments += stats.Fragments
	}

	e.valid = true
	e.lastView = viewProjection
	e.lastKeys = keys
	logger.Log.Debug("Environment map rendered",
		zap.Int("meshes", len(meshes)),
		zap.Int("fragments", fragments))
	return true
}

func sameKeys(a, b []geometryKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
