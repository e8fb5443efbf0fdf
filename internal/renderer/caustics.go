package renderer

import (
	"Caustics/internal/logger"
	"Caustics/internal/water"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ZeroAreaRatio stands in for oldArea/newArea when the refracted area
// element collapses to zero.
const ZeroAreaRatio = 2.0e+20

// MarchRay follows a refracted ray across the environment map. position and
// depth are the start point in light clip space, direction and depthDirection
// the projected ray. Each step advances by delta texture units. The march
// stops once the last environment sample is at or in front of the marching
// depth; when the iterations run out the last sample is returned as is.
func MarchRay(env *Texture, position mgl32.Vec2, depth float32, direction mgl32.Vec2, depthDirection, delta float32, maxIterations int) mgl32.Vec4 {
	environment := sampleClip(env, position)
	length := direction.Len()
	if length == 0 {
		return environment
	}
	factor := delta / length
	step := direction.Mul(factor)
	depthStep := depthDirection * factor

	for i := 0; i < maxIterations; i++ {
		position = position.Add(step)
		depth += depthStep

		if environment.W() <= depth {
			break
		}
		environment = sampleClip(env, position)
	}
	return environment
}

func sampleClip(tex *Texture, p mgl32.Vec2) mgl32.Vec4 {
	return tex.Sample(0.5+0.5*p.X(), 0.5+0.5*p.Y())
}

// AreaRatio estimates how much the refraction concentrates light: the area
// element before refraction over the one after, both from screen space
// derivatives.
func AreaRatio(oldDx, oldDy, newDx, newDy mgl32.Vec3) float32 {
	oldArea := oldDx.Len() * oldDy.Len()
	newArea := newDx.Len() * newDy.Len()
	if newArea == 0 {
		return ZeroAreaRatio
	}
	return oldArea / newArea
}

// CausticsVertex is a water vertex traced to the environment.
type CausticsVertex struct {
	Old        mgl32.Vec3 // point on the water surface
	New        mgl32.Vec3 // where the refracted light lands
	WaterDepth float32    // window depth of Old in light space
	Depth      float32    // window depth of New in light space
	Clip       mgl32.Vec4 // New in light clip space
}

// TraceCausticsVertex refracts the light at a water point and marches the ray
// to the environment.
func TraceCausticsVertex(position, normal mgl32.Vec3, env *Texture, delta float32, lightViewProjection mgl32.Mat4, s ShadingConfig) CausticsVertex {
	projected := lightViewProjection.Mul4x1(position.Vec4(1))
	refracted := Refract(s.LightDirection, normal, s.RefractiveIndex)
	projectedEnd := lightViewProjection.Mul4x1(position.Add(refracted).Vec4(1))

	start := mgl32.Vec2{projected.X() / projected.W(), projected.Y() / projected.W()}
	end := mgl32.Vec2{projectedEnd.X() / projectedEnd.W(), projectedEnd.Y() / projectedEnd.W()}
	depth := projected.Z() / projected.W()
	depthDirection := projectedEnd.Z()/projectedEnd.W() - depth

	environment := MarchRay(env, start, depth, end.Sub(start), depthDirection, delta, s.MaxIterations)
	landing := environment.Vec3()
	clip := lightViewProjection.Mul4x1(landing.Vec4(1))
	return CausticsVertex{
		Old:        position,
		New:        landing,
		WaterDepth: windowDepth(projected),
		Depth:      windowDepth(clip),
		Clip:       clip,
	}
}

// CausticsEstimator accumulates caustics intensity in light space. Red holds
// the summed intensity, alpha the depth of the last fragment written.
type CausticsEstimator struct {
	Target  *RenderTarget
	Shading ShadingConfig
	grid    *Model
}

// NewCausticsEstimator traces the vertices of grid, a mesh spanning [-1,1]²,
// into a resolution² target.
func NewCausticsEstimator(resolution int, grid *Model, shading ShadingConfig) *CausticsEstimator {
	return &CausticsEstimator{
		Target:  NewRenderTarget("caustics", resolution, resolution, false),
		Shading: shading,
		grid:    grid,
	}
}

// Texture is the caustics map.
func (c *CausticsEstimator) Texture() *Texture {
	return c.Target.Texture
}

// Render traces every water vertex against env and rasterises the refracted
// grid. The previously bound target is restored.
func (c *CausticsEstimator) Render(dev *Device, heights *water.Grid, env *EnvironmentMap, light *Camera) DrawStats {
	defer dev.Bind(c.Target)()
	dev.Clear(mgl32.Vec4{})

	viewProjection := light.GetViewProjection()
	envTexture := env.Texture()
	delta := env.Delta()
	shading := c.Shading
	grid := c.grid

	program := Program{
		Varyings:    8,
		Derivatives: true,
		Vertex: func(i int, out []float32) mgl32.Vec4 {
			local := grid.Vertices[i]
			texel := heights.Sample(local.X()*0.5+0.5, local.Y()*0.5+0.5)
			position := mgl32.Vec3{local.X(), local.Y(), local.Z() + texel.Height + shading.SurfaceOffset}
			v := TraceCausticsVertex(position, SurfaceNormal(texel), envTexture, delta, viewProjection, shading)
			out[0], out[1], out[2] = v.Old.X(), v.Old.Y(), v.Old.Z()
			out[3], out[4], out[5] = v.New.X(), v.New.Y(), v.New.Z()
			out[6] = v.WaterDepth
			out[7] = v.Depth
			return v.Clip
		},
		Fragment: func(f *Fragment) (mgl32.Vec4, bool) {
			return mgl32.Vec4{causticsIntensity(f, shading.CausticsFactor), 0, 0, f.Varyings[7]}, true
		},
	}

	stats := dev.Draw(program, len(grid.Vertices), grid.Faces, DrawState{Blend: CausticsBlend})
	logger.Log.Debug("Caustics rendered",
		zap.Int("triangles", stats.Triangles),
		zap.Int("fragments", stats.Fragments))
	return stats
}

func causticsIntensity(f *Fragment, factor float32) float32 {
	depth, waterDepth := f.Varyings[7], f.Varyings[6]
	if depth < waterDepth {
		return 0
	}
	ratio := AreaRatio(
		mgl32.Vec3{f.DDX[0], f.DDX[1], f.DDX[2]},
		mgl32.Vec3{f.DDY[0], f.DDY[1], f.DDY[2]},
		mgl32.Vec3{f.DDX[3], f.DDX[4], f.DDX[5]},
		mgl32.Vec3{f.DDY[3], f.DDY[4], f.DDY[5]},
	)
	return factor * ratio
}
