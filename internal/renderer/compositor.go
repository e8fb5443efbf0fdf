package renderer

import (
	"math"

	"Caustics/internal/water"

	"github.com/go-gl/mathgl/mgl32"
)

// Scene is everything one composited frame reads.
type Scene struct {
	Camera      *Camera
	Light       *Camera
	Environment []*Model
	Water       *Model // surface mesh in [-1,1]², placed at the water level
	Heights     *water.Grid
	Caustics    *Texture
}

// Compositor draws the frame in two passes: the scene without water into
// the refraction target, then the scene with the water surface sampling it.
type Compositor struct {
	Refraction *RenderTarget
	Frame      *RenderTarget
	Shading    ShadingConfig
	Sky        *SkyCube
}

// NewCompositor allocates both passes' targets at the frame size.
func NewCompositor(width, height int, shading ShadingConfig, sky *SkyCube) *Compositor {
	return &Compositor{
		Refraction: NewRenderTarget("refraction", width, height, true),
		Frame:      NewRenderTarget("frame", width, height, true),
		Shading:    shading,
		Sky:        sky,
	}
}

// Resize reallocates the targets when the frame size changes.
func (c *Compositor) Resize(width, height int) {
	if c.Frame.Width() == width && c.Frame.Height() == height {
		return
	}
	c.Refraction = NewRenderTarget("refraction", width, height, true)
	c.Frame = NewRenderTarget("frame", width, height, true)
}

// Render composites scene and returns the final frame. The previously bound
// target is restored.
func (c *Compositor) Render(dev *Device, scene Scene) *Texture {
	c.renderPass(dev, c.Refraction, scene, false)
	c.renderPass(dev, c.Frame, scene, true)
	return c.Frame.Texture
}

func (c *Compositor) renderPass(dev *Device, target *RenderTarget, scene Scene, withWater bool) {
	defer dev.Bind(target)()
	dev.Clear(c.Shading.ClearColor)

	state := DrawState{DepthTest: true, DepthWrite: true}
	for _, m := range scene.Environment {
		if m.Visible && len(m.Faces) > 0 {
			dev.Draw(c.environmentProgram(m, scene), len(m.Vertices), m.Faces, state)
		}
	}
	if withWater && scene.Water != nil && scene.Water.Visible && scene.Heights != nil {
		dev.Draw(c.waterProgram(scene), len(scene.Water.Vertices), scene.Water.Faces, state)
	}
}

// environmentProgram shades static geometry with the blurred caustics.
func (c *Compositor) environmentProgram(m *Model, scene Scene) Program {
	s := c.Shading
	cameraVP := scene.Camera.GetViewProjection()
	lightVP := scene.Light.GetViewProjection()
	caustics := scene.Caustics

	return Program{
		Varyings: 4,
		Vertex: func(i int, out []float32) mgl32.Vec4 {
			world := m.WorldVertex(i)
			out[0] = -s.LightDirection.Dot(m.WorldNormal(i))
			lightClip := lightVP.Mul4x1(world.Vec4(1))
			inv := 1 / lightClip.W()
			out[1] = 0.5 + lightClip.X()*inv*0.5
			out[2] = 0.5 + lightClip.Y()*inv*0.5
			out[3] = 0.5 + lightClip.Z()*inv*0.5
			return cameraVP.Mul4x1(world.Vec4(1))
		},
		Fragment: func(f *Fragment) (mgl32.Vec4, bool) {
			lightIntensity := f.Varyings[0]
			u, v, depth := f.Varyings[1], f.Varyings[2], f.Varyings[3]
			light := 0.5 + 0.2*lightIntensity
			if caustics != nil && caustics.Sample(u, v).W() > depth-s.CausticsBias {
				intensity := 0.5 * (s.blur(caustics, u, v, 0, 0.5) + s.blur(caustics, u, v, 0.5, 0))
				light += intensity * Smoothstep(0, 1, lightIntensity)
			}
			color := s.UnderwaterColor.Mul(light)
			return color.Vec4(1), true
		},
	}
}

// blur is a five tap linear-sampled gaussian along (dx, dy) over the red
// channel.
func (s ShadingConfig) blur(tex *Texture, u, v, dx, dy float32) float32 {
	res := s.BlurResolution
	if res <= 0 {
		res = float32(tex.Width)
	}
	o1u, o1v := s.BlurOffsets[0]*dx/res, s.BlurOffsets[0]*dy/res
	o2u, o2v := s.BlurOffsets[1]*dx/res, s.BlurOffsets[1]*dy/res

	intensity := tex.Sample(u, v).X() * s.BlurWeights[0]
	intensity += tex.Sample(u+o1u, v+o1v).X() * s.BlurWeights[1]
	intensity += tex.Sample(u-o1u, v-o1v).X() * s.BlurWeights[1]
	intensity += tex.Sample(u+o2u, v+o2v).X() * s.BlurWeights[2]
	intensity += tex.Sample(u-o2u, v-o2v).X() * s.BlurWeights[2]
	return intensity
}

// waterProgram refracts the first pass and reflects the sky.
func (c *Compositor) waterProgram(scene Scene) Program {
	s := c.Shading
	etas := s.Etas()
	cameraVP := scene.Camera.GetViewProjection()
	eyePosition := scene.Camera.Position
	surface := scene.Water
	heights := scene.Heights
	refraction := c.Refraction.Texture
	sky := c.Sky

	return Program{
		Varyings: 10,
		Vertex: func(i int, out []float32) mgl32.Vec4 {
			local := surface.Vertices[i]
			texel := heights.Sample(local.X()*0.5+0.5, local.Y()*0.5+0.5)
			pos := surface.ModelMatrix.Mul4x1(mgl32.Vec4{local.X(), local.Y(), local.Z() + texel.Height, 1}).Vec3()
			normal := SurfaceNormal(texel)
			eye := safeNormalize(pos.Sub(eyePosition))

			for k, eta := range etas {
				refracted := safeNormalize(Refract(eye, normal, eta))
				projected := cameraVP.Mul4x1(pos.Add(refracted.Mul(s.RefractionFactor)).Vec4(1))
				out[2*k] = projected.X() / projected.W()
				out[2*k+1] = projected.Y() / projected.W()
			}
			reflected := safeNormalize(Reflect(eye, normal))
			out[6], out[7], out[8] = reflected.X(), reflected.Y(), reflected.Z()
			base := math.Max(0, float64(1+eye.Dot(normal)))
			out[9] = s.FresnelBias + s.FresnelScale*float32(math.Pow(base, float64(s.FresnelPower)))
			return cameraVP.Mul4x1(pos.Vec4(1))
		},
		Fragment: func(f *Fragment) (mgl32.Vec4, bool) {
			v := f.Varyings
			refracted := mgl32.Vec3{
				refraction.Sample(v[0]*0.5+0.5, v[1]*0.5+0.5).X(),
				refraction.Sample(v[2]*0.5+0.5, v[3]*0.5+0.5).Y(),
				refraction.Sample(v[4]*0.5+0.5, v[5]*0.5+0.5).Z(),
			}
			var reflected mgl32.Vec3
			if sky != nil {
				reflected = sky.Sample(mgl32.Vec3{v[6], v[7], v[8]})
			}
			t := mgl32.Clamp(v[9], 0, 1)
			color := refracted.Add(reflected.Sub(refracted).Mul(t))
			return color.Vec4(1), true
		},
	}
}
