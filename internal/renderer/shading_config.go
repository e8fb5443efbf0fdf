package renderer

import "github.com/go-gl/mathgl/mgl32"

// ShadingConfig holds the optical constants of the caustics and compositing
// passes.
type ShadingConfig struct {
	// Light
	LightDirection mgl32.Vec3 `json:"lightDirection"`

	// Refraction: air/water index ratio and the per channel multipliers
	// applied to it for the chromatic offsets.
	RefractiveIndex  float32    `json:"refractiveIndex"`
	ChromaticSpread  [3]float32 `json:"chromaticSpread"`
	RefractionFactor float32    `json:"refractionFactor"`

	// Caustics estimation
	CausticsFactor float32 `json:"causticsFactor"`
	MaxIterations  int     `json:"maxIterations"`
	SurfaceOffset  float32 `json:"surfaceOffset"`

	// Floor shading
	CausticsBias    float32    `json:"causticsBias"`
	BlurWeights     [3]float32 `json:"blurWeights"`
	BlurOffsets     [2]float32 `json:"blurOffsets"`
	BlurResolution  float32    `json:"blurResolution"`
	UnderwaterColor mgl32.Vec3 `json:"underwaterColor"`

	// Reflection
	FresnelBias  float32 `json:"fresnelBias"`
	FresnelScale float32 `json:"fresnelScale"`
	FresnelPower float32 `json:"fresnelPower"`

	// Frame
	ClearColor mgl32.Vec4 `json:"clearColor"`
}

// DefaultShadingConfig returns the tuned look of the pool.
func DefaultShadingConfig() ShadingConfig {
	return ShadingConfig{
		LightDirection: mgl32.Vec3{0, 0, -1},

		RefractiveIndex:  0.7504,
		ChromaticSpread:  [3]float32{1, 0.96, 0.92},
		RefractionFactor: 1,

		CausticsFactor: 0.15,
		MaxIterations:  50,
		SurfaceOffset:  0.8,

		CausticsBias:    0.001,
		BlurWeights:     [3]float32{0.2270270270, 0.3162162162, 0.0702702703},
		BlurOffsets:     [2]float32{1.3846153846, 3.2307692308},
		BlurResolution:  1024,
		UnderwaterColor: mgl32.Vec3{0.2, 0.2, 0.2},

		FresnelBias:  0.1,
		FresnelScale: 1,
		FresnelPower: 2,

		ClearColor: mgl32.Vec4{1, 1, 1, 1},
	}
}

// Etas returns the refraction ratios used for the red, green and blue samples.
func (s ShadingConfig) Etas() [3]float32 {
	return [3]float32{
		s.RefractiveIndex * s.ChromaticSpread[0],
		s.RefractiveIndex * s.ChromaticSpread[1],
		s.RefractiveIndex * s.ChromaticSpread[2],
	}
}

// BlurWeightSum is the total weight of the five blur taps.
func (s ShadingConfig) BlurWeightSum() float32 {
	return s.BlurWeights[0] + 2*s.BlurWeights[1] + 2*s.BlurWeights[2]
}
