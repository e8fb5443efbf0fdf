package engine

import (
	"Caustics/internal/config"
	"Caustics/internal/renderer"
)

// ShadingFromConfig extracts the optical constants of the passes.
func ShadingFromConfig(cfg config.Config) renderer.ShadingConfig {
	s := renderer.DefaultShadingConfig()
	s.LightDirection = cfg.LightDirection.Normalize()
	s.RefractiveIndex = cfg.RefractiveIndex
	s.ChromaticSpread = cfg.ChromaticSpread
	s.RefractionFactor = cfg.RefractionFactor
	s.CausticsFactor = cfg.CausticsFactor
	s.MaxIterations = cfg.MaxIterations
	s.SurfaceOffset = cfg.WaterLevel
	s.CausticsBias = cfg.CausticsBias
	s.BlurWeights = cfg.BlurWeights
	s.BlurOffsets = cfg.BlurOffsets
	s.BlurResolution = float32(cfg.EnvironmentResolution)
	s.UnderwaterColor = cfg.UnderwaterColor
	s.FresnelBias = cfg.FresnelBias
	s.FresnelScale = cfg.FresnelScale
	s.FresnelPower = cfg.FresnelPower
	return s
}
