// Package config holds the single immutable configuration consumed by the
// water pipeline. Every tunable of the simulation, optics and input drivers lives
// here; the pipeline receives a copy at construction and never mutates it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Simulation domain shapes.
const (
	GeometryPlane   = "plane"
	GeometryPolygon = "polygon"
)

// Height field backends.
const (
	BackendCPU    = "cpu"
	BackendOpenCL = "opencl"
)

// Responder maps a band (or inclusive band range) of the analyser output to a
// drop. A drop of amplitude Amp is emitted when the band magnitude exceeds
// Threshold scaled by the global threshold.
type Responder struct {
	StartBand int     `json:"startBand"`
	EndBand   int     `json:"endBand"`
	Size      float32 `json:"size"`
	Amp       float32 `json:"amp"`
	Threshold float32 `json:"threshold"`
}

// AudioRules configures sound reactivity.
type AudioRules struct {
	// BandCount is the FFT size; the analyser exposes BandCount/2 bins.
	BandCount       int         `json:"bandCount"`
	GlobalThreshold float32     `json:"globalThreshold"`
	DebugResponders bool        `json:"debugResponders"`
	Responders      []Responder `json:"responders"`
}

// Config is the full configuration surface of the pipeline.
type Config struct {
	Name string `json:"name"`

	// Output frame
	Width  int `json:"width"`
	Height int `json:"height"`

	// Height field simulation
	WaterResolution int     `json:"waterResolution"`
	SimulationDelta float32 `json:"simulationDelta"`
	WaveGain        float32 `json:"waveGain"`
	Damping         float32 `json:"damping"`
	Geometry        string  `json:"geometry"`
	PolygonSides    int     `json:"polygonSides"`
	PolygonRadius   float32 `json:"polygonRadius"`
	TickIntervalMs  float64 `json:"tickIntervalMs"`
	Backend         string  `json:"backend"`

	// Optics
	EnvironmentResolution int        `json:"environmentResolution"`
	CausticsScale         int        `json:"causticsScale"`
	RefractiveIndex       float32    `json:"refractiveIndex"`
	ChromaticSpread       [3]float32 `json:"chromaticSpread"`
	RefractionFactor      float32    `json:"refractionFactor"`
	CausticsFactor        float32    `json:"causticsFactor"`
	MaxIterations         int        `json:"maxIterations"`
	WaterLevel            float32    `json:"waterLevel"`
	CausticsBias          float32    `json:"causticsBias"`
	BlurWeights           [3]float32 `json:"blurWeights"`
	BlurOffsets           [2]float32 `json:"blurOffsets"`
	FresnelBias           float32    `json:"fresnelBias"`
	FresnelScale          float32    `json:"fresnelScale"`
	FresnelPower          float32    `json:"fresnelPower"`
	UnderwaterColor       mgl32.Vec3 `json:"underwaterColor"`
	CacheEnvironmentMap   bool       `json:"cacheEnvironmentMap"`

	// Scene
	LightDirection  mgl32.Vec3 `json:"lightDirection"`
	LightExtent     float32    `json:"lightExtent"`
	LightNear       float32    `json:"lightNear"`
	LightFar        float32    `json:"lightFar"`
	FloorSize       float32    `json:"floorSize"`
	FloorRelief     float32    `json:"floorRelief"`
	FloorReliefFreq float32    `json:"floorReliefFreq"`
	ExtraGeometry   []string   `json:"extraGeometry,omitempty"`
	SkyTop          mgl32.Vec3 `json:"skyTop"`
	SkyHorizon      mgl32.Vec3 `json:"skyHorizon"`
	SkyboxFaces     []string   `json:"skyboxFaces,omitempty"`

	// Main camera
	CameraPosition mgl32.Vec3 `json:"cameraPosition"`
	CameraUp       mgl32.Vec3 `json:"cameraUp"`
	CameraFov      float32    `json:"cameraFov"`
	CameraNear     float32    `json:"cameraNear"`
	CameraFar      float32    `json:"cameraFar"`
	MinDistance    float32    `json:"minDistance"`
	MaxDistance    float32    `json:"maxDistance"`
	MaxPolarAngle  float32    `json:"maxPolarAngle"`

	// Input drivers
	SoundReactive     bool    `json:"soundReactive"`
	MouseReactive     bool    `json:"mouseReactive"`
	FocusWater        bool    `json:"focusWater"`
	RandomPosition    bool    `json:"randomPosition"`
	RandomStart       bool    `json:"randomStart"`
	StartDrops        int     `json:"startDrops"`
	Raindrops         bool    `json:"raindrops"`
	RainIntensity     float32 `json:"rainIntensity"`
	RainMaxSize       float32 `json:"rainMaxSize"`
	RainMaxMass       float32 `json:"rainMaxMass"`
	Wind              bool    `json:"wind"`
	WindIntensity     float32 `json:"windIntensity"`
	MouseDropRadius   float32 `json:"mouseDropRadius"`
	MouseDropStrength float32 `json:"mouseDropStrength"`

	Audio AudioRules `json:"audio"`
}

// TickInterval is the minimum elapsed time between two simulation ticks.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs * float64(time.Millisecond))
}

// CausticsResolution is the side of the caustics texture.
func (c Config) CausticsResolution() int {
	return c.WaterResolution * c.CausticsScale
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Name:   "caustics",
		Width:  512,
		Height: 384,

		WaterResolution: 256,
		SimulationDelta: 1.0 / 216.0,
		WaveGain:        2.0,
		Damping:         0.995,
		Geometry:        GeometryPolygon,
		PolygonSides:    34,
		PolygonRadius:   0.9,
		TickIntervalMs:  32,
		Backend:         BackendCPU,

		EnvironmentResolution: 256,
		CausticsScale:         3,
		RefractiveIndex:       0.7504,
		ChromaticSpread:       [3]float32{1, 0.96, 0.92},
		RefractionFactor:      1,
		CausticsFactor:        0.15,
		MaxIterations:         50,
		WaterLevel:            0.8,
		CausticsBias:          0.001,
		BlurWeights:           [3]float32{0.2270270270, 0.3162162162, 0.0702702703},
		BlurOffsets:           [2]float32{1.3846153846, 3.2307692308},
		FresnelBias:           0.1,
		FresnelScale:          1,
		FresnelPower:          2,
		UnderwaterColor:       mgl32.Vec3{0.2, 0.2, 0.2},

		LightDirection:  mgl32.Vec3{0, 0, -1},
		LightExtent:     1.2,
		LightNear:       0,
		LightFar:        4,
		FloorSize:       100,
		FloorReliefFreq: 2,
		SkyTop:          mgl32.Vec3{0.27, 0.67, 1.0},
		SkyHorizon:      mgl32.Vec3{0.85, 0.92, 1.0},

		CameraPosition: mgl32.Vec3{0, 0, 2.25},
		CameraUp:       mgl32.Vec3{1, 0, 1},
		CameraFov:      55,
		CameraNear:     0.01,
		CameraFar:      100,
		MinDistance:    0.1,
		MaxDistance:    7,
		MaxPolarAngle:  math.Pi/2 - 0.1,

		SoundReactive:     true,
		RandomPosition:    true,
		RandomStart:       true,
		StartDrops:        33,
		RainIntensity:     0.033,
		RainMaxSize:       0.1,
		RainMaxMass:       0.1,
		WindIntensity:     0.01,
		MouseDropRadius:   0.03,
		MouseDropStrength: 0.02,

		Audio: AudioRules{
			BandCount:       32768,
			GlobalThreshold: 111,
			Responders: []Responder{
				{StartBand: 0, EndBand: 0, Size: 0.2, Amp: 0.01, Threshold: 250},
				{StartBand: 1, EndBand: 1, Size: 0.1, Amp: 0.015, Threshold: 240},
				{StartBand: 2, EndBand: 2, Size: 0.075, Amp: 0.02, Threshold: 220},
				{StartBand: 3, EndBand: 3, Size: 0.05, Amp: 0.025, Threshold: 210},
				{StartBand: 4, EndBand: 4, Size: 0.033, Amp: 0.025, Threshold: 200},
				{StartBand: 10, EndBand: 20, Size: 0.01, Amp: 0.05, Threshold: 180},
				{StartBand: 20, EndBand: 30, Size: 0.05, Amp: 0.03, Threshold: 190},
			},
		},
	}
}

// Presets returns the named art variants. Each is a complete Config.
func Presets() map[string]Config {
	base := Default()

	rain := Default()
	rain.Name = "rain"
	rain.SoundReactive = false
	rain.Raindrops = true
	rain.RainIntensity = 0.2
	rain.Geometry = GeometryPlane

	wind := Default()
	wind.Name = "wind"
	wind.SoundReactive = false
	wind.Wind = true
	wind.WindIntensity = 0.05
	wind.FloorRelief = 0.05
	wind.UnderwaterColor = mgl32.Vec3{0.16, 0.22, 0.26}

	still := Default()
	still.Name = "still"
	still.SoundReactive = false
	still.RandomStart = false
	still.MouseReactive = true
	still.PolygonSides = 6
	still.Damping = 0.998

	return map[string]Config{
		base.Name:  base,
		rain.Name:  rain,
		wind.Name:  wind,
		still.Name: still,
	}
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset looks up a preset by name.
func Preset(name string) (Config, error) {
	cfg, ok := Presets()[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown preset %q", name)
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot even allocate. Numeric
// tunables (gain, damping, indices) are deliberately not range checked.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New("frame size must be positive")
	}
	if c.WaterResolution < 2 {
		return errors.New("waterResolution must be at least 2")
	}
	if c.EnvironmentResolution < 2 {
		return errors.New("environmentResolution must be at least 2")
	}
	if c.CausticsScale < 1 {
		return errors.New("causticsScale must be at least 1")
	}
	if c.Geometry != GeometryPlane && c.Geometry != GeometryPolygon {
		return fmt.Errorf("unknown geometry %q", c.Geometry)
	}
	if c.Geometry == GeometryPolygon && c.PolygonSides < 3 {
		return errors.New("polygonSides must be at least 3")
	}
	if c.Backend != BackendCPU && c.Backend != BackendOpenCL {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	for i, r := range c.Audio.Responders {
		if r.StartBand < 0 || r.EndBand < r.StartBand {
			return fmt.Errorf("responder %d: invalid band range %d-%d", i, r.StartBand, r.EndBand)
		}
	}
	return nil
}

// Load reads a JSON configuration. Fields absent from the file keep the values
// of the Default configuration.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as indented JSON.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
