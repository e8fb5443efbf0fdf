// Package engine schedules the water pipeline: drivers every frame, a
// throttled simulation tick (drivers, step, environment map, caustics), then
// the two compositing passes.
package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"Caustics/internal/audio"
	"Caustics/internal/behaviour"
	"Caustics/internal/config"
	"Caustics/internal/loader"
	"Caustics/internal/logger"
	"Caustics/internal/renderer"
	"Caustics/internal/water"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Key is an engine command bound to a keyboard key by the window.
type Key int

const (
	KeySound Key = iota // M
	KeyRain             // R
	KeyWind             // W
	KeyClear            // C
	KeyFocus            // F
	KeyMouse            // P
)

func (k Key) String() string {
	switch k {
	case KeySound:
		return "sound"
	case KeyRain:
		return "rain"
	case KeyWind:
		return "wind"
	case KeyClear:
		return "clear"
	case KeyFocus:
		return "focus"
	case KeyMouse:
		return "mouse"
	}
	return fmt.Sprintf("Key(%d)", int(k))
}

// Options are the runtime dependencies of an engine.
type Options struct {
	Analyser audio.Analyser
	Clock    Clock
	Seed     int64
}

type Engine struct {
	Camera *renderer.Camera
	Light  *renderer.Camera

	cfg     config.Config
	shading renderer.ShadingConfig
	clock   Clock
	random  *rand.Rand

	sim         *water.Simulation
	device      *renderer.Device
	envMap      *renderer.EnvironmentMap
	caustics    *renderer.CausticsEstimator
	compositor  *renderer.Compositor
	surface     *renderer.Model
	environment []*renderer.Model

	behaviours *behaviour.BehaviourManager
	drivers    map[string]behaviour.Driver

	width, height int
	mouseReactive bool
	focusWater    bool
	lastTick      time.Time
	ticks         int
	frames        int
}

// New builds the scene described by cfg and seeds the surface with the start
// drops.
func New(cfg config.Config, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:           cfg,
		shading:       ShadingFromConfig(cfg),
		clock:         opts.Clock,
		random:        rand.New(rand.NewSource(opts.Seed)),
		device:        renderer.NewDevice(nil),
		drivers:       make(map[string]behaviour.Driver),
		behaviours:    behaviour.NewBehaviourManager(),
		width:         cfg.Width,
		height:        cfg.Height,
		mouseReactive: cfg.MouseReactive,
		focusWater:    cfg.FocusWater,
	}

	e.sim = water.NewSimulation(cfg.WaterResolution, water.Params{
		Delta:   cfg.SimulationDelta,
		Gain:    cfg.WaveGain,
		Damping: cfg.Damping,
	}, simulationDomain(cfg))
	if cfg.Backend == config.BackendOpenCL {
		backend, err := water.NewOpenCLBackend(cfg.WaterResolution)
		if err != nil {
			logger.Log.Warn("OpenCL backend unavailable, using CPU", zap.Error(err))
		} else {
			e.sim.SetBackend(backend)
		}
	}

	if err := e.buildScene(opts.Seed); err != nil {
		e.sim.Close()
		return nil, err
	}

	env := behaviour.Env{
		Config:   cfg,
		Sink:     e.sim,
		Random:   e.random,
		Analyser: opts.Analyser,
		Now:      e.clock.Now,
	}
	for _, name := range behaviour.AvailableDrivers() {
		driver := behaviour.CreateDriver(name, env)
		e.drivers[name] = driver
		e.behaviours.Add(driver)
	}
	started := behaviour.ScatterStartDrops(env)

	logger.Log.Info("Engine ready",
		zap.String("preset", cfg.Name),
		zap.String("backend", e.sim.Backend().Name()),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("drivers", e.behaviours.Len()),
		zap.Int("startDrops", started))

	return e, nil
}

func simulationDomain(cfg config.Config) water.Domain {
	if cfg.Geometry == config.GeometryPolygon {
		return water.PolygonDomain{Sides: cfg.PolygonSides, Radius: cfg.PolygonRadius}
	}
	return water.PlaneDomain{}
}

func (e *Engine) buildScene(seed int64) error {
	cfg := e.cfg

	surface, err := loader.LoadWaterGrid(cfg.WaterResolution)
	if err != nil {
		return fmt.Errorf("building water surface: %w", err)
	}
	surface.SetPosition(0, 0, cfg.WaterLevel)
	e.surface = surface

	floor, err := loader.LoadFloor(cfg.FloorSize, cfg.FloorRelief, cfg.FloorReliefFreq, seed)
	if err != nil {
		return fmt.Errorf("building floor: %w", err)
	}
	e.environment = append(e.environment, floor)
	for _, path := range cfg.ExtraGeometry {
		model, err := loader.LoadModel(path, true)
		if err != nil {
			return fmt.Errorf("loading geometry: %w", err)
		}
		e.environment = append(e.environment, model)
	}

	lightDir := cfg.LightDirection.Normalize()
	e.Light = renderer.NewLightCamera(lightDir.Mul(-cfg.LightFar), mgl32.Vec3{}, cfg.LightExtent, cfg.LightNear, cfg.LightFar)

	e.Camera = renderer.NewPerspectiveCamera(cfg.Width, cfg.Height, cfg.CameraFov, cfg.CameraNear, cfg.CameraFar)
	e.Camera.Position = cfg.CameraPosition
	e.Camera.Up = cfg.CameraUp
	e.Camera.MinDistance = cfg.MinDistance
	e.Camera.MaxDistance = cfg.MaxDistance
	e.Camera.MaxPolarAngle = cfg.MaxPolarAngle
	e.Camera.LookAt(e.focusTarget())

	sky := renderer.CreateSolidColorSkyCube(cfg.SkyTop, cfg.SkyHorizon)
	if len(cfg.SkyboxFaces) > 0 {
		sky, err = renderer.CreateSkyCube(renderer.NewTextureManager(), cfg.SkyboxFaces, cfg.SkyTop, cfg.SkyHorizon)
		if err != nil {
			return fmt.Errorf("loading skybox: %w", err)
		}
	}

	e.envMap = renderer.NewEnvironmentMap(cfg.EnvironmentResolution, cfg.CacheEnvironmentMap)
	e.caustics = renderer.NewCausticsEstimator(cfg.CausticsResolution(), surface, e.shading)
	e.compositor = renderer.NewCompositor(cfg.Width, cfg.Height, e.shading, sky)
	return nil
}

func (e *Engine) focusTarget() mgl32.Vec3 {
	if e.focusWater {
		return mgl32.Vec3{0, 0, e.cfg.WaterLevel}
	}
	return mgl32.Vec3{}
}

// Frame runs the per-frame drivers, ticks the simulation when more than the
// tick interval has passed since the last tick, and composites the frame.
// The returned texture is reused by the next frame.
func (e *Engine) Frame() *renderer.Texture {
	now := e.clock.Now()
	e.behaviours.UpdateAll()

	if e.lastTick.IsZero() || now.Sub(e.lastTick) > e.cfg.TickInterval() {
		e.Tick()
		e.lastTick = now
	}

	frame := e.compositor.Render(e.device, e.scene())
	e.frames++
	return frame
}

// Tick polls the per-tick drivers, steps the water and redraws the
// environment map and the caustics.
func (e *Engine) Tick() {
	e.behaviours.UpdateAllFixed()
	e.sim.Step()
	e.envMap.Render(e.device, e.environment, e.Light)
	e.caustics.Render(e.device, e.sim.Current(), e.envMap, e.Light)
	e.ticks++

	if e.ticks%100 == 0 {
		logger.Log.Debug("Simulation tick",
			zap.Int("tick", e.ticks),
			zap.Float64("energy", e.sim.Current().KineticEnergy()))
	}
}

func (e *Engine) scene() renderer.Scene {
	return renderer.Scene{
		Camera:      e.Camera,
		Light:       e.Light,
		Environment: e.environment,
		Water:       e.surface,
		Heights:     e.sim.Current(),
		Caustics:    e.caustics.Texture(),
	}
}

// HandleKey applies a key command and returns the resulting state of the
// toggle it controls. KeyClear always returns true.
func (e *Engine) HandleKey(k Key) bool {
	var state bool
	switch k {
	case KeySound, KeyRain, KeyWind:
		driver := e.drivers[k.String()]
		if driver == nil {
			return false
		}
		driver.SetEnabled(!driver.GetEnabled())
		state = driver.GetEnabled()
	case KeyClear:
		e.sim.Reset()
		state = true
	case KeyFocus:
		e.focusWater = !e.focusWater
		target := e.focusTarget()
		e.Camera.Position = e.Camera.Position.Add(target.Sub(e.Camera.Target))
		e.Camera.LookAt(target)
		state = e.focusWater
	case KeyMouse:
		e.mouseReactive = !e.mouseReactive
		state = e.mouseReactive
	default:
		return false
	}
	logger.Log.Info("Toggle", zap.Stringer("key", k), zap.Bool("state", state))
	return state
}

// PointerMove drops on the water under the pointer, given in window pixels,
// when mouse reactivity is on. It reports whether a drop was added.
func (e *Engine) PointerMove(x, y float32) bool {
	if !e.mouseReactive {
		return false
	}
	ray := renderer.ScreenToRay(e.Camera, x, y, e.width, e.height)
	hit, _, point := renderer.RayIntersectRect(ray, e.cfg.WaterLevel, 1)
	if !hit {
		return false
	}
	e.sim.AddDrop(point.X(), point.Y(), e.cfg.MouseDropRadius, e.cfg.MouseDropStrength)
	return true
}

// PointerDrag orbits the camera by a drag of (dx, dy) pixels.
func (e *Engine) PointerDrag(dx, dy float32) {
	e.Camera.ProcessMouseMovement(dx, dy)
}

// Scroll zooms the camera, positive offsets moving closer.
func (e *Engine) Scroll(offset float32) {
	e.Camera.Zoom(float32(math.Pow(0.95, float64(offset))))
}

// Resize adapts the camera and the compositing targets to a new frame size.
func (e *Engine) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == e.width && height == e.height) {
		return
	}
	e.width, e.height = width, height
	e.Camera.SetAspectRatio(float32(width) / float32(height))
	e.compositor.Resize(width, height)
}

func (e *Engine) Size() (int, int) {
	return e.width, e.height
}

func (e *Engine) Config() config.Config {
	return e.cfg
}

func (e *Engine) Simulation() *water.Simulation {
	return e.sim
}

// HeightField is the current simulation grid.
func (e *Engine) HeightField() *water.Grid {
	return e.sim.Current()
}

// EnvironmentMap is the light-space position and depth map of the last tick.
func (e *Engine) EnvironmentMap() *renderer.Texture {
	return e.envMap.Texture()
}

// Caustics is the caustics map of the last tick.
func (e *Engine) Caustics() *renderer.Texture {
	return e.caustics.Texture()
}

// Driver returns the named input driver, or nil.
func (e *Engine) Driver(name string) behaviour.Driver {
	return e.drivers[name]
}

func (e *Engine) MouseReactive() bool {
	return e.mouseReactive
}

func (e *Engine) FocusWater() bool {
	return e.focusWater
}

func (e *Engine) Ticks() int {
	return e.ticks
}

func (e *Engine) Frames() int {
	return e.frames
}

func (e *Engine) Close() {
	e.behaviours.Clear()
	e.sim.Close()
	logger.Log.Info("Engine closed", zap.Int("frames", e.frames), zap.Int("ticks", e.ticks))
}
