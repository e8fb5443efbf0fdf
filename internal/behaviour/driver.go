package behaviour

import (
	"time"

	"Caustics/internal/audio"
	"Caustics/internal/config"
)

// DropSink receives the drops a driver emits. Coordinates are in [-1, 1]².
type DropSink interface {
	AddDrop(x, y, radius, strength float32)
}

// Random is a source of uniform numbers in [0, 1).
type Random interface {
	Float32() float32
}

// Env is what a driver acts on.
type Env struct {
	Config   config.Config
	Sink     DropSink
	Random   Random
	Analyser audio.Analyser
	Now      func() time.Time
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// position is a random point of [-1, 1]² when random positions are on, the
// centre otherwise.
func (e Env) position() (float32, float32) {
	if !e.Config.RandomPosition {
		return 0, 0
	}
	return e.Random.Float32()*2 - 1, e.Random.Float32()*2 - 1
}

// Driver is a behaviour that can be switched on and off.
type Driver interface {
	PlayerBehaviour
	Name() string
	GetEnabled() bool
	SetEnabled(bool)
}

// BaseDriver provides the toggle and no-op lifecycle methods. Drivers embed
// it and override what they need.
type BaseDriver struct {
	enabled bool
}

func (d *BaseDriver) Start()       {}
func (d *BaseDriver) Update()      {}
func (d *BaseDriver) UpdateFixed() {}

func (d *BaseDriver) GetEnabled() bool {
	return d.enabled
}

func (d *BaseDriver) SetEnabled(enabled bool) {
	d.enabled = enabled
}

// ScatterStartDrops seeds the surface with Config.StartDrops drops of radius
// 0.05 at random positions, alternating strength -0.05 and 0.05. Nothing
// happens when RandomStart is off.
func ScatterStartDrops(env Env) int {
	if !env.Config.RandomStart {
		return 0
	}
	for i := 0; i < env.Config.StartDrops; i++ {
		strength := float32(-0.05)
		if i&1 == 1 {
			strength = 0.05
		}
		env.Sink.AddDrop(env.Random.Float32()*2-1, env.Random.Float32()*2-1, 0.05, strength)
	}
	return env.Config.StartDrops
}
