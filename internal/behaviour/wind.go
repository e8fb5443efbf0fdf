package behaviour

import (
	"math"
	"time"

	"Caustics/internal/logger"

	"go.uber.org/zap"
)

// Envelope stages of a gust, as fractions of its duration.
const (
	gustAttack  = 0.2
	gustDecay   = 0.2
	gustSustain = 0.6
	gustRelease = 0.4
)

// NewADSR returns an attack/decay/sustain/release envelope over duration.
// attack, decay and release are fractions of duration; sustain is the level
// held between decay and release.
func NewADSR(attack, decay, sustain, release float64, duration time.Duration) func(time.Duration) float32 {
	total := duration.Seconds()
	attackDur := attack * total
	decayDur := decay * total
	releaseDur := release * total
	return func(t time.Duration) float32 {
		s := t.Seconds()
		switch {
		case s <= attackDur:
			return float32(s / attackDur)
		case s <= attackDur+decayDur:
			return float32((1-sustain)*(1-(s-attackDur)/decayDur) + sustain)
		case s <= total-releaseDur:
			return float32(sustain)
		default:
			return float32(sustain * (1 - (s-(total-releaseDur))/releaseDur))
		}
	}
}

type gust struct {
	start     time.Time
	duration  time.Duration
	x, y      float32
	dirX      float32
	dirY      float32
	size      float32
	mass      float32
	amplitude func(time.Duration) float32
}

// Wind starts a gust with probability WindIntensity on frames without one. A
// gust drifts across the surface for 2 to 20 seconds, sprinkling droplets in
// proportion to its envelope.
type Wind struct {
	BaseDriver
	env  Env
	gust *gust
}

func init() {
	RegisterDriver("wind", func(env Env) Driver { return NewWind(env) })
}

func NewWind(env Env) *Wind {
	w := &Wind{env: env}
	w.SetEnabled(env.Config.Wind)
	return w
}

func (w *Wind) Name() string { return "wind" }

// Gusting reports whether a gust is in progress.
func (w *Wind) Gusting() bool {
	return w.gust != nil
}

func (w *Wind) Update() {
	if !w.GetEnabled() {
		return
	}
	rnd := w.env.Random
	now := w.env.now()

	if w.gust == nil && rnd.Float32() <= w.env.Config.WindIntensity {
		duration := time.Duration((18*float64(rnd.Float32()) + 2) * float64(time.Second))
		w.gust = &gust{
			start:     now,
			duration:  duration,
			x:         rnd.Float32()*2 - 1,
			y:         rnd.Float32()*2 - 1,
			dirX:      rnd.Float32()*2 - 1,
			dirY:      rnd.Float32()*2 - 1,
			size:      rnd.Float32()*0.1 + 0.05,
			mass:      rnd.Float32() * 0.01,
			amplitude: NewADSR(gustAttack, gustDecay, gustSustain, gustRelease, duration),
		}
		logger.Log.Debug("Gust started",
			zap.Duration("duration", duration),
			zap.Float32("x", w.gust.x),
			zap.Float32("y", w.gust.y))
	}
	if w.gust == nil {
		return
	}

	g := w.gust
	elapsed := now.Sub(g.start)
	if elapsed >= g.duration {
		w.gust = nil
		return
	}
	amp := g.amplitude(elapsed)
	g.x += g.dirX * 0.005 * amp
	g.y += g.dirY * 0.005 * amp

	dropletSize := g.size + rnd.Float32()*0.02 - 0.01
	dropletMass := g.mass + (rnd.Float32()-0.5)*0.002
	droplets := int(math.Floor(float64(amp * 10)))
	for i := 0; i < droplets; i++ {
		w.env.Sink.AddDrop(
			g.x+(rnd.Float32()-0.5)*dropletSize*2,
			g.y+(rnd.Float32()-0.5)*dropletSize*2,
			dropletSize,
			dropletMass,
		)
	}
}
