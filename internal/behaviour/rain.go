package behaviour

// Rain drops a random raindrop with probability RainIntensity every frame.
type Rain struct {
	BaseDriver
	env Env
}

func init() {
	RegisterDriver("rain", func(env Env) Driver { return NewRain(env) })
}

func NewRain(env Env) *Rain {
	r := &Rain{env: env}
	r.SetEnabled(env.Config.Raindrops)
	return r
}

func (r *Rain) Name() string { return "rain" }

func (r *Rain) Update() {
	if !r.GetEnabled() || r.env.Random.Float32() > r.env.Config.RainIntensity {
		return
	}
	size := r.env.Random.Float32() * r.env.Config.RainMaxSize
	mass := r.env.Random.Float32() * r.env.Config.RainMaxMass
	if r.env.Random.Float32() <= 0.5 {
		mass = -mass
	}
	x, y := r.env.position()
	r.env.Sink.AddDrop(x, y, size, mass)
}
