package behaviour

import (
	"fmt"

	"Caustics/internal/audio"
	"Caustics/internal/logger"

	"go.uber.org/zap"
)

// Sound polls the analyser once per tick. While enabled, every responder
// emits a drop of its size, with its amplitude when the band level is over
// the scaled threshold and strength 0 otherwise.
type Sound struct {
	BaseDriver
	env  Env
	data []uint8
}

func init() {
	RegisterDriver("sound", func(env Env) Driver { return NewSound(env) })
}

func NewSound(env Env) *Sound {
	if env.Analyser == nil {
		env.Analyser = audio.Silence{Bins: env.Config.Audio.BandCount / 2}
	}
	s := &Sound{env: env}
	s.SetEnabled(env.Config.SoundReactive)
	return s
}

func (s *Sound) Name() string { return "sound" }

func (s *Sound) Start() {
	s.data = make([]uint8, s.env.Analyser.FrequencyBinCount())
}

// FrequencyData is the spectrum read on the last tick.
func (s *Sound) FrequencyData() []uint8 {
	return s.data
}

func (s *Sound) UpdateFixed() {
	s.env.Analyser.FrequencyData(s.data)
	if !s.GetEnabled() {
		return
	}

	rules := s.env.Config.Audio
	for _, r := range rules.Responders {
		x, y := s.env.position()
		level := audio.Level(s.data, r)
		threshold := audio.Threshold(r, rules.GlobalThreshold)
		active := level > threshold
		if rules.DebugResponders {
			logger.Log.Debug("Responder",
				zap.String("bands", bandLabel(r.StartBand, r.EndBand)),
				zap.Float32("level", level),
				zap.Bool("active", active),
				zap.Float32("threshold", threshold))
		}
		var strength float32
		if active {
			strength = r.Amp
		}
		s.env.Sink.AddDrop(x, y, r.Size, strength)
	}
}

func bandLabel(start, end int) string {
	if end <= start {
		return fmt.Sprint(start)
	}
	return fmt.Sprintf("%d-%d", start, end)
}
