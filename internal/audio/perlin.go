package audio

import (
	"time"

	perlin "github.com/aquilax/go-perlin"
)

// PerlinAnalyser fakes a spectrum from 2D Perlin noise over (bin, time). Low
// bins run louder than high ones, roughly like music.
type PerlinAnalyser struct {
	// Speed is how fast the spectrum changes, in noise units per second.
	Speed float64
	// Spread is the noise distance between neighbouring bins.
	Spread float64
	Now    func() time.Time

	bins  int
	noise *perlin.Perlin
	start time.Time
}

func NewPerlinAnalyser(bins int, seed int64) *PerlinAnalyser {
	return &PerlinAnalyser{
		Speed:  1.5,
		Spread: 0.35,
		Now:    time.Now,
		bins:   bins,
		noise:  perlin.NewPerlin(2, 2, 3, seed),
	}
}

func (p *PerlinAnalyser) FrequencyBinCount() int {
	return p.bins
}

func (p *PerlinAnalyser) FrequencyData(dst []uint8) {
	now := p.Now()
	if p.start.IsZero() {
		p.start = now
	}
	t := now.Sub(p.start).Seconds() * p.Speed
	for k := range dst {
		if k >= p.bins {
			dst[k] = 0
			continue
		}
		n := p.noise.Noise2D(float64(k)*p.Spread, t)
		v := (n + 1) * 0.5 * 255 / (1 + float64(k)/64)
		switch {
		case v <= 0:
			dst[k] = 0
		case v >= 255:
			dst[k] = 255
		default:
			dst[k] = uint8(v)
		}
	}
}
