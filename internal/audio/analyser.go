// Package audio turns sound into the 8-bit frequency bins the sound reactive
// driver polls once per tick.
package audio

import (
	"Caustics/internal/config"
)

// Analyser produces one magnitude per frequency bin, 0..255.
type Analyser interface {
	FrequencyBinCount() int
	FrequencyData(dst []uint8)
}

// Level is the magnitude a responder reacts to: its band, or the mean of its
// inclusive band range. Bands past the end of data count as silent.
func Level(data []uint8, r config.Responder) float32 {
	if r.EndBand <= r.StartBand {
		if r.StartBand < 0 || r.StartBand >= len(data) {
			return 0
		}
		return float32(data[r.StartBand])
	}
	var sum float32
	for band := r.StartBand; band <= r.EndBand; band++ {
		if band >= 0 && band < len(data) {
			sum += float32(data[band])
		}
	}
	return sum / float32(r.EndBand-r.StartBand+1)
}

// Threshold scales a responder threshold by the global threshold, 0..255.
func Threshold(r config.Responder, global float32) float32 {
	return global / 255 * r.Threshold
}

// Active reports whether the responder fires on data.
func Active(data []uint8, r config.Responder, global float32) bool {
	return Level(data, r) > Threshold(r, global)
}

// Silence is an analyser that always reports zero.
type Silence struct {
	Bins int
}

func (s Silence) FrequencyBinCount() int { return s.Bins }

func (s Silence) FrequencyData(dst []uint8) {
	for i := range dst {
		dst[i] = 0
	}
}
