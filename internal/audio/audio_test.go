package audio

import (
	"math"
	"testing"
	"time"

	"Caustics/internal/config"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sine(freq float64, sampleRate, n int) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return samples
}

func TestWAVAnalyserFindsTone(t *testing.T) {
	// 8000 Hz / 256 points = 31.25 Hz per bin, so 500 Hz is bin 16.
	a, err := NewWAVAnalyser(sine(500, 8000, 8000), 8000, 256)
	if err != nil {
		t.Fatalf("NewWAVAnalyser failed: %v", err)
	}
	a.Now = fixedClock(time.Unix(100, 0))

	if a.FrequencyBinCount() != 128 {
		t.Fatalf("Expected 128 bins, got %d", a.FrequencyBinCount())
	}
	data := make([]uint8, a.FrequencyBinCount())
	a.FrequencyData(data)

	if data[16] != 255 {
		t.Errorf("Expected the tone bin at full scale, got %d", data[16])
	}
	if data[80] != 0 {
		t.Errorf("Expected a quiet bin far from the tone, got %d", data[80])
	}
}

func TestWAVAnalyserSmoothing(t *testing.T) {
	a, _ := NewWAVAnalyser(sine(500, 8000, 8000), 8000, 256)
	a.Now = fixedClock(time.Unix(100, 0))
	a.MaxDecibels = 0

	data := make([]uint8, a.FrequencyBinCount())
	a.FrequencyData(data)
	first := data[16]
	a.FrequencyData(data)
	if data[16] <= first {
		t.Errorf("Smoothed magnitude should rise towards the tone: %d <= %d", data[16], first)
	}
}

func TestWAVAnalyserSilence(t *testing.T) {
	a, _ := NewWAVAnalyser(make([]float32, 1024), 8000, 256)
	a.Now = fixedClock(time.Unix(5, 0))

	data := make([]uint8, 200)
	for i := range data {
		data[i] = 9
	}
	a.FrequencyData(data)
	for i, v := range data {
		if v != 0 {
			t.Fatalf("Bin %d should be silent, got %d", i, v)
		}
	}
}

func TestNewWAVAnalyserRejectsBadInput(t *testing.T) {
	if _, err := NewWAVAnalyser(nil, 8000, 256); err == nil {
		t.Error("Expected an error for no samples")
	}
	if _, err := NewWAVAnalyser(make([]float32, 10), 8000, 100); err == nil {
		t.Error("Expected an error for a non power of two")
	}
	if _, err := NewWAVAnalyser(make([]float32, 10), 0, 256); err == nil {
		t.Error("Expected an error for a zero sample rate")
	}
}

func TestWAVAnalyserPositionLoops(t *testing.T) {
	a, _ := NewWAVAnalyser(make([]float32, 8000), 8000, 256)
	if got := a.position(1500 * time.Millisecond); got != 4000 {
		t.Errorf("Expected sample 4000 after looping, got %d", got)
	}
	if got := a.position(-time.Second); got != 0 {
		t.Errorf("Negative elapsed time should clamp to 0, got %d", got)
	}
}

func TestDecodeStereoI16ToFloat(t *testing.T) {
	pcm := []byte{0x00, 0x40, 0x00, 0x40, 0x00, 0xC0, 0x00, 0x00, 0xFF}
	samples := decodeStereoI16ToFloat(pcm)
	if len(samples) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(samples))
	}
	if samples[0] != 0.5 || samples[1] != -0.25 {
		t.Errorf("Unexpected samples %v", samples)
	}
}

func TestBlackmanWindow(t *testing.T) {
	w := blackman(64)
	if math.Abs(w[0]) > 1e-12 {
		t.Errorf("Window should start at 0, got %f", w[0])
	}
	if math.Abs(w[32]-1) > 1e-12 {
		t.Errorf("Window should peak at 1, got %f", w[32])
	}
}

func TestPerlinAnalyser(t *testing.T) {
	start := time.Unix(0, 0)
	a := NewPerlinAnalyser(64, 3)
	a.Now = fixedClock(start)

	first := make([]uint8, 64)
	a.FrequencyData(first)

	b := NewPerlinAnalyser(64, 3)
	b.Now = fixedClock(start)
	second := make([]uint8, 64)
	b.FrequencyData(second)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Same seed and time should match at bin %d", i)
		}
	}

	a.Now = fixedClock(start.Add(3 * time.Second))
	a.FrequencyData(second)
	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
		}
	}
	if same {
		t.Error("Spectrum should change over time")
	}

	long := make([]uint8, 70)
	long[69] = 1
	a.FrequencyData(long)
	if long[69] != 0 {
		t.Error("Bins past the count should be zero")
	}
}

func TestResponderLevel(t *testing.T) {
	data := []uint8{200, 10, 20, 30, 40}
	tests := []struct {
		name string
		r    config.Responder
		want float32
	}{
		{"single band", config.Responder{StartBand: 0, EndBand: 0}, 200},
		{"range average", config.Responder{StartBand: 1, EndBand: 3}, 20},
		{"range past the end", config.Responder{StartBand: 3, EndBand: 6}, 17.5},
		{"band past the end", config.Responder{StartBand: 9, EndBand: 9}, 0},
	}
	for _, tt := range tests {
		if got := Level(data, tt.r); got != tt.want {
			t.Errorf("%s: Level = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestResponderThreshold(t *testing.T) {
	r := config.Responder{StartBand: 0, EndBand: 0, Threshold: 250}

	if got := Threshold(r, 255); got != 250 {
		t.Errorf("Full global threshold should keep the responder's, got %f", got)
	}
	// 111/255*250 = 108.8
	if !Active([]uint8{109}, r, 111) {
		t.Error("109 should exceed the scaled threshold")
	}
	if Active([]uint8{108}, r, 111) {
		t.Error("108 should not exceed the scaled threshold")
	}
}

func TestSilence(t *testing.T) {
	var a Analyser = Silence{Bins: 4}
	data := []uint8{1, 2, 3, 4}
	a.FrequencyData(data)
	if a.FrequencyBinCount() != 4 || data[3] != 0 {
		t.Errorf("Silence should report 4 empty bins, got %v", data)
	}
}
