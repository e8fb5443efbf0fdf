package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"Caustics/internal/logger"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/dsp/fourier"
)

// WebAudio AnalyserNode defaults.
const (
	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0
)

// WAVAnalyser analyses a looping PCM track. The analysed window ends at the
// sample that is playing at the time returned by Now.
type WAVAnalyser struct {
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64
	// Now is the clock used to locate the playing sample.
	Now func() time.Time

	samples    []float32
	pcm        []byte
	sampleRate int
	start      time.Time

	fft      *fourier.FFT
	window   []float64
	frame    []float64
	coeffs   []complex128
	smoothed []float64
}

// LoadWAV decodes the WAV at path, resampled to sampleRate.
func LoadWAV(path string, sampleRate, fftSize int) (*WAVAnalyser, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	stream, err := wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}
	decoded, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("reading decoded %q: %w", path, err)
	}
	samples := decodeStereoI16ToFloat(decoded)
	if len(samples) == 0 {
		return nil, fmt.Errorf("wav %q has no usable samples", path)
	}

	a, err := NewWAVAnalyser(samples, sampleRate, fftSize)
	if err != nil {
		return nil, err
	}
	a.pcm = decoded

	logger.Log.Info("Audio track loaded",
		zap.String("path", path),
		zap.Int("sampleRate", sampleRate),
		zap.Duration("length", time.Duration(len(samples))*time.Second/time.Duration(sampleRate)))

	return a, nil
}

// NewWAVAnalyser analyses mono samples with an FFT of fftSize points.
func NewWAVAnalyser(samples []float32, sampleRate, fftSize int) (*WAVAnalyser, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples")
	}
	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be positive")
	}
	if fftSize < 32 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size %d must be a power of two of at least 32", fftSize)
	}
	return &WAVAnalyser{
		Smoothing:   DefaultSmoothing,
		MinDecibels: DefaultMinDecibels,
		MaxDecibels: DefaultMaxDecibels,
		Now:         time.Now,
		samples:     samples,
		sampleRate:  sampleRate,
		fft:         fourier.NewFFT(fftSize),
		window:      blackman(fftSize),
		frame:       make([]float64, fftSize),
		smoothed:    make([]float64, fftSize/2),
	}, nil
}

func (a *WAVAnalyser) FrequencyBinCount() int {
	return len(a.smoothed)
}

// SampleRate is the rate of the decoded samples.
func (a *WAVAnalyser) SampleRate() int {
	return a.sampleRate
}

// Restart moves playback back to the first sample.
func (a *WAVAnalyser) Restart() {
	a.start = a.Now()
}

// FrequencyData fills dst with smoothed bin magnitudes mapped from
// [MinDecibels, MaxDecibels] to 0..255.
func (a *WAVAnalyser) FrequencyData(dst []uint8) {
	now := a.Now()
	if a.start.IsZero() {
		a.start = now
	}
	a.fillFrame(a.position(now.Sub(a.start)))

	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)
	n := float64(len(a.frame))
	scale := 255 / (a.MaxDecibels - a.MinDecibels)
	for k := range a.smoothed {
		mag := math.Hypot(real(a.coeffs[k]), imag(a.coeffs[k])) / n
		a.smoothed[k] = a.Smoothing*a.smoothed[k] + (1-a.Smoothing)*mag
		if k >= len(dst) {
			continue
		}
		db := math.Inf(-1)
		if a.smoothed[k] > 0 {
			db = 20 * math.Log10(a.smoothed[k])
		}
		v := scale * (db - a.MinDecibels)
		switch {
		case v <= 0 || math.IsNaN(v):
			dst[k] = 0
		case v >= 255:
			dst[k] = 255
		default:
			dst[k] = uint8(v)
		}
	}
	for k := len(a.smoothed); k < len(dst); k++ {
		dst[k] = 0
	}
}

func (a *WAVAnalyser) position(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	return int(elapsed.Seconds()*float64(a.sampleRate)) % len(a.samples)
}

// fillFrame copies the windowed samples that end at pos, wrapping around the
// start of the loop.
func (a *WAVAnalyser) fillFrame(pos int) {
	n := len(a.frame)
	total := len(a.samples)
	idx := ((pos-n)%total + total) % total
	for i := 0; i < n; i++ {
		a.frame[i] = float64(a.samples[idx]) * a.window[i]
		idx++
		if idx >= total {
			idx = 0
		}
	}
}

func blackman(n int) []float64 {
	const alpha = 0.16
	a0, a1, a2 := (1-alpha)/2, 0.5, alpha/2
	w := make([]float64, n)
	for i := range w {
		x := 2 * math.Pi * float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return w
}

func decodeStereoI16ToFloat(pcm []byte) []float32 {
	frameCount := len(pcm) / 4
	if frameCount == 0 {
		return nil
	}
	samples := make([]float32, frameCount)
	for i := 0; i < frameCount; i++ {
		offset := i * 4
		left := int16(binary.LittleEndian.Uint16(pcm[offset : offset+2]))
		right := int16(binary.LittleEndian.Uint16(pcm[offset+2 : offset+4]))
		samples[i] = (float32(left) + float32(right)) * (0.5 / 32768.0)
	}
	return samples
}
