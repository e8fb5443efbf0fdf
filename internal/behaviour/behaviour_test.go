package behaviour

import (
	"math"
	"testing"
	"time"

	"Caustics/internal/config"
)

type drop struct {
	x, y, radius, strength float32
}

type recordingSink struct {
	drops []drop
}

func (s *recordingSink) AddDrop(x, y, radius, strength float32) {
	s.drops = append(s.drops, drop{x, y, radius, strength})
}

// sequence returns its values in order, then repeats the last one.
type sequence struct {
	values []float32
	next   int
}

func (s *sequence) Float32() float32 {
	v := s.values[len(s.values)-1]
	if s.next < len(s.values) {
		v = s.values[s.next]
	}
	s.next++
	return v
}

type fixedAnalyser []uint8

func (a fixedAnalyser) FrequencyBinCount() int { return len(a) }

func (a fixedAnalyser) FrequencyData(dst []uint8) { copy(dst, a) }

type countingBehaviour struct {
	starts, updates, fixed int
}

func (b *countingBehaviour) Start()       { b.starts++ }
func (b *countingBehaviour) Update()      { b.updates++ }
func (b *countingBehaviour) UpdateFixed() { b.fixed++ }

func TestBehaviourManagerStartsOnce(t *testing.T) {
	m := NewBehaviourManager()
	b := &countingBehaviour{}
	m.Add(b)

	m.UpdateAll()
	m.UpdateAllFixed()
	m.UpdateAll()

	if b.starts != 1 {
		t.Errorf("Expected Start once, got %d", b.starts)
	}
	if b.updates != 2 || b.fixed != 1 {
		t.Errorf("Expected 2 updates and 1 fixed update, got %d and %d", b.updates, b.fixed)
	}
}

func TestBehaviourManagerClear(t *testing.T) {
	m := NewBehaviourManager()
	a, b := &countingBehaviour{}, &countingBehaviour{}
	m.Add(a)
	m.Add(b)
	if m.Len() != 2 || m.behaviours[0].Behaviour != a || m.behaviours[1].Behaviour != b {
		t.Error("Add should keep behaviours in insertion order")
	}

	m.Clear()
	m.UpdateAll()
	if m.Len() != 0 || b.updates != 0 {
		t.Error("Clear should remove every behaviour")
	}
}

func TestADSREnvelope(t *testing.T) {
	env := NewADSR(0.2, 0.2, 0.6, 0.4, 10*time.Second)
	tests := []struct {
		at   time.Duration
		want float32
	}{
		{0, 0},
		{time.Second, 0.5},
		{2 * time.Second, 1},
		{3 * time.Second, 0.8},
		{4 * time.Second, 0.6},
		{5 * time.Second, 0.6},
		{6 * time.Second, 0.6},
		{8 * time.Second, 0.3},
		{10 * time.Second, 0},
	}
	for _, tt := range tests {
		if got := env(tt.at); math.Abs(float64(got-tt.want)) > 1e-5 {
			t.Errorf("envelope(%v) = %f, want %f", tt.at, got, tt.want)
		}
	}
}

func TestRainGatedByIntensity(t *testing.T) {
	cfg := config.Default()
	cfg.Raindrops = true
	cfg.RandomPosition = false
	sink := &recordingSink{}

	rain := NewRain(Env{Config: cfg, Sink: sink, Random: &sequence{values: []float32{0.5}}})
	rain.Update()
	if len(sink.drops) != 0 {
		t.Fatal("0.5 is above the intensity, no drop expected")
	}

	// gate, size, mass, sign
	rain = NewRain(Env{Config: cfg, Sink: sink, Random: &sequence{values: []float32{0.01, 0.5, 0.25, 0.9}}})
	rain.Update()
	if len(sink.drops) != 1 {
		t.Fatalf("Expected 1 drop, got %d", len(sink.drops))
	}
	d := sink.drops[0]
	if d.x != 0 || d.y != 0 {
		t.Errorf("Fixed position should be the centre, got (%f, %f)", d.x, d.y)
	}
	if math.Abs(float64(d.radius-0.05)) > 1e-6 || math.Abs(float64(d.strength-0.025)) > 1e-6 {
		t.Errorf("Expected radius 0.05 and strength 0.025, got %f %f", d.radius, d.strength)
	}
}

func TestRainNegativeMassAndDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Raindrops = true
	sink := &recordingSink{}

	rain := NewRain(Env{Config: cfg, Sink: sink, Random: &sequence{values: []float32{0, 0.5, 0.5, 0.2, 0.75, 0.25}}})
	rain.Update()
	if len(sink.drops) != 1 || sink.drops[0].strength >= 0 {
		t.Fatalf("Expected one negative drop, got %v", sink.drops)
	}
	if sink.drops[0].x != 0.5 || sink.drops[0].y != -0.5 {
		t.Errorf("Expected a random position (0.5, -0.5), got (%f, %f)", sink.drops[0].x, sink.drops[0].y)
	}

	rain.SetEnabled(false)
	rain.Update()
	if len(sink.drops) != 1 {
		t.Error("Disabled rain should not drop")
	}
}

func TestWindGustLifecycle(t *testing.T) {
	cfg := config.Default()
	cfg.Wind = true
	now := time.Unix(1000, 0)
	sink := &recordingSink{}
	// gate, duration (0.5 -> 11s), x, y, dirX, dirY, size, mass, then droplet values
	rnd := &sequence{values: []float32{0, 0.5, 0.5, 0.5, 1, 0.5, 0.5, 0.5, 0.5}}
	wind := NewWind(Env{Config: cfg, Sink: sink, Random: rnd, Now: func() time.Time { return now }})

	wind.Update()
	if !wind.Gusting() {
		t.Fatal("Expected a gust to start")
	}
	if wind.gust.duration != 11*time.Second {
		t.Errorf("Expected an 11s gust, got %v", wind.gust.duration)
	}
	if len(sink.drops) != 0 {
		t.Errorf("Envelope is 0 at the start, got %d drops", len(sink.drops))
	}

	// Peak of the attack: amplitude 1, ten droplets.
	now = now.Add(2200 * time.Millisecond)
	wind.Update()
	if len(sink.drops) != 10 {
		t.Fatalf("Expected 10 droplets at the peak, got %d", len(sink.drops))
	}
	if math.Abs(float64(wind.gust.x-0.005)) > 1e-6 {
		t.Errorf("Gust should drift along its direction, got x %f", wind.gust.x)
	}
	for _, d := range sink.drops {
		if math.Abs(float64(d.radius-0.1)) > 1e-6 {
			t.Fatalf("Expected droplet size 0.1, got %f", d.radius)
		}
	}

	now = now.Add(9 * time.Second)
	wind.Update()
	if wind.Gusting() {
		t.Error("Gust should end after its duration")
	}
}

func TestSoundResponders(t *testing.T) {
	cfg := config.Default()
	cfg.SoundReactive = true
	cfg.RandomPosition = false
	cfg.Audio.GlobalThreshold = 255
	cfg.Audio.Responders = []config.Responder{
		{StartBand: 0, EndBand: 0, Size: 0.2, Amp: 0.01, Threshold: 100},
		{StartBand: 1, EndBand: 3, Size: 0.05, Amp: 0.03, Threshold: 100},
	}
	sink := &recordingSink{}
	analyser := fixedAnalyser{150, 50, 50, 50}

	m := NewBehaviourManager()
	sound := NewSound(Env{Config: cfg, Sink: sink, Analyser: analyser})
	m.Add(sound)
	m.UpdateAllFixed()

	if len(sink.drops) != 2 {
		t.Fatalf("Expected one drop per responder, got %d", len(sink.drops))
	}
	if sink.drops[0].strength != 0.01 || sink.drops[0].radius != 0.2 {
		t.Errorf("Loud band should drop with its amplitude, got %+v", sink.drops[0])
	}
	if sink.drops[1].strength != 0 {
		t.Errorf("Quiet range should drop with strength 0, got %+v", sink.drops[1])
	}
	if sound.FrequencyData()[0] != 150 {
		t.Error("Expected the analyser data to be kept")
	}

	sound.SetEnabled(false)
	m.UpdateAllFixed()
	if len(sink.drops) != 2 {
		t.Error("Disabled sound should still read the analyser but not drop")
	}
}

func TestSoundWithoutAnalyser(t *testing.T) {
	cfg := config.Default()
	sink := &recordingSink{}
	sound := NewSound(Env{Config: cfg, Sink: sink, Random: &sequence{values: []float32{0.5}}})
	sound.Start()
	sound.UpdateFixed()

	for _, d := range sink.drops {
		if d.strength != 0 {
			t.Fatalf("Silence should never trigger a responder, got %+v", d)
		}
	}
	if len(sound.FrequencyData()) != cfg.Audio.BandCount/2 {
		t.Errorf("Expected %d bins, got %d", cfg.Audio.BandCount/2, len(sound.FrequencyData()))
	}
}

func TestScatterStartDrops(t *testing.T) {
	cfg := config.Default()
	sink := &recordingSink{}
	n := ScatterStartDrops(Env{Config: cfg, Sink: sink, Random: &sequence{values: []float32{0.75}}})

	if n != 33 || len(sink.drops) != 33 {
		t.Fatalf("Expected 33 start drops, got %d", len(sink.drops))
	}
	if sink.drops[0].strength != -0.05 || sink.drops[1].strength != 0.05 {
		t.Errorf("Strengths should alternate starting negative, got %f %f", sink.drops[0].strength, sink.drops[1].strength)
	}
	if sink.drops[0].radius != 0.05 || sink.drops[0].x != 0.5 {
		t.Errorf("Unexpected first drop %+v", sink.drops[0])
	}

	cfg.RandomStart = false
	if ScatterStartDrops(Env{Config: cfg, Sink: sink}) != 0 {
		t.Error("No drops expected without random start")
	}
}

func TestDriverRegistry(t *testing.T) {
	saved := driverRegistry
	defer func() { driverRegistry = saved }()

	names := AvailableDrivers()
	if len(names) != 3 || names[0] != "rain" || names[1] != "sound" || names[2] != "wind" {
		t.Fatalf("Unexpected built-in drivers %v", names)
	}

	driverRegistry = map[string]DriverConstructor{}
	RegisterDriver("zebra", func(env Env) Driver { return NewRain(env) })
	RegisterDriver("alpha", func(env Env) Driver { return NewWind(env) })
	if names := AvailableDrivers(); names[0] != "alpha" || names[1] != "zebra" {
		t.Errorf("Expected sorted names, got %v", names)
	}

	if CreateDriver("alpha", Env{}).Name() != "wind" {
		t.Error("CreateDriver returned the wrong driver")
	}
	if CreateDriver("missing", Env{}) != nil {
		t.Error("CreateDriver should return nil for an unknown name")
	}
}

func TestDriversFollowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Raindrops = true
	cfg.Wind = false
	cfg.SoundReactive = true
	env := Env{Config: cfg}

	for name, want := range map[string]bool{"rain": true, "wind": false, "sound": true} {
		if got := CreateDriver(name, env).GetEnabled(); got != want {
			t.Errorf("%s enabled = %v, want %v", name, got, want)
		}
	}
}
