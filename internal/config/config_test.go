package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Damping >= 1 || cfg.Damping <= 0.9 {
		t.Errorf("damping should be in (0.9, 1), got %f", cfg.Damping)
	}
	if cfg.WaveGain != 2 {
		t.Errorf("expected wave gain 2, got %f", cfg.WaveGain)
	}
	if cfg.TickInterval() != 32*time.Millisecond {
		t.Errorf("expected 32ms tick, got %v", cfg.TickInterval())
	}
	if cfg.CausticsResolution() != cfg.WaterResolution*3 {
		t.Errorf("caustics resolution should be 3x water resolution, got %d", cfg.CausticsResolution())
	}
}

func TestBlurWeightsSumToOne(t *testing.T) {
	w := Default().BlurWeights
	sum := w[0] + 2*w[1] + 2*w[2]
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("blur weights should sum to 1, got %f", sum)
	}
}

func TestPresets(t *testing.T) {
	presets := Presets()
	if len(presets) != 4 {
		t.Fatalf("expected 4 presets, got %d", len(presets))
	}
	for name, cfg := range presets {
		if cfg.Name != name {
			t.Errorf("preset %q has name %q", name, cfg.Name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
	}
	if !presets["rain"].Raindrops {
		t.Error("rain preset should enable raindrops")
	}
	if !presets["wind"].Wind {
		t.Error("wind preset should enable wind")
	}
	if _, err := Preset("missing"); err == nil {
		t.Error("unknown preset should return an error")
	}
	names := PresetNames()
	if names[0] != "caustics" {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"tiny water", func(c *Config) { c.WaterResolution = 1 }},
		{"tiny env", func(c *Config) { c.EnvironmentResolution = 0 }},
		{"caustics scale", func(c *Config) { c.CausticsScale = 0 }},
		{"geometry", func(c *Config) { c.Geometry = "torus" }},
		{"sides", func(c *Config) { c.PolygonSides = 2 }},
		{"backend", func(c *Config) { c.Backend = "cuda" }},
		{"bands", func(c *Config) { c.Audio.Responders[0].EndBand = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wind.json")
	want := Presets()["wind"]

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != want.Name || got.WindIntensity != want.WindIntensity || got.UnderwaterColor != want.UnderwaterColor {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if len(got.Audio.Responders) != len(want.Audio.Responders) {
		t.Errorf("expected %d responders, got %d", len(want.Audio.Responders), len(got.Audio.Responders))
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"damping": 0.99, "raindrops": true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Damping != 0.99 || !cfg.Raindrops {
		t.Error("file values should override defaults")
	}
	if cfg.MaxIterations != 50 {
		t.Errorf("missing fields should keep defaults, got MaxIterations=%d", cfg.MaxIterations)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing file should fail")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"geometry": "cube"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("invalid geometry should fail")
	}
}
