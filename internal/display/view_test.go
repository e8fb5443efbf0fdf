package display

import (
	"testing"
	"time"

	"Caustics/internal/config"
	"Caustics/internal/engine"
	"Caustics/internal/renderer"
)

func TestViewSources(t *testing.T) {
	cfg := config.Default()
	cfg.Width, cfg.Height = 8, 6
	cfg.WaterResolution = 8
	cfg.EnvironmentResolution = 8
	cfg.CausticsScale = 1
	cfg.RandomStart = false
	e, err := engine.New(cfg, engine.Options{Clock: engine.NewManualClock(time.Unix(0, 0)), Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	frame := renderer.NewTexture(8, 6)
	heights := renderer.NewTexture(8, 8)

	if src := source(ViewFrame, e, frame, heights); src.texture != frame || src.channel != -1 {
		t.Error("Frame view should show the colours of the frame")
	}
	if src := source(ViewHeight, e, frame, heights); src.texture != heights || src.offset != 0.5 {
		t.Error("Height view should centre the heights on grey")
	}
	if src := source(ViewEnvironment, e, frame, heights); src.texture != e.EnvironmentMap() || src.channel != 3 {
		t.Error("Environment view should show depth")
	}
	if src := source(ViewCaustics, e, frame, heights); src.texture != e.Caustics() || src.channel != 0 {
		t.Error("Caustics view should show intensity")
	}
	if ViewCaustics.String() != "caustics" || View(9).String() != "unknown" {
		t.Error("Unexpected view names")
	}
}

func TestKeyBindings(t *testing.T) {
	if len(keyBindings) != 6 || len(viewBindings) != 4 {
		t.Errorf("Expected 6 commands and 4 views, got %d and %d", len(keyBindings), len(viewBindings))
	}
}
