package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"Caustics/internal/audio"
	"Caustics/internal/config"
	"Caustics/internal/display"
	"Caustics/internal/engine"
	"Caustics/internal/logger"

	"go.uber.org/zap"
)

func main() {
	flag.Parse()

	logger.InitWithLevel(*logLevelFlag)
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Log.Error("Caustics failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	analyser, wav, err := loadAnalyser(cfg)
	if err != nil {
		return err
	}

	opts := engine.Options{Analyser: analyser, Seed: *seedFlag}

	if *headlessFlag {
		clock := engine.NewManualClock(time.Unix(0, 0))
		opts.Clock = clock
		e, err := newEngine(cfg, opts)
		if err != nil {
			return err
		}
		defer e.Close()
		return engine.RunHeadless(e, clock, engine.HeadlessOptions{
			Frames:       *framesFlag,
			OutDir:       *outFlag,
			Every:        *everyFlag,
			DumpTextures: *dumpFlag,
		})
	}

	opts.Clock = engine.SystemClock{}
	e, err := newEngine(cfg, opts)
	if err != nil {
		return err
	}
	defer e.Close()

	if *playFlag && wav != nil {
		player, err := audio.Play(wav)
		if err != nil {
			logger.Log.Warn("Audio playback unavailable", zap.Error(err))
		} else {
			defer player.Close()
		}
	}

	return display.Run(e, display.Options{Title: "Caustics - " + cfg.Name})
}

func newEngine(cfg config.Config, opts engine.Options) (*engine.Engine, error) {
	e, err := engine.New(cfg, opts)
	if err != nil {
		return nil, err
	}
	if *fovFlag > 0 {
		e.Camera.SetFov(float32(*fovFlag))
	}
	return e, nil
}

func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if *configFlag != "" {
		cfg, err = config.Load(*configFlag)
	} else {
		cfg, err = config.Preset(*presetFlag)
	}
	if err != nil {
		return cfg, err
	}
	if *backendFlag != "" {
		cfg.Backend = *backendFlag
	}
	logger.Log.Info("Configuration loaded", zap.String("name", cfg.Name), zap.String("backend", cfg.Backend))
	return cfg, nil
}

// loadAnalyser returns the analyser feeding the sound driver, and the WAV
// track behind it when there is one. A nil analyser leaves the engine silent.
func loadAnalyser(cfg config.Config) (audio.Analyser, *audio.WAVAnalyser, error) {
	switch {
	case *audioFlag != "":
		wav, err := audio.LoadWAV(*audioFlag, analyserSampleRate, cfg.Audio.BandCount)
		if err != nil {
			return nil, nil, fmt.Errorf("loading audio: %w", err)
		}
		return wav, wav, nil
	case *noiseFlag:
		return audio.NewPerlinAnalyser(cfg.Audio.BandCount/2, *seedFlag), nil, nil
	}
	return nil, nil, nil
}
