package main

import "flag"

// Command-line flags selecting the configuration, the audio source and the
// output mode.
var (
	// presetFlag picks one of the built-in configurations.
	presetFlag = flag.String("preset", "caustics", "built-in configuration preset")

	// configFlag loads a JSON configuration on top of the defaults; it wins over -preset.
	configFlag = flag.String("config", "", "path to a JSON configuration file")

	headlessFlag = flag.Bool("headless", false, "render offscreen and write PNG frames instead of opening a window")
	framesFlag   = flag.Int("frames", 120, "number of frames to render in headless mode")
	everyFlag    = flag.Int("every", 0, "write one frame out of N in headless mode (0 writes only the last)")
	outFlag      = flag.String("out", "frames", "output directory for headless frames")

	// dumpFlag writes the height field, environment map and caustics after a headless run.
	dumpFlag = flag.Bool("dump", false, "dump intermediate textures after a headless run")

	// audioFlag drives the sound responders from a WAV track.
	audioFlag = flag.String("audio", "", "WAV file feeding the frequency analyser")

	// noiseFlag drives the sound responders from a Perlin spectrum when no track is given.
	noiseFlag = flag.Bool("noise", false, "use a synthetic noise spectrum as the analyser")

	playFlag = flag.Bool("play", false, "play the -audio track while rendering")

	logLevelFlag = flag.String("log-level", "info", "log level (debug, info, warn, error)")

	// backendFlag overrides the height field backend of the configuration.
	backendFlag = flag.String("backend", "", "height field backend override (cpu, opencl)")

	seedFlag = flag.Int64("seed", 0, "random seed (0 picks one from the clock)")

	// fovFlag overrides the configured camera field of view.
	fovFlag = flag.Float64("fov", 0, "camera field of view in degrees (0 keeps the configured one)")
)

// analyserSampleRate is the rate tracks are resampled to before analysis.
const analyserSampleRate = 44100
