package engine

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"Caustics/internal/logger"
	"Caustics/internal/renderer"
	"Caustics/internal/water"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// HeadlessOptions control an offscreen run.
type HeadlessOptions struct {
	Frames int
	// FrameInterval is the simulated time between frames.
	FrameInterval time.Duration
	OutDir        string
	// Every writes one frame out of Every; 0 writes only the last one.
	Every int
	// DumpTextures writes the height field, environment map and caustics
	// after the last frame, as PNG previews and raw float textures.
	DumpTextures bool
}

// RunHeadless renders opts.Frames frames, advancing clock by FrameInterval
// before each one, and writes them as PNG files into OutDir.
func RunHeadless(e *Engine, clock *ManualClock, opts HeadlessOptions) error {
	if opts.Frames <= 0 {
		return errors.New("frame count must be positive")
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 60
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	start := time.Now()
	written := 0
	for i := 0; i < opts.Frames; i++ {
		clock.Advance(opts.FrameInterval)
		frame := e.Frame()

		last := i == opts.Frames-1
		if last || (opts.Every > 0 && (i+1)%opts.Every == 0) {
			path := filepath.Join(opts.OutDir, fmt.Sprintf("frame_%04d.png", i+1))
			if err := writePNG(path, frame.ToRGBA()); err != nil {
				return err
			}
			written++
		}
	}

	if opts.DumpTextures {
		if err := DumpTextures(e, opts.OutDir); err != nil {
			return err
		}
	}

	logger.Log.Info("Headless run finished",
		zap.Int("frames", opts.Frames),
		zap.Int("written", written),
		zap.Int("ticks", e.Ticks()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// HeightTexture copies a height field into a texture laid out as
// (height, velocity, normal x, normal z).
func HeightTexture(g *water.Grid) *renderer.Texture {
	tex := renderer.NewTexture(g.Size, g.Size)
	for i, t := range g.Texels {
		tex.Pixels[i] = mgl32.Vec4{t.Height, t.Velocity, t.NormalX, t.NormalZ}
	}
	return tex
}

type textureDump struct {
	name     string
	tex      *renderer.Texture
	channel  int
	lo, hi   float32
	channels []string
}

// DumpTextures writes the intermediate textures of the last tick into dir.
// Each gets a greyscale preview of its main channel, a gzip compressed float
// copy and a JSON summary.
func DumpTextures(e *Engine, dir string) error {
	dumps := []textureDump{
		{"height", HeightTexture(e.HeightField()), 0, -0.1, 0.1, []string{"height", "velocity", "normalX", "normalZ"}},
		{"environment", e.EnvironmentMap(), 3, 0, 1, []string{"x", "y", "z", "depth"}},
		{"caustics", e.Caustics(), 0, 0, 1, []string{"intensity", "", "", "depth"}},
	}
	for _, d := range dumps {
		if err := writePNG(filepath.Join(dir, d.name+".png"), d.tex.ChannelImage(d.channel, d.lo, d.hi)); err != nil {
			return err
		}

		data, err := renderer.EncodeTextureBinary(d.tex)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", d.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, d.name+".tex.gz"), data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", d.name, err)
		}

		info, err := renderer.MarshalTextureInfo(renderer.DescribeTexture(d.name, d.tex, d.channels))
		if err != nil {
			return fmt.Errorf("describing %s: %w", d.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, d.name+".json"), info, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", d.name, err)
		}
	}
	logger.Log.Info("Textures dumped", zap.String("dir", dir))
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
