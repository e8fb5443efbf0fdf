package display

import (
	"Caustics/internal/engine"
	"Caustics/internal/renderer"
)

// View selects what the window shows.
type View int

const (
	ViewFrame       View = iota // composited frame
	ViewHeight                  // simulation heights
	ViewEnvironment             // light-space depth
	ViewCaustics                // caustics intensity
)

func (v View) String() string {
	switch v {
	case ViewFrame:
		return "frame"
	case ViewHeight:
		return "height"
	case ViewEnvironment:
		return "environment"
	case ViewCaustics:
		return "caustics"
	}
	return "unknown"
}

// viewSource is a texture and the channel mapping used to present it.
type viewSource struct {
	texture *renderer.Texture
	channel int
	scale   float32
	offset  float32
}

// source picks the texture for view. Heights are shown around mid grey.
func source(view View, e *engine.Engine, frame *renderer.Texture, heights *renderer.Texture) viewSource {
	switch view {
	case ViewHeight:
		return viewSource{texture: heights, channel: 0, scale: 5, offset: 0.5}
	case ViewEnvironment:
		return viewSource{texture: e.EnvironmentMap(), channel: 3, scale: 1}
	case ViewCaustics:
		return viewSource{texture: e.Caustics(), channel: 0, scale: 1}
	}
	return viewSource{texture: frame, channel: -1, scale: 1}
}
