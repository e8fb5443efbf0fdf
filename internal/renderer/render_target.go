package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderTarget is an off-screen colour buffer with an optional depth buffer.
type RenderTarget struct {
	Name    string
	Texture *Texture
	Depth   []float32
}

// NewRenderTarget allocates a width×height target.
func NewRenderTarget(name string, width, height int, withDepth bool) *RenderTarget {
	rt := &RenderTarget{Name: name, Texture: NewTexture(width, height)}
	if withDepth {
		rt.Depth = make([]float32, width*height)
		rt.clearDepth()
	}
	return rt
}

// Width of the target in pixels.
func (rt *RenderTarget) Width() int { return rt.Texture.Width }

// Height of the target in pixels.
func (rt *RenderTarget) Height() int { return rt.Texture.Height }

// Clear fills the colour buffer and resets depth to the far plane.
func (rt *RenderTarget) Clear(c mgl32.Vec4) {
	rt.Texture.Fill(c)
	rt.clearDepth()
}

func (rt *RenderTarget) clearDepth() {
	for i := range rt.Depth {
		rt.Depth[i] = float32(math.Inf(1))
	}
}

// Device tracks which render target draw calls write to. Passes bind their
// own target and must restore the previous one before returning:
//
//	defer dev.Bind(target)()
type Device struct {
	current *RenderTarget
}

// NewDevice returns a device bound to screen, the default framebuffer.
func NewDevice(screen *RenderTarget) *Device {
	return &Device{current: screen}
}

// Target is the render target currently bound.
func (d *Device) Target() *RenderTarget {
	return d.current
}

// Bind makes rt current and returns a func restoring the previous target.
func (d *Device) Bind(rt *RenderTarget) (restore func()) {
	previous := d.current
	d.current = rt
	return func() {
		d.current = previous
	}
}

// Clear clears the bound target.
func (d *Device) Clear(c mgl32.Vec4) {
	if d.current != nil {
		d.current.Clear(c)
	}
}
