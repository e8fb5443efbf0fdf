package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Texture is a float RGBA image. Row 0 is the bottom row, matching texture
// coordinate v = 0 and NDC y = -1.
type Texture struct {
	Width  int
	Height int
	Pixels []mgl32.Vec4
}

// NewTexture allocates a transparent black texture.
func NewTexture(width, height int) *Texture {
	return &Texture{Width: width, Height: height, Pixels: make([]mgl32.Vec4, width*height)}
}

// At returns the texel at (x, y) with clamp-to-edge addressing.
func (t *Texture) At(x, y int) mgl32.Vec4 {
	if x < 0 {
		x = 0
	} else if x >= t.Width {
		x = t.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.Height {
		y = t.Height - 1
	}
	return t.Pixels[y*t.Width+x]
}

// Set writes the texel at (x, y). Out of range writes are ignored.
func (t *Texture) Set(x, y int, c mgl32.Vec4) {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// Sample bilinearly filters the texture at (u, v) in [0,1]² with clamp-to-edge
// addressing.
func (t *Texture) Sample(u, v float32) mgl32.Vec4 {
	fx := u*float32(t.Width) - 0.5
	fy := v*float32(t.Height) - 0.5
	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	a := t.At(x0, y0)
	b := t.At(x0+1, y0)
	c := t.At(x0, y0+1)
	d := t.At(x0+1, y0+1)
	top := a.Add(b.Sub(a).Mul(tx))
	bottom := c.Add(d.Sub(c).Mul(tx))
	return top.Add(bottom.Sub(top).Mul(ty))
}

// SampleNearest returns the texel containing (u, v).
func (t *Texture) SampleNearest(u, v float32) mgl32.Vec4 {
	return t.At(int(math.Floor(float64(u*float32(t.Width)))), int(math.Floor(float64(v*float32(t.Height)))))
}

// Fill sets every texel to c.
func (t *Texture) Fill(c mgl32.Vec4) {
	for i := range t.Pixels {
		t.Pixels[i] = c
	}
}

// ToRGBA converts the colour channels to an 8-bit image, flipping rows so the
// image's top line is the texture's top row. Values are clamped to [0,1] and
// alpha is forced opaque.
func (t *Texture) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		row := t.Height - 1 - y
		for x := 0; x < t.Width; x++ {
			p := t.Pixels[row*t.Width+x]
			img.SetRGBA(x, y, color.RGBA{to8(p.X()), to8(p.Y()), to8(p.Z()), 255})
		}
	}
	return img
}

// ChannelImage renders one channel as greyscale after mapping [lo, hi] to
// [0, 255]; used for the diagnostic dumps of intermediate textures.
func (t *Texture) ChannelImage(channel int, lo, hi float32) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, t.Width, t.Height))
	scale := float32(1)
	if hi != lo {
		scale = 1 / (hi - lo)
	}
	for y := 0; y < t.Height; y++ {
		row := t.Height - 1 - y
		for x := 0; x < t.Width; x++ {
			v := (t.Pixels[row*t.Width+x][channel] - lo) * scale
			img.SetGray(x, y, color.Gray{Y: to8(v)})
		}
	}
	return img
}

func to8(v float32) uint8 {
	if v != v || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
