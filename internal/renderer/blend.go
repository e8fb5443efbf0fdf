package renderer

import "github.com/go-gl/mathgl/mgl32"

// BlendFactor multiplies a blend operand. Only the factors the pipeline uses
// are modelled; the blend equation is always addition.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
)

func (f BlendFactor) apply(v float32) float32 {
	if f == BlendZero {
		return 0
	}
	return v
}

// BlendState describes separate colour (rgb) and alpha blending:
//
//	rgb = src.rgb*SrcColor + dst.rgb*DstColor
//	a   = src.a*SrcAlpha   + dst.a*DstAlpha
type BlendState struct {
	Enabled  bool
	SrcColor BlendFactor
	DstColor BlendFactor
	SrcAlpha BlendFactor
	DstAlpha BlendFactor
}

// NoBlend overwrites the destination.
var NoBlend = BlendState{}

// CausticsBlend sums intensity in the colour channels and overwrites the
// depth kept in alpha.
var CausticsBlend = BlendState{
	Enabled:  true,
	SrcColor: BlendOne,
	DstColor: BlendOne,
	SrcAlpha: BlendOne,
	DstAlpha: BlendZero,
}

// Apply combines a fragment colour with the existing destination colour.
func (b BlendState) Apply(dst, src mgl32.Vec4) mgl32.Vec4 {
	if !b.Enabled {
		return src
	}
	return mgl32.Vec4{
		b.SrcColor.apply(src.X()) + b.DstColor.apply(dst.X()),
		b.SrcColor.apply(src.Y()) + b.DstColor.apply(dst.Y()),
		b.SrcColor.apply(src.Z()) + b.DstColor.apply(dst.Z()),
		b.SrcAlpha.apply(src.W()) + b.DstAlpha.apply(dst.W()),
	}
}
