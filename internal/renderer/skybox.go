package renderer

import (
	"fmt"
	"math"

	"Caustics/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Cube faces in the usual +X, -X, +Y, -Y, +Z, -Z order.
const (
	FacePositiveX = iota
	FaceNegativeX
	FacePositiveY
	FaceNegativeY
	FacePositiveZ
	FaceNegativeZ
)

// SkyCube is the environment reflected by the water surface: either six face
// images or a vertical gradient when no images are configured.
type SkyCube struct {
	Faces   [6]*Texture
	Top     mgl32.Vec3 // Gradient colour straight up (+Z)
	Horizon mgl32.Vec3 // Gradient colour at and below the horizon
}

// CreateSolidColorSkyCube creates a gradient sky; pass the same colour twice
// for a solid one.
func CreateSolidColorSkyCube(top, horizon mgl32.Vec3) *SkyCube {
	return &SkyCube{Top: top, Horizon: horizon}
}

// CreateSkyCube loads the six faces through the texture manager. An empty
// path list falls back to the gradient.
func CreateSkyCube(tm *TextureManager, paths []string, top, horizon mgl32.Vec3) (*SkyCube, error) {
	sky := CreateSolidColorSkyCube(top, horizon)
	if len(paths) == 0 {
		return sky, nil
	}
	if len(paths) != 6 {
		return nil, fmt.Errorf("sky cube needs 6 faces, got %d", len(paths))
	}
	for i, path := range paths {
		tex, err := tm.LoadTexture(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load sky face %d: %w", i, err)
		}
		sky.Faces[i] = tex
	}
	logger.Log.Info("Sky cube loaded", zap.Strings("faces", paths))
	return sky, nil
}

// Textured reports whether the sky samples face images.
func (s *SkyCube) Textured() bool {
	return s.Faces[0] != nil
}

// Sample returns the sky colour seen along dir.
func (s *SkyCube) Sample(dir mgl32.Vec3) mgl32.Vec3 {
	if !s.Textured() {
		return s.gradient(dir)
	}
	face, u, v := cubeFace(dir)
	// Face images are stored bottom row first; cube map t runs top down.
	return s.Faces[face].Sample(u, 1-v).Vec3()
}

func (s *SkyCube) gradient(dir mgl32.Vec3) mgl32.Vec3 {
	l := dir.Len()
	if l == 0 {
		return s.Horizon
	}
	t := dir.Z() / l
	if t <= 0 {
		return s.Horizon
	}
	return s.Horizon.Add(s.Top.Sub(s.Horizon).Mul(t))
}

// cubeFace picks the face hit by dir and the (s, t) coordinates on it.
func cubeFace(dir mgl32.Vec3) (face int, u, v float32) {
	x, y, z := dir.X(), dir.Y(), dir.Z()
	ax := float32(math.Abs(float64(x)))
	ay := float32(math.Abs(float64(y)))
	az := float32(math.Abs(float64(z)))

	var sc, tc, ma float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if x > 0 {
			face, sc, tc = FacePositiveX, -z, -y
		} else {
			face, sc, tc = FaceNegativeX, z, -y
		}
	case ay >= az:
		ma = ay
		if y > 0 {
			face, sc, tc = FacePositiveY, x, z
		} else {
			face, sc, tc = FaceNegativeY, x, -z
		}
	default:
		ma = az
		if z > 0 {
			face, sc, tc = FacePositiveZ, x, -y
		} else {
			face, sc, tc = FaceNegativeZ, -x, -y
		}
	}
	if ma == 0 {
		return FacePositiveZ, 0.5, 0.5
	}
	return face, (sc/ma + 1) * 0.5, (tc/ma + 1) * 0.5
}
