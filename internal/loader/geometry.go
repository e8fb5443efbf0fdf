package loader

import (
	"errors"

	"Caustics/internal/logger"
	"Caustics/internal/renderer"

	perlin "github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Inner part of a relief floor. It covers the light volume; outside it the
// floor is a flat skirt.
const (
	reliefHalfSize = 1.5
	reliefSegments = 96
)

// LoadWaterGrid creates a resolution×resolution quad grid spanning [-1, 1]² in
// the z = 0 plane, one vertex per grid corner. Triangles wind counter-clockwise
// seen from +Z.
func LoadWaterGrid(resolution int) (*renderer.Model, error) {
	if resolution < 1 {
		return nil, errors.New("resolution must be at least 1")
	}
	model := renderer.CreateModel("water", gridVertices(resolution, 1), gridIndices(resolution, 0))
	model.Normals = make([]mgl32.Vec3, len(model.Vertices))
	for i := range model.Normals {
		model.Normals[i] = mgl32.Vec3{0, 0, 1}
	}

	logger.Log.Debug("Water grid created",
		zap.Int("vertices", len(model.Vertices)),
		zap.Int("triangles", model.TriangleCount()),
		zap.Int("resolution", resolution))

	return model, nil
}

// LoadFloor creates the pool floor: a size×size square at z = 0. With a
// positive relief the part under the light is displaced upward by Perlin
// noise of the given frequency, up to relief units, and fades back to flat at
// its border.
func LoadFloor(size, relief, frequency float32, seed int64) (*renderer.Model, error) {
	if size <= 0 {
		return nil, errors.New("floor size must be positive")
	}
	half := size * 0.5
	if relief <= 0 || half <= reliefHalfSize {
		model := renderer.CreateModel("floor", gridVertices(1, half), gridIndices(1, 0))
		model.RecalculateNormals()
		return model, nil
	}

	noise := perlin.NewPerlin(2, 2, 3, seed)
	vertices := gridVertices(reliefSegments, reliefHalfSize)
	for i, v := range vertices {
		n := noise.Noise2D(float64(v.X()*frequency), float64(v.Y()*frequency))
		h := float32(n+1) * 0.5
		if h < 0 {
			h = 0
		}
		vertices[i][2] = relief * h * borderFade(v.X(), v.Y())
	}
	indices := gridIndices(reliefSegments, 0)

	// Skirt: the ring between the relief patch and the floor edge.
	base := uint32(len(vertices))
	vertices = append(vertices,
		mgl32.Vec3{-half, -half, 0}, mgl32.Vec3{half, -half, 0}, mgl32.Vec3{half, half, 0}, mgl32.Vec3{-half, half, 0},
		mgl32.Vec3{-reliefHalfSize, -reliefHalfSize, 0}, mgl32.Vec3{reliefHalfSize, -reliefHalfSize, 0},
		mgl32.Vec3{reliefHalfSize, reliefHalfSize, 0}, mgl32.Vec3{-reliefHalfSize, reliefHalfSize, 0},
	)
	for k := uint32(0); k < 4; k++ {
		outerA, outerB := base+k, base+(k+1)%4
		innerA, innerB := base+4+k, base+4+(k+1)%4
		indices = append(indices, outerA, outerB, innerB, outerA, innerB, innerA)
	}

	model := renderer.CreateModel("floor", vertices, indices)
	model.RecalculateNormals()

	logger.Log.Info("Floor created",
		zap.Float32("size", size),
		zap.Float32("relief", relief),
		zap.Int("vertices", len(vertices)))

	return model, nil
}

// borderFade is 1 in the middle of the relief patch and falls to 0 at its edge.
func borderFade(x, y float32) float32 {
	d := mgl32.Abs(x)
	if a := mgl32.Abs(y); a > d {
		d = a
	}
	return 1 - renderer.Smoothstep(reliefHalfSize*0.8, reliefHalfSize, d)
}

func gridVertices(segments int, half float32) []mgl32.Vec3 {
	vertices := make([]mgl32.Vec3, 0, (segments+1)*(segments+1))
	step := 2 * half / float32(segments)
	for y := 0; y <= segments; y++ {
		for x := 0; x <= segments; x++ {
			vertices = append(vertices, mgl32.Vec3{-half + float32(x)*step, -half + float32(y)*step, 0})
		}
	}
	return vertices
}

func gridIndices(segments int, offset uint32) []uint32 {
	indices := make([]uint32, 0, segments*segments*6)
	row := uint32(segments + 1)
	for y := 0; y < segments; y++ {
		for x := 0; x < segments; x++ {
			bottomLeft := offset + uint32(y)*row + uint32(x)
			bottomRight := bottomLeft + 1
			topLeft := bottomLeft + row
			topRight := topLeft + 1

			indices = append(indices, bottomLeft, bottomRight, topRight, bottomLeft, topRight, topLeft)
		}
	}
	return indices
}
