package renderer

import (
	"math"

	"Caustics/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Model is an indexed triangle mesh with a transform.
type Model struct {
	// HOT DATA - Read by every pass that draws the model
	ModelMatrix mgl32.Mat4 // Transformation matrix
	Position    mgl32.Vec3 // Position in world space
	Scale       mgl32.Vec3 // Scale factors
	Rotation    mgl32.Quat // Rotation quaternion
	Visible     bool       // Hidden models are skipped by the passes

	// MEDIUM DATA - Picking
	BoundingSphereCenter mgl32.Vec3
	BoundingSphereRadius float32
	Metadata             map[string]interface{}

	// COLD DATA - Geometry
	Name          string
	SourcePath    string // Original file path for loaded meshes
	Vertices      []mgl32.Vec3
	Normals       []mgl32.Vec3
	TextureCoords []mgl32.Vec2
	Faces         []uint32
}

func (m *Model) Rotate(angleX, angleY, angleZ float32) {
	rotationX := mgl32.QuatRotate(mgl32.DegToRad(angleX), mgl32.Vec3{1, 0, 0})
	rotationY := mgl32.QuatRotate(mgl32.DegToRad(angleY), mgl32.Vec3{0, 1, 0})
	rotationZ := mgl32.QuatRotate(mgl32.DegToRad(angleZ), mgl32.Vec3{0, 0, 1})
	m.Rotation = m.Rotation.Mul(rotationX).Mul(rotationY).Mul(rotationZ)
	m.updateModelMatrix()
}

// SetPosition sets the position of the model
func (m *Model) SetPosition(x, y, z float32) {
	m.Position = mgl32.Vec3{x, y, z}
	m.updateModelMatrix()
}

// TriangleCount is the number of indexed triangles.
func (m *Model) TriangleCount() int {
	return len(m.Faces) / 3
}

// WorldVertex returns vertex i transformed by the model matrix.
func (m *Model) WorldVertex(i int) mgl32.Vec3 {
	return m.ModelMatrix.Mul4x1(m.Vertices[i].Vec4(1)).Vec3()
}

// WorldNormal returns normal i rotated into world space. Models without
// normals report +Z.
func (m *Model) WorldNormal(i int) mgl32.Vec3 {
	if i >= len(m.Normals) {
		return mgl32.Vec3{0, 0, 1}
	}
	n := m.Rotation.Rotate(m.Normals[i])
	if l := n.Len(); l > 0 {
		return n.Mul(1 / l)
	}
	return mgl32.Vec3{0, 0, 1}
}

func (m *Model) CalculateBoundingSphere() {
	if len(m.Vertices) == 0 {
		m.BoundingSphereCenter = m.Position
		m.BoundingSphereRadius = 0
		return
	}
	var center mgl32.Vec3
	for i := range m.Vertices {
		center = center.Add(m.WorldVertex(i))
	}
	center = center.Mul(1.0 / float32(len(m.Vertices)))

	var maxDistanceSq float32
	for i := range m.Vertices {
		if d := m.WorldVertex(i).Sub(center).LenSqr(); d > maxDistanceSq {
			maxDistanceSq = d
		}
	}
	m.BoundingSphereCenter = center
	m.BoundingSphereRadius = float32(math.Sqrt(float64(maxDistanceSq)))
}

func (m *Model) updateModelMatrix() {
	// T * R * S: scale first, then rotate, then translate
	scaleMatrix := mgl32.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])
	rotationMatrix := m.Rotation.Mat4()
	translationMatrix := mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	m.ModelMatrix = translationMatrix.Mul4(rotationMatrix).Mul4(scaleMatrix)
	m.CalculateBoundingSphere()
}

// RecalculateNormals rebuilds smooth vertex normals from the faces.
func (m *Model) RecalculateNormals() {
	normals := make([]mgl32.Vec3, len(m.Vertices))
	for i := 0; i+2 < len(m.Faces); i += 3 {
		a, b, c := m.Faces[i], m.Faces[i+1], m.Faces[i+2]
		n := m.Vertices[b].Sub(m.Vertices[a]).Cross(m.Vertices[c].Sub(m.Vertices[a]))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i, n := range normals {
		if l := n.Len(); l > 0 {
			normals[i] = n.Mul(1 / l)
		} else {
			normals[i] = mgl32.Vec3{0, 0, 1}
		}
	}
	m.Normals = normals
}

// CreateModel wraps vertices and triangle indices in a visible model with an
// identity transform. Indices past the vertex count are dropped with their
// triangle.
func CreateModel(name string, vertices []mgl32.Vec3, indices []uint32) *Model {
	faces := make([]uint32, 0, len(indices))
	dropped := 0
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(vertices) || int(b) >= len(vertices) || int(c) >= len(vertices) {
			dropped++
			continue
		}
		faces = append(faces, a, b, c)
	}
	if dropped > 0 {
		logger.Log.Warn("Dropped triangles with out of range indices",
			zap.String("model", name),
			zap.Int("dropped", dropped))
	}

	m := &Model{
		Name:     name,
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1.0, 1.0, 1.0},
		Visible:  true,
		Vertices: vertices,
		Faces:    faces,
		Metadata: make(map[string]interface{}),
	}
	m.updateModelMatrix()
	return m
}
