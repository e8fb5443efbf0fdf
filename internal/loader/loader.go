package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"Caustics/internal/logger"
	"Caustics/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// LoadModel reads a Wavefront OBJ file into a model. Faces with more than
// three corners are triangulated. Vertices that share a position but differ
// in texture coordinate or normal are split. Materials are ignored.
func LoadModel(filename string, recalculateNormals bool) (*renderer.Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	model, err := ParseModel(file, strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), recalculateNormals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	model.SourcePath = filename
	return model, nil
}

// ParseModel reads OBJ data from r.
func ParseModel(r io.Reader, name string, recalculateNormals bool) (*renderer.Model, error) {
	var positions, normals []mgl32.Vec3
	var texCoords []mgl32.Vec2
	var corners []FaceVertex

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
			continue
		}
		switch parts[0] {
		case "v":
			v, err := parseVertex(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, v)
		case "vn":
			n, err := parseVertex(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, n)
		case "vt":
			uv, err := parseTextureCoordinate(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			texCoords = append(texCoords, uv)
		case "f":
			face, err := parseFace(parts[1:], len(positions), len(texCoords), len(normals))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			corners = append(corners, face...)
		case "mtllib", "usemtl":
			logger.Log.Debug("Ignoring material statement", zap.String("statement", parts[0]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(corners) == 0 {
		return nil, errors.New("no faces")
	}

	// Index unification: one output vertex per distinct v/vt/vn triple
	vertexMap := make(map[FaceVertex]uint32)
	var vertices, vertexNormals []mgl32.Vec3
	var uvs []mgl32.Vec2
	hasNormals, hasUVs := false, false
	indices := make([]uint32, 0, len(corners))
	for _, c := range corners {
		idx, ok := vertexMap[c]
		if !ok {
			idx = uint32(len(vertices))
			vertexMap[c] = idx
			vertices = append(vertices, positions[c.VertexIdx])

			n := mgl32.Vec3{0, 0, 1}
			if c.NormalIdx >= 0 {
				n = normals[c.NormalIdx]
				hasNormals = true
			}
			vertexNormals = append(vertexNormals, n)

			var uv mgl32.Vec2
			if c.TexCoordIdx >= 0 {
				uv = texCoords[c.TexCoordIdx]
				hasUVs = true
			}
			uvs = append(uvs, uv)
		}
		indices = append(indices, idx)
	}

	model := renderer.CreateModel(name, vertices, indices)
	if hasUVs {
		model.TextureCoords = uvs
	}
	if recalculateNormals || !hasNormals {
		model.RecalculateNormals()
	} else {
		model.Normals = vertexNormals
	}

	logger.Log.Info("Model loaded",
		zap.String("name", name),
		zap.Int("vertices", len(vertices)),
		zap.Int("triangles", model.TriangleCount()))

	return model, nil
}

func parseVertex(parts []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if len(parts) < 3 {
		return v, fmt.Errorf("expected 3 components, got %d", len(parts))
	}
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(parts[i], 32)
		if err != nil {
			return v, fmt.Errorf("invalid vertex value %v: %w", parts[i], err)
		}
		v[i] = float32(val)
	}
	return v, nil
}

func parseTextureCoordinate(parts []string) (mgl32.Vec2, error) {
	var uv mgl32.Vec2
	if len(parts) < 2 {
		return uv, fmt.Errorf("expected 2 components, got %d", len(parts))
	}
	for i := 0; i < 2; i++ {
		val, err := strconv.ParseFloat(parts[i], 32)
		if err != nil {
			return uv, fmt.Errorf("invalid texture coordinate %v: %w", parts[i], err)
		}
		uv[i] = float32(val)
	}
	return uv, nil
}

// FaceVertex holds zero-based indices of one face corner; -1 marks a
// missing attribute.
type FaceVertex struct {
	VertexIdx   int32
	TexCoordIdx int32
	NormalIdx   int32
}

// parseFace reads one face and returns its corners as triangles. Negative
// OBJ indices count back from the current end of each list.
func parseFace(parts []string, nv, nvt, nvn int) ([]FaceVertex, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("face needs at least 3 vertices, got %d", len(parts))
	}
	face := make([]FaceVertex, 0, len(parts))
	for _, part := range parts {
		vals := strings.Split(part, "/")

		vertexIdx, err := resolveIndex(vals[0], nv)
		if err != nil {
			return nil, fmt.Errorf("invalid vertex index %v: %w", vals[0], err)
		}

		var texCoordIdx int32 = -1
		if len(vals) > 1 && vals[1] != "" {
			if texCoordIdx, err = resolveIndex(vals[1], nvt); err != nil {
				return nil, fmt.Errorf("invalid texture coordinate index %v: %w", vals[1], err)
			}
		}

		var normalIdx int32 = -1
		if len(vals) > 2 && vals[2] != "" {
			if normalIdx, err = resolveIndex(vals[2], nvn); err != nil {
				return nil, fmt.Errorf("invalid normal index %v: %w", vals[2], err)
			}
		}

		face = append(face, FaceVertex{VertexIdx: vertexIdx, TexCoordIdx: texCoordIdx, NormalIdx: normalIdx})
	}

	if len(face) == 3 {
		return face, nil
	}
	if len(face) > 4 {
		logger.Log.Debug("Face with more than 4 vertices detected, using fan triangulation", zap.Int("vertexCount", len(face)))
	}
	triangulated := make([]FaceVertex, 0, (len(face)-2)*3)
	for i := 1; i < len(face)-1; i++ {
		triangulated = append(triangulated, face[0], face[i], face[i+1])
	}
	return triangulated, nil
}

func resolveIndex(s string, count int) (int32, error) {
	idx, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	// .obj indices start at 1, not 0
	if idx < 0 {
		idx += int64(count)
	} else {
		idx--
	}
	if idx < 0 || idx >= int64(count) {
		return 0, fmt.Errorf("index out of range (have %d)", count)
	}
	return int32(idx), nil
}
