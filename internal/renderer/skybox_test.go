package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSkyCubeGradient(t *testing.T) {
	top := mgl32.Vec3{0, 0, 1}
	horizon := mgl32.Vec3{1, 1, 1}
	sky := CreateSolidColorSkyCube(top, horizon)

	if sky.Textured() {
		t.Error("Gradient sky should not be textured")
	}
	if got := sky.Sample(mgl32.Vec3{0, 0, 5}); got != top {
		t.Errorf("Expected the zenith colour, got %v", got)
	}
	if got := sky.Sample(mgl32.Vec3{0, 1, -1}); got != horizon {
		t.Errorf("Expected the horizon colour below the horizon, got %v", got)
	}
	if got := sky.Sample(mgl32.Vec3{}); got != horizon {
		t.Errorf("Zero direction should give the horizon colour, got %v", got)
	}
}

func TestCubeFaceSelection(t *testing.T) {
	tests := []struct {
		dir  mgl32.Vec3
		face int
	}{
		{mgl32.Vec3{1, 0.2, 0.1}, FacePositiveX},
		{mgl32.Vec3{-1, 0.2, 0.1}, FaceNegativeX},
		{mgl32.Vec3{0.1, 1, 0.2}, FacePositiveY},
		{mgl32.Vec3{0.1, -1, 0.2}, FaceNegativeY},
		{mgl32.Vec3{0.1, 0.2, 1}, FacePositiveZ},
		{mgl32.Vec3{0.1, 0.2, -1}, FaceNegativeZ},
	}
	for _, tt := range tests {
		face, u, v := cubeFace(tt.dir)
		if face != tt.face {
			t.Errorf("cubeFace(%v) = %d, want %d", tt.dir, face, tt.face)
		}
		if u < 0 || u > 1 || v < 0 || v > 1 {
			t.Errorf("cubeFace(%v) coordinates out of range: (%f, %f)", tt.dir, u, v)
		}
	}

	if _, u, v := cubeFace(mgl32.Vec3{0, 0, 1}); u != 0.5 || v != 0.5 {
		t.Errorf("Axis direction should hit the face centre, got (%f, %f)", u, v)
	}
}

func TestSkyCubeSamplesFaces(t *testing.T) {
	sky := CreateSolidColorSkyCube(mgl32.Vec3{}, mgl32.Vec3{})
	for i := range sky.Faces {
		sky.Faces[i] = NewTexture(2, 2)
		sky.Faces[i].Fill(mgl32.Vec4{float32(i) / 5, 0, 0, 1})
	}

	if !sky.Textured() {
		t.Fatal("Sky with faces should be textured")
	}
	got := sky.Sample(mgl32.Vec3{0, 0, -1})
	if got.X() != float32(FaceNegativeZ)/5 {
		t.Errorf("Expected the -Z face, got %v", got)
	}
}

func TestCreateSkyCubeRejectsWrongFaceCount(t *testing.T) {
	if _, err := CreateSkyCube(NewTextureManager(), []string{"a.png"}, mgl32.Vec3{}, mgl32.Vec3{}); err == nil {
		t.Error("Expected an error for a single face")
	}

	sky, err := CreateSkyCube(NewTextureManager(), nil, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{})
	if err != nil || sky.Textured() {
		t.Errorf("Empty face list should give a gradient sky, got %v", err)
	}
}
