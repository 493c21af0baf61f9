package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Model is a set of meshes loaded from one file plus the textures they need
// uploaded.
type Model struct {
	Name        string
	Meshes      []*Mesh
	Textures    []*Texture
	Bounds      AABB
	Placeholder bool
}

// LoadModel loads a Wavefront .obj or a glTF .gltf/.glb file.
func LoadModel(path string) (*Model, error) {
	var (
		meshes   []*Mesh
		textures []*Texture
		err      error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		meshes, err = LoadOBJ(path)
		textures = materialTextures(meshes)
	case ".gltf", ".glb":
		meshes, textures, err = LoadGLTF(path)
	default:
		return nil, fmt.Errorf("model %q: unsupported format", path)
	}
	if err != nil {
		return nil, err
	}
	return NewModel(filepath.Base(path), meshes, textures), nil
}

func NewModel(name string, meshes []*Mesh, textures []*Texture) *Model {
	m := &Model{Name: name, Meshes: meshes, Textures: textures}
	for i, mesh := range meshes {
		if i == 0 {
			m.Bounds = mesh.Bounds
			continue
		}
		m.Bounds = m.Bounds.Union(mesh.Bounds)
	}
	return m
}

// PlaceholderModel is a single coloured mesh standing in for a model that
// failed to load.
func PlaceholderModel(mesh *Mesh, color mgl32.Vec3) *Model {
	mesh.Material = NewMaterial(mesh.Name, color)
	m := NewModel(mesh.Name, []*Mesh{mesh}, nil)
	m.Placeholder = true
	return m
}

func materialTextures(meshes []*Mesh) []*Texture {
	seen := map[*Texture]bool{}
	var out []*Texture
	for _, m := range meshes {
		if m.Material == nil || m.Material.DiffuseTexture == nil {
			continue
		}
		if t := m.Material.DiffuseTexture; !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// Placement positions a model: translate, uniform scale, then yaw about Y
// and roll about Z, both in degrees.
type Placement struct {
	Position mgl32.Vec3
	Scale    float32
	Yaw      float32
	Roll     float32
}

// Matrix returns T * S * Ry * Rz.
func (p Placement) Matrix() mgl32.Mat4 {
	s := p.Scale
	if s == 0 {
		s = 1
	}
	return mgl32.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z()).
		Mul4(mgl32.Scale3D(s, s, s)).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(p.Yaw))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(p.Roll)))
}
