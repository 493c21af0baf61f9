package scene

import "github.com/go-gl/mathgl/mgl32"

// Vertex is the interleaved layout uploaded to the GPU: position, normal, uv.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name         string
	Vertices     []Vertex
	Indices      []uint32
	MaterialName string

	// Cached local-space AABB (computed by NewMeshFromData).
	Bounds AABB

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *Material

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	GPUData interface{}
}

// NewMeshFromData builds a Mesh and pre-computes its local-space AABB.
// A nil index slice draws the vertices in order.
func NewMeshFromData(name string, vertices []Vertex, indices []uint32) *Mesh {
	if indices == nil {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	if len(vertices) > 0 {
		m.Bounds = computeBounds(vertices)
	}
	return m
}

func computeBounds(vertices []Vertex) AABB {
	lo := vertices[0].Position
	hi := vertices[0].Position
	for _, v := range vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < lo[i] {
				lo[i] = v.Position[i]
			}
			if v.Position[i] > hi[i] {
				hi[i] = v.Position[i]
			}
		}
	}
	return AABB{Min: lo, Max: hi}
}

// TransformMesh bakes m into a copy of mesh: positions by m, normals by its
// inverse transpose.
func TransformMesh(mesh *Mesh, m mgl32.Mat4) *Mesh {
	normalMat := m.Mat3().Inv().Transpose()
	verts := make([]Vertex, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		verts[i] = Vertex{
			Position: mgl32.TransformCoordinate(v.Position, m),
			Normal:   normalMat.Mul3x1(v.Normal).Normalize(),
			UV:       v.UV,
		}
	}
	out := NewMeshFromData(mesh.Name, verts, append([]uint32(nil), mesh.Indices...))
	out.Material = mesh.Material
	out.MaterialName = mesh.MaterialName
	return out
}

// NewBox returns a cube of the given edge length centred on the origin with
// per-face normals. It stands in for models whose files are missing and
// draws the light marker.
func NewBox(name string, size float32) *Mesh {
	s := size / 2
	faces := []struct {
		n      mgl32.Vec3
		corner [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{s, -s, -s}, {-s, -s, -s}, {-s, s, -s}, {s, s, -s}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-s, s, s}, {s, s, s}, {s, s, -s}, {-s, s, -s}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-s, -s, -s}, {s, -s, -s}, {s, -s, s}, {-s, -s, s}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{s, -s, s}, {s, -s, -s}, {s, s, -s}, {s, s, s}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-s, -s, -s}, {-s, -s, s}, {-s, s, s}, {-s, s, -s}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, p := range f.corner {
			vertices = append(vertices, Vertex{Position: p, Normal: f.n, UV: uvs[i]})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return NewMeshFromData(name, vertices, indices)
}
