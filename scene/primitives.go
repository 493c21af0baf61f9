package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// NewSphere generates a UV sphere centred on the origin.
func NewSphere(name string, radius float32, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	vertices := make([]Vertex, 0, (rings+1)*(segments+1))
	indices := make([]uint32, 0, rings*segments*6)

	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * math.Pi / float64(rings)
		sinPhi := float32(math.Sin(phi))
		cosPhi := float32(math.Cos(phi))

		for seg := 0; seg <= segments; seg++ {
			theta := float64(seg) * 2 * math.Pi / float64(segments)
			normal := mgl32.Vec3{
				sinPhi * float32(math.Cos(theta)),
				cosPhi,
				sinPhi * float32(math.Sin(theta)),
			}
			vertices = append(vertices, Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       mgl32.Vec2{float32(seg) / float32(segments), float32(ring) / float32(rings)},
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)

			indices = append(indices, current, next, current+1)
			indices = append(indices, current+1, next, next+1)
		}
	}

	return NewMeshFromData(name, vertices, indices)
}

// NewPlane generates a flat, upward-facing grid in XZ centred on the origin.
func NewPlane(name string, width, depth float32, subdivisions int) *Mesh {
	if subdivisions < 1 {
		subdivisions = 1
	}

	n := subdivisions + 1
	vertices := make([]Vertex, 0, n*n)
	indices := make([]uint32, 0, subdivisions*subdivisions*6)

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)
			vertices = append(vertices, Vertex{
				Position: mgl32.Vec3{-width/2 + u*width, 0, -depth/2 + v*depth},
				Normal:   mgl32.Vec3{0, 1, 0},
				UV:       mgl32.Vec2{u, v},
			})
		}
	}

	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z*n + x)
			topRight := topLeft + 1
			bottomLeft := topLeft + uint32(n)
			bottomRight := bottomLeft + 1

			indices = append(indices, topLeft, bottomLeft, topRight)
			indices = append(indices, topRight, bottomLeft, bottomRight)
		}
	}

	return NewMeshFromData(name, vertices, indices)
}
