package scene

import "github.com/go-gl/mathgl/mgl32"

// Item is one model instance submitted for a frame.
type Item struct {
	Name        string
	Model       *Model
	Matrix      mgl32.Mat4
	CastsShadow bool
}

// Bounds is the item's world-space AABB.
func (it Item) Bounds() AABB { return it.Model.Bounds.Transform(it.Matrix) }

// Items lists every object with its current matrix, train first.
func (w *World) Items() []Item {
	objs := w.Objects()
	out := make([]Item, 0, len(objs))
	for _, o := range objs {
		out = append(out, Item{
			Name:        o.Name,
			Model:       o.Model,
			Matrix:      o.Matrix(),
			CastsShadow: o.CastsShadow,
		})
	}
	return out
}

// DrawStats counts what one frame drew.
type DrawStats struct {
	Objects   int
	Vertices  int
	Triangles int
	Culled    int
}

// Cull keeps the items whose bounds touch the frustum of vp and totals what
// they will draw.
func Cull(items []Item, vp mgl32.Mat4) ([]Item, DrawStats) {
	f := FrustumFromVP(vp)
	var stats DrawStats
	visible := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Model == nil {
			continue
		}
		b := it.Bounds()
		if !b.IntersectsFrustum(&f) {
			stats.Culled++
			continue
		}
		visible = append(visible, it)
		stats.Objects++
		for _, m := range it.Model.Meshes {
			stats.Vertices += len(m.Vertices)
			stats.Triangles += len(m.Indices) / 3
		}
	}
	return visible, stats
}

// ShadowCasters filters items to those that cast shadows.
func ShadowCasters(items []Item) []Item {
	var out []Item
	for _, it := range items {
		if it.CastsShadow && it.Model != nil {
			out = append(out, it)
		}
	}
	return out
}
