package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCull(t *testing.T) {
	t.Parallel()
	cam := NewCamera(mgl32.Vec3{0, 0, 10})
	vp := cam.Projection(16.0 / 9.0).Mul4(cam.ViewMatrix())

	box := NewModel("box", []*Mesh{NewBox("box", 2)}, nil)
	items := []Item{
		{Name: "ahead", Model: box, Matrix: mgl32.Ident4()},
		{Name: "behind", Model: box, Matrix: mgl32.Translate3D(0, 0, 100)},
		{Name: "empty"},
	}

	visible, stats := Cull(items, vp)
	require.Len(t, visible, 1)
	assert.Equal(t, "ahead", visible[0].Name)
	assert.Equal(t, DrawStats{Objects: 1, Vertices: 24, Triangles: 12, Culled: 1}, stats)
}

func TestWorldItemsAndShadowCasters(t *testing.T) {
	t.Parallel()
	w, warnings := LoadWorld(WorldPaths{})
	require.Len(t, warnings, 4)

	items := w.Items()
	require.Len(t, items, 5)
	assert.Equal(t, "train", items[0].Name)
	assert.Equal(t, "lamp", items[4].Name)
	want := w.Train.Matrix()
	assert.InDeltaSlice(t, want[:], items[0].Matrix[:], 1e-5)

	var names []string
	for _, it := range ShadowCasters(items) {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"train", "bucuresti", "brasov"}, names)
}
