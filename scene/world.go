package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"train-simulator/internal/track"
)

const TrainScale float32 = 0.3

// LightPos is the point light and lamp marker position.
var LightPos = mgl32.Vec3{-10, 25, 10}

// WorldPaths names the model files for the fixed objects.
type WorldPaths struct {
	Train     string
	Terrain   string
	Bucuresti string
	Brasov    string
}

// Object is one placed model.
type Object struct {
	Name        string
	Model       *Model
	Placement   Placement
	CastsShadow bool
}

func (o *Object) Matrix() mgl32.Mat4 { return o.Placement.Matrix() }

// Bounds is the object's world-space AABB.
func (o *Object) Bounds() AABB { return o.Model.Bounds.Transform(o.Matrix()) }

// World is the train, the static scenery and the lamp marker.
type World struct {
	Train    *Object
	Static   []*Object
	Lamp     *Object
	LightPos mgl32.Vec3
}

type worldSlot struct {
	name        string
	path        string
	placement   Placement
	placeholder float32
	flat        bool
	color       mgl32.Vec3
}

func (s worldSlot) placeholderMesh() *Mesh {
	if s.flat {
		return NewPlane(s.name, s.placeholder, s.placeholder, 8)
	}
	return NewBox(s.name, s.placeholder)
}

// LoadWorld loads every model and lays out the scene. A model that fails to
// load is replaced by a coloured box and its error returned in warnings; the
// world itself is always usable.
func LoadWorld(paths WorldPaths) (*World, []error) {
	var warnings []error
	load := func(s worldSlot) *Object {
		obj := &Object{Name: s.name, Placement: s.placement, CastsShadow: true}
		m, err := LoadModel(s.path)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", s.name, err))
			m = PlaceholderModel(s.placeholderMesh(), s.color)
		}
		obj.Model = m
		return obj
	}

	w := &World{LightPos: LightPos}
	w.Train = load(worldSlot{
		name:        "train",
		path:        paths.Train,
		placement:   Placement{Scale: TrainScale},
		placeholder: 30,
		color:       mgl32.Vec3{0.8, 0.1, 0.1},
	})
	w.Static = []*Object{
		load(worldSlot{
			name:        "terrain",
			path:        paths.Terrain,
			placement:   Placement{Position: mgl32.Vec3{-80, -350, 1000}, Scale: 250},
			placeholder: 16,
			flat:        true,
			color:       mgl32.Vec3{0.3, 0.5, 0.2},
		}),
		load(worldSlot{
			name:        "bucuresti",
			path:        paths.Bucuresti,
			placement:   Placement{Position: mgl32.Vec3{800, -280, -935}, Scale: 100},
			placeholder: 1,
			color:       mgl32.Vec3{0.6, 0.6, 0.65},
		}),
		load(worldSlot{
			name:        "brasov",
			path:        paths.Brasov,
			placement:   Placement{Position: mgl32.Vec3{-3105, -225, -375}, Scale: 25, Yaw: -50},
			placeholder: 4,
			color:       mgl32.Vec3{0.65, 0.55, 0.45},
		}),
	}
	// Terrain receives shadows but is too large to cast useful ones.
	w.Static[0].CastsShadow = false

	lamp := NewSphere("lamp", 0.5, 16, 8)
	lamp.Material = NewMaterial("lamp", mgl32.Vec3{1, 1, 1})
	lamp.Material.Unlit = true
	w.Lamp = &Object{
		Name:      "lamp",
		Model:     NewModel("lamp", []*Mesh{lamp}, nil),
		Placement: Placement{Position: LightPos, Scale: 10},
	}
	return w, warnings
}

// PlaceTrain moves the train model to pose.
func (w *World) PlaceTrain(p track.Pose) {
	w.Train.Placement = TrainPlacement(p)
}

// TrainPlacement maps a train pose to its model placement.
func TrainPlacement(p track.Pose) Placement {
	return Placement{
		Position: p.Position(),
		Scale:    TrainScale,
		Yaw:      p.Yaw,
		Roll:     p.Roll,
	}
}

// Objects lists everything to draw, train first.
func (w *World) Objects() []*Object {
	out := make([]*Object, 0, len(w.Static)+2)
	out = append(out, w.Train)
	out = append(out, w.Static...)
	return append(out, w.Lamp)
}

// Models lists each distinct model once, for GPU upload.
func (w *World) Models() []*Model {
	seen := map[*Model]bool{}
	var out []*Model
	for _, o := range w.Objects() {
		if !seen[o.Model] {
			seen[o.Model] = true
			out = append(out, o.Model)
		}
	}
	return out
}
