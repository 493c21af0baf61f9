// Package viewpoint places the camera for the three viewing modes.
package viewpoint

import (
	"github.com/go-gl/mathgl/mgl32"

	"train-simulator/internal/sim"
	"train-simulator/internal/track"
	"train-simulator/scene"
)

// Mode selects who owns the camera.
type Mode int

const (
	Free Mode = iota
	ThirdPerson
	Driver
)

func (m Mode) String() string {
	switch m {
	case ThirdPerson:
		return "third-person"
	case Driver:
		return "driver"
	}
	return "free"
}

var (
	// FreeStart is where the free camera begins.
	FreeStart = mgl32.Vec3{600, -50, 100}
	// ChaseOffset is the third-person eye relative to the train, in world axes.
	ChaseOffset = mgl32.Vec3{-15, 50, 100}
)

// LookAhead is how far down the line the cab view aims.
const LookAhead float32 = 50

// ModeFor maps a camera command to its mode.
func ModeFor(cmd sim.Command) (Mode, bool) {
	switch cmd {
	case sim.CameraDriver:
		return Driver, true
	case sim.CameraThirdPerson:
		return ThirdPerson, true
	case sim.CameraFree:
		return Free, true
	}
	return Free, false
}

// Rig remembers the free camera while a train-bound mode owns the view so
// switching back to free flight returns to where the user left it.
type Rig struct {
	mode  Mode
	saved *scene.Camera
}

func NewRig() *Rig { return &Rig{} }

func (r *Rig) Mode() Mode { return r.mode }

// SetMode switches modes. Leaving free mode stores cam; entering it restores
// the stored camera. It reports whether the mode changed.
func (r *Rig) SetMode(cam *scene.Camera, m Mode) bool {
	if m == r.mode {
		return false
	}
	if r.mode == Free {
		saved := *cam
		r.saved = &saved
	}
	if m == Free && r.saved != nil {
		*cam = *r.saved
		r.saved = nil
	}
	r.mode = m
	return true
}

// Place moves cam for the current mode. Free mode leaves it alone.
func (r *Rig) Place(cam *scene.Camera, pose track.Pose, t *track.Track) {
	switch r.mode {
	case Driver:
		eye, target := DriverView(pose, t)
		cam.LookAt(eye, target)
	case ThirdPerson:
		eye, target := ChaseView(pose)
		cam.LookAt(eye, target)
	}
}

// DriverView is the cab eye and its aim point. The offset comes from the
// track's driver table and turns with the train.
func DriverView(pose track.Pose, t *track.Track) (eye, target mgl32.Vec3) {
	offset := track.DefaultDriverOffset
	if t != nil {
		offset = t.DriverOffset(pose)
	}
	rot := mgl32.HomogRotate3DY(mgl32.DegToRad(pose.Yaw))
	eye = pose.Position().Add(mgl32.TransformNormal(offset, rot))
	target = eye.Add(pose.Heading().Mul(LookAhead))
	return eye, target
}

// ChaseView hangs the camera above and behind the train, looking at it.
func ChaseView(pose track.Pose) (eye, target mgl32.Vec3) {
	target = pose.Position()
	return target.Add(ChaseOffset), target
}
