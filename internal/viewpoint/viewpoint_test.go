package viewpoint

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"train-simulator/internal/sim"
	"train-simulator/internal/track"
	"train-simulator/scene"
)

func TestModeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		cmd  sim.Command
		want Mode
		ok   bool
	}{
		{sim.CameraDriver, Driver, true},
		{sim.CameraThirdPerson, ThirdPerson, true},
		{sim.CameraFree, Free, true},
		{sim.Start, Free, false},
	}
	for _, tt := range tests {
		got, ok := ModeFor(tt.cmd)
		assert.Equal(t, tt.ok, ok, tt.cmd.String())
		assert.Equal(t, tt.want, got, tt.cmd.String())
	}
	assert.Equal(t, "third-person", ThirdPerson.String())
}

func TestDriverViewStraight(t *testing.T) {
	t.Parallel()
	eye, target := DriverView(track.StartPose, track.Default())

	assertVecNear(t, mgl32.Vec3{400, 102, 90.5}, eye, 1e-4)
	assertVecNear(t, mgl32.Vec3{-LookAhead, 0, 0}, target.Sub(eye), 1e-3)
}

func TestDriverViewTurnsWithTrain(t *testing.T) {
	t.Parallel()
	pose := track.Pose{X: -200, Y: 90, Z: 0, Yaw: -36.87}
	tr := track.Default()
	eye, target := DriverView(pose, tr)

	offset := eye.Sub(pose.Position())
	local := tr.DriverOffset(pose)
	assert.InDelta(t, local.Len(), offset.Len(), 1e-4)
	assert.InDelta(t, local.Y(), offset.Y(), 1e-5)

	aim := target.Sub(eye).Normalize()
	assertVecNear(t, pose.Heading(), aim, 1e-4)
}

func TestDriverViewNilTrack(t *testing.T) {
	t.Parallel()
	eye, _ := DriverView(track.StartPose, nil)
	assertVecNear(t, track.StartPose.Position().Add(track.DefaultDriverOffset), eye, 1e-4)
}

func TestChaseView(t *testing.T) {
	t.Parallel()
	eye, target := ChaseView(track.StartPose)
	assert.Equal(t, mgl32.Vec3{385, 150, 200}, eye)
	assert.Equal(t, track.StartPose.Position(), target)
}

func TestRigPlace(t *testing.T) {
	t.Parallel()
	cam := scene.NewCamera(FreeStart)
	rig := NewRig()
	tr := track.Default()

	rig.Place(cam, track.StartPose, tr)
	assert.Equal(t, FreeStart, cam.Position, "free mode does not move the camera")

	assert.True(t, rig.SetMode(cam, ThirdPerson))
	rig.Place(cam, track.StartPose, tr)
	assert.Equal(t, mgl32.Vec3{385, 150, 200}, cam.Position)
	toTrain := track.StartPose.Position().Sub(cam.Position).Normalize()
	assertVecNear(t, toTrain, cam.Front, 1e-4)

	assert.True(t, rig.SetMode(cam, Driver))
	rig.Place(cam, track.StartPose, tr)
	assert.InDelta(t, 102, cam.Position.Y(), 1e-4)

	assert.False(t, rig.SetMode(cam, Driver))
	assert.True(t, rig.SetMode(cam, Free))
	assert.Equal(t, FreeStart, cam.Position, "free camera restored")
	assert.Equal(t, Free, rig.Mode())
}

func assertVecNear(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], delta, msgAndArgs...)
}
