package track

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"train-simulator/internal/piecewise"
)

// A point strictly inside each default segment and outside every earlier one.
var segmentProbes = []struct {
	name  string
	index int
	x, z  float32
}{
	{"bucuresti-platform", 0, 500, 100},
	{"ploiesti-curve", 1, -200, 0},
	{"prahova-straight", 2, -800, -200},
	{"sinaia-climb", 3, -1400, -300},
	{"predeal-pass", 4, -1900, -300},
	{"timis-descent", 5, -2600, -300},
	{"brasov-approach", 6, -3040, -300},
}

func TestStepAppliesExactDelta(t *testing.T) {
	t.Parallel()
	tr := Default()
	f := NewFollower(tr)

	for _, probe := range segmentProbes {
		for _, speed := range []float32{0.25, 1, 2.5, 5.5} {
			start := Pose{X: probe.x, Y: 70, Z: probe.z, Yaw: 10}
			next, step := f.Step(start, speed)

			require.Equal(t, Advanced, step.Result, probe.name)
			assert.Equal(t, probe.index, step.Index, probe.name)
			assert.Equal(t, probe.name, step.Segment)

			seg := tr.Segments[probe.index]
			assert.InDelta(t, seg.DX*seg.Weight*speed, next.X-start.X, 1e-3, "%s dx at %g", probe.name, speed)
			assert.InDelta(t, seg.DZ*seg.Weight*speed, next.Z-start.Z, 1e-3, "%s dz at %g", probe.name, speed)
		}
	}
}

func TestStepMonotoneInSpeed(t *testing.T) {
	t.Parallel()
	f := NewFollower(Default())

	for _, probe := range segmentProbes {
		start := Pose{X: probe.x, Y: 70, Z: probe.z}
		prev := float32(0)
		for _, speed := range []float32{0.5, 1, 1.5, 3, 5.5} {
			next, _ := f.Step(start, speed)
			d := next.Position().Sub(start.Position())
			mag := mgl32.Vec2{d.X(), d.Z()}.Len()
			assert.Greater(t, mag, prev, "%s at %g", probe.name, speed)
			prev = mag
		}
	}
}

func TestStepOutsideCorridor(t *testing.T) {
	t.Parallel()
	f := NewFollower(Default())

	t.Run("terminal region arrives", func(t *testing.T) {
		p := Pose{X: -3100, Y: 55, Z: -300, Yaw: 1}
		next, step := f.Step(p, 1)
		assert.Equal(t, Arrived, step.Result)
		assert.Equal(t, -1, step.Index)
		assert.Empty(t, step.Segment)
		assert.Equal(t, p, next)
	})

	t.Run("elsewhere is off track", func(t *testing.T) {
		p := Pose{X: 5000, Y: 100, Z: 5000}
		next, step := f.Step(p, 1)
		assert.Equal(t, OffTrack, step.Result)
		assert.Equal(t, p, next)
	})
}

func TestBoundaryFallsThrough(t *testing.T) {
	t.Parallel()
	f := NewFollower(Default())

	// x == 0 is the open edge of the platform box and inside the curve.
	_, idx, ok := f.Locate(Pose{X: 0, Z: 100})
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	// x == -1200 leaves the straight and belongs to the climb.
	_, idx, ok = f.Locate(Pose{X: -1200, Z: -200})
	require.True(t, ok)
	assert.Equal(t, 3, idx)

	// Just inside the platform edge still belongs to the platform.
	_, idx, ok = f.Locate(Pose{X: 0.5, Z: 100})
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestCorrectionGating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    *Correction
		in   float32
		want float32
	}{
		{"raise below target", RaiseTo(10, 0.5), 9, 9.5},
		{"raise at target", RaiseTo(10, 0.5), 10, 10},
		{"raise above target", RaiseTo(10, 0.5), 12, 12},
		{"lower above target", LowerTo(10, 0.5), 11, 10.5},
		{"lower below target", LowerTo(10, 0.5), 8, 8},
		{"nil", nil, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.c.Apply(tt.in), 1e-6)
		})
	}
}

func TestDefaultRunTerminates(t *testing.T) {
	t.Parallel()
	f := NewFollower(Default())

	ticks, err := f.Run(1, MaxValidateTicks)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ticks, 3700)
	assert.LessOrEqual(t, ticks, 4000)

	fast, err := f.Run(5.5, MaxValidateTicks)
	require.NoError(t, err)
	assert.Less(t, fast, ticks)
}

func TestDefaultValidates(t *testing.T) {
	t.Parallel()
	require.NoError(t, Default().Validate(1, 2, 3.5, 4, 5.5))
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	t.Run("no segments", func(t *testing.T) {
		tr := &Track{Name: "empty"}
		assert.ErrorIs(t, tr.Validate(1), ErrNoSegments)
	})

	t.Run("bad correction step", func(t *testing.T) {
		tr := Default()
		tr.Segments[1].Yaw = RaiseTo(30, 0)
		assert.ErrorIs(t, tr.Validate(1), ErrBadStep)
	})

	t.Run("bad weight", func(t *testing.T) {
		tr := Default()
		tr.Segments[0].Weight = 0
		assert.ErrorIs(t, tr.Validate(1), ErrBadStep)
	})

	t.Run("regression", func(t *testing.T) {
		tr := &Track{
			Start: Pose{X: 5.5, Z: 0},
			Segments: []Segment{
				{Name: "back", Region: piecewise.Box(10, 20, -1, 1), DX: 1, Weight: 1},
				{Name: "forward", Region: piecewise.Box(0, 10, -1, 1), DX: 1, Weight: 1},
			},
			Terminal: piecewise.Box(20, 30, -1, 1),
		}
		assert.ErrorIs(t, tr.Validate(1), ErrRegressed)
	})

	t.Run("leaves corridor", func(t *testing.T) {
		tr := Default()
		tr.Terminal = piecewise.Box(1e6, 2e6, 0, 1)
		assert.ErrorIs(t, tr.Validate(1), ErrOffTrack)
	})

	t.Run("stalls", func(t *testing.T) {
		tr := Default()
		tr.Segments[0].DX = 0
		assert.ErrorIs(t, tr.Validate(1), ErrNoArrival)
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "route.json")

	require.NoError(t, Save(path, Default()))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bucuresti-brasov", loaded.Name)
	assert.Equal(t, StartPose, loaded.Start)
	require.Len(t, loaded.Segments, len(Default().Segments))
	assert.Equal(t, Default().Segments[1], loaded.Segments[1])

	ticks, err := NewFollower(loaded).Run(1, MaxValidateTicks)
	require.NoError(t, err)
	want, _ := NewFollower(Default()).Run(1, MaxValidateTicks)
	assert.Equal(t, want, ticks)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, Save(path, &Track{Name: "empty"}))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrNoSegments)
}

func TestDriverOffset(t *testing.T) {
	t.Parallel()
	tr := Default()

	assert.Equal(t, DefaultDriverOffset, tr.DriverOffset(Pose{Yaw: 0}))
	assert.Equal(t, mgl32.Vec3{-3.5, 2, -8.8}, tr.DriverOffset(Pose{Yaw: -36}))
	assert.Equal(t, mgl32.Vec3{-1.5, 2, -9.4}, tr.DriverOffset(Pose{Yaw: -8}))
	assert.Equal(t, mgl32.Vec3{1.5, 2, -9.4}, tr.DriverOffset(Pose{Yaw: 12}))
	// Exactly on the threshold falls through to the next band.
	assert.Equal(t, mgl32.Vec3{-1.5, 2, -9.4}, tr.DriverOffset(Pose{Yaw: -20}))

	tr.DriverOffsets = nil
	assert.Equal(t, DefaultDriverOffset, tr.DriverOffset(Pose{Yaw: -36}))
}

func TestPoseLerp(t *testing.T) {
	t.Parallel()
	a := Pose{X: 0, Y: 10, Z: -4, Pitch: 2, Yaw: 10}
	b := Pose{X: 8, Y: 12, Z: 4, Pitch: 4, Yaw: 30, Roll: 1}

	assert.Equal(t, a, a.Lerp(b, 0))
	mid := a.Lerp(b, 0.5)
	assert.InDelta(t, 4, mid.X, 1e-6)
	assert.InDelta(t, 11, mid.Y, 1e-6)
	assert.InDelta(t, 0, mid.Z, 1e-6)
	assert.InDelta(t, 3, mid.Pitch, 1e-6)
	assert.InDelta(t, 20, mid.Yaw, 1e-4)
	assert.InDelta(t, 0.5, mid.Roll, 1e-6)

	// Across the ±180 seam yaw goes the short way.
	wrap := Pose{Yaw: 170}.Lerp(Pose{Yaw: -170}, 0.5)
	assert.InDelta(t, 180, wrap.Yaw, 1e-4)
}

func TestHeading(t *testing.T) {
	t.Parallel()
	h := Pose{Yaw: -36.87}.Heading()
	assert.InDelta(t, -0.8, h.X(), 1e-3)
	assert.InDelta(t, -0.6, h.Z(), 1e-3)
	assert.InDelta(t, -1, Pose{}.Heading().X(), 1e-6)

	// Heading agrees with rotating a -X facing model by the yaw.
	yaw := float32(23.63)
	rotated := mgl32.HomogRotate3DY(mgl32.DegToRad(yaw)).Mul4x1(mgl32.Vec4{-1, 0, 0, 0}).Vec3()
	assertVecNear(t, Pose{Yaw: yaw}.Heading(), rotated, 1e-5)

	// Each curve's yaw target points along its delta.
	for _, seg := range Default().Segments {
		if seg.Yaw == nil || seg.Yaw.Target == 0 {
			continue
		}
		want := mgl32.Vec3{seg.DX, 0, seg.DZ}.Normalize()
		got := Pose{Yaw: seg.Yaw.Target}.Heading()
		assertVecNear(t, got, want, 1e-3, seg.Name)
	}
}

// assertVecNear compares component-wise with an absolute tolerance, so
// float noise around zero components does not fail the check.
func assertVecNear(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], delta, msgAndArgs...)
}
