package scene

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExhaustInactiveSpawnsNothing(t *testing.T) {
	t.Parallel()
	e := NewExhaustEmitter(64, 1)
	e.Update(1)
	assert.Zero(t, e.Count())
}

func TestExhaustSpawnRateAndPool(t *testing.T) {
	t.Parallel()
	e := NewExhaustEmitter(64, 1)
	e.Active = true
	e.Update(1)
	assert.Equal(t, 12, e.Count())

	small := NewExhaustEmitter(5, 1)
	small.Active = true
	small.Update(1)
	assert.Equal(t, 5, small.Count())
}

func TestExhaustPuffsRiseFadeAndDie(t *testing.T) {
	t.Parallel()
	e := NewExhaustEmitter(64, 7)
	e.Position = mgl32.Vec3{0, 10, 0}
	e.Active = true
	e.Update(0.5)
	require.NotZero(t, e.Count())

	e.Active = false
	e.Update(0.5)
	for _, p := range e.Particles {
		assert.Greater(t, p.Position.Y(), float32(10))
		assert.Less(t, p.Color.W(), e.StartColor.W())
		assert.Greater(t, p.Size, e.MinSize)
	}

	e.Update(e.MaxLife)
	assert.Zero(t, e.Count())
}

func TestRandomInCone(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	axis := mgl32.Vec3{0, 1, 0}
	minDot := float32(math.Cos(0.35)) - 1e-4
	for i := 0; i < 200; i++ {
		d := randomInCone(axis, 0.35, rng)
		assert.InDelta(t, 1, d.Len(), 1e-4)
		assert.GreaterOrEqual(t, d.Dot(axis), minDot)
	}
}

func TestBillboardVertices(t *testing.T) {
	t.Parallel()
	ps := []Particle{{Position: mgl32.Vec3{1, 2, 3}, Size: 0.5, Color: mgl32.Vec4{1, 0, 0, 1}}}
	buf := BillboardVertices(ps, mgl32.Ident4(), nil)
	require.Len(t, buf, 6*BillboardFloats)

	// top-left corner first
	assert.Equal(t, []float32{0.5, 2.5, 3, 0, 1, 1, 0, 0, 1}, buf[:BillboardFloats])
	// bottom-left last
	assert.Equal(t, []float32{0.5, 1.5, 3, 0, 0}, buf[5*BillboardFloats:5*BillboardFloats+5])

	assert.Empty(t, BillboardVertices(nil, mgl32.Ident4(), buf))
}

func TestAttachExhaust(t *testing.T) {
	t.Parallel()
	e := NewExhaustEmitter(8, 1)
	AttachExhaust(e, Placement{Position: mgl32.Vec3{400, 100, 100}, Scale: TrainScale}, true, 2)

	assert.True(t, e.Active)
	assert.InDelta(t, 16, e.Rate, 1e-6)
	assert.InDelta(t, 394, e.Position.X(), 1e-3)
	assert.InDelta(t, 104.2, e.Position.Y(), 1e-3)
	assert.InDelta(t, 100, e.Position.Z(), 1e-3)

	AttachExhaust(e, Placement{Scale: TrainScale}, false, 1)
	assert.False(t, e.Active)
}

func TestLightSpaceMatrix(t *testing.T) {
	t.Parallel()
	dir := LightDirection(LightPos)
	assert.InDelta(t, 1, dir.Len(), 1e-5)
	assert.Less(t, dir.Y(), float32(0))
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, LightDirection(mgl32.Vec3{}))

	focus := mgl32.Vec3{400, 100, 100}
	m := LightSpaceMatrix(LightPos, focus, 100)
	c := mgl32.TransformCoordinate(focus, m)
	assert.InDelta(t, 0, c.X(), 1e-3)
	assert.InDelta(t, 0, c.Y(), 1e-3)
	assert.Greater(t, c.Z(), float32(-1))
	assert.Less(t, c.Z(), float32(1))

	// Nearer the lamp means shallower depth.
	nearer := mgl32.TransformCoordinate(focus.Sub(dir.Mul(20)), m)
	assert.Less(t, nearer.Z(), c.Z())

	// A lamp straight overhead still gives a usable matrix.
	overhead := LightSpaceMatrix(mgl32.Vec3{0, 50, 0}, focus, 0)
	o := mgl32.TransformCoordinate(focus, overhead)
	assert.InDelta(t, 0, o.X(), 1e-3)
	assert.InDelta(t, 0, o.Y(), 1e-3)
}

func TestSkyViewProjectionDropsTranslation(t *testing.T) {
	t.Parallel()
	proj := mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, NearPlane, FarPlane)
	view := mgl32.Translate3D(10, -20, 30)
	got := SkyViewProjection(view, proj)
	assert.InDeltaSlice(t, proj[:], got[:], 1e-6)
}
