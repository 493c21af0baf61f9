package environment

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetStrengths(t *testing.T) {
	t.Parallel()

	day := DayPreset("textures")
	assert.Equal(t, Day, day.Kind)
	assert.InDelta(t, 0.1, day.Palette.Ambient, 1e-6)
	assert.InDelta(t, 0.5, day.Palette.Specular, 1e-6)
	assert.InDelta(t, 0.5, day.Palette.Diffuse, 1e-6)

	night := NightPreset("textures")
	assert.Equal(t, Night, night.Kind)
	assert.InDelta(t, 0.5, night.Palette.Ambient, 1e-6)
	assert.InDelta(t, 0.1, night.Palette.Specular, 1e-6)
	assert.InDelta(t, 0.1, night.Palette.Diffuse, 1e-6)
}

func TestFaces(t *testing.T) {
	t.Parallel()

	day := DayPreset("sky").Faces
	assert.Equal(t, filepath.Join("sky", "right.jpg"), day[0])
	assert.Equal(t, filepath.Join("sky", "back.jpg"), day[5])

	night := NightPreset("sky").Faces
	assert.Equal(t, filepath.Join("sky", "top2.jpg"), night[2])
	assert.Equal(t, filepath.Join("sky", "bottom2.jpg"), night[3])
}

func TestLerpClamps(t *testing.T) {
	t.Parallel()
	a := DayPreset("").Palette
	b := NightPreset("").Palette

	assert.Equal(t, a, Lerp(a, b, -1))
	assert.Equal(t, b, Lerp(a, b, 2))

	mid := Lerp(a, b, 0.5)
	assert.InDelta(t, 0.3, mid.Ambient, 1e-6)
	assert.InDelta(t, 0.3, mid.Diffuse, 1e-6)
	assertVecNear(t, mgl32.Vec3{0.11, 0.225, 0.5}, mid.Zenith, 1e-5)
}

func TestFaderBlendsOverDuration(t *testing.T) {
	t.Parallel()
	day, night := DayPreset(""), NightPreset("")
	f := NewFader(day, 1.5)

	require.True(t, f.Done())
	assert.Equal(t, day.Palette, f.Update(0.1))

	require.True(t, f.Switch(night))
	assert.False(t, f.Switch(night), "already heading to night")
	assert.Equal(t, Night, f.Target())
	assert.False(t, f.Done())

	p := f.Update(0.75)
	assert.InDelta(t, 0.3, p.Ambient, 1e-5, "halfway with symmetric easing")
	assert.False(t, f.Done())

	p = f.Update(1)
	assert.True(t, f.Done())
	assert.Equal(t, night.Palette, p)
	assert.Equal(t, night.Palette, f.Current())
}

func TestFaderReverseMidFade(t *testing.T) {
	t.Parallel()
	day, night := DayPreset(""), NightPreset("")
	f := NewFader(day, 1)

	f.Switch(night)
	mid := f.Update(0.5)
	require.True(t, f.Switch(day))

	// The reverse fade starts from the partially blended palette.
	p := f.Update(0)
	assert.InDelta(t, mid.Ambient, p.Ambient, 1e-6)

	p = f.Update(2)
	assert.Equal(t, day.Palette, p)
}

func TestDefaultDuration(t *testing.T) {
	t.Parallel()
	f := NewFader(DayPreset(""), 0)
	assert.Equal(t, DefaultFade, f.Duration)
	assert.Equal(t, "night", Night.String())
	assert.Equal(t, "day", Day.String())
}

func assertVecNear(t *testing.T, want, got mgl32.Vec3, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], delta, msgAndArgs...)
}
