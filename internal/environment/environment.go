// Package environment describes the day and night scene presets and blends
// between them when the operator switches.
package environment

import (
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
)

type Kind int

const (
	Day Kind = iota
	Night
)

func (k Kind) String() string {
	if k == Night {
		return "night"
	}
	return "day"
}

// Palette is everything the renderer needs to light a preset. The sky colours
// feed the procedural gradient used when cubemap faces are unavailable.
type Palette struct {
	Ambient    float32
	Diffuse    float32
	Specular   float32
	LightColor mgl32.Vec3
	Zenith     mgl32.Vec3
	Horizon    mgl32.Vec3
	Ground     mgl32.Vec3
}

// Preset is a named palette plus its six cubemap face paths, ordered
// +X, -X, +Y, -Y, +Z, -Z.
type Preset struct {
	Kind    Kind
	Palette Palette
	Faces   [6]string
}

var faceNames = [6]string{"right", "left", "top", "bottom", "front", "back"}

// Faces returns the cubemap face paths in dir with the given file suffix,
// e.g. "2" gives right2.jpg.
func Faces(dir, suffix string) [6]string {
	var out [6]string
	for i, name := range faceNames {
		out[i] = filepath.Join(dir, name+suffix+".jpg")
	}
	return out
}

// DayPreset is the default environment.
func DayPreset(dir string) Preset {
	return Preset{
		Kind: Day,
		Palette: Palette{
			Ambient:    0.1,
			Diffuse:    0.5,
			Specular:   0.5,
			LightColor: mgl32.Vec3{1, 1, 1},
			Zenith:     mgl32.Vec3{0.20, 0.42, 0.90},
			Horizon:    mgl32.Vec3{0.58, 0.75, 0.95},
			Ground:     mgl32.Vec3{0.12, 0.10, 0.08},
		},
		Faces: Faces(dir, ""),
	}
}

// NightPreset raises ambient and drops the direct terms so the scene reads
// as moonlit rather than black.
func NightPreset(dir string) Preset {
	return Preset{
		Kind: Night,
		Palette: Palette{
			Ambient:    0.5,
			Diffuse:    0.1,
			Specular:   0.1,
			LightColor: mgl32.Vec3{1, 1, 1},
			Zenith:     mgl32.Vec3{0.02, 0.03, 0.10},
			Horizon:    mgl32.Vec3{0.04, 0.04, 0.08},
			Ground:     mgl32.Vec3{0.01, 0.01, 0.02},
		},
		Faces: Faces(dir, "2"),
	}
}

// Presets returns both presets for dir indexed by Kind.
func Presets(dir string) [2]Preset {
	return [2]Preset{DayPreset(dir), NightPreset(dir)}
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func lerpVec(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Lerp blends two palettes; t is clamped to [0, 1].
func Lerp(a, b Palette, t float32) Palette {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return Palette{
		Ambient:    lerp(a.Ambient, b.Ambient, t),
		Diffuse:    lerp(a.Diffuse, b.Diffuse, t),
		Specular:   lerp(a.Specular, b.Specular, t),
		LightColor: lerpVec(a.LightColor, b.LightColor, t),
		Zenith:     lerpVec(a.Zenith, b.Zenith, t),
		Horizon:    lerpVec(a.Horizon, b.Horizon, t),
		Ground:     lerpVec(a.Ground, b.Ground, t),
	}
}
