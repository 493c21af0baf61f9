package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ShadowExtent is the half-width of the orthographic shadow frustum around
// its focus point.
const ShadowExtent float32 = 150

// LightDirection points from the lamp toward the world origin.
func LightDirection(lightPos mgl32.Vec3) mgl32.Vec3 {
	if lightPos.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return lightPos.Mul(-1).Normalize()
}

// LightSpaceMatrix is the orthographic view-projection for the shadow pass:
// a box of half-width extent centred on focus, seen along the lamp's
// direction.
func LightSpaceMatrix(lightPos, focus mgl32.Vec3, extent float32) mgl32.Mat4 {
	if extent <= 0 {
		extent = ShadowExtent
	}
	dir := LightDirection(lightPos)
	dist := 2 * extent
	eye := focus.Sub(dir.Mul(dist))

	up := mgl32.Vec3{0, 1, 0}
	if math.Abs(float64(dir.Dot(up))) > 0.99 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(eye, focus, up)
	proj := mgl32.Ortho(-extent, extent, -extent, extent, 1, dist+extent*2)
	return proj.Mul4(view)
}

// SkyViewProjection drops the view's translation so the sky cube stays
// centred on the eye.
func SkyViewProjection(view, proj mgl32.Mat4) mgl32.Mat4 {
	return proj.Mul4(view.Mat3().Mat4())
}
