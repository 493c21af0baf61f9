package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Movement is a free-camera translation direction.
type Movement int

const (
	Forward Movement = iota
	Backward
	Left
	Right
	Up
	Down
)

const (
	DefaultYaw         float32 = -90
	DefaultPitch       float32 = 0
	DefaultSpeed       float32 = 10
	DefaultSensitivity float32 = 0.2
	DefaultZoom        float32 = 45

	NearPlane float32 = 0.1
	FarPlane  float32 = 3000
)

// Camera is an Euler-angle fly camera. Yaw and pitch are degrees; Zoom is
// the vertical field of view in degrees.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3
	Right    mgl32.Vec3
	WorldUp  mgl32.Vec3

	Yaw   float32
	Pitch float32

	MovementSpeed    float32
	MouseSensitivity float32
	Zoom             float32
}

func NewCamera(position mgl32.Vec3) *Camera {
	c := &Camera{
		Position:         position,
		WorldUp:          mgl32.Vec3{0, 1, 0},
		Yaw:              DefaultYaw,
		Pitch:            DefaultPitch,
		MovementSpeed:    DefaultSpeed,
		MouseSensitivity: DefaultSensitivity,
		Zoom:             DefaultZoom,
	}
	c.updateVectors()
	return c
}

// ViewMatrix looks from Position along Front.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

// Projection returns the perspective matrix for the current zoom.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Zoom), aspect, NearPlane, FarPlane)
}

// ProcessKeyboard moves the camera for dt seconds.
func (c *Camera) ProcessKeyboard(dir Movement, dt float32) {
	velocity := c.MovementSpeed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Front.Mul(velocity))
	case Backward:
		c.Position = c.Position.Sub(c.Front.Mul(velocity))
	case Left:
		c.Position = c.Position.Sub(c.Right.Mul(velocity))
	case Right:
		c.Position = c.Position.Add(c.Right.Mul(velocity))
	case Up:
		c.Position = c.Position.Add(c.WorldUp.Mul(velocity))
	case Down:
		c.Position = c.Position.Sub(c.WorldUp.Mul(velocity))
	}
}

// ProcessMouseMovement turns the camera by a cursor delta in pixels.
// Positive dy looks up.
func (c *Camera) ProcessMouseMovement(dx, dy float32, constrainPitch bool) {
	c.Yaw += dx * c.MouseSensitivity
	c.Pitch += dy * c.MouseSensitivity
	if constrainPitch {
		c.Pitch = mgl32.Clamp(c.Pitch, -89, 89)
	}
	c.updateVectors()
}

// ProcessMouseScroll zooms; the field of view stays within [1, 45].
func (c *Camera) ProcessMouseScroll(dy float32) {
	c.Zoom = mgl32.Clamp(c.Zoom-dy, 1, 45)
}

// LookAt places the camera at eye facing target and updates yaw and pitch to
// match, so free flight can resume from a chase or cab view.
func (c *Camera) LookAt(eye, target mgl32.Vec3) {
	c.Position = eye
	dir := target.Sub(eye)
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	c.Pitch = mgl32.RadToDeg(float32(math.Asin(float64(mgl32.Clamp(dir.Y(), -1, 1)))))
	c.Yaw = mgl32.RadToDeg(float32(math.Atan2(float64(dir.Z()), float64(dir.X()))))
	c.updateVectors()
}

func (c *Camera) updateVectors() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	front := mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}
	c.Front = front.Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}
