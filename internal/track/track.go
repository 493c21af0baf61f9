// Package track holds the authored railway corridor and the follower that
// moves a train pose through it one tick at a time.
package track

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"train-simulator/internal/piecewise"
)

var (
	ErrNoSegments = errors.New("track: no segments")
	ErrBadStep    = errors.New("track: non-positive step")
	ErrRegressed  = errors.New("track: segment order regressed")
	ErrOffTrack   = errors.New("track: left the corridor before the terminal region")
	ErrNoArrival  = errors.New("track: terminal region not reached")
)

// Pose is a world position plus pitch/yaw/roll in degrees.
type Pose struct {
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Z     float32 `json:"z"`
	Pitch float32 `json:"pitch"`
	Yaw   float32 `json:"yaw"`
	Roll  float32 `json:"roll"`
}

func (p Pose) Position() mgl32.Vec3 {
	return mgl32.Vec3{p.X, p.Y, p.Z}
}

// Point projects the pose onto the axes predicates are written against.
func (p Pose) Point() piecewise.Point {
	return piecewise.Point{X: p.X, Y: p.Y, Z: p.Z, Yaw: p.Yaw}
}

// Heading is the unit direction of travel on the XZ plane for the pose's yaw.
// Yaw 0 runs toward -X and positive yaw turns the way mgl32.HomogRotate3DY
// does, so a model facing -X rotated by Yaw points along Heading.
func (p Pose) Heading() mgl32.Vec3 {
	r := float64(mgl32.DegToRad(p.Yaw))
	return mgl32.Vec3{-float32(math.Cos(r)), 0, float32(math.Sin(r))}
}

// Lerp blends from p toward to by t in [0, 1]. Yaw takes the short way
// around.
func (p Pose) Lerp(to Pose, t float32) Pose {
	mix := func(a, b float32) float32 { return a + (b-a)*t }
	dyaw := float32(math.Mod(float64(to.Yaw-p.Yaw)+540, 360) - 180)
	return Pose{
		X:     mix(p.X, to.X),
		Y:     mix(p.Y, to.Y),
		Z:     mix(p.Z, to.Z),
		Pitch: mix(p.Pitch, to.Pitch),
		Yaw:   p.Yaw + dyaw*t,
		Roll:  mix(p.Roll, to.Roll),
	}
}

// Direction says which way a Correction nudges its value.
type Direction string

const (
	Raise Direction = "raise"
	Lower Direction = "lower"
)

// Correction moves a value toward Target by a fixed Step each tick, but only
// from the side named by Dir. A value already past the target is left alone.
type Correction struct {
	Target float32   `json:"target"`
	Step   float32   `json:"step"`
	Dir    Direction `json:"dir"`
}

func RaiseTo(target, step float32) *Correction {
	return &Correction{Target: target, Step: step, Dir: Raise}
}

func LowerTo(target, step float32) *Correction {
	return &Correction{Target: target, Step: step, Dir: Lower}
}

// Apply returns v after one tick of correction. A nil correction is a no-op.
func (c *Correction) Apply(v float32) float32 {
	if c == nil {
		return v
	}
	switch c.Dir {
	case Raise:
		if v < c.Target {
			v += c.Step
		}
	case Lower:
		if v > c.Target {
			v -= c.Step
		}
	}
	return v
}

func (c *Correction) validate() error {
	if c == nil {
		return nil
	}
	if c.Step <= 0 {
		return fmt.Errorf("%w: %g", ErrBadStep, c.Step)
	}
	if c.Dir != Raise && c.Dir != Lower {
		return fmt.Errorf("track: unknown correction direction %q", c.Dir)
	}
	return nil
}

// Segment is one region of the corridor and the motion it imposes.
type Segment struct {
	Name   string              `json:"name"`
	Region piecewise.Predicate `json:"region"`
	DX     float32             `json:"dx"`
	DZ     float32             `json:"dz"`
	Weight float32             `json:"weight"`
	Height *Correction         `json:"height,omitempty"`
	Yaw    *Correction         `json:"yaw,omitempty"`
	Roll   *Correction         `json:"roll,omitempty"`
}

// Delta is the XZ displacement for one tick at the given speed.
func (s Segment) Delta(speed float32) (dx, dz float32) {
	return s.DX * s.Weight * speed, s.DZ * s.Weight * speed
}

// Track is a complete authored route.
type Track struct {
	Name          string                       `json:"name"`
	Start         Pose                         `json:"start"`
	Segments      []Segment                    `json:"segments"`
	Terminal      piecewise.Predicate          `json:"terminal"`
	DriverOffsets *piecewise.Table[mgl32.Vec3] `json:"driver_offsets,omitempty"`
}

// Table returns the segments as a first-match lookup table.
func (t *Track) Table() *piecewise.Table[Segment] {
	table := piecewise.NewTable[Segment]()
	for _, s := range t.Segments {
		table.Add(s.Name, s.Region, s)
	}
	return table
}

// InTerminal reports whether p lies in the arrival region.
func (t *Track) InTerminal(p Pose) bool {
	return len(t.Terminal) > 0 && t.Terminal.Matches(p.Point())
}

// DriverOffset returns the cab-relative eye offset for the pose's yaw.
func (t *Track) DriverOffset(p Pose) mgl32.Vec3 {
	if t.DriverOffsets == nil {
		return DefaultDriverOffset
	}
	return t.DriverOffsets.Value(p.Point(), DefaultDriverOffset)
}
