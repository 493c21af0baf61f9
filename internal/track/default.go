package track

import (
	"github.com/go-gl/mathgl/mgl32"

	pw "train-simulator/internal/piecewise"
)

// StartPose is where the train sits at power-on and after a reset.
var StartPose = Pose{X: 400, Y: 100, Z: 100}

// DefaultDriverOffset is the cab eye position relative to the train origin
// on straight running.
var DefaultDriverOffset = mgl32.Vec3{0, 2, -9.5}

// DefaultDriverOffsets shifts the cab eye toward the outside of a curve so
// the windscreen pillar does not block the view. Offsets are in the train's
// local frame, before its yaw rotation.
func DefaultDriverOffsets() *pw.Table[mgl32.Vec3] {
	return pw.NewTable(
		pw.Rule[mgl32.Vec3]{Name: "hard-right", When: pw.Predicate{pw.Lt(pw.AxisYaw, -20)}, Value: mgl32.Vec3{-3.5, 2, -8.8}},
		pw.Rule[mgl32.Vec3]{Name: "right", When: pw.Predicate{pw.Lt(pw.AxisYaw, -5)}, Value: mgl32.Vec3{-1.5, 2, -9.4}},
		pw.Rule[mgl32.Vec3]{Name: "left", When: pw.Predicate{pw.Gt(pw.AxisYaw, 5)}, Value: mgl32.Vec3{1.5, 2, -9.4}},
		pw.Rule[mgl32.Vec3]{Name: "straight", Value: DefaultDriverOffset},
	)
}

// Default returns the compiled-in Bucuresti to Brasov route.
//
// Regions are open boxes on X and Z. Adjacent regions overlap slightly so a
// tick that overshoots a boundary at top speed still lands in the next one.
// The first segment ends at exactly x == 0, which belongs to neither box
// edge and hands over to the curve.
func Default() *Track {
	return &Track{
		Name:  "bucuresti-brasov",
		Start: StartPose,
		Segments: []Segment{
			{
				Name:   "bucuresti-platform",
				Region: pw.Box(0, 1000, 0, 200),
				DX:     -1,
				DZ:     0,
				Weight: 1,
			},
			{
				Name:   "ploiesti-curve",
				Region: pw.Box(-400, 10, -250, 200),
				DX:     -0.8,
				DZ:     -0.6,
				Weight: 1,
				Height: LowerTo(80, 0.05),
				Yaw:    LowerTo(-36.87, 0.15),
				Roll:   RaiseTo(3, 0.05),
			},
			{
				Name:   "prahova-straight",
				Region: pw.Box(-1200, -390, -260, -150),
				DX:     -1,
				DZ:     0,
				Weight: 1,
				Height: LowerTo(50, 0.05),
				Yaw:    RaiseTo(0, 0.15),
				Roll:   LowerTo(0, 0.05),
			},
			{
				Name:   "sinaia-climb",
				Region: pw.Box(-1600, -1190, -420, -150),
				DX:     -0.8,
				DZ:     -0.35,
				Weight: 1,
				Height: RaiseTo(65, 0.05),
				Yaw:    LowerTo(-23.63, 0.15),
			},
			{
				Name:   "predeal-pass",
				Region: pw.Box(-2200, -1590, -420, -150),
				DX:     -0.9,
				DZ:     0.2,
				Weight: 1,
				Height: LowerTo(55, 0.02),
				Yaw:    RaiseTo(12.53, 0.15),
			},
			{
				Name:   "timis-descent",
				Region: pw.Box(-3000, -2190, -420, -150),
				DX:     -1,
				DZ:     -0.15,
				Weight: 1,
				Yaw:    LowerTo(-8.53, 0.15),
			},
			{
				Name:   "brasov-approach",
				Region: pw.Box(-3080, -2990, -420, -150),
				DX:     -0.5,
				DZ:     0,
				Weight: 1,
				Yaw:    RaiseTo(0, 0.15),
			},
		},
		Terminal:      pw.Box(-3200, -3079, -420, -150),
		DriverOffsets: DefaultDriverOffsets(),
	}
}
