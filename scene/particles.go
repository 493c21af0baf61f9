package scene

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Particle is one live exhaust puff.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Life     float32 // remaining seconds
	MaxLife  float32
	Size     float32 // billboard half-size
	Color    mgl32.Vec4
}

// Emitter spawns and integrates CPU particles. The renderer draws them as
// camera-facing billboards with alpha blending.
type Emitter struct {
	Position  mgl32.Vec3
	Direction mgl32.Vec3 // unit mean emission direction
	Spread    float32    // cone half-angle, radians

	Rate float32 // particles per second

	MinLife, MaxLife   float32
	MinSpeed, MaxSpeed float32
	MinSize, MaxSize   float32

	StartColor mgl32.Vec4
	EndColor   mgl32.Vec4

	// Gravity is a constant acceleration; Wind is added to every particle's
	// velocity without accumulating.
	Gravity mgl32.Vec3
	Wind    mgl32.Vec3

	// Inactive emitters spawn nothing; live particles finish out.
	Active bool

	Particles []Particle

	pool       int
	spawnAccum float32
	rng        *rand.Rand
}

// NewExhaustEmitter is the locomotive's diesel plume: grey puffs that rise,
// grow and fade.
func NewExhaustEmitter(maxParticles int, seed int64) *Emitter {
	return &Emitter{
		Direction:  mgl32.Vec3{0, 1, 0},
		Spread:     0.35,
		Rate:       12,
		MinLife:    1.5,
		MaxLife:    3.0,
		MinSpeed:   2.0,
		MaxSpeed:   4.0,
		MinSize:    0.4,
		MaxSize:    1.6,
		StartColor: mgl32.Vec4{0.25, 0.25, 0.25, 0.6},
		EndColor:   mgl32.Vec4{0.7, 0.7, 0.7, 0},
		Gravity:    mgl32.Vec3{0, 0.4, 0},
		Particles:  make([]Particle, 0, maxParticles),
		pool:       maxParticles,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Update spawns and integrates for dt seconds.
func (e *Emitter) Update(dt float32) {
	if e.Active {
		e.spawnAccum += e.Rate * dt
		for e.spawnAccum >= 1 && len(e.Particles) < e.pool {
			e.spawn()
			e.spawnAccum--
		}
		if len(e.Particles) >= e.pool {
			e.spawnAccum = 0
		}
	} else {
		e.spawnAccum = 0
	}

	// Compact in place, dropping the dead.
	write := 0
	for i := range e.Particles {
		p := e.Particles[i]
		p.Life -= dt
		if p.Life <= 0 {
			continue
		}
		p.Velocity = p.Velocity.Add(e.Gravity.Mul(dt))
		p.Position = p.Position.Add(p.Velocity.Add(e.Wind).Mul(dt))

		t := 1 - p.Life/p.MaxLife
		p.Color = e.StartColor.Add(e.EndColor.Sub(e.StartColor).Mul(t))
		// Puffs grow as they age.
		p.Size = e.MinSize + (e.MaxSize-e.MinSize)*t

		e.Particles[write] = p
		write++
	}
	e.Particles = e.Particles[:write]
}

func (e *Emitter) Count() int { return len(e.Particles) }

func (e *Emitter) spawn() {
	life := e.MinLife + e.rng.Float32()*(e.MaxLife-e.MinLife)
	speed := e.MinSpeed + e.rng.Float32()*(e.MaxSpeed-e.MinSpeed)
	dir := randomInCone(e.Direction, e.Spread, e.rng)
	e.Particles = append(e.Particles, Particle{
		Position: e.Position,
		Velocity: dir.Mul(speed),
		Life:     life,
		MaxLife:  life,
		Size:     e.MinSize,
		Color:    e.StartColor,
	})
}

// randomInCone returns a unit vector uniformly distributed over the
// spherical cap of half-angle spread around axis.
func randomInCone(axis mgl32.Vec3, spread float32, rng *rand.Rand) mgl32.Vec3 {
	phi := rng.Float64() * 2 * math.Pi
	cosMin := math.Cos(float64(spread))
	cosTheta := cosMin + rng.Float64()*(1-cosMin)
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)

	up := mgl32.Vec3{0, 1, 0}
	if math.Abs(float64(axis.Dot(up))) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}
	right := axis.Cross(up).Normalize()
	up = right.Cross(axis).Normalize()

	return axis.Mul(float32(cosTheta)).
		Add(right.Mul(float32(sinTheta * math.Cos(phi)))).
		Add(up.Mul(float32(sinTheta * math.Sin(phi)))).
		Normalize()
}

// BillboardFloats is the interleaved layout per billboard vertex:
// position (3), uv (2), colour (4).
const BillboardFloats = 9

// BillboardVertices expands each particle into two camera-facing triangles.
// Camera right and up are rows 0 and 1 of the view matrix.
func BillboardVertices(particles []Particle, view mgl32.Mat4, buf []float32) []float32 {
	buf = buf[:0]
	right := view.Row(0).Vec3()
	up := view.Row(1).Vec3()

	add := func(p mgl32.Vec3, u, v float32, c mgl32.Vec4) {
		buf = append(buf, p[0], p[1], p[2], u, v, c[0], c[1], c[2], c[3])
	}
	for i := range particles {
		p := &particles[i]
		r := right.Mul(p.Size)
		u := up.Mul(p.Size)

		bl := p.Position.Sub(r).Sub(u)
		br := p.Position.Add(r).Sub(u)
		tl := p.Position.Sub(r).Add(u)
		tr := p.Position.Add(r).Add(u)

		add(tl, 0, 1, p.Color)
		add(tr, 1, 1, p.Color)
		add(br, 1, 0, p.Color)
		add(tl, 0, 1, p.Color)
		add(br, 1, 0, p.Color)
		add(bl, 0, 0, p.Color)
	}
	return buf
}

// ChimneyOffset is where the exhaust leaves the locomotive, in model units
// before the train's scale is applied.
var ChimneyOffset = mgl32.Vec3{-20, 14, 0}

// AttachExhaust moves the emitter to the train's chimney, turns it on while
// the train moves and raises the puff rate with speed.
func AttachExhaust(e *Emitter, train Placement, moving bool, speed float32) {
	e.Position = mgl32.TransformCoordinate(ChimneyOffset, train.Matrix())
	e.Active = moving
	e.Rate = 8 + 4*speed
}
