package environment

// DefaultFade is how long a day/night switch takes, in seconds.
const DefaultFade float32 = 1.5

// Fader eases the lighting from the current palette to a newly selected
// preset over Duration seconds. Switching mid-fade starts from wherever the
// blend had got to.
type Fader struct {
	Duration float32

	from    Palette
	to      Palette
	current Palette
	elapsed float32
	target  Kind
}

func NewFader(initial Preset, duration float32) *Fader {
	if duration <= 0 {
		duration = DefaultFade
	}
	return &Fader{
		Duration: duration,
		from:     initial.Palette,
		to:       initial.Palette,
		current:  initial.Palette,
		elapsed:  duration,
		target:   initial.Kind,
	}
}

// Switch starts a fade toward p. It returns false when p is already the
// target.
func (f *Fader) Switch(p Preset) bool {
	if p.Kind == f.target {
		return false
	}
	f.from = f.current
	f.to = p.Palette
	f.target = p.Kind
	f.elapsed = 0
	return true
}

// Update advances the fade by dt seconds and returns the blended palette.
func (f *Fader) Update(dt float32) Palette {
	if f.elapsed < f.Duration {
		f.elapsed += dt
		f.current = Lerp(f.from, f.to, smoothstep(f.elapsed/f.Duration))
	}
	return f.current
}

func (f *Fader) Current() Palette { return f.current }
func (f *Fader) Target() Kind     { return f.target }
func (f *Fader) Done() bool       { return f.elapsed >= f.Duration }

func smoothstep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
