package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"train-simulator/core"
	"train-simulator/internal/environment"
	"train-simulator/internal/opengl"
	"train-simulator/scene"
)

// Frame is everything one Render call draws.
type Frame struct {
	View        mgl32.Mat4
	Projection  mgl32.Mat4
	CameraPos   mgl32.Vec3
	LightPos    mgl32.Vec3
	ShadowFocus mgl32.Vec3 // centre of the shadow frustum, normally the train
	Items       []scene.Item
	Exhaust     *scene.Emitter
}

// RenderEngine is the high-level renderer that drives the OpenGL backend.
type RenderEngine struct {
	gl     *opengl.Renderer
	window *core.Window

	ShadowsEnabled bool
	SkyboxEnabled  bool

	palette environment.Palette
	kind    environment.Kind
	skies   [2]*scene.Cubemap

	textures []*scene.Texture

	stats scene.DrawStats
}

func NewRenderEngine(window *core.Window) (*RenderEngine, error) {
	glRenderer, err := opengl.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	w, h := window.GetFramebufferSize()
	glRenderer.SetViewport(w, h)

	fmt.Printf("[Render] OpenGL %s\n", opengl.Version())
	return &RenderEngine{
		gl:      glRenderer,
		window:  window,
		palette: environment.DayPreset("").Palette,
	}, nil
}

// UploadModels uploads every texture the models reference. A texture that
// fails is reported and its meshes draw untextured.
func (re *RenderEngine) UploadModels(models []*scene.Model) error {
	var errs []error
	for _, m := range models {
		for _, tex := range m.Textures {
			if tex.GLID != 0 {
				continue
			}
			if err := opengl.UploadTexture(tex); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", m.Name, err))
				continue
			}
			re.textures = append(re.textures, tex)
		}
	}
	return errors.Join(errs...)
}

// EnableShadows creates the shadow map with the default settings.
func (re *RenderEngine) EnableShadows() error {
	if err := re.gl.EnableShadows(opengl.DefaultShadowSettings()); err != nil {
		return fmt.Errorf("shadows: %w", err)
	}
	re.ShadowsEnabled = true
	return nil
}

// ShadowSettings reports the active shadow map, zero when shadows are off.
func (re *RenderEngine) ShadowSettings() opengl.ShadowSettings {
	return re.gl.ShadowSettings()
}

// EnableSkybox creates the sky. day and night may be nil, in which case
// that preset draws the gradient from its palette.
func (re *RenderEngine) EnableSkybox(day, night *scene.Cubemap) error {
	for _, cm := range []*scene.Cubemap{day, night} {
		if cm == nil || cm.GLID != 0 {
			continue
		}
		if err := opengl.UploadCubemap(cm); err != nil {
			return fmt.Errorf("skybox: %w", err)
		}
	}
	re.skies = [2]*scene.Cubemap{environment.Day: day, environment.Night: night}
	if err := re.gl.EnableSkybox(nil); err != nil {
		return fmt.Errorf("skybox: %w", err)
	}
	re.SkyboxEnabled = true
	re.syncSky()
	return nil
}

// SetEnvironment selects the sky for kind and the lighting palette, which
// may be mid-fade.
func (re *RenderEngine) SetEnvironment(kind environment.Kind, p environment.Palette) {
	re.kind = kind
	re.palette = p
	re.syncSky()
}

func (re *RenderEngine) syncSky() {
	sb := re.gl.Skybox()
	if sb == nil {
		return
	}
	sb.Cubemap = 0
	if cm := re.skies[re.kind]; cm != nil {
		sb.Cubemap = cm.GLID
	}
	sb.Zenith = re.palette.Zenith
	sb.Horizon = re.palette.Horizon
	sb.Ground = re.palette.Ground
}

// Render draws the shadow pass, the scene, the exhaust and finally the sky.
func (re *RenderEngine) Render(f Frame) {
	lightVP := mgl32.Ident4()
	doShadows := re.ShadowsEnabled && re.gl.HasShadowMap()
	if doShadows {
		lightVP = scene.LightSpaceMatrix(f.LightPos, f.ShadowFocus, scene.ShadowExtent)
		re.gl.BeginShadowPass()
		for _, it := range scene.ShadowCasters(f.Items) {
			lightMVP := lightVP.Mul4(it.Matrix)
			for _, mesh := range it.Model.Meshes {
				re.gl.DrawMeshShadow(mesh, lightMVP)
			}
		}
		re.gl.EndShadowPass()
	}

	re.gl.BeginFrame(re.palette.Horizon, opengl.Lighting{
		Palette:       re.palette,
		LightPos:      f.LightPos,
		ViewPos:       f.CameraPos,
		LightViewProj: lightVP,
		Shadows:       doShadows,
	})

	vp := f.Projection.Mul4(f.View)
	var items []scene.Item
	items, re.stats = scene.Cull(f.Items, vp)
	for _, it := range items {
		mvp := vp.Mul4(it.Matrix)
		for _, mesh := range it.Model.Meshes {
			re.gl.DrawMesh(mesh, mvp, it.Matrix)
		}
	}

	// The sky goes after opaque geometry so its fragments fail the depth
	// test wherever something was drawn.
	re.gl.DrawSkybox(f.View, f.Projection)
	re.gl.DrawParticles(f.Exhaust, f.View, f.Projection)
}

func (re *RenderEngine) Present() {
	re.window.SwapBuffers()
}

func (re *RenderEngine) Resize(width, height int) {
	re.gl.SetViewport(width, height)
}

// DrawStats returns stats from the most recent Render call.
func (re *RenderEngine) DrawStats() scene.DrawStats { return re.stats }

func (re *RenderEngine) Destroy() {
	for _, cm := range re.skies {
		opengl.DeleteCubemap(cm)
	}
	for _, tex := range re.textures {
		opengl.DeleteTexture(tex)
	}
	re.gl.Destroy()
}
