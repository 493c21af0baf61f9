package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

const (
	DefaultShadowSize   = 2048
	DefaultShadowBias   = 0.002
	DefaultShadowKernel = 1

	minShadowSize   = 256
	maxShadowSize   = 8192
	maxShadowKernel = 3
)

// ShadowSettings sizes the depth map and tunes how the lit pass samples it.
// Kernel is the PCF radius in texels: 1 samples a 3×3 block.
type ShadowSettings struct {
	Size   int
	Bias   float32
	Kernel int
}

func DefaultShadowSettings() ShadowSettings {
	return ShadowSettings{Size: DefaultShadowSize, Bias: DefaultShadowBias, Kernel: DefaultShadowKernel}
}

// Normalized fills zero fields with defaults and clamps the rest to what the
// shader and a typical driver accept.
func (s ShadowSettings) Normalized() ShadowSettings {
	if s.Size <= 0 {
		s.Size = DefaultShadowSize
	}
	s.Size = max(minShadowSize, min(maxShadowSize, s.Size))
	if s.Bias <= 0 {
		s.Bias = DefaultShadowBias
	}
	s.Kernel = max(0, min(maxShadowKernel, s.Kernel))
	return s
}

// TexelSize is how many world units one shadow texel covers when the light
// frustum spans extent units.
func (s ShadowSettings) TexelSize(extent float32) float32 {
	return extent / float32(s.Normalized().Size)
}

func (s ShadowSettings) String() string {
	taps := 2*s.Kernel + 1
	return fmt.Sprintf("%dx%d, PCF %dx%d, bias %.4f", s.Size, s.Size, taps, taps, s.Bias)
}

// ShadowMap is the depth-only framebuffer the lamp renders into.
type ShadowMap struct {
	FBO      uint32
	DepthTex uint32
	Settings ShadowSettings
}

// NewShadowMap allocates the depth texture with hardware comparison, so
// sampler2DShadow lookups return the lit fraction directly.
func NewShadowMap(settings ShadowSettings) (*ShadowMap, error) {
	sm := &ShadowMap{Settings: settings.Normalized()}
	size := int32(sm.Settings.Size)

	gl.GenTextures(1, &sm.DepthTex)
	gl.BindTexture(gl.TEXTURE_2D, sm.DepthTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT32F, size, size, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	// Terrain beyond the frustum around the train stays lit.
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &sm.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, sm.DepthTex, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		sm.Destroy()
		return nil, fmt.Errorf("shadow FBO incomplete: status=0x%X", status)
	}
	return sm, nil
}

// begin redirects drawing into the depth map. The polygon offset keeps the
// long, nearly flat terrain from shadowing itself.
func (sm *ShadowMap) begin(prog uint32) {
	size := int32(sm.Settings.Size)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.Viewport(0, 0, size, size)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(2, 4)
	gl.UseProgram(prog)
}

func (sm *ShadowMap) end(viewportW, viewportH int32) {
	gl.Disable(gl.POLYGON_OFFSET_FILL)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, viewportW, viewportH)
}

// bind attaches the depth map to unit for the lit pass.
func (sm *ShadowMap) bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, sm.DepthTex)
}

func (sm *ShadowMap) Destroy() {
	if sm.FBO != 0 {
		gl.DeleteFramebuffers(1, &sm.FBO)
		sm.FBO = 0
	}
	if sm.DepthTex != 0 {
		gl.DeleteTextures(1, &sm.DepthTex)
		sm.DepthTex = 0
	}
}
