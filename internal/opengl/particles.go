package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"train-simulator/scene"
)

const particleVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPos;
layout(location = 1) in vec2 inUV;
layout(location = 2) in vec4 inColor;

uniform mat4 vp;

out vec2 fragUV;
out vec4 fragColor;

void main() {
    gl_Position = vp * vec4(inPos, 1.0);
    fragUV      = inUV;
    fragColor   = inColor;
}
` + "\x00"

// Soft round puff: alpha falls off quadratically toward the quad's edge.
const particleFragSrc = `
#version 410 core
in vec2 fragUV;
in vec4 fragColor;

out vec4 outColor;

void main() {
    float d = length(fragUV - vec2(0.5)) * 2.0;
    outColor = vec4(fragColor.rgb, fragColor.a * clamp(1.0 - d * d, 0.0, 1.0));
}
` + "\x00"

// ParticleRenderer owns the program and streaming buffer for billboards.
type ParticleRenderer struct {
	prog   uint32
	vao    uint32
	vbo    uint32
	vpLoc  int32
	vboCap int // vertices

	buf []float32
}

func newParticleRenderer() (*ParticleRenderer, error) {
	prog, err := newProgram(particleVertSrc, particleFragSrc)
	if err != nil {
		return nil, fmt.Errorf("particle shader: %w", err)
	}

	pr := &ParticleRenderer{
		prog:  prog,
		vpLoc: gl.GetUniformLocation(prog, gl.Str("vp\x00")),
	}
	gl.GenVertexArrays(1, &pr.vao)
	gl.GenBuffers(1, &pr.vbo)
	gl.BindVertexArray(pr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, pr.vbo)

	const stride = int32(scene.BillboardFloats * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(12))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, gl.PtrOffset(20))
	gl.BindVertexArray(0)
	return pr, nil
}

// draw streams the emitter's billboards and draws them alpha blended,
// depth tested but not depth written.
func (pr *ParticleRenderer) draw(e *scene.Emitter, view, proj mgl32.Mat4) {
	pr.buf = scene.BillboardVertices(e.Particles, view, pr.buf)
	vertCount := len(pr.buf) / scene.BillboardFloats
	if vertCount == 0 {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, pr.vbo)
	if vertCount > pr.vboCap {
		gl.BufferData(gl.ARRAY_BUFFER, len(pr.buf)*4, gl.Ptr(pr.buf), gl.DYNAMIC_DRAW)
		pr.vboCap = vertCount
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(pr.buf)*4, gl.Ptr(pr.buf))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)

	vp := proj.Mul4(view)
	gl.UseProgram(pr.prog)
	gl.UniformMatrix4fv(pr.vpLoc, 1, false, &vp[0])

	gl.BindVertexArray(pr.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(vertCount))
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

func (pr *ParticleRenderer) destroy() {
	gl.DeleteVertexArrays(1, &pr.vao)
	gl.DeleteBuffers(1, &pr.vbo)
	gl.DeleteProgram(pr.prog)
}
