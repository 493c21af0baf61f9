package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"train-simulator/scene"
)

// Skybox draws an inverted unit cube at the far plane, textured from a
// cubemap when one is bound and shaded with a zenith/horizon/ground gradient
// otherwise. The vertex shader's xyww trick puts every fragment at depth 1.
type Skybox struct {
	vao uint32
	vbo uint32

	cubeProg uint32
	cubeVP   int32

	gradProg   uint32
	gradVP     int32
	zenithLoc  int32
	horizonLoc int32
	groundLoc  int32

	// Cubemap is the GL texture to sample; 0 selects the gradient.
	Cubemap uint32

	Zenith  mgl32.Vec3
	Horizon mgl32.Vec3
	Ground  mgl32.Vec3
}

const skyVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 skyVP;

out vec3 fragDir;

void main() {
    fragDir = inPosition;
    vec4 pos = skyVP * vec4(inPosition, 1.0);
    gl_Position = pos.xyww;
}
` + "\x00"

const skyCubeFragSrc = `
#version 410 core
in vec3 fragDir;
out vec4 outColor;

uniform samplerCube sky;

void main() {
    outColor = texture(sky, fragDir);
}
` + "\x00"

const skyGradientFragSrc = `
#version 410 core
in vec3 fragDir;
out vec4 outColor;

uniform vec3 zenith;
uniform vec3 horizon;
uniform vec3 ground;

void main() {
    float t = normalize(fragDir).y;
    vec3 color;
    if (t >= 0.0) {
        color = mix(horizon, zenith, pow(t, 0.4));
    } else {
        color = mix(horizon, ground, min(-t * 3.0, 1.0));
    }
    outColor = vec4(color, 1.0);
}
` + "\x00"

// 36 positions for a unit cube. Culling is off while drawing so the inside
// faces show.
var skyboxVerts = []float32{
	-1, -1, -1, 1, 1, -1, 1, -1, -1,
	1, 1, -1, -1, -1, -1, -1, 1, -1,
	-1, -1, 1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, -1, 1,
	-1, 1, 1, -1, 1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, 1, -1, 1, 1,
	1, 1, 1, 1, -1, -1, 1, 1, -1,
	1, -1, -1, 1, 1, 1, 1, -1, 1,
	-1, -1, -1, 1, -1, -1, 1, -1, 1,
	1, -1, 1, -1, -1, 1, -1, -1, -1,
	-1, 1, -1, 1, 1, 1, 1, 1, -1,
	1, 1, 1, -1, 1, -1, -1, 1, 1,
}

// NewSkybox compiles both sky programs and uploads the cube. cm may be nil;
// it is uploaded when it has not been already.
func NewSkybox(cm *scene.Cubemap) (*Skybox, error) {
	cubeProg, err := newProgram(skyVertSrc, skyCubeFragSrc)
	if err != nil {
		return nil, fmt.Errorf("skybox shader: %w", err)
	}
	gradProg, err := newProgram(skyVertSrc, skyGradientFragSrc)
	if err != nil {
		gl.DeleteProgram(cubeProg)
		return nil, fmt.Errorf("sky gradient shader: %w", err)
	}

	sb := &Skybox{
		cubeProg:   cubeProg,
		cubeVP:     gl.GetUniformLocation(cubeProg, gl.Str("skyVP\x00")),
		gradProg:   gradProg,
		gradVP:     gl.GetUniformLocation(gradProg, gl.Str("skyVP\x00")),
		zenithLoc:  gl.GetUniformLocation(gradProg, gl.Str("zenith\x00")),
		horizonLoc: gl.GetUniformLocation(gradProg, gl.Str("horizon\x00")),
		groundLoc:  gl.GetUniformLocation(gradProg, gl.Str("ground\x00")),

		Zenith:  mgl32.Vec3{0.10, 0.30, 0.70},
		Horizon: mgl32.Vec3{0.60, 0.80, 1.00},
		Ground:  mgl32.Vec3{0.30, 0.25, 0.20},
	}
	gl.UseProgram(cubeProg)
	gl.Uniform1i(gl.GetUniformLocation(cubeProg, gl.Str("sky\x00")), 0)

	if cm != nil {
		if cm.GLID == 0 {
			if err := UploadCubemap(cm); err != nil {
				sb.Destroy()
				return nil, err
			}
		}
		sb.Cubemap = cm.GLID
	}

	gl.GenVertexArrays(1, &sb.vao)
	gl.GenBuffers(1, &sb.vbo)
	gl.BindVertexArray(sb.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, sb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(skyboxVerts)*4, gl.Ptr(skyboxVerts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	return sb, nil
}

// Draw renders the sky. skyVP must already have the view translation
// stripped.
func (sb *Skybox) Draw(skyVP mgl32.Mat4) {
	// LEQUAL lets depth 1.0 pass against the cleared buffer; no depth writes.
	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)

	if sb.Cubemap != 0 {
		gl.UseProgram(sb.cubeProg)
		gl.UniformMatrix4fv(sb.cubeVP, 1, false, &skyVP[0])
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, sb.Cubemap)
	} else {
		gl.UseProgram(sb.gradProg)
		gl.UniformMatrix4fv(sb.gradVP, 1, false, &skyVP[0])
		gl.Uniform3f(sb.zenithLoc, sb.Zenith.X(), sb.Zenith.Y(), sb.Zenith.Z())
		gl.Uniform3f(sb.horizonLoc, sb.Horizon.X(), sb.Horizon.Y(), sb.Horizon.Z())
		gl.Uniform3f(sb.groundLoc, sb.Ground.X(), sb.Ground.Y(), sb.Ground.Z())
	}

	gl.BindVertexArray(sb.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.DepthFunc(gl.LESS)
}

// Destroy frees the programs and cube geometry. Cubemap textures belong to
// their scene.Cubemap and are freed with DeleteCubemap.
func (sb *Skybox) Destroy() {
	if sb.vao != 0 {
		gl.DeleteVertexArrays(1, &sb.vao)
		gl.DeleteBuffers(1, &sb.vbo)
	}
	gl.DeleteProgram(sb.cubeProg)
	gl.DeleteProgram(sb.gradProg)
}
