package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"train-simulator/internal/environment"
	"train-simulator/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
}

// Lighting is the per-frame state shared by every mesh draw.
type Lighting struct {
	Palette       environment.Palette
	LightPos      mgl32.Vec3
	ViewPos       mgl32.Vec3
	LightViewProj mgl32.Mat4
	Shadows       bool
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program uint32

	mvpLoc           int32
	modelLoc         int32
	lightViewProjLoc int32

	lightPosLoc   int32
	lightColorLoc int32
	viewPosLoc    int32
	ambientLoc    int32
	diffuseLoc    int32
	specularLoc   int32

	matDiffuseLoc   int32
	matSpecularLoc  int32
	matShininessLoc int32
	diffuseTexLoc   int32
	hasTextureLoc   int32
	unlitLoc        int32

	shadowMapLoc  int32
	hasShadowsLoc int32
	shadowBiasLoc int32
	pcfRadiusLoc  int32

	shadowProg        uint32
	shadowLightMVPLoc int32
	shadowMap         *ShadowMap

	skybox    *Skybox
	particles *ParticleRenderer

	viewportW, viewportH int32

	gpuMeshes map[*scene.Mesh]*GPUMesh
}

const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;

uniform mat4 mvp;
uniform mat4 model;
uniform mat4 lightViewProj;

out vec3 fragNormal;
out vec2 fragUV;
out vec3 fragWorldPos;
out vec4 fragLightSpacePos;

void main() {
    vec4 worldPos     = model * vec4(inPosition, 1.0);
    gl_Position       = mvp * vec4(inPosition, 1.0);
    fragNormal        = mat3(transpose(inverse(model))) * inNormal;
    fragUV            = inUV;
    fragWorldPos      = worldPos.xyz;
    fragLightSpacePos = lightViewProj * worldPos;
}
` + "\x00"

// Phong with a single point light. The environment scales the three terms.
const fragSrc = `
#version 410 core
in vec3 fragNormal;
in vec2 fragUV;
in vec3 fragWorldPos;
in vec4 fragLightSpacePos;

out vec4 outColor;

uniform vec3  lightPos;
uniform vec3  lightColor;
uniform vec3  viewPos;
uniform float ambientStrength;
uniform float diffuseStrength;
uniform float specularStrength;

uniform vec3  matDiffuse;
uniform vec3  matSpecular;
uniform float matShininess;

uniform sampler2D diffuseTex;
uniform bool      hasTexture;
uniform bool      unlit;

uniform sampler2DShadow shadowMap;
uniform bool            hasShadows;
uniform float           shadowBias;
uniform int             pcfRadius;

float calcShadow() {
    vec3 p = fragLightSpacePos.xyz / fragLightSpacePos.w;
    p = p * 0.5 + 0.5;
    if (p.z > 1.0) return 1.0;
    float shadow = 0.0;
    float ts = 1.0 / float(textureSize(shadowMap, 0).x);
    for (int x = -pcfRadius; x <= pcfRadius; x++) {
        for (int y = -pcfRadius; y <= pcfRadius; y++) {
            shadow += texture(shadowMap, vec3(p.xy + vec2(float(x), float(y)) * ts, p.z - shadowBias));
        }
    }
    float taps = float(2 * pcfRadius + 1);
    return shadow / (taps * taps);
}

void main() {
    vec4 base = vec4(matDiffuse, 1.0);
    if (hasTexture) {
        base *= texture(diffuseTex, fragUV);
    }
    if (base.a < 0.1) discard;
    if (unlit) {
        outColor = base;
        return;
    }

    vec3 N = normalize(fragNormal);
    vec3 L = normalize(lightPos - fragWorldPos);
    vec3 V = normalize(viewPos - fragWorldPos);
    vec3 R = reflect(-L, N);

    vec3 ambient  = ambientStrength * lightColor;
    vec3 diffuse  = diffuseStrength * max(dot(N, L), 0.0) * lightColor;
    vec3 specular = specularStrength * pow(max(dot(V, R), 0.0), matShininess) * lightColor * matSpecular;

    float lit = hasShadows ? calcShadow() : 1.0;
    outColor = vec4((ambient + lit * (diffuse + specular)) * base.rgb, base.a);
}
` + "\x00"

const depthVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
uniform mat4 lightMVP;
void main() {
    gl_Position = lightMVP * vec4(inPosition, 1.0);
}
` + "\x00"

const depthFragSrc = `
#version 410 core
void main() {}
` + "\x00"

// NewRenderer initialises OpenGL.
// Must be called after the GLFW window context is made current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}
	shadowProg, err := newProgram(depthVertSrc, depthFragSrc)
	if err != nil {
		gl.DeleteProgram(prog)
		return nil, fmt.Errorf("depth shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	loc := func(name string) int32 {
		return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
	}
	r := &Renderer{
		program:          prog,
		mvpLoc:           loc("mvp"),
		modelLoc:         loc("model"),
		lightViewProjLoc: loc("lightViewProj"),

		lightPosLoc:   loc("lightPos"),
		lightColorLoc: loc("lightColor"),
		viewPosLoc:    loc("viewPos"),
		ambientLoc:    loc("ambientStrength"),
		diffuseLoc:    loc("diffuseStrength"),
		specularLoc:   loc("specularStrength"),

		matDiffuseLoc:   loc("matDiffuse"),
		matSpecularLoc:  loc("matSpecular"),
		matShininessLoc: loc("matShininess"),
		diffuseTexLoc:   loc("diffuseTex"),
		hasTextureLoc:   loc("hasTexture"),
		unlitLoc:        loc("unlit"),

		shadowMapLoc:  loc("shadowMap"),
		hasShadowsLoc: loc("hasShadows"),
		shadowBiasLoc: loc("shadowBias"),
		pcfRadiusLoc:  loc("pcfRadius"),

		shadowProg:        shadowProg,
		shadowLightMVPLoc: gl.GetUniformLocation(shadowProg, gl.Str("lightMVP\x00")),

		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
	}

	// Texture units: diffuse=0, shadowMap=1.
	gl.UseProgram(prog)
	gl.Uniform1i(r.diffuseTexLoc, 0)
	gl.Uniform1i(r.shadowMapLoc, 1)

	ident := mgl32.Ident4()
	gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &ident[0])

	return r, nil
}

// Version reports the driver's GL version string.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// SetViewport resizes the OpenGL viewport and stores the dimensions for
// restoring after the shadow pass.
func (r *Renderer) SetViewport(width, height int) {
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(0, 0, int32(width), int32(height))
}

// EnableShadows creates the depth FBO, replacing any previous one.
func (r *Renderer) EnableShadows(settings ShadowSettings) error {
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
		r.shadowMap = nil
	}
	sm, err := NewShadowMap(settings)
	if err != nil {
		return err
	}
	r.shadowMap = sm
	return nil
}

func (r *Renderer) HasShadowMap() bool { return r.shadowMap != nil }

// ShadowSettings reports the active shadow map settings, or the zero value
// when shadows are off.
func (r *Renderer) ShadowSettings() ShadowSettings {
	if r.shadowMap == nil {
		return ShadowSettings{}
	}
	return r.shadowMap.Settings
}

// BeginShadowPass binds the depth FBO and the depth-only program.
func (r *Renderer) BeginShadowPass() {
	if r.shadowMap == nil {
		return
	}
	r.shadowMap.begin(r.shadowProg)
}

// DrawMeshShadow draws a mesh into the depth buffer.
func (r *Renderer) DrawMeshShadow(mesh *scene.Mesh, lightMVP mgl32.Mat4) {
	if r.shadowMap == nil {
		return
	}
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}
	gl.UniformMatrix4fv(r.shadowLightMVPLoc, 1, false, &lightMVP[0])
	gl.BindVertexArray(gpu.VAO)
	gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// EndShadowPass restores the default framebuffer and viewport.
func (r *Renderer) EndShadowPass() {
	if r.shadowMap == nil {
		return
	}
	r.shadowMap.end(r.viewportW, r.viewportH)
}

// BeginFrame clears the framebuffer and sets the per-frame lighting uniforms.
func (r *Renderer) BeginFrame(clear mgl32.Vec3, l Lighting) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.ClearColor(clear.X(), clear.Y(), clear.Z(), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	p := l.Palette
	gl.Uniform3f(r.lightPosLoc, l.LightPos.X(), l.LightPos.Y(), l.LightPos.Z())
	gl.Uniform3f(r.lightColorLoc, p.LightColor.X(), p.LightColor.Y(), p.LightColor.Z())
	gl.Uniform3f(r.viewPosLoc, l.ViewPos.X(), l.ViewPos.Y(), l.ViewPos.Z())
	gl.Uniform1f(r.ambientLoc, p.Ambient)
	gl.Uniform1f(r.diffuseLoc, p.Diffuse)
	gl.Uniform1f(r.specularLoc, p.Specular)

	gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &l.LightViewProj[0])
	if l.Shadows && r.shadowMap != nil {
		r.shadowMap.bind(1)
		gl.Uniform1i(r.hasShadowsLoc, 1)
		gl.Uniform1f(r.shadowBiasLoc, r.shadowMap.Settings.Bias)
		gl.Uniform1i(r.pcfRadiusLoc, int32(r.shadowMap.Settings.Kernel))
	} else {
		gl.Uniform1i(r.hasShadowsLoc, 0)
	}
}

// DrawMesh draws a mesh with the given MVP and model matrices.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mvp, model mgl32.Mat4) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, &mvp[0])
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0])

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	r.applyMaterial(mat)

	gl.BindVertexArray(gpu.VAO)
	gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (r *Renderer) applyMaterial(mat *scene.Material) {
	gl.Uniform3f(r.matDiffuseLoc, mat.Diffuse.X(), mat.Diffuse.Y(), mat.Diffuse.Z())
	gl.Uniform3f(r.matSpecularLoc, mat.Specular.X(), mat.Specular.Y(), mat.Specular.Z())
	gl.Uniform1f(r.matShininessLoc, mat.Shininess)
	gl.Uniform1i(r.unlitLoc, boolInt(mat.Unlit))

	if tex := mat.DiffuseTexture; tex != nil && tex.GLID != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
		gl.Uniform1i(r.hasTextureLoc, 1)
	} else {
		gl.Uniform1i(r.hasTextureLoc, 0)
	}
}

// EnableSkybox creates the sky cube. A nil cubemap keeps the gradient.
func (r *Renderer) EnableSkybox(cm *scene.Cubemap) error {
	if r.skybox != nil {
		r.skybox.Destroy()
		r.skybox = nil
	}
	sb, err := NewSkybox(cm)
	if err != nil {
		return err
	}
	r.skybox = sb
	return nil
}

func (r *Renderer) Skybox() *Skybox { return r.skybox }

// DrawSkybox draws the sky behind everything already in the depth buffer.
func (r *Renderer) DrawSkybox(view, proj mgl32.Mat4) {
	if r.skybox == nil {
		return
	}
	r.skybox.Draw(scene.SkyViewProjection(view, proj))
}

// DrawParticles draws an emitter's puffs. The particle program is built on
// first use.
func (r *Renderer) DrawParticles(e *scene.Emitter, view, proj mgl32.Mat4) {
	if e == nil || e.Count() == 0 {
		return
	}
	if r.particles == nil {
		pr, err := newParticleRenderer()
		if err != nil {
			return
		}
		r.particles = pr
	}
	r.particles.draw(e, view, proj)
}

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	gpu, ok := r.gpuMeshes[mesh]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.VAO)
	gl.DeleteBuffers(1, &gpu.VBO)
	gl.DeleteBuffers(1, &gpu.EBO)
	delete(r.gpuMeshes, mesh)
	mesh.GPUData = nil
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	if r.skybox != nil {
		r.skybox.Destroy()
	}
	if r.particles != nil {
		r.particles.destroy()
	}
	gl.DeleteProgram(r.shadowProg)
	gl.DeleteProgram(r.program)
}

// ensureUploaded uploads vertex/index data if not already done.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil
	}

	var v scene.Vertex
	stride := int32(unsafe.Sizeof(v))
	gpu := &GPUMesh{IndexCount: int32(len(mesh.Indices))}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Position))))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Normal))))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.UV))))

	gl.GenBuffers(1, &gpu.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
