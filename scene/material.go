package scene

import "github.com/go-gl/mathgl/mgl32"

// Material describes Phong surface properties for a mesh. The scene-wide
// ambient/diffuse/specular strengths come from the active environment and
// scale these per-material colours.
type Material struct {
	Name      string
	Diffuse   mgl32.Vec3 // multiplied with DiffuseTexture when set
	Specular  mgl32.Vec3
	Shininess float32
	Unlit     bool // output raw diffuse colour, used by the light marker

	// Upload via opengl.UploadTexture before rendering.
	DiffuseTexture *Texture
}

// DefaultMaterial returns a plain white matte Phong material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Diffuse:   mgl32.Vec3{1, 1, 1},
		Specular:  mgl32.Vec3{0.3, 0.3, 0.3},
		Shininess: 32,
	}
}

// NewMaterial creates a Phong material with the given diffuse colour.
func NewMaterial(name string, diffuse mgl32.Vec3) *Material {
	return &Material{
		Name:      name,
		Diffuse:   diffuse,
		Specular:  mgl32.Vec3{0.5, 0.5, 0.5},
		Shininess: 32,
	}
}
