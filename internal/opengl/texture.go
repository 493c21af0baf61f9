package opengl

import (
	"errors"
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"train-simulator/scene"
)

// UploadTexture uploads a scene.Texture with mipmaps and sets its GLID.
// The GL context must be current.
func UploadTexture(tex *scene.Texture) error {
	if tex == nil {
		return errors.New("nil texture")
	}
	if len(tex.Pixels) == 0 {
		return fmt.Errorf("texture %q has no pixel data", tex.Name)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tex.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLID = id
	return nil
}

// DeleteTexture frees a previously uploaded texture and zeroes its GLID.
func DeleteTexture(tex *scene.Texture) {
	if tex == nil || tex.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
}

// UploadCubemap uploads six faces, +X first, and sets cm.GLID.
func UploadCubemap(cm *scene.Cubemap) error {
	if cm == nil {
		return errors.New("nil cubemap")
	}
	for i, f := range cm.Faces {
		if f == nil || len(f.Pixels) == 0 {
			return fmt.Errorf("cubemap face %d has no pixel data", i)
		}
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for i, f := range cm.Faces {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA,
			int32(f.Width), int32(f.Height), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(f.Pixels))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	cm.GLID = id
	return nil
}

func DeleteCubemap(cm *scene.Cubemap) {
	if cm == nil || cm.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &cm.GLID)
	cm.GLID = 0
}
