package scene

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// Texture holds CPU-side pixel data for a 2D texture or one cubemap face.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	GLID   uint32
}

// LoadTexture reads a PNG or JPEG file from disk and returns a CPU-side Texture.
func LoadTexture(path string) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	tex, err := DecodeTexture(path, data)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return tex, nil
}

// DecodeTexture decodes a PNG or JPEG byte slice into RGBA8.
func DecodeTexture(name string, data []byte) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return &Texture{
		Name:   name,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: rgba.Pix,
	}, nil
}

// NewSolidTexture creates a 1x1 texture with the given RGBA colour values (0-255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
	}
}

// Cubemap is six square faces ordered +X, -X, +Y, -Y, +Z, -Z.
type Cubemap struct {
	Faces [6]*Texture
	GLID  uint32
}

// LoadCubemap loads all six faces. It fails if any face is missing or the
// faces disagree in size.
func LoadCubemap(paths [6]string) (*Cubemap, error) {
	var cm Cubemap
	for i, p := range paths {
		tex, err := LoadTexture(p)
		if err != nil {
			return nil, fmt.Errorf("cubemap face %d: %w", i, err)
		}
		if i > 0 && (tex.Width != cm.Faces[0].Width || tex.Height != cm.Faces[0].Height) {
			return nil, fmt.Errorf("cubemap face %d: size %dx%d differs from %dx%d",
				i, tex.Width, tex.Height, cm.Faces[0].Width, cm.Faces[0].Height)
		}
		cm.Faces[i] = tex
	}
	return &cm, nil
}
