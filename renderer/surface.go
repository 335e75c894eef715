package renderer

import (
	"image"
	"image/color"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Surface uploads a CPU raster to a GPU texture and draws it over the window.
// Must be used after the raylib window is created.
type Surface struct {
	tex           rl.Texture2D
	width, height int
	premultiplied bool
	loaded        bool
}

// NewSurface creates a surface. premultiplied selects the blend mode used to
// draw rasters whose colour is already scaled by alpha.
func NewSurface(premultiplied bool) *Surface {
	return &Surface{premultiplied: premultiplied}
}

// Upload copies img into the texture, recreating it when the size changes.
func (s *Surface) Upload(img image.Image) {
	var pix []uint8
	b := img.Bounds()
	switch m := img.(type) {
	case *image.RGBA:
		pix = m.Pix
	case *image.NRGBA:
		pix = m.Pix
	default:
		return
	}
	if len(pix) == 0 {
		return
	}

	if !s.loaded || s.width != b.Dx() || s.height != b.Dy() {
		s.Unload()
		im := rl.NewImageFromImage(img)
		s.tex = rl.LoadTextureFromImage(im)
		rl.UnloadImage(im)
		s.width, s.height = b.Dx(), b.Dy()
		s.loaded = true
	}
	// Pixels are uploaded as stored
	rl.UpdateTexture(s.tex, unsafe.Slice((*color.RGBA)(unsafe.Pointer(&pix[0])), len(pix)/4))
}

// Draw renders the texture with its top left corner at (x, y).
func (s *Surface) Draw(x, y int32) {
	if !s.loaded {
		return
	}
	if s.premultiplied {
		rl.BeginBlendMode(rl.BlendAlphaPremultiply)
		defer rl.EndBlendMode()
	}
	rl.DrawTexture(s.tex, x, y, rl.White)
}

// Unload releases the GPU texture.
func (s *Surface) Unload() {
	if s.loaded {
		rl.UnloadTexture(s.tex)
		s.loaded = false
	}
}
