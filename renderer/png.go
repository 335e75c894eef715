package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
)

// Composite fills dst with background and draws each layer over it in order.
// Nil layers are skipped.
func Composite(dst *image.RGBA, background color.Color, layers ...image.Image) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	for _, l := range layers {
		if l == nil {
			continue
		}
		draw.Draw(dst, dst.Bounds(), l, l.Bounds().Min, draw.Over)
	}
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
