// Package render composites the output canvas: every matched source
// pixel becomes one swatch texture block.
package render

import (
	"fmt"
	"image"

	"skinproc/match"
	"skinproc/rgb"
	"skinproc/swatch"

	"golang.org/x/image/draw"
)

// Render tiles each source pixel's assigned swatch texture into a
// scale×scale block of a fresh transparent canvas. Transparent and
// unassigned pixels leave their block untouched. Textures are copied
// unscaled; they are expected to measure scale×scale, checked by the
// caller before rendering.
func Render(src *image.NRGBA, asg match.Assignment, pal *swatch.Palette, scale int) (*image.NRGBA, error) {
	bounds := src.Bounds()
	canvas := image.NewNRGBA(image.Rect(0, 0, bounds.Dx()*scale, bounds.Dy()*scale))

	for y := range bounds.Dy() {
		for x := range bounds.Dx() {
			px := src.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			if px.A < match.OpaqueThreshold {
				continue
			}

			name, ok := asg[rgb.FromNRGBA(px)]
			if !ok {
				continue
			}

			texture, err := pal.Texture(name)
			if err != nil {
				return nil, fmt.Errorf("compositing pixel (%d,%d): %w", x, y, err)
			}

			block := image.Rect(x*scale, y*scale, (x+1)*scale, (y+1)*scale)
			draw.Draw(canvas, block, texture, texture.Bounds().Min, draw.Src)
		}
	}

	return canvas, nil
}
