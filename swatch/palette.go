// Package swatch loads a directory of small reference textures into a
// palette and caches one representative color per texture.
package swatch

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"skinproc/rgb"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

var (
	ErrDirNotFound   = errors.New("swatch directory not found")
	ErrEmptyPalette  = errors.New("no usable swatch textures")
	ErrDuplicateName = errors.New("duplicate swatch name")
	ErrNotFound      = errors.New("swatch not found")
)

// Entry is a palette snapshot item: a swatch name with its cached
// representative color.
type Entry struct {
	Name  string
	Color rgb.Color
}

type swatch struct {
	texture *image.NRGBA
	color   rgb.Color
}

// Palette is an insertion-ordered, name-keyed set of swatches. It is
// built once by Load and immutable afterwards.
type Palette struct {
	swatches map[string]swatch
	order    []string
}

// Load reads every decodable raster in dir into the palette. Entries
// that fail to decode are skipped and logged; a missing directory or a
// directory yielding zero swatches is an error. Two files normalizing
// to the same base name abort the load rather than shadow each other.
func Load(dir string) (*Palette, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrDirNotFound, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", ErrDirNotFound, dir)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read swatch folder %q: %w", dir, err)
	}

	pal := &Palette{swatches: make(map[string]swatch)}
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		path := filepath.Join(dir, file.Name())
		logger := slog.Default().With("file", path)

		texFile, err := os.Open(path)
		if err != nil {
			logger.Warn("skipping unreadable swatch", "error", err)
			continue
		}

		img, _, err := image.Decode(texFile)
		if cerr := texFile.Close(); cerr != nil {
			logger.Error("could not close swatch file", "error", cerr)
		}
		if err != nil {
			logger.Warn("skipping undecodable swatch", "error", err)
			continue
		}

		name := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
		if _, ok := pal.swatches[name]; ok {
			return nil, fmt.Errorf("%w: %q (from %q)", ErrDuplicateName, name, file.Name())
		}

		texture := normalize(img)
		pal.swatches[name] = swatch{
			texture: texture,
			color:   representativeColor(texture),
		}
		pal.order = append(pal.order, name)
	}

	if len(pal.order) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrEmptyPalette, dir)
	}

	slog.Info("loaded swatch palette", "dir", dir, "swatches", len(pal.order))
	return pal, nil
}

// normalize redraws an image as straight-alpha NRGBA anchored at the
// origin.
func normalize(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == image.Pt(0, 0) {
		return n
	}
	sr := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, sr.Dx(), sr.Dy()))
	draw.Draw(dst, dst.Bounds(), img, sr.Min, draw.Src)
	return dst
}

// representativeColor is the alpha-weighted mean of the texture's RGB
// channels, rounded per channel. A fully transparent texture maps to
// black.
func representativeColor(tex *image.NRGBA) rgb.Color {
	var rSum, gSum, bSum, weightSum float64

	bounds := tex.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := tex.NRGBAAt(x, y)
			w := float64(px.A) / 255
			rSum += float64(px.R) * w
			gSum += float64(px.G) * w
			bSum += float64(px.B) * w
			weightSum += w
		}
	}

	if weightSum == 0 {
		return rgb.Color{}
	}
	return rgb.Color{
		R: uint8(math.Round(rSum / weightSum)),
		G: uint8(math.Round(gSum / weightSum)),
		B: uint8(math.Round(bSum / weightSum)),
	}
}

// Texture returns the stored image for a swatch.
func (p *Palette) Texture(name string) (*image.NRGBA, error) {
	s, ok := p.swatches[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s.texture, nil
}

// Entries returns the insertion-ordered (name, representative color)
// snapshot. Colors are the values cached at load time.
func (p *Palette) Entries() []Entry {
	entries := make([]Entry, 0, len(p.order))
	for _, name := range p.order {
		entries = append(entries, Entry{Name: name, Color: p.swatches[name].color})
	}
	return entries
}

func (p *Palette) Len() int {
	return len(p.order)
}
