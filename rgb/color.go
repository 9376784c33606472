// Package rgb holds the color value type and the tuned perceptual
// distance used to rank swatch candidates. The metric is a weighted
// Euclidean base with warmth, saturation and gray-mismatch penalties;
// it deliberately favors keeping warm tones (skin, wood) away from
// neutral grays over minimizing raw channel distance.
package rgb

import (
	"fmt"
	"image/color"
	"math"
)

// Color is an opaque 8-bit RGB value. Alpha travels separately as the
// pixel's own alpha channel where it matters.
type Color struct {
	R, G, B uint8
}

// FromNRGBA strips the alpha off a straight-alpha pixel.
func FromNRGBA(c color.NRGBA) Color {
	return Color{R: c.R, G: c.G, B: c.B}
}

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// Warmth is positive for warm colors (beige, tan, skin) and negative
// for cool ones (blues, cold grays).
func (c Color) Warmth() float64 {
	return (float64(c.R)+float64(c.G))/2 - float64(c.B)
}

// Saturation is the channel spread; 0 for pure grays.
func (c Color) Saturation() int {
	return int(max(c.R, c.G, c.B)) - int(min(c.R, c.G, c.B))
}

// Brightness is the plain channel mean.
func (c Color) Brightness() float64 {
	return (float64(c.R) + float64(c.G) + float64(c.B)) / 3
}

// Distance is the tuned perceptual metric. It is asymmetric: src must
// be the source pixel color and cand the candidate swatch color, since
// the gray-mismatch penalty only inspects src for "looks like a skin
// tone" and cand for "is a neutral gray".
func Distance(src, cand Color) float64 {
	rMean := (float64(src.R) + float64(cand.R)) / 2
	dr := float64(src.R) - float64(cand.R)
	dg := float64(src.G) - float64(cand.G)
	db := float64(src.B) - float64(cand.B)

	// Red sensitivity shifts with the average red level.
	wr := 2 + rMean/256
	wb := 2 + (255-rMean)/256
	d := math.Sqrt(wr*dr*dr + 4.0*dg*dg + wb*db*db)

	srcWarmth := src.Warmth()
	candWarmth := cand.Warmth()
	warmthDiff := math.Abs(srcWarmth - candWarmth)
	if (srcWarmth > 5 && candWarmth < -5) || (srcWarmth < -5 && candWarmth > 5) {
		// Clearly warm matched against clearly cool.
		d += 0.8 * warmthDiff
	} else {
		d += 0.2 * warmthDiff
	}

	srcSat := src.Saturation()
	candSat := cand.Saturation()
	d += 0.5 * math.Abs(float64(srcSat-candSat))

	// Medium-brightness saturated sources (skin tones) must not land on
	// gray, cool swatches even when those are closer channel-wise.
	if b := src.Brightness(); b > 50 && b < 200 && srcSat > 15 {
		if candSat < 15 && candWarmth < 10 {
			d += 70.0
		}
	}

	return d
}

// SimpleDistance is the plain Euclidean metric, kept for diagnostics
// and comparison against Distance.
func SimpleDistance(a, b Color) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
