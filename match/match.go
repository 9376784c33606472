// Package match maps distinct source colors to swatch names. Nearest
// mode is an independent minimum-distance lookup per color; unique
// mode greedily hands each swatch to at most one color, most frequent
// colors first.
package match

import (
	"image"
	"image/color"
	"slices"

	"skinproc/parallel"
	"skinproc/rgb"
	"skinproc/swatch"
)

// OpaqueThreshold is the alpha below which a pixel counts as
// transparent and is never matched.
const OpaqueThreshold = 128

// Assignment maps each distinct opaque source color to its swatch
// name. It is scoped to a single conversion; colors left unmapped in
// unique mode are simply absent.
type Assignment map[rgb.Color]string

// Nearest returns the palette entry with the minimum perceptual
// distance to the pixel color, false for transparent pixels. Ties keep
// the earlier entry in palette order.
func Nearest(px color.NRGBA, pal *swatch.Palette) (string, bool) {
	if px.A < OpaqueThreshold {
		return "", false
	}

	src := rgb.FromNRGBA(px)
	best := ""
	bestDist := 0.0
	for _, entry := range pal.Entries() {
		d := rgb.Distance(src, entry.Color)
		if best == "" || d < bestDist {
			best, bestDist = entry.Name, d
			if d == 0 {
				break
			}
		}
	}
	return best, best != ""
}

// Frequency counts how often each distinct opaque color occurs in one
// source bitmap.
type Frequency map[rgb.Color]int

// CountColors tallies the opaque pixels of src.
func CountColors(src *image.NRGBA) Frequency {
	freq := make(Frequency)
	bounds := src.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := src.NRGBAAt(x, y)
			if px.A < OpaqueThreshold {
				continue
			}
			freq[rgb.FromNRGBA(px)]++
		}
	}
	return freq
}

// SortedColors orders the table's colors by descending count, then by
// channel values so equal counts still sort reproducibly.
func (f Frequency) SortedColors() []rgb.Color {
	colors := make([]rgb.Color, 0, len(f))
	for c := range f {
		colors = append(colors, c)
	}
	slices.SortFunc(colors, func(a, b rgb.Color) int {
		if f[a] != f[b] {
			return f[b] - f[a]
		}
		if a.R != b.R {
			return int(a.R) - int(b.R)
		}
		if a.G != b.G {
			return int(a.G) - int(b.G)
		}
		return int(a.B) - int(b.B)
	})
	return colors
}

// AssignNearest resolves every distinct color of the table to its
// nearest swatch. Each color is matched exactly once, so the returned
// Assignment doubles as the lookup cache for rendering; lookups are
// independent and run on the pool workers, drained before the results
// are collected.
func AssignNearest(freq Frequency, pal *swatch.Palette, worker parallel.WorkerFunc, wait parallel.WaitFunc) Assignment {
	colors := freq.SortedColors()
	names := make([]string, len(colors))

	for i, c := range colors {
		worker(func() {
			names[i], _ = Nearest(c.NRGBA(), pal)
		})
	}
	wait(true)

	asg := make(Assignment, len(colors))
	for i, c := range colors {
		if names[i] != "" {
			asg[c] = names[i]
		}
	}
	return asg
}

// AssignUnique hands out each swatch at most once. Colors are
// processed most frequent first; each takes the closest still-unused
// swatch. Once the palette is exhausted the remaining colors stay
// unmapped, which renders as transparent blocks. Greedy, not a
// minimum-cost matching: locally optimal per step, injective overall.
func AssignUnique(freq Frequency, pal *swatch.Palette) Assignment {
	asg := make(Assignment, min(len(freq), pal.Len()))
	used := make(map[string]bool, pal.Len())
	entries := pal.Entries()

	for _, c := range freq.SortedColors() {
		if len(used) == len(entries) {
			break
		}

		best := ""
		bestDist := 0.0
		for _, entry := range entries {
			if used[entry.Name] {
				continue
			}
			d := rgb.Distance(c, entry.Color)
			if best == "" || d < bestDist {
				best, bestDist = entry.Name, d
			}
		}
		asg[c] = best
		used[best] = true
	}
	return asg
}
