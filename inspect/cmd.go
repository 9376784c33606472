// Package inspect reports on a swatch folder: per-swatch colors, the
// spread of pairwise perceptual distances and optional color grouping.
// Useful when curating a palette, e.g. to spot near-duplicate swatches
// that unique mode would waste.
package inspect

import (
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"skinproc/rgb"
	"skinproc/swatch"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"
)

type CLICmd struct {
	Textures string `help:"Folder of swatch block textures" short:"b" default:"block"`
	Pairs    int    `help:"Number of closest swatch pairs to list" default:"10"`
	Groups   int    `help:"Group representative colors into this many clusters (0 disables)" default:"0"`
}

func (c *CLICmd) Run() error {
	pal, err := swatch.Load(c.Textures)
	if err != nil {
		return err
	}
	entries := pal.Entries()

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tAVG\tDOMINANT\tWARMTH\tSAT")
	for _, entry := range entries {
		tex, err := pal.Texture(entry.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%d\n",
			entry.Name, hex(entry.Color), dominantcolor.Hex(dominantcolor.Find(tex)),
			entry.Color.Warmth(), entry.Color.Saturation())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(entries) > 1 {
		c.reportPairs(entries)
	}
	if c.Groups > 0 {
		if err := c.reportGroups(entries); err != nil {
			return err
		}
	}
	return nil
}

type pair struct {
	a, b string
	dist float64
}

// reportPairs prints the distance distribution over all swatch pairs
// and the closest ones. Near-zero pairs are effectively duplicates.
func (c *CLICmd) reportPairs(entries []swatch.Entry) {
	var dists []float64
	var pairs []pair
	for i, a := range entries {
		for _, b := range entries[i+1:] {
			d := rgb.Distance(a.Color, b.Color)
			dists = append(dists, d)
			pairs = append(pairs, pair{a: a.Name, b: b.Name, dist: d})
		}
	}

	fmt.Printf("\npairwise distance: mean=%.1f stddev=%.1f min=%.1f max=%.1f\n",
		stat.Mean(dists, nil), stat.StdDev(dists, nil),
		slices.Min(dists), slices.Max(dists))

	slices.SortFunc(pairs, func(x, y pair) int {
		switch {
		case x.dist < y.dist:
			return -1
		case x.dist > y.dist:
			return 1
		}
		return 0
	})
	fmt.Printf("\nclosest pairs:\n")
	for _, p := range pairs[:max(0, min(c.Pairs, len(pairs)))] {
		fmt.Printf("  %-30s %-30s %.1f\n", p.a, p.b, p.dist)
	}
}

// reportGroups clusters the representative colors with k-means and
// lists each group's members.
func (c *CLICmd) reportGroups(entries []swatch.Entry) error {
	k := min(c.Groups, len(entries))

	dataset := make(clusters.Observations, 0, len(entries))
	for _, entry := range entries {
		dataset = append(dataset, observation(entry.Color))
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil {
		return fmt.Errorf("could not group palette colors: %w", err)
	}

	groups := make([][]string, len(cc))
	for _, entry := range entries {
		idx := nearestCluster(cc, observation(entry.Color))
		groups[idx] = append(groups[idx], entry.Name)
	}

	fmt.Printf("\ngroups:\n")
	for i, members := range groups {
		center := colorful.Color{R: cc[i].Center[0], G: cc[i].Center[1], B: cc[i].Center[2]}
		fmt.Printf("  %s (%d): %v\n", center.Clamped().Hex(), len(members), members)
	}
	return nil
}

func observation(c rgb.Color) clusters.Coordinates {
	return clusters.Coordinates{
		float64(c.R) / 255,
		float64(c.G) / 255,
		float64(c.B) / 255,
	}
}

func nearestCluster(cc clusters.Clusters, obs clusters.Coordinates) int {
	best, bestDist := 0, 0.0
	for i, cluster := range cc {
		var d float64
		for j, v := range obs {
			dv := v - cluster.Center[j]
			d += dv * dv
		}
		if i == 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func hex(c rgb.Color) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}
