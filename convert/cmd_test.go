package convert

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"skinproc/parallel"
	"skinproc/swatch"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int, px func(x, y int) color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, px(x, y))
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

// writeTextureDir fills a swatch folder with size×size solid textures.
func writeTextureDir(t *testing.T, size int, colors map[string]color.NRGBA) string {
	t.Helper()
	dir := t.TempDir()
	for name, c := range colors {
		writePNG(t, filepath.Join(dir, name+".png"), size, size,
			func(int, int) color.NRGBA { return c })
	}
	return dir
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestLoadInput(t *testing.T) {
	dir := t.TempDir()

	t.Run("not an image", func(t *testing.T) {
		path := filepath.Join(dir, "junk.png")
		require.NoError(t, os.WriteFile(path, []byte("junk"), 0o600))

		c := &CLICmd{conf: &OpParams{Input: path}, width: 64, height: 64}
		_, err := c.loadInput()
		assert.ErrorIs(t, err, ErrInvalidImage)
	})

	t.Run("wrong dimensions", func(t *testing.T) {
		path := filepath.Join(dir, "small.png")
		writePNG(t, path, 32, 32, func(int, int) color.NRGBA { return color.NRGBA{A: 255} })

		c := &CLICmd{conf: &OpParams{Input: path}, width: 64, height: 64}
		_, err := c.loadInput()
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	})

	t.Run("valid skin", func(t *testing.T) {
		path := filepath.Join(dir, "skin.png")
		writePNG(t, path, 64, 64, func(int, int) color.NRGBA { return color.NRGBA{R: 9, A: 255} })

		c := &CLICmd{conf: &OpParams{Input: path}, width: 64, height: 64}
		src, err := c.loadInput()
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 64, 64), src.Bounds())
	})
}

func TestCheckTextureSizes(t *testing.T) {
	dir := writeTextureDir(t, 4, map[string]color.NRGBA{"stone": {R: 1, A: 255}})
	pal, err := swatch.Load(dir)
	require.NoError(t, err)

	assert.NoError(t, checkTextureSizes(pal, 4))
	assert.ErrorIs(t, checkTextureSizes(pal, 16), ErrTextureSize)
}

func TestResolveOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")

	assert.Equal(t, path, resolveOutput(path))

	require.NoError(t, os.WriteFile(path, nil, 0o600))
	next := resolveOutput(path)
	assert.Equal(t, filepath.Join(dir, "out_1.png"), next)

	require.NoError(t, os.WriteFile(next, nil, 0o600))
	assert.Equal(t, filepath.Join(dir, "out_2.png"), resolveOutput(path))
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "canvas.png")

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	require.NoError(t, save(img, dest))

	out := decodePNG(t, dest)
	assert.Equal(t, image.Rect(0, 0, 8, 8), out.Bounds())

	// No temp file debris.
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestRunSkin(t *testing.T) {
	texDir := writeTextureDir(t, 16, map[string]color.NRGBA{
		"a_red":   {R: 255, A: 255},
		"b_green": {G: 255, A: 255},
	})

	workDir := t.TempDir()
	input := filepath.Join(workDir, "skin.png")
	writePNG(t, input, 64, 64, func(x, y int) color.NRGBA {
		if x < 32 {
			return color.NRGBA{R: 250, G: 5, B: 5, A: 255}
		}
		return color.NRGBA{R: 5, G: 250, B: 5, A: 255}
	})

	output := filepath.Join(workDir, "out.png")
	c := &CLICmd{
		conf: &OpParams{
			Input:    input,
			Output:   output,
			Textures: texDir,
			Scale:    16,
			Mode:     ModeNearest,
		},
		width:  64,
		height: 64,
	}

	pool := parallel.Start(2)
	require.NoError(t, c.Run(pool.Do, pool.Wait))

	out := decodePNG(t, output)
	assert.Equal(t, 1024, out.Bounds().Dx())
	assert.Equal(t, 1024, out.Bounds().Dy())

	r, g, b, a := out.At(8, 8).RGBA()
	assert.Equal(t, []uint32{0xFFFF, 0, 0, 0xFFFF}, []uint32{r, g, b, a})
	r, g, b, a = out.At(1000, 8).RGBA()
	assert.Equal(t, []uint32{0, 0xFFFF, 0, 0xFFFF}, []uint32{r, g, b, a})
}

func TestRunCapeUnique(t *testing.T) {
	texDir := writeTextureDir(t, 16, map[string]color.NRGBA{
		"a_red":   {R: 255, A: 255},
		"b_green": {G: 255, A: 255},
		"c_blue":  {B: 255, A: 255},
	})

	workDir := t.TempDir()
	input := filepath.Join(workDir, "cape.png")
	// Two colors, red everywhere except one green pixel; one row is
	// transparent.
	writePNG(t, input, 64, 32, func(x, y int) color.NRGBA {
		switch {
		case y == 0:
			return color.NRGBA{A: 0}
		case x == 0 && y == 1:
			return color.NRGBA{G: 250, A: 255}
		default:
			return color.NRGBA{R: 250, A: 255}
		}
	})

	output := filepath.Join(workDir, "out.png")
	c := &CLICmd{
		conf: &OpParams{
			Input:    input,
			Output:   output,
			Textures: texDir,
			Scale:    16,
			Mode:     ModeUnique,
		},
		width:  64,
		height: 32,
	}

	pool := parallel.Start(1)
	require.NoError(t, c.Run(pool.Do, pool.Wait))

	out := decodePNG(t, output)
	assert.Equal(t, 1024, out.Bounds().Dx())
	assert.Equal(t, 512, out.Bounds().Dy())

	// Transparent input row stays transparent.
	_, _, _, a := out.At(8, 8).RGBA()
	assert.Zero(t, a)
	// Green pixel got its own swatch even though red was assigned first.
	r, g, _, _ := out.At(8, 24).RGBA()
	assert.Equal(t, []uint32{0, 0xFFFF}, []uint32{r, g})
}

func TestValidateViaKong(t *testing.T) {
	texDir := writeTextureDir(t, 16, map[string]color.NRGBA{"stone": {R: 1, A: 255}})
	dir := t.TempDir()
	skinInput := filepath.Join(dir, "skin.png")
	writePNG(t, skinInput, 64, 64, func(int, int) color.NRGBA { return color.NRGBA{A: 255} })
	capeInput := filepath.Join(dir, "cape.png")
	writePNG(t, capeInput, 64, 32, func(int, int) color.NRGBA { return color.NRGBA{A: 255} })

	newParser := func(c *CLICmd) *kong.Kong {
		parser, err := kong.New(c)
		require.NoError(t, err)
		return parser
	}

	t.Run("skin defaults", func(t *testing.T) {
		c := &CLICmd{}
		_, err := newParser(c).Parse([]string{"skin", "--input", skinInput, "--textures", texDir})
		require.NoError(t, err)
		assert.Equal(t, ModeNearest, c.conf.Mode)
		assert.Equal(t, 64, c.height)
		assert.Equal(t, "minecraft_skin_output.png", c.conf.Output)
		assert.Equal(t, 16, c.conf.Scale)
	})

	t.Run("cape defaults", func(t *testing.T) {
		c := &CLICmd{}
		_, err := newParser(c).Parse([]string{"cape", "--input", capeInput, "--textures", texDir})
		require.NoError(t, err)
		assert.Equal(t, ModeUnique, c.conf.Mode)
		assert.Equal(t, 32, c.height)
		assert.Equal(t, "minecraft_cape_output.png", c.conf.Output)
	})

	t.Run("mode override", func(t *testing.T) {
		c := &CLICmd{}
		_, err := newParser(c).Parse([]string{"cape", "--input", capeInput, "--mode", "nearest"})
		require.NoError(t, err)
		assert.Equal(t, ModeNearest, c.conf.Mode)
	})

	t.Run("wrong dimensions for mode", func(t *testing.T) {
		c := &CLICmd{}
		_, err := newParser(c).Parse([]string{"cape", "--input", skinInput, "--textures", texDir})
		require.Error(t, err)
		assert.ErrorContains(t, err, "invalid input dimensions")
	})

	t.Run("missing input", func(t *testing.T) {
		c := &CLICmd{}
		_, err := newParser(c).Parse([]string{"skin", "--input", filepath.Join(dir, "no.png")})
		assert.Error(t, err)
	})
}
