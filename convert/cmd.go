// Package convert implements the skin and cape conversion commands:
// load the swatch palette, match every distinct source color to a
// swatch, composite the enlarged block-art canvas and save it as PNG.
package convert

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"

	"skinproc/match"
	"skinproc/parallel"
	"skinproc/render"
	"skinproc/swatch"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidImage      = errors.New("invalid input image")
	ErrInvalidDimensions = errors.New("invalid input dimensions")
	ErrTextureSize       = errors.New("swatch texture size mismatch")
	ErrProcessing        = errors.New("processing failure")
)

const (
	ModeNearest = "nearest"
	ModeUnique  = "unique"
)

type OpParams struct {
	Input    string `help:"Input image file" short:"i" required:""`
	Output   string `help:"Output PNG file. A numeric suffix is added if it already exists." short:"o"`
	Textures string `help:"Folder of swatch block textures" short:"b" default:"block"`
	Scale    int    `help:"Output block size in pixels. Swatch textures must be exactly this size." default:"16"`
	Mode     string `help:"Swatch assignment mode: nearest or unique (default: nearest for skins, unique for capes)"`
}

type CLICmd struct {
	Skin struct {
		OpParams
	} `cmd:"" help:"Convert a 64x64 skin. Swatches may be reused across colors."`
	Cape struct {
		OpParams
	} `cmd:"" help:"Convert a 64x32 cape. Each color gets its own swatch while they last."`

	conf          *OpParams
	width, height int
	defaultOut    string
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	switch kctx.Selected().Name {
	case "skin":
		c.conf = &c.Skin.OpParams
		c.width, c.height = 64, 64
		c.defaultOut = "minecraft_skin_output.png"
		if c.conf.Mode == "" {
			c.conf.Mode = ModeNearest
		}
	case "cape":
		c.conf = &c.Cape.OpParams
		c.width, c.height = 64, 32
		c.defaultOut = "minecraft_cape_output.png"
		if c.conf.Mode == "" {
			c.conf.Mode = ModeUnique
		}
	default:
		return nil
	}

	if c.conf.Mode != ModeNearest && c.conf.Mode != ModeUnique {
		return fmt.Errorf("invalid assignment mode: %q", c.conf.Mode)
	}

	texDir, err := filepath.Abs(c.conf.Textures)
	if err != nil {
		return fmt.Errorf("invalid textures path %q: %w", c.conf.Textures, err)
	}
	c.conf.Textures = texDir

	if c.conf.Scale < 1 {
		return fmt.Errorf("invalid scale: %d", c.conf.Scale)
	}

	if err := c.checkInputHeader(); err != nil {
		return err
	}

	if c.conf.Output == "" {
		c.conf.Output = c.defaultOut
	}

	return nil
}

// checkInputHeader enforces the mode's dimension contract from the
// image header alone, before any palette work happens.
func (c *CLICmd) checkInputHeader() error {
	imgFile, err := os.Open(c.conf.Input)
	if err != nil {
		return fmt.Errorf("could not open input %q: %w", c.conf.Input, err)
	}

	imgConf, _, err := image.DecodeConfig(imgFile)
	if cerr := imgFile.Close(); cerr != nil {
		slog.Error("could not close input file", "file", c.conf.Input, "error", cerr)
	}
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidImage, c.conf.Input, err)
	}

	if imgConf.Width != c.width || imgConf.Height != c.height {
		return fmt.Errorf("%w: got %dx%d, expected %dx%d",
			ErrInvalidDimensions, imgConf.Width, imgConf.Height, c.width, c.height)
	}
	return nil
}

func (c *CLICmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	logger := slog.Default().With("input", c.conf.Input, "mode", c.conf.Mode)

	pal, err := swatch.Load(c.conf.Textures)
	if err != nil {
		return err
	}
	if err = checkTextureSizes(pal, c.conf.Scale); err != nil {
		return err
	}

	src, err := c.loadInput()
	if err != nil {
		return err
	}

	freq := match.CountColors(src)
	logger.Info("analyzed source", "colors", len(freq), "swatches", pal.Len())

	var asg match.Assignment
	switch c.conf.Mode {
	case ModeUnique:
		asg = match.AssignUnique(freq, pal)
		wait(true)
	default:
		asg = match.AssignNearest(freq, pal, worker, wait)
	}
	logger.Info("assigned swatches", "assigned", len(asg), "unmapped", len(freq)-len(asg))

	canvas, err := render.Render(src, asg, pal, c.conf.Scale)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	dest := resolveOutput(c.conf.Output)
	if err = save(canvas, dest); err != nil {
		return err
	}

	logger.Info("stats", "colors", len(freq), "assigned", len(asg),
		"width", canvas.Bounds().Dx(), "height", canvas.Bounds().Dy(), "output", dest)
	return nil
}

// loadInput decodes the source bitmap, enforces the mode's exact
// dimension contract and normalizes to straight-alpha NRGBA.
func (c *CLICmd) loadInput() (*image.NRGBA, error) {
	f, err := os.Open(c.conf.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidImage, c.conf.Input, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Error("could not close input file", "file", c.conf.Input, "error", cerr)
		}
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidImage, c.conf.Input, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != c.width || bounds.Dy() != c.height {
		return nil, fmt.Errorf("%w: got %dx%d, expected %dx%d",
			ErrInvalidDimensions, bounds.Dx(), bounds.Dy(), c.width, c.height)
	}

	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == image.Pt(0, 0) {
		return n, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst, nil
}

func checkTextureSizes(pal *swatch.Palette, scale int) error {
	for _, entry := range pal.Entries() {
		tex, err := pal.Texture(entry.Name)
		if err != nil {
			return err
		}
		if tex.Bounds().Dx() != scale || tex.Bounds().Dy() != scale {
			return fmt.Errorf("%w: %q is %dx%d, expected %dx%d", ErrTextureSize,
				entry.Name, tex.Bounds().Dx(), tex.Bounds().Dy(), scale, scale)
		}
	}
	return nil
}

// resolveOutput keeps existing files intact by appending _1, _2, ...
// before the extension until a free name is found.
func resolveOutput(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}

	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}
