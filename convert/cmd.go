package convert

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rawpix/config"
	"rawpix/parallel"
	"rawpix/pnm"
	"rawpix/simage"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

type CLICmd struct {
	Scan      string      `help:"Source folder to scan" default:"."`
	Dest      string      `help:"Destination folder for converted pictures. Relative to scan dir if not absolute." default:"converted"`
	Format    string      `help:"Output format. 'same' keeps the input format" enum:"pnm,png,bmp,tiff,gif,jpeg,same" default:"pnm"`
	Depth     int         `help:"Bits per channel (8 or 16), 0 to follow the source" default:"0"`
	Gray      bool        `help:"Convert to grayscale" default:"false"`
	Region    string      `help:"Only keep the top,left,width,height sub-rectangle. The origin must be word aligned in the decoded buffer" placeholder:"T,L,W,H"`
	Strict    bool        `help:"Reject PNM files with a truncated raster" default:"false"`
	Resize    bool        `help:"Resize image" default:"false" group:"resize"`
	Width     int         `help:"Max width" group:"resize"`
	Height    int         `help:"Max height" group:"resize"`
	Crop      bool        `help:"Crop image to maintain requested aspect ratio" default:"false" group:"resize"`
	Fill      string      `help:"If given and not cropping, fill the background with this color to keep the destination aspect ratio" group:"resize"`
	FillColor color.Color `kong:"-"`
	Rect      *[4]int     `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if c.Depth != 0 && c.Depth != 8 && c.Depth != 16 {
		return fmt.Errorf("invalid depth: %d", c.Depth)
	}

	if c.Resize {
		switch {
		case c.Width < 0:
			return fmt.Errorf("invalid resize width: %d", c.Width)
		case c.Height < 0:
			return fmt.Errorf("invalid resize height: %d", c.Height)
		case c.Width == 0 && c.Height == 0:
			return fmt.Errorf("no resize dimensions given")
		}
	}

	if !c.Crop && c.Fill != "" {
		if c.FillColor, err = parseHexColor(c.Fill); err != nil {
			return err
		}
	}

	if c.Region != "" {
		if c.Rect, err = parseRegion(c.Region); err != nil {
			return err
		}
	}

	return nil
}

func (c *CLICmd) Run(pool *parallel.Pool, conf *config.Config) error {
	if err := os.MkdirAll(c.Dest, 0755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	dec := pnm.Decoder{
		Strict:    c.Strict || conf.Strict,
		MaxPixels: conf.MaxPixels,
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		fileName := file.Name()
		pool.Submit(func() error {
			filePath := filepath.Join(c.Scan, fileName)
			logger := slog.Default().With("file", filePath)

			if err := c.convert(logger, dec, filePath, fileName); err != nil {
				logger.Error("could not convert image", "error", err)
				return err
			}
			return nil
		})
	}

	stats := pool.Wait()
	slog.Info("stats", "processed", stats.Processed, "errors", stats.Failed, "total", stats.Total())

	if stats.Failed > 0 {
		return fmt.Errorf("error processing %d files", stats.Failed)
	}
	return nil
}

func (c *CLICmd) convert(logger *slog.Logger, dec pnm.Decoder, filePath, fileName string) error {
	src, srcType, err := decodeFile(dec, filePath)
	if err != nil {
		return err
	}
	logger.Debug("decoded", "type", srcType, "width", src.Bounds().Dx(), "height", src.Bounds().Dy())

	format := targetFormat(src, c.Gray, c.Depth)
	img, err := toBuffer(src, format)
	if err != nil {
		return fmt.Errorf("could not convert to %s: %w", format, err)
	}

	if c.Rect != nil {
		r := c.Rect
		if img, err = img.Region(r[0], r[1], r[2], r[3]); err != nil {
			return fmt.Errorf("could not select region %v: %w", *r, err)
		}
		logger.Debug("selected region", "top", r[0], "left", r[1], "width", r[2], "height", r[3])
	}

	if c.Resize {
		if img, err = resize(logger, img, c.Width, c.Height, c.Crop, c.FillColor); err != nil {
			return fmt.Errorf("could not resize image: %w", err)
		}
	}

	outType := c.Format
	if outType == "same" {
		outType = srcType
		if outType == "webp" {
			outType = "png"
		}
	}
	return save(img, outType, c.Dest, fileName)
}

// decodeFile reads raw PNM files with dec and everything else with the
// decoders registered in the image package.
func decodeFile(dec pnm.Decoder, path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close image", "file", path, "error", closeErr)
		}
	}()

	br := bufio.NewReader(f)
	if magic, err := br.Peek(2); err == nil && (string(magic) == "P5" || string(magic) == "P6") {
		img, err := dec.Decode(br)
		if err != nil {
			return nil, "", fmt.Errorf("could not decode image: %w", err)
		}
		return img, "pnm", nil
	}

	img, imgType, err := image.Decode(br)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image: %w", err)
	}
	return img, imgType, nil
}

// targetFormat picks the buffer format for src. Without overrides it keeps
// the channel count and depth of the source color model.
func targetFormat(src image.Image, gray bool, depth int) simage.Format {
	if img, ok := src.(*simage.Image); ok && !gray && depth == 0 {
		return img.Format()
	}

	switch src.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		gray = true
	}
	wide := depth == 16
	if depth == 0 {
		switch src.ColorModel() {
		case color.Gray16Model, color.RGBA64Model, color.NRGBA64Model:
			wide = true
		}
	}

	switch {
	case gray && wide:
		return simage.Gray16
	case gray:
		return simage.Gray8
	case wide:
		return simage.RGB48
	default:
		return simage.RGB24
	}
}

func toBuffer(src image.Image, format simage.Format) (*simage.Image, error) {
	if img, ok := src.(*simage.Image); ok && img.Format() == format {
		return img, nil
	}
	return simage.FromImage(src, format)
}

func parseRegion(s string) (*[4]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid region %q, should be top,left,width,height", s)
	}

	var r [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid region %q: bad value %q", s, p)
		}
		r[i] = v
	}
	if r[2] == 0 || r[3] == 0 {
		return nil, fmt.Errorf("invalid region %q: empty rectangle", s)
	}
	return &r, nil
}

// parseHexColor accepts #RGB, #RGBA, #RRGGBB and #RRGGBBAA.
func parseHexColor(s string) (color.Color, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return nil, fmt.Errorf("invalid fill color %q, should start with #", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("could not read color %q: %w", s, err)
	}

	switch len(hex) {
	case 3:
		v = v<<4 | 0xF
		fallthrough
	case 4:
		// expand every nibble to a byte
		var wide uint64
		for i := 3; i >= 0; i-- {
			n := (v >> (4 * i)) & 0xF
			wide = wide<<8 | n<<4 | n
		}
		v = wide
	case 6:
		v = v<<8 | 0xFF
	case 8:
	default:
		return nil, fmt.Errorf("invalid fill color %q, should be #RGB, #RGBA, #RRGGBB or #RRGGBBAA", s)
	}

	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
