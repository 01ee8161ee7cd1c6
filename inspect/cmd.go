package inspect

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"rawpix/config"
	"rawpix/parallel"
	"rawpix/pnm"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

type CLICmd struct {
	Scan   string `help:"Source folder to scan" default:"."`
	Verify bool   `help:"Decode the whole raster of PNM files, not only the header" default:"false"`
	Strict bool   `help:"With --verify, report PNM files with a truncated raster" default:"false"`
}

// counts collects what Run saw, grouped by channel count and orientation.
type counts struct {
	gray, rgb, other    atomic.Uint64
	portrait, landscape atomic.Uint64
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

	return nil
}

func (c *CLICmd) Run(pool *parallel.Pool, conf *config.Config) error {
	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	dec := pnm.Decoder{
		Strict:    c.Strict || conf.Strict,
		MaxPixels: conf.MaxPixels,
	}

	var cnt counts
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		name := filepath.Join(c.Scan, file.Name())
		pool.Submit(func() error {
			logger := slog.Default().With("file", name)
			if err := c.inspect(logger, dec, name, &cnt); err != nil {
				logger.Error("could not inspect image", "error", err)
				return err
			}
			return nil
		})
	}

	stats := pool.Wait()
	slog.Info("stats", "gray", cnt.gray.Load(), "rgb", cnt.rgb.Load(), "other", cnt.other.Load(),
		"portraits", cnt.portrait.Load(), "landscapes", cnt.landscape.Load(),
		"errors", stats.Failed, "total", stats.Total())

	if stats.Failed > 0 {
		return fmt.Errorf("error processing %d files", stats.Failed)
	}
	return nil
}

func (c *CLICmd) inspect(logger *slog.Logger, dec pnm.Decoder, name string, cnt *counts) error {
	img, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("could not open image: %w", err)
	}
	defer func() {
		if closeErr := img.Close(); closeErr != nil {
			logger.Error("could not close image", "error", closeErr)
		}
	}()

	br := bufio.NewReader(img)
	var width, height int
	if magic, err := br.Peek(2); err == nil && (string(magic) == "P5" || string(magic) == "P6") {
		hdr, err := pnm.DecodeConfig(br)
		if err != nil {
			return fmt.Errorf("could not read header: %w", err)
		}
		width, height = hdr.Width, hdr.Height

		if hdr.Format.Channels() == 1 {
			cnt.gray.Add(1)
		} else {
			cnt.rgb.Add(1)
		}
		logger.Info("pnm", "magic", hdr.Magic, "width", hdr.Width, "height", hdr.Height,
			"maxval", hdr.MaxVal, "format", hdr.Format)

		if c.Verify {
			if _, err := img.Seek(0, io.SeekStart); err != nil {
				return fmt.Errorf("could not rewind image: %w", err)
			}
			if _, err := dec.Decode(img); err != nil {
				return fmt.Errorf("could not verify raster: %w", err)
			}
			logger.Debug("verified")
		}
	} else {
		imgConf, imgType, err := image.DecodeConfig(br)
		if err != nil {
			return fmt.Errorf("could not read image: %w", err)
		}
		width, height = imgConf.Width, imgConf.Height

		cnt.other.Add(1)
		logger.Info(imgType, "width", width, "height", height)
	}

	if height > width {
		cnt.portrait.Add(1)
	} else {
		cnt.landscape.Add(1)
	}
	return nil
}
