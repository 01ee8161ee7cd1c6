package convert

import (
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"rawpix/pnm"
	"rawpix/simage"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// outputName swaps the extension of srcName for the one outType uses.
func outputName(srcName, outType string, format simage.Format) string {
	ext := outType
	switch outType {
	case "pnm":
		ext = "ppm"
		if format.Channels() == 1 {
			ext = "pgm"
		}
	case "jpeg":
		ext = "jpg"
	}
	return fmt.Sprintf("%s.%s", srcName[:len(srcName)-len(filepath.Ext(srcName))], ext)
}

func save(img *simage.Image, outType, destDir, srcName string) (err error) {
	destName := outputName(srcName, outType, img.Format())
	destPath := filepath.Join(destDir, destName)

	if outType == "pnm" {
		return pnm.WriteFile(destPath, img)
	}

	outFile, err := os.CreateTemp(destDir, destName+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", destName, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", destName, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), destPath); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", destName, defErr)
			}
		}
		if err != nil {
			_ = os.Remove(outFile.Name())
		}
	}()

	switch outType {
	case "gif":
		err = gif.Encode(outFile, img, nil)
	case "jpeg":
		err = jpeg.Encode(outFile, img, &jpeg.Options{Quality: 100})
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(outFile, img)
	case "bmp":
		err = bmp.Encode(outFile, img)
	case "tiff":
		err = tiff.Encode(outFile, img, &tiff.Options{Compression: tiff.Uncompressed})
	default:
		return fmt.Errorf("unsupported output format: %s", outType)
	}
	if err != nil {
		return fmt.Errorf("could not encode %s destination %q: %w", outType, destName, err)
	}

	canRename = true
	return nil
}
