package pnm

import (
	"fmt"
	"os"
	"path/filepath"

	"rawpix/simage"
)

// ReadFile decodes the file at path with the zero Decoder.
func ReadFile(path string) (*simage.Image, error) {
	return Decoder{}.ReadFile(path)
}

// ReadFile decodes the file at path with d.
func (d Decoder) ReadFile(path string) (*simage.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	img, err := d.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", path, err)
	}
	return img, nil
}

// ReadConfigFile reads only the header of the file at path.
func ReadConfigFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	hdr, err := DecodeConfig(f)
	if err != nil {
		return Header{}, fmt.Errorf("could not read header of %q: %w", path, err)
	}
	return hdr, nil
}

// WriteFile encodes img into path. The data goes to a temporary file in the
// same directory that is renamed over path once fully written, so a failed
// write never leaves a partial image behind.
func WriteFile(path string, img *simage.Image) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	out, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: could not create temporary destination for %q: %w", ErrIO, path, err)
	}
	canRename := false
	defer func() {
		if defErr := out.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("%w: could not flush %q: %w", ErrIO, out.Name(), defErr)
		}
		if defErr := out.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("%w: could not close %q: %w", ErrIO, out.Name(), defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(out.Name(), path); defErr != nil {
				err = fmt.Errorf("%w: could not rename to %q: %w", ErrIO, path, defErr)
			}
		}
		if err != nil {
			_ = os.Remove(out.Name())
		}
	}()

	if err = Encode(out, img); err != nil {
		return fmt.Errorf("could not encode %q: %w", path, err)
	}

	canRename = true
	return nil
}
