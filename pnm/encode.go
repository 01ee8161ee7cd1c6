package pnm

import (
	"bufio"
	"fmt"
	"io"

	"rawpix/simage"
)

// Encode writes img to w as a P5 (gray) or P6 (RGB) file with a max value of
// 255 or 65535. Only the packed pixels of each row are written; stride
// padding never reaches the stream.
func Encode(w io.Writer, img *simage.Image) error {
	if img.Bytes() == nil {
		return simage.ErrReleased
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(headerFor(img).String()); err != nil {
		return fmt.Errorf("%w: writing header: %w", ErrIO, err)
	}

	for y := range img.Height() {
		if _, err := bw.Write(img.RowPixels(y)); err != nil {
			return fmt.Errorf("%w: writing row %d: %w", ErrIO, y, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: flushing: %w", ErrIO, err)
	}
	return nil
}
