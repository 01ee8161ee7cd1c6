package pnm

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"rawpix/simage"
)

var (
	// ErrFormat is returned for streams that are not raw P5/P6 files: a bad
	// magic number, an unreadable header token or an out of range max value.
	ErrFormat = errors.New("pnm: invalid format")
	// ErrIO wraps failures of the underlying stream or file.
	ErrIO = errors.New("pnm: i/o error")
	// ErrTruncated is returned by a strict Decoder when the raster ends
	// before the last row.
	ErrTruncated = errors.New("pnm: truncated raster")
)

// DefaultMaxPixels is the pixel limit of a Decoder with a zero MaxPixels.
const DefaultMaxPixels = 1 << 28

// Decoder reads raw PNM images. The zero value is ready to use, follows the
// lax policy of Decode and refuses headers above DefaultMaxPixels.
type Decoder struct {
	// Strict makes a raster shorter than the header announces an error
	// instead of returning the rows read so far.
	Strict bool
	// MaxPixels rejects headers announcing more than width*height pixels.
	// Zero means DefaultMaxPixels, a negative value means no limit.
	MaxPixels int
}

// Decode reads a P5 or P6 image from r using the zero Decoder.
//
// If the raster is cut short, Decode returns the image with the rows that
// could be read and a nil error; the remaining rows are left unspecified.
func Decode(r io.Reader) (*simage.Image, error) {
	return Decoder{}.Decode(r)
}

// DecodeConfig reads only the header from r.
func DecodeConfig(r io.Reader) (Header, error) {
	return readHeader(bufferedReader(r))
}

func (d Decoder) maxPixels() int {
	if d.MaxPixels == 0 {
		return DefaultMaxPixels
	}
	return d.MaxPixels
}

func bufferedReader(r io.Reader) *bufio.Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// Decode reads a P5 or P6 image from r. The header is checked against
// MaxPixels before any pixel memory is allocated.
func (d Decoder) Decode(r io.Reader) (*simage.Image, error) {
	br := bufferedReader(r)

	hdr, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	if limit := d.maxPixels(); limit > 0 && (hdr.Width > limit || hdr.Height > limit/max(hdr.Width, 1)) {
		return nil, fmt.Errorf("cannot allocate %dx%d image: %w: more than %d pixels",
			hdr.Width, hdr.Height, simage.ErrAllocation, limit)
	}

	img, err := simage.New(hdr.Width, hdr.Height, hdr.Format)
	if err != nil {
		return nil, fmt.Errorf("cannot allocate %dx%d image: %w", hdr.Width, hdr.Height, err)
	}

	for y := range hdr.Height {
		if _, err := io.ReadFull(br, img.RowPixels(y)); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: reading row %d: %w", ErrIO, y, err)
			}
			if d.Strict {
				return nil, fmt.Errorf("%w: got %d of %d rows: %w", ErrTruncated, y, hdr.Height, io.ErrUnexpectedEOF)
			}
			return img, nil
		}
	}

	return img, nil
}
