package pnm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"rawpix/simage"
)

const (
	magicGray = "P5"
	magicRGB  = "P6"
)

// Header is the text preamble of a raw PNM file.
type Header struct {
	Magic  string // "P5" or "P6"
	Width  int
	Height int
	MaxVal int
	Format simage.Format
}

// headerFor returns the header Encode writes for img.
func headerFor(img *simage.Image) Header {
	h := Header{
		Magic:  magicGray,
		Width:  img.Width(),
		Height: img.Height(),
		MaxVal: int(img.Format().MaxValue()),
		Format: img.Format(),
	}
	if img.Format().Channels() == 3 {
		h.Magic = magicRGB
	}
	return h
}

func (h Header) String() string {
	return fmt.Sprintf("%s\n%d %d\n%d\n", h.Magic, h.Width, h.Height, h.MaxVal)
}

// formatFor derives the pixel format from the magic token and maxval.
func formatFor(magic string, maxval int) (simage.Format, error) {
	if maxval <= 0 || maxval > 0xFFFF {
		return 0, fmt.Errorf("%w: wrong max value %d", ErrFormat, maxval)
	}
	wide := maxval > 0xFF

	switch magic {
	case magicGray:
		if wide {
			return simage.Gray16, nil
		}
		return simage.Gray8, nil
	case magicRGB:
		if wide {
			return simage.RGB48, nil
		}
		return simage.RGB24, nil
	}
	return 0, fmt.Errorf("%w: unsupported magic number %q", ErrFormat, magic)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// headerReader tokenizes the header of a raw PNM stream.
type headerReader struct {
	r *bufio.Reader
}

// skip consumes whitespace and comments up to the next token.
func (h *headerReader) skip() error {
	for {
		c, err := h.r.ReadByte()
		if err != nil {
			return err
		}

		switch {
		case c == '#':
			if err := h.skipLine(); err != nil {
				return err
			}
		case isSpace(c):
		default:
			return h.r.UnreadByte()
		}
	}
}

func (h *headerReader) skipLine() error {
	for {
		_, err := h.r.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}

// fail maps a read error met while looking for what to a codec error.
func fail(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: cannot find %s", ErrFormat, what)
	}
	return fmt.Errorf("%w: reading %s: %w", ErrIO, what, err)
}

func (h *headerReader) magic() (string, error) {
	if err := h.skip(); err != nil {
		return "", fail(err, "the magic number")
	}

	var buf [2]byte
	if _, err := io.ReadFull(h.r, buf[:]); err != nil {
		return "", fail(err, "the magic number")
	}

	magic := string(buf[:])
	if magic != magicGray && magic != magicRGB {
		return "", fmt.Errorf("%w: unsupported magic number %q", ErrFormat, magic)
	}
	return magic, nil
}

// value parses an unsigned decimal token. The whitespace byte ending the
// token is consumed; any other terminator is left for the next token. With
// last set, a terminator other than whitespace is an error: a single
// whitespace byte separates the header from the raster.
func (h *headerReader) value(what string, last bool) (int, error) {
	if err := h.skip(); err != nil {
		return 0, fail(err, what)
	}

	n, digits := 0, 0
	for {
		c, err := h.r.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return 0, fail(err, what)
		}

		if c < '0' || c > '9' {
			if isSpace(c) {
				break
			}
			if last && digits > 0 {
				return 0, fmt.Errorf("%w: %s not followed by whitespace", ErrFormat, what)
			}
			if err := h.r.UnreadByte(); err != nil {
				return 0, fail(err, what)
			}
			break
		}

		if n > (math.MaxInt-9)/10 {
			return 0, fmt.Errorf("%w: %s overflows", ErrFormat, what)
		}
		n = n*10 + int(c-'0')
		digits++
	}

	if digits == 0 {
		return 0, fmt.Errorf("%w: invalid %s", ErrFormat, what)
	}
	return n, nil
}

func readHeader(r *bufio.Reader) (Header, error) {
	h := &headerReader{r: r}

	var (
		hdr Header
		err error
	)
	if hdr.Magic, err = h.magic(); err != nil {
		return Header{}, err
	}
	if hdr.Width, err = h.value("width", false); err != nil {
		return Header{}, err
	}
	if hdr.Height, err = h.value("height", false); err != nil {
		return Header{}, err
	}
	if hdr.MaxVal, err = h.value("max value", true); err != nil {
		return Header{}, err
	}
	if hdr.Format, err = formatFor(hdr.Magic, hdr.MaxVal); err != nil {
		return Header{}, err
	}
	return hdr, nil
}
