package simage

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

// Word is the allocation unit in bytes. Every stride is a multiple of Word and
// every region view starts on a Word boundary of its store.
const Word = bits.UintSize / 8

// store is shared between an owning Image and all of its region views.
type store struct {
	buf []byte
}

// Image is a pixel buffer whose rows start every Stride bytes. It either owns
// its store or is a region view sharing the store of another Image.
type Image struct {
	// store holds the pixels. The pixel at (x, y) starts at
	// buf[offset + y*stride + x*BytesPerPixel].
	store  *store
	offset int
	owner  bool

	width  int
	height int
	stride int
	format Format
}

// Stride returns the row size in bytes a width x format image gets: the
// packed row rounded up to a multiple of Word.
func Stride(width int, format Format) (int, error) {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return 0, fmt.Errorf("%w: unknown pixel format %d", ErrAllocation, int(format))
	}
	if width <= 0 {
		return 0, fmt.Errorf("%w: invalid width %d", ErrAllocation, width)
	}
	if width > (math.MaxInt-Word)/bpp {
		return 0, fmt.Errorf("%w: row of %d pixels overflows", ErrAllocation, width)
	}

	total := width * bpp
	blocks := total / Word
	if total%Word != 0 {
		blocks++
	}
	return blocks * Word, nil
}

func allocate(width, height int, format Format) (img *Image, err error) {
	stride, err := Stride(width, format)
	if err != nil {
		return nil, err
	}
	if height <= 0 {
		return nil, fmt.Errorf("%w: invalid height %d", ErrAllocation, height)
	}
	if height > math.MaxInt/stride {
		return nil, fmt.Errorf("%w: %dx%d %s overflows", ErrAllocation, width, height, format)
	}

	// make panics with a runtime error when the length exceeds what the
	// allocator can address.
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("%w: %dx%d %s: %v", ErrAllocation, width, height, format, r)
		}
	}()

	return &Image{
		store:  &store{buf: make([]byte, stride*height)},
		owner:  true,
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// New allocates a width x height image. The pixel contents are unspecified;
// use NewZeroed when they must start at zero.
//
// Sizes the runtime cannot represent fail with ErrAllocation, but running out
// of memory is fatal to the process. Callers sizing images from untrusted
// input must bound width*height first, as pnm.Decoder does.
func New(width, height int, format Format) (*Image, error) {
	return allocate(width, height, format)
}

// NewZeroed allocates a width x height image with every byte of the store,
// padding included, set to zero.
func NewZeroed(width, height int, format Format) (*Image, error) {
	img, err := allocate(width, height, format)
	if err != nil {
		return nil, err
	}
	img.Zero()
	return img, nil
}

// Copy returns a new owning image with the same shape and pixels. Copying an
// owning image duplicates the whole store, padding included, so the clone is
// bit-identical. A region view is copied row by row into a fresh store.
func (img *Image) Copy() (*Image, error) {
	if img.released() {
		return nil, ErrReleased
	}

	dst, err := allocate(img.width, img.height, img.format)
	if err != nil {
		return nil, err
	}

	if img.owner {
		copy(dst.store.buf, img.store.buf)
		return dst, nil
	}

	for y := range img.height {
		copy(dst.RowPixels(y), img.RowPixels(y))
	}
	return dst, nil
}

// Release drops the store. Only the image returned by New, NewZeroed, Copy or
// a decoder owns its store; releasing a view fails with ErrNotOwner and
// leaves the store untouched. Views of a released image become unusable.
func (img *Image) Release() error {
	if !img.owner {
		return ErrNotOwner
	}
	if img.store.buf == nil {
		return ErrReleased
	}
	img.store.buf = nil
	return nil
}

func (img *Image) released() bool {
	return img.store == nil || img.store.buf == nil
}

// IsView reports whether img is a region view of another image.
func (img *Image) IsView() bool {
	return !img.owner
}

// Zero clears the image. An owning image has its whole store cleared,
// padding included. A view clears only its own pixels and leaves its
// padding alone, since those bytes are the parent's pixels.
func (img *Image) Zero() {
	if img.released() {
		return
	}
	if img.owner {
		clear(img.store.buf)
		return
	}
	for y := range img.height {
		clear(img.RowPixels(y))
	}
}

func (img *Image) Width() int {
	return img.width
}

func (img *Image) Height() int {
	return img.height
}

// Stride is the distance in bytes between the starts of adjacent rows.
func (img *Image) Stride() int {
	return img.stride
}

func (img *Image) BytesPerPixel() int {
	return img.format.BytesPerPixel()
}

func (img *Image) Format() Format {
	return img.format
}

// Bytes returns the store starting at the image origin. For a view it ends
// at the last byte of the view's bottom row stride, or the end of the store.
func (img *Image) Bytes() []byte {
	if img.released() {
		return nil
	}
	end := min(img.offset+img.stride*img.height, len(img.store.buf))
	return img.store.buf[img.offset:end:end]
}

// Row returns the stride bytes of row y, padding included. For the bottom
// rows of a view the slice stops at the end of the shared store.
// It returns nil when y is out of range or the store was released.
func (img *Image) Row(y int) []byte {
	if y < 0 || y >= img.height || img.released() {
		return nil
	}
	start := img.offset + y*img.stride
	end := min(start+img.stride, len(img.store.buf))
	return img.store.buf[start:end:end]
}

// RowPixels returns only the packed pixels of row y, Width()*BytesPerPixel()
// bytes, excluding padding.
func (img *Image) RowPixels(y int) []byte {
	if y < 0 || y >= img.height || img.released() {
		return nil
	}
	start := img.offset + y*img.stride
	end := start + img.width*img.format.BytesPerPixel()
	return img.store.buf[start:end:end]
}

func (img *Image) pixel(x, y int) ([]byte, error) {
	if img.released() {
		return nil, ErrReleased
	}
	if x < 0 || x >= img.width || y < 0 || y >= img.height {
		return nil, fmt.Errorf("%w: pixel (%d, %d) in %dx%d image", ErrOutOfBounds, x, y, img.width, img.height)
	}
	bpp := img.format.BytesPerPixel()
	start := img.offset + y*img.stride + x*bpp
	return img.store.buf[start : start+bpp : start+bpp], nil
}

// SetPixel packs v into the pixel at (x, y). Gray8 keeps the low 8 bits,
// Gray16 the low 16. RGB24 takes R, G, B from bits 23-16, 15-8 and 7-0; RGB48
// from bits 47-32, 31-16 and 15-0. Channels are stored big-endian.
func (img *Image) SetPixel(x, y int, v uint64) error {
	p, err := img.pixel(x, y)
	if err != nil {
		return err
	}

	switch img.format {
	case Gray8:
		p[0] = byte(v)
	case Gray16:
		binary.BigEndian.PutUint16(p, uint16(v))
	case RGB24:
		p[0] = byte(v >> 16)
		p[1] = byte(v >> 8)
		p[2] = byte(v)
	case RGB48:
		binary.BigEndian.PutUint16(p[0:], uint16(v>>32))
		binary.BigEndian.PutUint16(p[2:], uint16(v>>16))
		binary.BigEndian.PutUint16(p[4:], uint16(v))
	}
	return nil
}

// Pixel unpacks the pixel at (x, y) using the layout described in SetPixel.
func (img *Image) Pixel(x, y int) (uint64, error) {
	p, err := img.pixel(x, y)
	if err != nil {
		return 0, err
	}

	switch img.format {
	case Gray8:
		return uint64(p[0]), nil
	case Gray16:
		return uint64(binary.BigEndian.Uint16(p)), nil
	case RGB24:
		return uint64(p[0])<<16 | uint64(p[1])<<8 | uint64(p[2]), nil
	case RGB48:
		return uint64(binary.BigEndian.Uint16(p[0:]))<<32 |
			uint64(binary.BigEndian.Uint16(p[2:]))<<16 |
			uint64(binary.BigEndian.Uint16(p[4:])), nil
	}
	return 0, nil
}

// Region returns a view of the width x height rectangle whose top-left pixel
// is (left, top). The view shares the store with img, so writes through
// either are visible through both, and it never owns the store.
//
// The view origin must fall on a Word boundary of the store: top*Stride() +
// left*BytesPerPixel() must be a multiple of Word, otherwise ErrUnaligned is
// returned. The requested rectangle is never adjusted.
func (img *Image) Region(top, left, width, height int) (*Image, error) {
	if img.released() {
		return nil, ErrReleased
	}
	if top < 0 || left < 0 || width <= 0 || height <= 0 ||
		top > img.height-height || left > img.width-width {
		return nil, fmt.Errorf("%w: region %dx%d at (%d, %d) in %dx%d image",
			ErrOutOfBounds, width, height, left, top, img.width, img.height)
	}

	n := top*img.stride + left*img.format.BytesPerPixel()
	if n%Word != 0 {
		return nil, fmt.Errorf("%w: offset %d for region at (%d, %d)", ErrUnaligned, n, left, top)
	}

	return &Image{
		store:  img.store,
		offset: img.offset + n,
		width:  width,
		height: height,
		stride: img.stride,
		format: img.format,
	}, nil
}
