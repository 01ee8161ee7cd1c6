package simage

import "fmt"

// Format is one of the four fixed pixel layouts an Image can hold.
type Format int

const (
	Gray8  Format = iota // 1 byte per pixel
	Gray16               // 2 bytes per pixel, big-endian
	RGB24                // R, G, B, 8 bits each
	RGB48                // R, G, B, 16 bits each, big-endian
)

// BytesPerPixel returns the packed pixel width in bytes, or 0 for an unknown
// format.
func (f Format) BytesPerPixel() int {
	switch f {
	case Gray8:
		return 1
	case Gray16:
		return 2
	case RGB24:
		return 3
	case RGB48:
		return 6
	}
	return 0
}

// Channels returns 1 for gray formats and 3 for RGB formats.
func (f Format) Channels() int {
	switch f {
	case Gray8, Gray16:
		return 1
	case RGB24, RGB48:
		return 3
	}
	return 0
}

// Is16Bit reports whether each channel is 16 bits wide.
func (f Format) Is16Bit() bool {
	return f == Gray16 || f == RGB48
}

// MaxValue is the largest channel value: 255 or 65535.
func (f Format) MaxValue() uint64 {
	if f.Is16Bit() {
		return 0xFFFF
	}
	return 0xFF
}

func (f Format) valid() bool {
	return f.BytesPerPixel() != 0
}

func (f Format) String() string {
	switch f {
	case Gray8:
		return "gray8"
	case Gray16:
		return "gray16"
	case RGB24:
		return "rgb24"
	case RGB48:
		return "rgb48"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// ParseFormat is the inverse of Format.String.
func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{Gray8, Gray16, RGB24, RGB48} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel format %q", s)
}
