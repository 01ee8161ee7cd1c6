package simage

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

var _ draw.Image = &Image{}

// ColorModel returns the standard library model matching the format.
func (f Format) ColorModel() color.Model {
	switch f {
	case Gray8:
		return color.GrayModel
	case Gray16:
		return color.Gray16Model
	case RGB24:
		return color.RGBAModel
	default:
		return color.RGBA64Model
	}
}

func (img *Image) ColorModel() color.Model {
	return img.format.ColorModel()
}

func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.width, img.height)
}

// At returns the pixel at (x, y) as a color of ColorModel. RGB pixels are
// fully opaque. Out of range coordinates yield the zero color.
func (img *Image) At(x, y int) color.Color {
	v, err := img.Pixel(x, y)

	switch img.format {
	case Gray8:
		return color.Gray{Y: uint8(v)}
	case Gray16:
		return color.Gray16{Y: uint16(v)}
	case RGB24:
		if err != nil {
			return color.RGBA{}
		}
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
	default:
		if err != nil {
			return color.RGBA64{}
		}
		return color.RGBA64{R: uint16(v >> 32), G: uint16(v >> 16), B: uint16(v), A: 0xFFFF}
	}
}

// Set stores c at (x, y). Alpha is dropped after un-premultiplying, so a
// translucent color keeps its hue and brightness. Out of range coordinates
// are ignored, as with the standard library image types.
func (img *Image) Set(x, y int, c color.Color) {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	n.A = 0xFFFF

	var v uint64
	switch img.format {
	case Gray8:
		v = uint64(color.GrayModel.Convert(n).(color.Gray).Y)
	case Gray16:
		v = uint64(color.Gray16Model.Convert(n).(color.Gray16).Y)
	case RGB24:
		v = uint64(n.R>>8)<<16 | uint64(n.G>>8)<<8 | uint64(n.B>>8)
	case RGB48:
		v = uint64(n.R)<<32 | uint64(n.G)<<16 | uint64(n.B)
	}
	_ = img.SetPixel(x, y, v)
}

// FromImage draws src into a newly allocated image of the given format.
func FromImage(src image.Image, format Format) (*Image, error) {
	b := src.Bounds()
	dst, err := New(b.Dx(), b.Dy(), format)
	if err != nil {
		return nil, err
	}
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}
