package pnm

import (
	"image"
	"io"
)

func init() {
	image.RegisterFormat("pnm", magicGray, decodeImage, decodeImageConfig)
	image.RegisterFormat("pnm", magicRGB, decodeImage, decodeImageConfig)
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func decodeImageConfig(r io.Reader) (image.Config, error) {
	hdr, err := DecodeConfig(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: hdr.Format.ColorModel(),
		Width:      hdr.Width,
		Height:     hdr.Height,
	}, nil
}
