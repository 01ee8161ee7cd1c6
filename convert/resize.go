package convert

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"rawpix/simage"

	"golang.org/x/image/draw"
)

// layout computes where a srcW x srcH picture lands in a width x height
// canvas. Zero width or height keeps the source size on that axis. It returns
// the part of the source to sample, the canvas size and the destination
// rectangle inside the canvas. Without crop or fill the canvas shrinks to the
// scaled picture; with fill the picture is centered in the full canvas.
func layout(srcW, srcH, width, height int, crop, fill bool) (srcRect, canvas, destRect image.Rectangle) {
	srcRect = image.Rect(0, 0, srcW, srcH)
	if width == 0 {
		width = srcW
	}
	if height == 0 {
		height = srcH
	}
	canvas = image.Rect(0, 0, width, height)
	destRect = canvas

	sw, sh := float64(srcW), float64(srcH)
	dw, dh := float64(width), float64(height)
	srcAR, destAR := sw/sh, dw/dh

	switch {
	case crop && srcAR < destAR:
		d := int(math.Round((sh - sw/destAR) / 2))
		srcRect.Min.Y += d
		srcRect.Max.Y -= d
	case crop && srcAR > destAR:
		d := int(math.Round((sw - sh*destAR) / 2))
		srcRect.Min.X += d
		srcRect.Max.X -= d
	case !crop && srcAR < destAR:
		scaled := dh * srcAR
		if !fill {
			canvas.Max.X = int(math.Round(scaled))
			destRect = canvas
		} else if dw > scaled {
			d := int(math.Round((dw - scaled) / 2))
			destRect.Min.X += d
			destRect.Max.X -= d
		}
	case !crop && srcAR > destAR:
		scaled := dw / srcAR
		if !fill {
			canvas.Max.Y = int(math.Round(scaled))
			destRect = canvas
		} else if dh > scaled {
			d := int(math.Round((dh - scaled) / 2))
			destRect.Min.Y += d
			destRect.Max.Y -= d
		}
	}
	return srcRect, canvas, destRect
}

// resize scales img into a new buffer of the same pixel format.
func resize(logger *slog.Logger, img *simage.Image, width, height int, crop bool, fillColor color.Color) (*simage.Image, error) {
	if (width == 0 || width == img.Width()) && (height == 0 || height == img.Height()) {
		return img, nil
	}

	srcRect, canvas, destRect := layout(img.Width(), img.Height(), width, height, crop, fillColor != nil)

	logger.Info("resizing", "width", destRect.Dx(), "height", destRect.Dy())
	dest, err := simage.NewZeroed(canvas.Dx(), canvas.Dy(), img.Format())
	if err != nil {
		return nil, err
	}
	if fillColor != nil {
		draw.Draw(dest, canvas, image.NewUniform(fillColor), image.Point{}, draw.Src)
	}
	draw.CatmullRom.Scale(dest, destRect, img, srcRect, draw.Over, nil)

	return dest, nil
}
