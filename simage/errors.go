package simage

import "errors"

var (
	// ErrAllocation is returned when a buffer cannot be created: a zero
	// dimension, an unknown format or a size that does not fit in memory.
	ErrAllocation = errors.New("cannot allocate image")
	// ErrOutOfBounds is returned for pixel coordinates or region extents
	// outside the image.
	ErrOutOfBounds = errors.New("out of image bounds")
	// ErrUnaligned is returned by Region when the view origin would not start
	// on a word boundary of the shared store.
	ErrUnaligned = errors.New("region origin not word aligned")
	// ErrNotOwner is returned when releasing a region view.
	ErrNotOwner = errors.New("image does not own its store")
	// ErrReleased is returned for any access after the store was released.
	ErrReleased = errors.New("image store released")
)
