// Package pnm reads and writes the raw (binary) PGM and PPM formats, P5 and
// P6, to and from simage buffers.
//
// # Format
//
//	<magic> <ws> <width> <ws> <height> <ws> <maxval> <one ws byte> <raster>
//
// Whitespace runs may contain comments from '#' to the end of the line. A
// max value below 256 selects one byte per channel, below 65536 two
// big-endian bytes. The raster holds height rows of width*BytesPerPixel
// bytes without padding, which is exactly the packed content of an
// simage row, so rows are copied verbatim in both directions.
//
// ASCII variants (P1-P4) and PAM are not supported.
//
// Importing the package registers the "pnm" format with the image package,
// so image.Decode recognises P5 and P6 files and returns an *simage.Image.
package pnm
