package simage

import (
	"bytes"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allFormats = []Format{Gray8, Gray16, RGB24, RGB48}

func TestNew(t *testing.T) {
	for _, f := range allFormats {
		for _, size := range [][2]int{{1, 1}, {3, 2}, {20, 20}, {17, 5}, {640, 3}} {
			img, err := New(size[0], size[1], f)
			require.NoError(t, err)

			assert.Equal(t, size[0], img.Width(), f.String())
			assert.Equal(t, size[1], img.Height(), f.String())
			assert.Equal(t, f, img.Format())
			assert.Equal(t, f.BytesPerPixel(), img.BytesPerPixel())
			assert.False(t, img.IsView())

			assert.GreaterOrEqual(t, img.Stride(), size[0]*f.BytesPerPixel())
			assert.Zero(t, img.Stride()%Word, "stride %d not a multiple of %d", img.Stride(), Word)
			assert.Less(t, img.Stride()-size[0]*f.BytesPerPixel(), Word)
			assert.Len(t, img.Bytes(), img.Stride()*img.Height())
		}
	}
}

func TestBytesPerPixel(t *testing.T) {
	assert.Equal(t, 1, Gray8.BytesPerPixel())
	assert.Equal(t, 2, Gray16.BytesPerPixel())
	assert.Equal(t, 3, RGB24.BytesPerPixel())
	assert.Equal(t, 6, RGB48.BytesPerPixel())
	assert.Equal(t, 0, Format(42).BytesPerPixel())
}

func TestParseFormat(t *testing.T) {
	for _, f := range allFormats {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("cmyk32")
	assert.Error(t, err)
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		format        Format
	}{
		{"zero width", 0, 10, Gray8},
		{"zero height", 10, 0, RGB24},
		{"negative width", -1, 10, Gray16},
		{"unknown format", 10, 10, Format(7)},
		{"row overflow", math.MaxInt / 2, 1, RGB48},
		{"size overflow", 1 << 20, math.MaxInt/(1<<20) + 1, Gray8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := New(tt.width, tt.height, tt.format)
			assert.ErrorIs(t, err, ErrAllocation)
			assert.Nil(t, img)
		})
	}
}

func TestSetPixel_RoundTrip(t *testing.T) {
	const (
		width  = 20
		height = 20
		pixels = 50
	)
	rnd := rand.New(rand.NewPCG(1, 2))

	for _, f := range allFormats {
		t.Run(f.String(), func(t *testing.T) {
			img, err := New(width, height, f)
			require.NoError(t, err)

			mask := uint64(1)<<(8*f.BytesPerPixel()) - 1
			want := map[[2]int]uint64{}
			for range pixels {
				x, y := rnd.IntN(width), rnd.IntN(height)
				v := rnd.Uint64() & mask
				require.NoError(t, img.SetPixel(x, y, v))
				want[[2]int{x, y}] = v
			}

			for pos, v := range want {
				got, err := img.Pixel(pos[0], pos[1])
				require.NoError(t, err)
				assert.Equal(t, v, got, "pixel %v", pos)
			}
		})
	}
}

func TestSetPixel_Packing(t *testing.T) {
	tests := []struct {
		format Format
		value  uint64
		bytes  []byte
		read   uint64
	}{
		{Gray8, 0x1234, []byte{0x34}, 0x34},
		{Gray16, 0xABCD, []byte{0xAB, 0xCD}, 0xABCD},
		{Gray16, 0x12345, []byte{0x23, 0x45}, 0x2345},
		{RGB24, 0x112233, []byte{0x11, 0x22, 0x33}, 0x112233},
		{RGB24, 0xFF112233, []byte{0x11, 0x22, 0x33}, 0x112233},
		{RGB48, 0xAABBCCDDEEFF, []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}, 0xAABBCCDDEEFF},
		{RGB48, 0x1_0000_0000_0000, []byte{0, 0, 0, 0, 0, 0}, 0},
	}

	for _, tt := range tests {
		img, err := NewZeroed(3, 2, tt.format)
		require.NoError(t, err)

		require.NoError(t, img.SetPixel(1, 1, tt.value))
		bpp := tt.format.BytesPerPixel()
		assert.Equal(t, tt.bytes, img.Row(1)[bpp:2*bpp], tt.format.String())

		got, err := img.Pixel(1, 1)
		require.NoError(t, err)
		assert.Equal(t, tt.read, got, tt.format.String())
	}
}

func TestPixel_OutOfBounds(t *testing.T) {
	img, err := New(4, 3, RGB24)
	require.NoError(t, err)

	for _, pos := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 3}, {100, 100}} {
		_, err := img.Pixel(pos[0], pos[1])
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.ErrorIs(t, img.SetPixel(pos[0], pos[1], 1), ErrOutOfBounds)
	}
}

func TestSetPixel_KeepsPadding(t *testing.T) {
	img, err := NewZeroed(3, 2, Gray8)
	require.NoError(t, err)
	require.Greater(t, img.Stride(), 3)

	for y := range 2 {
		for x := range 3 {
			require.NoError(t, img.SetPixel(x, y, 0xFF))
		}
		for _, b := range img.Row(y)[3:] {
			assert.Zero(t, b)
		}
	}
}

func TestZero(t *testing.T) {
	for _, f := range allFormats {
		img, err := New(7, 5, f)
		require.NoError(t, err)

		buf := img.Bytes()
		for i := range buf {
			buf[i] = 0xA5
		}

		img.Zero()
		assert.Equal(t, make([]byte, img.Stride()*img.Height()), img.Bytes(), f.String())
	}
}

func TestNewZeroed(t *testing.T) {
	for _, f := range allFormats {
		img, err := NewZeroed(9, 4, f)
		require.NoError(t, err)
		assert.Equal(t, make([]byte, img.Stride()*img.Height()), img.Bytes(), f.String())
	}
}

func TestCopy(t *testing.T) {
	img, err := New(5, 3, RGB24)
	require.NoError(t, err)

	buf := img.Bytes()
	for i := range buf {
		buf[i] = byte(i)
	}

	clone, err := img.Copy()
	require.NoError(t, err)

	assert.Equal(t, img.Width(), clone.Width())
	assert.Equal(t, img.Height(), clone.Height())
	assert.Equal(t, img.Stride(), clone.Stride())
	assert.Equal(t, img.Format(), clone.Format())
	assert.True(t, bytes.Equal(img.Bytes(), clone.Bytes()), "clone differs, padding included")

	require.NoError(t, clone.SetPixel(0, 0, 0))
	v, err := img.Pixel(0, 0)
	require.NoError(t, err)
	assert.NotZero(t, v, "clone must not share the store")
}

func TestRelease(t *testing.T) {
	img, err := New(4, 4, Gray16)
	require.NoError(t, err)

	require.NoError(t, img.Release())
	assert.ErrorIs(t, img.Release(), ErrReleased)

	_, err = img.Pixel(0, 0)
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, img.SetPixel(0, 0, 1), ErrReleased)
	assert.Nil(t, img.Row(0))
	assert.Nil(t, img.Bytes())

	_, err = img.Copy()
	assert.ErrorIs(t, err, ErrReleased)
	_, err = img.Region(0, 0, 1, 1)
	assert.ErrorIs(t, err, ErrReleased)

	img.Zero()
}
