//go:build fuzz
// +build fuzz

package pnm

import (
	"bytes"
	"testing"
)

// FuzzDecode feeds arbitrary bytes to the decoder. Whatever decodes must
// re-encode to a stream that decodes to the same pixels.
func FuzzDecode(f *testing.F) {
	f.Add([]byte("P5\n4 3\n255\n" + "\xc8\xc8\xc8\xc8\xc8\xc8\xc8\xc8\xc8\xc8\xc8\xc8"))
	f.Add([]byte("P6 1 1 65535\n\x01\x02\x03\x04\x05\x06"))
	f.Add([]byte("# c\nP5 2#x\n1 255\n\x01"))
	f.Add([]byte("P5 0 0 0"))
	f.Add([]byte(""))

	d := Decoder{MaxPixels: 1 << 16}
	f.Fuzz(func(t *testing.T, data []byte) {
		img, err := d.Decode(bytes.NewReader(data))
		if err != nil {
			return
		}

		var buf bytes.Buffer
		if err := Encode(&buf, img); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		again, err := Decoder{Strict: true}.Decode(&buf)
		if err != nil {
			t.Fatalf("re-decode failed: %v", err)
		}
		if again.Width() != img.Width() || again.Height() != img.Height() || again.Format() != img.Format() {
			t.Fatalf("shape mismatch: %dx%d %s != %dx%d %s",
				again.Width(), again.Height(), again.Format(), img.Width(), img.Height(), img.Format())
		}
		for y := range img.Height() {
			if !bytes.Equal(img.RowPixels(y), again.RowPixels(y)) {
				t.Fatalf("row %d differs", y)
			}
		}
	})
}
