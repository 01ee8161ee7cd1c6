package inspect

import (
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"rawpix/config"
	"rawpix/parallel"
	"rawpix/pnm"
	"rawpix/simage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.DiscardHandler)

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	gray, err := simage.NewZeroed(4, 3, simage.Gray8)
	require.NoError(t, err)
	require.NoError(t, pnm.WriteFile(filepath.Join(dir, "gray.pgm"), gray))

	rgb, err := simage.NewZeroed(2, 5, simage.RGB48)
	require.NoError(t, err)
	require.NoError(t, pnm.WriteFile(filepath.Join(dir, "rgb.ppm"), rgb))

	f, err := os.Create(filepath.Join(dir, "other.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 3, 3))))
	require.NoError(t, f.Close())

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	return dir
}

func run(t *testing.T, cmd *CLICmd) (*counts, error) {
	t.Helper()
	require.NoError(t, cmd.Validate(nil))

	files, err := os.ReadDir(cmd.Scan)
	require.NoError(t, err)

	var cnt counts
	dec := pnm.Decoder{Strict: cmd.Strict}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if err := cmd.inspect(discard, dec, filepath.Join(cmd.Scan, file.Name()), &cnt); err != nil {
			return &cnt, err
		}
	}
	return &cnt, nil
}

func TestInspect(t *testing.T) {
	dir := setup(t)

	cnt, err := run(t, &CLICmd{Scan: dir, Verify: true, Strict: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cnt.gray.Load())
	assert.Equal(t, uint64(1), cnt.rgb.Load())
	assert.Equal(t, uint64(1), cnt.other.Load())
	assert.Equal(t, uint64(1), cnt.portrait.Load())
	assert.Equal(t, uint64(2), cnt.landscape.Load())
}

func TestInspect_Truncated(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "short.pgm")
	require.NoError(t, os.WriteFile(name, []byte("P5\n4 3\n255\n\x01\x02\x03"), 0600))

	_, err := run(t, &CLICmd{Scan: dir})
	assert.NoError(t, err, "header only")

	_, err = run(t, &CLICmd{Scan: dir, Verify: true})
	assert.NoError(t, err, "lax decoding keeps partial rasters")

	_, err = run(t, &CLICmd{Scan: dir, Verify: true, Strict: true})
	assert.ErrorIs(t, err, pnm.ErrTruncated)
}

func TestRun(t *testing.T) {
	dir := setup(t)

	cmd := &CLICmd{Scan: dir, Verify: true}
	require.NoError(t, cmd.Validate(nil))
	assert.NoError(t, cmd.Run(parallel.Start(2), config.DefaultConfig()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.pgm"), []byte("P5\n0 3\n255\n"), 0600))
	assert.Error(t, cmd.Run(parallel.Start(2), config.DefaultConfig()))
}

func TestValidate(t *testing.T) {
	dir := setup(t)

	assert.Error(t, (&CLICmd{Scan: filepath.Join(dir, "gray.pgm")}).Validate(nil))
	assert.Error(t, (&CLICmd{Scan: filepath.Join(dir, "missing")}).Validate(nil))

	cmd := &CLICmd{Scan: dir}
	require.NoError(t, cmd.Validate(nil))
	assert.True(t, filepath.IsAbs(cmd.Scan))
}
