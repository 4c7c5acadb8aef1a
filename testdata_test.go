package epubshrink

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// zipEntry is one named entry for the test archive builders. Entries are
// written in slice order so tests can assert on archive ordering.
type zipEntry struct {
	name string
	data []byte
}

// buildZipBytes serialises the entries into an in-memory ZIP archive.
func buildZipBytes(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, e := range entries {
		fw, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("buildZipBytes: create %s: %v", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			t.Fatalf("buildZipBytes: write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildZipBytes: close writer: %v", err)
	}
	return buf.Bytes()
}

// buildZipReader returns a *zip.Reader over an in-memory archive.
func buildZipReader(t *testing.T, entries []zipEntry) *zip.Reader {
	t.Helper()
	data := buildZipBytes(t, entries)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("buildZipReader: open reader: %v", err)
	}
	return zr
}

// buildZipFile writes the entries as a ZIP archive into a temporary file
// and returns its path. Useful for testing Shrink, which takes file paths.
func buildZipFile(t *testing.T, entries []zipEntry) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "test.epub")
	if err := os.WriteFile(fp, buildZipBytes(t, entries), 0644); err != nil {
		t.Fatalf("buildZipFile: write file: %v", err)
	}
	return fp
}

// readZipEntries reads back all entries of the archive at path, in stored
// order.
func readZipEntries(t *testing.T, path string) []zipEntry {
	t.Helper()
	zrc, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("readZipEntries: open %s: %v", path, err)
	}
	defer zrc.Close()

	entries := make([]zipEntry, 0, len(zrc.File))
	for _, f := range zrc.File {
		data, err := readEntry(f)
		if err != nil {
			t.Fatalf("readZipEntries: read %s: %v", f.Name, err)
		}
		entries = append(entries, zipEntry{name: f.Name, data: data})
	}
	return entries
}

// gradientImage produces a small color image with per-pixel variation so
// that resize and grayscale effects are observable after re-encoding.
func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// makeJPEG encodes a w×h gradient as JPEG bytes.
func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, gradientImage(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("makeJPEG: %v", err)
	}
	return buf.Bytes()
}

// makePNG encodes a w×h gradient as PNG bytes.
func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, gradientImage(w, h)); err != nil {
		t.Fatalf("makePNG: %v", err)
	}
	return buf.Bytes()
}

// decodeDims decodes image bytes and returns the pixel dimensions.
func decodeDims(t *testing.T, data []byte) (w, h int) {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decodeDims: %v", err)
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy()
}
