package epubshrink

import (
	"bytes"
	"errors"
	"image"
	"testing"
)

func TestTransformImage_UnsupportedSubtypePassthrough(t *testing.T) {
	data := []byte("GIF89a not really an image")
	got, err := transformImage(data, "gif", Options{Grayscale: true, ResizePercent: 0.5})
	if err != nil {
		t.Fatalf("transformImage(gif) err = %v; want nil", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("unsupported subtype should pass through byte-identical")
	}
}

func TestTransformImage_DecodeError(t *testing.T) {
	_, err := transformImage([]byte("definitely not a jpeg"), "jpeg", Options{})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v; want ErrDecode", err)
	}
}

func TestTransformImage_ResizePercent(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		percent      float64
		wantW, wantH int
	}{
		{"half", 100, 80, 0.5, 50, 40},
		{"full size unchanged", 64, 48, 1.0, 64, 48},
		{"truncates down", 10, 10, 0.25, 2, 2},
		{"enlarges", 10, 10, 2.0, 20, 20},
		{"clamped to one pixel", 10, 10, 0.01, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := transformImage(makePNG(t, tt.w, tt.h), "png", Options{ResizePercent: tt.percent})
			if err != nil {
				t.Fatalf("transformImage: %v", err)
			}
			gotW, gotH := decodeDims(t, out)
			if gotW != tt.wantW || gotH != tt.wantH {
				t.Errorf("resized to %dx%d; want %dx%d", gotW, gotH, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestTransformImage_ResampleFilters(t *testing.T) {
	for name := range resampleFilters {
		t.Run(name, func(t *testing.T) {
			out, err := transformImage(makeJPEG(t, 40, 40), "jpeg", Options{ResizePercent: 0.5, Resample: name})
			if err != nil {
				t.Fatalf("transformImage with filter %q: %v", name, err)
			}
			if w, h := decodeDims(t, out); w != 20 || h != 20 {
				t.Errorf("filter %q resized to %dx%d; want 20x20", name, w, h)
			}
		})
	}
}

func TestTransformImage_UnknownResample(t *testing.T) {
	_, err := transformImage(makeJPEG(t, 10, 10), "jpeg", Options{ResizePercent: 0.5, Resample: "bicubic-ultra"})
	if !errors.Is(err, ErrUnknownResample) {
		t.Fatalf("err = %v; want ErrUnknownResample", err)
	}
}

func TestTransformImage_MaxWidth(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		maxWidth int
		wantW    int
	}{
		{"wider than max is clamped", 200, 100, 100, 100},
		{"narrower than max unchanged", 50, 100, 100, 50},
		{"exactly max unchanged", 100, 60, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := transformImage(makeJPEG(t, tt.w, tt.h), "jpeg", Options{MaxWidth: tt.maxWidth})
			if err != nil {
				t.Fatalf("transformImage: %v", err)
			}
			gotW, gotH := decodeDims(t, out)
			if gotW != tt.wantW {
				t.Errorf("width = %d; want %d", gotW, tt.wantW)
			}
			// Aspect ratio preserved within one pixel of rounding.
			wantH := tt.h * tt.wantW / tt.w
			if gotH < wantH-1 || gotH > wantH+1 {
				t.Errorf("height = %d; want about %d", gotH, wantH)
			}
		})
	}
}

func TestTransformImage_PercentThenMaxWidth(t *testing.T) {
	// Percent applies first, then the max-width clamp.
	out, err := transformImage(makeJPEG(t, 400, 200), "jpeg", Options{ResizePercent: 0.5, MaxWidth: 100})
	if err != nil {
		t.Fatalf("transformImage: %v", err)
	}
	if w, h := decodeDims(t, out); w != 100 || h != 50 {
		t.Errorf("got %dx%d; want 100x50", w, h)
	}
}

func TestTransformImage_Grayscale(t *testing.T) {
	for _, subtype := range []string{"jpeg", "png"} {
		t.Run(subtype, func(t *testing.T) {
			var src []byte
			if subtype == "png" {
				src = makePNG(t, 16, 16)
			} else {
				src = makeJPEG(t, 16, 16)
			}

			out, err := transformImage(src, subtype, Options{Grayscale: true})
			if err != nil {
				t.Fatalf("transformImage: %v", err)
			}

			img, _, err := image.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("decode output: %v", err)
			}
			bounds := img.Bounds()
			for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
				for x := bounds.Min.X; x < bounds.Max.X; x++ {
					r, g, b, _ := img.At(x, y).RGBA()
					if r != g || g != b {
						t.Fatalf("pixel (%d,%d) has unequal channels after grayscale: %d %d %d", x, y, r, g, b)
					}
				}
			}
		})
	}
}

func TestTransformImage_PNGStaysDecodable(t *testing.T) {
	out, err := transformImage(makePNG(t, 30, 30), "png", Options{})
	if err != nil {
		t.Fatalf("transformImage: %v", err)
	}
	if w, h := decodeDims(t, out); w != 30 || h != 30 {
		t.Errorf("plain re-encode changed dimensions: %dx%d", w, h)
	}
}

func TestResampleFilter_Default(t *testing.T) {
	if _, err := resampleFilter(""); err != nil {
		t.Errorf("empty filter name should select the default, got %v", err)
	}
}
