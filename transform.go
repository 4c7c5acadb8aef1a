package epubshrink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// resampleFilters is the closed set of recognized resample filter names.
// Unknown names fail with ErrUnknownResample rather than silently
// falling back to a default.
var resampleFilters = map[string]imaging.ResampleFilter{
	"nearest":  imaging.NearestNeighbor,
	"box":      imaging.Box,
	"linear":   imaging.Linear,
	"gaussian": imaging.Gaussian,
	"lanczos":  imaging.Lanczos,
}

// resampleFilter resolves a filter name to an imaging filter.
// An empty name selects Lanczos.
func resampleFilter(name string) (imaging.ResampleFilter, error) {
	if name == "" {
		return imaging.Lanczos, nil
	}
	f, ok := resampleFilters[name]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("%w: %q", ErrUnknownResample, name)
	}
	return f, nil
}

// transformImage applies the configured resize, grayscale, and re-encode
// steps to a single image entry and returns the new encoded bytes.
//
// Subtypes other than jpeg/jpg/png are returned unchanged. There is no
// guarantee the result is smaller than the input for any individual image;
// savings are statistical across a whole archive.
func transformImage(data []byte, subtype string, opts Options) ([]byte, error) {
	if !transformableSubtype(subtype) {
		return data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if opts.ResizePercent > 0 {
		img, err = resizeByPercent(img, opts.ResizePercent, opts.Resample)
		if err != nil {
			return nil, err
		}
	}

	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		img = clampWidth(img, opts.MaxWidth)
	}

	if opts.Grayscale {
		img = toGrayscale(img)
	}

	return encodeImage(img, subtype, opts)
}

// resizeByPercent scales both dimensions by percent, truncating each to the
// nearest integer pixel. Dimensions are clamped to at least one pixel so a
// tiny image at a tiny percentage stays decodable.
func resizeByPercent(img image.Image, percent float64, filterName string) (image.Image, error) {
	filter, err := resampleFilter(filterName)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w := int(float64(bounds.Dx()) * percent)
	h := int(float64(bounds.Dy()) * percent)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	slog.Debug("resizing image",
		"from_width", bounds.Dx(), "from_height", bounds.Dy(),
		"to_width", w, "to_height", h)

	return imaging.Resize(img, w, h, filter), nil
}

// clampWidth scales the image down so its width equals maxWidth, preserving
// aspect ratio. The caller guarantees the current width exceeds maxWidth, so
// this never enlarges. Lanczos3 keeps downsampled text and line art legible.
func clampWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	slog.Debug("clamping image width",
		"from_width", bounds.Dx(), "max_width", maxWidth)
	return resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)
}

// toGrayscale converts the image to single-channel luminance, discarding
// color and alpha data.
func toGrayscale(img image.Image) image.Image {
	g := gift.New(gift.Grayscale())
	dst := image.NewGray(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// encodeImage re-encodes the image for its subtype: JPEG at the configured
// quality, PNG at the strongest compression level. PNG stays lossless; it
// may still shrink via better filter and huffman choices than the original
// encoder made.
func encodeImage(img image.Image, subtype string, opts Options) ([]byte, error) {
	quality := opts.JPEGQuality
	if quality == 0 {
		quality = DefaultJPEGQuality
	}

	buf := new(bytes.Buffer)
	var err error
	switch subtype {
	case "jpeg", "jpg":
		err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case "png":
		err = imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}
