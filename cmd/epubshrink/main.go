package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/simp-lee/epubshrink"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <in_epub> <out_epub>\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}

// configureLogging installs the process-wide slog handler at the requested
// level. An unrecognized level name is fatal, matching the strictness of
// the rest of the option validation.
func configureLogging(level string) error {
	lvl := slog.LevelInfo
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("%w: %q", epubshrink.ErrInvalidLogLevel, level)
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "l", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	jpegQuality := flag.Int("jpeg-quality", epubshrink.DefaultJPEGQuality, "JPEG compression quality (1-100, lower is smaller)")
	resizePercent := flag.Int("image-resize-percent", 0, "Percentage to resize images (e.g., 50 halves both dimensions)")
	resample := flag.String("image-resize-resample", "", "Resample filter for percent resizing (nearest, box, linear, gaussian, lanczos)")
	maxWidth := flag.Int("image-resize-maxwidth", 0, "Maximum image width in pixels (aspect-preserving, never enlarges)")
	grayscale := flag.Bool("grayscale", false, "Convert images to grayscale")
	preserveCover := flag.Bool("preserve-cover", false, "Leave the detected cover image untouched")

	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		usage()
		os.Exit(2)
	}

	if err := configureLogging(logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	opts := epubshrink.Options{
		JPEGQuality:   *jpegQuality,
		ResizePercent: float64(*resizePercent) / 100.0,
		Resample:      *resample,
		MaxWidth:      *maxWidth,
		Grayscale:     *grayscale,
		PreserveCover: *preserveCover,
	}

	summary, err := epubshrink.Shrink(flag.Arg(0), flag.Arg(1), opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	epubshrink.Aggregate(summary.Records).Render(os.Stdout, summary.InPath, summary.OutPath)
}
