// Package epubshrink rewrites an ePub archive into a smaller one by
// recompressing and optionally resizing its embedded raster images.
//
// An ePub is a ZIP container; the package walks every entry in order,
// routes JPEG and PNG entries through a configurable transform (resize by
// percentage, max-width clamp, grayscale, re-encode), and writes all
// entries into a new archive under their original names using maximum
// DEFLATE compression. Non-image entries pass through byte-identical.
//
// # Shrinking a file
//
//	summary, err := epubshrink.Shrink("book.epub", "small.epub", epubshrink.Options{
//	    JPEGQuality:   60,
//	    ResizePercent: 0.5,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	epubshrink.Aggregate(summary.Records).Render(os.Stdout, summary.InPath, summary.OutPath)
//
// # Reporting
//
// [Shrink] returns one [SizeRecord] per entry with the compressed sizes as
// stored in the source and destination archives. [Aggregate] groups them by
// file extension and computes per-type and overall size deltas; [Report.Render]
// prints a human-readable table.
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - [ErrInputNotFound] – the input file does not exist
//   - [ErrSameFile] – the output path resolves to the input path
//   - [ErrUnknownResample] – an unrecognized resample filter name
//   - [ErrDecode] / [ErrEncode] – a malformed or unencodable image
//
// Every error is fatal to the run: the transcoder aborts on the first
// failure and a partially written destination file may be left on disk.
package epubshrink
