package epubshrink

// Options controls how images inside the archive are transformed.
// The zero value re-encodes JPEGs at the default quality and leaves
// dimensions and color untouched.
//
// Options are resolved once before a run and never mutated afterwards.
type Options struct {
	// JPEGQuality is the JPEG encoder quality (1-100, lower is smaller
	// and lossier). A value of 0 means DefaultJPEGQuality.
	JPEGQuality int

	// ResizePercent scales both image dimensions by this fraction when
	// non-zero (e.g., 0.5 halves width and height). Each new dimension is
	// truncated to the nearest integer pixel. Values above 1 enlarge.
	ResizePercent float64

	// Resample names the interpolation filter used for percent resizing:
	// one of "nearest", "box", "linear", "gaussian", "lanczos".
	// Empty selects the default (Lanczos). Unknown names fail the run
	// with ErrUnknownResample.
	Resample string

	// MaxWidth caps the image width in pixels when non-zero. Images wider
	// than MaxWidth (after percent resizing) are scaled down preserving
	// aspect ratio; this step never enlarges.
	MaxWidth int

	// Grayscale converts images to single-channel luminance, discarding
	// color and alpha data.
	Grayscale bool

	// PreserveCover exempts the book's detected cover image from all
	// transformations. Detection is best-effort; when no cover can be
	// located the option has no effect.
	PreserveCover bool
}

// DefaultJPEGQuality is used when Options.JPEGQuality is zero.
const DefaultJPEGQuality = 75

// SizeRecord reports the archive-level compressed size of one entry
// before and after transcoding.
type SizeRecord struct {
	// Name is the ZIP-internal path of the entry.
	Name string

	// InSize is the compressed size of the entry in the source archive.
	InSize int64

	// OutSize is the compressed size of the entry in the destination archive.
	OutSize int64
}

// Summary is the result of a Shrink run.
type Summary struct {
	// InPath is the source archive path.
	InPath string

	// OutPath is the resolved destination archive path (directory
	// destinations are resolved to a file inside the directory).
	OutPath string

	// Records holds one SizeRecord per archive entry, in source order.
	Records []SizeRecord

	// CoverPath is the ZIP-internal path of the preserved cover image,
	// or empty when cover preservation was off or detection failed.
	CoverPath string
}

// TypeTotal aggregates size records for one file type (extension).
type TypeTotal struct {
	// Type is the file extension grouping key (text after the last dot,
	// case as-is; empty for extensionless entries).
	Type string

	// InSize and OutSize are the summed compressed sizes for the group.
	InSize  int64
	OutSize int64

	// Delta is OutSize - InSize (negative when the group shrank).
	Delta int64

	// Percent is Delta relative to InSize, in percent. Zero when InSize
	// is zero; PercentDefined distinguishes that case from a true 0%.
	Percent float64

	// PercentDefined is false when InSize is zero and Percent is
	// therefore undefined.
	PercentDefined bool
}

// Report holds the aggregated per-type totals and the grand total of a run.
type Report struct {
	// Types holds one TypeTotal per distinct file type, sorted ascending
	// by Percent (largest reduction first).
	Types []TypeTotal

	// Total is the grand total over all records, recomputed from the
	// overall sums rather than averaged across groups.
	Total TypeTotal
}
