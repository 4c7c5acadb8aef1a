package epubshrink

import "errors"

// Sentinel errors returned by the epubshrink package.
var (
	// ErrInputNotFound indicates the input ePub path does not reference
	// an existing regular file.
	ErrInputNotFound = errors.New("epubshrink: input file not found")

	// ErrSameFile indicates the resolved output path is identical to the
	// input path. Writing would truncate the archive while it is still
	// being read, so this is refused before anything is written.
	ErrSameFile = errors.New("epubshrink: output path equals input path")

	// ErrUnknownResample indicates the configured resample filter name is
	// not one of the recognized filter names.
	ErrUnknownResample = errors.New("epubshrink: unknown resample filter")

	// ErrInvalidLogLevel indicates an unrecognized log level value.
	ErrInvalidLogLevel = errors.New("epubshrink: invalid log level")

	// ErrDecode indicates an image entry could not be decoded
	// (malformed or unsupported content).
	ErrDecode = errors.New("epubshrink: image decode failed")

	// ErrEncode indicates a transformed image could not be re-encoded.
	ErrEncode = errors.New("epubshrink: image encode failed")
)
