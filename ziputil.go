package epubshrink

import (
	"archive/zip"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
)

// maxEntrySize is the maximum allowed decompressed size for a single ZIP
// entry. This guards against zip bomb attacks. Defaults to 256 MB.
const maxEntrySize int64 = 256 * 1024 * 1024

// imageSubtype returns the MIME subtype ("jpeg", "png", ...) when the entry
// name's extension maps to an image/* type, or "" otherwise. Inference is by
// extension only; entry content is never sniffed.
func imageSubtype(name string) string {
	mt := mime.TypeByExtension(path.Ext(name))
	if mt == "" {
		return ""
	}
	// Drop any parameters ("; charset=...").
	if idx := strings.IndexByte(mt, ';'); idx >= 0 {
		mt = mt[:idx]
	}
	const prefix = "image/"
	if !strings.HasPrefix(mt, prefix) {
		return ""
	}
	return strings.TrimSpace(mt[len(prefix):])
}

// transformableSubtype reports whether the image subtype is one the
// transform step handles. All other image types pass through unchanged.
func transformableSubtype(subtype string) bool {
	switch subtype {
	case "jpeg", "jpg", "png":
		return true
	}
	return false
}

// findEntryInsensitive looks up a ZIP entry by path, first trying an exact
// match, then falling back to a case-insensitive comparison.
// Returns nil if no match is found.
func findEntryInsensitive(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	lower := strings.ToLower(name)
	for _, f := range zr.File {
		if strings.ToLower(f.Name) == lower {
			return f
		}
	}
	return nil
}

// resolveRelativePath resolves href relative to the directory of basePath.
// Both are ZIP-internal forward-slash paths. The result is cleaned and
// validated to stay within the ZIP root; an absolute href or one escaping
// the root yields an empty string.
func resolveRelativePath(basePath, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "/") {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	cleaned := path.Clean(path.Join(path.Dir(basePath), href))
	if !isSafePath(cleaned) {
		return ""
	}
	return cleaned
}

// isSafePath checks whether p is a ZIP-internal path that does not escape
// the archive root via path traversal (e.g., "../../../etc/passwd").
func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}

// stripBOM removes a leading UTF-8 BOM (0xEF 0xBB 0xBF) from data, if present.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// readEntry reads the full contents of a ZIP entry. It enforces
// maxEntrySize to guard against zip bombs and validates that the entry
// path is safe (no path traversal).
func readEntry(f *zip.File) ([]byte, error) {
	return readEntryWithLimit(f, maxEntrySize)
}

// readEntryWithLimit is the implementation of readEntry with a configurable
// size limit. It is separated to allow tests to use a smaller limit.
func readEntryWithLimit(f *zip.File, limit int64) ([]byte, error) {
	if !isSafePath(f.Name) {
		return nil, fmt.Errorf("epubshrink: unsafe zip entry path: %s", f.Name)
	}

	if f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("epubshrink: zip entry %s too large: %d bytes (max %d)", f.Name, f.UncompressedSize64, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epubshrink: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	// Read up to limit+1 to detect if the actual decompressed data
	// exceeds the limit (the declared size might be wrong/forged).
	lr := io.LimitReader(rc, limit+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("epubshrink: read zip entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("epubshrink: zip entry %s decompressed size exceeds limit (%d bytes)", f.Name, limit)
	}

	return data, nil
}
