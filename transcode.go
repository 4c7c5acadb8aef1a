package epubshrink

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Shrink transcodes the ePub archive at inPath into a new archive at
// outPath, routing JPEG and PNG entries through the configured image
// transform and writing everything else through byte-identical. Entry
// names and their order are preserved exactly. The destination archive
// is written with maximum-compression DEFLATE as a secondary savings
// layer on top of the image recompression.
//
// When outPath is an existing directory, the destination file is placed
// inside it under the source's base filename. A destination resolving to
// the source path is refused with ErrSameFile before anything is written.
//
// Any error aborts the run immediately; a partially written destination
// file may be left on disk.
func Shrink(inPath, outPath string, opts Options) (*Summary, error) {
	// Surface a bad filter name before touching the filesystem.
	if _, err := resampleFilter(opts.Resample); err != nil {
		return nil, err
	}

	outPath, err := resolveOutPath(inPath, outPath)
	if err != nil {
		return nil, err
	}

	names, inSizes, coverPath, err := transcode(inPath, outPath, opts)
	if err != nil {
		return nil, err
	}

	records, err := collectRecords(outPath, names, inSizes)
	if err != nil {
		return nil, err
	}

	return &Summary{
		InPath:    inPath,
		OutPath:   outPath,
		Records:   records,
		CoverPath: coverPath,
	}, nil
}

// resolveOutPath validates inPath and resolves the final destination path.
func resolveOutPath(inPath, outPath string) (string, error) {
	fi, err := os.Stat(inPath)
	if err != nil || fi.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInputNotFound, inPath)
	}

	if fi, err := os.Stat(outPath); err == nil && fi.IsDir() {
		outPath = filepath.Join(outPath, filepath.Base(inPath))
	}

	if filepath.Clean(outPath) == filepath.Clean(inPath) {
		return "", fmt.Errorf("%w: %s", ErrSameFile, outPath)
	}

	return outPath, nil
}

// transcode copies every entry from the source archive into a freshly
// created destination archive, transforming image entries along the way.
// It returns the entry names in source order and their source compressed
// sizes; destination sizes are only known once the writer is closed.
func transcode(inPath, outPath string, opts Options) (names []string, inSizes map[string]int64, coverPath string, err error) {
	zrc, err := zip.OpenReader(inPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("epubshrink: open %s: %w", inPath, err)
	}
	defer zrc.Close()

	if opts.PreserveCover {
		coverPath = detectCoverPath(&zrc.Reader)
		if coverPath != "" {
			slog.Info("preserving cover image", "entry", coverPath)
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("epubshrink: create %s: %w", outPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	inSizes = make(map[string]int64, len(zrc.File))
	for _, f := range zrc.File {
		data, err := readEntry(f)
		if err != nil {
			return nil, nil, "", err
		}

		if subtype := imageSubtype(f.Name); transformableSubtype(subtype) && f.Name != coverPath {
			slog.Debug("transforming image entry", "entry", f.Name, "subtype", subtype)
			data, err = transformImage(data, subtype, opts)
			if err != nil {
				return nil, nil, "", fmt.Errorf("epubshrink: transform %s: %w", f.Name, err)
			}
		}

		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, nil, "", fmt.Errorf("epubshrink: create entry %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, nil, "", fmt.Errorf("epubshrink: write entry %s: %w", f.Name, err)
		}

		names = append(names, f.Name)
		if _, seen := inSizes[f.Name]; !seen {
			inSizes[f.Name] = int64(f.CompressedSize64) // first match wins for duplicates
		}
	}

	if err := zw.Close(); err != nil {
		return nil, nil, "", fmt.Errorf("epubshrink: close %s: %w", outPath, err)
	}
	if err := out.Close(); err != nil {
		return nil, nil, "", fmt.Errorf("epubshrink: close %s: %w", outPath, err)
	}

	return names, inSizes, coverPath, nil
}

// collectRecords reopens the finished destination archive to read the
// compressed size the writer produced for each entry, and pairs it with
// the source sizes in source order.
func collectRecords(outPath string, names []string, inSizes map[string]int64) ([]SizeRecord, error) {
	zrc, err := zip.OpenReader(outPath)
	if err != nil {
		return nil, fmt.Errorf("epubshrink: reopen %s: %w", outPath, err)
	}
	defer zrc.Close()

	outSizes := make(map[string]int64, len(zrc.File))
	for _, f := range zrc.File {
		if _, seen := outSizes[f.Name]; !seen {
			outSizes[f.Name] = int64(f.CompressedSize64)
		}
	}

	records := make([]SizeRecord, 0, len(names))
	for _, name := range names {
		records = append(records, SizeRecord{
			Name:    name,
			InSize:  inSizes[name],
			OutSize: outSizes[name],
		})
	}
	return records, nil
}
