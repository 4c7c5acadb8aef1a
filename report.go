package epubshrink

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// fileType derives the grouping key for a record: the text after the last
// dot of the entry's base name, case as-is, empty when there is none.
func fileType(name string) string {
	ext := path.Ext(name)
	return strings.TrimPrefix(ext, ".")
}

// Aggregate groups size records by file type and computes per-type and
// overall totals. Types are sorted ascending by percent change, so the
// largest reduction comes first; the grand total is recomputed from the
// overall sums, not averaged across groups.
func Aggregate(records []SizeRecord) *Report {
	byType := make(map[string]*TypeTotal)
	order := make([]string, 0)

	for _, rec := range records {
		ft := fileType(rec.Name)
		tt, ok := byType[ft]
		if !ok {
			tt = &TypeTotal{Type: ft}
			byType[ft] = tt
			order = append(order, ft)
		}
		tt.InSize += rec.InSize
		tt.OutSize += rec.OutSize
	}

	report := &Report{Types: make([]TypeTotal, 0, len(order))}
	for _, ft := range order {
		tt := byType[ft]
		finishTotal(tt)
		report.Types = append(report.Types, *tt)

		report.Total.InSize += tt.InSize
		report.Total.OutSize += tt.OutSize
	}

	sort.Slice(report.Types, func(i, j int) bool {
		a, b := report.Types[i], report.Types[j]
		if a.Percent != b.Percent {
			return a.Percent < b.Percent
		}
		return a.Type < b.Type
	})

	report.Total.Type = "TOTAL"
	finishTotal(&report.Total)
	return report
}

// finishTotal fills in the derived Delta and Percent fields.
// Percent is left zero and marked undefined when InSize is zero.
func finishTotal(tt *TypeTotal) {
	tt.Delta = tt.OutSize - tt.InSize
	if tt.InSize == 0 {
		tt.PercentDefined = false
		return
	}
	tt.Percent = float64(tt.Delta) / float64(tt.InSize) * 100
	tt.PercentDefined = true
}

// Render writes the human-readable summary: header lines naming the input
// and output paths, then one table row per file type and an emphasized
// grand-total row.
func (r *Report) Render(w io.Writer, inPath, outPath string) {
	fmt.Fprintf(w, "Input:  %s\n", inPath)
	fmt.Fprintf(w, "Output: %s\n\n", outPath)

	const rowFormat = "%-10s %12s %12s %12s %10s\n"
	fmt.Fprintf(w, rowFormat, "TYPE", "IN", "OUT", "DELTA", "CHANGE")
	for _, tt := range r.Types {
		fmt.Fprintf(w, rowFormat,
			tt.Type,
			formatSize(tt.InSize),
			formatSize(tt.OutSize),
			formatSize(tt.Delta),
			formatPercent(tt))
	}

	fmt.Fprintf(w, "%s\n", strings.Repeat("-", 60))
	fmt.Fprintf(w, rowFormat,
		r.Total.Type,
		formatSize(r.Total.InSize),
		formatSize(r.Total.OutSize),
		formatSize(r.Total.Delta),
		formatPercent(r.Total))
}

// formatPercent renders a percent with two decimals and a trailing "%",
// or "n/a" when the group's input size was zero.
func formatPercent(tt TypeTotal) string {
	if !tt.PercentDefined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", tt.Percent)
}

// formatSize renders a byte count with binary scaling (1024 per step) and
// two-decimal precision. Negative values keep their sign; archives never
// reach GB scale so MB is the largest unit.
func formatSize(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case abs >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.2f b", float64(n))
	}
}
