package epubshrink

import (
	"archive/zip"
	"bytes"
	"path"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// detectCoverPath locates the ZIP-internal path of the book's cover image.
// Strategies are tried in priority order:
//  1. ePub 3 manifest item with properties="cover-image"
//  2. ePub 2 <meta name="cover" content="ID"/> → manifest lookup
//  3. <guide> reference type="cover" → parse XHTML for first <img>
//  4. Manifest item whose ID or href contains "cover" with image/* media-type
//
// Detection is best-effort: any failure (missing container, malformed OPF,
// no match) returns an empty string and the run proceeds without cover
// preservation.
func detectCoverPath(zr *zip.Reader) string {
	opfPath, err := parseContainer(zr)
	if err != nil {
		return ""
	}

	opfFile := findEntryInsensitive(zr, opfPath)
	if opfFile == nil {
		return ""
	}
	opfData, err := readEntry(opfFile)
	if err != nil {
		return ""
	}
	pkg, err := parseOPF(opfData)
	if err != nil {
		return ""
	}

	d := coverDetector{zr: zr, pkg: pkg, opfDir: path.Dir(opfPath)}

	if p := d.fromManifestProperties(); p != "" {
		return p
	}
	if p := d.fromMetaCover(); p != "" {
		return p
	}
	if p := d.fromGuide(); p != "" {
		return p
	}
	return d.fromManifestHeuristic()
}

// coverDetector bundles the parsed OPF with the archive it came from.
type coverDetector struct {
	zr     *zip.Reader
	pkg    *opfPackage
	opfDir string
}

// resolveOPFPath resolves a manifest href relative to the OPF directory.
func (d *coverDetector) resolveOPFPath(href string) string {
	if href == "" {
		return ""
	}
	if d.opfDir == "." {
		return href
	}
	return path.Join(d.opfDir, href)
}

// itemByID finds a manifest item by its ID attribute.
func (d *coverDetector) itemByID(id string) *opfManifestItem {
	for i := range d.pkg.Manifest.Items {
		if d.pkg.Manifest.Items[i].ID == id {
			return &d.pkg.Manifest.Items[i]
		}
	}
	return nil
}

// fromManifestProperties searches the manifest for an item whose Properties
// field contains "cover-image" (ePub 3). Document order is preserved.
func (d *coverDetector) fromManifestProperties() string {
	for _, item := range d.pkg.Manifest.Items {
		if slices.Contains(strings.Fields(item.Properties), "cover-image") {
			return d.resolveOPFPath(item.Href)
		}
	}
	return ""
}

// fromMetaCover looks for <meta name="cover" content="ID"/> and resolves the
// ID through the manifest (ePub 2). A non-image item is treated as an XHTML
// cover page and its first <img> is extracted.
func (d *coverDetector) fromMetaCover() string {
	for _, m := range d.pkg.Metadata.Metas {
		if !strings.EqualFold(m.Name, "cover") || m.Content == "" {
			continue
		}
		item := d.itemByID(m.Content)
		if item == nil {
			continue
		}
		if isImageMediaType(item.MediaType) {
			return d.resolveOPFPath(item.Href)
		}
		if p := d.firstImageInEntry(d.resolveOPFPath(item.Href)); p != "" {
			return p
		}
	}
	return ""
}

// fromGuide searches the <guide> for a reference with type="cover", reads
// that XHTML file, and extracts the first <img> path.
func (d *coverDetector) fromGuide() string {
	for _, ref := range d.pkg.Guide.References {
		if !strings.EqualFold(ref.Type, "cover") {
			continue
		}
		href := ref.Href
		if idx := strings.IndexByte(href, '#'); idx >= 0 {
			href = href[:idx]
		}
		if p := d.firstImageInEntry(d.resolveOPFPath(href)); p != "" {
			return p
		}
	}
	return ""
}

// fromManifestHeuristic searches the manifest for an item whose ID or href
// contains "cover" (case-insensitive) and has an image/* media-type.
func (d *coverDetector) fromManifestHeuristic() string {
	for _, item := range d.pkg.Manifest.Items {
		if !isImageMediaType(item.MediaType) {
			continue
		}
		if containsFold(item.ID, "cover") || containsFold(item.Href, "cover") {
			return d.resolveOPFPath(item.Href)
		}
	}
	return ""
}

// firstImageInEntry reads an XHTML entry and returns the resolved ZIP path
// of the first image it references, provided that path is a raster image by
// extension.
func (d *coverDetector) firstImageInEntry(xhtmlPath string) string {
	if xhtmlPath == "" {
		return ""
	}
	f := findEntryInsensitive(d.zr, xhtmlPath)
	if f == nil {
		return ""
	}
	data, err := readEntry(f)
	if err != nil {
		return ""
	}
	imgPath := findFirstImageInHTML(data, xhtmlPath)
	if imgPath == "" || imageSubtype(imgPath) == "" {
		return ""
	}
	return imgPath
}

// findFirstImageInHTML parses HTML data and returns the resolved ZIP-internal
// path of the first <img> element's src attribute, or of an SVG <image>
// element's href. basePath is the ZIP-internal path of the HTML file, used to
// resolve relative image paths. Returns an empty string when no image is found.
func findFirstImageInHTML(htmlData []byte, basePath string) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlData))
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			a := atom.Lookup(tn)
			if a == atom.Img && hasAttr {
				for {
					key, val, more := tokenizer.TagAttr()
					if string(key) == "src" && string(val) != "" {
						return resolveRelativePath(basePath, string(val))
					}
					if !more {
						break
					}
				}
			}
			if a == atom.Image && hasAttr {
				for {
					key, val, more := tokenizer.TagAttr()
					k := string(key)
					if (k == "href" || k == "xlink:href") && string(val) != "" {
						return resolveRelativePath(basePath, string(val))
					}
					if !more {
						break
					}
				}
			}
		}
	}
}

// isImageMediaType returns true if the media type starts with "image/".
func isImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
