package epubshrink

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// The transcoder is agnostic to ePub semantics, with one exception: cover
// preservation needs just enough of the OPF package document to locate the
// cover image. Only the manifest, the ePub 2 <meta> elements, and the guide
// are parsed; spine and metadata are irrelevant here.

// containerXML models the META-INF/container.xml file used to locate the OPF.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

// rootFile represents a single <rootfile> element inside container.xml.
type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// containerPath is the well-known location of container.xml in an ePub archive.
const containerPath = "META-INF/container.xml"

// opfPackage is the trimmed root <package> element of an OPF file.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Guide    opfGuide    `xml:"guide"`
}

// opfMetadata holds only the <meta> elements; ePub 2 declares the cover
// with <meta name="cover" content="ID"/>.
type opfMetadata struct {
	Metas []opfMeta `xml:"meta"`
}

type opfMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

// opfManifest wraps the <manifest> element.
type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

// opfManifestItem represents a single <item> in the manifest.
type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// opfGuide wraps the <guide> element.
type opfGuide struct {
	References []opfGuideReference `xml:"reference"`
}

// opfGuideReference represents a single <reference> in the guide.
type opfGuideReference struct {
	Type string `xml:"type,attr"`
	Href string `xml:"href,attr"`
}

// parseContainer locates the OPF path from the ePub ZIP archive.
//
// It first tries META-INF/container.xml (case-insensitive lookup). If the
// file is missing, it falls back to scanning all ZIP entries for a ".opf"
// file.
func parseContainer(zr *zip.Reader) (string, error) {
	if f := findEntryInsensitive(zr, containerPath); f != nil {
		return parseContainerXML(f)
	}

	// Fallback: scan for .opf files.
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("epubshrink: no OPF file found in archive")
}

// parseContainerXML reads and decodes a container.xml ZIP entry, returning
// the full-path of the first usable rootfile.
func parseContainerXML(f *zip.File) (string, error) {
	data, err := readEntry(f)
	if err != nil {
		return "", fmt.Errorf("epubshrink: read container.xml: %w", err)
	}

	var c containerXML
	if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
		return "", fmt.Errorf("epubshrink: parse container.xml: %w", err)
	}

	var fallbackPath string
	for _, rf := range c.RootFiles {
		fullPath := strings.TrimSpace(rf.FullPath)
		if fullPath == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), "application/oebps-package+xml") {
			return fullPath, nil
		}
		if fallbackPath == "" {
			fallbackPath = fullPath
		}
	}

	if fallbackPath == "" {
		return "", fmt.Errorf("epubshrink: container.xml has no usable rootfile entries")
	}
	return fallbackPath, nil
}

// parseOPF parses the OPF file content into the trimmed package structure.
func parseOPF(data []byte) (*opfPackage, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(stripBOM(data), &pkg); err != nil {
		return nil, fmt.Errorf("epubshrink: parse OPF: %w", err)
	}
	return &pkg, nil
}
