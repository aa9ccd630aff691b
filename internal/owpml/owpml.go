// Package owpml holds shared helpers for the HWPX package format:
// well-known package paths and zip access utilities. Element matching is
// by local name throughout; producers disagree on namespace versions, so
// the parsers stay namespace-agnostic.
package owpml

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Package paths.
const (
	HeaderPath    = "Contents/header.xml"
	SectionPrefix = "Contents/section"
	VersionPath   = "version.xml"
)

// ReadFileFromZip reads a named file from the package.
func ReadFileFromZip(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file %q not found in package", name)
}

// SectionFiles lists the body section files in document order. Packages
// normally keep them under Contents/; a lenient fallback catches
// producers that nest them elsewhere.
func SectionFiles(zr *zip.Reader) []string {
	var names []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, SectionPrefix) && strings.HasSuffix(f.Name, ".xml") {
			names = append(names, f.Name)
		}
	}
	if len(names) == 0 {
		for _, f := range zr.File {
			lower := strings.ToLower(f.Name)
			if strings.Contains(lower, "section") && strings.HasSuffix(lower, ".xml") {
				names = append(names, f.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// ManifestFiles lists package manifest candidates (.hpf) that may carry
// document metadata.
func ManifestFiles(zr *zip.Reader) []string {
	var names []string
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".hpf") {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}
