// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package hwpdown parses HWP and HWPX word-processor documents into a
// format-agnostic document tree and renders that tree as markdown.
//
// Binary HWP (v5) files are OLE compound files holding deflate-compressed
// record streams; HWPX files are ZIP packages holding OWPML XML. Both
// parse into the same *Document, so downstream consumers never care which
// container the text came from.
package hwpdown

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

var compoundFileMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Parse decodes one HWP or HWPX document from memory into a normalized
// document tree. The container kind is detected from content, not from a
// file name.
func Parse(data []byte, opts ...Option) (*Document, error) {
	cfg := newConfig(opts)

	if bytes.HasPrefix(data, compoundFileMagic) {
		return parseHWP(data, cfg)
	}
	mt := mimetype.Detect(data)
	if mt.Is("application/zip") || bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return parseHWPX(data, cfg)
	}
	return nil, &InvalidContainerError{
		Reason: fmt.Sprintf("neither a compound file nor a zip package (detected %s)", mt.String()),
	}
}

// ParseFile is a convenience wrapper around Parse for a file on disk.
func ParseFile(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data, opts...)
}

// Convert parses a document and renders it to markdown.
func Convert(data []byte, opts ...Option) (*Result, error) {
	doc, err := Parse(data, opts...)
	if err != nil {
		return nil, err
	}
	return &Result{
		Markdown: ToMarkdown(doc),
		Title:    documentTitle(doc),
		Metadata: doc.Metadata,
	}, nil
}

// ConvertFile is a convenience wrapper around Convert for a file on disk.
func ConvertFile(path string, opts ...Option) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Convert(data, opts...)
}

// parseHWP runs the binary pipeline: container -> decompress -> records
// -> tree -> normalize. Each stage either returns a fully valid artifact
// or a terminal error; nothing partial crosses a stage boundary.
func parseHWP(data []byte, cfg *config) (*Document, error) {
	c, err := OpenContainer(data)
	if err != nil {
		return nil, err
	}

	rawInfo, err := c.ReadStream(docInfoStream)
	if err != nil {
		return nil, err
	}
	infoData, err := decompressStream(docInfoStream, rawInfo, c.Compressed)
	if err != nil {
		return nil, err
	}
	di, err := parseDocInfo(infoData)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	if !cfg.skipMetadata {
		doc.Metadata = readMetadata(c)
	}

	// The declared section count and the directory can disagree; trust
	// whichever claims more. A gap inside that range means the container
	// lost a stream, which is fatal.
	total := max(di.SectionCount, c.highestSectionIndex()+1)
	for i := 0; i < total; i++ {
		name := sectionStreamName(i)
		raw, err := c.ReadStream(name)
		if err != nil {
			return nil, err
		}
		body, err := decompressStream(name, raw, c.Compressed)
		if err != nil {
			return nil, err
		}
		sec, err := buildSection(name, NewRecordScanner(name, body))
		if err != nil {
			return nil, err
		}
		doc.Sections = append(doc.Sections, sec)
	}

	return normalizeWith(doc, di, cfg.normalize), nil
}
