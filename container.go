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

package hwpdown

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/richardlehane/mscfb"
)

// Well-known stream names inside the compound file.
const (
	fileHeaderStream = "FileHeader"
	docInfoStream    = "DocInfo"
	summaryStream    = "\x05HwpSummaryInformation"
	bodyTextStorage  = "BodyText"
)

var hwpSignature = []byte("HWP Document File")

// Version is the binary format version declared in the FileHeader stream.
type Version struct {
	Major, Minor, Build, Revision uint8
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

const supportedMajorVersion = 5

// FileHeader attribute bits.
const (
	attrCompressed   = 1 << 0
	attrPassword     = 1 << 1
	attrDistribution = 1 << 2
)

// fileHeaderMinSize covers the part of the FileHeader stream this package
// reads: signature, version and the first attribute word.
const fileHeaderMinSize = 40

// Container is an opened HWP compound file: an in-memory index of named
// streams plus the decoded FileHeader. It never decompresses anything.
type Container struct {
	streams map[string][]byte
	order   []string

	// Version is the declared binary format version (major 5 supported).
	Version Version
	// Compressed reports whether body streams are deflate-compressed.
	Compressed bool
}

// OpenContainer parses the compound-file directory, reads every stream
// into the index and validates the FileHeader. The mscfb library handles
// the sector and directory plumbing; everything HWP-specific happens here.
func OpenContainer(data []byte) (*Container, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, &InvalidContainerError{Reason: "not a compound file", Err: err}
	}

	c := &Container{streams: make(map[string][]byte)}
	for entry, err := doc.Next(); err != io.EOF; entry, err = doc.Next() {
		if err != nil {
			return nil, &CorruptDirectoryError{Reason: "directory walk failed", Err: err}
		}
		name := entryPath(entry)
		if entry.Size < 0 || entry.Size > int64(len(data)) {
			return nil, &CorruptDirectoryError{
				Entry:  name,
				Reason: fmt.Sprintf("stream length %d exceeds container size %d", entry.Size, len(data)),
			}
		}
		buf := make([]byte, entry.Size)
		if entry.Size > 0 {
			if _, err := io.ReadFull(entry, buf); err != nil {
				return nil, &CorruptDirectoryError{Entry: name, Reason: "stream shorter than declared length", Err: err}
			}
		}
		c.streams[name] = buf
		c.order = append(c.order, name)
	}

	if err := c.readFileHeader(); err != nil {
		return nil, err
	}
	return c, nil
}

func entryPath(entry *mscfb.File) string {
	if len(entry.Path) == 0 {
		return entry.Name
	}
	return strings.Join(entry.Path, "/") + "/" + entry.Name
}

// readFileHeader validates the signature, decodes the version and rejects
// documents this package does not parse (wrong major version, password
// protection, DRM distribution format).
func (c *Container) readFileHeader() error {
	fh, ok := c.streams[fileHeaderStream]
	if !ok {
		return &MissingStreamError{Stream: fileHeaderStream}
	}
	if len(fh) < fileHeaderMinSize || !bytes.HasPrefix(fh, hwpSignature) {
		return &InvalidContainerError{Reason: "FileHeader signature mismatch"}
	}

	// Version is stored little-endian: revision, build, minor, major.
	c.Version = Version{Major: fh[35], Minor: fh[34], Build: fh[33], Revision: fh[32]}
	if c.Version.Major != supportedMajorVersion {
		return &UnsupportedVersionError{Version: c.Version}
	}

	attr := binary.LittleEndian.Uint32(fh[36:])
	if attr&attrPassword != 0 {
		return &UnsupportedDocumentError{Reason: "password-protected document"}
	}
	if attr&attrDistribution != 0 {
		return &UnsupportedDocumentError{Reason: "distribution (DRM) document"}
	}
	c.Compressed = attr&attrCompressed != 0
	return nil
}

// ReadStream returns the raw, possibly compressed bytes of a named stream.
func (c *Container) ReadStream(name string) ([]byte, error) {
	buf, ok := c.streams[name]
	if !ok {
		return nil, &MissingStreamError{Stream: name}
	}
	return buf, nil
}

// HasStream reports whether the container holds a stream with that name.
func (c *Container) HasStream(name string) bool {
	_, ok := c.streams[name]
	return ok
}

// Streams returns all stream names in directory order.
func (c *Container) Streams() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func sectionStreamName(index int) string {
	return fmt.Sprintf("%s/Section%d", bodyTextStorage, index)
}

// highestSectionIndex returns the largest BodyText/SectionN index present
// in the container, or -1 when it holds no section streams.
func (c *Container) highestSectionIndex() int {
	best := -1
	for _, name := range c.order {
		rest, ok := strings.CutPrefix(name, bodyTextStorage+"/Section")
		if !ok {
			continue
		}
		if idx, err := strconv.Atoi(rest); err == nil && idx > best {
			best = idx
		}
	}
	return best
}
