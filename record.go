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

import "encoding/binary"

// Record is one tag-length-value unit of a decompressed HWP stream.
// Records form an implicit tree via level transitions: a record at level L
// is a child of the most recent preceding record at level L-1.
type Record struct {
	Tag     uint16
	Level   int
	Payload []byte
	// Offset is the byte position of the record header within its stream,
	// carried for error context.
	Offset int64
}

// RecordScanner walks a decompressed stream as a sequence of records, in
// the style of bufio.Scanner:
//
//	sc := NewRecordScanner("BodyText/Section0", data)
//	for sc.Scan() {
//		rec := sc.Record()
//		...
//	}
//	if err := sc.Err(); err != nil { ... }
//
// The scanner holds no state beyond a cursor into the input buffer, so
// scanning the same bytes twice yields identical sequences. Payload slices
// alias the input buffer and must not be mutated.
type RecordScanner struct {
	stream string
	buf    []byte
	off    int
	rec    Record
	err    error
}

// NewRecordScanner returns a scanner over a decompressed stream. The
// stream name is only used for error context.
func NewRecordScanner(stream string, buf []byte) *RecordScanner {
	return &RecordScanner{stream: stream, buf: buf}
}

// Each record starts with a 32-bit little-endian header packing the tag id
// (bits 0-9), nesting level (bits 10-19) and payload size (bits 20-31).
// A size field of 0xFFF is an escape: the real size follows as a uint32.
const (
	recordHeaderSize = 4
	sizeEscape       = 0xFFF
)

// Scan advances to the next record. It returns false at the end of the
// buffer or on error; the two cases are distinguished by Err.
func (s *RecordScanner) Scan() bool {
	if s.err != nil || s.off >= len(s.buf) {
		return false
	}
	start := s.off
	if len(s.buf)-s.off < recordHeaderSize {
		s.err = &TruncatedRecordError{
			Stream:    s.stream,
			Offset:    int64(start),
			Declared:  recordHeaderSize,
			Remaining: len(s.buf) - s.off,
		}
		return false
	}
	header := binary.LittleEndian.Uint32(s.buf[s.off:])
	tag := uint16(header & 0x3FF)
	level := int((header >> 10) & 0x3FF)
	size := int((header >> 20) & 0xFFF)
	s.off += recordHeaderSize

	if size == sizeEscape {
		if len(s.buf)-s.off < 4 {
			s.err = &TruncatedRecordError{
				Stream:    s.stream,
				Offset:    int64(start),
				Declared:  4,
				Remaining: len(s.buf) - s.off,
			}
			return false
		}
		size = int(binary.LittleEndian.Uint32(s.buf[s.off:]))
		s.off += 4
	}

	if size > len(s.buf)-s.off {
		s.err = &TruncatedRecordError{
			Stream:    s.stream,
			Offset:    int64(start),
			Declared:  size,
			Remaining: len(s.buf) - s.off,
		}
		return false
	}

	s.rec = Record{
		Tag:     tag,
		Level:   level,
		Payload: s.buf[s.off : s.off+size],
		Offset:  int64(start),
	}
	s.off += size
	return true
}

// Record returns the record read by the last successful call to Scan.
func (s *RecordScanner) Record() Record { return s.rec }

// Err returns the first error encountered, or nil if the scanner stopped
// cleanly at the end of the buffer.
func (s *RecordScanner) Err() error { return s.err }
