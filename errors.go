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
	"errors"
	"fmt"
)

// All parse errors are fatal to the document: every stage either hands the
// next stage a fully valid artifact or one of the error types below, each
// carrying enough context (stream name, byte offset) to diagnose the input
// without re-parsing. Formatting-resolution misses are never errors.

// InvalidContainerError is returned when the input is not a recognizable
// HWP container (bad compound-file magic, missing HWP signature).
type InvalidContainerError struct {
	Reason string
	Err    error
}

func (e *InvalidContainerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid container: %s: %v", e.Reason, e.Err)
	}
	return "invalid container: " + e.Reason
}

func (e *InvalidContainerError) Unwrap() error { return e.Err }

// CorruptDirectoryError is returned when the compound-file directory is
// internally inconsistent, e.g. a stream's claimed length exceeds the
// container size.
type CorruptDirectoryError struct {
	Entry  string
	Reason string
	Err    error
}

func (e *CorruptDirectoryError) Error() string {
	msg := "corrupt directory"
	if e.Entry != "" {
		msg += fmt.Sprintf(" entry %q", e.Entry)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptDirectoryError) Unwrap() error { return e.Err }

// MissingStreamError is returned when a stream the document references
// does not exist in the container.
type MissingStreamError struct {
	Stream string
}

func (e *MissingStreamError) Error() string {
	return fmt.Sprintf("missing stream %q", e.Stream)
}

// DecompressionError is returned when a body stream marked as compressed
// cannot be inflated. Corrupt input cannot self-heal, so this is surfaced
// rather than retried.
type DecompressionError struct {
	Stream string
	Err    error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("decompress stream %q: %v", e.Stream, e.Err)
}

func (e *DecompressionError) Unwrap() error { return e.Err }

// TruncatedRecordError is returned when a record header declares a payload
// extending past the end of its stream.
type TruncatedRecordError struct {
	Stream    string
	Offset    int64
	Declared  int
	Remaining int
}

func (e *TruncatedRecordError) Error() string {
	return fmt.Sprintf("truncated record in %q at offset %d: payload of %d bytes declared, %d remaining",
		e.Stream, e.Offset, e.Declared, e.Remaining)
}

// MalformedLevelSequenceError is returned when a record's nesting level
// jumps by more than one relative to its predecessor, which makes the
// record tree structurally unrecoverable.
type MalformedLevelSequenceError struct {
	Stream    string
	Offset    int64
	FromLevel int
	ToLevel   int
}

func (e *MalformedLevelSequenceError) Error() string {
	return fmt.Sprintf("malformed level sequence in %q at offset %d: level %d follows level %d",
		e.Stream, e.Offset, e.ToLevel, e.FromLevel)
}

// UnsupportedVersionError is returned when the file header declares a
// binary format version outside the supported range.
type UnsupportedVersionError struct {
	Version Version
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported HWP version %s", e.Version)
}

// UnsupportedDocumentError is returned for documents this package refuses
// to parse by design, such as password-protected or distribution (DRM)
// documents.
type UnsupportedDocumentError struct {
	Reason string
}

func (e *UnsupportedDocumentError) Error() string {
	return "unsupported document: " + e.Reason
}

// IsMissingStream reports whether the error is a MissingStreamError.
func IsMissingStream(err error) bool {
	var target *MissingStreamError
	return errors.As(err, &target)
}

// IsUnsupportedVersion reports whether the error is an UnsupportedVersionError.
func IsUnsupportedVersion(err error) bool {
	var target *UnsupportedVersionError
	return errors.As(err, &target)
}
