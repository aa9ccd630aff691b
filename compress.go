package hwpdown

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
)

// HWP body streams (DocInfo, BodyText/Section*) are raw deflate streams
// with no zlib wrapper when the FileHeader compression flag is set. The
// flag is document-level: the same transform applies uniformly to all
// body streams.

// decompressStream inflates a body stream according to the document-level
// compression flag. Decompression is deterministic: the same input always
// yields the same output. A zero-length stream inflates to zero bytes.
func decompressStream(name string, data []byte, compressed bool) ([]byte, error) {
	if !compressed || len(data) == 0 {
		return data, nil
	}
	fr := flate.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, &DecompressionError{Stream: name, Err: err}
	}
	if err := fr.Close(); err != nil {
		return nil, &DecompressionError{Stream: name, Err: err}
	}
	return out, nil
}

// compressStream is the inverse transform. The parser never writes HWP
// files; this exists so fixtures and round-trip checks use the exact
// algorithm the decompressor expects.
func compressStream(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
