package hwpdown

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

// DocInfo is the document-global table of formatting definitions
// referenced by id from body content. It is built once per document and
// read-only afterwards; Normalize copies resolved attributes into the
// tree so DocInfo can be discarded after normalization.
type DocInfo struct {
	CharShapes []CharShape
	ParaShapes []ParaShape
	Styles     []Style

	// SectionCount is the number of body sections the document declares.
	SectionCount int
}

// CharShape is one character formatting definition. Ids are positional:
// the Nth CHAR_SHAPE record in the DocInfo stream defines shape id N.
type CharShape struct {
	Format Format
}

// Paragraph heading kinds from the PARA_SHAPE property word.
const (
	headingNone = iota
	headingOutline
	headingNumber
	headingBullet
)

// ParaShape is one paragraph formatting definition.
type ParaShape struct {
	Align Alignment
	// HeadingKind distinguishes plain, outline, numbered and bulleted
	// paragraphs; HeadingLevel is the 0-based outline/list depth.
	HeadingKind  int
	HeadingLevel int
}

// Style is a named style definition linking to paragraph and character
// shapes. Style names carry the outline hints ("개요 1", "Heading 1")
// some producers use instead of paragraph-shape heading bits.
type Style struct {
	Name        string
	EnglishName string
	ParaShapeID int
	CharShapeID int
}

// parseDocInfo decodes the formatting records of the DocInfo stream.
// Record tags outside the table below carry no formatting this package
// resolves and are skipped.
func parseDocInfo(data []byte) (*DocInfo, error) {
	di := &DocInfo{SectionCount: 1}
	sc := NewRecordScanner(docInfoStream, data)
	for sc.Scan() {
		rec := sc.Record()
		switch rec.Tag {
		case TagDocumentProperties:
			if len(rec.Payload) >= 2 {
				di.SectionCount = int(binary.LittleEndian.Uint16(rec.Payload))
			}
		case TagCharShape:
			di.CharShapes = append(di.CharShapes, parseCharShape(rec.Payload))
		case TagParaShape:
			di.ParaShapes = append(di.ParaShapes, parseParaShape(rec.Payload))
		case TagStyle:
			di.Styles = append(di.Styles, parseStyle(rec.Payload))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return di, nil
}

// CHAR_SHAPE layout: 7 face ids (14 bytes), per-language ratio, spacing,
// relative size and offset arrays (7 bytes each), then base size and the
// attribute word. Short payloads keep the defaults.
func parseCharShape(p []byte) CharShape {
	cs := CharShape{Format: DefaultFormat()}
	if len(p) >= 46 {
		cs.Format.SizePt = float64(int32(binary.LittleEndian.Uint32(p[42:]))) / 100
	}
	if len(p) >= 50 {
		attr := binary.LittleEndian.Uint32(p[46:])
		cs.Format.Italic = attr&(1<<0) != 0
		cs.Format.Bold = attr&(1<<1) != 0
		cs.Format.Underline = (attr>>2)&0x3 != 0
		cs.Format.Strike = (attr>>18)&0x7 != 0
	}
	return cs
}

// PARA_SHAPE property word: alignment in bits 2-4, heading kind in bits
// 23-24, heading level in bits 25-27.
func parseParaShape(p []byte) ParaShape {
	ps := ParaShape{}
	if len(p) >= 4 {
		attr := binary.LittleEndian.Uint32(p)
		ps.Align = Alignment((attr >> 2) & 0x7)
		ps.HeadingKind = int((attr >> 23) & 0x3)
		ps.HeadingLevel = int((attr >> 25) & 0x7)
	}
	return ps
}

// STYLE layout: local name and english name as length-prefixed UTF-16LE
// strings, then property byte, next-style id, language id and the shape
// references.
func parseStyle(p []byte) Style {
	st := Style{ParaShapeID: -1, CharShapeID: -1}
	name, rest := readHWPString(p)
	st.Name = name
	eng, rest := readHWPString(rest)
	st.EnglishName = eng
	if len(rest) >= 8 {
		st.ParaShapeID = int(binary.LittleEndian.Uint16(rest[4:]))
		st.CharShapeID = int(binary.LittleEndian.Uint16(rest[6:]))
	}
	return st
}

// readHWPString decodes a length-prefixed UTF-16LE string. The prefix
// counts code units, not bytes.
func readHWPString(p []byte) (string, []byte) {
	if len(p) < 2 {
		return "", nil
	}
	n := int(binary.LittleEndian.Uint16(p))
	p = p[2:]
	if n*2 > len(p) {
		return "", nil
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := dec.Bytes(p[:n*2])
	if err != nil {
		return "", p[n*2:]
	}
	return string(decoded), p[n*2:]
}

// CharFormat resolves a character shape id to its formatting attributes.
// Unresolvable ids fall back to DefaultFormat.
func (di *DocInfo) CharFormat(id int) Format {
	if di != nil && id >= 0 && id < len(di.CharShapes) {
		return di.CharShapes[id].Format
	}
	return DefaultFormat()
}

// ParaStyle resolves a paragraph shape id; unresolvable ids yield the
// zero ParaShape (justified, no heading).
func (di *DocInfo) ParaStyle(id int) ParaShape {
	if di != nil && id >= 0 && id < len(di.ParaShapes) {
		return di.ParaShapes[id]
	}
	return ParaShape{}
}

// StyleByID resolves a style id, or returns false when out of range.
func (di *DocInfo) StyleByID(id int) (Style, bool) {
	if di != nil && id >= 0 && id < len(di.Styles) {
		return di.Styles[id], true
	}
	return Style{}, false
}
