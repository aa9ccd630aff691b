package hwpdown

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nicholasgasior/hwpdown-go/internal/owpml"
)

// HWPX is the XML sibling of the binary format: a ZIP package with OWPML
// content. Sections map to Contents/section*.xml, the DocInfo equivalent
// lives in Contents/header.xml, and metadata in the .hpf manifest. The
// parse produces the same *Document the binary pipeline does.

func parseHWPX(data []byte, cfg *config) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &InvalidContainerError{Reason: "invalid zip package", Err: err}
	}

	if err := checkHWPXVersion(zr); err != nil {
		return nil, err
	}

	doc := &Document{}
	if !cfg.skipMetadata {
		doc.Metadata = readHWPXMetadata(zr)
	}

	di := parseHWPXHeader(zr)

	sections := owpml.SectionFiles(zr)
	if len(sections) == 0 {
		return nil, &MissingStreamError{Stream: owpml.SectionPrefix + "0.xml"}
	}
	for _, name := range sections {
		raw, err := owpml.ReadFileFromZip(zr, name)
		if err != nil {
			return nil, &MissingStreamError{Stream: name}
		}
		sec, err := parseHWPXSection(name, raw)
		if err != nil {
			return nil, err
		}
		doc.Sections = append(doc.Sections, sec)
	}

	return normalizeWith(doc, di, cfg.normalize), nil
}

// checkHWPXVersion rejects packages whose version.xml declares a format
// major outside the supported range. Packages without a readable
// version.xml are accepted; the declaration is optional in the wild.
func checkHWPXVersion(zr *zip.Reader) error {
	data, err := owpml.ReadFileFromZip(zr, owpml.VersionPath)
	if err != nil {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		t, ok := tok.(xml.StartElement)
		if !ok || t.Name.Local != "HCFVersion" {
			continue
		}
		if major := attrInt(t, "major", supportedMajorVersion); major != supportedMajorVersion {
			return &UnsupportedVersionError{Version: Version{
				Major: uint8(major),
				Minor: uint8(attrInt(t, "minor", 0)),
			}}
		}
		return nil
	}
}

// parseHWPXHeader reads Contents/header.xml into a DocInfo table. OWPML
// keys shapes by explicit id attributes rather than record order, so the
// slices are grown to cover the highest id seen. A missing or malformed
// header just means default formatting.
func parseHWPXHeader(zr *zip.Reader) *DocInfo {
	di := &DocInfo{SectionCount: 1}
	data, err := owpml.ReadFileFromZip(zr, owpml.HeaderPath)
	if err != nil {
		return di
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	charID := -1
	paraID := -1
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "head":
				if n := attrInt(t, "secCnt", 0); n > 0 {
					di.SectionCount = n
				}
			case "charPr":
				charID = attrInt(t, "id", len(di.CharShapes))
				cs := CharShape{Format: DefaultFormat()}
				if h := attrInt(t, "height", 0); h > 0 {
					cs.Format.SizePt = float64(h) / 100
				}
				setCharShape(di, charID, cs)
			case "bold":
				if f := charFormatAt(di, charID); f != nil {
					f.Bold = true
				}
			case "italic":
				if f := charFormatAt(di, charID); f != nil {
					f.Italic = true
				}
			case "underline":
				if f := charFormatAt(di, charID); f != nil {
					f.Underline = !strings.EqualFold(attrString(t, "type", ""), "NONE")
				}
			case "strikeout":
				if f := charFormatAt(di, charID); f != nil {
					f.Strike = !strings.EqualFold(attrString(t, "shape", "NONE"), "NONE")
				}
			case "paraPr":
				paraID = attrInt(t, "id", len(di.ParaShapes))
				setParaShape(di, paraID, ParaShape{})
			case "align":
				if ps := paraShapeAt(di, paraID); ps != nil {
					ps.Align = parseHWPXAlign(attrString(t, "horizontal", ""))
				}
			case "heading":
				if ps := paraShapeAt(di, paraID); ps != nil {
					switch strings.ToUpper(attrString(t, "type", "")) {
					case "OUTLINE":
						ps.HeadingKind = headingOutline
					case "NUMBER":
						ps.HeadingKind = headingNumber
					case "BULLET":
						ps.HeadingKind = headingBullet
					}
					ps.HeadingLevel = attrInt(t, "level", 0)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "charPr":
				charID = -1
			case "paraPr":
				paraID = -1
			}
		}
	}
	return di
}

func setCharShape(di *DocInfo, id int, cs CharShape) {
	if id < 0 {
		return
	}
	for len(di.CharShapes) <= id {
		di.CharShapes = append(di.CharShapes, CharShape{Format: DefaultFormat()})
	}
	di.CharShapes[id] = cs
}

func charFormatAt(di *DocInfo, id int) *Format {
	if id < 0 || id >= len(di.CharShapes) {
		return nil
	}
	return &di.CharShapes[id].Format
}

func setParaShape(di *DocInfo, id int, ps ParaShape) {
	if id < 0 {
		return
	}
	for len(di.ParaShapes) <= id {
		di.ParaShapes = append(di.ParaShapes, ParaShape{})
	}
	di.ParaShapes[id] = ps
}

func paraShapeAt(di *DocInfo, id int) *ParaShape {
	if id < 0 || id >= len(di.ParaShapes) {
		return nil
	}
	return &di.ParaShapes[id]
}

func parseHWPXAlign(s string) Alignment {
	switch strings.ToUpper(s) {
	case "LEFT":
		return AlignLeft
	case "RIGHT":
		return AlignRight
	case "CENTER":
		return AlignCenter
	case "DISTRIBUTE":
		return AlignDistribute
	case "DISTRIBUTE_SPACE", "DIVIDE":
		return AlignDivide
	}
	return AlignJustify
}

// parseHWPXSection walks one section's XML tokens with an explicit
// container stack, mirroring the binary builder's level stack.
func parseHWPXSection(name string, data []byte) (*Section, error) {
	sec := &Section{}
	stack := []Node{sec}
	top := func() Node { return stack[len(stack)-1] }

	dec := xml.NewDecoder(bytes.NewReader(data))
	charID := -1
	inText := false
	var textBuf strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &InvalidContainerError{
				Reason: fmt.Sprintf("malformed section XML in %s", name),
				Err:    err,
			}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				p := &Paragraph{
					ParaShapeID: attrInt(t, "paraPrIDRef", -1),
					StyleID:     attrInt(t, "styleIDRef", -1),
				}
				appendHWPXChild(top(), p)
				stack = append(stack, p)
			case "run":
				charID = attrInt(t, "charPrIDRef", -1)
			case "t":
				inText = true
				textBuf.Reset()
			case "lineBreak":
				appendHWPXChild(top(), &LineBreak{})
			case "tbl":
				tbl := &Table{
					RowCount: attrInt(t, "rowCnt", 0),
					ColCount: attrInt(t, "colCnt", 0),
				}
				appendHWPXChild(top(), tbl)
				stack = append(stack, tbl)
			case "tr":
				row := &TableRow{}
				if tbl, ok := top().(*Table); ok {
					tbl.Rows = append(tbl.Rows, row)
				}
				stack = append(stack, row)
			case "tc":
				cell := &TableCell{RowSpan: 1, ColSpan: 1}
				if row, ok := top().(*TableRow); ok {
					if tbl, ok := stack[len(stack)-2].(*Table); ok {
						cell.Row = len(tbl.Rows) - 1
					}
					cell.Col = len(row.Cells)
					row.Cells = append(row.Cells, cell)
				}
				stack = append(stack, cell)
			case "cellAddr":
				if cell, ok := top().(*TableCell); ok {
					cell.Col = attrInt(t, "colAddr", cell.Col)
					cell.Row = attrInt(t, "rowAddr", cell.Row)
				}
			case "cellSpan":
				if cell, ok := top().(*TableCell); ok {
					cell.ColSpan = max(1, attrInt(t, "colSpan", 1))
					cell.RowSpan = max(1, attrInt(t, "rowSpan", 1))
				}
			}

		case xml.CharData:
			if inText {
				textBuf.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				if inText {
					appendHWPXChild(top(), &TextRun{Text: textBuf.String(), CharShapeID: charID})
					inText = false
				}
			case "run":
				charID = -1
			case "p", "tbl", "tr", "tc":
				if len(stack) > 1 {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}
	return sec, nil
}

func appendHWPXChild(parent, child Node) {
	switch p := parent.(type) {
	case *Section:
		p.Children = append(p.Children, child)
	case *Paragraph:
		p.Children = append(p.Children, child)
	case *TableCell:
		p.Children = append(p.Children, child)
	case *ListItem:
		p.Children = append(p.Children, child)
	case *Opaque:
		p.Children = append(p.Children, child)
	}
}

// readHWPXMetadata scans the package manifest for dc-style properties.
func readHWPXMetadata(zr *zip.Reader) Metadata {
	var md Metadata
	for _, name := range owpml.ManifestFiles(zr) {
		data, err := owpml.ReadFileFromZip(zr, name)
		if err != nil {
			continue
		}
		dec := xml.NewDecoder(bytes.NewReader(data))
		field := ""
		for {
			tok, err := dec.Token()
			if err != nil {
				break
			}
			switch t := tok.(type) {
			case xml.StartElement:
				switch t.Name.Local {
				case "title", "creator", "subject", "keyword", "keywords":
					field = t.Name.Local
				default:
					field = ""
				}
			case xml.CharData:
				text := strings.TrimSpace(string(t))
				if text == "" {
					continue
				}
				switch field {
				case "title":
					if md.Title == "" {
						md.Title = text
					}
				case "creator":
					if md.Author == "" {
						md.Author = text
					}
				case "subject":
					if md.Subject == "" {
						md.Subject = text
					}
				case "keyword", "keywords":
					if md.Keywords == "" {
						md.Keywords = text
					}
				}
			case xml.EndElement:
				field = ""
			}
		}
	}
	return md
}

func attrInt(t xml.StartElement, name string, def int) int {
	for _, attr := range t.Attr {
		if attr.Name.Local == name {
			if v, err := strconv.Atoi(attr.Value); err == nil {
				return v
			}
		}
	}
	return def
}

func attrString(t xml.StartElement, name, def string) string {
	for _, attr := range t.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return def
}
