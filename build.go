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
	"encoding/binary"
	"unicode/utf16"
)

// The builder reconstructs a document tree from the flat record sequence
// of one body stream. Nesting is tracked with an explicit stack of open
// entries keyed by record level; there is no recursive-descent state, so
// the traversal can stop at any record boundary.

// openEntry is one frame of the builder stack. Property records (text,
// shape runs, layout segments) push a frame with a nil node; their data is
// absorbed by the nearest ancestor instead.
type openEntry struct {
	level int
	node  Node
	para  *paraBuilder
}

// buildSection consumes a record scanner and returns the section tree.
// Known tags become typed nodes; unknown tags are preserved as Opaque
// nodes so no information is silently dropped.
func buildSection(stream string, sc *RecordScanner) (*Section, error) {
	root := &Section{}
	stack := []openEntry{{level: -1, node: root}}

	for sc.Scan() {
		rec := sc.Record()

		// Levels may deepen by at most one per record.
		if rec.Level > stack[len(stack)-1].level+1 {
			return nil, &MalformedLevelSequenceError{
				Stream:    stream,
				Offset:    rec.Offset,
				FromLevel: stack[len(stack)-1].level,
				ToLevel:   rec.Level,
			}
		}

		// Close entries at or below the new record's level.
		for len(stack) > 1 && stack[len(stack)-1].level >= rec.Level {
			if closed := stack[len(stack)-1]; closed.para != nil {
				closed.para.finish()
			}
			stack = stack[:len(stack)-1]
		}

		entry := openEntry{level: rec.Level}
		switch rec.Tag {
		case TagParaHeader:
			p := parseParaHeader(rec.Payload)
			appendToAncestor(stack, p)
			entry.node = p
			entry.para = &paraBuilder{para: p}

		case TagParaText:
			if pb := nearestPara(stack); pb != nil {
				pb.items = append(pb.items, decodeParaText(rec.Payload)...)
			}

		case TagParaCharShape:
			if pb := nearestPara(stack); pb != nil {
				pb.shapes = append(pb.shapes, parseShapeRuns(rec.Payload)...)
			}

		case TagParaLineSeg, TagParaRangeTag:
			// Layout-only records; no structural content.

		case TagCtrlHeader:
			entry.node = buildCtrl(stack, rec)

		case TagTable:
			if t := nearestTable(stack); t != nil {
				parseTableRecord(t, rec.Payload)
			}

		case TagListHeader:
			if t := nearestTable(stack); t != nil {
				cell, hasAddr := parseCell(rec.Payload)
				attachCell(t, cell, hasAddr)
				entry.node = cell
			} else {
				// List bodies of non-table controls (headers, footers,
				// text boxes) still hold paragraphs worth keeping.
				op := &Opaque{Tag: rec.Tag, Payload: rec.Payload}
				appendToAncestor(stack, op)
				entry.node = op
			}

		default:
			op := &Opaque{Tag: rec.Tag, Payload: rec.Payload}
			appendToAncestor(stack, op)
			entry.node = op
		}
		stack = append(stack, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for i := len(stack) - 1; i >= 1; i-- {
		if stack[i].para != nil {
			stack[i].para.finish()
		}
	}
	return root, nil
}

// buildCtrl maps a CTRL_HEADER record to a node by its four-character
// control id. Tables get a typed node. Section and column definitions
// hold page geometry only, so their subtrees stay detached from the
// content tree and are discarded. Everything else is opaque; headers,
// footers and drawing objects keep their list bodies that way.
func buildCtrl(stack []openEntry, rec Record) Node {
	if len(rec.Payload) >= 4 {
		switch binary.LittleEndian.Uint32(rec.Payload) {
		case ctrlTable:
			t := &Table{}
			appendToAncestor(stack, t)
			return t
		case ctrlSectionDef, ctrlColumnDef:
			return &Opaque{Tag: rec.Tag, Payload: rec.Payload}
		case ctrlHeaderArea, ctrlFooterArea, ctrlGenShapeObject:
			// Anchored content: paragraphs below these are worth keeping.
		}
	}
	op := &Opaque{Tag: rec.Tag, Payload: rec.Payload}
	appendToAncestor(stack, op)
	return op
}

// appendToAncestor attaches child to the nearest open node that can hold
// children. Tables are skipped: their children arrive via LIST_HEADER
// cells and are routed by attachCell.
func appendToAncestor(stack []openEntry, child Node) {
	for i := len(stack) - 1; i >= 0; i-- {
		switch n := stack[i].node.(type) {
		case *Section:
			n.Children = append(n.Children, child)
			return
		case *Paragraph:
			n.Children = append(n.Children, child)
			return
		case *TableCell:
			n.Children = append(n.Children, child)
			return
		case *ListItem:
			n.Children = append(n.Children, child)
			return
		case *Opaque:
			n.Children = append(n.Children, child)
			return
		}
	}
}

func nearestPara(stack []openEntry) *paraBuilder {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].para != nil {
			return stack[i].para
		}
	}
	return nil
}

func nearestTable(stack []openEntry) *Table {
	for i := len(stack) - 1; i >= 0; i-- {
		if t, ok := stack[i].node.(*Table); ok {
			return t
		}
	}
	return nil
}

// PARA_HEADER layout: char count (4), control mask (4), paragraph shape
// id (2), style id (1). Later fields are layout-only.
func parseParaHeader(p []byte) *Paragraph {
	para := &Paragraph{ParaShapeID: -1, StyleID: -1}
	if len(p) >= 10 {
		para.ParaShapeID = int(binary.LittleEndian.Uint16(p[8:]))
	}
	if len(p) >= 11 {
		para.StyleID = int(p[10])
	}
	return para
}

// TABLE layout: property word (4), row count (2), column count (2),
// cell spacing and margins after that.
func parseTableRecord(t *Table, p []byte) {
	if len(p) >= 8 {
		t.RowCount = int(binary.LittleEndian.Uint16(p[4:]))
		t.ColCount = int(binary.LittleEndian.Uint16(p[6:]))
	}
}

// Table cell LIST_HEADER: paragraph count (2) and property word (4),
// then for table cells the cell address: column (2), row (2), column
// span (2), row span (2), followed by width, height and margins.
func parseCell(p []byte) (*TableCell, bool) {
	cell := &TableCell{RowSpan: 1, ColSpan: 1}
	if len(p) < 14 {
		return cell, false
	}
	col := int(binary.LittleEndian.Uint16(p[6:]))
	row := int(binary.LittleEndian.Uint16(p[8:]))
	if col >= 0x2000 || row >= 0x2000 {
		// Implausible address; fall back to sequential placement.
		return cell, false
	}
	cell.Col = col
	cell.Row = row
	cell.ColSpan = max(1, int(binary.LittleEndian.Uint16(p[10:])))
	cell.RowSpan = max(1, int(binary.LittleEndian.Uint16(p[12:])))
	return cell, true
}

// attachCell places a cell in its addressed row, growing the row list as
// needed, or appends sequentially when the record carried no address.
func attachCell(t *Table, cell *TableCell, hasAddr bool) {
	if hasAddr {
		for len(t.Rows) <= cell.Row {
			t.Rows = append(t.Rows, &TableRow{})
		}
		t.Rows[cell.Row].Cells = append(t.Rows[cell.Row].Cells, cell)
		return
	}
	if len(t.Rows) == 0 || (t.ColCount > 0 && len(t.Rows[len(t.Rows)-1].Cells) >= t.ColCount) {
		t.Rows = append(t.Rows, &TableRow{})
	}
	row := t.Rows[len(t.Rows)-1]
	cell.Row = len(t.Rows) - 1
	cell.Col = len(row.Cells)
	row.Cells = append(row.Cells, cell)
}

// paraBuilder accumulates a paragraph's text and character-shape runs
// until the paragraph closes, then materializes TextRun and LineBreak
// children. Anchored objects (tables, opaque controls) were appended as
// the records arrived; runs are placed before them.
type paraBuilder struct {
	para   *Paragraph
	items  []textItem
	shapes []shapeRun
}

func (pb *paraBuilder) finish() {
	if runs := buildRunNodes(pb.items, pb.shapes); len(runs) > 0 {
		pb.para.Children = append(runs, pb.para.Children...)
	}
}

// textItem is one decoded unit of paragraph text: either a rune or an
// explicit line break. pos is the UTF-16 code-unit index within the
// paragraph, which is the coordinate space PARA_CHAR_SHAPE uses.
type textItem struct {
	pos int
	br  bool
	r   rune
}

// shapeRun marks that character shape ID applies from code unit Start on.
type shapeRun struct {
	Start int
	ID    int
}

func parseShapeRuns(p []byte) []shapeRun {
	var runs []shapeRun
	for off := 0; off+8 <= len(p); off += 8 {
		runs = append(runs, shapeRun{
			Start: int(binary.LittleEndian.Uint32(p[off:])),
			ID:    int(binary.LittleEndian.Uint32(p[off+4:])),
		})
	}
	return runs
}

// Control characters below 32 in paragraph text occupy either one code
// unit (char controls) or eight (inline and extended controls, which
// carry 14 bytes of parameter data after the code).
var ctrlWidth = [32]int{
	0:  1,
	1:  8,
	2:  8,
	3:  8,
	4:  8,
	5:  8,
	6:  8,
	7:  8,
	8:  8,
	9:  8, // tab
	10: 1, // line break
	11: 8, // drawing object / table anchor
	12: 8,
	13: 1, // paragraph mark
	14: 8,
	15: 8,
	16: 8,
	17: 8,
	18: 8,
	19: 8,
	20: 8,
	21: 8,
	22: 8,
	23: 8,
	24: 1, // hyphen
	25: 1,
	26: 1,
	27: 1,
	28: 1,
	29: 1,
	30: 1, // non-breaking space
	31: 1, // fixed-width space
}

// decodeParaText translates the UTF-16LE payload of a PARA_TEXT record.
// Control characters are translated (tab, break, hyphen, spaces) or
// skipped (anchors and field markers); none survive as raw bytes.
func decodeParaText(p []byte) []textItem {
	units := make([]uint16, len(p)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(p[i*2:])
	}

	var items []textItem
	for i := 0; i < len(units); {
		u := units[i]
		if u < 32 {
			switch u {
			case 9:
				items = append(items, textItem{pos: i, r: '\t'})
			case 10:
				items = append(items, textItem{pos: i, br: true})
			case 13:
				// Paragraph mark; the paragraph record boundary already
				// delimits the text.
			case 24:
				items = append(items, textItem{pos: i, r: '-'})
			case 30:
				items = append(items, textItem{pos: i, r: '\u00a0'})
			case 31:
				items = append(items, textItem{pos: i, r: ' '})
			}
			i += ctrlWidth[u]
			continue
		}
		if utf16.IsSurrogate(rune(u)) && i+1 < len(units) {
			items = append(items, textItem{pos: i, r: utf16.DecodeRune(rune(u), rune(units[i+1]))})
			i += 2
			continue
		}
		items = append(items, textItem{pos: i, r: rune(u)})
		i++
	}
	return items
}

// buildRunNodes splits decoded text at shape-run boundaries and line
// breaks. With no shape runs the whole text becomes one run with an
// unresolved shape id; Normalize applies the default format to it.
func buildRunNodes(items []textItem, shapes []shapeRun) []Node {
	var nodes []Node
	var cur []rune
	curID := -1

	flush := func() {
		if len(cur) > 0 {
			nodes = append(nodes, &TextRun{Text: string(cur), CharShapeID: curID})
			cur = nil
		}
	}

	si := 0
	for _, it := range items {
		id := curID
		for si < len(shapes) && shapes[si].Start <= it.pos {
			id = shapes[si].ID
			si++
		}
		if id != curID {
			flush()
			curID = id
		}
		if it.br {
			flush()
			nodes = append(nodes, &LineBreak{})
			continue
		}
		cur = append(cur, it.r)
	}
	flush()
	return nodes
}
