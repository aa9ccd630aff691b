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

// Node is implemented by every node of the document tree. The node set is
// deliberately open: content encoded with a tag id this package does not
// understand is carried as an Opaque node instead of being dropped.
type Node interface {
	isNode()
}

// Document is the root artifact of a parse. It is fully self-contained:
// after normalization every TextRun carries its own resolved Format, so
// the DocInfo table the document was built against can be discarded.
type Document struct {
	Sections []*Section
	Metadata Metadata
}

// Metadata holds best-effort document properties from the summary
// information stream (binary HWP) or the package manifest (HWPX).
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
}

// Section is one body section of the document.
type Section struct {
	Children []Node
}

// Alignment is the horizontal paragraph alignment.
type Alignment int

const (
	AlignJustify Alignment = iota
	AlignLeft
	AlignRight
	AlignCenter
	AlignDistribute
	AlignDivide
)

// Paragraph is a block of text runs, breaks and anchored objects.
//
// ParaShapeID and StyleID reference the DocInfo table; HeadingLevel and
// Align are filled in by Normalize. A HeadingLevel of 0 means body text.
type Paragraph struct {
	Children     []Node
	ParaShapeID  int
	StyleID      int
	HeadingLevel int
	Align        Alignment
}

// TextRun is a span of text with uniform character formatting.
// Format is nil until Normalize resolves CharShapeID against DocInfo.
type TextRun struct {
	Text        string
	CharShapeID int
	Format      *Format
}

// LineBreak is an explicit in-paragraph line break.
type LineBreak struct{}

// Table is a grid of rows and cells.
type Table struct {
	RowCount int
	ColCount int
	Rows     []*TableRow
}

// TableRow is one row of a table.
type TableRow struct {
	Cells []*TableCell
}

// TableCell is one cell; its Children are paragraphs.
type TableCell struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int

	Children []Node
}

// ListItem wraps a paragraph whose shape declares a numbered or bulleted
// marker. Level is the 0-based nesting depth.
type ListItem struct {
	Ordered  bool
	Level    int
	Children []Node
}

// Opaque preserves a record with an unrecognized tag id, including any
// children decoded beneath it. Traversal continues through opaque nodes
// so known content nested inside them is not lost.
type Opaque struct {
	Tag      uint16
	Payload  []byte
	Children []Node
}

func (*Section) isNode()   {}
func (*Paragraph) isNode() {}
func (*TextRun) isNode()   {}
func (*LineBreak) isNode() {}
func (*Table) isNode()     {}
func (*TableRow) isNode()  {}
func (*TableCell) isNode() {}
func (*ListItem) isNode()  {}
func (*Opaque) isNode()    {}

// Format holds resolved character formatting attributes.
type Format struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	SizePt    float64
}

// DefaultFormat is the fallback used when a character shape id cannot be
// resolved: plain text at the base size. Formatting loss is acceptable,
// document loss is not.
func DefaultFormat() Format {
	return Format{SizePt: 10}
}
