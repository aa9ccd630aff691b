package hwpdown

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Result holds the output of a full conversion.
type Result struct {
	Markdown string
	Title    string
	Metadata Metadata
}

// ToMarkdown renders a normalized document tree as markdown: headings as
// #-prefixed lines, tables as pipe tables, list items as - / 1. lines,
// bold and italic as inline emphasis. Opaque nodes are transparent so
// known content nested inside unknown controls still renders.
func ToMarkdown(doc *Document) string {
	var blocks []string
	for _, sec := range doc.Sections {
		blocks = append(blocks, renderBlocks(sec.Children)...)
	}
	return normalizeOutput(strings.Join(blocks, "\n\n"))
}

func renderBlocks(nodes []Node) []string {
	var blocks []string
	for _, n := range nodes {
		switch n := n.(type) {
		case *Paragraph:
			blocks = append(blocks, renderParagraph(n)...)
		case *Table:
			if s := renderTable(n); s != "" {
				blocks = append(blocks, s)
			}
		case *ListItem:
			blocks = append(blocks, renderListItem(n)...)
		case *Opaque:
			blocks = append(blocks, renderBlocks(n.Children)...)
		case *TextRun:
			if s := renderRun(n); strings.TrimSpace(s) != "" {
				blocks = append(blocks, s)
			}
		}
	}
	return blocks
}

// renderParagraph emits the paragraph's inline content, then any anchored
// block content (tables, text boxes) as separate blocks.
func renderParagraph(p *Paragraph) []string {
	var inline strings.Builder
	var after []string
	for _, child := range p.Children {
		switch c := child.(type) {
		case *TextRun:
			inline.WriteString(renderRun(c))
		case *LineBreak:
			inline.WriteString("\n")
		case *Table:
			if s := renderTable(c); s != "" {
				after = append(after, s)
			}
		case *ListItem:
			after = append(after, renderListItem(c)...)
		case *Opaque:
			after = append(after, renderBlocks(c.Children)...)
		}
	}

	var blocks []string
	text := strings.TrimRight(inline.String(), "\n")
	if strings.TrimSpace(text) != "" {
		if p.HeadingLevel > 0 {
			line := strings.Join(strings.Fields(text), " ")
			text = strings.Repeat("#", p.HeadingLevel) + " " + line
		}
		blocks = append(blocks, text)
	}
	return append(blocks, after...)
}

// renderRun wraps the run text in emphasis markers, keeping surrounding
// whitespace outside the markers so adjacent runs stay valid markdown.
func renderRun(r *TextRun) string {
	t := r.Text
	if r.Format == nil {
		return t
	}
	core := strings.TrimSpace(t)
	if core == "" {
		return t
	}
	lead := t[:strings.Index(t, core)]
	trail := t[strings.Index(t, core)+len(core):]
	if r.Format.Bold {
		core = "**" + core + "**"
	}
	if r.Format.Italic {
		core = "*" + core + "*"
	}
	if r.Format.Strike {
		core = "~~" + core + "~~"
	}
	return lead + core + trail
}

func renderListItem(li *ListItem) []string {
	marker := "- "
	if li.Ordered {
		marker = "1. "
	}
	indent := strings.Repeat("  ", li.Level)

	var lines []string
	var extra []string
	for _, child := range li.Children {
		switch c := child.(type) {
		case *Paragraph:
			text := strings.Join(strings.Fields(inlineText(c.Children)), " ")
			if text != "" {
				lines = append(lines, indent+marker+text)
			}
		default:
			extra = append(extra, renderBlocks([]Node{child})...)
		}
	}
	return append(lines, extra...)
}

// renderTable emits a pipe table. The first row doubles as the header,
// matching how the source format's tables are typically authored; rows
// are padded to the widest column count so the table stays rectangular.
func renderTable(t *Table) string {
	if len(t.Rows) == 0 {
		return ""
	}
	cols := t.ColCount
	for _, row := range t.Rows {
		cols = max(cols, len(row.Cells))
	}
	if cols == 0 {
		return ""
	}

	var b strings.Builder
	for i, row := range t.Rows {
		b.WriteString("|")
		for c := 0; c < cols; c++ {
			b.WriteString(" ")
			if c < len(row.Cells) {
				b.WriteString(cellText(row.Cells[c]))
			}
			b.WriteString(" |")
		}
		b.WriteString("\n")
		if i == 0 {
			b.WriteString("|")
			for c := 0; c < cols; c++ {
				b.WriteString(" --- |")
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// cellText flattens a cell to a single pipe-safe line.
func cellText(cell *TableCell) string {
	text := inlineText(cell.Children)
	text = strings.ReplaceAll(text, "|", `\|`)
	return strings.Join(strings.Fields(text), " ")
}

// inlineText flattens nodes to inline markdown, separating block children
// with newlines.
func inlineText(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case *TextRun:
			b.WriteString(renderRun(n))
		case *LineBreak:
			b.WriteString("\n")
		case *Paragraph:
			b.WriteString(inlineText(n.Children))
			b.WriteString("\n")
		case *ListItem:
			b.WriteString(inlineText(n.Children))
			b.WriteString("\n")
		case *Opaque:
			b.WriteString(inlineText(n.Children))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// documentTitle prefers the metadata title, falling back to the first
// heading in the body.
func documentTitle(doc *Document) string {
	if doc.Metadata.Title != "" {
		return doc.Metadata.Title
	}
	for _, sec := range doc.Sections {
		if t := firstHeading(sec.Children); t != "" {
			return t
		}
	}
	return ""
}

func firstHeading(nodes []Node) string {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Paragraph:
			if n.HeadingLevel > 0 {
				return strings.Join(strings.Fields(inlineText(n.Children)), " ")
			}
		case *Opaque:
			if t := firstHeading(n.Children); t != "" {
				return t
			}
		}
	}
	return ""
}

var (
	reTrailingWhitespace = regexp.MustCompile(`[ \t]+\n`)
	reMultipleNewlines   = regexp.MustCompile(`\n{3,}`)
	reCRLF               = regexp.MustCompile(`\r\n?`)
)

// normalizeOutput applies the final cleanup pass to rendered markdown:
// - Normalize line endings (CRLF -> LF)
// - Strip non-printable/control characters (keep \n, \t)
// - Strip trailing whitespace from each line
// - Collapse 3+ consecutive newlines to 2
// - Ensure output is valid UTF-8
// - Trim leading/trailing whitespace from final output
func normalizeOutput(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	s = reCRLF.ReplaceAllString(s, "\n")

	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	// A trailing newline ensures the last line is processed.
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	s = reTrailingWhitespace.ReplaceAllString(s, "\n")
	s = reMultipleNewlines.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
