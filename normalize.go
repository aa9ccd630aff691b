package hwpdown

import (
	"strconv"
	"strings"
)

// Normalize resolves every TextRun's character-shape reference into a
// copied Format, merges adjacent runs with identical formatting, and
// turns paragraph-shape hints into heading levels and list items.
//
// Normalize is pure and total: it never fails. Unresolvable shape ids
// fall back to DefaultFormat, because formatting loss is acceptable but
// document loss is not. After Normalize the tree is self-contained and
// the DocInfo table can be discarded.
func Normalize(doc *Document, di *DocInfo) *Document {
	return normalizeWith(doc, di, defaultNormalizeConfig())
}

type normalizeConfig struct {
	// headingStyles are style-name prefixes treated as headings when the
	// paragraph shape itself carries no outline bits. The digit following
	// the prefix selects the level.
	headingStyles []string
}

func defaultNormalizeConfig() normalizeConfig {
	return normalizeConfig{headingStyles: []string{"개요", "outline", "heading", "제목"}}
}

func normalizeWith(doc *Document, di *DocInfo, cfg normalizeConfig) *Document {
	for _, sec := range doc.Sections {
		sec.Children = normalizeNodes(sec.Children, di, cfg)
	}
	return doc
}

func normalizeNodes(nodes []Node, di *DocInfo, cfg normalizeConfig) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch n := n.(type) {
		case *Paragraph:
			n.Children = normalizeNodes(n.Children, di, cfg)
			n.Children = mergeRuns(n.Children)
			out = append(out, applyParaShape(n, di, cfg)...)

		case *TextRun:
			f := di.CharFormat(n.CharShapeID)
			n.Format = &f
			out = append(out, n)

		case *Table:
			for _, row := range n.Rows {
				for _, cell := range row.Cells {
					cell.Children = normalizeNodes(cell.Children, di, cfg)
				}
			}
			out = append(out, n)

		case *Opaque:
			n.Children = normalizeNodes(n.Children, di, cfg)
			out = append(out, n)

		case *ListItem:
			n.Children = normalizeNodes(n.Children, di, cfg)
			out = append(out, n)

		default:
			out = append(out, n)
		}
	}
	return out
}

// applyParaShape stamps alignment and heading level from the paragraph
// shape, or wraps the paragraph in a ListItem when the shape declares a
// numbered or bulleted marker.
func applyParaShape(p *Paragraph, di *DocInfo, cfg normalizeConfig) []Node {
	ps := di.ParaStyle(p.ParaShapeID)
	p.Align = ps.Align

	switch ps.HeadingKind {
	case headingOutline:
		p.HeadingLevel = min(ps.HeadingLevel+1, 6)
		return []Node{p}
	case headingNumber:
		return []Node{&ListItem{Ordered: true, Level: ps.HeadingLevel, Children: []Node{p}}}
	case headingBullet:
		return []Node{&ListItem{Level: ps.HeadingLevel, Children: []Node{p}}}
	}

	if lvl := headingFromStyle(di, p.StyleID, cfg); lvl > 0 {
		p.HeadingLevel = lvl
	}
	return []Node{p}
}

// headingFromStyle maps style names like "개요 1" or "Heading 2" to a
// heading level. Producers that never set the paragraph-shape outline
// bits still tag their headings this way.
func headingFromStyle(di *DocInfo, styleID int, cfg normalizeConfig) int {
	st, ok := di.StyleByID(styleID)
	if !ok {
		return 0
	}
	for _, name := range []string{st.Name, st.EnglishName} {
		if lvl := headingLevelFromName(name, cfg.headingStyles); lvl > 0 {
			return lvl
		}
	}
	return 0
}

func headingLevelFromName(name string, prefixes []string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, prefix := range prefixes {
		rest, ok := strings.CutPrefix(name, strings.ToLower(prefix))
		if !ok {
			continue
		}
		lvl, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || lvl < 1 {
			continue
		}
		return min(lvl, 6)
	}
	return 0
}

// mergeRuns joins consecutive TextRuns with identical resolved formatting.
// The source format splits runs per edit, which fragments text badly;
// merging here keeps the markdown renderer from emitting broken emphasis.
func mergeRuns(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		run, ok := n.(*TextRun)
		if !ok {
			out = append(out, n)
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(*TextRun); ok && sameFormat(prev, run) {
				prev.Text += run.Text
				continue
			}
		}
		out = append(out, run)
	}
	return out
}

func sameFormat(a, b *TextRun) bool {
	if a.Format == nil || b.Format == nil {
		return a.Format == b.Format && a.CharShapeID == b.CharShapeID
	}
	return *a.Format == *b.Format
}
