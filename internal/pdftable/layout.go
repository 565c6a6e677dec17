package pdftable

// layout.go rebuilds table rows from positioned glyphs.
//
// PDF text has no table structure, only glyphs placed at coordinates. Rows
// are recovered by grouping glyphs with the same baseline, and cells by
// splitting a line where the horizontal gap exceeds the cell gap. The header
// line fixes the column geometry for the whole document: data cells are
// assigned to the column whose span contains their left edge.

import (
	"sort"
	"strings"
)

const (
	defaultFontSize = 10.0
	// wordGap is the gap, in ems, above which two glyphs of one cell are
	// separate words.
	wordGap = 0.15
)

// Glyph is a run of text at a position. Y grows upwards, as in PDF user space.
type Glyph struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

func (g Glyph) size() float64 {
	if g.FontSize > 0 {
		return g.FontSize
	}
	return defaultFontSize
}

func (g Glyph) end() float64 {
	if g.W > 0 {
		return g.X + g.W
	}
	return g.X + 0.5*g.size()*float64(len([]rune(g.S)))
}

func (g Glyph) blank() bool {
	return strings.TrimSpace(g.S) == ""
}

// line is a set of glyphs sharing a baseline, sorted left to right.
type line struct {
	y      float64
	glyphs []Glyph
}

// cell is a horizontally contiguous run of glyphs within a line.
type cell struct {
	x0, x1 float64
	text   string
}

// groupLines buckets glyphs into lines, top to bottom. Glyphs whose baseline
// is within tolerance of a line's first glyph join that line.
func groupLines(glyphs []Glyph, tolerance float64) []line {
	inked := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if !g.blank() {
			inked = append(inked, g)
		}
	}
	sort.SliceStable(inked, func(i, j int) bool {
		if inked[i].Y != inked[j].Y {
			return inked[i].Y > inked[j].Y
		}
		return inked[i].X < inked[j].X
	})

	var lines []line
	for _, g := range inked {
		n := len(lines)
		if n > 0 && lines[n-1].y-g.Y <= tolerance {
			lines[n-1].glyphs = append(lines[n-1].glyphs, g)
			continue
		}
		lines = append(lines, line{y: g.Y, glyphs: []Glyph{g}})
	}

	for i := range lines {
		gs := lines[i].glyphs
		sort.SliceStable(gs, func(a, b int) bool { return gs[a].X < gs[b].X })
	}
	return lines
}

// splitCells cuts a line wherever the gap to the next glyph exceeds gapEm
// times the font size.
func splitCells(l line, gapEm float64) []cell {
	var cells []cell
	var run []Glyph
	flush := func() {
		if len(run) == 0 {
			return
		}
		cells = append(cells, cell{
			x0:   run[0].X,
			x1:   run[len(run)-1].end(),
			text: joinGlyphs(run),
		})
		run = run[:0]
	}

	for _, g := range l.glyphs {
		if len(run) > 0 {
			prev := run[len(run)-1]
			if g.X-prev.end() > gapEm*prev.size() {
				flush()
			}
		}
		run = append(run, g)
	}
	flush()
	return cells
}

// joinGlyphs concatenates glyphs, inserting a space between words.
func joinGlyphs(gs []Glyph) string {
	var b strings.Builder
	for i, g := range gs {
		if i > 0 {
			prev := gs[i-1]
			if g.X-prev.end() > wordGap*prev.size() {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tableRegion returns the span of lines, inclusive, from the first to the
// last line having at least minCols cells.
func tableRegion(cells [][]cell, minCols int) (start, end int, ok bool) {
	start, end = -1, -1
	for i, cs := range cells {
		if len(cs) >= minCols {
			if start < 0 {
				start = i
			}
			end = i
		}
	}
	return start, end, start >= 0
}

// columns is the column geometry taken from the header line.
type columns struct {
	// bounds[i] is the left edge of column i+1.
	bounds []float64
	n      int
	gap    float64
}

func newColumns(header []cell, gapEm float64) columns {
	c := columns{n: len(header), gap: gapEm}
	for i := 1; i < len(header); i++ {
		c.bounds = append(c.bounds, (header[i-1].x1+header[i].x0)/2)
	}
	return c
}

// index returns the column holding x: the number of column edges at or left of x.
func (c columns) index(x float64) int {
	return sort.SearchFloat64s(c.bounds, x+1e-9)
}

// split cuts the line into cells and places each cell by its left edge, so a
// long name running past its column edge stays in its column. Cells landing
// in the same column are joined with a space.
func (c columns) split(l line) []string {
	row := make([]string, c.n)
	for _, cl := range splitCells(l, c.gap) {
		i := c.index(cl.x0)
		if row[i] != "" {
			row[i] += " "
		}
		row[i] += cl.text
	}
	return row
}

func cellTexts(cs []cell) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.text
	}
	return out
}
