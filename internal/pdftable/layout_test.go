package pdftable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// text lays out s one glyph per rune, 5pt wide at 10pt, as the PDF library
// reports it. Spaces advance the pen without producing a glyph.
func text(x, y float64, s string) []Glyph {
	var gs []Glyph
	for _, r := range s {
		if r == ' ' {
			x += 3
			continue
		}
		gs = append(gs, Glyph{X: x, Y: y, W: 5, FontSize: 10, S: string(r)})
		x += 5
	}
	return gs
}

type at struct {
	x float64
	s string
}

func textLine(y float64, parts ...at) []Glyph {
	var gs []Glyph
	for _, p := range parts {
		gs = append(gs, text(p.x, y, p.s)...)
	}
	return gs
}

func TestGroupLines(t *testing.T) {
	var glyphs []Glyph
	glyphs = append(glyphs, text(50, 100, "ROW2")...)
	glyphs = append(glyphs, text(50, 120.4, "ROW1")...)
	// slight baseline jitter stays on the line
	glyphs = append(glyphs, Glyph{X: 150, Y: 119.2, W: 5, FontSize: 10, S: "X"})
	glyphs = append(glyphs, Glyph{X: 10, Y: 120, S: " "})

	lines := groupLines(glyphs, 2)
	require.Len(t, lines, 2)

	assert.Equal(t, "ROW1 X", joinGlyphs(lines[0].glyphs))
	assert.Equal(t, "ROW2", joinGlyphs(lines[1].glyphs))
}

func TestSplitCells(t *testing.T) {
	l := groupLines(textLine(100,
		at{50, "JOAO DA SILVA"},
		at{150, "PILOTO"},
		at{250, "012345"},
	), 2)[0]

	cells := splitCells(l, 1)
	require.Len(t, cells, 3)
	assert.Equal(t, []string{"JOAO DA SILVA", "PILOTO", "012345"}, cellTexts(cells))
	assert.Equal(t, 50.0, cells[0].x0)
	assert.Equal(t, 180.0, cells[1].x1)
}

func TestSplitCells_GapThreshold(t *testing.T) {
	// 8pt gap: under one em at 10pt keeps one cell, over half an em splits
	l := groupLines(textLine(100, at{50, "AB"}, at{68, "CD"}), 2)[0]

	assert.Len(t, splitCells(l, 1), 1)
	assert.Len(t, splitCells(l, 0.5), 2)
}

func TestTableRegion(t *testing.T) {
	cells := [][]cell{
		{{text: "TITLE"}},
		{{}, {}, {}},
		{{}, {}},
		{{}, {}, {}, {}},
		{{text: "page 1"}},
	}

	start, end, ok := tableRegion(cells, 3)
	require.True(t, ok)
	assert.Equal(t, 1, start)
	assert.Equal(t, 3, end)

	_, _, ok = tableRegion(cells[:1], 3)
	assert.False(t, ok)
}

func TestColumns_Split(t *testing.T) {
	header := splitCells(groupLines(textLine(700,
		at{50, "Função"},
		at{150, "Nome"},
		at{250, "RE"},
		at{350, "Senioridade"},
	), 2)[0], 1)
	cols := newColumns(header, 1)
	require.Equal(t, []float64{115, 210, 305}, cols.bounds)

	tests := []struct {
		name  string
		parts []at
		want  []string
	}{
		{
			name:  "aligned row",
			parts: []at{{50, "PILOTO"}, {150, "JOAO SILVA"}, {250, "12345"}, {350, "1"}},
			want:  []string{"PILOTO", "JOAO SILVA", "12345", "1"},
		},
		{
			name:  "number left of its header",
			parts: []at{{50, "PILOTO"}, {150, "ANA"}, {235, "012345"}, {360, "2"}},
			want:  []string{"PILOTO", "ANA", "012345", "2"},
		},
		{
			name:  "empty cell",
			parts: []at{{50, "COPILOTO"}, {250, "23456"}, {350, "3"}},
			want:  []string{"COPILOTO", "", "23456", "3"},
		},
		{
			name:  "long name past the column edge",
			parts: []at{{50, "CMT"}, {150, "MARIA DA CONCEICAO"}, {250, "34567"}, {350, "4"}},
			want:  []string{"CMT", "MARIA DA CONCEICAO", "34567", "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := groupLines(textLine(600, tt.parts...), 2)[0]
			assert.Equal(t, tt.want, cols.split(l))
		})
	}
}
