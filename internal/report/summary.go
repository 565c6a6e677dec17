// Package report renders a DiffReport for people: a CSV download, an HTML
// page and a summary of how many changes of each type were found.
package report

import (
	"sort"

	"github.com/JonMunkholm/senioritydiff/internal/core"
)

// Change labels as they appear in exported reports.
const (
	LabelEntry       = "ENTRADA"
	LabelExit        = "SAÍDA"
	labelFieldChange = "MUDANÇA DE "
)

// ChangeLabel names a change the way roster administrators read it, e.g.
// "MUDANÇA DE FUNÇÃO".
func ChangeLabel(c core.ChangeEntry) string {
	switch c.Kind {
	case core.KindEntry:
		return LabelEntry
	case core.KindExit:
		return LabelExit
	default:
		return labelFieldChange + c.Field.Label()
	}
}

// SummaryRow is the number of changes sharing a label.
type SummaryRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summarize counts changes per label, most frequent first.
func Summarize(r *core.DiffReport) []SummaryRow {
	counts := make(map[string]int)
	for _, c := range r.Changes {
		counts[ChangeLabel(c)]++
	}

	rows := make([]SummaryRow, 0, len(counts))
	for label, n := range counts {
		rows = append(rows, SummaryRow{Label: label, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}
