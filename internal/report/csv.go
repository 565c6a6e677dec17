package report

import (
	"encoding/csv"
	"io"

	"github.com/JonMunkholm/senioritydiff/internal/core"
)

// CSVHeader is the column layout of exported change lists.
var CSVHeader = []string{"RE", "Nome", "Mudança", "Detalhes"}

// utf8BOM makes Excel open the file as UTF-8.
const utf8BOM = "\ufeff"

// WriteCSV writes one line per change, in report order.
func WriteCSV(w io.Writer, r *core.DiffReport) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, c := range r.Changes {
		if err := cw.Write([]string{c.Identifier, c.Name, ChangeLabel(c), c.Detail}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRecordsCSV writes normalized records with one column per canonical
// field. Absent fields are written as empty cells.
func WriteRecordsCSV(w io.Writer, records []core.Record) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := make([]string, len(core.CanonicalFields))
	for i, f := range core.CanonicalFields {
		header[i] = f.Label()
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(core.CanonicalFields))
	for _, rec := range records {
		for i, f := range core.CanonicalFields {
			row[i] = rec[f]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
