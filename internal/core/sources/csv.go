package sources

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/senioritydiff/internal/core"
)

// sniffSize bounds how much of the document is searched for the header line.
const sniffSize = 64 << 10

func init() {
	registerCSV()
}

func registerCSV() {
	core.Register(core.SourceDefinition{
		Info: core.SourceInfo{
			Key:        "csv",
			Label:      "Spreadsheet export (CSV)",
			Extensions: []string{".csv", ".txt"},
		},
		New: func(_ core.ExtractOptions, logger *slog.Logger) core.TableExtractor {
			return NewCSVExtractor(logger)
		},
	})
}

// CSVExtractor reads a roster saved as delimited text. Spreadsheet exports in
// Portuguese locales use ';', so the delimiter is sniffed from the header line.
type CSVExtractor struct {
	logger *slog.Logger
}

// NewCSVExtractor creates a CSVExtractor.
func NewCSVExtractor(logger *slog.Logger) *CSVExtractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CSVExtractor{logger: logger}
}

// Extract parses data into a table. The first non-empty row is the header;
// empty rows are dropped.
func (c *CSVExtractor) Extract(ctx context.Context, data []byte) (*core.RawTable, error) {
	br := bufio.NewReaderSize(core.NewTextReader(bytes.NewReader(data)), sniffSize)

	delim, err := sniffDelimiter(br)
	if err != nil {
		return nil, &core.ExtractionError{Reason: core.ReasonUnreadable, Err: err}
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var table *core.RawTable
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &core.ExtractionError{Reason: core.ReasonUnreadable, Err: err}
		}
		if core.IsEmptyRow(row) {
			continue
		}

		if table == nil {
			table = &core.RawTable{Header: row}
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	if table == nil {
		return nil, &core.ExtractionError{Reason: core.ReasonNoTable}
	}
	if len(table.Rows) == 0 {
		return nil, &core.ExtractionError{Reason: core.ReasonNoDataRows}
	}
	table.Pages = []core.PageStat{{Page: 1, Rows: len(table.Rows)}}

	c.logger.Info("table extracted",
		"delimiter", string(delim),
		"columns", len(table.Header),
		"rows", len(table.Rows),
	)
	return table, nil
}

// sniffDelimiter picks ';', tab or ',' by counting them in the first
// non-empty line, without consuming input.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	peek, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, err
	}

	text := strings.TrimLeft(string(peek), "\r\n")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return pickDelimiter(text), nil
}

func pickDelimiter(header string) rune {
	best, bestCount := ',', strings.Count(header, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(header, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
