// Package pdftable extracts the roster table from text PDFs.
//
// Extraction is purely geometric: no OCR is performed, so scanned documents
// yield no table.
package pdftable

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/senioritydiff/internal/core"
	"github.com/ledongthuc/pdf"
)

// Defaults for zero-valued options.
const (
	DefaultRowTolerance = 2.0
	DefaultCellGap      = 1.0
	DefaultMinColumns   = 3
)

// document is the page-level view the table builder needs.
type document interface {
	NumPages() int
	PageGlyphs(page int) ([]Glyph, error)
}

// Extractor implements core.TableExtractor for PDF documents.
type Extractor struct {
	opts   core.ExtractOptions
	logger *slog.Logger
}

// New creates an Extractor. Zero-valued options fall back to the defaults.
func New(opts core.ExtractOptions, logger *slog.Logger) *Extractor {
	if opts.RowTolerance <= 0 {
		opts.RowTolerance = DefaultRowTolerance
	}
	if opts.CellGap <= 0 {
		opts.CellGap = DefaultCellGap
	}
	if opts.MinColumns <= 0 {
		opts.MinColumns = DefaultMinColumns
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{opts: opts, logger: logger}
}

// Extract reads the table from an in-memory PDF.
func (e *Extractor) Extract(ctx context.Context, data []byte) (t *core.RawTable, err error) {
	defer recoverPanic(&err)

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &core.ExtractionError{Reason: core.ReasonUnreadable, Err: err}
	}
	return e.build(ctx, pdfDocument{r})
}

// ExtractFile reads the table from a PDF on disk. The file is closed before
// returning.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (t *core.RawTable, err error) {
	defer recoverPanic(&err)

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, &core.ExtractionError{Source: path, Reason: core.ReasonUnreadable, Err: err}
	}
	defer f.Close()

	t, err = e.build(ctx, pdfDocument{r})
	var ee *core.ExtractionError
	if errors.As(err, &ee) && ee.Source == "" {
		ee.Source = path
	}
	return t, err
}

// recoverPanic turns a panic inside the PDF library into an extraction error.
func recoverPanic(err *error) {
	if r := recover(); r != nil {
		*err = &core.ExtractionError{Reason: core.ReasonUnreadable, Err: fmt.Errorf("malformed content: %v", r)}
	}
}

// build walks the pages in order. The first page holding a table supplies the
// header and column geometry; on later pages a leading line equal to the
// header is skipped.
func (e *Extractor) build(ctx context.Context, doc document) (*core.RawTable, error) {
	numPages := doc.NumPages()
	if numPages == 0 {
		return nil, &core.ExtractionError{Reason: core.ReasonNoPages}
	}

	var (
		table   *core.RawTable
		cols    columns
		skipped int
	)

	for p := 1; p <= numPages; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		glyphs, err := doc.PageGlyphs(p)
		if err != nil {
			return nil, &core.ExtractionError{Page: p, Reason: core.ReasonUnreadable, Err: err}
		}

		lines := groupLines(glyphs, e.opts.RowTolerance)
		cells := make([][]cell, len(lines))
		for i, l := range lines {
			cells[i] = splitCells(l, e.opts.CellGap)
		}

		start, end, ok := tableRegion(cells, e.opts.MinColumns)
		if !ok {
			e.logger.Debug("no table on page", "page", p, "lines", len(lines))
			skipped++
			continue
		}

		if table == nil {
			table = &core.RawTable{Header: cellTexts(cells[start])}
			cols = newColumns(cells[start], e.opts.CellGap)
			start++
		} else if core.EqualRows(cols.split(lines[start]), table.Header) {
			start++
		}

		rows := 0
		for i := start; i <= end; i++ {
			table.Rows = append(table.Rows, cols.split(lines[i]))
			rows++
		}
		table.Pages = append(table.Pages, core.PageStat{Page: p, Rows: rows})
		e.logger.Info("page extracted", "page", p, "rows", rows)
	}

	if table == nil {
		return nil, &core.ExtractionError{Reason: core.ReasonNoTable}
	}
	if len(table.Rows) == 0 {
		return nil, &core.ExtractionError{Reason: core.ReasonNoDataRows}
	}

	e.logger.Info("table extracted",
		"pages", numPages,
		"pages_without_table", skipped,
		"columns", len(table.Header),
		"rows", len(table.Rows),
	)
	return table, nil
}

// pdfDocument adapts a pdf.Reader.
type pdfDocument struct {
	r *pdf.Reader
}

func (d pdfDocument) NumPages() int {
	return d.r.NumPage()
}

func (d pdfDocument) PageGlyphs(n int) ([]Glyph, error) {
	page := d.r.Page(n)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d missing from page tree", n)
	}

	texts := page.Content().Text
	glyphs := make([]Glyph, 0, len(texts))
	for _, t := range texts {
		glyphs = append(glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return glyphs, nil
}
