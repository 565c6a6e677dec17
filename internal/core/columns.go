package core

// columns.go maps the free-form headers of a roster onto the canonical fields.
//
// Header rules are an ordered list; the first rule whose matcher accepts a
// header decides its field, and a field is bound to the first header that
// claims it. When no header names the identifier, the column is inferred from
// its values: first a column holding a 5-6 digit run, then any column holding
// a digit. Only columns not already claimed by another field are considered.

import (
	"log/slog"
	"regexp"
	"strings"
)

// headerRule binds a canonical field to a header matcher.
// Matchers receive headers folded by foldHeader.
type headerRule struct {
	field Field
	match func(header string) bool
}

// headerRules is evaluated in order; order is part of the contract.
var headerRules = []headerRule{
	{field: FieldFunction, match: containsAll("FUNCAO")},
	{field: FieldEquipment, match: containsAll("EQUIPAMENTO")},
	{field: FieldCallsign, match: containsAll("GUERRA")},
	{field: FieldFullName, match: containsButNot("NOME", "GUERRA")},
	{field: FieldIdentifier, match: containsAll("RE")},
	{field: FieldSeniorityRank, match: containsAll("SENIORIDADE")},
}

func containsAll(needles ...string) func(string) bool {
	return func(h string) bool {
		for _, n := range needles {
			if !strings.Contains(h, n) {
				return false
			}
		}
		return true
	}
}

func containsButNot(needle, excluded string) func(string) bool {
	return func(h string) bool {
		return strings.Contains(h, needle) && !strings.Contains(h, excluded)
	}
}

var (
	identifierRunRegex = regexp.MustCompile(`\d{5,6}`)
	anyDigitRegex      = regexp.MustCompile(`\d`)
)

// foldHeader uppercases a header and strips accents and extra whitespace so
// that "Função" and "FUNCAO" compare equal.
func foldHeader(h string) string {
	return strings.ToUpper(collapseSpaces(stripMarks(CleanCell(h))))
}

// MatchHeader returns the canonical field for a single header, or "" when no
// rule accepts it.
func MatchHeader(header string) Field {
	folded := foldHeader(header)
	if folded == "" {
		return ""
	}
	for _, rule := range headerRules {
		if rule.match(folded) {
			return rule.field
		}
	}
	return ""
}

// ColumnBinding ties a source column to a canonical field.
type ColumnBinding struct {
	Index    int    `json:"index"`
	Header   string `json:"header"`
	Field    Field  `json:"field"`
	Inferred bool   `json:"inferred,omitempty"` // located by value scan, not by header
}

// ColumnMapping is the resolved schema of a RawTable.
type ColumnMapping struct {
	Bindings []ColumnBinding `json:"bindings"`
}

// Binding returns the binding for field f.
func (m ColumnMapping) Binding(f Field) (ColumnBinding, bool) {
	for _, b := range m.Bindings {
		if b.Field == f {
			return b, true
		}
	}
	return ColumnBinding{}, false
}

// Fields returns the resolved fields in column order.
func (m ColumnMapping) Fields() []Field {
	out := make([]Field, len(m.Bindings))
	for i, b := range m.Bindings {
		out[i] = b.Field
	}
	return out
}

// Records projects the table rows onto the resolved fields. Columns without a
// canonical field are dropped; a row shorter than the header yields empty
// values for the missing cells.
func (m ColumnMapping) Records(t *RawTable) []Record {
	out := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(Record, len(m.Bindings))
		for _, b := range m.Bindings {
			if b.Index < len(row) {
				rec[b.Field] = row[b.Index]
			} else {
				rec[b.Field] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

// ColumnResolver locates canonical columns in a RawTable.
type ColumnResolver struct {
	logger *slog.Logger
}

// NewColumnResolver creates a resolver that logs its decisions to logger.
func NewColumnResolver(logger *slog.Logger) *ColumnResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ColumnResolver{logger: logger}
}

// ResolveHeaders applies the header rules only. The result has one entry per
// header; "" marks a header with no canonical field or whose field was already
// claimed by an earlier header.
func ResolveHeaders(headers []string) []Field {
	out := make([]Field, len(headers))
	claimed := make(map[Field]bool, len(headerRules))
	for i, h := range headers {
		f := MatchHeader(h)
		if f == "" || claimed[f] {
			continue
		}
		claimed[f] = true
		out[i] = f
	}
	return out
}

// Resolve maps the table's columns onto canonical fields, inferring the
// identifier column from cell values when no header names it.
func (r *ColumnResolver) Resolve(t *RawTable) (ColumnMapping, error) {
	fields := ResolveHeaders(t.Header)

	idCol := -1
	for i, f := range fields {
		if f == FieldIdentifier {
			idCol = i
			break
		}
	}

	inferred := false
	if idCol < 0 {
		idCol = r.inferIdentifier(t, fields)
		if idCol < 0 {
			return ColumnMapping{}, &ColumnResolutionError{Headers: t.Header}
		}
		for len(fields) <= idCol {
			fields = append(fields, "")
		}
		fields[idCol] = FieldIdentifier
		inferred = true
	}

	var m ColumnMapping
	for i, f := range fields {
		if f == "" {
			continue
		}
		m.Bindings = append(m.Bindings, ColumnBinding{
			Index:    i,
			Header:   headerAt(t.Header, i),
			Field:    f,
			Inferred: inferred && i == idCol,
		})
	}

	r.logger.Debug("columns resolved",
		"headers", t.Header,
		"fields", m.Fields(),
		"identifier_inferred", inferred,
	)
	return m, nil
}

// inferIdentifier scans unclaimed columns left to right, first for a 5-6 digit
// run, then for any digit. Returns -1 when no column qualifies.
//
// Columns already claimed by a header rule are never considered, unlike a
// plain scan of every column: a numeric seniority column matched by its
// header cannot be taken for the identifier.
func (r *ColumnResolver) inferIdentifier(t *RawTable, fields []Field) int {
	width := len(t.Header)
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}

	for _, pattern := range []*regexp.Regexp{identifierRunRegex, anyDigitRegex} {
		for col := 0; col < width; col++ {
			if col < len(fields) && fields[col] != "" {
				continue
			}
			if columnMatches(t.Rows, col, pattern) {
				r.logger.Info("identifier column inferred from values",
					"column", col,
					"pattern", pattern.String(),
				)
				return col
			}
		}
	}
	return -1
}

func headerAt(headers []string, i int) string {
	if i < len(headers) {
		return headers[i]
	}
	return ""
}

func columnMatches(rows [][]string, col int, pattern *regexp.Regexp) bool {
	for _, row := range rows {
		if col < len(row) && pattern.MatchString(row[col]) {
			return true
		}
	}
	return false
}
