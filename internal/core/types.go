// Package core provides the business logic for seniority roster comparison.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"sort"
	"strings"
)

// Field is one of the canonical roster fields targeted by column resolution.
type Field string

const (
	FieldIdentifier    Field = "identifier"
	FieldFunction      Field = "function"
	FieldEquipment     Field = "equipment"
	FieldFullName      Field = "full_name"
	FieldCallsign      Field = "callsign"
	FieldSeniorityRank Field = "seniority_rank"
)

// CanonicalFields lists every canonical field in report order.
var CanonicalFields = []Field{
	FieldIdentifier,
	FieldFunction,
	FieldEquipment,
	FieldFullName,
	FieldCallsign,
	FieldSeniorityRank,
}

// ComparedFields are the fields checked for changes on records present in both lists.
var ComparedFields = []Field{
	FieldFunction,
	FieldEquipment,
	FieldFullName,
	FieldCallsign,
	FieldSeniorityRank,
}

// Label returns the column title used by the published rosters.
func (f Field) Label() string {
	switch f {
	case FieldIdentifier:
		return "RE"
	case FieldFunction:
		return "FUNÇÃO"
	case FieldEquipment:
		return "EQUIPAMENTO"
	case FieldFullName:
		return "NOME"
	case FieldCallsign:
		return "NOME DE GUERRA"
	case FieldSeniorityRank:
		return "SENIORIDADE"
	default:
		return strings.ToUpper(string(f))
	}
}

// RawTable is a table as read from a document, before column resolution.
// Rows are in document order: page order, then top to bottom within a page.
type RawTable struct {
	Header []string
	Rows   [][]string
	Pages  []PageStat
}

// PageStat records how many data rows a page contributed.
type PageStat struct {
	Page int `json:"page"`
	Rows int `json:"rows"`
}

// TableExtractor turns a document into a RawTable.
type TableExtractor interface {
	Extract(ctx context.Context, data []byte) (*RawTable, error)
}

// Record maps canonical fields to their values. A field that the source
// document does not carry is absent from the map.
type Record map[Field]string

// Identifier returns the record's registration number.
func (r Record) Identifier() string {
	return r[FieldIdentifier]
}

// Name returns the record's full name.
func (r Record) Name() string {
	return r[FieldFullName]
}

// Has reports whether the record carries the field.
func (r Record) Has(f Field) bool {
	_, ok := r[f]
	return ok
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// key returns a string that is equal for two records exactly when both carry
// the same fields with byte-equal values.
func (r Record) key() string {
	var b strings.Builder
	for _, f := range CanonicalFields {
		v, ok := r[f]
		if !ok {
			b.WriteString("\x00")
			continue
		}
		b.WriteString("\x01")
		b.WriteString(v)
		b.WriteString("\x1f")
	}
	return b.String()
}

// isEmpty reports whether every field value is blank.
func (r Record) isEmpty() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// RecordSet is a normalized roster. It is read-only once built.
type RecordSet struct {
	records []Record
	index   map[string][]int
}

// NewRecordSet builds a set over records in the given order.
// Records are not copied; callers must not modify them afterwards.
func NewRecordSet(records []Record) *RecordSet {
	s := &RecordSet{
		records: records,
		index:   make(map[string][]int, len(records)),
	}
	for i, r := range records {
		id := r.Identifier()
		s.index[id] = append(s.index[id], i)
	}
	return s
}

// Len returns the number of records, duplicates included.
func (s *RecordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns the records in set order.
func (s *RecordSet) Records() []Record {
	if s == nil {
		return nil
	}
	return s.records
}

// Lookup returns the first record carrying id.
func (s *RecordSet) Lookup(id string) (Record, bool) {
	if s == nil {
		return nil, false
	}
	idx, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.records[idx[0]], true
}

// Identifiers returns the distinct identifiers, sorted.
func (s *RecordSet) Identifiers() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.index))
	for id := range s.index {
		ids = append(ids, id)
	}
	sortIdentifiers(ids)
	return ids
}

// Contains reports whether any record carries id.
func (s *RecordSet) Contains(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Ambiguous returns identifiers shared by more than one record, sorted.
func (s *RecordSet) Ambiguous() []string {
	if s == nil {
		return nil
	}
	var ids []string
	for id, idx := range s.index {
		if len(idx) > 1 {
			ids = append(ids, id)
		}
	}
	sortIdentifiers(ids)
	return ids
}

// ChangeKind classifies a ChangeEntry.
type ChangeKind string

const (
	KindEntry       ChangeKind = "ENTRY"
	KindExit        ChangeKind = "EXIT"
	KindFieldChange ChangeKind = "FIELD_CHANGE"
)

// ChangeEntry is a single difference between the old and new roster.
type ChangeEntry struct {
	Identifier string     `json:"identifier"`
	Name       string     `json:"name"`
	Kind       ChangeKind `json:"kind"`
	Field      Field      `json:"field,omitempty"`
	OldValue   string     `json:"oldValue,omitempty"`
	NewValue   string     `json:"newValue,omitempty"`
	Detail     string     `json:"detail"`
}

// Title returns a short description of the change, e.g. "FIELD_CHANGE(function)".
func (c ChangeEntry) Title() string {
	if c.Kind == KindFieldChange {
		return string(c.Kind) + "(" + string(c.Field) + ")"
	}
	return string(c.Kind)
}

// DiffReport is the result of comparing two record sets.
type DiffReport struct {
	Changes      []ChangeEntry `json:"changes"`
	TotalOld     int           `json:"totalOld"`
	TotalNew     int           `json:"totalNew"`
	TotalEntries int           `json:"totalEntries"`
	TotalExits   int           `json:"totalExits"`
	TotalChanged int           `json:"totalChanged"`
	AmbiguousOld []string      `json:"ambiguousOld,omitempty"`
	AmbiguousNew []string      `json:"ambiguousNew,omitempty"`
}

// Entries returns the ENTRY changes.
func (r *DiffReport) Entries() []ChangeEntry { return r.byKind(KindEntry) }

// Exits returns the EXIT changes.
func (r *DiffReport) Exits() []ChangeEntry { return r.byKind(KindExit) }

// FieldChanges returns the FIELD_CHANGE changes.
func (r *DiffReport) FieldChanges() []ChangeEntry { return r.byKind(KindFieldChange) }

func (r *DiffReport) byKind(kind ChangeKind) []ChangeEntry {
	var out []ChangeEntry
	for _, c := range r.Changes {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// LookupStatus is the outcome of a single-identifier lookup.
type LookupStatus string

const (
	LookupNotFound LookupStatus = "not_found"
	LookupNewEntry LookupStatus = "new_entry"
	LookupExit     LookupStatus = "exit"
	LookupChanged  LookupStatus = "changed"
)

// LookupResult describes one identifier across both rosters.
// For LookupChanged, Changes may be empty when the person is listed unchanged.
type LookupResult struct {
	Identifier string        `json:"identifier"`
	Status     LookupStatus  `json:"status"`
	Old        Record        `json:"old,omitempty"`
	New        Record        `json:"new,omitempty"`
	Changes    []ChangeEntry `json:"changes,omitempty"`
}

// sortIdentifiers orders identifiers numerically, falling back to lexical
// order for equal values with different leading zeros.
func sortIdentifiers(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		return lessIdentifier(ids[i], ids[j])
	})
}

func lessIdentifier(a, b string) bool {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		return len(ta) < len(tb)
	}
	if ta != tb {
		return ta < tb
	}
	return a < b
}
