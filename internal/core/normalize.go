package core

// normalize.go canonicalizes resolved records and builds RecordSets.
//
// Per-record failures never abort a batch: the record is dropped and the
// error is kept. Only a batch where nothing survives is an error.

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// DuplicatePolicy decides what happens to records sharing an identifier
// after exact duplicates have been removed.
type DuplicatePolicy string

const (
	// DuplicateKeepAll keeps every record and reports the identifier as ambiguous.
	DuplicateKeepAll DuplicatePolicy = "keep_all"
	// DuplicateFirst keeps the first record seen for an identifier.
	DuplicateFirst DuplicatePolicy = "first"
	// DuplicateLast keeps the last record seen for an identifier.
	DuplicateLast DuplicatePolicy = "last"
)

// ParseDuplicatePolicy parses a policy name. The empty string means keep_all.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DuplicateKeepAll, nil
	case DuplicateKeepAll, DuplicateFirst, DuplicateLast:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want keep_all, first or last)", s)
	}
}

// NormalizerOptions configures a Normalizer.
type NormalizerOptions struct {
	MinIdentifierDigits int
	MaxIdentifierDigits int
	DuplicatePolicy     DuplicatePolicy
}

// DefaultNormalizerOptions returns the options used by the published rosters:
// identifiers of 4 to 7 digits, duplicates kept.
func DefaultNormalizerOptions() NormalizerOptions {
	return NormalizerOptions{
		MinIdentifierDigits: 4,
		MaxIdentifierDigits: 7,
		DuplicatePolicy:     DuplicateKeepAll,
	}
}

// NormalizeStats counts what happened to the input rows of a batch.
type NormalizeStats struct {
	Input             int `json:"input"`
	EmptyRows         int `json:"emptyRows"`
	InvalidIdentifier int `json:"invalidIdentifier"`
	InvalidRank       int `json:"invalidRank"`
	ExactDuplicates   int `json:"exactDuplicates"`
	PolicyDropped     int `json:"policyDropped"`
	Output            int `json:"output"`
}

// Dropped returns the number of input rows that did not make it into the set.
func (s NormalizeStats) Dropped() int {
	return s.Input - s.Output
}

// Normalizer canonicalizes records.
type Normalizer struct {
	opts   NormalizerOptions
	logger *slog.Logger
}

// NewNormalizer creates a normalizer. Zero-valued options fall back to the defaults.
func NewNormalizer(opts NormalizerOptions, logger *slog.Logger) *Normalizer {
	def := DefaultNormalizerOptions()
	if opts.MinIdentifierDigits <= 0 {
		opts.MinIdentifierDigits = def.MinIdentifierDigits
	}
	if opts.MaxIdentifierDigits <= 0 {
		opts.MaxIdentifierDigits = def.MaxIdentifierDigits
	}
	if opts.DuplicatePolicy == "" {
		opts.DuplicatePolicy = def.DuplicatePolicy
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Normalizer{opts: opts, logger: logger}
}

// Options returns the effective options.
func (n *Normalizer) Options() NormalizerOptions {
	return n.opts
}

// NormalizeText uppercases s, strips accents and collapses whitespace.
// The result is a fixed point: NormalizeText(NormalizeText(s)) == NormalizeText(s).
func NormalizeText(s string) string {
	for {
		next := strings.ToUpper(collapseSpaces(stripMarks(CleanCell(s))))
		if next == s {
			return s
		}
		s = next
	}
}

// NormalizeIdentifier keeps only the digits of s. Leading zeros are significant.
func NormalizeIdentifier(s string) string {
	return digitsOnly(s)
}

// NormalizeRank returns the canonical decimal form of a seniority rank.
// An empty value stays empty.
func NormalizeRank(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	digits := digitsOnly(s)
	if digits == "" {
		return "", &NormalizationError{Field: FieldSeniorityRank, Value: s, Reason: "no digits"}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "", &NormalizationError{Field: FieldSeniorityRank, Value: s, Reason: "out of range"}
	}
	return strconv.FormatInt(n, 10), nil
}

// NormalizeRecord returns a canonical copy of r. Fields absent from r stay
// absent. An identifier outside the configured digit range or an unparsable
// rank yields a *NormalizationError.
func (n *Normalizer) NormalizeRecord(r Record) (Record, error) {
	out := make(Record, len(r))
	for f, v := range r {
		switch f {
		case FieldIdentifier:
			id := NormalizeIdentifier(v)
			if len(id) < n.opts.MinIdentifierDigits || len(id) > n.opts.MaxIdentifierDigits {
				return nil, &NormalizationError{
					Field:  FieldIdentifier,
					Value:  v,
					Reason: fmt.Sprintf("want %d-%d digits, got %d", n.opts.MinIdentifierDigits, n.opts.MaxIdentifierDigits, len(id)),
				}
			}
			out[f] = id
		case FieldSeniorityRank:
			rank, err := NormalizeRank(v)
			if err != nil {
				return nil, err
			}
			out[f] = rank
		default:
			out[f] = NormalizeText(v)
		}
	}
	if !out.Has(FieldIdentifier) {
		return nil, &NormalizationError{Field: FieldIdentifier, Reason: "missing"}
	}
	return out, nil
}

// NormalizeSet normalizes a batch and builds a RecordSet. Empty rows are
// dropped first, then invalid records, then exact duplicates, then identifier
// duplicates according to the duplicate policy. When no record survives the
// returned error aggregates the per-record errors.
func (n *Normalizer) NormalizeSet(records []Record) (*RecordSet, NormalizeStats, error) {
	stats := NormalizeStats{Input: len(records)}
	var errs []error

	kept := make([]Record, 0, len(records))
	for i, raw := range records {
		if raw.isEmpty() {
			stats.EmptyRows++
			continue
		}
		rec, err := n.NormalizeRecord(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
			var ne *NormalizationError
			if errors.As(err, &ne) && ne.Field == FieldSeniorityRank {
				stats.InvalidRank++
				n.logger.Warn("record dropped", "row", i+1, "error", err)
			} else {
				stats.InvalidIdentifier++
				n.logger.Debug("record dropped", "row", i+1, "error", err)
			}
			continue
		}
		kept = append(kept, rec)
	}

	var exact, byPolicy int
	kept, exact, byPolicy = Dedupe(kept, n.opts.DuplicatePolicy)
	stats.ExactDuplicates = exact
	stats.PolicyDropped = byPolicy
	stats.Output = len(kept)

	if len(kept) == 0 {
		return nil, stats, &NormalizationError{Reason: "no valid records", Errs: errs}
	}

	set := NewRecordSet(kept)
	if amb := set.Ambiguous(); len(amb) > 0 {
		n.logger.Warn("ambiguous identifiers", "count", len(amb), "identifiers", amb)
	}
	n.logger.Info("records normalized",
		"input", stats.Input,
		"output", stats.Output,
		"empty", stats.EmptyRows,
		"invalid_identifier", stats.InvalidIdentifier,
		"invalid_rank", stats.InvalidRank,
		"exact_duplicates", stats.ExactDuplicates,
		"policy_dropped", stats.PolicyDropped,
	)
	return set, stats, nil
}

// Dedupe removes exact duplicates, keeping the first occurrence, and then
// resolves identifier duplicates with policy. It returns the surviving records
// in input order with the number removed by each step.
func Dedupe(records []Record, policy DuplicatePolicy) (out []Record, exact, byPolicy int) {
	seen := make(map[string]bool, len(records))
	unique := make([]Record, 0, len(records))
	for _, r := range records {
		k := r.key()
		if seen[k] {
			exact++
			continue
		}
		seen[k] = true
		unique = append(unique, r)
	}

	switch policy {
	case DuplicateFirst:
		taken := make(map[string]bool, len(unique))
		out = make([]Record, 0, len(unique))
		for _, r := range unique {
			if taken[r.Identifier()] {
				byPolicy++
				continue
			}
			taken[r.Identifier()] = true
			out = append(out, r)
		}
	case DuplicateLast:
		last := make(map[string]int, len(unique))
		for i, r := range unique {
			last[r.Identifier()] = i
		}
		out = make([]Record, 0, len(last))
		for i, r := range unique {
			if last[r.Identifier()] != i {
				byPolicy++
				continue
			}
			out = append(out, r)
		}
	default:
		out = unique
	}
	return out, exact, byPolicy
}
