package core

// errors.go defines the error taxonomy of the ingestion pipeline.
//
// Extraction and column resolution errors abort ingestion of a document.
// Normalization errors are per record and only surface when no record
// survives. Validation errors guard the diff stage. Each typed error matches
// its sentinel with errors.Is, so callers can branch on the kind without
// caring about the details.

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is.
var (
	ErrExtraction       = errors.New("extraction error")
	ErrColumnResolution = errors.New("column resolution error")
	ErrNormalization    = errors.New("normalization error")
	ErrValidation       = errors.New("validation error")
)

// Extraction failure reasons.
const (
	ReasonNoPages    = "document has no pages"
	ReasonNoTable    = "no table found in document"
	ReasonNoDataRows = "table has no data rows"
	ReasonUnreadable = "unreadable document"
)

// ExtractionError reports a document that could not be turned into a table.
type ExtractionError struct {
	Source string // document name, if known
	Page   int    // 1-based page, 0 when not page specific
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	b.WriteString("extract")
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	if e.Page > 0 {
		fmt.Fprintf(&b, " page %d", e.Page)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// ColumnResolutionError reports that the identifier column could not be located.
type ColumnResolutionError struct {
	Headers []string
}

func (e *ColumnResolutionError) Error() string {
	return fmt.Sprintf("identifier column not found (headers: %s)", strings.Join(e.Headers, ", "))
}

func (e *ColumnResolutionError) Is(target error) bool { return target == ErrColumnResolution }

// NormalizationError reports a field that failed type coercion, or, when Errs
// is set, a record set where no record survived normalization.
type NormalizationError struct {
	Field  Field
	Value  string
	Reason string
	Errs   []error
}

func (e *NormalizationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("normalize %s %q: %s", e.Field, e.Value, e.Reason)
	}
	if len(e.Errs) > 0 {
		return fmt.Sprintf("normalize: %s (%d record errors, first: %v)", e.Reason, len(e.Errs), e.Errs[0])
	}
	return "normalize: " + e.Reason
}

func (e *NormalizationError) Unwrap() []error { return e.Errs }

func (e *NormalizationError) Is(target error) bool { return target == ErrNormalization }

// ValidationError reports a record set that the diff stage cannot accept.
type ValidationError struct {
	Side    string // "old" or "new"
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	prefix := "validate"
	if e.Side != "" {
		prefix += " " + e.Side + " list"
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Field, e.Message)
	}
	return prefix + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
