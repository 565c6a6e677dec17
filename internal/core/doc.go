// Package core provides the business logic for seniority roster comparison.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the web server, the CLI and tests without modification.
//
// # Pipeline
//
// A roster document goes through four stages:
//
//  1. Extraction: a registered source turns the document bytes into a
//     [RawTable] (header plus rows, in page order).
//  2. Column resolution: [ColumnResolver] maps free-form headers onto the
//     canonical fields, inferring the RE column from its values if needed.
//  3. Normalization: [Normalizer] cleans values, drops invalid records and
//     duplicates, and builds a [RecordSet] keyed by RE.
//  4. Diff: [Diff] compares two record sets and returns a [DiffReport] with
//     entries, exits and per-field changes in a deterministic order.
//
// [Service] runs the stages for the web server and the CLI, bounding parallel
// comparisons with a [ComparisonLimiter].
//
// # Source Registry
//
// Document formats are registered at init time using [Register]:
//
//	core.Register(core.SourceDefinition{
//	    Info: core.SourceInfo{Key: "pdf", Label: "PDF", Extensions: []string{".pdf"}, Magic: []byte("%PDF-")},
//	    New:  func(opts core.ExtractOptions, logger *slog.Logger) core.TableExtractor { ... },
//	})
//
// # Error Handling
//
// Each stage fails with its own error type ([ExtractionError],
// [ColumnResolutionError], [NormalizationError], [ValidationError]), each
// matching a sentinel with errors.Is. [MapError] turns any error into a
// user-facing message with a support code:
//
//   - EXT001-EXT004: Extraction errors
//   - COL001: RE column not found
//   - NRM001-NRM002: Normalization errors
//   - VAL001: Validation errors
//   - FILE001-FILE004: File errors
//   - CMP001-CMP003: Comparison capacity and timeouts
package core
