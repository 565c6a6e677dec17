package core

// convert.go provides cell-level cleanup shared by the resolver, the
// normalizer and the tabular sources.
//
// These functions handle the messy reality of text pulled out of published
// rosters:
//   - Excel formula prefixes (="value") and stray quotes from CSV exports
//   - Accented characters in headers and names (FUNÇÃO, JOÃO)
//   - Irregular spacing left by PDF text positioning

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CleanCell removes common export artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
//
// Nested layers (==X, ="=X") are peeled until nothing changes, so
// CleanCell(CleanCell(s)) == CleanCell(s).
func CleanCell(s string) string {
	for {
		next := cleanLayer(s)
		if next == s {
			return s
		}
		s = next
	}
}

// cleanLayer strips one layer of export artifacts.
func cleanLayer(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// stripMarks removes diacritics by decomposing, dropping combining marks and
// recomposing what remains.
func stripMarks(s string) string {
	if isASCII(s) {
		return s
	}
	// A chained transformer carries state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// collapseSpaces trims s and reduces every whitespace run to a single space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// digitsOnly drops every rune that is not an ASCII digit.
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// IsEmptyRow reports whether every cell is blank.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// EqualRows compares two rows cell by cell, ignoring case, accents and
// spacing differences.
func EqualRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if foldHeader(a[i]) != foldHeader(b[i]) {
			return false
		}
	}
	return true
}
