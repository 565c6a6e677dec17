package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
)

// ============================================================================
// Cell Normalization Benchmarks
// ============================================================================

// BenchmarkCleanCell benchmarks cell cleaning.
// Called for every cell of every roster, so performance is critical.
func BenchmarkCleanCell(b *testing.B) {
	testCases := []string{
		"normal value",
		`="012345"`,       // Number as text in Excel
		`"quoted"`,        // Quoted
		"  whitespace  ",  // Whitespace
		"JOÃO\u00a0SILVA", // Non-breaking space from PDF text
		"'single quoted'", // Single quotes
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			CleanCell(tc)
		}
	}
}

// BenchmarkNormalizeText benchmarks accent stripping and case folding.
func BenchmarkNormalizeText(b *testing.B) {
	testCases := []string{
		"João  da Silva",
		"CONCEIÇÃO",
		"plain ascii name",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			NormalizeText(tc)
		}
	}
}

// BenchmarkNormalizeText_ASCII benchmarks the common case: nothing to strip.
func BenchmarkNormalizeText_ASCII(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NormalizeText("ANA SOUZA")
	}
}

// BenchmarkNormalizeIdentifier benchmarks RE cleanup.
func BenchmarkNormalizeIdentifier(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NormalizeIdentifier("RE 012.345")
	}
}

// ============================================================================
// Pipeline Benchmarks
// ============================================================================

// roster builds n records with ids starting at base; every tenth record gets
// a different function when shifted is set.
func roster(n, base int, shifted bool) []Record {
	records := make([]Record, n)
	for i := range records {
		fn := "COPILOTO"
		if shifted && i%10 == 0 {
			fn = "PILOTO"
		}
		records[i] = Record{
			FieldIdentifier:    fmt.Sprintf("%06d", base+i),
			FieldFunction:      fn,
			FieldFullName:      fmt.Sprintf("TRIPULANTE %d", base+i),
			FieldSeniorityRank: fmt.Sprintf("%d", i+1),
		}
	}
	return records
}

// BenchmarkNormalizeSet benchmarks normalization of a full roster.
func BenchmarkNormalizeSet(b *testing.B) {
	n := NewNormalizer(DefaultNormalizerOptions(), nil)
	records := roster(2000, 10000, false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := n.NormalizeSet(records); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDiff benchmarks the key-based diff of two rosters of typical size.
func BenchmarkDiff(b *testing.B) {
	oldSet := NewRecordSet(roster(2000, 10000, false))
	newSet := NewRecordSet(roster(2000, 10050, true))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Diff(oldSet, newSet)
	}
}

// BenchmarkDiff_Large benchmarks the diff with larger rosters.
func BenchmarkDiff_Large(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping large benchmark in short mode")
	}
	oldSet := NewRecordSet(roster(20000, 100000, false))
	newSet := NewRecordSet(roster(20000, 100500, true))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Diff(oldSet, newSet)
	}
}

// BenchmarkResolve benchmarks column resolution on a realistic header.
func BenchmarkResolve(b *testing.B) {
	r := NewColumnResolver(nil)
	table := &RawTable{
		Header: []string{"FUNÇÃO", "EQUIPAMENTO", "NOME", "NOME DE GUERRA", "RE", "SENIORIDADE"},
		Rows: [][]string{
			{"PILOTO", "A320", "JOAO SILVA", "SILVA", "012345", "1"},
			{"COPILOTO", "A320", "ANA SOUZA", "SOUZA", "23456", "2"},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Resolve(table); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Text Reader Benchmarks
// ============================================================================

// BenchmarkTextReader_LargeFile benchmarks BOM skipping and UTF-8 repair over
// a large CSV export.
func BenchmarkTextReader_LargeFile(b *testing.B) {
	var buf bytes.Buffer
	buf.WriteString("\ufeffRE;Nome;Senioridade\n")
	for i := 0; i < 10000; i++ {
		fmt.Fprintf(&buf, "%06d;Jo\xe3o Tripulante;%d\n", i, i+1)
	}
	data := buf.Bytes()

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := io.Copy(io.Discard, NewTextReader(bytes.NewReader(data))); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkTextReader_ASCII benchmarks the fast path with no repair needed.
func BenchmarkTextReader_ASCII(b *testing.B) {
	data := []byte(strings.Repeat("012345;ANA SOUZA;1\n", 10000))

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := io.Copy(io.Discard, NewTextReader(bytes.NewReader(data))); err != nil {
			b.Fatal(err)
		}
	}
}
