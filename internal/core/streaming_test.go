package core

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestNewTextReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "utf-8 with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, "RE;Nome"...),
			expected: "RE;Nome",
		},
		{
			name:     "utf-8 without BOM",
			input:    []byte("RE;João"),
			expected: "RE;João",
		},
		{
			name:     "empty input",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "latin-1 byte",
			input:    []byte("Jo\xe3o"),
			expected: "Jo?o",
		},
		{
			name:     "utf-16le with BOM",
			input:    []byte{0xFF, 0xFE, 'R', 0, 'E', 0, '\t', 0, 0xE3, 0},
			expected: "RE\tã",
		},
		{
			name:     "utf-16be with BOM",
			input:    []byte{0xFE, 0xFF, 0, 'R', 0, 'E'},
			expected: "RE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewTextReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestNewTextReader_OneByteReads(t *testing.T) {
	// Multi-byte runes split across reads must survive intact.
	input := "\ufeffFUNÇÃO;CONCEIÇÃO\n"
	result, err := io.ReadAll(NewTextReader(iotest.OneByteReader(strings.NewReader(input))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "FUNÇÃO;CONCEIÇÃO\n"; string(result) != want {
		t.Errorf("got %q, want %q", string(result), want)
	}
}

func TestNewTextReader_LargeInput(t *testing.T) {
	line := "012345;Jo\xe3o;1\n"
	input := strings.Repeat(line, 5000)

	result, err := io.ReadAll(NewTextReader(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := strings.Repeat("012345;Jo?o;1\n", 5000); string(result) != want {
		t.Errorf("output mismatch: got %d bytes, want %d", len(result), len(want))
	}
}
