package core

// streaming.go decodes tabular text exports on the fly.
//
// Roster spreadsheets are usually saved from Excel on Windows, which adds a
// byte order mark, may save as UTF-16 ("Unicode text") and sometimes mixes in
// Latin-1 bytes from older sheets. NewTextReader turns all of these into
// clean UTF-8 with constant memory.

import (
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// InvalidByteReplacement stands in for bytes that are not valid UTF-8.
const InvalidByteReplacement = '?'

// NewTextReader wraps r so that a UTF-8 or UTF-16 BOM selects the decoding
// and is dropped, and invalid UTF-8 is replaced with InvalidByteReplacement.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, newTextTransformer())
}

func newTextTransformer() transform.Transformer {
	return transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		runes.Map(replaceInvalid),
	)
}

// replaceInvalid maps the decoder's U+FFFD, which also marks invalid input
// bytes, to a plain replacement.
func replaceInvalid(r rune) rune {
	if r == utf8.RuneError {
		return InvalidByteReplacement
	}
	return r
}
