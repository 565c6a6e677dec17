package sources

import (
	"log/slog"

	"github.com/JonMunkholm/senioritydiff/internal/core"
	"github.com/JonMunkholm/senioritydiff/internal/pdftable"
)

func init() {
	registerPDF()
}

func registerPDF() {
	core.Register(core.SourceDefinition{
		Info: core.SourceInfo{
			Key:        "pdf",
			Label:      "PDF roster",
			Extensions: []string{".pdf"},
			Magic:      []byte("%PDF-"),
		},
		New: func(opts core.ExtractOptions, logger *slog.Logger) core.TableExtractor {
			return pdftable.New(opts, logger)
		},
	})
}
