package main

import (
	"encoding/json"

	"github.com/JonMunkholm/senioritydiff/internal/core"
	"github.com/JonMunkholm/senioritydiff/internal/report"
	"github.com/spf13/cobra"
)

// extractOutput is the JSON written by the extract command.
type extractOutput struct {
	*core.Ingestion
	Records   []core.Record `json:"records"`
	Ambiguous []string      `json:"ambiguous,omitempty"`
}

func newExtractCmd(a *app) *cobra.Command {
	var in, format, out string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract and normalize the records of one roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, "json", "csv"); err != nil {
				return err
			}

			doc, err := readDocument(in)
			if err != nil {
				return err
			}
			ing, err := a.service.Extract(cmd.Context(), doc)
			if err != nil {
				return err
			}

			w, closeOut, err := output(cmd, out)
			if err != nil {
				return err
			}
			defer closeOut()

			if format == "csv" {
				err = report.WriteRecordsCSV(w, ing.Set.Records())
			} else {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				err = enc.Encode(extractOutput{
					Ingestion: ing,
					Records:   ing.Set.Records(),
					Ambiguous: ing.Set.Ambiguous(),
				})
			}
			if err != nil {
				return err
			}
			return closeOut()
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "Roster file (PDF or CSV)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to file instead of stdout")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
