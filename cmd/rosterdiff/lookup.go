package main

import (
	"encoding/json"

	"github.com/JonMunkholm/senioritydiff/internal/report"
	"github.com/spf13/cobra"
)

func newLookupCmd(a *app) *cobra.Command {
	var oldPath, newPath, id, format string

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Show what happened to one RE between two rosters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, "text", "json"); err != nil {
				return err
			}

			oldDoc, newDoc, err := readPair(oldPath, newPath)
			if err != nil {
				return err
			}
			res, err := a.service.Lookup(cmd.Context(), oldDoc, newDoc, id)
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return report.WriteLookup(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&oldPath, "old", "", "Base roster (the earlier list)")
	cmd.Flags().StringVar(&newPath, "new", "", "Roster to compare against the base")
	cmd.Flags().StringVar(&id, "re", "", "RE to look up")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	_ = cmd.MarkFlagRequired("re")
	return cmd
}
