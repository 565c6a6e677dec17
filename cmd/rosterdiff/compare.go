package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/senioritydiff/internal/core"
	"github.com/JonMunkholm/senioritydiff/internal/report"
	"github.com/spf13/cobra"
)

func newCompareCmd(a *app) *cobra.Command {
	var oldPath, newPath, format, out string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two rosters and report entries, exits and changes",
		Example: "  rosterdiff compare --old escala_jan.pdf --new escala_fev.pdf\n" +
			"  rosterdiff compare --old jan.pdf --new fev.pdf --format html --out relatorio.html\n" +
			"  rosterdiff compare --old jan.json --new fev.json   # records saved by extract",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, "text", "json", "csv", "html"); err != nil {
				return err
			}

			cmp, err := runCompare(cmd.Context(), a.service, oldPath, newPath)
			if err != nil {
				return err
			}

			w, closeOut, err := output(cmd, out)
			if err != nil {
				return err
			}
			defer closeOut()

			switch format {
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				err = enc.Encode(cmp)
			case "csv":
				err = report.WriteCSV(w, cmp.Report)
			case "html":
				err = report.HTML(cmp).Render(cmd.Context(), w)
			default:
				err = report.WriteText(w, cmp)
			}
			if err != nil {
				return err
			}
			if out != "" {
				a.logger.Info("report written", "path", out, "changes", len(cmp.Report.Changes))
			}
			return closeOut()
		},
	}

	cmd.Flags().StringVar(&oldPath, "old", "", "Base roster (the earlier list)")
	cmd.Flags().StringVar(&newPath, "new", "", "Roster to compare against the base")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, csv or html")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the report to a file instead of stdout")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}

// runCompare compares two roster documents, or two record files written by
// extract when both paths end in .json.
func runCompare(ctx context.Context, svc *core.Service, oldPath, newPath string) (*core.Comparison, error) {
	if isRecordsFile(oldPath) != isRecordsFile(newPath) {
		return nil, fmt.Errorf("--old and --new must both be rosters or both be extract JSON output")
	}
	if isRecordsFile(oldPath) {
		oldName, oldSet, err := readRecords(oldPath)
		if err != nil {
			return nil, err
		}
		newName, newSet, err := readRecords(newPath)
		if err != nil {
			return nil, err
		}
		return svc.CompareSets(ctx, oldName, oldSet, newName, newSet)
	}

	oldDoc, newDoc, err := readPair(oldPath, newPath)
	if err != nil {
		return nil, err
	}
	return svc.Compare(ctx, oldDoc, newDoc)
}

func isRecordsFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// savedRecords is the part of the extract JSON output read back by compare.
type savedRecords struct {
	Name    string        `json:"name"`
	Records []core.Record `json:"records"`
}

func readRecords(path string) (string, *core.RecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}
	var saved savedRecords
	if err := json.Unmarshal(data, &saved); err != nil {
		return "", nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if saved.Name == "" {
		saved.Name = filepath.Base(path)
	}
	return saved.Name, core.NewRecordSet(saved.Records), nil
}
