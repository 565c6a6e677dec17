package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/senioritydiff/internal/config"
	"github.com/JonMunkholm/senioritydiff/internal/core"
	"github.com/JonMunkholm/senioritydiff/internal/logging"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand, built once the flags are parsed.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *core.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var verbose bool

	root := &cobra.Command{
		Use:   "rosterdiff",
		Short: "Compare seniority roster PDFs",
		Long: "rosterdiff reads published seniority rosters (text PDFs or CSV exports), " +
			"normalizes them and reports entries, exits and field changes keyed on RE.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := cfg.Logging.Level
			if verbose {
				level = "debug"
			}
			a.cfg = cfg
			a.logger = logging.New(cmd.ErrOrStderr(), level, cfg.Logging.Format)
			a.service = core.NewService(cfg.ServiceConfig(), nil, a.logger)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log extraction details to stderr")

	root.AddCommand(newExtractCmd(a), newCompareCmd(a), newLookupCmd(a))
	return root
}

// readDocument loads a roster file, naming it after its base name.
func readDocument(path string) (core.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return core.Document{Name: filepath.Base(path), Data: data}, nil
}

func readPair(oldPath, newPath string) (oldDoc, newDoc core.Document, err error) {
	if oldDoc, err = readDocument(oldPath); err != nil {
		return
	}
	newDoc, err = readDocument(newPath)
	return
}

// output opens path for writing, or returns the command's stdout when path
// is empty. The returned close func is always safe to call.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}

// checkFormat rejects a --format value outside allowed.
func checkFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (want one of %v)", format, allowed)
}
