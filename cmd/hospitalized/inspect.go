package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jotavaladouro/covid19/internal/config"
	"github.com/jotavaladouro/covid19/internal/domain"
	"github.com/jotavaladouro/covid19/internal/report"
)

func newInspectCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <csv>",
		Short: "Print what the loader keeps from a local snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd.OutOrStdout(), cfg, args[0])
		},
	}
}

func inspect(w io.Writer, cfg *config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, stats, err := domain.ParseSnapshot(f, domain.LoadOptions{
		RegionColumn:       cfg.Columns.Region,
		DateColumn:         cfg.Columns.Date,
		HospitalizedColumn: cfg.Columns.Hospitalized,
		FooterRows:         cfg.SourceFooterRows,
		ExcludedRegions:    cfg.ExcludedRegions,
	})
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("parse %s: %w", path, domain.ErrNoRecords)
	}
	return report.PrintSnapshot(w, records, stats)
}
