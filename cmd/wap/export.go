package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bashv/wa-pipeline/internal/config"
	"github.com/bashv/wa-pipeline/internal/export"
	"github.com/bashv/wa-pipeline/internal/feature"
	"github.com/bashv/wa-pipeline/internal/pipeline"
)

func featureConfig(cfg *config.Config) feature.Config {
	return feature.Config{
		QuestionWords:  cfg.Features.QuestionWords,
		MeetupKeywords: cfg.Features.MeetupKeywords,
		MediaMarkers:   cfg.Features.MediaMarkers,
	}
}

// loadRecords runs the pipeline (stages with current artifacts are skipped)
// and returns the final feature table.
func loadRecords() ([]feature.Record, error) {
	st, pcfg, err := setup()
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Run(st, pcfg)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Copy the feature table into a SQLite database for analysis tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			recs, err := loadRecords()
			if err != nil {
				return err
			}

			db, err := export.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			if err := db.ReplaceAll(recs); err != nil {
				return fmt.Errorf("export: %w", err)
			}

			n, err := db.MessageCount()
			if err != nil {
				return err
			}
			a, err := db.AuthorCount()
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Exported %d messages from %d authors to %s\n", n, a, cfg.DBPath)
			return nil
		},
	}
}
