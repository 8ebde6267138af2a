package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bashv/wa-pipeline/internal/config"
	"github.com/bashv/wa-pipeline/internal/parse"
	"github.com/bashv/wa-pipeline/internal/pipeline"
	"github.com/bashv/wa-pipeline/internal/render"
	"github.com/bashv/wa-pipeline/internal/roster"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline, skipping stages whose artifacts exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, pcfg, err := setup()
			if err != nil {
				return err
			}

			res, err := pipeline.Run(st, pcfg)
			if err != nil {
				return err
			}

			fmt.Print(render.Stages(res))
			return nil
		},
	}
}

// setup loads config and roster and builds the artifact store plus the
// pipeline configuration every data command starts from.
func setup() (pipeline.Store, pipeline.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, pipeline.Config{}, fmt.Errorf("load config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, pipeline.Config{}, err
	}

	ros, err := roster.Load(cfg.RosterPath)
	if err != nil {
		return nil, pipeline.Config{}, fmt.Errorf("load roster: %w", err)
	}

	st, err := pipeline.NewFSStore(cfg.DataDir)
	if err != nil {
		return nil, pipeline.Config{}, err
	}

	pcfg := pipeline.Config{
		RawPath: cfg.InputPath,
		Roster:  ros,
		Parse: parse.Options{
			Location:              loc,
			MaxUnparsableFraction: cfg.Parse.MaxUnparsableFraction,
			MaxLeadingJunk:        cfg.Parse.MaxLeadingJunk,
		},
		Feature:     featureConfig(cfg),
		MessagesKey: cfg.Artifact.Messages,
		CleanedKey:  cfg.Artifact.Cleaned,
		FeaturesKey: cfg.Artifact.Features,
	}
	return st, pcfg, nil
}

// stageCmd builds the parse/clean/features subcommands. Each deletes its own
// artifact and reruns the pipeline, which recomputes that stage and every
// stage after it while leaving upstream artifacts untouched.
func stageCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, pcfg, err := setup()
			if err != nil {
				return err
			}

			key := stageKey(name, pcfg)
			if err := st.Delete(key); err != nil {
				return fmt.Errorf("drop artifact %s: %w", key, err)
			}
			fmt.Fprintf(os.Stderr, "Dropped %s, recomputing...\n", key)

			res, err := pipeline.Run(st, pcfg)
			if err != nil {
				return err
			}

			fmt.Print(render.Stages(res))
			return nil
		},
	}
}

func stageKey(name string, pcfg pipeline.Config) string {
	switch name {
	case "parse":
		if pcfg.MessagesKey != "" {
			return pcfg.MessagesKey
		}
		return pipeline.KeyMessages
	case "clean":
		if pcfg.CleanedKey != "" {
			return pcfg.CleanedKey
		}
		return pipeline.KeyCleaned
	default:
		if pcfg.FeaturesKey != "" {
			return pcfg.FeaturesKey
		}
		return pipeline.KeyFeatures
	}
}
