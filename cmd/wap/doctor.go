package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bashv/wa-pipeline/internal/config"
	"github.com/bashv/wa-pipeline/internal/export"
	"github.com/bashv/wa-pipeline/internal/pipeline"
	"github.com/bashv/wa-pipeline/internal/roster"
	"github.com/bashv/wa-pipeline/internal/table"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, input, roster coverage, and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}

			fmt.Println("=== Config ===")
			fmt.Printf("  Path: %s\n", cfgPath)
			if _, err := cfg.Location(); err != nil {
				fmt.Printf("  Timezone: %s (INVALID: %v)\n", cfg.Timezone, err)
			} else {
				fmt.Printf("  Timezone: %s (OK)\n", cfg.Timezone)
			}

			fmt.Println("\n=== Input ===")
			checkFile("Raw export", cfg.InputPath)

			fmt.Println("\n=== Roster ===")
			ros, err := roster.Load(cfg.RosterPath)
			if err != nil {
				fmt.Printf("  %s (FAILED: %v)\n", cfg.RosterPath, err)
			} else {
				fmt.Printf("  %s (%d members)\n", cfg.RosterPath, len(ros.Names()))
			}

			fmt.Println("\n=== Artifacts ===")
			st, err := pipeline.NewFSStore(cfg.DataDir)
			if err != nil {
				return err
			}
			keysByStage := map[string]string{
				"parse":    orDefault(cfg.Artifact.Messages, pipeline.KeyMessages),
				"clean":    orDefault(cfg.Artifact.Cleaned, pipeline.KeyCleaned),
				"features": orDefault(cfg.Artifact.Features, pipeline.KeyFeatures),
			}
			for _, stage := range []string{"parse", "clean", "features"} {
				key := keysByStage[stage]
				ok, err := st.Exists(key)
				switch {
				case err != nil:
					fmt.Printf("  %-8s %s (ERROR: %v)\n", stage+":", key, err)
				case ok:
					fmt.Printf("  %-8s %s (present)\n", stage+":", key)
				default:
					fmt.Printf("  %-8s %s (missing, will run)\n", stage+":", key)
				}
			}

			// roster coverage over the cleaned author set
			if ros != nil {
				if ok, _ := st.Exists(keysByStage["clean"]); ok {
					data, err := st.Read(keysByStage["clean"])
					if err == nil {
						if msgs, err := table.DecodeMessages(data); err == nil {
							fmt.Println("\n=== Roster coverage ===")
							missing := 0
							seen := map[string]bool{}
							for _, m := range msgs {
								if seen[m.Author] {
									continue
								}
								seen[m.Author] = true
								if _, ok := ros.Attributes(m.Author); !ok {
									fmt.Printf("  MISSING: %q\n", m.Author)
									missing++
								}
							}
							if missing == 0 {
								fmt.Printf("  All %d cleaned authors covered.\n", len(seen))
							}
						}
					}
				}
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'wap export' first)")
				return nil
			}
			db, err := export.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()
			n, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}
			a, err := db.AuthorCount()
			if err != nil {
				return fmt.Errorf("count authors: %w", err)
			}
			fmt.Printf("  Messages: %d\n", n)
			fmt.Printf("  Authors:  %d\n", a)

			return nil
		},
	}
}

func checkFile(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if info.IsDir() {
		fmt.Printf("  %s: %s (IS A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (%d bytes)\n", name, path, info.Size())
	}
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
