package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bashv/wa-pipeline/internal/logger"
)

var version = "dev"

var (
	cfgPath  string
	logLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "wap",
		Short:   "WhatsApp export analysis pipeline - parse, clean, and feature-enrich chat logs",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetLevel(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.toml", "Path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(stageCmd("parse", "Re-run the parse stage and everything after it"))
	rootCmd.AddCommand(stageCmd("clean", "Re-run the clean stage and everything after it"))
	rootCmd.AddCommand(stageCmd("features", "Re-run the feature stage"))
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
