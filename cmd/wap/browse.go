package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bashv/wa-pipeline/internal/tui"
)

func browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactively browse the feature table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := loadRecords()
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(os.Stderr, "No records to browse.")
				return nil
			}
			return tui.Run(recs)
		},
	}
}
