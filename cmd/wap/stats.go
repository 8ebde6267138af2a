package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bashv/wa-pipeline/internal/render"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-author summary of the feature table",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := loadRecords()
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(os.Stderr, "No records. Check the input path in the config.")
				return nil
			}

			width := 80
			if term.IsTerminal(int(os.Stdout.Fd())) {
				if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
					width = w
				}
			}

			fmt.Print(render.AuthorSummary(recs, width))
			return nil
		},
	}
}
