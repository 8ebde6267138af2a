// Package render turns pipeline results into terminal output for the stats
// and run commands.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bashv/wa-pipeline/internal/feature"
	"github.com/bashv/wa-pipeline/internal/pipeline"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleStage  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Stages renders the per-stage outcome of a pipeline run.
func Stages(res *pipeline.Result) string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("Pipeline") + "\n")
	for _, line := range res.Stages() {
		name, detail, _ := strings.Cut(line, ":")
		b.WriteString("  " + styleStage.Render(name+":") + detail + "\n")
	}
	return b.String()
}

type authorStats struct {
	name      string
	messages  int
	questions int
	emoji     int
	media     int
	respSum   float64
	respCount int
}

// AuthorSummary renders a per-author table from the feature records: message
// counts, question/emoji/media counts, and mean response time. width bounds
// the rendered line width; author names are truncated to fit.
func AuthorSummary(recs []feature.Record, width int) string {
	byAuthor := make(map[string]*authorStats)
	for _, r := range recs {
		s := byAuthor[r.Author]
		if s == nil {
			s = &authorStats{name: r.Author}
			byAuthor[r.Author] = s
		}
		s.messages++
		if r.IsQuestion {
			s.questions++
		}
		if r.HasEmoji {
			s.emoji++
		}
		if r.IsMedia {
			s.media++
		}
		if r.ResponseSec != nil {
			s.respSum += *r.ResponseSec
			s.respCount++
		}
	}

	stats := make([]*authorStats, 0, len(byAuthor))
	for _, s := range byAuthor {
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].messages != stats[j].messages {
			return stats[i].messages > stats[j].messages
		}
		return stats[i].name < stats[j].name
	})

	const countColsWidth = 4*9 + 11 // four 8-wide count columns + response, with separators
	nameW := width - countColsWidth - 2
	if nameW < 12 {
		nameW = 12
	}

	var b strings.Builder
	b.WriteString(styleHeader.Render(fmt.Sprintf("%d messages, %d authors", len(recs), len(stats))) + "\n")
	header := fmt.Sprintf("  %s %8s %8s %8s %8s %10s",
		runewidth.FillRight("author", nameW), "msgs", "quest", "emoji", "media", "resp(s)")
	b.WriteString(styleDim.Render(header) + "\n")

	for _, s := range stats {
		name := s.name
		if runewidth.StringWidth(name) > nameW {
			name = runewidth.Truncate(name, nameW, "…")
		}
		resp := "-"
		if s.respCount > 0 {
			resp = fmt.Sprintf("%.0f", s.respSum/float64(s.respCount))
		}
		b.WriteString(fmt.Sprintf("  %s %8d %8d %8d %8d %10s\n",
			runewidth.FillRight(name, nameW), s.messages, s.questions, s.emoji, s.media, resp))
	}
	return b.String()
}
