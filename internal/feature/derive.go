// Package feature computes the derived columns of the final table: per-body
// text heuristics, response times, and the static roster attribute join.
package feature

import (
	"fmt"
	"time"

	"github.com/bashv/wa-pipeline/internal/parse"
	"github.com/bashv/wa-pipeline/internal/roster"
)

// Config supplies the keyword sets the text heuristics run against.
type Config struct {
	QuestionWords  []string
	MeetupKeywords []string
	MediaMarkers   []string
}

// Record is one cleaned message plus its derived columns.
type Record struct {
	Timestamp time.Time
	Author    string
	Body      string
	Line      int

	Length     int
	WordCount  int
	EmojiCount int
	HasEmoji   bool
	IsQuestion bool
	IsMeetup   bool
	IsMedia    bool

	// ResponseSec is the delay to the immediately preceding message by a
	// different author; nil when no such predecessor exists.
	ResponseSec *float64
	// GapSec is the delay to the immediately preceding message by anyone;
	// nil for the first record.
	GapSec *float64

	Hometown  bool
	Technical bool
}

// RosterMissingError reports a cleaned author absent from the attribute
// roster. The roster must cover every author the cleaner lets through;
// silently nulling the attributes would corrupt downstream analyses.
type RosterMissingError struct {
	Author string
}

func (e *RosterMissingError) Error() string {
	return fmt.Sprintf("author %q has no roster entry", e.Author)
}

// tracker is the accumulator threaded through the derivation pass. It holds
// the last message seen and the last message before the current same-author
// run, which together locate the most recent message by any other author.
type tracker struct {
	lastAuthor string
	lastTS     time.Time

	beforeRunAuthor string
	beforeRunTS     time.Time
}

// predecessor returns the timestamp of the most recent message whose author
// differs from author, and whether one exists.
func (t *tracker) predecessor(author string) (time.Time, bool) {
	if t.lastAuthor != "" && t.lastAuthor != author {
		return t.lastTS, true
	}
	if t.beforeRunAuthor != "" && t.beforeRunAuthor != author {
		return t.beforeRunTS, true
	}
	return time.Time{}, false
}

func (t *tracker) advance(author string, ts time.Time) {
	if t.lastAuthor != "" && author != t.lastAuthor {
		t.beforeRunAuthor, t.beforeRunTS = t.lastAuthor, t.lastTS
	}
	t.lastAuthor, t.lastTS = author, ts
}

// Derive computes the feature table from a cleaned, chronologically ordered
// message stream. It fails with a RosterMissingError if any author has no
// attribute row.
func Derive(msgs []parse.Message, ros *roster.Roster, cfg Config) ([]Record, error) {
	out := make([]Record, 0, len(msgs))
	var tr tracker

	for i, m := range msgs {
		attrs, ok := ros.Attributes(m.Author)
		if !ok {
			return nil, &RosterMissingError{Author: m.Author}
		}

		rec := Record{
			Timestamp:  m.Timestamp,
			Author:     m.Author,
			Body:       m.Body,
			Line:       m.Line,
			Length:     Length(m.Body),
			WordCount:  WordCount(m.Body),
			EmojiCount: CountEmojis(m.Body),
			IsQuestion: IsQuestion(m.Body, cfg.QuestionWords),
			IsMedia:    ContainsKeyword(m.Body, cfg.MediaMarkers),
			Hometown:   attrs.Hometown,
			Technical:  attrs.Technical,
		}
		rec.HasEmoji = rec.EmojiCount > 0
		rec.IsMeetup = rec.IsQuestion && ContainsKeyword(m.Body, cfg.MeetupKeywords)

		if i > 0 {
			gap := m.Timestamp.Sub(msgs[i-1].Timestamp).Seconds()
			rec.GapSec = &gap
		}
		if prev, ok := tr.predecessor(m.Author); ok {
			resp := m.Timestamp.Sub(prev).Seconds()
			rec.ResponseSec = &resp
		}
		tr.advance(m.Author, m.Timestamp)

		out = append(out, rec)
	}
	return out, nil
}
