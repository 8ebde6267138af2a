package parse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
)

const maxLineSize = 1 * 1024 * 1024 // 1MB, single physical lines larger than this are corrupt

// ErrFormat is returned when the input cannot be read as a chat export at
// all, or when the junk-line fraction exceeds the configured tolerance.
var ErrFormat = errors.New("input does not look like a chat export")

// entryPrefix matches the `[date, time] rest` prefix that starts a new entry.
// The date/time shape is matched loosely here; actual validity is decided by
// the layout chain below so that a well-shaped but impossible timestamp still
// produces a record (which cleaning will exclude as a bad timestamp).
var entryPrefix = regexp.MustCompile(`^\[(\d{1,2}/\d{1,2}/\d{2,4}),?\s+(\d{1,2}:\d{2}(?::\d{2})?)\]\s?(.*)$`)

var timestampLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/06 15:04:05",
	"02/01/06 15:04",
	"2/1/2006 15:04",
	"2/1/06 15:04",
}

// ParseFile reads and parses a raw export from disk.
func ParseFile(path string, opts Options) ([]Message, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, err
	}
	defer f.Close()
	return Parse(f, opts)
}

// Parse converts raw export lines into an ordered slice of Messages.
//
// A line starting with a timestamp prefix opens a new entry; the remainder is
// split into author and body at the first ": ". A prefixed line without that
// separator is a system event. Any other line continues the previous entry's
// body, newline-joined; with no previous entry it is counted as junk.
func Parse(r io.Reader, opts Options) ([]Message, Report, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	var msgs []Message
	var rep Report

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		rep.Lines++
		line := strings.TrimRight(scanner.Text(), "\r")
		// exports sometimes carry a BOM or direction marks on the first lines
		line = strings.TrimLeft(line, "\uFEFF\u200E\u200F")
		if line == "" && len(msgs) == 0 {
			continue
		}

		m := entryPrefix.FindStringSubmatch(line)
		if m == nil {
			if len(msgs) == 0 {
				rep.Junk++
				continue
			}
			msgs[len(msgs)-1].Body += "\n" + line
			rep.Continuations++
			continue
		}

		ts := parseTimestamp(m[1], m[2], opts.Location)
		if ts.IsZero() {
			rep.BadTimestamps++
		}

		author, body, ok := strings.Cut(m[3], ": ")
		msg := Message{Timestamp: ts, Line: rep.Lines}
		if ok {
			msg.Author = strings.TrimSpace(author)
			msg.Body = body
		} else {
			// no author separator: member change, group event, encryption notice
			msg.System = true
			msg.Body = m[3]
			rep.SystemEvents++
		}
		msgs = append(msgs, msg)
		rep.Records++
	}
	if err := scanner.Err(); err != nil {
		return nil, rep, fmt.Errorf("read export: %w", err)
	}

	if rep.Lines > 0 && rep.Records == 0 {
		return nil, rep, fmt.Errorf("%w: no entry matched the timestamp grammar in %d lines", ErrFormat, rep.Lines)
	}
	if rep.Junk > opts.MaxLeadingJunk {
		frac := float64(rep.Junk) / float64(rep.Lines)
		if frac > opts.MaxUnparsableFraction {
			return nil, rep, fmt.Errorf("%w: %d of %d lines unparsable (%.1f%% > %.1f%% tolerance)",
				ErrFormat, rep.Junk, rep.Lines, frac*100, opts.MaxUnparsableFraction*100)
		}
	}

	return msgs, rep, nil
}

// parseTimestamp tries the known export layouts in order. The zero time marks
// a well-shaped but invalid instant (e.g. 31/02); callers keep the record and
// leave the exclusion to the cleaning stage.
func parseTimestamp(date, clock string, loc *time.Location) time.Time {
	s := date + " " + clock
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
