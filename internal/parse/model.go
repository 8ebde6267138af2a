package parse

import (
	"fmt"
	"time"
)

// Message is one logical chat entry reconstructed from the raw export.
// System events (member changes, encryption notices) keep an empty Author.
type Message struct {
	Timestamp time.Time
	Author    string
	Body      string
	System    bool
	Line      int // first physical line of the entry in the source file
}

// Options controls parsing of a raw export.
type Options struct {
	// Location is the timezone the export was written in.
	Location *time.Location

	// MaxUnparsableFraction is the tolerated ratio of junk lines to total
	// lines before the input is rejected as structurally broken.
	MaxUnparsableFraction float64

	// MaxLeadingJunk is a flat allowance of junk lines that never trips
	// the fraction check, so a banner line on a tiny export is tolerated.
	MaxLeadingJunk int
}

// DefaultOptions returns parser options matching a typical export.
func DefaultOptions() Options {
	return Options{
		Location:              time.UTC,
		MaxUnparsableFraction: 0.05,
		MaxLeadingJunk:        5,
	}
}

// Report summarizes one parse run.
type Report struct {
	Lines         int
	Records       int
	SystemEvents  int
	Continuations int
	BadTimestamps int
	Junk          int
}

func (r Report) String() string {
	return fmt.Sprintf("lines=%d records=%d system=%d continuations=%d bad_ts=%d junk=%d",
		r.Lines, r.Records, r.SystemEvents, r.Continuations, r.BadTimestamps, r.Junk)
}
