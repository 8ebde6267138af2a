package parse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func parseLines(t *testing.T, opts Options, lines ...string) ([]Message, Report, error) {
	t.Helper()
	return Parse(strings.NewReader(strings.Join(lines, "\n")), opts)
}

func TestParse_SingleMessage(t *testing.T) {
	msgs, rep, err := parseLines(t, DefaultOptions(),
		"[01/01/24, 10:00] Alice: Hello",
	)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "Alice", msgs[0].Author)
	require.Equal(t, "Hello", msgs[0].Body)
	require.False(t, msgs[0].System)
	require.Equal(t, 1, msgs[0].Line)
	require.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), msgs[0].Timestamp)
	require.Equal(t, 1, rep.Records)
}

func TestParse_MultiLineContinuation(t *testing.T) {
	msgs, rep, err := parseLines(t, DefaultOptions(),
		"[01/01/24, 10:00] Alice: Hello",
		"world",
	)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "Hello\nworld", msgs[0].Body)
	require.Equal(t, 1, rep.Continuations)
}

func TestParse_SystemEventTagged(t *testing.T) {
	msgs, rep, err := parseLines(t, DefaultOptions(),
		"[01/01/24, 09:59] Messages and calls are end-to-end encrypted.",
		"[01/01/24, 10:00] Alice added Bob",
		"[01/01/24, 10:01] Alice: hi Bob",
	)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	require.True(t, msgs[0].System)
	require.Empty(t, msgs[0].Author)
	require.True(t, msgs[1].System)
	require.False(t, msgs[2].System)
	require.Equal(t, 2, rep.SystemEvents)
}

func TestParse_BadTimestampKeptForCleaning(t *testing.T) {
	// well-shaped prefix but Feb 31 is not an instant; the record survives
	// with a zero timestamp so the cleaning stage can count the exclusion
	msgs, rep, err := parseLines(t, DefaultOptions(),
		"[31/02/24, 10:00] Alice: hi",
		"[01/03/24, 10:00] Alice: hi again",
	)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.True(t, msgs[0].Timestamp.IsZero())
	require.False(t, msgs[1].Timestamp.IsZero())
	require.Equal(t, 1, rep.BadTimestamps)
}

func TestParse_TimestampVariants(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Location = loc

	msgs, _, err := parseLines(t, opts,
		"[01/01/2024, 10:00:30] Alice: four digit year with seconds",
		"[2/1/24, 9:05] Alice: no padding",
	)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, time.Date(2024, 1, 1, 10, 0, 30, 0, loc), msgs[0].Timestamp)
	require.Equal(t, time.Date(2024, 1, 2, 9, 5, 0, 0, loc), msgs[1].Timestamp)
}

func TestParse_LeadingJunkTolerated(t *testing.T) {
	lines := []string{"export header", "another banner"}
	for i := 0; i < 50; i++ {
		lines = append(lines, "[01/01/24, 10:00] Alice: msg")
	}
	msgs, rep, err := parseLines(t, DefaultOptions(), lines...)
	require.NoError(t, err)
	require.Len(t, msgs, 50)
	require.Equal(t, 2, rep.Junk)
}

func TestParse_JunkFractionFailsFast(t *testing.T) {
	lines := make([]string, 0, 12)
	for i := 0; i < 10; i++ {
		lines = append(lines, "not a chat line")
	}
	lines = append(lines, "[01/01/24, 10:00] Alice: lonely message")

	_, _, err := parseLines(t, DefaultOptions(), lines...)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrFormat)
}

func TestParse_NoRecordsFailsFast(t *testing.T) {
	_, _, err := parseLines(t, DefaultOptions(),
		"just",
		"plain",
		"text",
	)
	require.ErrorIs(t, err, ErrFormat)
}

func TestParse_EmptyInput(t *testing.T) {
	msgs, rep, err := Parse(strings.NewReader(""), DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, msgs)
	require.Zero(t, rep.Records)
}

func TestParse_ByteOrderMarkStripped(t *testing.T) {
	// exports written on some platforms open with a BOM, and direction
	// marks can precede the bracket on right-to-left locales
	msgs, rep, err := parseLines(t, DefaultOptions(),
		"\uFEFF[01/01/24, 10:00] Alice: Hello",
		"‎[01/01/24, 10:01] Bob: Hi",
	)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "Alice", msgs[0].Author)
	require.Equal(t, "Bob", msgs[1].Author)
	require.Zero(t, rep.Junk)
}

func TestParse_ContinuationWithBrackets(t *testing.T) {
	// a continuation line that merely starts with a bracket is not a new entry
	msgs, _, err := parseLines(t, DefaultOptions(),
		"[01/01/24, 10:00] Alice: schedule:",
		"[monday] gym",
	)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "schedule:\n[monday] gym", msgs[0].Body)
}

func TestParse_ChronologicalOrderPreserved(t *testing.T) {
	msgs, _, err := parseLines(t, DefaultOptions(),
		"[01/01/24, 09:00] Alice: first",
		"[01/01/24, 09:05] Bob: second",
		"[01/01/24, 09:06] Alice: third",
	)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i := 1; i < len(msgs); i++ {
		require.False(t, msgs[i].Timestamp.Before(msgs[i-1].Timestamp))
	}
}
