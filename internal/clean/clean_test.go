package clean

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bashv/wa-pipeline/internal/parse"
	"github.com/bashv/wa-pipeline/internal/roster"
)

func testRoster(t *testing.T) *roster.Roster {
	t.Helper()
	ros, err := roster.New(map[string]roster.Member{
		"Alice Jansen": {
			Attributes: roster.Attributes{Hometown: true},
			Aliases:    []string{"Alice"},
		},
		"Bob de Vries": {
			Attributes: roster.Attributes{Technical: true},
			Aliases:    []string{"Bob"},
		},
	})
	require.NoError(t, err)
	return ros
}

func ts(min int) time.Time {
	return time.Date(2024, 1, 1, 10, min, 0, 0, time.UTC)
}

func TestClean_ConservationProperty(t *testing.T) {
	in := []parse.Message{
		{Timestamp: ts(0), Author: "Alice", Body: "hi"},
		{Timestamp: ts(1), Body: "Alice added Bob", System: true},
		{Author: "Bob", Body: "no timestamp"},
		{Timestamp: ts(3), Author: "Zed", Body: "stranger"},
		{Timestamp: ts(4), Author: "Bob", Body: "   "},
		{Timestamp: ts(5), Author: "Bob", Body: "hey"},
	}

	out, rep := Clean(in, testRoster(t))

	require.Equal(t, len(in), len(out)+rep.Total())
	require.Equal(t, len(in), rep.Input)
	require.Equal(t, len(out), rep.Kept)
	require.Equal(t, 1, rep.Excluded[RuleSystemEvent])
	require.Equal(t, 1, rep.Excluded[RuleBadTimestamp])
	require.Equal(t, 1, rep.Excluded[RuleUnknownAuthor])
	require.Equal(t, 1, rep.Excluded[RuleEmptyBody])
}

func TestClean_Idempotent(t *testing.T) {
	in := []parse.Message{
		{Timestamp: ts(0), Author: "Alice", Body: " hi "},
		{Timestamp: ts(1), Author: "Bob", Body: "hey"},
	}
	ros := testRoster(t)

	once, rep1 := Clean(in, ros)
	twice, rep2 := Clean(once, ros)

	require.Equal(t, once, twice)
	require.Equal(t, len(once), rep1.Kept)
	require.Zero(t, rep2.Total())
}

func TestClean_AuthorNormalization(t *testing.T) {
	in := []parse.Message{
		{Timestamp: ts(0), Author: "alice", Body: "lowercase"},
		{Timestamp: ts(1), Author: "~ Alice Jansen", Body: "tilde prefix"},
		{Timestamp: ts(2), Author: "  Bob  ", Body: "padded"},
	}

	out, rep := Clean(in, testRoster(t))

	require.Zero(t, rep.Total())
	require.Equal(t, "Alice Jansen", out[0].Author)
	require.Equal(t, "Alice Jansen", out[1].Author)
	require.Equal(t, "Bob de Vries", out[2].Author)
}

func TestClean_FirstMatchingRuleWins(t *testing.T) {
	// a system event with a zero timestamp counts against the system rule
	// only, so the exclusion totals stay attributable
	in := []parse.Message{
		{Body: "Messages are end-to-end encrypted", System: true},
	}

	out, rep := Clean(in, testRoster(t))

	require.Empty(t, out)
	require.Equal(t, 1, rep.Excluded[RuleSystemEvent])
	require.Zero(t, rep.Excluded[RuleBadTimestamp])
}

func TestClean_BodyTrimmed(t *testing.T) {
	in := []parse.Message{
		{Timestamp: ts(0), Author: "Alice", Body: "  hello \n"},
	}

	out, _ := Clean(in, testRoster(t))

	require.Len(t, out, 1)
	require.Equal(t, "hello", out[0].Body)
}

func TestReport_String(t *testing.T) {
	_, rep := Clean([]parse.Message{
		{Timestamp: ts(0), Author: "Alice", Body: "hi"},
		{Timestamp: ts(1), Author: "Zed", Body: "who"},
	}, testRoster(t))

	require.Contains(t, rep.String(), "input=2 kept=1")
	require.Contains(t, rep.String(), "unknown_author=1")
}
