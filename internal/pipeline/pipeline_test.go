package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bashv/wa-pipeline/internal/feature"
	"github.com/bashv/wa-pipeline/internal/parse"
	"github.com/bashv/wa-pipeline/internal/roster"
)

const rawExport = `[01/01/24, 09:00] Alice: Hi?
[01/01/24, 09:05] Bob: Hey
[01/01/24, 09:06] Bob: hoe gaat het
met jou
[01/01/24, 09:07] Alice added Carol
[01/01/24, 09:10] Zed: who let me in
`

func testConfig(t *testing.T) Config {
	t.Helper()

	ros, err := roster.New(map[string]roster.Member{
		"Alice": {Attributes: roster.Attributes{Hometown: true}},
		"Bob":   {Attributes: roster.Attributes{Technical: true}},
	})
	require.NoError(t, err)

	rawPath := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(rawPath, []byte(rawExport), 0o644))

	return Config{
		RawPath: rawPath,
		Roster:  ros,
		Parse:   parse.DefaultOptions(),
		Feature: feature.Config{
			QuestionWords:  []string{"hoe"},
			MeetupKeywords: []string{"borrel"},
		},
	}
}

func storeSnapshot(t *testing.T, st Store) map[string][]byte {
	t.Helper()
	snap := make(map[string][]byte)
	for _, key := range []string{KeyMessages, KeyCleaned, KeyFeatures} {
		ok, err := st.Exists(key)
		require.NoError(t, err)
		if ok {
			data, err := st.Read(key)
			require.NoError(t, err)
			snap[key] = data
		}
	}
	return snap
}

func TestRun_FreshComputesAllStages(t *testing.T) {
	st := NewMemStore()
	cfg := testConfig(t)

	res, err := Run(st, cfg)
	require.NoError(t, err)
	require.False(t, res.ParseSkipped)
	require.False(t, res.CleanSkipped)
	require.False(t, res.FeaturesSkipped)

	// 5 entries parsed (multi-line joined), of which 1 system event
	require.Equal(t, 5, res.ParseReport.Records)
	require.Equal(t, 1, res.ParseReport.SystemEvents)
	require.Equal(t, 1, res.ParseReport.Continuations)

	// system event + unknown author excluded
	require.Equal(t, 2, res.CleanReport.Total())
	require.Equal(t, res.CleanReport.Input, res.CleanReport.Kept+res.CleanReport.Total())

	require.Len(t, res.Records, 2+1)
	require.Equal(t, "Alice", res.Records[0].Author)
	require.True(t, res.Records[0].IsQuestion)
	require.Nil(t, res.Records[0].ResponseSec)
	require.NotNil(t, res.Records[1].ResponseSec)
	require.Equal(t, 300.0, *res.Records[1].ResponseSec)

	for _, key := range []string{KeyMessages, KeyCleaned, KeyFeatures} {
		ok, err := st.Exists(key)
		require.NoError(t, err)
		require.True(t, ok, "artifact %s should exist", key)
	}
}

func TestRun_SecondRunSkipsEverything(t *testing.T) {
	st := NewMemStore()
	cfg := testConfig(t)

	first, err := Run(st, cfg)
	require.NoError(t, err)
	before := storeSnapshot(t, st)

	// the raw file is not needed when every artifact is current
	require.NoError(t, os.Remove(cfg.RawPath))

	second, err := Run(st, cfg)
	require.NoError(t, err)
	require.True(t, second.ParseSkipped)
	require.True(t, second.CleanSkipped)
	require.True(t, second.FeaturesSkipped)

	after := storeSnapshot(t, st)
	require.Equal(t, before, after)
	require.Equal(t, len(first.Records), len(second.Records))
}

func TestRun_DeletedDownstreamRecomputesOnlyDownstream(t *testing.T) {
	st := NewMemStore()
	cfg := testConfig(t)

	_, err := Run(st, cfg)
	require.NoError(t, err)
	require.NoError(t, st.Delete(KeyCleaned))

	// removing the raw input proves the parse stage is not re-run
	require.NoError(t, os.Remove(cfg.RawPath))

	res, err := Run(st, cfg)
	require.NoError(t, err)
	require.True(t, res.ParseSkipped)
	require.False(t, res.CleanSkipped)
	// downstream of a recomputed stage always recomputes, even though its
	// artifact still exists
	require.False(t, res.FeaturesSkipped)
}

func TestRun_DeletedLastStageLeavesUpstreamAlone(t *testing.T) {
	st := NewMemStore()
	cfg := testConfig(t)

	_, err := Run(st, cfg)
	require.NoError(t, err)
	require.NoError(t, st.Delete(KeyFeatures))
	require.NoError(t, os.Remove(cfg.RawPath))

	res, err := Run(st, cfg)
	require.NoError(t, err)
	require.True(t, res.ParseSkipped)
	require.True(t, res.CleanSkipped)
	require.False(t, res.FeaturesSkipped)
}

func TestRun_StructuralErrorHalts(t *testing.T) {
	st := NewMemStore()
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.RawPath, []byte(strings.Repeat("garbage\n", 50)), 0o644))

	_, err := Run(st, cfg)
	require.Error(t, err)
	require.ErrorIs(t, err, parse.ErrFormat)
	require.Contains(t, err.Error(), "parse:")

	// no artifact may survive a failed stage
	ok, err2 := st.Exists(KeyMessages)
	require.NoError(t, err2)
	require.False(t, ok)
}

func TestRun_RosterGapHalts(t *testing.T) {
	st := NewMemStore()
	cfg := testConfig(t)

	// roster that covers Alice but not Bob: cleaning keeps both, the
	// feature join must then fail loudly
	ros, err := roster.New(map[string]roster.Member{
		"Alice": {},
		"Bob":   {},
	})
	require.NoError(t, err)
	cfg.Roster = ros

	// run clean against the full roster, then shrink it for features
	_, err = Run(st, cfg)
	require.NoError(t, err)

	small, err := roster.New(map[string]roster.Member{"Alice": {}})
	require.NoError(t, err)
	cfg.Roster = small
	require.NoError(t, st.Delete(KeyFeatures))

	_, err = Run(st, cfg)
	require.Error(t, err)
	var rme *feature.RosterMissingError
	require.ErrorAs(t, err, &rme)
	require.Equal(t, "Bob", rme.Author)
}

func TestRun_MissingRawFileFails(t *testing.T) {
	st := NewMemStore()
	cfg := testConfig(t)
	require.NoError(t, os.Remove(cfg.RawPath))

	_, err := Run(st, cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse:")
}

func TestRun_CustomArtifactKeys(t *testing.T) {
	st := NewMemStore()
	cfg := testConfig(t)
	cfg.MessagesKey = "stage1.csv"
	cfg.CleanedKey = "stage2.csv"
	cfg.FeaturesKey = "stage3.csv"

	_, err := Run(st, cfg)
	require.NoError(t, err)

	for _, key := range []string{"stage1.csv", "stage2.csv", "stage3.csv"} {
		ok, err := st.Exists(key)
		require.NoError(t, err)
		require.True(t, ok)
	}
}
