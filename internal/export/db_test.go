package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bashv/wa-pipeline/internal/feature"
)

func testRecords() []feature.Record {
	resp := 300.0
	return []feature.Record{
		{
			Timestamp:  time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			Author:     "Alice",
			Body:       "Hi?",
			IsQuestion: true,
			Hometown:   true,
		},
		{
			Timestamp:   time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC),
			Author:      "Bob",
			Body:        "Hey",
			ResponseSec: &resp,
			GapSec:      &resp,
			Technical:   true,
		},
	}
}

func TestReplaceAllAndCounts(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.ReplaceAll(testRecords()))

	n, err := db.MessageCount()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	a, err := db.AuthorCount()
	require.NoError(t, err)
	require.Equal(t, 2, a)
}

func TestReplaceAll_SwapsNotAppends(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.ReplaceAll(testRecords()))
	require.NoError(t, db.ReplaceAll(testRecords()[:1]))

	n, err := db.MessageCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestNullResponseStoredAsNull(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.ReplaceAll(testRecords()))

	var nulls int
	err = db.Raw().QueryRow("SELECT COUNT(*) FROM messages WHERE response_sec IS NULL").Scan(&nulls)
	require.NoError(t, err)
	require.Equal(t, 1, nulls)

	var resp float64
	err = db.Raw().QueryRow("SELECT response_sec FROM messages WHERE author = 'Bob'").Scan(&resp)
	require.NoError(t, err)
	require.Equal(t, 300.0, resp)
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "chat.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
