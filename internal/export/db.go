// Package export copies the final feature table into a SQLite database so
// the downstream analysis and plotting tools get a typed, queryable view of
// the same rows the CSV artifact holds.
package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/bashv/wa-pipeline/internal/feature"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS messages (
    id              INTEGER PRIMARY KEY,
    ts              TEXT NOT NULL,
    author          TEXT NOT NULL,
    body            TEXT NOT NULL,
    line            INTEGER NOT NULL DEFAULT 0,
    msg_length      INTEGER NOT NULL DEFAULT 0,
    word_count      INTEGER NOT NULL DEFAULT 0,
    emoji_count     INTEGER NOT NULL DEFAULT 0,
    has_emoji       INTEGER NOT NULL DEFAULT 0,
    is_question     INTEGER NOT NULL DEFAULT 0,
    is_meetup       INTEGER NOT NULL DEFAULT 0,
    is_media        INTEGER NOT NULL DEFAULT 0,
    response_sec    REAL,
    gap_sec         REAL,
    hometown        INTEGER NOT NULL DEFAULT 0,
    tech_background INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_author ON messages(author);
CREATE INDEX IF NOT EXISTS idx_messages_ts ON messages(ts);
`

type DB struct {
	db *sql.DB
}

func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

// ReplaceAll swaps the messages table content for recs in one transaction,
// so readers never observe a half-written export.
func (d *DB) ReplaceAll(recs []feature.Record) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (ts, author, body, line, msg_length, word_count,
		    emoji_count, has_emoji, is_question, is_meetup, is_media,
		    response_sec, gap_sec, hometown, tech_background)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		_, err := stmt.Exec(
			r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			r.Author,
			r.Body,
			r.Line,
			r.Length,
			r.WordCount,
			r.EmojiCount,
			boolInt(r.HasEmoji),
			boolInt(r.IsQuestion),
			boolInt(r.IsMeetup),
			boolInt(r.IsMedia),
			nullable(r.ResponseSec),
			nullable(r.GapSec),
			boolInt(r.Hometown),
			boolInt(r.Technical),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

func (d *DB) AuthorCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(DISTINCT author) FROM messages").Scan(&n)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
