// Package table reads and writes the row-oriented artifacts the stages hand
// to each other. Every artifact is a CSV file with a fixed header; readers
// resolve columns strictly by name so the column order is free to evolve.
package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/bashv/wa-pipeline/internal/feature"
	"github.com/bashv/wa-pipeline/internal/parse"
)

var messageHeader = []string{"timestamp", "author", "message", "is_system", "line"}

var recordHeader = []string{
	"timestamp", "author", "message", "line",
	"msg_length", "word_count", "emoji_count", "has_emoji",
	"is_question", "is_meetup", "is_media",
	"response_sec", "gap_sec",
	"hometown", "tech_background",
}

// EncodeMessages serializes a parsed or cleaned message stream.
func EncodeMessages(msgs []parse.Message) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(messageHeader); err != nil {
		return nil, err
	}
	for _, m := range msgs {
		row := []string{
			formatTime(m.Timestamp),
			m.Author,
			m.Body,
			formatBool(m.System),
			strconv.Itoa(m.Line),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeMessages reads a message artifact back.
func DecodeMessages(data []byte) ([]parse.Message, error) {
	rows, idx, err := readAll(data, messageHeader)
	if err != nil {
		return nil, err
	}
	msgs := make([]parse.Message, 0, len(rows))
	for i, row := range rows {
		ts, err := parseTime(row[idx["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		line, err := strconv.Atoi(row[idx["line"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: line: %w", i+1, err)
		}
		msgs = append(msgs, parse.Message{
			Timestamp: ts,
			Author:    row[idx["author"]],
			Body:      row[idx["message"]],
			System:    row[idx["is_system"]] == "1",
			Line:      line,
		})
	}
	return msgs, nil
}

// EncodeRecords serializes the feature table.
func EncodeRecords(recs []feature.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(recordHeader); err != nil {
		return nil, err
	}
	for _, r := range recs {
		row := []string{
			formatTime(r.Timestamp),
			r.Author,
			r.Body,
			strconv.Itoa(r.Line),
			strconv.Itoa(r.Length),
			strconv.Itoa(r.WordCount),
			strconv.Itoa(r.EmojiCount),
			formatBool(r.HasEmoji),
			formatBool(r.IsQuestion),
			formatBool(r.IsMeetup),
			formatBool(r.IsMedia),
			formatNullable(r.ResponseSec),
			formatNullable(r.GapSec),
			formatBool(r.Hometown),
			formatBool(r.Technical),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeRecords reads a feature artifact back.
func DecodeRecords(data []byte) ([]feature.Record, error) {
	rows, idx, err := readAll(data, recordHeader)
	if err != nil {
		return nil, err
	}
	recs := make([]feature.Record, 0, len(rows))
	for i, row := range rows {
		ts, err := parseTime(row[idx["timestamp"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rec := feature.Record{
			Timestamp:  ts,
			Author:     row[idx["author"]],
			Body:       row[idx["message"]],
			HasEmoji:   row[idx["has_emoji"]] == "1",
			IsQuestion: row[idx["is_question"]] == "1",
			IsMeetup:   row[idx["is_meetup"]] == "1",
			IsMedia:    row[idx["is_media"]] == "1",
			Hometown:   row[idx["hometown"]] == "1",
			Technical:  row[idx["tech_background"]] == "1",
		}
		for name, dst := range map[string]*int{
			"line":        &rec.Line,
			"msg_length":  &rec.Length,
			"word_count":  &rec.WordCount,
			"emoji_count": &rec.EmojiCount,
		} {
			v, err := strconv.Atoi(row[idx[name]])
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", i+1, name, err)
			}
			*dst = v
		}
		if rec.ResponseSec, err = parseNullable(row[idx["response_sec"]]); err != nil {
			return nil, fmt.Errorf("row %d: response_sec: %w", i+1, err)
		}
		if rec.GapSec, err = parseNullable(row[idx["gap_sec"]]); err != nil {
			return nil, fmt.Errorf("row %d: gap_sec: %w", i+1, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// readAll parses the CSV and maps the required column names to indices.
func readAll(data []byte, required []string) ([][]string, map[string]int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("artifact has no header row")
	}
	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[name] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, nil, fmt.Errorf("artifact missing column %q", name)
		}
	}
	return rows[1:], idx, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseNullable(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
