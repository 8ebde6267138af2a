// Package pipeline sequences the parse, clean, and feature stages with
// checkpoint semantics: a stage whose artifact already exists is loaded
// instead of recomputed, unless an earlier stage ran, in which case every
// later stage runs too. Deleting one artifact therefore forces recomputation
// of exactly that stage and everything after it, never anything upstream.
package pipeline

import (
	"fmt"

	"github.com/bashv/wa-pipeline/internal/clean"
	"github.com/bashv/wa-pipeline/internal/feature"
	"github.com/bashv/wa-pipeline/internal/logger"
	"github.com/bashv/wa-pipeline/internal/parse"
	"github.com/bashv/wa-pipeline/internal/roster"
	"github.com/bashv/wa-pipeline/internal/table"
)

// Default artifact keys. Overridable per stage through Config.
const (
	KeyMessages = "messages.csv"
	KeyCleaned  = "cleaned.csv"
	KeyFeatures = "features.csv"
)

// Config wires one pipeline run.
type Config struct {
	RawPath string
	Roster  *roster.Roster
	Parse   parse.Options
	Feature feature.Config

	// Artifact keys; empty fields fall back to the Key* defaults.
	MessagesKey string
	CleanedKey  string
	FeaturesKey string
}

func (c *Config) keys() (string, string, string) {
	m, cl, f := c.MessagesKey, c.CleanedKey, c.FeaturesKey
	if m == "" {
		m = KeyMessages
	}
	if cl == "" {
		cl = KeyCleaned
	}
	if f == "" {
		f = KeyFeatures
	}
	return m, cl, f
}

// Result reports what a run did: per-stage skip flags, the stage reports for
// stages that executed, and the final feature table.
type Result struct {
	ParseSkipped bool
	ParseReport  parse.Report

	CleanSkipped bool
	CleanReport  clean.Report

	FeaturesSkipped bool

	Records []feature.Record
}

// Stages returns a short human summary, one line per stage.
func (r *Result) Stages() []string {
	status := func(skipped bool, detail string) string {
		if skipped {
			return "skipped (artifact exists)"
		}
		return detail
	}
	return []string{
		"parse:    " + status(r.ParseSkipped, r.ParseReport.String()),
		"clean:    " + status(r.CleanSkipped, r.CleanReport.String()),
		"features: " + status(r.FeaturesSkipped, fmt.Sprintf("records=%d", len(r.Records))),
	}
}

// Run executes the pipeline against the store. Any stage failure halts the
// run, wrapped with the failing stage's name.
func Run(st Store, cfg Config) (*Result, error) {
	msgKey, cleanKey, featKey := cfg.keys()
	res := &Result{}
	ran := false

	// parse
	var msgs []parse.Message
	if ok, err := st.Exists(msgKey); err != nil {
		return nil, fmt.Errorf("parse: check %s: %w", msgKey, err)
	} else if ok {
		data, err := st.Read(msgKey)
		if err != nil {
			return nil, fmt.Errorf("parse: load %s: %w", msgKey, err)
		}
		if msgs, err = table.DecodeMessages(data); err != nil {
			return nil, fmt.Errorf("parse: load %s: %w", msgKey, err)
		}
		res.ParseSkipped = true
		logger.L.Info("parse: artifact exists, skipping", "key", msgKey, "records", len(msgs))
	} else {
		parsed, rep, err := parse.ParseFile(cfg.RawPath, cfg.Parse)
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		msgs = parsed
		res.ParseReport = rep
		data, err := table.EncodeMessages(msgs)
		if err != nil {
			return nil, fmt.Errorf("parse: encode %s: %w", msgKey, err)
		}
		if err := st.Write(msgKey, data); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		ran = true
		logger.L.Info("parse: done", "key", msgKey, "records", rep.Records, "junk", rep.Junk)
	}

	// clean
	var cleaned []parse.Message
	if ok, err := exists(st, cleanKey, ran); err != nil {
		return nil, fmt.Errorf("clean: check %s: %w", cleanKey, err)
	} else if ok {
		data, err := st.Read(cleanKey)
		if err != nil {
			return nil, fmt.Errorf("clean: load %s: %w", cleanKey, err)
		}
		if cleaned, err = table.DecodeMessages(data); err != nil {
			return nil, fmt.Errorf("clean: load %s: %w", cleanKey, err)
		}
		res.CleanSkipped = true
		logger.L.Info("clean: artifact exists, skipping", "key", cleanKey, "records", len(cleaned))
	} else {
		var rep clean.Report
		cleaned, rep = clean.Clean(msgs, cfg.Roster)
		res.CleanReport = rep
		data, err := table.EncodeMessages(cleaned)
		if err != nil {
			return nil, fmt.Errorf("clean: encode %s: %w", cleanKey, err)
		}
		if err := st.Write(cleanKey, data); err != nil {
			return nil, fmt.Errorf("clean: %w", err)
		}
		ran = true
		logger.L.Info("clean: done", "key", cleanKey, "kept", rep.Kept, "excluded", rep.Total())
	}

	// features
	if ok, err := exists(st, featKey, ran); err != nil {
		return nil, fmt.Errorf("features: check %s: %w", featKey, err)
	} else if ok {
		data, err := st.Read(featKey)
		if err != nil {
			return nil, fmt.Errorf("features: load %s: %w", featKey, err)
		}
		if res.Records, err = table.DecodeRecords(data); err != nil {
			return nil, fmt.Errorf("features: load %s: %w", featKey, err)
		}
		res.FeaturesSkipped = true
		logger.L.Info("features: artifact exists, skipping", "key", featKey, "records", len(res.Records))
	} else {
		recs, err := feature.Derive(cleaned, cfg.Roster, cfg.Feature)
		if err != nil {
			return nil, fmt.Errorf("features: %w", err)
		}
		res.Records = recs
		data, err := table.EncodeRecords(recs)
		if err != nil {
			return nil, fmt.Errorf("features: encode %s: %w", featKey, err)
		}
		if err := st.Write(featKey, data); err != nil {
			return nil, fmt.Errorf("features: %w", err)
		}
		logger.L.Info("features: done", "key", featKey, "records", len(recs))
	}

	return res, nil
}

// exists reports whether the stage may be skipped. A stage is never skipped
// once an upstream stage has run, even if its artifact is present.
func exists(st Store, key string, upstreamRan bool) (bool, error) {
	if upstreamRan {
		return false, nil
	}
	return st.Exists(key)
}
