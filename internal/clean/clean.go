// Package clean applies the data-quality rules that turn parsed messages
// into the validated stream the feature stage consumes. It is pure: the same
// input always yields the same output and the same exclusion counts.
package clean

import (
	"fmt"
	"strings"

	"github.com/bashv/wa-pipeline/internal/parse"
	"github.com/bashv/wa-pipeline/internal/roster"
)

// Rule identifies the exclusion rule that removed a record. Rules are
// checked in a fixed order and the first match wins, so every exclusion is
// attributable to exactly one rule.
type Rule string

const (
	RuleSystemEvent   Rule = "system_event"
	RuleBadTimestamp  Rule = "bad_timestamp"
	RuleUnknownAuthor Rule = "unknown_author"
	RuleEmptyBody     Rule = "empty_body"
)

// ruleOrder is the evaluation order. Keep in sync with the constants above.
var ruleOrder = []Rule{RuleSystemEvent, RuleBadTimestamp, RuleUnknownAuthor, RuleEmptyBody}

// Report counts what cleaning kept and dropped.
type Report struct {
	Input    int
	Kept     int
	Excluded map[Rule]int
}

// Total returns the number of excluded records across all rules.
func (r Report) Total() int {
	n := 0
	for _, c := range r.Excluded {
		n += c
	}
	return n
}

func (r Report) String() string {
	parts := make([]string, 0, len(ruleOrder)+2)
	parts = append(parts, fmt.Sprintf("input=%d kept=%d", r.Input, r.Kept))
	for _, rule := range ruleOrder {
		if c := r.Excluded[rule]; c > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", rule, c))
		}
	}
	return strings.Join(parts, " ")
}

// Clean filters msgs down to records that carry a valid timestamp, a known
// author (normalized to its canonical roster name), and a non-empty body.
// Excluded records are counted per rule, never silently dropped.
func Clean(msgs []parse.Message, ros *roster.Roster) ([]parse.Message, Report) {
	rep := Report{
		Input:    len(msgs),
		Excluded: make(map[Rule]int),
	}

	out := make([]parse.Message, 0, len(msgs))
	for _, m := range msgs {
		if rule, ok := exclude(m, ros); ok {
			rep.Excluded[rule]++
			continue
		}
		// normalization happened during the author check; redo the lookup
		// here so the kept record carries the canonical name
		m.Author, _ = ros.Canonical(m.Author)
		m.Body = strings.TrimSpace(m.Body)
		out = append(out, m)
	}
	rep.Kept = len(out)
	return out, rep
}

func exclude(m parse.Message, ros *roster.Roster) (Rule, bool) {
	if m.System {
		return RuleSystemEvent, true
	}
	if m.Timestamp.IsZero() {
		return RuleBadTimestamp, true
	}
	if _, ok := ros.Canonical(m.Author); !ok {
		return RuleUnknownAuthor, true
	}
	if strings.TrimSpace(m.Body) == "" {
		return RuleEmptyBody, true
	}
	return "", false
}
