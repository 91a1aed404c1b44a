package apply

import "sort"

// Kind classifies what happened to one source row.
type Kind string

const (
	Applied Kind = "applied"
	Skipped Kind = "skipped"
	Dropped Kind = "dropped"
)

// ReasonUnchanged is the skip reason of rows whose ledger checksum matched.
const ReasonUnchanged = "unchanged"

// Outcome is the result of one row.
type Outcome struct {
	Kind   Kind
	Reason string
}

// EntitySummary aggregates the outcomes of one entity.
type EntitySummary struct {
	Applied int            `json:"applied"`
	Skipped int            `json:"skipped"`
	Dropped int            `json:"dropped"`
	Reasons map[string]int `json:"reasons,omitempty"`
}

// Record adds one outcome.
func (s *EntitySummary) Record(o Outcome) {
	switch o.Kind {
	case Applied:
		s.Applied++
	case Skipped:
		s.Skipped++
	case Dropped:
		s.Dropped++
	}
	if o.Reason == "" {
		return
	}
	if s.Reasons == nil {
		s.Reasons = make(map[string]int)
	}
	s.Reasons[o.Reason]++
}

// Total is the number of rows seen.
func (s EntitySummary) Total() int {
	return s.Applied + s.Skipped + s.Dropped
}

// Summary maps entity name to its outcomes.
type Summary map[string]EntitySummary

// Entities returns the entity names in lexical order.
func (s Summary) Entities() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Totals sums every entity.
func (s Summary) Totals() EntitySummary {
	var t EntitySummary
	for _, e := range s {
		t.Applied += e.Applied
		t.Skipped += e.Skipped
		t.Dropped += e.Dropped
	}
	return t
}
