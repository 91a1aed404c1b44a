package reconcile

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Verdict messages.
const (
	MessageZeroDiff = "Zero differences in counts and control sums."
	MessageDiff     = "Non-zero differences found."
)

// Aggregates are the counts and control sums of one side.
type Aggregates struct {
	// Counts maps an entity key to its row count.
	Counts map[string]int64

	// Controls maps a control name to a monetary sum.
	Controls map[string]decimal.Decimal
}

// NewAggregates returns empty, non-nil aggregates.
func NewAggregates() Aggregates {
	return Aggregates{
		Counts:   make(map[string]int64),
		Controls: make(map[string]decimal.Decimal),
	}
}

// controlsKey holds the control sums in the JSON form. Counts sit next to it,
// one field per entity key.
const controlsKey = "controls"

// MarshalJSON renders counts as top-level fields and controls as plain JSON
// numbers under "controls", all keys sorted.
func (a Aggregates) MarshalJSON() ([]byte, error) {
	controls := make(map[string]json.Number, len(a.Controls))
	for k, v := range a.Controls {
		controls[k] = json.Number(v.String())
	}
	out := make(map[string]any, len(a.Counts)+1)
	for k, v := range a.Counts {
		if k == controlsKey {
			return nil, fmt.Errorf("count key %q collides with the controls field", k)
		}
		out[k] = v
	}
	out[controlsKey] = controls
	return json.Marshal(out)
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (a *Aggregates) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = NewAggregates()
	for k, v := range raw {
		if k == controlsKey {
			if err := json.Unmarshal(v, &a.Controls); err != nil {
				return fmt.Errorf("failed to decode controls: %w", err)
			}
			continue
		}
		var n int64
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("failed to decode count %q: %w", k, err)
		}
		a.Counts[k] = n
	}
	if a.Controls == nil {
		a.Controls = make(map[string]decimal.Decimal)
	}
	return nil
}

// CountKeys returns the count keys in lexical order.
func (a Aggregates) CountKeys() []string {
	return sortedKeys(a.Counts)
}

// ControlKeys returns the control names in lexical order.
func (a Aggregates) ControlKeys() []string {
	return sortedKeys(a.Controls)
}

// Integrity is the verdict of a report.
type Integrity struct {
	// ZeroDiff is true iff every count and control diff is exactly zero.
	ZeroDiff bool `json:"zeroDiff"`

	// Message is a human readable verdict.
	Message string `json:"message"`

	// Mismatches lists the keys with a non-zero diff.
	Mismatches []string `json:"mismatches,omitempty"`
}

// Report is the outcome of a reconciliation.
type Report struct {
	GeneratedAt time.Time  `json:"generatedAt"`
	Source      Aggregates `json:"source"`
	Target      Aggregates `json:"target"`
	Diff        Aggregates `json:"diff"`
	Integrity   Integrity  `json:"integrity"`
}

// Spec defines a reconciliation: what to compare and how long to cache it.
type Spec struct {
	// Adapter loads both sides.
	Adapter Adapter

	// CacheTTL is the time-to-live of cached aggregates.
	// If zero, caching is disabled.
	CacheTTL time.Duration
}

// CacheKey returns the key of the spec in the cache store.
func (s *Spec) CacheKey() string {
	return s.Adapter.Name()
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
