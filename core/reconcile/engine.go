package reconcile

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ControlPlaces is the rounding applied to control diffs before comparison.
const ControlPlaces = 2

// Verify loads both sides fresh and compares them.
func Verify(ctx context.Context, spec *Spec, db *gorm.DB) (*Report, error) {
	cache, err := BuildCache(ctx, spec, db)
	if err != nil {
		return nil, err
	}
	return Compare(spec.Adapter, cache.Source, cache.Target, cache.Built), nil
}

// VerifyCached compares the cached sides, rebuilding them once the TTL expires.
func VerifyCached(ctx context.Context, spec *Spec, db *gorm.DB) (*Report, error) {
	if spec.CacheTTL <= 0 {
		return Verify(ctx, spec, db)
	}
	cache, err := GetOrBuildCache(ctx, spec, db)
	if err != nil {
		return nil, err
	}
	return Compare(spec.Adapter, cache.Source, cache.Target, cache.Built), nil
}

// Compare builds a report. Every key and control of the adapter is present on
// all three sides; diff = target - source, controls rounded to ControlPlaces.
func Compare(adapter Adapter, source, target Aggregates, generatedAt time.Time) *Report {
	report := &Report{
		GeneratedAt: generatedAt.UTC(),
		Source:      NewAggregates(),
		Target:      NewAggregates(),
		Diff:        NewAggregates(),
	}

	for _, key := range unionKeys(adapter.Keys(), source.Counts, target.Counts) {
		s, t := source.Counts[key], target.Counts[key]
		report.Source.Counts[key] = s
		report.Target.Counts[key] = t
		report.Diff.Counts[key] = t - s
		if t != s {
			report.Integrity.Mismatches = append(report.Integrity.Mismatches, "counts."+key)
		}
	}

	for _, key := range unionKeys(adapter.Controls(), source.Controls, target.Controls) {
		s, t := source.Controls[key], target.Controls[key]
		diff := t.Sub(s).Round(ControlPlaces)
		report.Source.Controls[key] = s
		report.Target.Controls[key] = t
		report.Diff.Controls[key] = diff
		if !diff.Equal(decimal.Zero) {
			report.Integrity.Mismatches = append(report.Integrity.Mismatches, "controls."+key)
		}
	}

	report.Integrity.ZeroDiff = len(report.Integrity.Mismatches) == 0
	if report.Integrity.ZeroDiff {
		report.Integrity.Message = MessageZeroDiff
	} else {
		report.Integrity.Message = MessageDiff
	}
	return report
}

// unionKeys merges the declared keys with any extra key found on either side, sorted.
func unionKeys[V any](declared []string, a, b map[string]V) []string {
	union := make(map[string]struct{}, len(declared))
	for _, k := range declared {
		union[k] = struct{}{}
	}
	for k := range a {
		union[k] = struct{}{}
	}
	for k := range b {
		union[k] = struct{}{}
	}
	return sortedKeys(union)
}
