package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// mockAdapter is a simple test adapter
type mockAdapter struct {
	name        string
	keys        []string
	controls    []string
	sourceFunc  func(context.Context) (Aggregates, error)
	targetFunc  func(context.Context, *gorm.DB) (Aggregates, error)
	targetLoads atomic.Int32
}

func (m *mockAdapter) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func (m *mockAdapter) Keys() []string     { return m.keys }
func (m *mockAdapter) Controls() []string { return m.controls }

func (m *mockAdapter) LoadSource(ctx context.Context) (Aggregates, error) {
	return m.sourceFunc(ctx)
}

func (m *mockAdapter) LoadTarget(ctx context.Context, db *gorm.DB) (Aggregates, error) {
	m.targetLoads.Add(1)
	return m.targetFunc(ctx, db)
}

func aggregates(counts map[string]int64, controls map[string]string) Aggregates {
	a := NewAggregates()
	for k, v := range counts {
		a.Counts[k] = v
	}
	for k, v := range controls {
		a.Controls[k] = decimal.RequireFromString(v)
	}
	return a
}

func fixedAdapter(source, target Aggregates) *mockAdapter {
	return &mockAdapter{
		keys:       []string{"movimientos", "productos"},
		controls:   []string{"movimientosTotal"},
		sourceFunc: func(context.Context) (Aggregates, error) { return source, nil },
		targetFunc: func(context.Context, *gorm.DB) (Aggregates, error) { return target, nil },
	}
}

func TestCompare_ZeroDiff(t *testing.T) {
	side := aggregates(map[string]int64{"movimientos": 2, "productos": 1}, map[string]string{"movimientosTotal": "150000"})
	report := Compare(fixedAdapter(side, side), side, side, time.Unix(0, 0))

	assert.True(t, report.Integrity.ZeroDiff)
	assert.Equal(t, MessageZeroDiff, report.Integrity.Message)
	assert.Empty(t, report.Integrity.Mismatches)
	assert.True(t, report.Diff.Controls["movimientosTotal"].IsZero())
	assert.Equal(t, int64(0), report.Diff.Counts["movimientos"])
}

func TestCompare_ControlMismatch(t *testing.T) {
	source := aggregates(map[string]int64{"movimientos": 2}, map[string]string{"movimientosTotal": "150000"})
	target := aggregates(map[string]int64{"movimientos": 2}, map[string]string{"movimientosTotal": "150001"})
	report := Compare(fixedAdapter(source, target), source, target, time.Now())

	assert.False(t, report.Integrity.ZeroDiff)
	assert.Equal(t, MessageDiff, report.Integrity.Message)
	assert.Equal(t, []string{"controls.movimientosTotal"}, report.Integrity.Mismatches)
	assert.Equal(t, "1", report.Diff.Controls["movimientosTotal"].String())
}

func TestCompare_RoundsControls(t *testing.T) {
	source := aggregates(nil, map[string]string{"movimientosTotal": "10.001"})
	target := aggregates(nil, map[string]string{"movimientosTotal": "10.004"})
	report := Compare(fixedAdapter(source, target), source, target, time.Now())

	assert.True(t, report.Diff.Controls["movimientosTotal"].IsZero())
	assert.True(t, report.Integrity.ZeroDiff)
}

func TestCompare_MissingKeysAreZero(t *testing.T) {
	source := aggregates(map[string]int64{"productos": 3}, nil)
	target := aggregates(map[string]int64{"extra": 1}, nil)
	report := Compare(fixedAdapter(source, target), source, target, time.Now())

	assert.Equal(t, int64(-3), report.Diff.Counts["productos"])
	assert.Equal(t, int64(0), report.Diff.Counts["movimientos"])
	assert.Equal(t, int64(1), report.Diff.Counts["extra"])
	assert.Contains(t, report.Target.Controls, "movimientosTotal")
	assert.Equal(t, []string{"counts.extra", "counts.productos"}, report.Integrity.Mismatches)
}

func TestReport_JSON(t *testing.T) {
	source := aggregates(map[string]int64{"movimientos": 2}, map[string]string{"movimientosTotal": "150000.50"})
	report := Compare(fixedAdapter(source, source), source, source, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"controls":{"movimientosTotal":150000.5}`)
	assert.Contains(t, string(data), `"integrity":{"zeroDiff":true`)

	var back Report
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, decimal.RequireFromString("150000.5").Equal(back.Source.Controls["movimientosTotal"]))
	assert.Equal(t, int64(2), back.Target.Counts["movimientos"])
}

func TestReport_JSONCountsAreFlat(t *testing.T) {
	source := aggregates(map[string]int64{"movimientos": 2, "usuarios": 1}, map[string]string{"movimientosTotal": "10"})
	target := aggregates(map[string]int64{"movimientos": 1, "usuarios": 1}, map[string]string{"movimientosTotal": "10"})
	report := Compare(fixedAdapter(source, target), source, target, time.Now())

	data, err := json.Marshal(report.Diff)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc, "counts")
	assert.Equal(t, float64(-1), doc["movimientos"])
	assert.Equal(t, float64(0), doc["usuarios"])
	assert.Equal(t, map[string]any{"movimientosTotal": float64(0)}, doc["controls"])

	_, err = json.Marshal(Aggregates{Counts: map[string]int64{"controls": 1}})
	assert.Error(t, err)
}

// TestBuildCache_ErrorHandling tests that BuildCache correctly handles errors from adapter load functions.
func TestBuildCache_ErrorHandling(t *testing.T) {
	tests := []struct {
		name      string
		sourceErr error
		targetErr error
		expectErr string
	}{
		{
			name:      "Source load error",
			sourceErr: fmt.Errorf("source error"),
			expectErr: "source error",
		},
		{
			name:      "Target load error",
			targetErr: fmt.Errorf("target error"),
			expectErr: "target error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := &mockAdapter{
				sourceFunc: func(context.Context) (Aggregates, error) {
					return NewAggregates(), tt.sourceErr
				},
				targetFunc: func(context.Context, *gorm.DB) (Aggregates, error) {
					return NewAggregates(), tt.targetErr
				},
			}

			_, err := BuildCache(context.Background(), &Spec{Adapter: adapter}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}

func TestVerifyCached(t *testing.T) {
	side := aggregates(map[string]int64{"productos": 1}, nil)
	adapter := fixedAdapter(side, side)
	adapter.name = "cached-test"
	spec := &Spec{Adapter: adapter, CacheTTL: time.Minute}
	defer InvalidateCache(spec)

	for i := 0; i < 3; i++ {
		report, err := VerifyCached(context.Background(), spec, nil)
		require.NoError(t, err)
		assert.True(t, report.Integrity.ZeroDiff)
	}
	assert.Equal(t, int32(1), adapter.targetLoads.Load())

	InvalidateCache(spec)
	_, err := VerifyCached(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), adapter.targetLoads.Load())
}

func TestVerify_AlwaysFresh(t *testing.T) {
	side := aggregates(nil, nil)
	adapter := fixedAdapter(side, side)
	spec := &Spec{Adapter: adapter}

	for i := 0; i < 2; i++ {
		_, err := Verify(context.Background(), spec, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), adapter.targetLoads.Load())
}

func TestReconcileCache_IsExpired(t *testing.T) {
	assert.True(t, (&ReconcileCache{}).IsExpired())
	assert.False(t, (&ReconcileCache{Built: time.Now(), TTL: time.Minute}).IsExpired())
	assert.True(t, (&ReconcileCache{Built: time.Now().Add(-2 * time.Minute), TTL: time.Minute}).IsExpired())
}
