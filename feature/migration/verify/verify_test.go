package verify

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"accounting-sync/core/reconcile"
	"accounting-sync/core/storage/mocks"
	"accounting-sync/feature/migration/batch"
	"accounting-sync/feature/migration/models"
	"accounting-sync/feature/migration/payload"

	"github.com/minio/minio-go/v7"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func samplePayload() *payload.Payload {
	return &payload.Payload{
		Products: []payload.Product{{ID: "P1", Sku: "SKU-1"}},
		Movements: []payload.Movement{
			{ID: "M1", Periodo: "2025-01", Total: decimal.NewFromInt(100000), ProductoID: "P1"},
			{ID: "M2", Periodo: "2025-01", Total: decimal.NewFromInt(50000)},
		},
		CashFlow: []payload.CashFlowEntry{{ID: "F1", Periodo: "2025-01", Monto: decimal.NewFromInt(1000)}},
	}
}

func mismatchReport(t *testing.T) *reconcile.Report {
	t.Helper()
	adapter := FromPayload(samplePayload())
	source, err := adapter.LoadSource(context.Background())
	require.NoError(t, err)

	target := reconcile.NewAggregates()
	for k, v := range source.Counts {
		target.Counts[k] = v
	}
	target.Controls[ControlMovementsTotal] = decimal.NewFromInt(150001)
	target.Controls[ControlCashFlowAmount] = decimal.NewFromInt(1000)

	return reconcile.Compare(adapter, source, target, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestReconciliationExactness(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	p := samplePayload()

	_, err := batch.NewController(db, nil, zap.NewNop(), batch.Options{}).Run(ctx, p)
	require.NoError(t, err)

	spec := &reconcile.Spec{Adapter: FromPayload(p)}
	report, err := reconcile.Verify(ctx, spec, db)
	require.NoError(t, err)
	assert.True(t, report.Integrity.ZeroDiff, report.Integrity.Mismatches)
	assert.Equal(t, "150000", report.Source.Controls[ControlMovementsTotal].String())
	assert.True(t, report.Target.Controls[ControlMovementsTotal].Equal(decimal.NewFromInt(150000)))
	assert.True(t, report.Diff.Controls[ControlMovementsTotal].IsZero())
	assert.Len(t, report.Source.Counts, 15)

	require.NoError(t, db.Model(&models.Movement{}).Where("source_id = ?", "M2").
		Update("total", decimal.NewFromInt(50001)).Error)

	report, err = reconcile.Verify(ctx, spec, db)
	require.NoError(t, err)
	assert.False(t, report.Integrity.ZeroDiff)
	assert.Equal(t, "1", report.Diff.Controls[ControlMovementsTotal].String())
	assert.Equal(t, []string{"controls." + ControlMovementsTotal}, report.Integrity.Mismatches)
}

func TestLoadTarget_EmptyTables(t *testing.T) {
	db := setupDB(t)
	agg, err := FromPayload(&payload.Payload{}).LoadTarget(context.Background(), db)
	require.NoError(t, err)
	assert.True(t, agg.Controls[ControlMovementsTotal].IsZero())
	assert.Equal(t, int64(0), agg.Counts["usuarios"])
}

func TestDroppedRowsShowUpAsDiff(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	p := samplePayload()
	p.JournalLines = []payload.JournalLine{{ID: "L1", AsientoID: "missing", CuentaID: "missing"}}

	_, err := batch.NewController(db, nil, zap.NewNop(), batch.Options{}).Run(ctx, p)
	require.NoError(t, err)

	report, err := reconcile.Verify(ctx, &reconcile.Spec{Adapter: FromPayload(p)}, db)
	require.NoError(t, err)
	assert.False(t, report.Integrity.ZeroDiff)
	assert.Equal(t, int64(-1), report.Diff.Counts["asientoLineas"])
}

func TestRender_Golden(t *testing.T) {
	data, err := Render(mismatchReport(t))
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "report", data)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "report.json")
	require.NoError(t, WriteFile(path, mismatchReport(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"zeroDiff": false`)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, mismatchReport(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Equal(t, []string{"kind", "key", "source", "target", "diff"}, rows[0])

	var found bool
	for _, r := range rows {
		if len(r) == 5 && r[1] == ControlMovementsTotal {
			found = true
			assert.Equal(t, "1", r[4])
		}
	}
	assert.True(t, found)
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	require.NoError(t, ExportXLSX(path, mismatchReport(t)))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("BucketExists", ctx, "reports").Return(true, nil)
	client.On("PutObject", ctx, "reports", "reconciliation/latest.json", mock.Anything, mock.AnythingOfType("int64"),
		minio.PutObjectOptions{ContentType: contentTypeJSON}).
		Run(func(args mock.Arguments) {
			body, _ := io.ReadAll(args.Get(3).(io.Reader))
			assert.True(t, strings.HasPrefix(string(body), "{"))
		}).
		Return(minio.UploadInfo{}, nil)

	require.NoError(t, Upload(ctx, client, "reports", "reconciliation/latest.json", mismatchReport(t)))
	client.AssertExpectations(t)
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	row, err := Save(ctx, db, mismatchReport(t))
	require.NoError(t, err)
	assert.NotZero(t, row.ID)
	assert.False(t, row.ZeroDiff)

	var stored models.ReconciliationReport
	require.NoError(t, db.First(&stored).Error)
	assert.Contains(t, string(stored.Body), `"movimientosTotal":150001`)
}
