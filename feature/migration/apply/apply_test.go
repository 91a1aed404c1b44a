package apply

import (
	"context"
	"errors"
	"testing"

	"accounting-sync/feature/migration/content"
	"accounting-sync/feature/migration/errs"
	"accounting-sync/feature/migration/ledger"
	"accounting-sync/feature/migration/models"
	"accounting-sync/feature/migration/payload"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
		Users:          []payload.User{{ID: "U1", Email: "ana@example.com", Nombre: "Ana"}},
		Sessions:       []payload.Session{{Token: "tok-1", UserID: "U1"}},
		Accounts:       []payload.Account{{ID: "A1", Codigo: "1101", Nombre: "Caja"}},
		Counterparties: []payload.Counterparty{{ID: "T1", Rut: "76.000.000-0"}},
		Products:       []payload.Product{{ID: "P1", Sku: "SKU-1", Nombre: "Widget", Stock: decimal.NewFromInt(5)}},
		Movements: []payload.Movement{
			{ID: "M1", Fecha: "2025-01-10", Periodo: "2025-01", Total: decimal.NewFromInt(100000), ProductoID: "P1", TerceroID: "T1"},
			{ID: "M2", Fecha: "2025-01-11", Periodo: "2025-01", Total: decimal.NewFromInt(50000), ProductoID: "ghost"},
		},
		CashFlow:       []payload.CashFlowEntry{{ID: "F1", Periodo: "2025-01", Monto: decimal.NewFromInt(1000), CuentaID: "1101"}},
		Periods:        []payload.Period{{Key: "2025-01", Anio: 2025, Mes: 1}},
		JournalEntries: []payload.JournalEntry{{ID: "E1", Periodo: "2025-01", CreadoPor: "ana@example.com"}},
		JournalLines: []payload.JournalLine{
			{ID: "L1", AsientoID: "E1", CuentaID: "A1", Debe: decimal.NewFromInt(10)},
			{ID: "L2", AsientoID: "E1", CuentaID: "1101", Haber: decimal.NewFromInt(10)},
		},
		InventoryLots:   []payload.InventoryLot{{ID: "LOT1", ProductID: "SKU-1", Qty: decimal.NewFromInt(5)}},
		KardexMovements: []payload.KardexMovement{{ID: "K1", ProductID: "P1", Type: "IN", Qty: decimal.NewFromInt(5), LotID: "LOT1"}},
		FiscalDocuments: []payload.FiscalDocument{{TipoDte: payload.DocRCVVenta, Folio: "10", Metadata: `{"a":1}`}},
		Reconciliations: []payload.Reconciliation{{ID: "C1", Periodo: "2025-01"}},
		TaxConfigs:      []payload.TaxConfig{{Year: 2025, Regime: "14D8"}},
	}
}

func newRun(tx *gorm.DB, p *payload.Payload, batchID string) *RunContext {
	return &RunContext{
		Tx:        tx,
		Payload:   p,
		Ledger:    ledger.New(),
		Addressor: content.NewAddressor(false),
		BatchID:   batchID,
		IDs:       NewIDMap(),
		Logger:    zap.NewNop(),
	}
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestEngine_FirstRun(t *testing.T) {
	db := setupDB(t)
	rc := newRun(db, samplePayload(), "b1")

	summary, err := NewEngine().Run(context.Background(), rc)
	require.NoError(t, err)

	assert.Equal(t, 1, summary[EntityUsers].Applied)
	assert.Equal(t, 2, summary[EntityMovements].Applied)
	assert.Equal(t, 2, summary[EntityJournalLines].Applied)
	assert.Equal(t, 1, summary[EntityKardex].Applied)
	assert.Equal(t, 0, summary.Totals().Dropped)
	assert.Len(t, summary, 15)

	var m1, m2 models.Movement
	require.NoError(t, db.Where("source_id = ?", "M1").Take(&m1).Error)
	require.NoError(t, db.Where("source_id = ?", "M2").Take(&m2).Error)
	require.NotNil(t, m1.ProductoID)
	require.NotNil(t, m1.TerceroID)
	assert.Nil(t, m2.ProductoID, "unknown optional parent becomes null")
	assert.Equal(t, DefaultMovementType, m1.Tipo)

	var flow models.CashFlowEntry
	require.NoError(t, db.Take(&flow).Error)
	require.NotNil(t, flow.CuentaID, "account resolved by codigo")

	var entry models.JournalEntry
	require.NoError(t, db.Take(&entry).Error)
	require.NotNil(t, entry.CreadoPor, "author resolved by email")
	assert.Equal(t, DefaultJournalGloss, entry.Glosa)

	var k models.KardexMovement
	require.NoError(t, db.Take(&k).Error)
	require.NotNil(t, k.LoteID)

	var session models.Session
	require.NoError(t, db.Take(&session).Error)
	assert.NotZero(t, session.UsuarioID)

	var user models.User
	require.NoError(t, db.Take(&user).Error)
	assert.Equal(t, DefaultRole, user.Rol)
}

func TestEngine_UnchangedParentsStillResolve(t *testing.T) {
	db := setupDB(t)
	p := samplePayload()
	_, err := NewEngine().Run(context.Background(), newRun(db, p, "b1"))
	require.NoError(t, err)

	p.JournalLines[0].Descripcion = "edited"
	summary, err := NewEngine().Run(context.Background(), newRun(db, p, "b2"))
	require.NoError(t, err)

	assert.Equal(t, 0, summary[EntityJournalEntries].Applied)
	assert.Equal(t, 1, summary[EntityJournalEntries].Skipped)
	assert.Equal(t, 1, summary[EntityJournalLines].Applied)
	assert.Equal(t, 1, summary[EntityJournalLines].Skipped)
	assert.Equal(t, 0, summary[EntityJournalLines].Dropped)
	assert.Equal(t, 1, summary.Totals().Applied)

	sums, err := ledger.Checksums(context.Background(), db, EntityJournalLines)
	require.NoError(t, err)
	assert.Len(t, sums, 2)
}

func TestEngine_NaturalKeyUpsert(t *testing.T) {
	db := setupDB(t)
	p := &payload.Payload{Users: []payload.User{{Email: "ana@example.com", Nombre: "Ana"}}}
	_, err := NewEngine().Run(context.Background(), newRun(db, p, "b1"))
	require.NoError(t, err)

	p.Users[0].Nombre = "Ana Maria"
	_, err = NewEngine().Run(context.Background(), newRun(db, p, "b2"))
	require.NoError(t, err)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana Maria", users[0].Nombre)
}

func TestEngine_RequiredParentDropped(t *testing.T) {
	db := setupDB(t)
	p := &payload.Payload{
		Accounts:     []payload.Account{{Codigo: "1101"}},
		JournalLines: []payload.JournalLine{{ID: "L1", AsientoID: "missing", CuentaID: "1101"}},
		Sessions:     []payload.Session{{Token: "t", UserID: "nobody"}},
	}
	summary, err := NewEngine().Run(context.Background(), newRun(db, p, "b1"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary[EntityJournalLines].Dropped)
	assert.Equal(t, 1, summary[EntityJournalLines].Reasons["missing asientos_contables"])
	assert.Equal(t, 1, summary[EntitySessions].Dropped)
	assert.Zero(t, count(t, db, &models.JournalLine{}))

	entry, err := ledger.Entry(context.Background(), db, EntityJournalLines, "L1")
	require.NoError(t, err)
	assert.Nil(t, entry, "dropped rows are not recorded")
}

func TestEngine_FailOnDrop(t *testing.T) {
	db := setupDB(t)
	p := &payload.Payload{InventoryLots: []payload.InventoryLot{{ID: "LOT1", ProductID: "nope", Qty: decimal.NewFromInt(1)}}}
	rc := newRun(db, p, "b1")
	rc.FailOnDrop = true

	_, err := NewEngine().Run(context.Background(), rc)
	require.Error(t, err)
	assert.True(t, errs.IsReferentialGap(err))
	assert.True(t, errs.IsTransaction(err))
}

func TestEngine_ValidationSkips(t *testing.T) {
	db := setupDB(t)
	p := &payload.Payload{
		Users:         []payload.User{{Nombre: "no email"}},
		Products:      []payload.Product{{Sku: "S"}},
		InventoryLots: []payload.InventoryLot{{ID: "LOT1", ProductID: "S", Qty: decimal.Zero}},
	}
	summary, err := NewEngine().Run(context.Background(), newRun(db, p, "b1"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary[EntityUsers].Skipped)
	assert.Equal(t, 1, summary[EntityUsers].Reasons["email: required"])
	assert.Equal(t, 1, summary[EntityInventoryLots].Skipped)
	assert.Equal(t, 1, summary[EntityInventoryLots].Reasons["qty: gt=0"])
	assert.Zero(t, count(t, db, &models.InventoryLot{}))
}

func TestEngine_ProductWithoutSku(t *testing.T) {
	db := setupDB(t)
	p := &payload.Payload{Products: []payload.Product{{Nombre: ""}}}
	_, err := NewEngine().Run(context.Background(), newRun(db, p, "b1"))
	require.NoError(t, err)

	var product models.Product
	require.NoError(t, db.Take(&product).Error)
	assert.Regexp(t, `^prod-[0-9a-f]{16}$`, product.Sku)
	assert.Equal(t, DefaultProductName, product.Nombre)
}

func TestEngine_FailingApplier(t *testing.T) {
	db := setupDB(t)
	boom := errors.New("boom")
	engine := &Engine{Stages: [][]Applier{
		{Users()},
		{Func("explode", func(context.Context, *RunContext, *EntitySummary) error { return boom })},
		{Accounts()},
	}}
	p := &payload.Payload{
		Users:    []payload.User{{Email: "a@b.c"}},
		Accounts: []payload.Account{{Codigo: "1"}},
	}

	summary, err := engine.Run(context.Background(), newRun(db, p, "b1"))
	require.ErrorIs(t, err, boom)

	var txErr *errs.TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "explode", txErr.Entity)
	assert.Equal(t, "b1", txErr.BatchID)
	assert.Contains(t, summary, EntityUsers)
	assert.NotContains(t, summary, EntityAccounts)
}

func TestSourceCounts(t *testing.T) {
	counts := SourceCounts(samplePayload())
	assert.Equal(t, 2, counts[EntityMovements])
	assert.Equal(t, 1, counts[EntityTaxConfig])
	assert.Len(t, counts, 15)
}
