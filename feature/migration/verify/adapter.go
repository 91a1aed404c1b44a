package verify

import (
	"context"
	"fmt"

	"accounting-sync/core/reconcile"
	"accounting-sync/feature/migration/models"
	"accounting-sync/feature/migration/payload"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Control sums.
const (
	ControlMovementsTotal = "movimientosTotal"
	ControlCashFlowAmount = "flujoCajaMonto"
)

// counted pairs a report key with its target model and source count.
type counted struct {
	key    string
	model  any
	source func(p *payload.Payload) int
}

var countedEntities = []counted{
	{"usuarios", &models.User{}, func(p *payload.Payload) int { return len(p.Users) }},
	{"sesiones", &models.Session{}, func(p *payload.Payload) int { return len(p.Sessions) }},
	{"cuentas", &models.Account{}, func(p *payload.Payload) int { return len(p.Accounts) }},
	{"terceros", &models.Counterparty{}, func(p *payload.Payload) int { return len(p.Counterparties) }},
	{"productos", &models.Product{}, func(p *payload.Payload) int { return len(p.Products) }},
	{"movimientos", &models.Movement{}, func(p *payload.Payload) int { return len(p.Movements) }},
	{"flujoCaja", &models.CashFlowEntry{}, func(p *payload.Payload) int { return len(p.CashFlow) }},
	{"periodos", &models.Period{}, func(p *payload.Payload) int { return len(p.Periods) }},
	{"asientos", &models.JournalEntry{}, func(p *payload.Payload) int { return len(p.JournalEntries) }},
	{"asientoLineas", &models.JournalLine{}, func(p *payload.Payload) int { return len(p.JournalLines) }},
	{"inventoryLots", &models.InventoryLot{}, func(p *payload.Payload) int { return len(p.InventoryLots) }},
	{"kardexMovements", &models.KardexMovement{}, func(p *payload.Payload) int { return len(p.KardexMovements) }},
	{"documentosFiscales", &models.FiscalDocument{}, func(p *payload.Payload) int { return len(p.FiscalDocuments) }},
	{"conciliaciones", &models.Reconciliation{}, func(p *payload.Payload) int { return len(p.Reconciliations) }},
	{"taxConfig", &models.TaxConfig{}, func(p *payload.Payload) int { return len(p.TaxConfigs) }},
}

// SourceFunc produces the normalized source payload.
type SourceFunc func(ctx context.Context) (*payload.Payload, error)

// Adapter reconciles a normalized payload with the migrated tables.
type Adapter struct {
	source SourceFunc
}

// NewAdapter returns an adapter reading the source side from fn.
func NewAdapter(fn SourceFunc) *Adapter {
	return &Adapter{source: fn}
}

// FromPayload returns an adapter over an already normalized payload.
func FromPayload(p *payload.Payload) *Adapter {
	return NewAdapter(func(context.Context) (*payload.Payload, error) { return p, nil })
}

func (a *Adapter) Name() string { return "migration" }

// Keys returns every counted entity key.
func (a *Adapter) Keys() []string {
	out := make([]string, 0, len(countedEntities))
	for _, c := range countedEntities {
		out = append(out, c.key)
	}
	return out
}

// Controls returns the control sum names.
func (a *Adapter) Controls() []string {
	return []string{ControlMovementsTotal, ControlCashFlowAmount}
}

// LoadSource counts and sums the normalized payload.
func (a *Adapter) LoadSource(ctx context.Context) (reconcile.Aggregates, error) {
	p, err := a.source(ctx)
	if err != nil {
		return reconcile.Aggregates{}, err
	}

	agg := reconcile.NewAggregates()
	for _, c := range countedEntities {
		agg.Counts[c.key] = int64(c.source(p))
	}

	total := decimal.Zero
	for _, m := range p.Movements {
		total = total.Add(m.Total)
	}
	amount := decimal.Zero
	for _, f := range p.CashFlow {
		amount = amount.Add(f.Monto)
	}
	agg.Controls[ControlMovementsTotal] = total
	agg.Controls[ControlCashFlowAmount] = amount
	return agg, nil
}

// LoadTarget counts every table and sums the control columns.
func (a *Adapter) LoadTarget(ctx context.Context, db *gorm.DB) (reconcile.Aggregates, error) {
	agg := reconcile.NewAggregates()
	tx := db.WithContext(ctx)

	for _, c := range countedEntities {
		var n int64
		if err := tx.Model(c.model).Count(&n).Error; err != nil {
			return reconcile.Aggregates{}, fmt.Errorf("failed to count %s: %w", models.TableOf(c.model), err)
		}
		agg.Counts[c.key] = n
	}

	total, err := sum(tx, &models.Movement{}, "total")
	if err != nil {
		return reconcile.Aggregates{}, err
	}
	amount, err := sum(tx, &models.CashFlowEntry{}, "monto")
	if err != nil {
		return reconcile.Aggregates{}, err
	}
	agg.Controls[ControlMovementsTotal] = total
	agg.Controls[ControlCashFlowAmount] = amount
	return agg, nil
}

func sum(tx *gorm.DB, model any, column string) (decimal.Decimal, error) {
	var d decimal.NullDecimal
	err := tx.Model(model).Select("SUM(" + column + ")").Row().Scan(&d)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s.%s: %w", models.TableOf(model), column, err)
	}
	if !d.Valid {
		return decimal.Zero, nil
	}
	return d.Decimal, nil
}
