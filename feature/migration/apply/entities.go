package apply

import (
	"accounting-sync/feature/migration/payload"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity names. They double as ledger entity keys and target table names.
const (
	EntityUsers           = "usuarios"
	EntitySessions        = "sesiones"
	EntityAccounts        = "cuentas"
	EntityCounterparties  = "terceros"
	EntityProducts        = "productos"
	EntityMovements       = "movimientos"
	EntityCashFlow        = "flujo_caja"
	EntityPeriods         = "periodos_contables"
	EntityJournalEntries  = "asientos_contables"
	EntityJournalLines    = "asiento_lineas"
	EntityInventoryLots   = "lotes_inventario"
	EntityKardex          = "kardex_movimientos"
	EntityFiscalDocuments = "documentos_fiscales"
	EntityReconciliations = "conciliaciones"
	EntityTaxConfig       = "tax_config"
)

// Values written when the source leaves a NOT NULL text column empty.
const (
	DefaultProductName      = "migrated product"
	DefaultAccountName      = "migrated account"
	DefaultCounterpartyName = "migrated counterparty"
	DefaultJournalGloss     = "migrated entry"
	DefaultRole             = "operador"
	DefaultMovementType     = "MIGRADO"
	DefaultPeriodState      = "abierto"
	DefaultLotSource        = "migration"
)

// SourceCounts returns the number of source rows per entity.
func SourceCounts(p *payload.Payload) map[string]int {
	return map[string]int{
		EntityUsers:           len(p.Users),
		EntitySessions:        len(p.Sessions),
		EntityAccounts:        len(p.Accounts),
		EntityCounterparties:  len(p.Counterparties),
		EntityProducts:        len(p.Products),
		EntityMovements:       len(p.Movements),
		EntityCashFlow:        len(p.CashFlow),
		EntityPeriods:         len(p.Periods),
		EntityJournalEntries:  len(p.JournalEntries),
		EntityJournalLines:    len(p.JournalLines),
		EntityInventoryLots:   len(p.InventoryLots),
		EntityKardex:          len(p.KardexMovements),
		EntityFiscalDocuments: len(p.FiscalDocuments),
		EntityReconciliations: len(p.Reconciliations),
		EntityTaxConfig:       len(p.TaxConfigs),
	}
}

// upsertOn inserts model, updating the given columns when the conflict
// columns already exist. The surrogate id of an existing row is preserved.
func upsertOn(model any, conflict []string, updates ...string) func(tx *gorm.DB) error {
	cols := make([]clause.Column, 0, len(conflict))
	for _, c := range conflict {
		cols = append(cols, clause.Column{Name: c})
	}
	return func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   cols,
			DoUpdates: clause.AssignmentColumns(updates),
		}).Create(model).Error
	}
}

// resolveBy returns a resolver selecting the id of model where column = value.
func resolveBy(model any, column string, value any) func(tx *gorm.DB) (uint, error) {
	return func(tx *gorm.DB) (uint, error) {
		return lookupID(tx, model, column, value)
	}
}
