package models

import "gorm.io/gorm/schema"

// All returns every target model, parents before children.
func All() []any {
	return []any{
		&User{},
		&Account{},
		&Counterparty{},
		&Product{},
		&Session{},
		&Movement{},
		&CashFlowEntry{},
		&Period{},
		&JournalEntry{},
		&JournalLine{},
		&InventoryLot{},
		&KardexMovement{},
		&FiscalDocument{},
		&Reconciliation{},
		&TaxConfig{},
		&MigrationBatch{},
		&MigrationRow{},
		&ReconciliationReport{},
	}
}

// resetOrder lists every table children-before-parents.
var resetOrder = []string{
	"sesiones",
	"asiento_lineas",
	"asientos_contables",
	"kardex_movimientos",
	"lotes_inventario",
	"flujo_caja",
	"movimientos",
	"productos",
	"cuentas",
	"terceros",
	"periodos_contables",
	"documentos_fiscales",
	"conciliaciones",
	"tax_config",
	"migration_rows",
	"migration_batches",
	"reconciliation_reports",
	"usuarios",
}

// ResetOrder returns the truncation order: journal lines before entries, kardex
// before lots, movements before products, sessions and entries before users.
func ResetOrder() []string {
	out := make([]string, len(resetOrder))
	copy(out, resetOrder)
	return out
}

// TableOf returns the table name of a model.
func TableOf(model any) string {
	if t, ok := model.(schema.Tabler); ok {
		return t.TableName()
	}
	return ""
}
