// Package models contains the GORM models of the relational target.
//
// Business tables keep the Spanish names of the source application
// (usuarios, cuentas, movimientos, ...). Every table has a surrogate id;
// upserts resolve conflicts on the business key instead:
//
//   - usuarios: email
//   - cuentas: codigo
//   - terceros: rut
//   - productos: sku
//   - sesiones: token
//   - periodos_contables: clave (YYYY-MM)
//   - documentos_fiscales: (tipo_dte, folio)
//   - tax_config: anio
//   - everything else: source_id (the row key)
//
// The tracking tables migration_batches, migration_rows and
// reconciliation_reports hold all cross-run state.
package models
