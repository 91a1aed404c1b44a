// Package database handles target connections and schema inspection.
//
// It wraps GORM to open the relational target of a migration. Postgres is the
// production target; MySQL is supported for legacy deployments and SQLite backs
// local runs and tests.
//
// # Connect
//
// Connect validates the configuration, opens the dialect selected by Driver,
// tunes the pool and pings the server before returning. When Tracing is set the
// OpenTelemetry plugin records every statement as a span.
//
// # Schema Inspection
//
// GetTableColumns returns live column definitions (SHOW COLUMNS, PRAGMA
// table_info or information_schema) so the schema integrity check can compare
// them against the models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	columns, err := database.GetTableColumns(db, "movimientos")
package database
