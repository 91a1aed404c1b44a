package checks

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"accounting-sync/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Table states.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusMissing = "missing"
)

// SchemaReport strictly types the result of a schema integrity check.
type SchemaReport struct {
	Dialect string                 `json:"dialect"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors,omitempty"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"`
}

// TableNames returns the checked table names in lexical order.
func (r *SchemaReport) TableNames() []string {
	out := make([]string, 0, len(r.Tables))
	for name := range r.Tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// typeAliases maps a declared base type to the spellings dialects report for it.
var typeAliases = map[string][]string{
	"varchar": {"varchar", "character varying", "text"},
	"decimal": {"decimal", "numeric"},
	"text":    {"text", "longtext", "mediumtext"},
	"char":    {"char", "character", "bpchar"},
}

// CheckSchema verifies the live schema using the gorm models as the source of truth.
// Every model must implement schema.Tabler.
func CheckSchema(db *gorm.DB, models []any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Dialect: db.Dialector.Name(),
		Tables:  make(map[string]TableReport),
		Matched: true,
	}

	for _, model := range models {
		tabler, ok := model.(schema.Tabler)
		if !ok {
			return nil, fmt.Errorf("model %T does not implement TableName", model)
		}
		tableName := tabler.TableName()

		tblReport := TableReport{
			MissingColumns: []string{},
			TypeMismatches: []string{},
			Status:         StatusOK,
		}

		actualCols, err := database.GetTableColumns(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue
		}
		// sqlite and postgres describe a missing table as one without columns.
		if len(actualCols) == 0 {
			tblReport.Status = StatusMissing
			report.Tables[tableName] = tblReport
			report.Matched = false
			continue
		}

		actualMap := make(map[string]database.ColumnInfo, len(actualCols))
		for _, col := range actualCols {
			actualMap[col.Field] = col
		}

		val := reflect.TypeOf(model)
		if val.Kind() == reflect.Ptr {
			val = val.Elem()
		}
		for i := 0; i < val.NumField(); i++ {
			gormTag := val.Field(i).Tag.Get("gorm")

			colName := parseGormColumn(gormTag)
			if colName == "" {
				continue
			}

			actCol, exists := actualMap[colName]
			if !exists {
				tblReport.MissingColumns = append(tblReport.MissingColumns, colName)
				tblReport.Status = StatusError
				report.Matched = false
				continue
			}

			expType := strings.ToLower(parseGormType(gormTag))
			if expType != "" && !typeMatches(expType, actCol.Type) {
				mismatch := fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type)
				tblReport.TypeMismatches = append(tblReport.TypeMismatches, mismatch)
				tblReport.Status = StatusError
				report.Matched = false
			}
		}

		report.Tables[tableName] = tblReport
	}

	return report, nil
}

// typeMatches is a soft comparison: the exact declaration, or any spelling of
// the same base type. Postgres reports no length, so only the base is compared.
func typeMatches(expected, actual string) bool {
	if strings.Contains(actual, expected) {
		return true
	}
	base := expected
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	for _, alias := range typeAliases[base] {
		if strings.HasPrefix(actual, alias) {
			return true
		}
	}
	return false
}

// Helpers to parse simple gorm tags
func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}
