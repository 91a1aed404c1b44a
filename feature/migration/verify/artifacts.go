package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"accounting-sync/core/reconcile"
	"accounting-sync/core/storage"
	"accounting-sync/feature/migration/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	sheetName       = "reconciliation"
	contentTypeJSON = "application/json"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Render returns the indented JSON form of a report.
func Render(report *reconcile.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile writes the JSON report to path, creating parent directories.
func WriteFile(path string, report *reconcile.Report) error {
	data, err := Render(report)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteXLSX renders the report as a single sheet spreadsheet.
func WriteXLSX(w io.Writer, report *reconcile.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	f.SetCellValue(sheetName, "A1", "kind")
	f.SetCellValue(sheetName, "B1", "key")
	f.SetCellValue(sheetName, "C1", "source")
	f.SetCellValue(sheetName, "D1", "target")
	f.SetCellValue(sheetName, "E1", "diff")

	row := 2
	for _, key := range report.Diff.CountKeys() {
		f.SetCellValue(sheetName, "A"+fmt.Sprint(row), "count")
		f.SetCellValue(sheetName, "B"+fmt.Sprint(row), key)
		f.SetCellValue(sheetName, "C"+fmt.Sprint(row), report.Source.Counts[key])
		f.SetCellValue(sheetName, "D"+fmt.Sprint(row), report.Target.Counts[key])
		f.SetCellValue(sheetName, "E"+fmt.Sprint(row), report.Diff.Counts[key])
		row++
	}
	for _, key := range report.Diff.ControlKeys() {
		f.SetCellValue(sheetName, "A"+fmt.Sprint(row), "control")
		f.SetCellValue(sheetName, "B"+fmt.Sprint(row), key)
		f.SetCellValue(sheetName, "C"+fmt.Sprint(row), report.Source.Controls[key].InexactFloat64())
		f.SetCellValue(sheetName, "D"+fmt.Sprint(row), report.Target.Controls[key].InexactFloat64())
		f.SetCellValue(sheetName, "E"+fmt.Sprint(row), report.Diff.Controls[key].InexactFloat64())
		row++
	}

	row++
	f.SetCellValue(sheetName, "A"+fmt.Sprint(row), "zeroDiff")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(row), report.Integrity.ZeroDiff)
	f.SetCellValue(sheetName, "C"+fmt.Sprint(row), report.Integrity.Message)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

// ExportXLSX writes the spreadsheet to path.
func ExportXLSX(path string, report *reconcile.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create spreadsheet: %w", err)
	}
	if err := WriteXLSX(out, report); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Upload stores the JSON report as object in the bucket.
func Upload(ctx context.Context, client storage.Client, bucket, object string, report *reconcile.Report) error {
	data, err := Render(report)
	if err != nil {
		return err
	}
	return storage.Upload(ctx, client, bucket, object, data, contentTypeJSON)
}

// UploadXLSX stores the spreadsheet rendering as object in the bucket.
func UploadXLSX(ctx context.Context, client storage.Client, bucket, object string, report *reconcile.Report) error {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, report); err != nil {
		return err
	}
	return storage.Upload(ctx, client, bucket, object, buf.Bytes(), contentTypeXLSX)
}

// Save persists the report in reconciliation_reports.
func Save(ctx context.Context, db *gorm.DB, report *reconcile.Report) (*models.ReconciliationReport, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	row := &models.ReconciliationReport{
		GeneratedAt: report.GeneratedAt,
		ZeroDiff:    report.Integrity.ZeroDiff,
		Body:        datatypes.JSON(body),
	}
	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	return row, nil
}
