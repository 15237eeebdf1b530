package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"BlanketWatch/internal/model"
)

// RunDateFormat is the MM-DD-YY stamp used in artifact names.
const RunDateFormat = "01-02-06"

var header = []any{
	"PO", "Division", "Vendor", "Buyer", "Description", "Start", "End", "Fiscal Year",
	"Limit", "Spent", "% Spent", "Duration (mo)", "Months Left", "Months Passed",
	"Desired Burn %", "Burn %", "Burn Status", "Projected Limit Date", "Watch List",
}

var slugReplacer = strings.NewReplacer("/", "_", "\\", "_")

// Slug lower-cases a division name and makes it safe for a file name.
func Slug(division string) string {
	return slugReplacer.Replace(strings.Join(strings.Fields(strings.ToLower(division)), "_"))
}

// FileName is {division}-blankets-{MM-DD-YY}.xlsx.
func FileName(division string, runDate time.Time) string {
	return fmt.Sprintf("%s-blankets-%s.xlsx", Slug(division), runDate.Format(RunDateFormat))
}

// WorkbookWriter renders division reports as Excel workbooks, one sheet per category.
type WorkbookWriter struct {
	Logger *zap.Logger
}

// NewWorkbookWriter creates a new WorkbookWriter.
func NewWorkbookWriter(logger *zap.Logger) *WorkbookWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkbookWriter{Logger: logger}
}

// Write saves r into dir and returns the workbook path.
func (w *WorkbookWriter) Write(dir string, r DivisionReport, runDate time.Time) (string, error) {
	if len(r.Categories) == 0 {
		return "", fmt.Errorf("division %s has no watch categories", r.Division)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}

	for i, cat := range r.Categories {
		sheet := string(cat.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return "", fmt.Errorf("name sheet %q: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("add sheet %q: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, cat.Contracts, bold); err != nil {
			return "", err
		}
	}
	f.SetActiveSheet(0)

	path := filepath.Join(dir, FileName(r.Division, runDate))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	w.Logger.Info("workbook written",
		zap.String("division", r.Division),
		zap.String("artifact", path),
		zap.Int("sheets", len(r.Categories)))
	return path, nil
}

func writeSheet(f *excelize.File, sheet string, contracts []model.EvaluatedContract, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header of %q: %w", sheet, err)
	}
	for i, ec := range contracts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := rowValues(ec)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s to %q: %w", ec.ID, sheet, err)
		}
	}
	return nil
}

func rowValues(ec model.EvaluatedContract) []any {
	ind := ec.Indicators
	return []any{
		ec.ID,
		ec.Division,
		ec.Vendor,
		ec.Buyer,
		ec.Description,
		ec.StartDate.Format("2006-01-02"),
		ec.EndDate.Format("2006-01-02"),
		ind.FiscalYear,
		ec.SpendingLimit.InexactFloat64(),
		ec.AmountSpent.InexactFloat64(),
		round2(ind.PctSpent),
		ind.DurationMonths,
		ind.MonthsLeft,
		ind.MonthsPassed,
		round2(ind.DesiredBurnRate),
		round2(ind.BurnRate),
		string(ind.BurnStatus),
		ind.ProjectedLimitDate.Format("2006-01-02"),
		string(ind.WatchFlag),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
