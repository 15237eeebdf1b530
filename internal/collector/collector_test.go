package collector

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"BlanketWatch/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// localDay is a register date as the sources read it.
func localDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// withLocalZone runs the rest of the test with time.Local set to loc.
func withLocalZone(t *testing.T, loc *time.Location) {
	t.Helper()
	orig := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = orig })
}

var registerHeader = []any{"PO", "BUYER", "MB START", "MB END", "DESCRIPTION", "VENDOR", "MB $ LIMIT", "MB $ SPENT", "Division", "Comments"}

func writeRegister(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "master"))
	require.NoError(t, f.SetSheetRow("master", "A1", &registerHeader))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("master", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "Contract List.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXSource_Load(t *testing.T) {
	path := writeRegister(t, [][]any{
		{"P12246", "jdoe", day(2023, 1, 1), day(2024, 1, 1), "Tire service", "Acme", "$120,000.00", "70,000", "Fleet", "ok"},
		{"P12247", "asmith", "2023-03-15", "06/30/2025", "Janitorial", "CleanCo", 50000, "", "Facilities"},
		{},
		{"P12248", "asmith", "", "2025-01-01", "No start", "Nobody", 1000, 0, "Fleet"},
		{"P12249", "asmith", "2023-01-01", "2025-01-01", "Bad amount", "Nobody", "lots", 0, "Fleet"},
		{"", "asmith", "2023-01-01", "2025-01-01", "No PO", "Nobody", 1000, 0, "Fleet"},
	})

	src := NewXLSXSource(path, "", Columns{}, zaptest.NewLogger(t))
	contracts, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, contracts, 2)

	first := contracts[0]
	assert.Equal(t, "P12246", first.ID)
	assert.True(t, first.StartDate.Equal(localDay(2023, 1, 1)), "start %s", first.StartDate)
	assert.True(t, first.EndDate.Equal(localDay(2024, 1, 1)), "end %s", first.EndDate)
	assert.True(t, first.SpendingLimit.Equal(decimal.NewFromInt(120000)))
	assert.True(t, first.AmountSpent.Equal(decimal.NewFromInt(70000)))
	assert.Equal(t, "Fleet", first.Division)
	assert.Equal(t, "Acme", first.Vendor)
	assert.Equal(t, "jdoe", first.Buyer)
	assert.Equal(t, "Tire service", first.Description)

	second := contracts[1]
	assert.True(t, second.StartDate.Equal(localDay(2023, 3, 15)))
	assert.True(t, second.EndDate.Equal(localDay(2025, 6, 30)))
	assert.True(t, second.AmountSpent.IsZero(), "blank spend reads as zero")
}

func TestXLSXSource_MissingColumn(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "master"))
	require.NoError(t, f.SetSheetRow("master", "A1", &[]any{"PO", "MB START", "MB END"}))
	path := filepath.Join(t.TempDir(), "partial.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := NewXLSXSource(path, "master", Columns{}, nil).Load(context.Background())
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestXLSXSource_CustomColumns(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Blankets"))
	require.NoError(t, f.SetSheetRow("Blankets", "A1", &[]any{"Order No", "Begins", "Ends", "Ceiling", "Drawn", "Unit"}))
	require.NoError(t, f.SetSheetRow("Blankets", "A2", &[]any{"B-1", "2023-01-01", "2024-01-01", 1000, 10, "Parks"}))
	path := filepath.Join(t.TempDir(), "custom.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	cols := Columns{ID: "Order No", Start: "Begins", End: "Ends", Limit: "Ceiling", Spent: "Drawn", Division: "Unit"}
	contracts, err := NewXLSXSource(path, "Blankets", cols, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	assert.Equal(t, "B-1", contracts[0].ID)
	assert.Equal(t, "Parks", contracts[0].Division)
}

func TestSQLiteSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE contracts (
		"PO" TEXT, "BUYER" TEXT, "MB START" TEXT, "MB END" TEXT, "DESCRIPTION" TEXT,
		"VENDOR" TEXT, "MB $ LIMIT" INTEGER, "MB $ SPENT" TEXT, "Division" TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO contracts VALUES
		('P1', 'jdoe', '2023-01-01', '2024-01-01', 'Fuel', 'Shell', 120000, '70000.50', 'Fleet'),
		('P2', 'jdoe', 'someday', '2024-01-01', 'Broken', 'Shell', 1, '0', 'Fleet'),
		('P3', 'asmith', '2023-02-01', '2025-02-01', 'Paper', 'Staples', 9000, NULL, 'Admin')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	contracts, err := NewSQLiteSource(path, "", Columns{}, zaptest.NewLogger(t)).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, contracts, 2)
	assert.Equal(t, "P1", contracts[0].ID)
	assert.True(t, contracts[0].AmountSpent.Equal(decimal.RequireFromString("70000.50")))
	assert.True(t, contracts[0].SpendingLimit.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, "P3", contracts[1].ID)
	assert.True(t, contracts[1].AmountSpent.IsZero())
}

func TestCollector_FiltersInactive(t *testing.T) {
	now := day(2023, 7, 1)
	src := &StaticSource{Contracts: []model.Contract{
		{ID: "expired", EndDate: day(2023, 6, 30)},
		{ID: "ends-now", EndDate: now},
		{ID: "active", EndDate: day(2023, 7, 2)},
	}}
	col := NewCollector(src, zaptest.NewLogger(t))

	got, err := col.Collect(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Loaded)
	require.Len(t, got.Active, 1)
	assert.Equal(t, "active", got.Active[0].ID)
}

func TestCollector_SourceError(t *testing.T) {
	boom := errors.New("boom")
	col := NewCollector(&StaticSource{Err: boom}, nil)
	_, err := col.Collect(context.Background(), day(2023, 7, 1))
	assert.ErrorIs(t, err, boom)
}

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"MB $ LIMIT":   "mb_$_limit",
		" Division ":   "division",
		"MB  START":    "mb_start",
		"Option (Y/N)": "option_(y/n)",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2023-01-01", "01/01/2023", "1/1/2023", "01-01-23", "2023-01-01 00:00:00", "44927"} {
		got, err := parseDate(s)
		require.NoError(t, err, s)
		assert.True(t, got.Equal(localDay(2023, 1, 1)), "%s parsed as %s", s, got)
	}
	_, err := parseDate("")
	assert.ErrorIs(t, err, ErrMissingValue)
	_, err = parseDate("next tuesday")
	assert.Error(t, err)
}

func TestParseDate_LocalCalendarDate(t *testing.T) {
	withLocalZone(t, time.FixedZone("AEST", 10*60*60))

	for _, s := range []string{"2023-01-01", "44927", "01/01/2023"} {
		got, err := parseDate(s)
		require.NoError(t, err, s)
		y, m, d := got.Date()
		assert.Equal(t, []int{2023, 1, 1}, []int{y, int(m), d}, s)
		assert.Equal(t, 0, got.Hour(), s)
		assert.Equal(t, time.Local, got.Location(), s)
	}
}
