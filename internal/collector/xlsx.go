package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"BlanketWatch/internal/model"
)

var ErrEmptySheet = errors.New("sheet has no header row")

// XLSXSource reads the contract register from one sheet of an Excel workbook.
type XLSXSource struct {
	Path    string
	Sheet   string
	Columns Columns
	Logger  *zap.Logger
}

// NewXLSXSource creates a workbook source. An empty sheet name means "master".
func NewXLSXSource(path, sheet string, cols Columns, logger *zap.Logger) *XLSXSource {
	if sheet == "" {
		sheet = "master"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XLSXSource{Path: path, Sheet: sheet, Columns: cols, Logger: logger}
}

func (s *XLSXSource) Name() string { return "xlsx" }

func (s *XLSXSource) Load(ctx context.Context) ([]model.Contract, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.Sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", s.Sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read sheet %q: %w", s.Sheet, ErrEmptySheet)
	}

	p, err := newRowParser(rows[0], s.Columns)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", s.Sheet, err)
	}

	contracts := make([]model.Contract, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if blankRow(row) {
			continue
		}
		c, err := p.parse(row)
		if err != nil {
			// header is row 1
			s.Logger.Warn("skipping register row", zap.Int("row", i+2), zap.Error(err))
			continue
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}
