package collector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"BlanketWatch/internal/calculator"
	"BlanketWatch/internal/model"
)

var (
	ErrMissingColumn = errors.New("required column missing")
	ErrMissingValue  = errors.New("required value missing")
)

// Columns maps contract fields to normalized register headers.
type Columns struct {
	ID          string
	Buyer       string
	Start       string
	End         string
	Description string
	Vendor      string
	Limit       string
	Spent       string
	Division    string
}

// DefaultColumns matches the headers of the master contract list after normalization.
var DefaultColumns = Columns{
	ID:          "po",
	Buyer:       "buyer",
	Start:       "mb_start",
	End:         "mb_end",
	Description: "description",
	Vendor:      "vendor",
	Limit:       "mb_$_limit",
	Spent:       "mb_$_spent",
	Division:    "division",
}

// WithDefaults fills blank keys from DefaultColumns and normalizes the rest.
func (c Columns) WithDefaults() Columns {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return NormalizeHeader(v)
	}
	return Columns{
		ID:          pick(c.ID, DefaultColumns.ID),
		Buyer:       pick(c.Buyer, DefaultColumns.Buyer),
		Start:       pick(c.Start, DefaultColumns.Start),
		End:         pick(c.End, DefaultColumns.End),
		Description: pick(c.Description, DefaultColumns.Description),
		Vendor:      pick(c.Vendor, DefaultColumns.Vendor),
		Limit:       pick(c.Limit, DefaultColumns.Limit),
		Spent:       pick(c.Spent, DefaultColumns.Spent),
		Division:    pick(c.Division, DefaultColumns.Division),
	}
}

// NormalizeHeader lower-cases a header and joins its words with underscores.
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), "_")
}

// rowParser turns register rows into contracts using a header index.
type rowParser struct {
	cols  Columns
	index map[string]int
}

func newRowParser(header []string, cols Columns) (*rowParser, error) {
	p := &rowParser{cols: cols.WithDefaults(), index: make(map[string]int, len(header))}
	for i, h := range header {
		if key := NormalizeHeader(h); key != "" {
			if _, dup := p.index[key]; !dup {
				p.index[key] = i
			}
		}
	}
	required := []string{p.cols.ID, p.cols.Start, p.cols.End, p.cols.Limit, p.cols.Spent, p.cols.Division}
	for _, key := range required {
		if _, ok := p.index[key]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, key)
		}
	}
	return p, nil
}

func (p *rowParser) cell(row []string, key string) string {
	i, ok := p.index[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (p *rowParser) parse(row []string) (model.Contract, error) {
	var c model.Contract

	start, err := parseDate(p.cell(row, p.cols.Start))
	if err != nil {
		return c, fmt.Errorf("start date: %w", err)
	}
	end, err := parseDate(p.cell(row, p.cols.End))
	if err != nil {
		return c, fmt.Errorf("end date: %w", err)
	}
	limit, err := parseMoney(p.cell(row, p.cols.Limit))
	if err != nil {
		return c, fmt.Errorf("limit: %w", err)
	}
	spent, err := parseMoney(p.cell(row, p.cols.Spent))
	if err != nil {
		return c, fmt.Errorf("spent: %w", err)
	}

	c = model.Contract{
		ID:            p.cell(row, p.cols.ID),
		StartDate:     start,
		EndDate:       end,
		SpendingLimit: limit,
		AmountSpent:   spent,
		Division:      p.cell(row, p.cols.Division),
		Description:   p.cell(row, p.cols.Description),
		Vendor:        p.cell(row, p.cols.Vendor),
		Buyer:         p.cell(row, p.cols.Buyer),
	}
	if c.ID == "" {
		return c, fmt.Errorf("%w: %s", ErrMissingValue, p.cols.ID)
	}
	if c.Division == "" {
		return c, fmt.Errorf("%w: %s", ErrMissingValue, p.cols.Division)
	}
	return c, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1-2-06",
	"01/02/06",
}

// parseDate accepts Excel serial dates and the common textual layouts of the register.
// Dates are calendar dates in the local zone, the zone the run clock reads.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrMissingValue
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("excel serial %q: %w", s, err)
		}
		return calculator.WallClock(t, time.Local), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseMoney reads amounts like "$12,345.67". Blank cells count as zero.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q: %w", s, err)
	}
	return d, nil
}
