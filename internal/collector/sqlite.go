package collector

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"BlanketWatch/internal/model"
)

// SQLiteSource reads the contract register from a table of a SQLite export.
type SQLiteSource struct {
	Path    string
	Table   string
	Columns Columns
	Logger  *zap.Logger
}

// NewSQLiteSource creates a table source. An empty table name means "contracts".
func NewSQLiteSource(path, table string, cols Columns, logger *zap.Logger) *SQLiteSource {
	if table == "" {
		table = "contracts"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteSource{Path: path, Table: table, Columns: cols, Logger: logger}
}

func (s *SQLiteSource) Name() string { return "sqlite" }

func (s *SQLiteSource) Load(ctx context.Context) ([]model.Contract, error) {
	db, err := sql.Open("sqlite", "file:"+s.Path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	// Table names are validated by config; identifiers cannot be bound as parameters.
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, s.Table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Table, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	p, err := newRowParser(header, s.Columns)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", s.Table, err)
	}

	var contracts []model.Contract
	values := make([]sql.NullString, len(header))
	dest := make([]any, len(header))
	for i := range values {
		dest[i] = &values[i]
	}
	n := 0
	for rows.Next() {
		n++
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", n, err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = v.String
		}
		if blankRow(row) {
			continue
		}
		c, err := p.parse(row)
		if err != nil {
			s.Logger.Warn("skipping register row", zap.Int("row", n), zap.Error(err))
			continue
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return contracts, nil
}
