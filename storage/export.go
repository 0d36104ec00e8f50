package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/use-agent/bookbay/models"
)

// exportTables is the whitelist of exportable tables; anything else is
// rejected before touching SQL.
var exportTables = map[string]bool{
	"properties":     true,
	"showing_times":  true,
	"bookings":       true,
	"search_history": true,
}

// ExportCSV streams one table as CSV, header row first.
func (s *Store) ExportCSV(ctx context.Context, table string, w io.Writer) error {
	if !exportTables[table] {
		return models.NewOpError(models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown export table %q", table), nil)
	}

	rows, err := s.pool.Query(ctx, "SELECT * FROM "+table)
	if err != nil {
		return models.NewOpError(models.ErrCodeStorage, "export query failed", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	defer cw.Flush()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name
	}
	if err := cw.Write(header); err != nil {
		return models.NewOpError(models.ErrCodeStorage, "csv write failed", err)
	}

	record := make([]string, len(fields))
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return models.NewOpError(models.ErrCodeStorage, "row read failed", err)
		}
		for i, v := range values {
			if v == nil {
				record[i] = ""
				continue
			}
			record[i] = fmt.Sprint(v)
		}
		if err := cw.Write(record); err != nil {
			return models.NewOpError(models.ErrCodeStorage, "csv write failed", err)
		}
	}
	if err := rows.Err(); err != nil {
		return models.NewOpError(models.ErrCodeStorage, "export interrupted", err)
	}
	cw.Flush()
	return cw.Error()
}
