package storage

import (
	"errors"
	"io"
	"testing"

	"github.com/use-agent/bookbay/models"
)

func TestExportCSVRejectsUnknownTable(t *testing.T) {
	s := &Store{}

	err := s.ExportCSV(t.Context(), "pg_catalog.pg_tables", io.Discard)
	if err == nil {
		t.Fatal("unknown table accepted")
	}
	var opErr *models.OpError
	if !errors.As(err, &opErr) || opErr.Code != models.ErrCodeInvalidInput {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestExportTablesWhitelist(t *testing.T) {
	for _, table := range []string{"properties", "showing_times", "bookings", "search_history"} {
		if !exportTables[table] {
			t.Errorf("table %q missing from whitelist", table)
		}
	}
	if exportTables[""] || exportTables["properties; DROP TABLE bookings"] {
		t.Error("whitelist accepts arbitrary input")
	}
}
