package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"anggaran/internal/core"
)

// fakeValues is an in-memory grid addressed with A1 ranges.
type fakeValues struct {
	rows   map[int][]any
	getErr error
}

func newFakeValues() *fakeValues { return &fakeValues{rows: map[int][]any{}} }

func (f *fakeValues) lastRow() int {
	last := 0
	for r, v := range f.rows {
		if len(v) > 0 && r > last {
			last = r
		}
	}
	return last
}

func (f *fakeValues) get(_ context.Context, rng string) ([][]any, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	_, a1, _ := strings.Cut(rng, "!")
	out := make([][]any, f.lastRow())
	for i := range out {
		row := f.rows[i+1]
		if a1 == "A:A" && len(row) > 0 {
			row = row[:1]
		}
		out[i] = row
	}
	return out, nil
}

func parseRowNumber(rng string) (int, error) {
	_, a1, _ := strings.Cut(rng, "!")
	var from, to int
	if _, err := fmt.Sscanf(a1, "A%d:F%d", &from, &to); err != nil {
		return 0, err
	}
	return from, nil
}

func (f *fakeValues) update(_ context.Context, rng string, rows [][]any) error {
	r, err := parseRowNumber(rng)
	if err != nil {
		return err
	}
	f.rows[r] = rows[0]
	return nil
}

func (f *fakeValues) clear(_ context.Context, rng string) error {
	r, err := parseRowNumber(rng)
	if err != nil {
		return err
	}
	f.rows[r] = nil
	return nil
}

func sampleTx(id, desc string, amount int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Date:        core.NewDate(2026, 10, 14),
		Type:        core.TypeExpense,
		Category:    "Makan",
		Amount:      amount,
		Description: desc,
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewSheetsService_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := newSheetsService(context.Background(), Config{SpreadsheetID: "x"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_UpsertAppendsWithHeader(t *testing.T) {
	grid := newFakeValues()
	c := newClient(grid, "")
	ctx := context.Background()

	ref, err := c.UpsertRow(ctx, sampleTx("tx-1", "Beras (mentah)", 65000))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ref != "Jurnal!A2:F2" {
		t.Errorf("unexpected ref %q", ref)
	}
	if got := cell(grid.rows[1], 0); got != "ID" {
		t.Errorf("expected header in row 1, got %q", got)
	}

	ref, err = c.UpsertRow(ctx, sampleTx("tx-2", "Sayur", 20000))
	if err != nil || ref != "Jurnal!A3:F3" {
		t.Fatalf("second upsert: ref=%q err=%v", ref, err)
	}
}

func TestClient_UpsertOverwritesExistingRow(t *testing.T) {
	grid := newFakeValues()
	c := newClient(grid, "Jurnal")
	ctx := context.Background()

	for _, id := range []string{"tx-1", "tx-2"} {
		if _, err := c.UpsertRow(ctx, sampleTx(id, "awal", 1000)); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	ref, err := c.UpsertRow(ctx, sampleTx("tx-1", "koreksi", 1500))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ref != "Jurnal!A2:F2" {
		t.Errorf("expected overwrite of row 2, got %q", ref)
	}

	rows, err := c.ListRows(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Description != "koreksi" || rows[0].Amount != 1500 {
		t.Errorf("unexpected row %+v", rows[0])
	}
}

func TestClient_DeleteRow(t *testing.T) {
	grid := newFakeValues()
	c := newClient(grid, "Jurnal")
	ctx := context.Background()

	for _, id := range []string{"tx-1", "tx-2"} {
		if _, err := c.UpsertRow(ctx, sampleTx(id, "x", 1000)); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	if err := c.DeleteRow(ctx, "tx-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.DeleteRow(ctx, "tx-unknown"); err != nil {
		t.Fatalf("deleting a missing row should succeed, got %v", err)
	}

	rows, err := c.ListRows(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "tx-2" {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestClient_UpsertValidatesAndPropagatesErrors(t *testing.T) {
	grid := newFakeValues()
	c := newClient(grid, "Jurnal")

	bad := sampleTx("tx-1", "x", 1000)
	bad.Type = "TRANSFER"
	if _, err := c.UpsertRow(context.Background(), bad); !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}

	grid.getErr = errors.New("quota exceeded")
	if _, err := c.UpsertRow(context.Background(), sampleTx("tx-1", "x", 1)); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected wrapped API error, got %v", err)
	}
}

func TestParseRow(t *testing.T) {
	tests := []struct {
		name   string
		row    []any
		ok     bool
		amount int64
	}{
		{"unformatted number", []any{"tx-1", "2026-10-01", "EXPENSE", "Makan", 25000.0, "Nasi"}, true, 25000},
		{"typed string", []any{"tx-2", "2026-10-01", "EXPENSE", "Makan", "1.500.000", ""}, true, 1500000},
		{"short row", []any{"tx-3", "2026-10-01", "INCOME"}, true, 0},
		{"bad date", []any{"tx-4", "kemarin", "EXPENSE", "Makan", 1.0, ""}, false, 0},
		{"cleared", []any{}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, ok := parseRow(tt.row)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && tx.Amount != tt.amount {
				t.Errorf("amount = %d, want %d", tx.Amount, tt.amount)
			}
		})
	}
}
