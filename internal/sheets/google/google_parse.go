package google

import (
	"fmt"
	"strings"

	"anggaran/internal/core"
	ports "anggaran/internal/sheets"
)

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:F%d", sheet, row, row)
}

func headerRow() []any {
	row := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		row[i] = h
	}
	return row
}

func journalRow(tx core.Transaction) []any {
	return []any{tx.ID, tx.Date.String(), string(tx.Type), tx.Category, tx.Amount, tx.Description}
}

// findRow returns the 1-based sheet row whose first cell is id, or 0.
func findRow(values [][]any, id string) int {
	for i, row := range values {
		if len(row) > 0 && cell(row, 0) == id {
			return i + 1
		}
	}
	return 0
}

func isHeader(row []any) bool {
	return strings.EqualFold(cell(row, 0), ports.Header[0])
}

// parseRow reads one journal row. Amounts arrive as float64 when unformatted
// and as strings when someone typed them in.
func parseRow(row []any) (core.Transaction, bool) {
	id := cell(row, 0)
	if id == "" {
		return core.Transaction{}, false
	}
	date, err := core.ParseDate(cell(row, 1))
	if err != nil {
		return core.Transaction{}, false
	}
	return core.Transaction{
		ID:          id,
		Date:        date,
		Type:        core.TransactionType(cell(row, 2)),
		Category:    cell(row, 3),
		Amount:      parseAmountCell(safeGet(row, 4)),
		Description: cell(row, 5),
	}, true
}

func parseAmountCell(v any) int64 {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0
		}
		return int64(n + 0.5)
	case int64:
		return max(n, 0)
	case int:
		return int64(max(n, 0))
	case string:
		// "1.500.000" is Indonesian digit grouping
		return core.ParseAmount(strings.ReplaceAll(n, ".", ""))
	default:
		return 0
	}
}

func cell(row []any, idx int) string {
	v := safeGet(row, idx)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func safeGet(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}
