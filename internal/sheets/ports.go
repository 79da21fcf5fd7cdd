// Package sheets declares the journal mirror: a spreadsheet holding one row per
// transaction, keyed by transaction id.
package sheets

import (
	"context"

	"anggaran/internal/core"
)

// Journal column order.
var Header = []string{"ID", "Date", "Type", "Category", "Amount", "Description"}

// Ports for outbound adapters.
type (
	JournalWriter interface {
		// UpsertRow overwrites the row carrying tx.ID, or appends one.
		UpsertRow(ctx context.Context, tx core.Transaction) (rowRef string, err error)
		// DeleteRow clears the row for id. A missing row is not an error.
		DeleteRow(ctx context.Context, id string) error
	}

	JournalReader interface {
		ListRows(ctx context.Context) ([]core.Transaction, error)
	}

	Journal interface {
		JournalWriter
		JournalReader
	}
)
