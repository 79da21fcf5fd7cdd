// Package worker mirrors the transaction journal into the spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"anggaran/internal/amqp"
	"anggaran/internal/core"
	"anggaran/internal/sheets"
)

// Source is the row store as seen by the worker.
type Source interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListUnsynced(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkSynced(ctx context.Context, id string) error
}

// SyncWorker applies journal sync messages and re-mirrors rows whose message
// was lost.
type SyncWorker struct {
	source    Source
	journal   sheets.Journal
	batchSize int
}

func NewSyncWorker(source Source, journal sheets.Journal, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{source: source, journal: journal, batchSize: batchSize}
}

// HandleSyncMessage processes a single journal sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "op", msg.Op)

	if msg.Op == amqp.OpDelete {
		return w.deleteRow(ctx, msg.ID)
	}

	tx, err := w.source.GetTransaction(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before the upsert was consumed.
		return w.deleteRow(ctx, msg.ID)
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	return w.syncTransaction(ctx, tx)
}

// ResyncPending mirrors up to one batch of unsynced transactions. Individual
// failures are logged and left for the next run.
func (w *SyncWorker) ResyncPending(ctx context.Context) (int, error) {
	return w.resync(ctx, w.batchSize)
}

// StartupSyncCheck runs a larger resync when the worker boots, covering
// messages published while it was down, then clears journal rows whose
// transaction no longer exists.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.resync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	removed, err := w.PruneOrphans(ctx)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced, "removed", removed)
	return nil
}

// PruneOrphans deletes journal rows for transactions missing from the store,
// covering lost delete messages. Individual failures are logged and skipped.
func (w *SyncWorker) PruneOrphans(ctx context.Context) (int, error) {
	rows, err := w.journal.ListRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("list journal rows: %w", err)
	}

	removed := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		_, err := w.source.GetTransaction(ctx, row.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, core.ErrNotFound) {
			slog.ErrorContext(ctx, "Failed to look up journal row", "id", row.ID, "error", err)
			continue
		}
		if err := w.deleteRow(ctx, row.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to remove orphaned journal row", "id", row.ID, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (w *SyncWorker) resync(ctx context.Context, limit int) (int, error) {
	pending, err := w.source.ListUnsynced(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list unsynced transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Resyncing pending transactions", "count", len(pending))

	synced := 0
	for _, tx := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.syncTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to resync transaction", "id", tx.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

func (w *SyncWorker) syncTransaction(ctx context.Context, tx core.Transaction) error {
	ref, err := w.journal.UpsertRow(ctx, tx)
	if err != nil {
		return fmt.Errorf("upsert journal row: %w", err)
	}

	if err := w.source.MarkSynced(ctx, tx.ID); err != nil {
		// The row is mirrored; the next resync rewrites it in place.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Synced transaction",
		"id", tx.ID,
		"sheets_ref", ref,
		"category", tx.Category,
		"amount", tx.Amount)
	return nil
}

func (w *SyncWorker) deleteRow(ctx context.Context, id string) error {
	if err := w.journal.DeleteRow(ctx, id); err != nil {
		return fmt.Errorf("delete journal row: %w", err)
	}
	slog.InfoContext(ctx, "Removed transaction from journal", "id", id)
	return nil
}
