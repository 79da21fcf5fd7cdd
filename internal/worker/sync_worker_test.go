package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"anggaran/internal/amqp"
	"anggaran/internal/core"
	sheetsmem "anggaran/internal/sheets/memory"
	"anggaran/internal/store/memory"
)

func addTx(t *testing.T, s *memory.Store, desc string) core.Transaction {
	t.Helper()
	tx, err := s.AddTransaction(context.Background(), core.Transaction{
		Date:        core.NewDate(2026, 10, 14),
		Type:        core.TypeExpense,
		Category:    "Makan",
		Amount:      25000,
		Description: desc,
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	return tx
}

func TestHandleSyncMessage_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	journal := sheetsmem.New()
	w := NewSyncWorker(st, journal, 10)

	tx := addTx(t, st, "Nasi uduk")

	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(tx.ID, amqp.OpUpsert)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rows, _ := journal.ListRows(ctx)
	if len(rows) != 1 || rows[0].ID != tx.ID {
		t.Fatalf("expected mirrored row, got %+v", rows)
	}
	if pending, _ := st.ListUnsynced(ctx, 0); len(pending) != 0 {
		t.Errorf("transaction should be marked synced, pending=%d", len(pending))
	}

	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(tx.ID, amqp.OpDelete)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rows, _ := journal.ListRows(ctx); len(rows) != 0 {
		t.Fatalf("expected row removed, got %+v", rows)
	}
}

func TestHandleSyncMessage_UpsertOfDeletedTransaction(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	journal := sheetsmem.New()
	w := NewSyncWorker(st, journal, 10)

	tx := addTx(t, st, "Bensin")
	if _, err := journal.UpsertRow(ctx, tx); err != nil {
		t.Fatalf("seed journal: %v", err)
	}
	if err := st.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := w.HandleSyncMessage(ctx, amqp.NewTransactionSyncMessage(tx.ID, amqp.OpUpsert)); err != nil {
		t.Fatalf("late upsert: %v", err)
	}
	if rows, _ := journal.ListRows(ctx); len(rows) != 0 {
		t.Fatalf("late upsert for a deleted transaction should clear the row, got %+v", rows)
	}
}

func TestStartupSyncCheck_PrunesOrphanedRows(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	journal := sheetsmem.New()
	w := NewSyncWorker(st, journal, 10)

	kept := addTx(t, st, "Sayur")
	gone := addTx(t, st, "Telur")
	for _, tx := range []core.Transaction{kept, gone} {
		if _, err := journal.UpsertRow(ctx, tx); err != nil {
			t.Fatalf("seed journal: %v", err)
		}
	}
	// the delete message for gone never arrived
	if err := st.DeleteTransaction(ctx, gone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	rows, _ := journal.ListRows(ctx)
	if len(rows) != 1 || rows[0].ID != kept.ID {
		t.Fatalf("expected only %s left in the journal, got %+v", kept.ID, rows)
	}

	removed, err := w.PruneOrphans(ctx)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 0 {
		t.Errorf("second prune removed %d rows, want 0", removed)
	}
}

type failingJournal struct {
	*sheetsmem.Store
	failID string
}

func (f failingJournal) UpsertRow(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.ID == f.failID {
		return "", errors.New("sheets unavailable")
	}
	return f.Store.UpsertRow(ctx, tx)
}

func TestResyncPending(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	a := addTx(t, st, "a")
	b := addTx(t, st, "b")
	addTx(t, st, "c")

	journal := failingJournal{Store: sheetsmem.New(), failID: b.ID}
	w := NewSyncWorker(st, journal, 10)

	// a is already mirrored
	if err := st.MarkSynced(ctx, a.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	synced, err := w.ResyncPending(ctx)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if synced != 1 {
		t.Errorf("synced = %d, want 1", synced)
	}

	pending, _ := st.ListUnsynced(ctx, 0)
	if len(pending) != 1 || pending[0].ID != b.ID {
		t.Fatalf("failed row should stay pending, got %+v", pending)
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("startup check: %v", err)
	}
}

func TestResyncScheduler(t *testing.T) {
	w := NewSyncWorker(memory.New(), sheetsmem.New(), 10)

	bad := NewResyncScheduler(w, "every vaguely often")
	if err := bad.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}

	s := NewResyncScheduler(w, "")
	if s.spec != DefaultResyncSchedule {
		t.Errorf("spec = %q, want default", s.spec)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("scheduler should be running")
	}
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("second start should fail")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if s.IsRunning() {
		t.Fatal("scheduler should be stopped")
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second stop should be a no-op, got %v", err)
	}
}
