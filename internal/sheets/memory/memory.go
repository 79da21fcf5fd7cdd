// Package memory is an in-process journal mirror for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"anggaran/internal/core"
	ports "anggaran/internal/sheets"
)

var _ ports.Journal = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	rows []core.Transaction
	// index maps transaction id to its position in rows.
	index map[string]int
}

func New() *Store {
	return &Store{index: map[string]int{}}
}

// UpsertRow stores tx and returns a synthetic row reference.
func (s *Store) UpsertRow(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[tx.ID]; ok {
		s.rows[i] = tx
		return fmt.Sprintf("mem:%d", i+1), nil
	}
	s.rows = append(s.rows, tx)
	s.index[tx.ID] = len(s.rows) - 1
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) DeleteRow(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.rows); j++ {
		s.index[s.rows[j].ID] = j
	}
	return nil
}

func (s *Store) ListRows(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction{}, s.rows...), nil
}
