// Package memory is an in-process row store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"anggaran/internal/core"
	"anggaran/internal/store"
)

// table keeps rows in insertion order.
type table[T any] struct {
	rows []T
	id   func(T) string
}

func (t *table[T]) all() []T {
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *table[T]) find(id string) (int, bool) {
	for i, r := range t.rows {
		if t.id(r) == id {
			return i, true
		}
	}
	return -1, false
}

func (t *table[T]) get(id string) (T, error) {
	var zero T
	i, ok := t.find(id)
	if !ok {
		return zero, core.ErrNotFound
	}
	return t.rows[i], nil
}

func (t *table[T]) insert(r T) {
	t.rows = append(t.rows, r)
}

func (t *table[T]) update(id string, fn func(*T)) (T, error) {
	var zero T
	i, ok := t.find(id)
	if !ok {
		return zero, core.ErrNotFound
	}
	fn(&t.rows[i])
	return t.rows[i], nil
}

func (t *table[T]) remove(id string) error {
	i, ok := t.find(id)
	if !ok {
		return core.ErrNotFound
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return nil
}

// Store implements store.Store in memory.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	incomes  table[core.Income]
	debts    table[core.Debt]
	funds    table[core.SinkingFund]
	goals    table[core.FinancialGoal]
	assets   table[core.Asset]
	txs      table[core.Transaction]
	menus    table[core.MenuItem]
	profiles table[core.Profile]
	users    table[core.User]
	synced   map[string]bool
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:      time.Now,
		incomes:  table[core.Income]{id: func(r core.Income) string { return r.ID }},
		debts:    table[core.Debt]{id: func(r core.Debt) string { return r.ID }},
		funds:    table[core.SinkingFund]{id: func(r core.SinkingFund) string { return r.ID }},
		goals:    table[core.FinancialGoal]{id: func(r core.FinancialGoal) string { return r.ID }},
		assets:   table[core.Asset]{id: func(r core.Asset) string { return r.ID }},
		txs:      table[core.Transaction]{id: func(r core.Transaction) string { return r.ID }},
		menus:    table[core.MenuItem]{id: func(r core.MenuItem) string { return r.ID }},
		profiles: table[core.Profile]{id: func(r core.Profile) string { return r.ID }},
		users:    table[core.User]{id: func(r core.User) string { return r.ID }},
		synced:   map[string]bool{},
	}
}

// WithClock replaces the clock used for creation timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error              { return nil }

func newID() string { return uuid.NewString() }

// Incomes

func (s *Store) ListIncomes(_ context.Context) ([]core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incomes.all(), nil
}

func (s *Store) FixedIncome(_ context.Context) (core.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inc := range s.incomes.rows {
		if inc.Kind == core.IncomeFixed {
			return inc, nil
		}
	}
	return core.Income{}, core.ErrNotFound
}

func (s *Store) AddIncome(_ context.Context, inc core.Income) (core.Income, error) {
	if err := inc.Validate(); err != nil {
		return core.Income{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inc.ID = newID()
	inc.CreatedAt = s.now()
	s.incomes.insert(inc)
	return inc, nil
}

func (s *Store) UpdateIncomeAmount(_ context.Context, id string, amount int64) (core.Income, error) {
	if amount < 0 {
		return core.Income{}, core.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incomes.update(id, func(i *core.Income) { i.Amount = amount })
}

func (s *Store) DeleteIncome(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incomes.remove(id)
}

// Debts

func (s *Store) ListDebts(_ context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	out := s.debts.all()
	s.mu.Unlock()
	store.SortDebts(out)
	return out, nil
}

func (s *Store) GetDebt(_ context.Context, id string) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debts.get(id)
}

func (s *Store) AddDebt(_ context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = newID()
	d.CreatedAt = s.now()
	s.debts.insert(d)
	return d, nil
}

func (s *Store) SetDebtPaid(_ context.Context, id string, paid bool) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debts.update(id, func(d *core.Debt) { d.IsPaid = paid })
}

func (s *Store) DeleteDebt(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debts.remove(id)
}

// Sinking funds

func (s *Store) ListSinkingFunds(_ context.Context) ([]core.SinkingFund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.funds.all(), nil
}

func (s *Store) AddSinkingFund(_ context.Context, f core.SinkingFund) (core.SinkingFund, error) {
	if err := f.Validate(); err != nil {
		return core.SinkingFund{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = newID()
	s.funds.insert(f)
	return f, nil
}

func (s *Store) DeleteSinkingFund(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.funds.remove(id)
}

// Goals

func (s *Store) ListGoals(_ context.Context) ([]core.FinancialGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goals.all(), nil
}

func (s *Store) AddGoal(_ context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	if err := g.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = newID()
	s.goals.insert(g)
	return g, nil
}

func (s *Store) UpdateGoalCurrent(_ context.Context, id string, current int64) (core.FinancialGoal, error) {
	if current < 0 {
		return core.FinancialGoal{}, core.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goals.update(id, func(g *core.FinancialGoal) { g.CurrentAmount = current })
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goals.remove(id)
}

// Assets

func (s *Store) ListAssets(_ context.Context) ([]core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets.all(), nil
}

func (s *Store) AddAsset(_ context.Context, a core.Asset) (core.Asset, error) {
	if err := a.Validate(); err != nil {
		return core.Asset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = newID()
	s.assets.insert(a)
	return a, nil
}

func (s *Store) DeleteAsset(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets.remove(id)
}

// Transactions

func (s *Store) ListTransactions(_ context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	out := make([]core.Transaction, 0, len(s.txs.rows))
	for _, tx := range s.txs.rows {
		if f.Matches(tx) {
			out = append(out, tx)
		}
	}
	s.mu.Unlock()

	store.SortTransactions(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs.get(id)
}

func (s *Store) AddTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = newID()
	tx.CreatedAt = s.now()
	s.txs.insert(tx)
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.synced, id)
	return s.txs.remove(id)
}

func (s *Store) ListUnsynced(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs.rows {
		if s.synced[tx.ID] {
			continue
		}
		out = append(out, tx)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs.find(id); !ok {
		return core.ErrNotFound
	}
	s.synced[id] = true
	return nil
}

// Menus

func (s *Store) ListMenus(_ context.Context, t core.MenuType) ([]core.MenuItem, error) {
	s.mu.Lock()
	out := []core.MenuItem{}
	for _, m := range s.menus.rows {
		if t == "" || m.Type == t {
			out = append(out, m)
		}
	}
	s.mu.Unlock()
	store.SortMenus(out)
	return out, nil
}

func (s *Store) AddMenu(_ context.Context, m core.MenuItem) (core.MenuItem, error) {
	if err := m.Validate(); err != nil {
		return core.MenuItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = newID()
	s.menus.insert(m)
	return m, nil
}

func (s *Store) DeleteMenu(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menus.remove(id)
}

// Profiles

func (s *Store) ListProfiles(_ context.Context) ([]core.Profile, error) {
	s.mu.Lock()
	out := s.profiles.all()
	s.mu.Unlock()
	store.SortProfiles(out)
	return out, nil
}

func (s *Store) GetProfile(_ context.Context, id string) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles.get(id)
}

func (s *Store) UpsertProfile(_ context.Context, p core.Profile) (core.Profile, error) {
	if err := p.Validate(); err != nil {
		return core.Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.UpdatedAt = s.now()
	if i, ok := s.profiles.find(p.ID); ok {
		s.profiles.rows[i] = p
		return p, nil
	}
	s.profiles.insert(p)
	return p, nil
}

// Users

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if email == "" {
		return core.User{}, fmt.Errorf("create user: email required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users.rows {
		if existing.Email == email {
			return core.User{}, fmt.Errorf("create user %s: %w", email, core.ErrConflict)
		}
	}
	u.ID = newID()
	u.Email = email
	u.CreatedAt = s.now()
	s.users.insert(u)
	return u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.get(id)
}
