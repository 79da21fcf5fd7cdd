// Package services orchestrates the row store, the journal publisher and the
// object store behind the HTTP API.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"anggaran/internal/amqp"
	"anggaran/internal/core"
	"anggaran/internal/store"
)

// Publisher announces journal changes. *amqp.Client implements it.
type Publisher interface {
	PublishTransactionSync(ctx context.Context, id string, op amqp.SyncOp) error
}

// LedgerService owns the household's collections. Every call is one store
// round trip; journal publishing never fails a write.
type LedgerService struct {
	store     store.Store
	publisher Publisher
}

// NewLedgerService accepts a nil publisher when AMQP is not configured.
func NewLedgerService(st store.Store, publisher Publisher) *LedgerService {
	if c, ok := publisher.(*amqp.Client); ok && c == nil {
		publisher = nil
	}
	return &LedgerService{store: st, publisher: publisher}
}

// Incomes

func (s *LedgerService) ListIncomes(ctx context.Context) ([]core.Income, error) {
	incomes, err := s.store.ListIncomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	return incomes, nil
}

// SetFixedIncome updates the single FIXED row, creating it on first use.
func (s *LedgerService) SetFixedIncome(ctx context.Context, amount int64) (core.Income, error) {
	if amount < 0 {
		return core.Income{}, core.ErrInvalidAmount
	}
	fixed, err := s.store.FixedIncome(ctx)
	switch {
	case errors.Is(err, core.ErrNotFound):
		inc, err := s.store.AddIncome(ctx, core.Income{
			Name:   core.DefaultFixedIncomeName,
			Kind:   core.IncomeFixed,
			Amount: amount,
		})
		if err != nil {
			return core.Income{}, fmt.Errorf("create fixed income: %w", err)
		}
		slog.InfoContext(ctx, "Fixed income created", "id", inc.ID, "amount", amount)
		return inc, nil
	case err != nil:
		return core.Income{}, fmt.Errorf("get fixed income: %w", err)
	}

	inc, err := s.store.UpdateIncomeAmount(ctx, fixed.ID, amount)
	if err != nil {
		return core.Income{}, fmt.Errorf("update fixed income: %w", err)
	}
	slog.InfoContext(ctx, "Fixed income updated", "id", inc.ID, "amount", amount)
	return inc, nil
}

func (s *LedgerService) AddIncome(ctx context.Context, name string, amount int64) (core.Income, error) {
	inc, err := s.store.AddIncome(ctx, core.Income{Name: name, Kind: core.IncomeAdditional, Amount: amount})
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	slog.InfoContext(ctx, "Additional income added", "id", inc.ID, "amount", amount)
	return inc, nil
}

func (s *LedgerService) DeleteIncome(ctx context.Context, id string) error {
	if err := s.store.DeleteIncome(ctx, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	slog.InfoContext(ctx, "Income deleted", "id", id)
	return nil
}

// Debts

func (s *LedgerService) ListDebts(ctx context.Context) ([]core.Debt, error) {
	debts, err := s.store.ListDebts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	return debts, nil
}

// AddDebt always stores the debt as unpaid.
func (s *LedgerService) AddDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	d.IsPaid = false
	created, err := s.store.AddDebt(ctx, d)
	if err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}
	slog.InfoContext(ctx, "Debt added", "id", created.ID, "amount", created.Amount)
	return created, nil
}

// ToggleDebt flips the paid flag.
func (s *LedgerService) ToggleDebt(ctx context.Context, id string) (core.Debt, error) {
	d, err := s.store.GetDebt(ctx, id)
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt: %w", err)
	}
	updated, err := s.store.SetDebtPaid(ctx, id, !d.IsPaid)
	if err != nil {
		return core.Debt{}, fmt.Errorf("update debt: %w", err)
	}
	slog.InfoContext(ctx, "Debt toggled", "id", id, "is_paid", updated.IsPaid)
	return updated, nil
}

func (s *LedgerService) DeleteDebt(ctx context.Context, id string) error {
	if err := s.store.DeleteDebt(ctx, id); err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	slog.InfoContext(ctx, "Debt deleted", "id", id)
	return nil
}

// Sinking funds

func (s *LedgerService) ListSinkingFunds(ctx context.Context) ([]core.SinkingFund, error) {
	funds, err := s.store.ListSinkingFunds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sinking funds: %w", err)
	}
	return funds, nil
}

func (s *LedgerService) AddSinkingFund(ctx context.Context, f core.SinkingFund) (core.SinkingFund, error) {
	created, err := s.store.AddSinkingFund(ctx, f)
	if err != nil {
		return core.SinkingFund{}, fmt.Errorf("create sinking fund: %w", err)
	}
	slog.InfoContext(ctx, "Sinking fund added", "id", created.ID, "target", created.TargetAmount, "due", created.DueDate.String())
	return created, nil
}

func (s *LedgerService) DeleteSinkingFund(ctx context.Context, id string) error {
	if err := s.store.DeleteSinkingFund(ctx, id); err != nil {
		return fmt.Errorf("delete sinking fund: %w", err)
	}
	slog.InfoContext(ctx, "Sinking fund deleted", "id", id)
	return nil
}

// Goals

func (s *LedgerService) ListGoals(ctx context.Context) ([]core.FinancialGoal, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (s *LedgerService) AddGoal(ctx context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	created, err := s.store.AddGoal(ctx, g)
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("create goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal added", "id", created.ID, "target", created.TargetAmount)
	return created, nil
}

func (s *LedgerService) UpdateGoalCurrent(ctx context.Context, id string, current int64) (core.FinancialGoal, error) {
	if current < 0 {
		return core.FinancialGoal{}, core.ErrInvalidAmount
	}
	g, err := s.store.UpdateGoalCurrent(ctx, id, current)
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("update goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal updated", "id", id, "current", current, "progress", g.Progress())
	return g, nil
}

func (s *LedgerService) DeleteGoal(ctx context.Context, id string) error {
	if err := s.store.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	slog.InfoContext(ctx, "Goal deleted", "id", id)
	return nil
}

// Assets

func (s *LedgerService) ListAssets(ctx context.Context) ([]core.Asset, error) {
	assets, err := s.store.ListAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return assets, nil
}

func (s *LedgerService) AddAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	created, err := s.store.AddAsset(ctx, a)
	if err != nil {
		return core.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	slog.InfoContext(ctx, "Asset added", "id", created.ID, "value", created.Value)
	return created, nil
}

func (s *LedgerService) DeleteAsset(ctx context.Context, id string) error {
	if err := s.store.DeleteAsset(ctx, id); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	slog.InfoContext(ctx, "Asset deleted", "id", id)
	return nil
}

// Transactions

func (s *LedgerService) ListTransactions(ctx context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// AddTransaction saves locally and then announces it to the journal mirror.
func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	created, err := s.store.AddTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction added",
		"id", created.ID,
		"type", created.Type,
		"category", created.Category,
		"amount", created.Amount)

	s.publish(ctx, created.ID, amqp.OpUpsert)
	return created, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)

	s.publish(ctx, id, amqp.OpDelete)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, id string, op amqp.SyncOp) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, op); err != nil {
		// The scheduled resync picks the row up later.
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "op", op, "error", err)
	}
}

// Menus

func (s *LedgerService) ListMenus(ctx context.Context, t core.MenuType) ([]core.MenuItem, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: menu type %q", core.ErrInvalidType, t)
	}
	menus, err := s.store.ListMenus(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return menus, nil
}

func (s *LedgerService) AddMenu(ctx context.Context, m core.MenuItem) (core.MenuItem, error) {
	created, err := s.store.AddMenu(ctx, m)
	if err != nil {
		return core.MenuItem{}, fmt.Errorf("create menu: %w", err)
	}
	slog.InfoContext(ctx, "Menu item added", "id", created.ID, "type", created.Type, "price", created.Price)
	return created, nil
}

func (s *LedgerService) DeleteMenu(ctx context.Context, id string) error {
	if err := s.store.DeleteMenu(ctx, id); err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	slog.InfoContext(ctx, "Menu item deleted", "id", id)
	return nil
}
