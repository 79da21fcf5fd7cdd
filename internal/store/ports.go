// Package store declares the row-store ports: one collection per entity, each
// call an independent round trip with no multi-row transaction semantics.
package store

import (
	"context"

	"anggaran/internal/core"
)

// TransactionFilter narrows ListTransactions. Zero values match everything.
type TransactionFilter struct {
	Type core.TransactionType
	// Search matches the description case-insensitively.
	Search string
	Limit  int
}

// Matches reports whether tx passes the filter, ignoring Limit.
func (f TransactionFilter) Matches(tx core.Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Search == "" {
		return true
	}
	return containsFold(tx.Description, f.Search)
}

type (
	IncomeStore interface {
		ListIncomes(ctx context.Context) ([]core.Income, error)
		// FixedIncome returns core.ErrNotFound when no FIXED row exists.
		FixedIncome(ctx context.Context) (core.Income, error)
		AddIncome(ctx context.Context, inc core.Income) (core.Income, error)
		UpdateIncomeAmount(ctx context.Context, id string, amount int64) (core.Income, error)
		DeleteIncome(ctx context.Context, id string) error
	}

	DebtStore interface {
		// ListDebts returns unpaid debts first.
		ListDebts(ctx context.Context) ([]core.Debt, error)
		GetDebt(ctx context.Context, id string) (core.Debt, error)
		AddDebt(ctx context.Context, d core.Debt) (core.Debt, error)
		SetDebtPaid(ctx context.Context, id string, paid bool) (core.Debt, error)
		DeleteDebt(ctx context.Context, id string) error
	}

	SinkingFundStore interface {
		ListSinkingFunds(ctx context.Context) ([]core.SinkingFund, error)
		AddSinkingFund(ctx context.Context, f core.SinkingFund) (core.SinkingFund, error)
		DeleteSinkingFund(ctx context.Context, id string) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context) ([]core.FinancialGoal, error)
		AddGoal(ctx context.Context, g core.FinancialGoal) (core.FinancialGoal, error)
		UpdateGoalCurrent(ctx context.Context, id string, current int64) (core.FinancialGoal, error)
		DeleteGoal(ctx context.Context, id string) error
	}

	AssetStore interface {
		ListAssets(ctx context.Context) ([]core.Asset, error)
		AddAsset(ctx context.Context, a core.Asset) (core.Asset, error)
		DeleteAsset(ctx context.Context, id string) error
	}

	TransactionStore interface {
		// ListTransactions returns newest first by date, then creation time.
		ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	// SyncTracker records which transactions reached the journal mirror.
	SyncTracker interface {
		ListUnsynced(ctx context.Context, limit int) ([]core.Transaction, error)
		MarkSynced(ctx context.Context, id string) error
	}

	MenuStore interface {
		// ListMenus returns items of the given type ordered by name.
		ListMenus(ctx context.Context, t core.MenuType) ([]core.MenuItem, error)
		AddMenu(ctx context.Context, m core.MenuItem) (core.MenuItem, error)
		DeleteMenu(ctx context.Context, id string) error
	}

	ProfileStore interface {
		// ListProfiles returns profiles ordered by role.
		ListProfiles(ctx context.Context) ([]core.Profile, error)
		GetProfile(ctx context.Context, id string) (core.Profile, error)
		UpsertProfile(ctx context.Context, p core.Profile) (core.Profile, error)
	}

	UserStore interface {
		// CreateUser returns core.ErrConflict when the email is taken.
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		UserByEmail(ctx context.Context, email string) (core.User, error)
		GetUser(ctx context.Context, id string) (core.User, error)
	}

	// Store is every collection behind one backend.
	Store interface {
		IncomeStore
		DebtStore
		SinkingFundStore
		GoalStore
		AssetStore
		TransactionStore
		SyncTracker
		MenuStore
		ProfileStore
		UserStore
		Ping(ctx context.Context) error
		Close() error
	}
)
