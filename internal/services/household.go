package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"anggaran/internal/analytics"
	"anggaran/internal/budget"
	"anggaran/internal/core"
	"anggaran/internal/kitchen"
	"anggaran/internal/store"
)

// CategoryDetail is one dashboard card.
type CategoryDetail struct {
	Key         core.Category `json:"key"`
	Label       string        `json:"label"`
	Amount      int64         `json:"amount"`
	Spent       int64         `json:"spent"`
	Remaining   int64         `json:"remaining"`
	PercentUsed int64         `json:"percent_used"`
	Monthly     bool          `json:"monthly"`
	// Daily forecast, only for categories spent day by day.
	DaysLeft       int         `json:"days_left,omitempty"`
	DailyRemaining int64       `json:"daily_remaining,omitempty"`
	Note           budget.Note `json:"note"`
}

type GoalProgress struct {
	core.FinancialGoal
	Progress int `json:"progress"`
}

// Dashboard is everything the home screen shows. Plan is nil when no income
// has been entered.
type Dashboard struct {
	Plan       *budget.Plan     `json:"plan"`
	NetWorth   int64            `json:"net_worth"`
	Goals      []GoalProgress   `json:"goals"`
	Assets     []core.Asset     `json:"assets"`
	Categories []CategoryDetail `json:"categories"`
}

// KitchenView is one rotation day with the live food forecast.
type KitchenView struct {
	Index    int              `json:"index"`
	Meal     kitchen.Meal     `json:"meal"`
	Leftover bool             `json:"leftover"`
	Today    int              `json:"today"`
	Forecast kitchen.Forecast `json:"forecast"`
}

// HouseholdService derives read models from the whole household.
type HouseholdService struct {
	store     store.Store
	allocator *budget.Allocator
}

// NewHouseholdService uses the default policy when allocator is nil.
func NewHouseholdService(st store.Store, allocator *budget.Allocator) *HouseholdService {
	if allocator == nil {
		allocator, _ = budget.NewAllocator(budget.DefaultPolicy())
	}
	return &HouseholdService{store: st, allocator: allocator}
}

// Policy is the policy the allocator applies.
func (s *HouseholdService) Policy() budget.Policy {
	return s.allocator.Policy()
}

type snapshot struct {
	incomes      []core.Income
	debts        []core.Debt
	funds        []core.SinkingFund
	goals        []core.FinancialGoal
	assets       []core.Asset
	transactions []core.Transaction
}

// load fetches every collection concurrently. The first failure cancels the
// rest.
func (s *HouseholdService) load(ctx context.Context) (*snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.incomes, err = s.store.ListIncomes(ctx)
		return wrap("list incomes", err)
	})
	g.Go(func() (err error) {
		snap.debts, err = s.store.ListDebts(ctx)
		return wrap("list debts", err)
	})
	g.Go(func() (err error) {
		snap.funds, err = s.store.ListSinkingFunds(ctx)
		return wrap("list sinking funds", err)
	})
	g.Go(func() (err error) {
		snap.goals, err = s.store.ListGoals(ctx)
		return wrap("list goals", err)
	})
	g.Go(func() (err error) {
		snap.assets, err = s.store.ListAssets(ctx)
		return wrap("list assets", err)
	})
	g.Go(func() (err error) {
		snap.transactions, err = s.store.ListTransactions(ctx, store.TransactionFilter{})
		return wrap("list transactions", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// BudgetInput splits incomes into the fixed amount and the additional rows.
func BudgetInput(incomes []core.Income, debts []core.Debt, funds []core.SinkingFund, txs []core.Transaction, now time.Time) budget.Input {
	in := budget.Input{
		Debts:        debts,
		SinkingFunds: funds,
		Transactions: txs,
		Now:          now,
	}
	for _, inc := range incomes {
		if inc.Kind == core.IncomeFixed {
			in.FixedIncome += inc.Amount
			continue
		}
		in.AdditionalIncomes = append(in.AdditionalIncomes, inc)
	}
	return in
}

func (s *HouseholdService) plan(snap *snapshot, now time.Time) *budget.Plan {
	return s.allocator.Calculate(BudgetInput(snap.incomes, snap.debts, snap.funds, snap.transactions, now))
}

// Budget runs the allocator over the current collections.
func (s *HouseholdService) Budget(ctx context.Context, now time.Time) (*budget.Plan, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.plan(snap, now), nil
}

func (s *HouseholdService) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Plan:     s.plan(snap, now),
		NetWorth: core.NetWorth(snap.assets, snap.goals, snap.debts),
		Goals:    make([]GoalProgress, 0, len(snap.goals)),
		Assets:   snap.assets,
	}
	for _, g := range snap.goals {
		d.Goals = append(d.Goals, GoalProgress{FinancialGoal: g, Progress: g.Progress()})
	}
	d.Categories = CategoryDetails(d.Plan, now)
	return d, nil
}

// CategoryDetails builds one card per category in display order. A nil plan
// yields no cards.
func CategoryDetails(plan *budget.Plan, now time.Time) []CategoryDetail {
	out := []CategoryDetail{}
	if plan == nil {
		return out
	}
	daysLeft := kitchen.DaysLeft(now)
	for _, c := range core.Categories {
		amount := plan.Allocations[c]
		spent := plan.Spending[c]
		cd := CategoryDetail{
			Key:         c,
			Label:       c.Label(),
			Amount:      amount,
			Spent:       spent,
			Remaining:   amount - spent,
			PercentUsed: percentUsed(spent, amount),
			Monthly:     c.IsMonthly(),
			Note:        plan.Notes[string(c)],
		}
		if !cd.Monthly {
			cd.DaysLeft = daysLeft
			if cd.Remaining > 0 {
				cd.DailyRemaining = cd.Remaining / int64(daysLeft)
			}
		}
		out = append(out, cd)
	}
	return out
}

func percentUsed(spent, amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	return decimal.NewFromInt(spent).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(amount)).
		Round(0).
		IntPart()
}

// Analytics summarizes all incomes and expenses on record.
func (s *HouseholdService) Analytics(ctx context.Context) (analytics.Report, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.Summarize(snap.incomes, snap.transactions), nil
}

// Kitchen shows rotation day index (today's when nil) with the food forecast.
func (s *HouseholdService) Kitchen(ctx context.Context, now time.Time, index *int) (KitchenView, error) {
	plan, err := s.Budget(ctx, now)
	if err != nil {
		return KitchenView{}, err
	}
	today := kitchen.CycleDay(now)
	i := today
	if index != nil {
		i = *index
	}
	meal := kitchen.MealAt(i)
	return KitchenView{
		Index:    meal.Day - 1,
		Meal:     meal,
		Leftover: meal.Leftover(),
		Today:    today,
		Forecast: kitchen.NewForecast(plan, now),
	}, nil
}
