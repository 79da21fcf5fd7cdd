package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anggaran/internal/budget"
	"anggaran/internal/core"
	"anggaran/internal/store/memory"
)

var now = time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)

func seedHousehold(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	l := NewLedgerService(st, nil)

	_, err := l.SetFixedIncome(ctx, 5000000)
	require.NoError(t, err)
	_, err = l.AddDebt(ctx, core.Debt{Name: "Paylater", Amount: 1000000})
	require.NoError(t, err)
	paid, err := l.AddDebt(ctx, core.Debt{Name: "Arisan", Amount: 700000})
	require.NoError(t, err)
	_, err = l.ToggleDebt(ctx, paid.ID)
	require.NoError(t, err)

	_, err = l.AddGoal(ctx, core.FinancialGoal{Name: "Umroh", TargetAmount: 2000000, CurrentAmount: 500000})
	require.NoError(t, err)
	_, err = l.AddAsset(ctx, core.Asset{Name: "Motor", Value: 10000000})
	require.NoError(t, err)
	_, err = l.AddTransaction(ctx, expense("Makan", 210000, 5))
	require.NoError(t, err)
	return st
}

func TestDashboard(t *testing.T) {
	s := NewHouseholdService(seedHousehold(t), nil)

	d, err := s.Dashboard(context.Background(), now)
	require.NoError(t, err)
	require.NotNil(t, d.Plan)

	// 5.000.000 - (1.000.000 debt + 2.875.000 targets) = 1.125.000
	assert.Equal(t, int64(1125000), d.Plan.Summary.Balance)
	assert.Equal(t, budget.LevelGoodEnough, d.Plan.Summary.SurplusLevel)

	assert.Equal(t, int64(10000000+500000-1000000), d.NetWorth)
	require.Len(t, d.Goals, 1)
	assert.Equal(t, 25, d.Goals[0].Progress)

	require.Len(t, d.Categories, len(core.Categories))
	meal := d.Categories[0]
	assert.Equal(t, core.CategoryMeal, meal.Key)
	assert.Equal(t, "Makan", meal.Label)
	assert.Equal(t, int64(1950000), meal.Amount)
	assert.Equal(t, int64(210000), meal.Spent)
	assert.Equal(t, int64(1740000), meal.Remaining)
	assert.Equal(t, int64(11), meal.PercentUsed)
	assert.Equal(t, 17, meal.DaysLeft)
	assert.Equal(t, int64(102352), meal.DailyRemaining)
	assert.Equal(t, budget.StatusBoosted, meal.Note.Status)

	for _, c := range d.Categories {
		if c.Key == core.CategoryElectricity {
			assert.True(t, c.Monthly)
			assert.Zero(t, c.DaysLeft)
			assert.Zero(t, c.DailyRemaining)
		}
	}
}

func TestDashboardWithoutIncome(t *testing.T) {
	s := NewHouseholdService(memory.New(), nil)

	d, err := s.Dashboard(context.Background(), now)
	require.NoError(t, err)
	assert.Nil(t, d.Plan)
	assert.NotNil(t, d.Categories)
	assert.Empty(t, d.Categories)
}

type brokenDebts struct {
	*memory.Store
}

func (brokenDebts) ListDebts(context.Context) ([]core.Debt, error) {
	return nil, errors.New("database is locked")
}

func TestDashboardStoreFailure(t *testing.T) {
	s := NewHouseholdService(brokenDebts{memory.New()}, nil)

	_, err := s.Dashboard(context.Background(), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list debts")
	assert.Contains(t, err.Error(), "database is locked")
}

func TestBudgetInput(t *testing.T) {
	in := BudgetInput([]core.Income{
		{Kind: core.IncomeFixed, Amount: 4000000},
		{Kind: core.IncomeAdditional, Amount: 250000},
		{Kind: core.IncomeAdditional, Amount: 50000},
	}, nil, nil, nil, now)

	assert.Equal(t, int64(4000000), in.FixedIncome)
	assert.Len(t, in.AdditionalIncomes, 2)
	assert.Equal(t, now, in.Now)
}

func TestPercentUsed(t *testing.T) {
	tests := []struct {
		spent, amount, want int64
	}{
		{0, 0, 0},
		{500, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{300, 200, 150},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, percentUsed(tt.spent, tt.amount), "percentUsed(%d, %d)", tt.spent, tt.amount)
	}
}

func TestKitchen(t *testing.T) {
	s := NewHouseholdService(seedHousehold(t), nil)
	ctx := context.Background()

	view, err := s.Kitchen(ctx, now, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Today)
	assert.Equal(t, 3, view.Index)
	assert.Equal(t, 4, view.Meal.Day)
	assert.Equal(t, int64(1740000), view.Forecast.Remaining)
	assert.Equal(t, int64(102352), view.Forecast.DailyLimit)

	day := 6
	view, err = s.Kitchen(ctx, now, &day)
	require.NoError(t, err)
	assert.Equal(t, 7, view.Meal.Day)
	assert.True(t, view.Leftover)

	day = 12
	view, err = s.Kitchen(ctx, now, &day)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Index)
}

func TestAnalytics(t *testing.T) {
	s := NewHouseholdService(seedHousehold(t), nil)

	report, err := s.Analytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5000000), report.TotalIncome)
	require.Len(t, report.Categories, 1)
	assert.Equal(t, "Makan", report.Categories[0].Name)
	assert.InDelta(t, 4.2, report.Categories[0].Percent, 0.001)
}

func TestCustomPolicy(t *testing.T) {
	p := budget.DefaultPolicy()
	p.Targets[core.CategoryElectricity] = 300000
	a, err := budget.NewAllocator(p)
	require.NoError(t, err)

	s := NewHouseholdService(seedHousehold(t), a)
	plan, err := s.Budget(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), plan.Allocations[core.CategoryElectricity])
	assert.Equal(t, int64(300000), s.Policy().Targets[core.CategoryElectricity])
}
