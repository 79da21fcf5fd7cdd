package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anggaran/internal/core"
)

var now = time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)

const defaultTargetSum = 2875000

func expense(day int, category string, amount int64) core.Transaction {
	return core.Transaction{
		Date:     core.NewDate(2026, 10, day),
		Type:     core.TypeExpense,
		Category: category,
		Amount:   amount,
	}
}

func TestCalculate_ZeroIncomeReturnsNil(t *testing.T) {
	assert.Nil(t, Calculate(Input{Now: now}))
	assert.Nil(t, Calculate(Input{
		AdditionalIncomes: []core.Income{{Kind: core.IncomeAdditional, Amount: 0}},
		Debts:             []core.Debt{{Amount: 500000}},
		Now:               now,
	}))
}

func TestCalculate_Identities(t *testing.T) {
	inputs := []Input{
		{FixedIncome: 5000000, Now: now},
		{FixedIncome: 875000, Now: now},
		{FixedIncome: 1000000, Debts: []core.Debt{{Amount: 2000000}}, Now: now},
		{
			FixedIncome:       3000000,
			AdditionalIncomes: []core.Income{{Amount: 250000}, {Amount: 125000}},
			Debts:             []core.Debt{{Amount: 300000}, {Amount: 900000, IsPaid: true}},
			SinkingFunds: []core.SinkingFund{
				{ID: "a", Name: "Lebaran", TargetAmount: 3000000, CurrentAmount: 500000, DueDate: core.NewDate(2027, 3, 1)},
			},
			Now: now,
		},
	}

	for _, in := range inputs {
		plan := Calculate(in)
		require.NotNil(t, plan)

		var targets int64
		for _, c := range core.Categories {
			targets += plan.OperationalTargets[c]
		}
		assert.Equal(t, plan.TotalDebtObligation+plan.TotalSinkingFundMonthly+targets, plan.Summary.TotalNeeds)
		assert.Equal(t, plan.Summary.Income-plan.Summary.TotalNeeds, plan.Summary.Balance)

		for _, c := range core.Categories {
			if c == core.CategoryTransport {
				continue
			}
			assert.GreaterOrEqual(t, plan.Allocations[c], int64(0), "allocation for %s", c)
		}
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	in := Input{
		FixedIncome:  4200000,
		Debts:        []core.Debt{{ID: "d1", Name: "Motor", Amount: 600000}},
		SinkingFunds: []core.SinkingFund{{ID: "f1", Name: "Sekolah", TargetAmount: 1000000, DueDate: core.NewDate(2027, 1, 10)}},
		Transactions: []core.Transaction{expense(3, "makan", 40000), expense(5, "Bensin", 20000)},
		Now:          now,
	}
	assert.Equal(t, Calculate(in), Calculate(in))
}

func TestCalculate_TierBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		level   SurplusLevel
		charity int64
		meal    int64
		misc    int64
	}{
		{name: "exactly very good", balance: 2000000, level: LevelVeryGood, charity: 100000, meal: 2100000, misc: 250000 + 450000},
		{name: "just below very good", balance: 1999999, level: LevelGoodEnough, charity: 75000, meal: 1950000, misc: 250000 + 1999999 - 325000},
		{name: "exactly good enough", balance: 500000, level: LevelGoodEnough, charity: 75000, meal: 1950000, misc: 425000},
		{name: "just below good enough", balance: 499999, level: LevelAdequate, charity: 50000, meal: 1650000, misc: 749999},
		{name: "exactly zero", balance: 0, level: LevelAdequate, charity: 50000, meal: 1650000, misc: 250000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Calculate(Input{FixedIncome: defaultTargetSum + tt.balance, Now: now})
			require.NotNil(t, plan)

			assert.Equal(t, tt.balance, plan.Summary.Balance)
			assert.False(t, plan.Summary.IsDanger)
			assert.Empty(t, plan.Summary.ActionNeeded)
			assert.Equal(t, tt.level, plan.Summary.SurplusLevel)
			assert.Equal(t, tt.charity, plan.Allocations[core.CategoryCharity])
			assert.Equal(t, tt.meal, plan.Allocations[core.CategoryMeal])
			assert.Equal(t, tt.misc, plan.Allocations[core.CategoryMisc])
		})
	}
}

func TestCalculate_VeryGoodScenario(t *testing.T) {
	plan := Calculate(Input{FixedIncome: 5000000, Now: now})
	require.NotNil(t, plan)

	assert.Equal(t, int64(defaultTargetSum), plan.Summary.TotalNeeds)
	assert.Equal(t, int64(2125000), plan.Summary.Balance)
	assert.Equal(t, "LEVEL SANGAT BAIK (Surplus Rp 2.125.000)", plan.Summary.Message)

	// 2.125.000 minus the 50.000 charity and 450.000 meal boosts leaves 1.625.000.
	assert.Equal(t, int64(100000), plan.Allocations[core.CategoryCharity])
	assert.Equal(t, int64(2100000), plan.Allocations[core.CategoryMeal])
	assert.Equal(t, int64(650000), plan.Allocations[core.CategoryInvestment])
	assert.Equal(t, int64(487500), plan.Allocations[core.CategoryDebtPayoff])
	assert.Equal(t, int64(250000+487500), plan.Allocations[core.CategoryMisc])

	assert.Equal(t, Note{Source: "Upgrade Level", Formula: "Cap Max 100rb", Status: StatusBoosted}, plan.Notes["infaq"])
	assert.Equal(t, Note{Source: "Upgrade Level", Formula: "Limit Rp 70.000", Status: StatusBoosted}, plan.Notes["makan"])
	assert.Equal(t, Note{Source: "Surplus", Formula: "40% Sisa", Status: StatusNew}, plan.Notes["investasi"])
	assert.Equal(t, Note{Source: "Surplus", Formula: "30% Sisa", Status: StatusNew}, plan.Notes["hutang_extra"])
	assert.Equal(t, Note{Source: "Surplus", Formula: "30% Sisa", Status: StatusSaved}, plan.Notes["lainnya"])
	assert.Equal(t, Note{Source: "Target RABK", Formula: "Standar kebutuhan.", Status: StatusNormal}, plan.Notes["listrik"])

	require.Len(t, plan.Summary.Advice, 1)
	assert.Equal(t, Advice{Title: "Isi Brankas", Amount: 650000 + 487500, Note: "Masuk ke Goals."}, plan.Summary.Advice[0])

	// Operational targets are never modified by the tiers.
	assert.Equal(t, int64(50000), plan.OperationalTargets[core.CategoryCharity])
	assert.Equal(t, int64(1650000), plan.OperationalTargets[core.CategoryMeal])
}

func TestCalculate_DeficitCutOrder(t *testing.T) {
	plan := Calculate(Input{FixedIncome: defaultTargetSum - 2000000, Now: now})
	require.NotNil(t, plan)

	assert.Equal(t, int64(-2000000), plan.Summary.Balance)
	assert.True(t, plan.Summary.IsDanger)
	assert.Equal(t, ActionSearchIncome, plan.Summary.ActionNeeded)
	assert.Equal(t, "BAHAYA! Defisit Rp 2.000.000", plan.Summary.Message)
	assert.Empty(t, plan.Summary.SurplusLevel)

	assert.Equal(t, int64(0), plan.Allocations[core.CategoryMisc])
	assert.Equal(t, int64(0), plan.Allocations[core.CategoryInternet])
	assert.Equal(t, int64(0), plan.Allocations[core.CategoryCharity])
	assert.Equal(t, int64(150000), plan.Allocations[core.CategorySchool])
	assert.Equal(t, int64(1000000), plan.Allocations[core.CategoryMeal])
	// 2.000.000 - 1.200.000 of cuts leaves 800.000 for transport.
	assert.Equal(t, int64(375000-800000), plan.Allocations[core.CategoryTransport])
	assert.Equal(t, int64(150000), plan.Allocations[core.CategoryElectricity])

	assert.Equal(t, Note{Source: "Defisit", Formula: "Dipotong.", Status: StatusCut}, plan.Notes["lainnya"])
	assert.Equal(t, Note{Source: "Defisit", Formula: "Internet diputus.", Status: StatusCut}, plan.Notes["internet"])
	assert.Equal(t, Note{Source: "Defisit", Formula: "Ditiadakan.", Status: StatusCut}, plan.Notes["infaq"])
	assert.Equal(t, Note{Source: "Defisit", Formula: "Ditekan 50%.", Status: StatusCut}, plan.Notes["saku_sekolah"])
	assert.Equal(t, Note{Source: "Defisit", Formula: "Menu darurat.", Status: StatusCut}, plan.Notes["makan"])
	assert.Equal(t, Note{Source: "Defisit", Formula: "Terpaksa dipotong.", Status: StatusCritical}, plan.Notes["mobilitas"])
}

func TestCalculate_SmallDeficitStopsEarly(t *testing.T) {
	plan := Calculate(Input{FixedIncome: defaultTargetSum - 300000, Now: now})
	require.NotNil(t, plan)

	assert.Equal(t, int64(0), plan.Allocations[core.CategoryMisc])
	assert.Equal(t, int64(50000), plan.Allocations[core.CategoryInternet])
	assert.Equal(t, int64(50000), plan.Allocations[core.CategoryCharity])
	assert.Equal(t, StatusCut, plan.Notes["internet"].Status)
	assert.Equal(t, StatusNormal, plan.Notes["infaq"].Status)
	assert.Equal(t, int64(375000), plan.Allocations[core.CategoryTransport])
	assert.Equal(t, StatusNormal, plan.Notes["mobilitas"].Status)
}

func TestCalculate_SellAsset(t *testing.T) {
	plan := Calculate(Input{
		FixedIncome: 1000000,
		Debts:       []core.Debt{{ID: "d1", Name: "Pinjol", Amount: 2000000}},
		Now:         now,
	})
	require.NotNil(t, plan)

	assert.Equal(t, int64(2000000), plan.TotalDebtObligation)
	assert.Len(t, plan.ActiveDebts, 1)
	assert.Equal(t, ActionSellAsset, plan.Summary.ActionNeeded)
	assert.Equal(t, "KRITIS! Defisit Rp 3.875.000", plan.Summary.Message)
}

func TestCalculate_PaidDebtsIgnored(t *testing.T) {
	plan := Calculate(Input{
		FixedIncome: 5000000,
		Debts:       []core.Debt{{Amount: 700000, IsPaid: true}, {Amount: 100000}},
		Now:         now,
	})
	require.NotNil(t, plan)
	assert.Equal(t, int64(100000), plan.TotalDebtObligation)
	assert.Len(t, plan.ActiveDebts, 1)
}

func TestCalculate_SinkingFund(t *testing.T) {
	plan := Calculate(Input{
		FixedIncome: 5000000,
		SinkingFunds: []core.SinkingFund{
			{ID: "f1", Name: "Service Motor", TargetAmount: 1200000, DueDate: core.NewDate(2026, 11, 14)},
			{ID: "f2", Name: "Telat", TargetAmount: 400000, CurrentAmount: 100000, DueDate: core.NewDate(2026, 1, 1)},
			{ID: "f3", Name: "Lunas", TargetAmount: 400000, CurrentAmount: 500000, DueDate: core.NewDate(2027, 1, 1)},
		},
		Now: now,
	})
	require.NotNil(t, plan)

	assert.Equal(t, FundAllocation{Name: "Service Motor", Amount: 1200000, MonthsLeft: 1, Target: 1200000}, plan.SinkingFundAllocations["f1"])
	assert.Equal(t, FundAllocation{Name: "Telat", Amount: 300000, MonthsLeft: 1, Target: 400000}, plan.SinkingFundAllocations["f2"])
	assert.Equal(t, int64(0), plan.SinkingFundAllocations["f3"].Amount)
	assert.Equal(t, int64(1500000), plan.TotalSinkingFundMonthly)
	assert.Equal(t, Note{Source: "Sinking Fund", Formula: "Target / 1 bln", Status: StatusSaved}, plan.Notes["sf_f1"])
}

func TestCalculate_Spending(t *testing.T) {
	plan := Calculate(Input{
		FixedIncome: 3000000,
		Transactions: []core.Transaction{
			expense(1, "makan", 20000),
			expense(2, "Makan", 5000),
			expense(3, "Saku Sekolah", 10000),
			expense(4, "Jajan", 7000),
			expense(5, "Jajan", 3000),
			expense(6, "MAKAN", 1000),
			{Date: core.NewDate(2026, 10, 7), Type: core.TypeIncome, Category: "makan", Amount: 99000},
			{Date: core.NewDate(2026, 9, 30), Type: core.TypeExpense, Category: "makan", Amount: 50000},
		},
		Now: now,
	})
	require.NotNil(t, plan)

	assert.Equal(t, int64(25000), plan.Spending[core.CategoryMeal])
	assert.Equal(t, int64(10000), plan.Spending[core.CategorySchool])
	assert.Equal(t, int64(11000), plan.Spending[core.CategoryMisc])
	assert.Equal(t, int64(0), plan.Spending[core.CategoryInternet])
	assert.Equal(t, []string{"Jajan", "MAKAN"}, plan.UnmatchedCategories)
	assert.Equal(t, plan.Allocations[core.CategoryMeal]-25000, plan.Remaining(core.CategoryMeal))
}

func TestSplitSurplus(t *testing.T) {
	split := SurplusSplit{Investment: 40, DebtPayoff: 30, Misc: 30}

	tests := []struct {
		amount             int64
		invest, debt, misc int64
	}{
		{amount: 1625000, invest: 650000, debt: 487500, misc: 487500},
		{amount: 101, invest: 40, debt: 30, misc: 31},
		{amount: 1, invest: 0, debt: 0, misc: 1},
		{amount: 0},
	}
	for _, tt := range tests {
		invest, debt, misc := splitSurplus(tt.amount, split)
		assert.Equal(t, tt.invest, invest)
		assert.Equal(t, tt.debt, debt)
		assert.Equal(t, tt.misc, misc)
		assert.Equal(t, tt.amount, invest+debt+misc)
	}
}

func TestMonthsRemaining(t *testing.T) {
	tests := []struct {
		due  core.Date
		want int
	}{
		{core.NewDate(2026, 11, 1), 1},
		{core.NewDate(2027, 10, 1), 12},
		{core.NewDate(2026, 10, 31), 1},
		{core.NewDate(2025, 1, 1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.due.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsRemaining(now, tt.due))
		})
	}
}

func TestMonthlyContribution(t *testing.T) {
	assert.Equal(t, int64(334), MonthlyContribution(1000, 0, 3))
	assert.Equal(t, int64(1200000), MonthlyContribution(1200000, 0, 1))
	assert.Equal(t, int64(0), MonthlyContribution(100, 200, 2))
	assert.Equal(t, int64(100), MonthlyContribution(100, 0, 0))
}

func TestNewAllocator_CustomPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.Targets[core.CategoryInternet] = 200000

	a, err := NewAllocator(p)
	require.NoError(t, err)

	plan := a.Calculate(Input{FixedIncome: defaultTargetSum + 100000, Now: now})
	require.NotNil(t, plan)
	assert.Equal(t, int64(0), plan.Summary.Balance)
	assert.Equal(t, int64(200000), plan.Allocations[core.CategoryInternet])

	// Mutating the caller's copy does not leak into the allocator.
	p.Targets[core.CategoryInternet] = 1
	assert.Equal(t, int64(200000), a.Policy().Targets[core.CategoryInternet])
}

func TestNewAllocator_InvalidPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.Split.Misc = 10
	_, err := NewAllocator(p)
	assert.ErrorContains(t, err, "surplus split must sum to 100")
}
