// Package budget redistributes a household's monthly income across spending
// categories.
//
// The allocator is a pure function of its Input: it never reads the clock,
// never performs I/O and never fails. A deficit is a classified outcome
// carried in Summary, not an error.
package budget

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"anggaran/internal/core"
)

type (
	Status       string
	SurplusLevel string
	Action       string
)

const (
	StatusNormal   Status = "Normal"
	StatusBoosted  Status = "Boosted"
	StatusNew      Status = "New"
	StatusSaved    Status = "Saved"
	StatusCut      Status = "Cut"
	StatusCritical Status = "Critical"

	LevelVeryGood   SurplusLevel = "SANGAT_BAIK"
	LevelGoodEnough SurplusLevel = "CUKUP_BAIK"
	LevelAdequate   SurplusLevel = "BAIK"

	ActionSellAsset    Action = "SELL_ASSET"
	ActionSearchIncome Action = "SEARCH_INCOME"
)

// FundNotePrefix prefixes sinking fund ids in Plan.Notes.
const FundNotePrefix = "sf_"

// Input is everything the allocator looks at.
type Input struct {
	FixedIncome       int64
	AdditionalIncomes []core.Income
	Debts             []core.Debt
	SinkingFunds      []core.SinkingFund
	Transactions      []core.Transaction
	// Now decides the current month and the sinking fund horizons.
	Now time.Time
}

// Note explains why an allocation has its value.
type Note struct {
	Source  string `json:"source"`
	Formula string `json:"formula"`
	Status  Status `json:"status"`
}

type FundAllocation struct {
	Name       string `json:"name"`
	Amount     int64  `json:"amount"`
	MonthsLeft int    `json:"months_left"`
	Target     int64  `json:"target"`
}

type Advice struct {
	Title  string `json:"title"`
	Amount int64  `json:"amount"`
	Note   string `json:"note"`
}

type Summary struct {
	Income       int64        `json:"income"`
	TotalNeeds   int64        `json:"total_needs"`
	Balance      int64        `json:"balance"`
	IsDanger     bool         `json:"is_danger"`
	Message      string       `json:"message"`
	ActionNeeded Action       `json:"action_needed,omitempty"`
	SurplusLevel SurplusLevel `json:"surplus_level,omitempty"`
	Advice       []Advice     `json:"advice"`
}

// Plan is the allocator output for one month.
type Plan struct {
	OperationalTargets      map[core.Category]int64   `json:"operational_targets"`
	Allocations             map[core.Category]int64   `json:"allocations"`
	Spending                map[core.Category]int64   `json:"spending"`
	TotalDebtObligation     int64                     `json:"total_debt_obligation"`
	ActiveDebts             []core.Debt               `json:"active_debts"`
	Notes                   map[string]Note           `json:"notes"`
	SinkingFundAllocations  map[string]FundAllocation `json:"sinking_fund_allocations"`
	TotalSinkingFundMonthly int64                     `json:"total_sinking_fund_monthly"`
	// UnmatchedCategories lists raw expense categories that fell back to
	// the miscellaneous bucket.
	UnmatchedCategories []string `json:"unmatched_categories"`
	Summary             Summary  `json:"summary"`
}

// Remaining is what is left to spend in c this month.
func (p *Plan) Remaining(c core.Category) int64 {
	return p.Allocations[c] - p.Spending[c]
}

// Allocator applies a Policy.
type Allocator struct {
	policy Policy
}

// NewAllocator validates p and returns an allocator bound to it.
func NewAllocator(p Policy) (*Allocator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Allocator{policy: p.Clone()}, nil
}

// Policy returns a copy of the policy in use.
func (a *Allocator) Policy() Policy {
	return a.policy.Clone()
}

var defaultAllocator = &Allocator{policy: DefaultPolicy()}

// Calculate runs the default household policy.
func Calculate(in Input) *Plan {
	return defaultAllocator.Calculate(in)
}

// Calculate returns nil when total income is zero.
func (a *Allocator) Calculate(in Input) *Plan {
	p := a.policy

	totalIncome := nonNegative(in.FixedIncome)
	for _, inc := range in.AdditionalIncomes {
		totalIncome += nonNegative(inc.Amount)
	}
	if totalIncome == 0 {
		return nil
	}

	plan := &Plan{
		OperationalTargets:     make(map[core.Category]int64, len(core.Categories)),
		Allocations:            make(map[core.Category]int64, len(core.Categories)),
		Spending:               make(map[core.Category]int64, len(core.Categories)),
		ActiveDebts:            []core.Debt{},
		Notes:                  make(map[string]Note),
		SinkingFundAllocations: make(map[string]FundAllocation),
		UnmatchedCategories:    []string{},
	}

	for _, c := range core.Categories {
		plan.Spending[c] = 0
	}
	a.aggregateSpending(plan, in)

	for _, d := range in.Debts {
		if d.IsPaid {
			continue
		}
		plan.ActiveDebts = append(plan.ActiveDebts, d)
		plan.TotalDebtObligation += nonNegative(d.Amount)
	}

	for _, f := range in.SinkingFunds {
		months := MonthsRemaining(in.Now, f.DueDate)
		monthly := MonthlyContribution(f.TargetAmount, f.CurrentAmount, months)
		plan.TotalSinkingFundMonthly += monthly
		plan.SinkingFundAllocations[f.ID] = FundAllocation{
			Name:       f.Name,
			Amount:     monthly,
			MonthsLeft: months,
			Target:     f.TargetAmount,
		}
	}

	for _, c := range core.Categories {
		plan.OperationalTargets[c] = p.Target(c)
		plan.Allocations[c] = p.Target(c)
		plan.Notes[string(c)] = Note{Source: "Target RABK", Formula: "Standar kebutuhan.", Status: StatusNormal}
	}
	for id, fa := range plan.SinkingFundAllocations {
		plan.Notes[FundNotePrefix+id] = Note{
			Source:  "Sinking Fund",
			Formula: fmt.Sprintf("Target / %d bln", fa.MonthsLeft),
			Status:  StatusSaved,
		}
	}

	hardFixedCost := plan.TotalDebtObligation + plan.TotalSinkingFundMonthly + p.Target(core.CategoryElectricity)
	totalNeeds := plan.TotalDebtObligation + plan.TotalSinkingFundMonthly + p.TotalTargets()
	balance := totalIncome - totalNeeds

	plan.Summary = Summary{
		Income:     totalIncome,
		TotalNeeds: totalNeeds,
		Balance:    balance,
		Advice:     []Advice{},
	}

	if balance >= 0 {
		a.distributeSurplus(plan, balance)
	} else {
		a.absorbDeficit(plan, -balance, totalIncome < hardFixedCost)
	}

	return plan
}

func (a *Allocator) aggregateSpending(plan *Plan, in Input) {
	month := in.Now.Format("2006-01")
	seen := map[string]bool{}
	for _, tx := range in.Transactions {
		if tx.Type != core.TypeExpense || tx.Date.IsZero() || tx.Date.YearMonth() != month {
			continue
		}
		c, matched := core.MatchCategory(tx.Category)
		plan.Spending[c] += tx.Amount
		if !matched && !seen[tx.Category] {
			seen[tx.Category] = true
			plan.UnmatchedCategories = append(plan.UnmatchedCategories, tx.Category)
		}
	}
}

func (a *Allocator) distributeSurplus(plan *Plan, balance int64) {
	p := a.policy
	surplus := core.FormatNumber(balance)
	remaining := balance

	boost := func(t Tier) {
		plan.Allocations[core.CategoryCharity] = t.CharityTarget
		remaining -= t.CharityTarget - p.Target(core.CategoryCharity)
		plan.Notes[string(core.CategoryCharity)] = Note{Source: "Upgrade Level", Formula: t.CharityNote, Status: StatusBoosted}

		plan.Allocations[core.CategoryMeal] = t.MealTarget
		remaining -= t.MealTarget - p.Target(core.CategoryMeal)
		plan.Notes[string(core.CategoryMeal)] = Note{Source: "Upgrade Level", Formula: t.MealNote, Status: StatusBoosted}
	}

	switch {
	case balance >= p.VeryGood.Threshold:
		plan.Summary.SurplusLevel = LevelVeryGood
		plan.Summary.Message = fmt.Sprintf("LEVEL SANGAT BAIK (Surplus Rp %s)", surplus)
		boost(p.VeryGood)

		invest, debtPayoff, misc := splitSurplus(remaining, p.Split)
		plan.Allocations[core.CategoryInvestment] += invest
		plan.Allocations[core.CategoryDebtPayoff] += debtPayoff
		plan.Allocations[core.CategoryMisc] += misc
		plan.Notes[string(core.CategoryInvestment)] = Note{Source: "Surplus", Formula: fmt.Sprintf("%d%% Sisa", p.Split.Investment), Status: StatusNew}
		plan.Notes[string(core.CategoryDebtPayoff)] = Note{Source: "Surplus", Formula: fmt.Sprintf("%d%% Sisa", p.Split.DebtPayoff), Status: StatusNew}
		plan.Notes[string(core.CategoryMisc)] = Note{Source: "Surplus", Formula: fmt.Sprintf("%d%% Sisa", p.Split.Misc), Status: StatusSaved}
		plan.Summary.Advice = append(plan.Summary.Advice, Advice{Title: "Isi Brankas", Amount: invest + misc, Note: "Masuk ke Goals."})

	case balance >= p.GoodEnough.Threshold:
		plan.Summary.SurplusLevel = LevelGoodEnough
		plan.Summary.Message = fmt.Sprintf("LEVEL CUKUP BAIK (Surplus Rp %s)", surplus)
		boost(p.GoodEnough)

		plan.Allocations[core.CategoryMisc] += remaining
		plan.Notes[string(core.CategoryMisc)] = Note{Source: "Surplus", Formula: "Masuk Overhead", Status: StatusSaved}

	default:
		plan.Summary.SurplusLevel = LevelAdequate
		plan.Summary.Message = fmt.Sprintf("LEVEL BAIK (Surplus Rp %s)", surplus)

		plan.Allocations[core.CategoryMisc] += balance
		plan.Notes[string(core.CategoryMisc)] = Note{Source: "Surplus", Formula: "Masuk Overhead", Status: StatusSaved}
	}
}

func (a *Allocator) absorbDeficit(plan *Plan, deficit int64, belowHardFloor bool) {
	p := a.policy
	plan.Summary.IsDanger = true
	if belowHardFloor {
		plan.Summary.ActionNeeded = ActionSellAsset
		plan.Summary.Message = fmt.Sprintf("KRITIS! Defisit Rp %s", core.FormatNumber(deficit))
	} else {
		plan.Summary.ActionNeeded = ActionSearchIncome
		plan.Summary.Message = fmt.Sprintf("BAHAYA! Defisit Rp %s", core.FormatNumber(deficit))
	}

	remaining := deficit
	for _, rule := range p.Cuts {
		if remaining <= 0 {
			break
		}
		room := nonNegative(p.Target(rule.Category) - rule.Floor)
		cut := min(remaining, room)
		plan.Allocations[rule.Category] -= cut
		plan.Notes[string(rule.Category)] = Note{Source: "Defisit", Formula: rule.Formula, Status: StatusCut}
		remaining -= cut
	}

	// The absorber has no floor and may go negative.
	if remaining > 0 {
		plan.Allocations[p.Absorber] -= remaining
		plan.Notes[string(p.Absorber)] = Note{Source: "Defisit", Formula: "Terpaksa dipotong.", Status: StatusCritical}
	}
}

// splitSurplus floors the investment and debt payoff shares; the rounding
// remainder goes to misc so the three parts always sum to amount.
func splitSurplus(amount int64, s SurplusSplit) (invest, debtPayoff, misc int64) {
	if amount <= 0 {
		return 0, 0, 0
	}
	total := decimal.NewFromInt(amount)
	hundred := decimal.NewFromInt(100)
	invest = total.Mul(decimal.NewFromInt(s.Investment)).Div(hundred).Floor().IntPart()
	debtPayoff = total.Mul(decimal.NewFromInt(s.DebtPayoff)).Div(hundred).Floor().IntPart()
	misc = amount - invest - debtPayoff
	return invest, debtPayoff, misc
}

// MonthsRemaining counts calendar months from now to due, at least 1.
func MonthsRemaining(now time.Time, due core.Date) int {
	months := (due.Year()-now.Year())*12 + (int(due.Month()) - int(now.Month()))
	if months <= 0 {
		return 1
	}
	return months
}

// MonthlyContribution is ceil((target-current)/months), never negative.
func MonthlyContribution(target, current int64, months int) int64 {
	need := target - nonNegative(current)
	if need <= 0 {
		return 0
	}
	if months < 1 {
		months = 1
	}
	m := int64(months)
	return (need + m - 1) / m
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
