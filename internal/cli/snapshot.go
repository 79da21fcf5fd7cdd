package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"anggaran/internal/budget"
	"anggaran/internal/core"
	"anggaran/internal/services"
)

// Snapshot is a household's collections written down in a YAML or TOML file,
// used to plan a month without a running backend.
type Snapshot struct {
	FixedIncome  int64            `yaml:"fixed_income" toml:"fixed_income"`
	Incomes      []snapshotIncome `yaml:"incomes" toml:"incomes"`
	Debts        []snapshotDebt   `yaml:"debts" toml:"debts"`
	SinkingFunds []snapshotFund   `yaml:"sinking_funds" toml:"sinking_funds"`
	Transactions []snapshotTx     `yaml:"transactions" toml:"transactions"`
	Assets       []snapshotAsset  `yaml:"assets" toml:"assets"`
	Goals        []snapshotGoal   `yaml:"goals" toml:"goals"`
}

type snapshotIncome struct {
	Name   string `yaml:"name" toml:"name"`
	Amount int64  `yaml:"amount" toml:"amount"`
}

type snapshotDebt struct {
	Name   string `yaml:"name" toml:"name"`
	Amount int64  `yaml:"amount" toml:"amount"`
	Type   string `yaml:"type" toml:"type"`
	Paid   bool   `yaml:"paid" toml:"paid"`
}

type snapshotFund struct {
	Name          string `yaml:"name" toml:"name"`
	TargetAmount  int64  `yaml:"target_amount" toml:"target_amount"`
	CurrentAmount int64  `yaml:"current_amount" toml:"current_amount"`
	DueDate       string `yaml:"due_date" toml:"due_date"`
}

type snapshotTx struct {
	Date        string `yaml:"date" toml:"date"`
	Type        string `yaml:"type" toml:"type"`
	Category    string `yaml:"category" toml:"category"`
	Amount      int64  `yaml:"amount" toml:"amount"`
	Description string `yaml:"description" toml:"description"`
}

type snapshotAsset struct {
	Name  string `yaml:"name" toml:"name"`
	Value int64  `yaml:"value" toml:"value"`
}

type snapshotGoal struct {
	Name          string `yaml:"name" toml:"name"`
	TargetAmount  int64  `yaml:"target_amount" toml:"target_amount"`
	CurrentAmount int64  `yaml:"current_amount" toml:"current_amount"`
}

// Household is a decoded snapshot in domain types.
type Household struct {
	Incomes      []core.Income
	Debts        []core.Debt
	SinkingFunds []core.SinkingFund
	Transactions []core.Transaction
	Assets       []core.Asset
	Goals        []core.FinancialGoal
}

// LoadSnapshot reads a .yaml, .yml or .toml household file.
func LoadSnapshot(path string) (*Household, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var s Snapshot
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse YAML snapshot: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse TOML snapshot: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", ext)
	}
	return s.Household()
}

// Household converts and validates every row. Rows get positional ids.
func (s Snapshot) Household() (*Household, error) {
	h := &Household{}

	if s.FixedIncome > 0 {
		h.Incomes = append(h.Incomes, core.Income{ID: "fixed", Name: "Gaji Tetap", Kind: core.IncomeFixed, Amount: s.FixedIncome})
	}
	for i, inc := range s.Incomes {
		row := core.Income{ID: fmt.Sprintf("income-%d", i+1), Name: inc.Name, Kind: core.IncomeAdditional, Amount: inc.Amount}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("income %d: %w", i+1, err)
		}
		h.Incomes = append(h.Incomes, row)
	}

	for i, d := range s.Debts {
		row := core.Debt{ID: fmt.Sprintf("debt-%d", i+1), Name: d.Name, Amount: d.Amount, Type: d.Type, IsPaid: d.Paid}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("debt %d: %w", i+1, err)
		}
		h.Debts = append(h.Debts, row)
	}

	for i, f := range s.SinkingFunds {
		due, err := core.ParseDate(f.DueDate)
		if err != nil {
			return nil, fmt.Errorf("sinking fund %d: %w", i+1, err)
		}
		row := core.SinkingFund{
			ID:            fmt.Sprintf("fund-%d", i+1),
			Name:          f.Name,
			TargetAmount:  f.TargetAmount,
			CurrentAmount: f.CurrentAmount,
			DueDate:       due,
		}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("sinking fund %d: %w", i+1, err)
		}
		h.SinkingFunds = append(h.SinkingFunds, row)
	}

	for i, t := range s.Transactions {
		date, err := core.ParseDate(t.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		row := core.Transaction{
			ID:          fmt.Sprintf("tx-%d", i+1),
			Date:        date,
			Type:        core.TransactionType(strings.ToUpper(t.Type)),
			Category:    t.Category,
			Amount:      t.Amount,
			Description: t.Description,
		}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		h.Transactions = append(h.Transactions, row)
	}

	for i, a := range s.Assets {
		row := core.Asset{ID: fmt.Sprintf("asset-%d", i+1), Name: a.Name, Value: a.Value}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("asset %d: %w", i+1, err)
		}
		h.Assets = append(h.Assets, row)
	}
	for i, g := range s.Goals {
		row := core.FinancialGoal{ID: fmt.Sprintf("goal-%d", i+1), Name: g.Name, TargetAmount: g.TargetAmount, CurrentAmount: g.CurrentAmount}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("goal %d: %w", i+1, err)
		}
		h.Goals = append(h.Goals, row)
	}
	return h, nil
}

// Plan runs the allocator over the household at now. A household without
// income has no plan.
func (h *Household) Plan(a *budget.Allocator, now time.Time) *budget.Plan {
	return a.Calculate(services.BudgetInput(h.Incomes, h.Debts, h.SinkingFunds, h.Transactions, now))
}

// NetWorth is assets plus goal savings minus unpaid debts.
func (h *Household) NetWorth() int64 {
	return core.NetWorth(h.Assets, h.Goals, h.Debts)
}
