// Package analytics summarizes where the household's income went.
package analytics

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"anggaran/internal/core"
)

// FoodCategory is the raw transaction category the food split looks at.
const FoodCategory = "Makan"

// HighShare marks a category that took more than this percentage of income.
const HighShare = 30.0

type CategoryShare struct {
	Name    string  `json:"name"`
	Amount  int64   `json:"amount"`
	Percent float64 `json:"percent"`
	High    bool    `json:"high"`
}

type FoodSplit struct {
	Raw       int64 `json:"raw"`
	Cooked    int64 `json:"cooked"`
	RawPct    int64 `json:"raw_pct"`
	CookedPct int64 `json:"cooked_pct"`
}

type Report struct {
	TotalIncome int64           `json:"total_income"`
	Categories  []CategoryShare `json:"categories"`
	Food        FoodSplit       `json:"food"`
}

// Summarize groups every expense by its raw category and relates it to total
// income. Unlike the allocator it is not limited to the current month.
func Summarize(incomes []core.Income, transactions []core.Transaction) Report {
	var income int64
	for _, inc := range incomes {
		income += inc.Amount
	}

	totals := map[string]int64{}
	var food FoodSplit
	for _, tx := range transactions {
		if tx.Type != core.TypeExpense {
			continue
		}
		totals[tx.Category] += tx.Amount

		if tx.Category == FoodCategory {
			desc := strings.ToLower(tx.Description)
			if strings.Contains(desc, "(mentah)") {
				food.Raw += tx.Amount
			} else {
				food.Cooked += tx.Amount
			}
		}
	}

	shares := make([]CategoryShare, 0, len(totals))
	for name, amount := range totals {
		pct := share(amount, income)
		shares = append(shares, CategoryShare{
			Name:    name,
			Amount:  amount,
			Percent: pct,
			High:    pct > HighShare,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Name < shares[j].Name
	})

	if total := food.Raw + food.Cooked; total > 0 {
		food.RawPct = roundPercent(food.Raw, total)
		food.CookedPct = roundPercent(food.Cooked, total)
	}

	return Report{TotalIncome: income, Categories: shares, Food: food}
}

// share is amount/income*100 to one decimal, 0 without income.
func share(amount, income int64) float64 {
	if income <= 0 {
		return 0
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(income)).
		Round(1).
		InexactFloat64()
}

func roundPercent(part, total int64) int64 {
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(0).
		IntPart()
}
