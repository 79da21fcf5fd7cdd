package store

import (
	"sort"
	"strings"

	"anggaran/internal/core"
)

// SortTransactions orders newest first: by date, then creation time.
func SortTransactions(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date.Time) {
			return txs[i].Date.After(txs[j].Date.Time)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

// SortDebts puts unpaid debts first, keeping creation order within each group.
func SortDebts(debts []core.Debt) {
	sort.SliceStable(debts, func(i, j int) bool {
		if debts[i].IsPaid != debts[j].IsPaid {
			return !debts[i].IsPaid
		}
		return debts[i].CreatedAt.Before(debts[j].CreatedAt)
	})
}

func SortMenus(items []core.MenuItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
}

func SortProfiles(ps []core.Profile) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Role < ps[j].Role })
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
