package kitchen

import (
	"testing"
	"time"

	"anggaran/internal/budget"
	"anggaran/internal/core"
)

func TestCycleDay(t *testing.T) {
	tests := []struct {
		day  int
		want int
	}{
		{1, 0}, {10, 9}, {11, 0}, {20, 9}, {21, 0}, {30, 9}, {31, 0},
	}
	for _, tt := range tests {
		got := CycleDay(time.Date(2026, time.October, tt.day, 12, 0, 0, 0, time.UTC))
		if got != tt.want {
			t.Errorf("CycleDay(day %d) = %d, want %d", tt.day, got, tt.want)
		}
	}
}

func TestNavigationWraps(t *testing.T) {
	if got := Next(9); got != 0 {
		t.Errorf("Next(9) = %d, want 0", got)
	}
	if got := Prev(0); got != 9 {
		t.Errorf("Prev(0) = %d, want 9", got)
	}
	if got := Next(3); got != 4 {
		t.Errorf("Next(3) = %d, want 4", got)
	}
	if got := MealAt(-1).Day; got != 10 {
		t.Errorf("MealAt(-1).Day = %d, want 10", got)
	}
}

func TestSchedule(t *testing.T) {
	s := Schedule()
	if len(s) != CycleLength {
		t.Fatalf("expected %d days, got %d", CycleLength, len(s))
	}
	for i, m := range s {
		if m.Day != i+1 {
			t.Errorf("day %d has id %d", i, m.Day)
		}
	}
	if s[1].Total != 91500 || s[9].Total != 53500 {
		t.Errorf("unexpected totals: %d, %d", s[1].Total, s[9].Total)
	}

	s[0].Total = 1
	if MealAt(0).Total != 67000 {
		t.Error("Schedule must return a copy")
	}
}

func TestMealLeftover(t *testing.T) {
	if !MealAt(6).Leftover() || !MealAt(8).Leftover() {
		t.Error("days 7 and 9 reuse morning food")
	}
	if MealAt(0).Leftover() {
		t.Error("day 1 has no leftovers at noon")
	}
}

func TestDaysLeft(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"mid october", time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC), 17},
		{"last day", time.Date(2026, time.October, 31, 0, 0, 0, 0, time.UTC), 1},
		{"day before last", time.Date(2026, time.October, 30, 0, 0, 0, 0, time.UTC), 1},
		{"february", time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysLeft(tt.now); got != tt.want {
				t.Errorf("DaysLeft() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewForecast(t *testing.T) {
	now := time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	plan := budget.Calculate(budget.Input{
		FixedIncome: 2875000,
		Transactions: []core.Transaction{
			{Date: core.NewDate(2026, 10, 2), Type: core.TypeExpense, Category: "Makan", Amount: 800000},
		},
		Now: now,
	})

	f := NewForecast(plan, now)
	if f.Remaining != 850000 {
		t.Fatalf("Remaining = %d, want 850000", f.Remaining)
	}
	if f.DaysLeft != 17 {
		t.Fatalf("DaysLeft = %d, want 17", f.DaysLeft)
	}
	if f.DailyLimit != 50000 {
		t.Errorf("DailyLimit = %d, want 50000", f.DailyLimit)
	}

	if got := NewForecast(nil, now); got.DailyLimit != 0 || got.Remaining != 0 {
		t.Errorf("nil plan should give an empty forecast, got %+v", got)
	}
}

func TestNewForecast_Overspent(t *testing.T) {
	now := time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	plan := budget.Calculate(budget.Input{
		FixedIncome: 2875000,
		Transactions: []core.Transaction{
			{Date: core.NewDate(2026, 10, 2), Type: core.TypeExpense, Category: "makan", Amount: 2000000},
		},
		Now: now,
	})
	f := NewForecast(plan, now)
	if f.Remaining != -350000 || f.DailyLimit != 0 {
		t.Errorf("unexpected forecast %+v", f)
	}
}

func TestCart(t *testing.T) {
	tempe := core.MenuItem{ID: "1", Name: "Tempe", Price: 5000, Type: core.MenuRaw}
	telur := core.MenuItem{ID: "2", Name: "Telur 1/4kg", Price: 8000, Type: core.MenuRaw}

	c := NewCart(20000)
	c.Add(tempe)
	c.Add(tempe)
	c.Add(telur)

	if got := c.Total(); got != 18000 {
		t.Fatalf("Total() = %d, want 18000", got)
	}
	if got := c.RemainingDaily(); got != 2000 {
		t.Errorf("RemainingDaily() = %d, want 2000", got)
	}

	c.Add(telur)
	if got := c.RemainingDaily(); got != -6000 {
		t.Errorf("RemainingDaily() over budget = %d, want -6000", got)
	}

	c.Decrease("1")
	items := c.Items()
	if len(items) != 2 || items[0].Qty != 1 {
		t.Fatalf("unexpected items after decrease: %+v", items)
	}

	c.Decrease("1")
	items = c.Items()
	if len(items) != 1 || items[0].Item.ID != "2" {
		t.Fatalf("decrease at qty 1 should remove the line: %+v", items)
	}

	c.Remove("2")
	if c.Total() != 0 || len(c.Items()) != 0 {
		t.Error("cart should be empty")
	}

	c.Add(tempe)
	c.Reset()
	if len(c.Items()) != 0 {
		t.Error("Reset should empty the cart")
	}
}
