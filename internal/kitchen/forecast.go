package kitchen

import (
	"time"

	"anggaran/internal/budget"
	"anggaran/internal/core"
)

// Forecast spreads the food money left this month over the remaining days.
type Forecast struct {
	Remaining  int64 `json:"remaining"`
	DaysLeft   int   `json:"days_left"`
	DailyLimit int64 `json:"daily_limit"`
}

// DaysLeft counts the days after today until the end of the month, at least 1.
// On the last day of the month it is 1.
func DaysLeft(now time.Time) int {
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return max(1, lastDay-now.Day())
}

// NewForecast computes the rolling daily food limit from a plan. A nil plan
// yields a zero forecast.
func NewForecast(plan *budget.Plan, now time.Time) Forecast {
	f := Forecast{DaysLeft: DaysLeft(now)}
	if plan == nil {
		return f
	}
	f.Remaining = plan.Remaining(core.CategoryMeal)
	if f.Remaining > 0 {
		f.DailyLimit = f.Remaining / int64(f.DaysLeft)
	}
	return f
}
