package budget

import (
	"fmt"
	"strings"

	"anggaran/internal/core"
)

// Tier describes how a surplus level raises the charity and meal targets.
type Tier struct {
	Threshold     int64
	CharityTarget int64
	CharityNote   string
	MealTarget    int64
	MealNote      string
}

// SurplusSplit is the percentage split of the very good tier remainder.
type SurplusSplit struct {
	Investment int64
	DebtPayoff int64
	Misc       int64
}

// CutRule cuts a category down to Floor while a deficit remains.
type CutRule struct {
	Category core.Category
	Floor    int64
	Formula  string
}

// Policy is every constant the allocator consumes.
type Policy struct {
	Targets    map[core.Category]int64
	VeryGood   Tier
	GoodEnough Tier
	Split      SurplusSplit
	// Cuts are applied in order; Absorber takes whatever deficit is left and
	// has no floor.
	Cuts     []CutRule
	Absorber core.Category
}

// DefaultPolicy returns the household's reference plan.
func DefaultPolicy() Policy {
	return Policy{
		Targets: map[core.Category]int64{
			core.CategoryElectricity: 150000,
			core.CategoryInternet:    100000,
			core.CategoryCharity:     50000,
			core.CategoryMeal:        1650000,
			core.CategoryTransport:   375000,
			core.CategorySchool:      300000,
			core.CategoryMisc:        250000,
			core.CategoryInvestment:  0,
			core.CategoryDebtPayoff:  0,
		},
		VeryGood: Tier{
			Threshold:     2000000,
			CharityTarget: 100000,
			CharityNote:   "Cap Max 100rb",
			MealTarget:    2100000,
			MealNote:      "Limit Rp 70.000",
		},
		GoodEnough: Tier{
			Threshold:     500000,
			CharityTarget: 75000,
			CharityNote:   "Bonus 25rb",
			MealTarget:    1950000,
			MealNote:      "Limit Rp 65rb",
		},
		Split: SurplusSplit{Investment: 40, DebtPayoff: 30, Misc: 30},
		Cuts: []CutRule{
			{Category: core.CategoryMisc, Floor: 0, Formula: "Dipotong."},
			{Category: core.CategoryInternet, Floor: 0, Formula: "Internet diputus."},
			{Category: core.CategoryCharity, Floor: 0, Formula: "Ditiadakan."},
			{Category: core.CategorySchool, Floor: 150000, Formula: "Ditekan 50%."},
			{Category: core.CategoryMeal, Floor: 1000000, Formula: "Menu darurat."},
		},
		Absorber: core.CategoryTransport,
	}
}

// Clone returns a deep copy so callers can override fields safely.
func (p Policy) Clone() Policy {
	out := p
	out.Targets = make(map[core.Category]int64, len(p.Targets))
	for k, v := range p.Targets {
		out.Targets[k] = v
	}
	out.Cuts = append([]CutRule(nil), p.Cuts...)
	return out
}

// Target returns the operational target of c, 0 when unset.
func (p Policy) Target(c core.Category) int64 {
	return p.Targets[c]
}

// TotalTargets sums every operational target.
func (p Policy) TotalTargets() int64 {
	var total int64
	for _, c := range core.Categories {
		total += p.Targets[c]
	}
	return total
}

// Validate checks the policy is internally consistent.
func (p Policy) Validate() error {
	var errs []string

	for c, v := range p.Targets {
		if !c.IsValid() {
			errs = append(errs, fmt.Sprintf("unknown category %q in targets", c))
		}
		if v < 0 {
			errs = append(errs, fmt.Sprintf("target for %s must not be negative", c))
		}
	}

	if p.GoodEnough.Threshold < 0 {
		errs = append(errs, "good enough threshold must not be negative")
	}
	if p.VeryGood.Threshold < p.GoodEnough.Threshold {
		errs = append(errs, "very good threshold must not be below good enough threshold")
	}
	for name, tier := range map[string]Tier{"very good": p.VeryGood, "good enough": p.GoodEnough} {
		charityBoost := tier.CharityTarget - p.Target(core.CategoryCharity)
		mealBoost := tier.MealTarget - p.Target(core.CategoryMeal)
		if charityBoost < 0 || mealBoost < 0 {
			errs = append(errs, fmt.Sprintf("%s tier must not lower charity or meal targets", name))
		}
		if charityBoost+mealBoost > tier.Threshold {
			errs = append(errs, fmt.Sprintf("%s tier boosts exceed its threshold", name))
		}
	}

	s := p.Split
	if s.Investment < 0 || s.DebtPayoff < 0 || s.Misc < 0 {
		errs = append(errs, "surplus split must not be negative")
	} else if s.Investment+s.DebtPayoff+s.Misc != 100 {
		errs = append(errs, fmt.Sprintf("surplus split must sum to 100, got %d", s.Investment+s.DebtPayoff+s.Misc))
	}

	seen := map[core.Category]bool{}
	for _, rule := range p.Cuts {
		if !rule.Category.IsValid() {
			errs = append(errs, fmt.Sprintf("unknown category %q in cut order", rule.Category))
		}
		if rule.Floor < 0 {
			errs = append(errs, fmt.Sprintf("floor for %s must not be negative", rule.Category))
		}
		if seen[rule.Category] {
			errs = append(errs, fmt.Sprintf("category %s appears twice in cut order", rule.Category))
		}
		seen[rule.Category] = true
	}
	if !p.Absorber.IsValid() {
		errs = append(errs, fmt.Sprintf("unknown absorber category %q", p.Absorber))
	} else if seen[p.Absorber] {
		errs = append(errs, fmt.Sprintf("absorber %s must not also be in cut order", p.Absorber))
	}

	if len(errs) > 0 {
		return fmt.Errorf("policy validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
