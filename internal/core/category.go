package core

// Category is a budget bucket. The string value is the stable key used in
// allocations, spending and notes.
type Category string

const (
	CategoryMeal        Category = "makan"
	CategoryTransport   Category = "mobilitas"
	CategorySchool      Category = "saku_sekolah"
	CategoryElectricity Category = "listrik"
	CategoryInternet    Category = "internet"
	CategoryCharity     Category = "infaq"
	CategoryMisc        Category = "lainnya"
	CategoryInvestment  Category = "investasi"
	CategoryDebtPayoff  Category = "hutang_extra"
)

// Categories lists every bucket in display order.
var Categories = []Category{
	CategoryMeal,
	CategoryTransport,
	CategorySchool,
	CategoryElectricity,
	CategoryInternet,
	CategoryCharity,
	CategoryMisc,
	CategoryInvestment,
	CategoryDebtPayoff,
}

var categoryLabels = map[Category]string{
	CategoryMeal:        "Makan",
	CategoryTransport:   "Mobilitas",
	CategorySchool:      "Saku Sekolah",
	CategoryElectricity: "Listrik",
	CategoryInternet:    "Internet",
	CategoryCharity:     "Infaq",
	CategoryMisc:        "Lainnya",
	CategoryInvestment:  "Investasi",
	CategoryDebtPayoff:  "Hutang Extra",
}

var labelToCategory = func() map[string]Category {
	m := make(map[string]Category, len(categoryLabels))
	for c, label := range categoryLabels {
		m[label] = c
	}
	return m
}()

// Label returns the name shown to the household and stored on transactions.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (c Category) IsValid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// IsMonthly reports whether the bucket is paid once a month rather than spent daily.
func (c Category) IsMonthly() bool {
	switch c {
	case CategoryElectricity, CategoryInternet, CategoryCharity, CategoryInvestment, CategoryDebtPayoff, CategoryMisc:
		return true
	}
	return false
}

// SpendingDays is the number of days a daily bucket is normally spent over.
func (c Category) SpendingDays() int {
	switch c {
	case CategorySchool:
		return 20
	case CategoryTransport:
		return 25
	}
	return 30
}

// MatchCategory resolves a raw transaction category. Matching is exact and
// case-sensitive against the key ("saku_sekolah") or the label ("Saku Sekolah").
// Anything else falls back to CategoryMisc with matched=false.
func MatchCategory(raw string) (c Category, matched bool) {
	if cat := Category(raw); cat.IsValid() {
		return cat, true
	}
	if cat, ok := labelToCategory[raw]; ok {
		return cat, true
	}
	return CategoryMisc, false
}
