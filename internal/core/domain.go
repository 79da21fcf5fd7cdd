package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	IncomeFixed      IncomeKind = "FIXED"
	IncomeAdditional IncomeKind = "ADDITIONAL"

	TypeExpense TransactionType = "EXPENSE"
	TypeIncome  TransactionType = "INCOME"

	MenuCooked MenuType = "MATANG"
	MenuRaw    MenuType = "MENTAH"
)

// DefaultFixedIncomeName is used when the fixed income row is created implicitly.
const DefaultFixedIncomeName = "Fixed Income"

// DefaultProfileName is given to profiles created on first access.
const DefaultProfileName = "Keluarga"

type (
	IncomeKind      string
	TransactionType string
	MenuType        string

	Date struct {
		time.Time
	}

	Income struct {
		ID        string     `json:"id"`
		Name      string     `json:"name"`
		Kind      IncomeKind `json:"kind"`
		Amount    int64      `json:"amount"`
		CreatedAt time.Time  `json:"created_at"`
	}

	Debt struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Amount int64  `json:"amount"`
		// Type is free text such as "Cicilan Tetap" or "Tagihan Wajib".
		Type string `json:"type,omitempty"`
		// DueNote is the creditor's deadline as written by the household.
		DueNote     string    `json:"due_date,omitempty"`
		Description string    `json:"description,omitempty"`
		IsPaid      bool      `json:"is_paid"`
		CreatedAt   time.Time `json:"created_at"`
	}

	SinkingFund struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		TargetAmount  int64  `json:"target_amount"`
		CurrentAmount int64  `json:"current_amount"`
		DueDate       Date   `json:"due_date"`
	}

	FinancialGoal struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		TargetAmount  int64  `json:"target_amount"`
		CurrentAmount int64  `json:"current_amount"`
	}

	Asset struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Value int64  `json:"value"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Amount      int64           `json:"amount"`
		Description string          `json:"description"`
		CreatedBy   string          `json:"created_by,omitempty"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	MenuItem struct {
		ID    string   `json:"id"`
		Name  string   `json:"name"`
		Price int64    `json:"price"`
		Type  MenuType `json:"type"`
	}

	Profile struct {
		ID          string    `json:"id"`
		FullName    string    `json:"full_name"`
		Role        string    `json:"role"`
		BudgetLimit int64     `json:"budget_limit"`
		AvatarURL   string    `json:"avatar_url"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	User struct {
		ID           string    `json:"id"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidType      = errors.New("invalid type")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrDescriptionLimit = errors.New("description too long (max 200 characters)")
)

const dateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// YearMonth returns the "YYYY-MM" prefix of the date.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON shadows the embedded time.Time encoding.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		*d = Date{}
		return nil
	}
	return d.UnmarshalText([]byte(s))
}

func (i Income) Validate() error {
	if i.Kind != IncomeFixed && i.Kind != IncomeAdditional {
		return fmt.Errorf("%w: income kind %q", ErrInvalidType, i.Kind)
	}
	if i.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if d.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (f SinkingFund) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if f.TargetAmount < 0 || f.CurrentAmount < 0 {
		return ErrInvalidAmount
	}
	if f.DueDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (g FinancialGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount < 0 || g.CurrentAmount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Progress is the percentage collected, capped at 100.
func (g FinancialGoal) Progress() int {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := int((g.CurrentAmount*200 + g.TargetAmount) / (g.TargetAmount * 2))
	if p > 100 {
		return 100
	}
	return p
}

func (a Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.Value < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) IsValid() bool {
	return t == TypeExpense || t == TypeIncome
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: transaction type %q", ErrInvalidType, t.Type)
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if len(t.Description) > 200 {
		return ErrDescriptionLimit
	}
	return nil
}

func (m MenuType) IsValid() bool {
	return m == MenuCooked || m == MenuRaw
}

func (m MenuItem) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("%w: menu type %q", ErrInvalidType, m.Type)
	}
	if m.Price < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("profile id required")
	}
	if p.BudgetLimit < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NetWorth is assets plus goal savings minus unpaid debts.
func NetWorth(assets []Asset, goals []FinancialGoal, debts []Debt) int64 {
	var total int64
	for _, a := range assets {
		total += a.Value
	}
	for _, g := range goals {
		total += g.CurrentAmount
	}
	for _, d := range debts {
		if !d.IsPaid {
			total -= d.Amount
		}
	}
	return total
}
