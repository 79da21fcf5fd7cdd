package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"anggaran/internal/core"
	"anggaran/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements store.Store on a single SQLite file.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection per process. The server and the worker share the file, so
	// cross-process lock waits rely on busy_timeout.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// sqliteDSN waits up to 5s for another process's write lock and enables WAL so
// readers do not block the writer.
func sqliteDSN(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) stamp() int64 {
	return r.now().UnixNano()
}

func fromStamp(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// notFound maps sql.ErrNoRows to core.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

// execOne runs a statement that must touch exactly one row.
func (r *SQLiteRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// Incomes

const incomeColumns = `id, name, kind, amount, created_at`

func scanIncome(s scanner) (core.Income, error) {
	var (
		inc     core.Income
		kind    string
		created int64
	)
	if err := s.Scan(&inc.ID, &inc.Name, &kind, &inc.Amount, &created); err != nil {
		return core.Income{}, err
	}
	inc.Kind = core.IncomeKind(kind)
	inc.CreatedAt = fromStamp(created)
	return inc, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+incomeColumns+` FROM incomes ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	out := []core.Income{}
	for rows.Next() {
		inc, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) FixedIncome(ctx context.Context) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE kind = ? ORDER BY created_at LIMIT 1`, string(core.IncomeFixed))
	inc, err := scanIncome(row)
	if err != nil {
		return core.Income{}, fmt.Errorf("get fixed income: %w", notFound(err))
	}
	return inc, nil
}

func (r *SQLiteRepository) AddIncome(ctx context.Context, inc core.Income) (core.Income, error) {
	if err := inc.Validate(); err != nil {
		return core.Income{}, err
	}
	inc.ID = uuid.NewString()
	created := r.stamp()
	inc.CreatedAt = fromStamp(created)

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (id, name, kind, amount, created_at) VALUES (?, ?, ?, ?, ?)`,
		inc.ID, inc.Name, string(inc.Kind), inc.Amount, created); err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved to SQLite", "id", inc.ID, "kind", inc.Kind, "amount", inc.Amount)
	return inc, nil
}

func (r *SQLiteRepository) UpdateIncomeAmount(ctx context.Context, id string, amount int64) (core.Income, error) {
	if amount < 0 {
		return core.Income{}, core.ErrInvalidAmount
	}
	if err := r.execOne(ctx, `UPDATE incomes SET amount = ? WHERE id = ?`, amount, id); err != nil {
		return core.Income{}, fmt.Errorf("update income %s: %w", id, err)
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+incomeColumns+` FROM incomes WHERE id = ?`, id)
	inc, err := scanIncome(row)
	if err != nil {
		return core.Income{}, fmt.Errorf("get income %s: %w", id, notFound(err))
	}
	return inc, nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id string) error {
	if err := r.execOne(ctx, `DELETE FROM incomes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete income %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Income deleted", "id", id)
	return nil
}

// Debts

const debtColumns = `id, name, amount, type, due_note, description, is_paid, created_at`

func scanDebt(s scanner) (core.Debt, error) {
	var (
		d       core.Debt
		created int64
	)
	if err := s.Scan(&d.ID, &d.Name, &d.Amount, &d.Type, &d.DueNote, &d.Description, &d.IsPaid, &created); err != nil {
		return core.Debt{}, err
	}
	d.CreatedAt = fromStamp(created)
	return d, nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+debtColumns+` FROM debts ORDER BY is_paid ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	out := []core.Debt{}
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetDebt(ctx context.Context, id string) (core.Debt, error) {
	d, err := scanDebt(r.db.QueryRowContext(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = ?`, id))
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt %s: %w", id, notFound(err))
	}
	return d, nil
}

func (r *SQLiteRepository) AddDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	d.ID = uuid.NewString()
	created := r.stamp()
	d.CreatedAt = fromStamp(created)

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO debts (`+debtColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Amount, d.Type, d.DueNote, d.Description, d.IsPaid, created); err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}

	slog.InfoContext(ctx, "Debt saved to SQLite", "id", d.ID, "amount", d.Amount)
	return d, nil
}

func (r *SQLiteRepository) SetDebtPaid(ctx context.Context, id string, paid bool) (core.Debt, error) {
	if err := r.execOne(ctx, `UPDATE debts SET is_paid = ? WHERE id = ?`, paid, id); err != nil {
		return core.Debt{}, fmt.Errorf("update debt %s: %w", id, err)
	}
	return r.GetDebt(ctx, id)
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, id string) error {
	if err := r.execOne(ctx, `DELETE FROM debts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete debt %s: %w", id, err)
	}
	return nil
}

// Sinking funds

func (r *SQLiteRepository) ListSinkingFunds(ctx context.Context) ([]core.SinkingFund, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_amount, current_amount, due_date FROM sinking_funds ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list sinking funds: %w", err)
	}
	defer rows.Close()

	out := []core.SinkingFund{}
	for rows.Next() {
		var (
			f   core.SinkingFund
			due string
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.TargetAmount, &f.CurrentAmount, &due); err != nil {
			return nil, fmt.Errorf("scan sinking fund: %w", err)
		}
		if f.DueDate, err = core.ParseDate(due); err != nil {
			return nil, fmt.Errorf("sinking fund %s: %w", f.ID, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddSinkingFund(ctx context.Context, f core.SinkingFund) (core.SinkingFund, error) {
	if err := f.Validate(); err != nil {
		return core.SinkingFund{}, err
	}
	f.ID = uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO sinking_funds (id, name, target_amount, current_amount, due_date, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.TargetAmount, f.CurrentAmount, f.DueDate.String(), r.stamp()); err != nil {
		return core.SinkingFund{}, fmt.Errorf("create sinking fund: %w", err)
	}
	slog.InfoContext(ctx, "Sinking fund saved to SQLite", "id", f.ID, "target", f.TargetAmount, "due", f.DueDate.String())
	return f, nil
}

func (r *SQLiteRepository) DeleteSinkingFund(ctx context.Context, id string) error {
	if err := r.execOne(ctx, `DELETE FROM sinking_funds WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete sinking fund %s: %w", id, err)
	}
	return nil
}

// Goals

func scanGoal(s scanner) (core.FinancialGoal, error) {
	var g core.FinancialGoal
	err := s.Scan(&g.ID, &g.Name, &g.TargetAmount, &g.CurrentAmount)
	return g, err
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.FinancialGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_amount, current_amount FROM financial_goals ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	out := []core.FinancialGoal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddGoal(ctx context.Context, g core.FinancialGoal) (core.FinancialGoal, error) {
	if err := g.Validate(); err != nil {
		return core.FinancialGoal{}, err
	}
	g.ID = uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO financial_goals (id, name, target_amount, current_amount, created_at) VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.TargetAmount, g.CurrentAmount, r.stamp()); err != nil {
		return core.FinancialGoal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) UpdateGoalCurrent(ctx context.Context, id string, current int64) (core.FinancialGoal, error) {
	if current < 0 {
		return core.FinancialGoal{}, core.ErrInvalidAmount
	}
	if err := r.execOne(ctx, `UPDATE financial_goals SET current_amount = ? WHERE id = ?`, current, id); err != nil {
		return core.FinancialGoal{}, fmt.Errorf("update goal %s: %w", id, err)
	}
	g, err := scanGoal(r.db.QueryRowContext(ctx,
		`SELECT id, name, target_amount, current_amount FROM financial_goals WHERE id = ?`, id))
	if err != nil {
		return core.FinancialGoal{}, fmt.Errorf("get goal %s: %w", id, notFound(err))
	}
	return g, nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	if err := r.execOne(ctx, `DELETE FROM financial_goals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	return nil
}

// Assets

func (r *SQLiteRepository) ListAssets(ctx context.Context) ([]core.Asset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, value FROM assets ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	out := []core.Asset{}
	for rows.Next() {
		var a core.Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.Value); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	if err := a.Validate(); err != nil {
		return core.Asset{}, err
	}
	a.ID = uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (id, name, value, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, a.Name, a.Value, r.stamp()); err != nil {
		return core.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) DeleteAsset(ctx context.Context, id string) error {
	if err := r.execOne(ctx, `DELETE FROM assets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete asset %s: %w", id, err)
	}
	return nil
}

// Transactions

const transactionColumns = `id, date, type, category, amount, description, created_by, created_at`

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		tx      core.Transaction
		date    string
		typ     string
		created int64
	)
	if err := s.Scan(&tx.ID, &date, &typ, &tx.Category, &tx.Amount, &tx.Description, &tx.CreatedBy, &created); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Date = d
	tx.Type = core.TransactionType(typ)
	tx.CreatedAt = fromStamp(created)
	return tx, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, created_at DESC`
	// SQLite's lower() folds ASCII only, so search is applied in Go and the
	// limit after it.
	if f.Limit > 0 && f.Search == "" {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	txs, err := r.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if f.Search == "" {
		return txs, nil
	}

	matched := txs[:0]
	for _, tx := range txs {
		if f.Matches(tx) {
			matched = append(matched, tx)
		}
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, notFound(err))
	}
	return tx, nil
}

func (r *SQLiteRepository) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = uuid.NewString()
	created := r.stamp()
	tx.CreatedAt = fromStamp(created)

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Date.String(), string(tx.Type), tx.Category, tx.Amount, tx.Description, tx.CreatedBy, created); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"date", tx.Date.String(),
		"type", tx.Type,
		"category", tx.Category,
		"amount", tx.Amount)
	return tx, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	if err := r.execOne(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// ListUnsynced returns transactions not yet mirrored, oldest first.
func (r *SQLiteRepository) ListUnsynced(ctx context.Context, limit int) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE synced_at IS NULL ORDER BY created_at`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	txs, err := r.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list unsynced transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if err := r.execOne(ctx, `UPDATE transactions SET synced_at = ? WHERE id = ?`, r.stamp(), id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// Menus

func (r *SQLiteRepository) ListMenus(ctx context.Context, t core.MenuType) ([]core.MenuItem, error) {
	query := `SELECT id, name, price, type FROM menus`
	var args []any
	if t != "" {
		query += ` WHERE type = ?`
		args = append(args, string(t))
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	defer rows.Close()

	out := []core.MenuItem{}
	for rows.Next() {
		var (
			m   core.MenuItem
			typ string
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &typ); err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		m.Type = core.MenuType(typ)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) AddMenu(ctx context.Context, m core.MenuItem) (core.MenuItem, error) {
	if err := m.Validate(); err != nil {
		return core.MenuItem{}, err
	}
	m.ID = uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO menus (id, name, price, type, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Price, string(m.Type), r.stamp()); err != nil {
		return core.MenuItem{}, fmt.Errorf("create menu: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) DeleteMenu(ctx context.Context, id string) error {
	if err := r.execOne(ctx, `DELETE FROM menus WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete menu %s: %w", id, err)
	}
	return nil
}

// Profiles

const profileColumns = `id, full_name, role, budget_limit, avatar_url, updated_at`

func scanProfile(s scanner) (core.Profile, error) {
	var (
		p       core.Profile
		updated int64
	)
	if err := s.Scan(&p.ID, &p.FullName, &p.Role, &p.BudgetLimit, &p.AvatarURL, &updated); err != nil {
		return core.Profile{}, err
	}
	p.UpdatedAt = fromStamp(updated)
	return p, nil
}

func (r *SQLiteRepository) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY role ASC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := []core.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, id string) (core.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile %s: %w", id, notFound(err))
	}
	return p, nil
}

func (r *SQLiteRepository) UpsertProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	if err := p.Validate(); err != nil {
		return core.Profile{}, err
	}
	updated := r.stamp()
	p.UpdatedAt = fromStamp(updated)

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			role = excluded.role,
			budget_limit = excluded.budget_limit,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at`,
		p.ID, p.FullName, p.Role, p.BudgetLimit, p.AvatarURL, updated); err != nil {
		return core.Profile{}, fmt.Errorf("upsert profile %s: %w", p.ID, err)
	}

	slog.InfoContext(ctx, "Profile saved to SQLite", "id", p.ID)
	return p, nil
}

// Users

func scanUser(s scanner) (core.User, error) {
	var (
		u       core.User
		created int64
	)
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &created); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = fromStamp(created)
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" {
		return core.User{}, fmt.Errorf("create user: email required")
	}

	if _, err := r.UserByEmail(ctx, u.Email); err == nil {
		return core.User{}, fmt.Errorf("create user %s: %w", u.Email, core.ErrConflict)
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, err
	}

	u.ID = uuid.NewString()
	created := r.stamp()
	u.CreatedAt = fromStamp(created)
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, created); err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email))
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", notFound(err))
	}
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id))
	if err != nil {
		return core.User{}, fmt.Errorf("get user %s: %w", id, notFound(err))
	}
	return u, nil
}
