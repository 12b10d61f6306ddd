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

	"omnibudget/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository owns the single local database file backing the whole
// application. All statements are parameterized; all mutations that carry
// ownership constraints express them in the WHERE clause so an update on
// somebody else's row affects zero rows instead of succeeding.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Used by readiness
// checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// ---- users ----

func (r *SQLiteRepository) CreateUser(ctx context.Context, username, email, passwordHash string, prof core.ProfileKey) (core.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, current_profile, created_at) VALUES (?, ?, ?, ?, ?)`,
		username, email, passwordHash, string(prof), now)
	if err != nil {
		return core.User{}, translateUniqueErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", id, "username", username, "profile", prof)

	return core.User{
		ID:             id,
		Username:       username,
		Email:          email,
		PasswordHash:   passwordHash,
		CurrentProfile: prof,
		CreatedAt:      now,
	}, nil
}

// translateUniqueErr maps sqlite unique-constraint violations onto the
// domain error taxonomy. The service layer pre-checks uniqueness, so this
// only fires when two registrations race.
func translateUniqueErr(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return core.ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return core.ErrEmailTaken
	default:
		return fmt.Errorf("create user: %w", err)
	}
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, current_profile, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, current_profile, created_at FROM users WHERE username = ?`, username))
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, current_profile, created_at FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var prof string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &prof, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.CurrentProfile = core.ProfileKey(prof)
	return u, nil
}

func (r *SQLiteRepository) UpdateUserProfile(ctx context.Context, userID int64, prof core.ProfileKey) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET current_profile = ? WHERE id = ?`, string(prof), userID)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user profile rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ---- transactions ----

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, profile, type, category, amount_cents, description, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, string(t.Profile), string(t.Type), t.Category, t.Amount.Cents, t.Description, t.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction recorded",
		"id", t.ID,
		"user_id", t.UserID,
		"profile", t.Profile,
		"type", t.Type,
		"category", t.Category,
		"amount_cents", t.Amount.Cents)

	return t, nil
}

func (r *SQLiteRepository) CountTransactions(ctx context.Context, userID int64, prof core.ProfileKey) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ? AND profile = ?`,
		userID, string(prof)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) ListRecentTransactions(ctx context.Context, userID int64, prof core.ProfileKey, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, profile, type, category, amount_cents, description, date
		 FROM transactions WHERE user_id = ? AND profile = ?
		 ORDER BY date DESC, id DESC LIMIT ?`,
		userID, string(prof), limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var prof, typ string
		if err := rows.Scan(&t.ID, &t.UserID, &prof, &typ, &t.Category, &t.Amount.Cents, &t.Description, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Profile = core.ProfileKey(prof)
		t.Type = core.TransactionType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

// MonthTotals returns the summed income and expense amounts for the given
// wall-clock month. Months with no transactions yield zero totals.
func (r *SQLiteRepository) MonthTotals(ctx context.Context, userID int64, prof core.ProfileKey, year, month int) (income, expense core.Money, err error) {
	start, end := monthRange(year, month)
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
	          WHERE user_id = ? AND profile = ? AND type = ? AND date >= ? AND date < ?`

	if err = r.db.QueryRowContext(ctx, query, userID, string(prof), string(core.Income), start, end).Scan(&income.Cents); err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum income: %w", err)
	}
	if err = r.db.QueryRowContext(ctx, query, userID, string(prof), string(core.Expense), start, end).Scan(&expense.Cents); err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum expense: %w", err)
	}
	return income, expense, nil
}

func monthRange(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ---- budgets ----

// UpsertBudget creates the budget row or redefines its planned amount in a
// single statement. Accumulated spent is never touched by an upsert.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, userID int64, prof core.ProfileKey, category string, amountCents int64, month, year int) (core.Budget, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, profile, category, amount_cents, spent_cents, month, year)
		 VALUES (?, ?, ?, ?, 0, ?, ?)
		 ON CONFLICT (user_id, profile, category, month, year)
		 DO UPDATE SET amount_cents = excluded.amount_cents`,
		userID, string(prof), category, amountCents, month, year)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	b, err := r.getBudget(ctx, userID, prof, category, month, year)
	if err != nil {
		return core.Budget{}, fmt.Errorf("reread budget after upsert: %w", err)
	}

	slog.InfoContext(ctx, "Budget upserted",
		"id", b.ID,
		"user_id", userID,
		"profile", prof,
		"category", category,
		"amount_cents", amountCents,
		"month", month,
		"year", year)

	return b, nil
}

func (r *SQLiteRepository) getBudget(ctx context.Context, userID int64, prof core.ProfileKey, category string, month, year int) (core.Budget, error) {
	var b core.Budget
	var p string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, profile, category, amount_cents, spent_cents, month, year
		 FROM budgets WHERE user_id = ? AND profile = ? AND category = ? AND month = ? AND year = ?`,
		userID, string(prof), category, month, year).
		Scan(&b.ID, &b.UserID, &p, &b.Category, &b.Amount.Cents, &b.Spent.Cents, &b.Month, &b.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	b.Profile = core.ProfileKey(p)
	return b, nil
}

// AddBudgetSpent bumps the accumulated spent of the matching budget as one
// atomic update. Returns false when no budget exists for the key, in which
// case the expense is simply unbudgeted.
func (r *SQLiteRepository) AddBudgetSpent(ctx context.Context, userID int64, prof core.ProfileKey, category string, month, year int, cents int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET spent_cents = spent_cents + ?
		 WHERE user_id = ? AND profile = ? AND category = ? AND month = ? AND year = ?`,
		cents, userID, string(prof), category, month, year)
	if err != nil {
		return false, fmt.Errorf("add budget spent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add budget spent rows: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64, prof core.ProfileKey, month, year int) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, profile, category, amount_cents, spent_cents, month, year
		 FROM budgets WHERE user_id = ? AND profile = ? AND month = ? AND year = ?
		 ORDER BY category`,
		userID, string(prof), month, year)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var p string
		if err := rows.Scan(&b.ID, &b.UserID, &p, &b.Category, &b.Amount.Cents, &b.Spent.Cents, &b.Month, &b.Year); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Profile = core.ProfileKey(p)
		out = append(out, b)
	}
	return out, rows.Err()
}

// ---- savings goals ----

func (r *SQLiteRepository) CreateSavingsGoal(ctx context.Context, userID int64, prof core.ProfileKey, name string, targetCents int64) (core.SavingsGoal, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (user_id, profile, name, target_amount_cents, current_amount_cents, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		userID, string(prof), name, targetCents, now)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("savings goal insert id: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal created",
		"id", id, "user_id", userID, "profile", prof, "name", name, "target_cents", targetCents)

	return core.SavingsGoal{
		ID:           id,
		UserID:       userID,
		Profile:      prof,
		Name:         name,
		TargetAmount: core.Money{Cents: targetCents},
		CreatedAt:    now,
	}, nil
}

// ContributeToGoal increments the goal's saved amount. Ownership is part of
// the update predicate: a goal that does not exist or belongs to another
// user affects zero rows and reports ErrNotFound.
func (r *SQLiteRepository) ContributeToGoal(ctx context.Context, userID, goalID, cents int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals SET current_amount_cents = current_amount_cents + ?
		 WHERE id = ? AND user_id = ?`,
		cents, goalID, userID)
	if err != nil {
		return fmt.Errorf("contribute to goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("contribute to goal rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Goal contribution recorded",
		"goal_id", goalID, "user_id", userID, "amount_cents", cents)

	return nil
}

func (r *SQLiteRepository) ListSavingsGoals(ctx context.Context, userID int64, prof core.ProfileKey) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, profile, name, target_amount_cents, current_amount_cents, created_at
		 FROM savings_goals WHERE user_id = ? AND profile = ? ORDER BY id`,
		userID, string(prof))
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		var p string
		if err := rows.Scan(&g.ID, &g.UserID, &p, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		g.Profile = core.ProfileKey(p)
		out = append(out, g)
	}
	return out, rows.Err()
}

// ---- badges ----

func (r *SQLiteRepository) CreateBadge(ctx context.Context, userID int64, prof core.ProfileKey, name, icon string) (core.Badge, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO badges (user_id, profile, badge_name, badge_icon, earned_at) VALUES (?, ?, ?, ?, ?)`,
		userID, string(prof), name, icon, now)
	if err != nil {
		return core.Badge{}, fmt.Errorf("create badge: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Badge{}, fmt.Errorf("badge insert id: %w", err)
	}

	slog.InfoContext(ctx, "Badge awarded",
		"id", id, "user_id", userID, "profile", prof, "badge", name)

	return core.Badge{ID: id, UserID: userID, Profile: prof, Name: name, Icon: icon, EarnedAt: now}, nil
}

func (r *SQLiteRepository) ListBadges(ctx context.Context, userID int64, prof core.ProfileKey) ([]core.Badge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, profile, badge_name, badge_icon, earned_at
		 FROM badges WHERE user_id = ? AND profile = ? ORDER BY earned_at, id`,
		userID, string(prof))
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var out []core.Badge
	for rows.Next() {
		var b core.Badge
		var p string
		if err := rows.Scan(&b.ID, &b.UserID, &p, &b.Name, &b.Icon, &b.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		b.Profile = core.ProfileKey(p)
		out = append(out, b)
	}
	return out, rows.Err()
}
