package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"omnibudget/internal/core"
)

func registerTestUser(t *testing.T, svc *AuthService, prof core.ProfileKey) core.User {
	t.Helper()
	user, err := svc.Register(context.Background(), "user-"+string(prof), string(prof)+"@x.com", "pw", prof)
	if err != nil {
		t.Fatalf("register %s user: %v", prof, err)
	}
	return user
}

func TestRecordTransactionBumpsBudget(t *testing.T) {
	store := newTestStorage(t)
	auth := NewAuthService(store)
	fin := NewFinanceService(store, nil)
	ctx := context.Background()
	user := registerTestUser(t, auth, core.Builder)

	if _, err := fin.UpsertBudget(ctx, user, "Groceries", 500_00); err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
	if _, _, err := fin.RecordTransaction(ctx, user, core.Expense, "Groceries", 120_50, "weekly shop"); err != nil {
		t.Fatalf("record expense: %v", err)
	}
	if _, _, err := fin.RecordTransaction(ctx, user, core.Expense, "Groceries", 30_00, ""); err != nil {
		t.Fatalf("record second expense: %v", err)
	}

	view, err := fin.Dashboard(ctx, user)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(view.Budgets) != 1 {
		t.Fatalf("budgets = %d, want 1", len(view.Budgets))
	}
	if got := view.Budgets[0].Spent.Cents; got != 150_50 {
		t.Fatalf("spent = %d, want 15050", got)
	}
	if view.TotalExpense.Cents != 150_50 {
		t.Fatalf("total expense = %d, want 15050", view.TotalExpense.Cents)
	}
}

func TestExpenseBeforeBudgetLeavesSpentZero(t *testing.T) {
	store := newTestStorage(t)
	auth := NewAuthService(store)
	fin := NewFinanceService(store, nil)
	ctx := context.Background()
	user := registerTestUser(t, auth, core.Builder)

	// An unbudgeted expense is accepted and does not pre-charge a
	// budget created afterwards.
	if _, _, err := fin.RecordTransaction(ctx, user, core.Expense, "Rent", 800_00, ""); err != nil {
		t.Fatalf("record expense: %v", err)
	}
	b, err := fin.UpsertBudget(ctx, user, "Rent", 1000_00)
	if err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
	if b.Spent.Cents != 0 {
		t.Fatalf("spent = %d, want 0 for a budget created after the expense", b.Spent.Cents)
	}
}

func TestUpsertBudgetPreservesSpent(t *testing.T) {
	store := newTestStorage(t)
	auth := NewAuthService(store)
	fin := NewFinanceService(store, nil)
	ctx := context.Background()
	user := registerTestUser(t, auth, core.Builder)

	if _, err := fin.UpsertBudget(ctx, user, "Fun", 100_00); err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
	if _, _, err := fin.RecordTransaction(ctx, user, core.Expense, "Fun", 40_00, ""); err != nil {
		t.Fatalf("record expense: %v", err)
	}
	b, err := fin.UpsertBudget(ctx, user, "Fun", 200_00)
	if err != nil {
		t.Fatalf("re-upsert budget: %v", err)
	}
	if b.Amount.Cents != 200_00 {
		t.Fatalf("amount = %d, want 20000", b.Amount.Cents)
	}
	if b.Spent.Cents != 40_00 {
		t.Fatalf("spent = %d, want 4000 preserved across upsert", b.Spent.Cents)
	}
}

func TestFirstTransactionBadgeExactlyOnce(t *testing.T) {
	store := newTestStorage(t)
	auth := NewAuthService(store)
	fin := NewFinanceService(store, nil)
	ctx := context.Background()
	user := registerTestUser(t, auth, core.Explorer)

	_, awarded, err := fin.RecordTransaction(ctx, user, core.Income, "Pocket Money", 50_00, "")
	if err != nil {
		t.Fatalf("first transaction: %v", err)
	}
	if awarded == nil || awarded.Name != firstTransactionBadgeName {
		t.Fatalf("first transaction awarded %+v, want the first-transaction badge", awarded)
	}
	_, awarded, err = fin.RecordTransaction(ctx, user, core.Income, "Gifts", 20_00, "")
	if err != nil {
		t.Fatalf("second transaction: %v", err)
	}
	if awarded != nil {
		t.Fatalf("second transaction awarded %+v, want none", awarded)
	}

	badges, err := store.ListBadges(ctx, user.ID, core.Explorer)
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	if len(badges) != 1 {
		t.Fatalf("badges = %d, want exactly 1", len(badges))
	}
	if badges[0].Name != firstTransactionBadgeName {
		t.Fatalf("badge name = %q", badges[0].Name)
	}
}

func TestBadgeOnlyForExplorer(t *testing.T) {
	store := newTestStorage(t)
	auth := NewAuthService(store)
	fin := NewFinanceService(store, nil)
	ctx := context.Background()
	user := registerTestUser(t, auth, core.Guardian)

	if _, _, err := fin.RecordTransaction(ctx, user, core.Income, "Pension", 300_00, ""); err != nil {
		t.Fatalf("record income: %v", err)
	}
	badges, err := store.ListBadges(ctx, user.ID, core.Guardian)
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	if len(badges) != 0 {
		t.Fatalf("badges = %d, want 0 outside explorer", len(badges))
	}
}

func TestRecordTransactionRejectsBadInput(t *testing.T) {
	store := newTestStorage(t)
	auth := NewAuthService(store)
	fin := NewFinanceService(store, nil)
	ctx := context.Background()
	user := registerTestUser(t, auth, core.Pacer)

	if _, _, err := fin.RecordTransaction(ctx, user, core.Expense, "Food", 0, ""); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("zero amount: want ErrInvalidAmount, got %v", err)
	}
	if _, _, err := fin.RecordTransaction(ctx, user, core.Expense, "Food", -5_00, ""); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("negative amount: want ErrInvalidAmount, got %v", err)
	}
	if _, _, err := fin.RecordTransaction(ctx, user, "transfer", "Food", 5_00, ""); !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("bad type: want ErrInvalidType, got %v", err)
	}
	if _, _, err := fin.RecordTransaction(ctx, user, core.Expense, "  ", 5_00, ""); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("blank category: want ErrEmptyCategory, got %v", err)
	}
}

func TestSavingsGoals(t *testing.T) {
	store := newTestStorage(t)
	auth := NewAuthService(store)
	fin := NewFinanceService(store, nil)
	ctx := context.Background()
	user := registerTestUser(t, auth, core.Pacer)

	goal, err := fin.CreateSavingsGoal(ctx, user, "New Bike", 300_00)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if err := fin.ContributeToGoal(ctx, user, goal.ID, 75_00); err != nil {
		t.Fatalf("contribute: %v", err)
	}
	if err := fin.ContributeToGoal(ctx, user, goal.ID, 25_00); err != nil {
		t.Fatalf("second contribution: %v", err)
	}

	goals, err := store.ListSavingsGoals(ctx, user.ID, core.Pacer)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("goals = %d, want 1", len(goals))
	}
	if goals[0].CurrentAmount.Cents != 100_00 {
		t.Fatalf("current = %d, want 10000", goals[0].CurrentAmount.Cents)
	}

	if err := fin.ContributeToGoal(ctx, user, goal.ID, -10); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("negative contribution: want ErrInvalidAmount, got %v", err)
	}
	if err := fin.ContributeToGoal(ctx, user, goal.ID+999, 10_00); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown goal: want ErrNotFound, got %v", err)
	}
}

func TestMonthScopingNearBoundaryInLocalZone(t *testing.T) {
	store := newTestStorage(t)
	auth := NewAuthService(store)
	fin := NewFinanceService(store, nil)
	ctx := context.Background()
	user := registerTestUser(t, auth, core.Builder)

	// Local wall clock 31 Aug 23:30 in UTC-12 is already 1 Sep 11:30 in
	// UTC. Dates are stored in UTC, so everything month-scoped must land
	// in September: budget identity, the spent bump, and the totals
	// window all have to agree on the UTC month.
	loc := time.FixedZone("UTC-12", -12*60*60)
	fin.now = func() time.Time { return time.Date(2026, time.August, 31, 23, 30, 0, 0, loc) }

	if _, err := fin.UpsertBudget(ctx, user, "Groceries", 500_00); err != nil {
		t.Fatalf("upsert budget: %v", err)
	}
	if _, _, err := fin.RecordTransaction(ctx, user, core.Expense, "Groceries", 120_50, ""); err != nil {
		t.Fatalf("record expense: %v", err)
	}

	view, err := fin.Dashboard(ctx, user)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if view.Year != 2026 || view.Month != int(time.September) {
		t.Fatalf("view month = %d-%02d, want 2026-09 (UTC month, not local)", view.Year, view.Month)
	}
	if view.TotalExpense.Cents != 120_50 {
		t.Fatalf("total expense = %d, want 12050: expense invisible in its own month", view.TotalExpense.Cents)
	}
	if len(view.Budgets) != 1 {
		t.Fatalf("budgets = %d, want 1", len(view.Budgets))
	}
	if b := view.Budgets[0]; b.Month != int(time.September) || b.Spent.Cents != 120_50 {
		t.Fatalf("budget month/spent = %d/%d, want 9/12050", b.Month, b.Spent.Cents)
	}
}

func TestDashboardEmptyAndProfileIsolation(t *testing.T) {
	store := newTestStorage(t)
	auth := NewAuthService(store)
	fin := NewFinanceService(store, nil)
	ctx := context.Background()
	user := registerTestUser(t, auth, core.Builder)

	view, err := fin.Dashboard(ctx, user)
	if err != nil {
		t.Fatalf("empty dashboard: %v", err)
	}
	if view.TotalIncome.Cents != 0 || view.TotalExpense.Cents != 0 {
		t.Fatalf("totals = %d/%d, want 0/0", view.TotalIncome.Cents, view.TotalExpense.Cents)
	}
	now := time.Now().UTC()
	if view.Year != now.Year() || view.Month != int(now.Month()) {
		t.Fatalf("view month = %d-%02d, want current", view.Year, view.Month)
	}

	if _, _, err := fin.RecordTransaction(ctx, user, core.Income, "Salary", 2500_00, ""); err != nil {
		t.Fatalf("record income: %v", err)
	}
	if err := auth.SwitchProfile(ctx, user, core.Guardian); err != nil {
		t.Fatalf("switch profile: %v", err)
	}
	switched, err := auth.CurrentUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}

	other, err := fin.Dashboard(ctx, switched)
	if err != nil {
		t.Fatalf("guardian dashboard: %v", err)
	}
	if other.TotalIncome.Cents != 0 {
		t.Fatalf("guardian income = %d, want 0: profiles leak", other.TotalIncome.Cents)
	}
	if len(other.RecentTransactions) != 0 {
		t.Fatalf("guardian transactions = %d, want 0", len(other.RecentTransactions))
	}
}
