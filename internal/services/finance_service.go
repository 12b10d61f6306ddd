package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"omnibudget/internal/amqp"
	"omnibudget/internal/core"
	"omnibudget/internal/storage"
)

// recentTransactionLimit is the dashboard's hard cap, not a page size.
const recentTransactionLimit = 10

const firstTransactionBadgeName = "First Transaction"

// FinanceService implements the money-facing operations: recording
// transactions, budget upserts, savings goals, badge awards, and the
// dashboard read side. Activity events are published best-effort when a
// broker is configured.
type FinanceService struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client

	// now is the single clock for month/year scoping, overridable in
	// tests. Dates are stored in UTC, so the scoping month must be the
	// UTC month too: deriving it from the local zone would make a
	// transaction recorded near a month boundary invisible in its own
	// month's totals.
	now func() time.Time
}

func NewFinanceService(storage *storage.SQLiteRepository, events *amqp.Client) *FinanceService {
	return &FinanceService{
		storage: storage,
		events:  events,
		now:     time.Now,
	}
}

// currentMonth derives the wall-clock (year, month) in UTC, matching the
// timezone transaction dates are stored in.
func (s *FinanceService) currentMonth() (year, month int) {
	now := s.now().UTC()
	return now.Year(), int(now.Month())
}

// DashboardView is the composed current-month read model for one
// (user, profile) pair.
type DashboardView struct {
	RecentTransactions []core.Transaction
	Budgets            []core.Budget
	SavingsGoals       []core.SavingsGoal
	Badges             []core.Badge
	TotalIncome        core.Money
	TotalExpense       core.Money
	Month              int
	Year               int
}

// RecordTransaction inserts the transaction scoped to the user's current
// profile, bumps the matching current-month budget for expenses, and
// applies the badge rule. The budget bump is skipped silently when no
// budget exists: the expense is simply unbudgeted. The returned badge is
// non-nil only when this transaction earned one.
func (s *FinanceService) RecordTransaction(ctx context.Context, user core.User, typ core.TransactionType, category string, amountCents int64, description string) (core.Transaction, *core.Badge, error) {
	t := core.Transaction{
		UserID:      user.ID,
		Profile:     user.CurrentProfile,
		Type:        typ,
		Category:    strings.TrimSpace(category),
		Amount:      core.Money{Cents: amountCents},
		Description: strings.TrimSpace(description),
		Date:        s.now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, nil, err
	}

	t, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, nil, fmt.Errorf("record transaction: %w", err)
	}

	if t.Type == core.Expense {
		year, month := s.currentMonth()
		matched, err := s.storage.AddBudgetSpent(ctx, user.ID, user.CurrentProfile, t.Category, month, year, t.Amount.Cents)
		if err != nil {
			return core.Transaction{}, nil, fmt.Errorf("update budget spent: %w", err)
		}
		if !matched {
			slog.DebugContext(ctx, "Expense has no budget for its category this month",
				"user_id", user.ID, "category", t.Category)
		}
	}

	awarded, err := s.awardBadges(ctx, user)
	if err != nil {
		// The transaction is already recorded; a failed award must not
		// undo it. Surface the failure in the logs only.
		slog.ErrorContext(ctx, "Badge award failed", "error", err, "user_id", user.ID)
	}

	s.publishActivity(ctx, amqp.NewActivityMessage(
		amqp.KindTransactionRecorded, user.ID, string(user.CurrentProfile), t.Category, t.Amount.Cents))

	return t, awarded, nil
}

// awardBadges applies the gamification rules after a transaction insert.
// The only rule today: the very first transaction under the explorer
// profile earns the "First Transaction" badge. The strict count==1 check
// makes the award fire exactly once.
func (s *FinanceService) awardBadges(ctx context.Context, user core.User) (*core.Badge, error) {
	if user.CurrentProfile != core.Explorer {
		return nil, nil
	}

	count, err := s.storage.CountTransactions(ctx, user.ID, core.Explorer)
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}
	if count != 1 {
		return nil, nil
	}

	badge, err := s.storage.CreateBadge(ctx, user.ID, core.Explorer, firstTransactionBadgeName, "🎉")
	if err != nil {
		return nil, fmt.Errorf("create badge: %w", err)
	}

	s.publishActivity(ctx, amqp.NewActivityMessage(
		amqp.KindBadgeAwarded, user.ID, string(core.Explorer), badge.Name, 0))

	return &badge, nil
}

// UpsertBudget creates or redefines the planned amount for the current
// wall-clock month. Accumulated spent always survives.
func (s *FinanceService) UpsertBudget(ctx context.Context, user core.User, category string, amountCents int64) (core.Budget, error) {
	year, month := s.currentMonth()
	b := core.Budget{
		UserID:   user.ID,
		Profile:  user.CurrentProfile,
		Category: strings.TrimSpace(category),
		Amount:   core.Money{Cents: amountCents},
		Month:    month,
		Year:     year,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	return s.storage.UpsertBudget(ctx, b.UserID, b.Profile, b.Category, b.Amount.Cents, b.Month, b.Year)
}

// CreateSavingsGoal always creates; goal names are not unique.
func (s *FinanceService) CreateSavingsGoal(ctx context.Context, user core.User, name string, targetCents int64) (core.SavingsGoal, error) {
	g := core.SavingsGoal{
		UserID:       user.ID,
		Profile:      user.CurrentProfile,
		Name:         strings.TrimSpace(name),
		TargetAmount: core.Money{Cents: targetCents},
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	return s.storage.CreateSavingsGoal(ctx, g.UserID, g.Profile, g.Name, g.TargetAmount.Cents)
}

// ContributeToGoal adds to a goal the caller owns. Contributions must be
// strictly positive; a goal that is missing or owned by someone else is
// ErrNotFound.
func (s *FinanceService) ContributeToGoal(ctx context.Context, user core.User, goalID, amountCents int64) error {
	if amountCents <= 0 {
		return core.ErrInvalidAmount
	}
	return s.storage.ContributeToGoal(ctx, user.ID, goalID, amountCents)
}

// Dashboard assembles the current-month view. The five reads are
// independent, so they fan out concurrently; a month with no data yields
// empty sections and zero totals, never an error.
func (s *FinanceService) Dashboard(ctx context.Context, user core.User) (DashboardView, error) {
	year, month := s.currentMonth()
	view := DashboardView{
		Month: month,
		Year:  year,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view.RecentTransactions, err = s.storage.ListRecentTransactions(gctx, user.ID, user.CurrentProfile, recentTransactionLimit)
		return err
	})
	g.Go(func() error {
		var err error
		view.Budgets, err = s.storage.ListBudgets(gctx, user.ID, user.CurrentProfile, view.Month, view.Year)
		return err
	})
	g.Go(func() error {
		var err error
		view.SavingsGoals, err = s.storage.ListSavingsGoals(gctx, user.ID, user.CurrentProfile)
		return err
	})
	g.Go(func() error {
		var err error
		view.Badges, err = s.storage.ListBadges(gctx, user.ID, user.CurrentProfile)
		return err
	})
	g.Go(func() error {
		var err error
		view.TotalIncome, view.TotalExpense, err = s.storage.MonthTotals(gctx, user.ID, user.CurrentProfile, view.Year, view.Month)
		return err
	})

	if err := g.Wait(); err != nil {
		return DashboardView{}, fmt.Errorf("assemble dashboard: %w", err)
	}

	return view, nil
}

// publishActivity emits an event when a broker is configured. Event
// delivery never fails a domain operation.
func (s *FinanceService) publishActivity(ctx context.Context, msg *amqp.ActivityMessage) {
	if s.events == nil {
		slog.DebugContext(ctx, "No event broker configured, skipping activity event", "kind", msg.Kind)
		return
	}
	if err := s.events.PublishActivity(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish activity event",
			"error", err, "kind", msg.Kind, "user_id", msg.UserID)
	}
}
