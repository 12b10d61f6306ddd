package http

import (
	"log/slog"
	"net/http"
	"time"

	"omnibudget/internal/core"
	"omnibudget/internal/profile"
	"omnibudget/internal/services"
)

type budgetRow struct {
	Category  string
	Amount    string
	Spent     string
	Remaining string
	Width     int
	Over      bool
}

type goalRow struct {
	ID      int64
	Name    string
	Target  string
	Current string
	Width   int
	Reached bool
}

type transactionRow struct {
	Date        string
	Type        string
	Category    string
	Amount      string
	Description string
	Income      bool
}

type badgeRow struct {
	Name string
	Icon string
}

type dashboardPage struct {
	Username     string
	Profile      profile.Config
	Profiles     []profile.Config
	Month        string
	Year         int
	TotalIncome  string
	TotalExpense string
	Net          string
	NetNegative  bool
	Transactions []transactionRow
	Budgets      []budgetRow
	Goals        []goalRow
	Badges       []badgeRow
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, user core.User) {
	cfg, err := profile.Lookup(user.CurrentProfile)
	if err != nil {
		slog.ErrorContext(r.Context(), "Stored profile unknown", "error", err, "user_id", user.ID, "profile", user.CurrentProfile)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	view, err := s.getDashboard(r, user)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard load failed", "error", err, "user_id", user.ID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.renderPage(w, r, "dashboard.html", buildDashboardPage(user, cfg, view))
}

// getDashboard serves the composed view from the LRU cache when fresh,
// falling back to the service on a miss.
func (s *Server) getDashboard(r *http.Request, user core.User) (services.DashboardView, error) {
	now := time.Now().UTC()
	key := dashCacheKey(user.ID, user.CurrentProfile, now.Year(), int(now.Month()))

	if view, found := s.dashCache.Get(key); found {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "user_id", user.ID, "profile", user.CurrentProfile)
		return view, nil
	}

	view, err := s.finance.Dashboard(r.Context(), user)
	if err != nil {
		return services.DashboardView{}, err
	}
	s.dashCache.Set(key, view)
	return view, nil
}

func buildDashboardPage(user core.User, cfg profile.Config, view services.DashboardView) dashboardPage {
	page := dashboardPage{
		Username:     user.Username,
		Profile:      cfg,
		Profiles:     profile.All(),
		Month:        time.Month(view.Month).String(),
		Year:         view.Year,
		TotalIncome:  view.TotalIncome.Format(),
		TotalExpense: view.TotalExpense.Format(),
	}

	net := core.Money{Cents: view.TotalIncome.Cents - view.TotalExpense.Cents}
	page.Net = net.Format()
	page.NetNegative = net.Cents < 0

	for _, t := range view.RecentTransactions {
		page.Transactions = append(page.Transactions, transactionRow{
			Date:        t.Date.Format("02 Jan 2006"),
			Type:        string(t.Type),
			Category:    t.Category,
			Amount:      t.Amount.Format(),
			Description: t.Description,
			Income:      t.Type == core.Income,
		})
	}

	for _, b := range view.Budgets {
		page.Budgets = append(page.Budgets, budgetRow{
			Category:  b.Category,
			Amount:    b.Amount.Format(),
			Spent:     b.Spent.Format(),
			Remaining: core.Money{Cents: b.Amount.Cents - b.Spent.Cents}.Format(),
			Width:     progressWidth(b.Spent.Cents, b.Amount.Cents),
			Over:      b.Spent.Cents > b.Amount.Cents,
		})
	}

	for _, g := range view.SavingsGoals {
		page.Goals = append(page.Goals, goalRow{
			ID:      g.ID,
			Name:    g.Name,
			Target:  g.TargetAmount.Format(),
			Current: g.CurrentAmount.Format(),
			Width:   progressWidth(g.CurrentAmount.Cents, g.TargetAmount.Cents),
			Reached: g.CurrentAmount.Cents >= g.TargetAmount.Cents,
		})
	}

	for _, b := range view.Badges {
		page.Badges = append(page.Badges, badgeRow{Name: b.Name, Icon: b.Icon})
	}

	return page
}

// progressWidth maps part/total to a rounded percent clamped to
// [0, 100], keeping tiny non-zero values visible.
func progressWidth(part, total int64) int {
	if total <= 0 || part <= 0 {
		return 0
	}
	width := int((part*100 + total/2) / total)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}
