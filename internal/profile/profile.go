// Package profile holds the static registry of age-band profiles.
//
// The registry is display metadata only: category lists are hints for the
// UI, not constraints. A transaction whose category is absent from the
// owning profile's list is still accepted.
package profile

import (
	"omnibudget/internal/core"
)

// Config describes one profile. Immutable after startup.
type Config struct {
	Key               core.ProfileKey
	Name              string
	AgeRange          string
	Theme             string
	IncomeCategories  []string
	ExpenseCategories []string
	BudgetType        string
}

var registry = map[core.ProfileKey]Config{
	core.Explorer: {
		Key:               core.Explorer,
		Name:              "Explorer",
		AgeRange:          "6-12",
		Theme:             "explorer",
		IncomeCategories:  []string{"Pocket Money", "Gifts", "Chores"},
		ExpenseCategories: []string{"Toys", "Snacks", "Games", "Books"},
		BudgetType:        "Piggy Bank",
	},
	core.Pacer: {
		Key:               core.Pacer,
		Name:              "Pacer",
		AgeRange:          "13-22",
		Theme:             "pacer",
		IncomeCategories:  []string{"Freelance", "Internship", "Part-time Job", "Allowance"},
		ExpenseCategories: []string{"Food", "Recharge", "Entertainment", "Transport", "Shopping"},
		BudgetType:        "Buckets",
	},
	core.Builder: {
		Key:               core.Builder,
		Name:              "Builder",
		AgeRange:          "23-60",
		Theme:             "builder",
		IncomeCategories:  []string{"Salary", "Business", "Investments", "Rental Income"},
		ExpenseCategories: []string{"EMI", "Rent", "Groceries", "Utilities", "Insurance", "Education"},
		BudgetType:        "Zero-Based Budgeting",
	},
	core.Guardian: {
		Key:               core.Guardian,
		Name:              "Guardian",
		AgeRange:          "60+",
		Theme:             "guardian",
		IncomeCategories:  []string{"Pension", "Interest", "Dividends", "Rental Income"},
		ExpenseCategories: []string{"Medicine", "Healthcare", "Gifts", "Utilities", "Groceries"},
		BudgetType:        "Monthly Cash Flow",
	},
}

// displayOrder is youngest to oldest, the order profiles appear in forms.
var displayOrder = []core.ProfileKey{core.Explorer, core.Pacer, core.Builder, core.Guardian}

// Lookup returns the configuration for the given profile key.
func Lookup(key core.ProfileKey) (Config, error) {
	cfg, ok := registry[key]
	if !ok {
		return Config{}, core.ErrUnknownProfile
	}
	return cfg, nil
}

// Keys returns all profile keys in display order.
func Keys() []core.ProfileKey {
	out := make([]core.ProfileKey, len(displayOrder))
	copy(out, displayOrder)
	return out
}

// All returns all profile configurations in display order.
func All() []Config {
	out := make([]Config, 0, len(displayOrder))
	for _, k := range displayOrder {
		out = append(out, registry[k])
	}
	return out
}
