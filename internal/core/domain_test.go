package core

import (
	"strings"
	"testing"
)

func TestTransactionTypeValidate(t *testing.T) {
	if err := Income.Validate(); err != nil {
		t.Fatalf("income: %v", err)
	}
	if err := Expense.Validate(); err != nil {
		t.Fatalf("expense: %v", err)
	}
	if err := TransactionType("transfer").Validate(); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestProfileKeyValid(t *testing.T) {
	for _, p := range []ProfileKey{Explorer, Pacer, Builder, Guardian} {
		if !p.Valid() {
			t.Fatalf("%s should be valid", p)
		}
	}
	if ProfileKey("wizard").Valid() {
		t.Fatalf("wizard should not be valid")
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Profile:  Pacer,
		Type:     Expense,
		Category: "Food",
		Amount:   Money{Cents: 50000},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Profile: Pacer, Type: "loan", Category: "Food", Amount: Money{Cents: 1}},
		{Profile: Pacer, Type: Expense, Category: "  ", Amount: Money{Cents: 1}},
		{Profile: Pacer, Type: Expense, Category: "Food", Amount: Money{Cents: 0}},
		{Profile: Pacer, Type: Expense, Category: "Food", Amount: Money{Cents: -5}},
		{Profile: "wizard", Type: Expense, Category: "Food", Amount: Money{Cents: 1}},
		{Profile: Pacer, Type: Expense, Category: "Food", Amount: Money{Cents: 1}, Description: strings.Repeat("x", 201)},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestSavingsGoalValidate(t *testing.T) {
	good := SavingsGoal{Name: "Bicycle", TargetAmount: Money{Cents: 100000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (SavingsGoal{Name: "", TargetAmount: Money{Cents: 1}}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (SavingsGoal{Name: "x", TargetAmount: Money{Cents: 0}}).Validate(); err == nil {
		t.Fatalf("expected error for zero target")
	}
}
