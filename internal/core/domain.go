package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Explorer ProfileKey = "explorer"
	Pacer    ProfileKey = "pacer"
	Builder  ProfileKey = "builder"
	Guardian ProfileKey = "guardian"
)

type (
	// TransactionType distinguishes money coming in from money going out.
	TransactionType string

	// ProfileKey identifies one of the fixed age-band profiles. All user
	// data is scoped to a (user, profile) pair.
	ProfileKey string

	Money struct {
		Cents int64
	}

	User struct {
		ID             int64
		Username       string
		Email          string
		PasswordHash   string
		CurrentProfile ProfileKey
		CreatedAt      time.Time
	}

	// Transaction is immutable once recorded: there is no update or
	// delete operation anywhere in the system.
	Transaction struct {
		ID          int64
		UserID      int64
		Profile     ProfileKey
		Type        TransactionType
		Category    string
		Amount      Money
		Description string
		Date        time.Time
	}

	// Budget is keyed by (user, profile, category, month, year). Spent
	// only ever increases, bumped by each matching expense at the moment
	// it is recorded.
	Budget struct {
		ID       int64
		UserID   int64
		Profile  ProfileKey
		Category string
		Amount   Money
		Spent    Money
		Month    int
		Year     int
	}

	SavingsGoal struct {
		ID            int64
		UserID        int64
		Profile       ProfileKey
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		CreatedAt     time.Time
	}

	// Badge is a gamification record. Awarded by rule, never revoked.
	Badge struct {
		ID       int64
		UserID   int64
		Profile  ProfileKey
		Name     string
		Icon     string
		EarnedAt time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyUsername      = errors.New("empty username")
	ErrEmptyEmail         = errors.New("empty email")
	ErrEmptyPassword      = errors.New("empty password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownProfile     = errors.New("unknown profile")
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("not logged in")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (p ProfileKey) Valid() bool {
	switch p {
	case Explorer, Pacer, Builder, Guardian:
		return true
	default:
		return false
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !t.Profile.Valid() {
		return ErrUnknownProfile
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if b.Month < 1 || b.Month > 12 {
		return errors.New("invalid month")
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return g.TargetAmount.Validate()
}
