package core

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// Monthly is the only frequency rules carry today; the field is kept on
// the wire for forward compatibility.
const Monthly Frequency = "monthly"

type (
	TxType    string
	Frequency string

	// Transaction is a single income or expense entry filed under one DayKey.
	// RuleID is set only on entries synthesized from a RecurringRule and is
	// ignored by the default content matcher.
	Transaction struct {
		ID          string  `json:"id"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Type        TxType  `json:"type"`
		Recurring   bool    `json:"recurring,omitempty"`
		RuleID      string  `json:"ruleId,omitempty"`
	}

	Note struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}

	// Reminder carries a Notified flag that is persisted but never flipped
	// here; no notification delivery exists in this engine.
	Reminder struct {
		ID       string `json:"id"`
		Text     string `json:"text"`
		Time     string `json:"time"`
		Notified bool   `json:"notified"`
	}

	// RecurringRule is a global template, not day-scoped. Rules are only
	// added and deleted, never edited in place.
	RecurringRule struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      float64   `json:"amount"`
		Type        TxType    `json:"type"`
		DayOfMonth  int       `json:"dayOfMonth"`
		Frequency   Frequency `json:"frequency"`
	}

	// Settings is presentation state the engine round-trips untouched.
	Settings struct {
		UserName    string `json:"userName"`
		ColorScheme string `json:"colorScheme"`
		Font        string `json:"font"`
		BgColor     string `json:"bgColor"`
	}

	// Snapshot is the full persisted-state blob exchanged with the
	// document store. The field set is the whole contract; a snapshot
	// must reload into an observably identical engine state.
	Snapshot struct {
		Transactions          map[DayKey][]Transaction `json:"transactions"`
		Notes                 map[DayKey][]Note        `json:"notes"`
		Reminders             map[DayKey][]Reminder    `json:"reminders"`
		Settings              Settings                 `json:"settings"`
		RecurringTransactions []RecurringRule          `json:"recurringTransactions"`
		Savings               float64                  `json:"savings"`
		SavingsGoal           float64                  `json:"savingsGoal"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyText        = errors.New("empty text")
	ErrMissingTime      = errors.New("missing time")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDayOfMonth = errors.New("day of month out of range")
)

// NewID returns a fresh unique identifier for any owned entity.
func NewID() string {
	return uuid.NewString()
}

func (t TxType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return t.Type.Validate()
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if strings.TrimSpace(r.Time) == "" {
		return ErrMissingTime
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDayOfMonth
	}
	return nil
}

// DefaultSettings matches the presentation defaults a brand-new user sees.
func DefaultSettings() Settings {
	return Settings{
		UserName:    "Usuário",
		ColorScheme: "pink",
		Font:        "sans",
		BgColor:     "black",
	}
}

// EmptySnapshot is the state an engine starts from when the store holds
// nothing for the user, or when a load fails.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Transactions: map[DayKey][]Transaction{},
		Notes:        map[DayKey][]Note{},
		Reminders:    map[DayKey][]Reminder{},
		Settings:     DefaultSettings(),
	}
}
