package recurring

import (
	"testing"

	"fincal/internal/calendar"
	"fincal/internal/core"
)

func netflixRule() core.RecurringRule {
	return core.RecurringRule{
		ID:          core.NewID(),
		Description: "Netflix",
		Amount:      39.9,
		Type:        core.Expense,
		DayOfMonth:  5,
		Frequency:   core.Monthly,
	}
}

func TestApplyMaterializesOncePerMonth(t *testing.T) {
	rule := netflixRule()
	mat := NewMaterializer(nil)
	store := calendar.NewStore()

	// First visit: March (zero-based month 2).
	store, created := mat.Apply(store, []core.RecurringRule{rule}, 2024, 2)
	if created != 1 {
		t.Fatalf("march visit created %d, want 1", created)
	}

	// Then April.
	store, created = mat.Apply(store, []core.RecurringRule{rule}, 2024, 3)
	if created != 1 {
		t.Fatalf("april visit created %d, want 1", created)
	}

	march := store.Transactions[core.NewDayKey(2024, 2, 5)]
	april := store.Transactions[core.NewDayKey(2024, 3, 5)]
	if len(march) != 1 || len(april) != 1 {
		t.Fatalf("bucket sizes march=%d april=%d, want 1 and 1", len(march), len(april))
	}
	for _, tx := range []core.Transaction{march[0], april[0]} {
		if !tx.Recurring {
			t.Error("materialized transaction must carry recurring=true")
		}
		if tx.Description != "Netflix" || tx.Amount != 39.9 || tx.Type != core.Expense {
			t.Errorf("materialized fields = %+v", tx)
		}
		if tx.ID == "" {
			t.Error("materialized transaction must get a fresh id")
		}
	}
	if march[0].ID == april[0].ID {
		t.Error("each materialization must mint its own id")
	}
}

func TestApplyIdempotent(t *testing.T) {
	rule := netflixRule()
	mat := NewMaterializer(nil)
	store := calendar.NewStore()

	store, _ = mat.Apply(store, []core.RecurringRule{rule}, 2024, 2)
	store, created := mat.Apply(store, []core.RecurringRule{rule}, 2024, 2)
	if created != 0 {
		t.Fatalf("repeat visit created %d, want 0", created)
	}
	if n := len(store.Transactions[core.NewDayKey(2024, 2, 5)]); n != 1 {
		t.Errorf("bucket size = %d, want 1", n)
	}
}

func TestContentMatchSuppressesIdenticalManualEntry(t *testing.T) {
	rule := netflixRule()
	mat := NewMaterializer(nil)
	key := core.NewDayKey(2024, 2, 5)

	// A manual entry matching the rule field-for-field counts as already
	// materialized. Documented trade-off of content matching.
	store := calendar.NewStore()
	store, _, _ = store.AddTransaction(key, "Netflix", "39.9", core.Expense)

	store, created := mat.Apply(store, []core.RecurringRule{rule}, 2024, 2)
	if created != 0 {
		t.Fatalf("created %d, want 0", created)
	}
	if n := len(store.Transactions[key]); n != 1 {
		t.Errorf("bucket size = %d, want 1", n)
	}
}

func TestContentMatchDuplicatesAfterAmountDrift(t *testing.T) {
	rule := netflixRule()
	mat := NewMaterializer(ContentMatcher{})
	store := calendar.NewStore()
	store, _ = mat.Apply(store, []core.RecurringRule{rule}, 2024, 2)

	// Delete-and-recreate with a new amount: the old instance no longer
	// matches, so the next visit materializes a second entry.
	edited := rule
	edited.ID = core.NewID()
	edited.Amount = 44.9

	store, created := mat.Apply(store, []core.RecurringRule{edited}, 2024, 2)
	if created != 1 {
		t.Fatalf("created %d, want 1", created)
	}
	if n := len(store.Transactions[core.NewDayKey(2024, 2, 5)]); n != 2 {
		t.Errorf("bucket size = %d, want 2", n)
	}
}

func TestRuleKeyMatcherAlternative(t *testing.T) {
	rule := netflixRule()
	mat := NewMaterializer(RuleKeyMatcher{})
	key := core.NewDayKey(2024, 2, 5)

	// Identical manual entry does not suppress under rule-key matching.
	store := calendar.NewStore()
	store, _, _ = store.AddTransaction(key, "Netflix", "39.9", core.Expense)

	store, created := mat.Apply(store, []core.RecurringRule{rule}, 2024, 2)
	if created != 1 {
		t.Fatalf("created %d, want 1", created)
	}

	// But a second visit is still idempotent.
	store, created = mat.Apply(store, []core.RecurringRule{rule}, 2024, 2)
	if created != 0 {
		t.Fatalf("repeat visit created %d, want 0", created)
	}
	if n := len(store.Transactions[key]); n != 2 {
		t.Errorf("bucket size = %d, want 2", n)
	}
}

func TestGetMatcher(t *testing.T) {
	if _, err := GetMatcher("content"); err != nil {
		t.Errorf("content matcher missing: %v", err)
	}
	if _, err := GetMatcher("rule-key"); err != nil {
		t.Errorf("rule-key matcher missing: %v", err)
	}
	if _, err := GetMatcher("fuzzy"); err == nil {
		t.Error("unknown strategy must error")
	}
}

func TestApplyNeverBackfillsOtherMonths(t *testing.T) {
	rule := netflixRule()
	mat := NewMaterializer(nil)
	store := calendar.NewStore()

	store, _ = mat.Apply(store, []core.RecurringRule{rule}, 2024, 5)

	for month := 0; month < 12; month++ {
		if month == 5 {
			continue
		}
		if n := len(store.Transactions[core.NewDayKey(2024, month, 5)]); n != 0 {
			t.Errorf("month %d got %d entries, want 0", month, n)
		}
	}
}
