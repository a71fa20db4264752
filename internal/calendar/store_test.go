package calendar

import (
	"testing"

	"fincal/internal/core"
)

func TestAddTransactionValidation(t *testing.T) {
	key := core.NewDayKey(2024, 0, 15)
	store := NewStore()

	tests := []struct {
		name        string
		description string
		amount      string
		typ         core.TxType
		wantErr     error
	}{
		{name: "empty description", description: "", amount: "10", typ: core.Income, wantErr: core.ErrEmptyDescription},
		{name: "whitespace description", description: "   ", amount: "10", typ: core.Income, wantErr: core.ErrEmptyDescription},
		{name: "empty amount", description: "Salary", amount: "", typ: core.Income, wantErr: core.ErrInvalidAmount},
		{name: "unparseable amount", description: "Salary", amount: "ten", typ: core.Income, wantErr: core.ErrInvalidAmount},
		{name: "negative amount", description: "Salary", amount: "-10", typ: core.Income, wantErr: core.ErrInvalidAmount},
		{name: "bad type", description: "Salary", amount: "10", typ: "loan", wantErr: core.ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := store.AddTransaction(key, tt.description, tt.amount, tt.typ)
			if err != tt.wantErr {
				t.Fatalf("AddTransaction() error = %v, want %v", err, tt.wantErr)
			}
			if len(next.Transactions) != 0 {
				t.Error("rejected mutation must leave the store unchanged")
			}
		})
	}
}

func TestAddTransactionImmutable(t *testing.T) {
	key := core.NewDayKey(2024, 0, 15)
	before := NewStore()

	after, tx, err := before.AddTransaction(key, "Salary", "1000", core.Income)
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if tx.ID == "" {
		t.Error("transaction must get a unique id")
	}
	if len(before.Transactions[key]) != 0 {
		t.Error("previous store value was mutated")
	}
	if len(after.Transactions[key]) != 1 {
		t.Fatalf("bucket size = %d, want 1", len(after.Transactions[key]))
	}
}

func TestDeleteTransaction(t *testing.T) {
	key := core.NewDayKey(2024, 0, 15)
	store := NewStore()
	store, first, _ := store.AddTransaction(key, "Salary", "1000", core.Income)
	store, second, _ := store.AddTransaction(key, "Rent payment", "500", core.Expense)

	t.Run("removes matching entry", func(t *testing.T) {
		next := store.DeleteTransaction(key, first.ID)
		bucket := next.Transactions[key]
		if len(bucket) != 1 || bucket[0].ID != second.ID {
			t.Errorf("bucket after delete = %+v", bucket)
		}
		if got := next.DayBalance(key); got != -500 {
			t.Errorf("DayBalance = %v, want -500", got)
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		next := store.DeleteTransaction(key, "no-such-id")
		if len(next.Transactions[key]) != 2 {
			t.Errorf("bucket size = %d, want 2", len(next.Transactions[key]))
		}
	})

	t.Run("missing bucket is a no-op", func(t *testing.T) {
		next := store.DeleteTransaction(core.NewDayKey(2024, 1, 1), first.ID)
		if len(next.Transactions) != len(store.Transactions) {
			t.Error("delete on missing bucket changed the store")
		}
	})
}

func TestInsertionOrderPreserved(t *testing.T) {
	key := core.NewDayKey(2024, 2, 3)
	store := NewStore()
	store, _, _ = store.AddTransaction(key, "first", "1", core.Income)
	store, _, _ = store.AddTransaction(key, "second", "2", core.Income)
	store, _, _ = store.AddTransaction(key, "third", "3", core.Income)

	bucket := store.Transactions[key]
	want := []string{"first", "second", "third"}
	for i, desc := range want {
		if bucket[i].Description != desc {
			t.Fatalf("bucket[%d] = %q, want %q", i, bucket[i].Description, desc)
		}
	}
}

func TestNotes(t *testing.T) {
	key := core.NewDayKey(2024, 0, 2)
	store := NewStore()

	if _, _, err := store.AddNote(key, "  \t "); err != core.ErrEmptyText {
		t.Errorf("whitespace note: got %v, want %v", err, core.ErrEmptyText)
	}

	store, note, err := store.AddNote(key, "pay the plumber")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	store = store.DeleteNote(key, note.ID)
	if len(store.Notes[key]) != 0 {
		t.Error("note survived deletion")
	}
}

func TestReminders(t *testing.T) {
	key := core.NewDayKey(2024, 0, 2)
	store := NewStore()

	if _, _, err := store.AddReminder(key, "dentist", ""); err != core.ErrMissingTime {
		t.Errorf("reminder without time: got %v, want %v", err, core.ErrMissingTime)
	}

	store, rem, err := store.AddReminder(key, "dentist", "09:30")
	if err != nil {
		t.Fatalf("AddReminder: %v", err)
	}
	if rem.Notified {
		t.Error("new reminder must start un-notified")
	}
	store = store.DeleteReminder(key, rem.ID)
	if len(store.Reminders[key]) != 0 {
		t.Error("reminder survived deletion")
	}
}

func TestFromSnapshotCopies(t *testing.T) {
	key := core.NewDayKey(2024, 0, 15)
	snap := core.EmptySnapshot()
	snap.Transactions[key] = []core.Transaction{{ID: "t1", Description: "Salary", Amount: 1000, Type: core.Income}}

	store := FromSnapshot(snap)
	store.Transactions[key][0].Amount = 1

	if snap.Transactions[key][0].Amount != 1000 {
		t.Error("FromSnapshot must deep-copy buckets")
	}
}
