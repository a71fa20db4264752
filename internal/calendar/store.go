// Package calendar implements the day-keyed calendar store and the
// aggregate calculations derived from it.
//
// The store follows an immutable-update discipline: every mutation
// returns a new Store value and leaves the receiver untouched, so a
// caller can hold the previous value for cheap change detection.
package calendar

import (
	"fincal/internal/core"
)

// Store maps day keys to their transaction, note and reminder buckets.
// Buckets are created lazily on first insert; insertion order within a
// bucket is the display order.
type Store struct {
	Transactions map[core.DayKey][]core.Transaction
	Notes        map[core.DayKey][]core.Note
	Reminders    map[core.DayKey][]core.Reminder
}

// NewStore returns an empty store.
func NewStore() Store {
	return Store{
		Transactions: map[core.DayKey][]core.Transaction{},
		Notes:        map[core.DayKey][]core.Note{},
		Reminders:    map[core.DayKey][]core.Reminder{},
	}
}

// FromSnapshot rebuilds a store from persisted state. Nil maps load as
// empty so a partial snapshot still yields a usable store.
func FromSnapshot(snap core.Snapshot) Store {
	s := NewStore()
	for k, v := range snap.Transactions {
		s.Transactions[k] = append([]core.Transaction(nil), v...)
	}
	for k, v := range snap.Notes {
		s.Notes[k] = append([]core.Note(nil), v...)
	}
	for k, v := range snap.Reminders {
		s.Reminders[k] = append([]core.Reminder(nil), v...)
	}
	return s
}

// AddTransaction validates and appends a transaction to the day's bucket.
// On a validation rejection the original store is returned unchanged
// together with the sentinel error.
func (s Store) AddTransaction(key core.DayKey, description, amount string, typ core.TxType) (Store, core.Transaction, error) {
	value, err := core.ParseAmount(amount)
	if err != nil {
		return s, core.Transaction{}, err
	}
	tx := core.Transaction{
		ID:          core.NewID(),
		Description: description,
		Amount:      value,
		Type:        typ,
	}
	if err := tx.Validate(); err != nil {
		return s, core.Transaction{}, err
	}
	return s.AppendTransaction(key, tx), tx, nil
}

// AppendTransaction files an already-built transaction under key.
// The materializer uses this path for synthesized entries.
func (s Store) AppendTransaction(key core.DayKey, tx core.Transaction) Store {
	out := s
	out.Transactions = withBucket(s.Transactions, key, appendCopy(s.Transactions[key], tx))
	return out
}

// DeleteTransaction removes the entry with the given id from the day's
// bucket. Unknown ids are a no-op.
func (s Store) DeleteTransaction(key core.DayKey, id string) Store {
	bucket, changed := deleteByID(s.Transactions[key], id, func(t core.Transaction) string { return t.ID })
	if !changed {
		return s
	}
	out := s
	out.Transactions = withBucket(s.Transactions, key, bucket)
	return out
}

// AddNote validates and appends a note. Whitespace-only text is rejected.
func (s Store) AddNote(key core.DayKey, text string) (Store, core.Note, error) {
	note := core.Note{ID: core.NewID(), Text: text}
	if err := note.Validate(); err != nil {
		return s, core.Note{}, err
	}
	out := s
	out.Notes = withBucket(s.Notes, key, appendCopy(s.Notes[key], note))
	return out, note, nil
}

func (s Store) DeleteNote(key core.DayKey, id string) Store {
	bucket, changed := deleteByID(s.Notes[key], id, func(n core.Note) string { return n.ID })
	if !changed {
		return s
	}
	out := s
	out.Notes = withBucket(s.Notes, key, bucket)
	return out
}

// AddReminder validates and appends a reminder. Both a non-empty text
// and a time value are required. Reminders start un-notified.
func (s Store) AddReminder(key core.DayKey, text, clock string) (Store, core.Reminder, error) {
	rem := core.Reminder{ID: core.NewID(), Text: text, Time: clock}
	if err := rem.Validate(); err != nil {
		return s, core.Reminder{}, err
	}
	out := s
	out.Reminders = withBucket(s.Reminders, key, appendCopy(s.Reminders[key], rem))
	return out, rem, nil
}

func (s Store) DeleteReminder(key core.DayKey, id string) Store {
	bucket, changed := deleteByID(s.Reminders[key], id, func(r core.Reminder) string { return r.ID })
	if !changed {
		return s
	}
	out := s
	out.Reminders = withBucket(s.Reminders, key, bucket)
	return out
}

// withBucket clones the outer map with one bucket replaced. An emptied
// bucket keeps its key; only days never written to lack one.
func withBucket[T any](m map[core.DayKey][]T, key core.DayKey, bucket []T) map[core.DayKey][]T {
	out := make(map[core.DayKey][]T, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[key] = bucket
	return out
}

func appendCopy[T any](bucket []T, item T) []T {
	out := make([]T, 0, len(bucket)+1)
	out = append(out, bucket...)
	return append(out, item)
}

func deleteByID[T any](bucket []T, id string, idOf func(T) string) ([]T, bool) {
	for i, item := range bucket {
		if idOf(item) != id {
			continue
		}
		out := make([]T, 0, len(bucket)-1)
		out = append(out, bucket[:i]...)
		return append(out, bucket[i+1:]...), true
	}
	return bucket, false
}
