// Package services orchestrates the engine: it owns the in-memory
// ledger state for the signed-in user and coordinates the calendar
// store, the recurring materializer, the vault, debounced persistence
// and the identity/document-store collaborator.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"fincal/internal/calendar"
	"fincal/internal/core"
	"fincal/internal/docstore"
	"fincal/internal/events"
	"fincal/internal/log"
	"fincal/internal/recurring"
	"fincal/internal/schedule"
	"fincal/internal/vault"
)

// ErrNoSession is returned by every mutation and read that needs a
// signed-in user when none is present.
var ErrNoSession = errors.New("no active session")

// Session is the per-user engine. All state behind mu is replaced, not
// mutated in place, so reads under the lock stay cheap.
type Session struct {
	auth     docstore.Authenticator
	snaps    docstore.SnapshotStore
	events   *events.Client
	sched    schedule.Scheduler
	logger   *log.Logger
	delay    time.Duration
	material *recurring.Materializer

	mu           sync.Mutex
	identity     *docstore.Identity
	cal          calendar.Store
	rules        []core.RecurringRule
	settings     core.Settings
	savings      vault.Vault
	visibleYear  int
	visibleMonth int
	unsubscribe  func()
}

// Config wires a Session. Events may be nil; a nil Matcher means
// content matching.
type Config struct {
	Auth         docstore.Authenticator
	Snapshots    docstore.SnapshotStore
	Events       *events.Client
	Scheduler    schedule.Scheduler
	Logger       *log.Logger
	SaveDebounce time.Duration
	Matcher      recurring.Matcher
}

func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Session{
		auth:     cfg.Auth,
		snaps:    cfg.Snapshots,
		events:   cfg.Events,
		sched:    cfg.Scheduler,
		logger:   logger.WithComponent(log.ComponentSession),
		delay:    cfg.SaveDebounce,
		material: recurring.NewMaterializer(cfg.Matcher),
		cal:      calendar.NewStore(),
		settings: core.DefaultSettings(),
	}
}

// Start subscribes the session to identity changes. The provider
// delivers the current session shortly after registration, so a user
// already signed in is picked up without a Login call. Calling Start
// again replaces the previous subscription.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.mu.Unlock()

	cancel := s.auth.Subscribe(func(id *docstore.Identity) {
		if id == nil {
			s.teardown()
			return
		}
		s.bind(ctx, *id)
	})

	s.mu.Lock()
	s.unsubscribe = cancel
	s.mu.Unlock()
}

// Login runs the provider sign-in flow. State setup happens through the
// subscription callback, not here.
func (s *Session) Login(ctx context.Context) (docstore.Identity, error) {
	id, err := s.auth.SignIn(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "sign-in failed",
			log.FieldOperation, log.OpSignIn, log.FieldError, err)
		return docstore.Identity{}, err
	}
	return id, nil
}

// Logout ends the provider session. Local state is cleared regardless
// of the provider outcome; the error is informational.
func (s *Session) Logout(ctx context.Context) error {
	err := s.auth.SignOut(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "sign-out failed, clearing local state anyway",
			log.FieldOperation, log.OpSignOut, log.FieldError, err)
	}
	s.teardown()
	return err
}

// bind loads the user's snapshot and installs it as session state.
// A load failure degrades to an empty ledger rather than blocking the
// session; the failed snapshot stays untouched in the store.
func (s *Session) bind(ctx context.Context, id docstore.Identity) {
	snap, err := s.snaps.Load(ctx, id.UID)
	if err != nil {
		s.logger.ErrorContext(ctx, "snapshot load failed, starting empty",
			log.FieldOperation, log.OpLoad, log.FieldUserID, id.UID, log.FieldError, err)
		snap = nil
	}
	if snap == nil {
		empty := core.EmptySnapshot()
		snap = &empty
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())-1

	s.mu.Lock()
	s.identity = &id
	s.cal = calendar.FromSnapshot(*snap)
	s.rules = append([]core.RecurringRule(nil), snap.RecurringTransactions...)
	s.settings = snap.Settings
	s.savings = vault.Vault{Balance: snap.Savings, Goal: snap.SavingsGoal}
	s.visibleYear, s.visibleMonth = year, month
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session bound",
		log.FieldUserID, id.UID, log.FieldYear, year, log.FieldMonth, month)

	s.materializeVisible()
}

// teardown clears all user state and drops any pending save so a
// stale snapshot can never be written after sign-out.
func (s *Session) teardown() {
	s.sched.CancelPending()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.cal = calendar.NewStore()
	s.rules = nil
	s.settings = core.DefaultSettings()
	s.savings = vault.Vault{}
	s.visibleYear, s.visibleMonth = 0, 0
}

// SetVisibleMonth moves the visible (year, zero-based month) and
// materializes recurring rules into it.
func (s *Session) SetVisibleMonth(year, month int) error {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	s.visibleYear, s.visibleMonth = year, month
	s.mu.Unlock()

	s.materializeVisible()
	return nil
}

// VisibleMonth returns the current (year, zero-based month).
func (s *Session) VisibleMonth() (year, month int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleYear, s.visibleMonth
}

func (s *Session) materializeVisible() {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return
	}
	updated, created := s.material.Apply(s.cal, s.rules, s.visibleYear, s.visibleMonth)
	s.cal = updated
	year, month := s.visibleYear, s.visibleMonth
	s.mu.Unlock()

	if created > 0 {
		s.logger.Info("materialized recurring transactions",
			log.FieldOperation, log.OpMaterialize,
			log.FieldYear, year, log.FieldMonth, month, log.FieldCreated, created)
		s.scheduleSave()
	}
}

// AddTransaction files a transaction under the given day. Validation
// rejections leave the ledger unchanged and nothing is persisted.
func (s *Session) AddTransaction(key core.DayKey, description, amount string, typ core.TxType) (core.Transaction, error) {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return core.Transaction{}, ErrNoSession
	}
	updated, tx, err := s.cal.AddTransaction(key, description, amount, typ)
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("transaction rejected",
			log.FieldDayKey, string(key), log.FieldError, err)
		return core.Transaction{}, err
	}
	s.cal = updated
	s.mu.Unlock()

	s.scheduleSave()
	return tx, nil
}

func (s *Session) DeleteTransaction(key core.DayKey, id string) error {
	return s.mutate(func() {
		s.cal = s.cal.DeleteTransaction(key, id)
	})
}

func (s *Session) AddNote(key core.DayKey, text string) (core.Note, error) {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return core.Note{}, ErrNoSession
	}
	updated, note, err := s.cal.AddNote(key, text)
	if err != nil {
		s.mu.Unlock()
		return core.Note{}, err
	}
	s.cal = updated
	s.mu.Unlock()

	s.scheduleSave()
	return note, nil
}

func (s *Session) DeleteNote(key core.DayKey, id string) error {
	return s.mutate(func() {
		s.cal = s.cal.DeleteNote(key, id)
	})
}

func (s *Session) AddReminder(key core.DayKey, text, clock string) (core.Reminder, error) {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return core.Reminder{}, ErrNoSession
	}
	updated, rem, err := s.cal.AddReminder(key, text, clock)
	if err != nil {
		s.mu.Unlock()
		return core.Reminder{}, err
	}
	s.cal = updated
	s.mu.Unlock()

	s.scheduleSave()
	return rem, nil
}

func (s *Session) DeleteReminder(key core.DayKey, id string) error {
	return s.mutate(func() {
		s.cal = s.cal.DeleteReminder(key, id)
	})
}

// AddRecurring registers a rule and immediately materializes it into
// the visible month.
func (s *Session) AddRecurring(description, amount string, typ core.TxType, dayOfMonth int) (core.RecurringRule, error) {
	value, err := core.ParseAmount(amount)
	if err != nil {
		return core.RecurringRule{}, err
	}
	rule := core.RecurringRule{
		ID:          core.NewID(),
		Description: description,
		Amount:      value,
		Type:        typ,
		DayOfMonth:  dayOfMonth,
		Frequency:   core.Monthly,
	}
	if err := rule.Validate(); err != nil {
		return core.RecurringRule{}, err
	}

	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return core.RecurringRule{}, ErrNoSession
	}
	s.rules = append(append([]core.RecurringRule(nil), s.rules...), rule)
	s.mu.Unlock()

	s.logger.Info("recurring rule added",
		log.FieldRuleID, rule.ID, log.FieldTxType, string(rule.Type))
	s.materializeVisible()
	s.scheduleSave()
	return rule, nil
}

// DeleteRecurring removes the rule. Transactions already materialized
// from it stay on the calendar; they must be deleted individually.
func (s *Session) DeleteRecurring(id string) error {
	return s.mutate(func() {
		kept := make([]core.RecurringRule, 0, len(s.rules))
		for _, r := range s.rules {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		s.rules = kept
	})
}

// Rules returns a copy of the recurring-rule set.
func (s *Session) Rules() []core.RecurringRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RecurringRule(nil), s.rules...)
}

// Deposit moves amount from this month's headroom into the vault. The
// ledger is never decremented; the check is against the visible month's
// balance.
func (s *Session) Deposit(amount string) error {
	value, err := core.ParseAmount(amount)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	monthly := s.cal.MonthlyBalance(s.visibleYear, s.visibleMonth)
	updated, err := s.savings.Deposit(value, monthly)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.savings = updated
	s.mu.Unlock()

	s.scheduleSave()
	return nil
}

// Withdraw takes amount back out of the vault.
func (s *Session) Withdraw(amount string) error {
	value, err := core.ParseAmount(amount)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	updated, err := s.savings.Withdraw(value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.savings = updated
	s.mu.Unlock()

	s.scheduleSave()
	return nil
}

// SetSavingsGoal sets the vault goal. Invalid input degrades to unset
// without surfacing an error.
func (s *Session) SetSavingsGoal(input string) error {
	return s.mutate(func() {
		s.savings = s.savings.SetGoal(input)
	})
}

// Savings returns the current vault state.
func (s *Session) Savings() vault.Vault {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savings
}

// UpdateSettings replaces the presentation settings wholesale.
func (s *Session) UpdateSettings(settings core.Settings) error {
	return s.mutate(func() {
		s.settings = settings
	})
}

func (s *Session) Settings() core.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Day returns the buckets for one day, in insertion order.
func (s *Session) Day(key core.DayKey) ([]core.Transaction, []core.Note, []core.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.cal.Transactions[key]...),
		append([]core.Note(nil), s.cal.Notes[key]...),
		append([]core.Reminder(nil), s.cal.Reminders[key]...)
}

func (s *Session) DayBalance(key core.DayKey) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal.DayBalance(key)
}

// MonthlyBalance returns the visible month's net balance.
func (s *Session) MonthlyBalance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal.MonthlyBalance(s.visibleYear, s.visibleMonth)
}

// MonthlyStats returns the visible month's breakdown.
func (s *Session) MonthlyStats() calendar.MonthStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal.MonthlyStats(s.visibleYear, s.visibleMonth)
}

// CombinedTotal is the visible month's balance plus the vault balance,
// the headline figure on the dashboard.
func (s *Session) CombinedTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal.MonthlyBalance(s.visibleYear, s.visibleMonth) + s.savings.Balance
}

// Snapshot assembles the full persisted-state blob from current state.
func (s *Session) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() core.Snapshot {
	return core.Snapshot{
		Transactions:          s.cal.Transactions,
		Notes:                 s.cal.Notes,
		Reminders:             s.cal.Reminders,
		Settings:              s.settings,
		RecurringTransactions: append([]core.RecurringRule(nil), s.rules...),
		Savings:               s.savings.Balance,
		SavingsGoal:           s.savings.Goal,
	}
}

// Flush persists any pending state immediately, bypassing the debounce.
// Call it on shutdown.
func (s *Session) Flush(ctx context.Context) {
	s.sched.CancelPending()
	s.saveNow(ctx)
}

// Close cancels the identity subscription and stops the scheduler.
func (s *Session) Close() {
	s.mu.Lock()
	cancel := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.sched.Stop()
}

// mutate runs fn under the lock and schedules a save. It is the common
// path for mutations that cannot fail past the session check.
func (s *Session) mutate(fn func()) error {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	fn()
	s.mu.Unlock()

	s.scheduleSave()
	return nil
}

// scheduleSave arms the debounced save. A burst of mutations inside the
// window collapses into a single write of the final state.
func (s *Session) scheduleSave() {
	s.sched.Schedule(s.delay, func() {
		s.saveNow(context.Background())
	})
}

// saveNow writes the current snapshot. A failed save is logged and
// dropped; the next mutation's debounce cycle retries naturally. The
// saved event is published best-effort after a successful write.
func (s *Session) saveNow(ctx context.Context) {
	s.mu.Lock()
	if s.identity == nil {
		s.mu.Unlock()
		return
	}
	uid := s.identity.UID
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.snaps.Save(ctx, uid, snap); err != nil {
		s.logger.ErrorContext(ctx, "snapshot save failed",
			log.FieldOperation, log.OpSave, log.FieldUserID, uid, log.FieldError, err)
		return
	}

	if s.events != nil {
		if err := s.events.PublishSnapshotSaved(ctx, uid, time.Now()); err != nil {
			s.logger.WarnContext(ctx, "snapshot-saved publish failed",
				log.FieldUserID, uid, log.FieldError, err)
		}
	}
}
