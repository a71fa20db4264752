package recurring

import (
	"fincal/internal/calendar"
	"fincal/internal/core"
)

// Materializer reconciles the recurring-rule set against the visible
// month. It only ever adds entries: it never deletes materialized
// transactions and never touches months the user has not visited.
type Materializer struct {
	matcher Matcher
}

// NewMaterializer builds a materializer with the given suppression
// strategy. A nil matcher falls back to content matching, the default.
func NewMaterializer(m Matcher) *Materializer {
	if m == nil {
		m = ContentMatcher{}
	}
	return &Materializer{matcher: m}
}

// Apply ensures every rule has a concrete transaction on its configured
// day of the visible (year, zero-based month). Rules already covered in
// that day's bucket, per the matcher, are skipped. It returns the
// updated store and the number of transactions created.
func (mat *Materializer) Apply(store calendar.Store, rules []core.RecurringRule, year, month int) (calendar.Store, int) {
	created := 0
	for _, rule := range rules {
		key := core.NewDayKey(year, month, rule.DayOfMonth)
		if mat.covered(store.Transactions[key], rule) {
			continue
		}
		store = store.AppendTransaction(key, core.Transaction{
			ID:          core.NewID(),
			Description: rule.Description,
			Amount:      rule.Amount,
			Type:        rule.Type,
			Recurring:   true,
			RuleID:      rule.ID,
		})
		created++
	}
	return store, created
}

func (mat *Materializer) covered(bucket []core.Transaction, rule core.RecurringRule) bool {
	for _, t := range bucket {
		if mat.matcher.Matches(t, rule) {
			return true
		}
	}
	return false
}
