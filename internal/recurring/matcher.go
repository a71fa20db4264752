// Package recurring materializes recurring-transaction rules onto the
// calendar store for the currently visible month.
//
// This file implements the Strategy Pattern for duplicate suppression.
// Each matcher encapsulates one way of deciding that a rule already has
// a concrete transaction in a day's bucket.
package recurring

import (
	"fmt"

	"fincal/internal/core"
)

// Matcher is the strategy interface for duplicate suppression. Matches
// reports whether an existing transaction in the target day's bucket
// already covers the rule for the visible month.
type Matcher interface {
	Matches(t core.Transaction, rule core.RecurringRule) bool
}

// ContentMatcher is the default strategy: a transaction covers a rule
// when its (description, amount, type) triple matches exactly. This
// tolerates reordering and independent deletion, at the cost of
// suppressing manual entries that happen to match a rule field-for-field
// and of duplicating entries after a rule's amount changes.
type ContentMatcher struct{}

func (ContentMatcher) Matches(t core.Transaction, rule core.RecurringRule) bool {
	return t.Description == rule.Description &&
		t.Amount == rule.Amount &&
		t.Type == rule.Type
}

// RuleKeyMatcher is the documented alternative strategy: a transaction
// covers a rule when it was materialized from that rule's id. Bucket
// membership already pins the (year, month) half of the key. It is never
// the default; opting in changes suppression behavior for rules edited
// via delete-and-recreate.
type RuleKeyMatcher struct{}

func (RuleKeyMatcher) Matches(t core.Transaction, rule core.RecurringRule) bool {
	return t.RuleID != "" && t.RuleID == rule.ID
}

// matchStrategies maps strategy names to their matchers.
var matchStrategies = map[string]Matcher{
	"content":  ContentMatcher{},
	"rule-key": RuleKeyMatcher{},
}

// GetMatcher returns the matcher registered under name.
func GetMatcher(name string) (Matcher, error) {
	m, ok := matchStrategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown match strategy: %s", name)
	}
	return m, nil
}
