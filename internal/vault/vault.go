// Package vault implements the savings vault: an independent running
// balance with an optional goal. Deposits check the monthly ledger
// balance but never decrement it; the vault is a separate counter, not
// a transfer between ledgers.
package vault

import (
	"errors"

	"fincal/internal/core"
)

// ErrInsufficientFunds is surfaced to the user as a blocking message;
// the operation aborts with no partial effect.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Vault holds the savings balance and the goal. A goal of 0 means unset.
type Vault struct {
	Balance float64
	Goal    float64
}

// Deposit moves amount into the vault. It fails when amount is not
// positive or when the current monthly ledger balance cannot cover it.
// The ledger itself is left untouched either way.
func (v Vault) Deposit(amount, monthlyBalance float64) (Vault, error) {
	if amount <= 0 {
		return v, core.ErrInvalidAmount
	}
	if monthlyBalance < amount {
		return v, ErrInsufficientFunds
	}
	v.Balance += amount
	return v, nil
}

// Withdraw takes amount out of the vault. It fails when amount is not
// positive or exceeds the vault balance.
func (v Vault) Withdraw(amount float64) (Vault, error) {
	if amount <= 0 {
		return v, core.ErrInvalidAmount
	}
	if amount > v.Balance {
		return v, ErrInsufficientFunds
	}
	v.Balance -= amount
	return v, nil
}

// SetGoal parses the input and sets the goal. Invalid or non-positive
// input silently degrades to 0, treated as "unset"; no failure surfaces.
func (v Vault) SetGoal(input string) Vault {
	goal, err := core.ParseAmount(input)
	if err != nil {
		v.Goal = 0
		return v
	}
	v.Goal = goal
	return v
}

// Progress returns the goal completion percentage, unclamped, for the
// textual label. ok is false when no goal is set.
func (v Vault) Progress() (pct float64, ok bool) {
	if v.Goal <= 0 {
		return 0, false
	}
	return v.Balance / v.Goal * 100, true
}

// ProgressClamped returns the percentage clamped to [0, 100] for
// progress-bar rendering.
func (v Vault) ProgressClamped() float64 {
	pct, ok := v.Progress()
	if !ok {
		return 0
	}
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
