package calendar

import (
	"strings"
	"time"

	"fincal/internal/core"
)

// MonthStats is the per-month breakdown shown on the analytics view.
// Categories maps a derived label to the summed expense amount; income
// never contributes to it.
type MonthStats struct {
	TotalIncome  float64
	TotalExpense float64
	Categories   map[string]float64
}

// DayBalance sums the day's transactions, income positive and expense
// negative. A day without a bucket balances to zero.
func (s Store) DayBalance(key core.DayKey) float64 {
	total := 0.0
	for _, t := range s.Transactions[key] {
		total += signed(t)
	}
	return total
}

// MonthlyBalance sums DayBalance over every key that parses to the given
// year and zero-based month. It filters the full store by key components
// instead of walking calendar days, so stray keys from other months can
// never contribute.
func (s Store) MonthlyBalance(year, month int) float64 {
	total := 0.0
	for key := range s.Transactions {
		if key.InMonth(year, month) {
			total += s.DayBalance(key)
		}
	}
	return total
}

// MonthlyStats derives income and expense totals plus the per-category
// expense breakdown for one month.
func (s Store) MonthlyStats(year, month int) MonthStats {
	stats := MonthStats{Categories: map[string]float64{}}
	for key, bucket := range s.Transactions {
		if !key.InMonth(year, month) {
			continue
		}
		for _, t := range bucket {
			if t.Type == core.Income {
				stats.TotalIncome += t.Amount
				continue
			}
			stats.TotalExpense += t.Amount
			stats.Categories[CategoryOf(t.Description)] += t.Amount
		}
	}
	return stats
}

// CategoryOf derives the category label of an expense: its first
// whitespace-delimited description token.
func CategoryOf(description string) string {
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// MonthGrid reports how many days the given zero-based month has and
// which weekday (Sunday=0) it starts on.
func MonthGrid(year, month int) (daysInMonth, startWeekday int) {
	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return last.Day(), int(first.Weekday())
}

func signed(t core.Transaction) float64 {
	if t.Type == core.Income {
		return t.Amount
	}
	return -t.Amount
}
