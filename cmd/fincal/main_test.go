package main

import (
	"strings"
	"testing"
	"time"

	"fincal/internal/core"
)

func TestRenderMonthGrid(t *testing.T) {
	// February 2024: 29 days, starts on a Thursday.
	today := time.Date(2024, time.February, 14, 12, 0, 0, 0, time.UTC)
	busy := core.NewDayKey(2024, 1, 10)
	balance := func(key core.DayKey) float64 {
		if key == busy {
			return 1000
		}
		return 0
	}

	out := renderMonthGrid(2024, 1, today, balance)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 6 {
		t.Fatalf("grid has %d lines, want 6:\n%s", len(lines), out)
	}
	if lines[0] != "  Su  Mo  Tu  We  Th  Fr  Sa" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "                  1   2   3 " {
		t.Errorf("first week = %q, want Thursday start", lines[1])
	}
	if !strings.Contains(lines[2], " 10*") {
		t.Errorf("week %q does not mark the day with entries", lines[2])
	}
	if !strings.Contains(lines[3], "[14]") {
		t.Errorf("week %q does not bracket today", lines[3])
	}
	last := lines[len(lines)-1]
	if !strings.Contains(last, " 29") || strings.Contains(last, " 30") {
		t.Errorf("last week = %q, want to end on the 29th", last)
	}
}

func TestRenderMonthGridTodayElsewhere(t *testing.T) {
	// Today falls outside the rendered month: nothing is bracketed.
	today := time.Date(2024, time.March, 14, 12, 0, 0, 0, time.UTC)
	none := func(core.DayKey) float64 { return 0 }

	out := renderMonthGrid(2024, 1, today, none)
	if strings.ContainsAny(out, "[]*") {
		t.Errorf("grid carries markers without entries or today:\n%s", out)
	}
}
