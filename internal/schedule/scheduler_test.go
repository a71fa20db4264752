package schedule

import (
	"testing"
	"time"
)

func TestTimerFires(t *testing.T) {
	s := NewTimer()
	defer s.Stop()

	done := make(chan struct{})
	s.Schedule(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task never fired")
	}
}

func TestTimerRescheduleCancelsEarlierTask(t *testing.T) {
	s := NewTimer()
	defer s.Stop()

	fired := make(chan string, 2)
	s.Schedule(30*time.Millisecond, func() { fired <- "first" })
	s.Schedule(10*time.Millisecond, func() { fired <- "second" })

	select {
	case got := <-fired:
		if got != "second" {
			t.Fatalf("fired %q, want %q", got, "second")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no task fired")
	}

	// The superseded task must stay cancelled.
	select {
	case got := <-fired:
		t.Fatalf("superseded task %q fired anyway", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTimerCancelPending(t *testing.T) {
	s := NewTimer()
	defer s.Stop()

	fired := make(chan struct{}, 1)
	s.Schedule(20*time.Millisecond, func() { fired <- struct{}{} })
	s.CancelPending()

	select {
	case <-fired:
		t.Fatal("cancelled task fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTimerStopRefusesNewWork(t *testing.T) {
	s := NewTimer()
	s.Stop()

	fired := make(chan struct{}, 1)
	s.Schedule(time.Millisecond, func() { fired <- struct{}{} })

	select {
	case <-fired:
		t.Fatal("stopped scheduler accepted a task")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManual(t *testing.T) {
	s := NewManual()

	ran := 0
	s.Schedule(time.Second, func() { ran++ })
	s.Schedule(time.Second, func() { ran += 10 })

	if s.Scheduled() != 2 {
		t.Errorf("Scheduled() = %d, want 2", s.Scheduled())
	}
	if !s.Pending() {
		t.Fatal("expected a pending task")
	}
	if !s.Fire() {
		t.Fatal("Fire() found nothing to run")
	}
	if ran != 10 {
		t.Errorf("ran = %d, want 10 (only the latest task)", ran)
	}
	if s.Fire() {
		t.Error("second Fire() must find nothing")
	}

	s.Schedule(time.Second, func() { ran++ })
	s.CancelPending()
	if s.Fire() {
		t.Error("cancelled task must not run")
	}

	s.Stop()
	s.Schedule(time.Second, func() { ran++ })
	if s.Pending() {
		t.Error("stopped scheduler accepted a task")
	}
}
