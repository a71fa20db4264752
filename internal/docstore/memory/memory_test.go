package memory

import (
	"context"
	"testing"

	"fincal/internal/core"
	"fincal/internal/docstore"
)

func testIdentity() docstore.Identity {
	return docstore.Identity{UID: "u1", Email: "ana@example.com", DisplayName: "Ana"}
}

func TestSubscribeDeliversCurrentState(t *testing.T) {
	store := New(testIdentity())

	var got []*docstore.Identity
	cancel := store.Subscribe(func(id *docstore.Identity) { got = append(got, id) })
	defer cancel()

	if len(got) != 1 || got[0] != nil {
		t.Fatalf("initial delivery = %v, want one nil (logged out)", got)
	}

	if _, err := store.SignIn(context.Background()); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if len(got) != 2 || got[1] == nil || got[1].UID != "u1" {
		t.Fatalf("after sign-in deliveries = %v", got)
	}

	if err := store.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if len(got) != 3 || got[2] != nil {
		t.Fatalf("after sign-out deliveries = %v", got)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	store := New(testIdentity())

	calls := 0
	cancel := store.Subscribe(func(*docstore.Identity) { calls++ })
	cancel()

	store.SignIn(context.Background())
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (only the registration delivery)", calls)
	}
}

func TestSignInCancelledContext(t *testing.T) {
	store := New(testIdentity())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.SignIn(ctx)
	kind, ok := docstore.AuthKind(err)
	if !ok || kind != docstore.AuthCancelled {
		t.Errorf("AuthKind = (%v, %v), want (cancelled, true)", kind, ok)
	}
}

func TestSnapshotStore(t *testing.T) {
	store := New(testIdentity())
	ctx := context.Background()

	snap, err := store.Load(ctx, "u1")
	if err != nil || snap != nil {
		t.Fatalf("Load of absent uid = (%v, %v), want (nil, nil)", snap, err)
	}

	in := core.EmptySnapshot()
	in.Savings = 42.5
	if err := store.Save(ctx, "u1", in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := store.Load(ctx, "u1")
	if err != nil || out == nil {
		t.Fatalf("Load = (%v, %v)", out, err)
	}
	if out.Savings != 42.5 {
		t.Errorf("Savings = %v, want 42.5", out.Savings)
	}
	if store.Saves() != 1 {
		t.Errorf("Saves() = %d, want 1", store.Saves())
	}
}

func TestFaultInjection(t *testing.T) {
	store := New(testIdentity())
	ctx := context.Background()

	store.FailLoads(docstore.NewStorageError("load", context.DeadlineExceeded))
	if _, err := store.Load(ctx, "u1"); !docstore.IsStorageError(err) {
		t.Errorf("Load error = %v, want StorageError", err)
	}

	store.FailSaves(docstore.NewStorageError("save", context.DeadlineExceeded))
	if err := store.Save(ctx, "u1", core.EmptySnapshot()); !docstore.IsStorageError(err) {
		t.Errorf("Save error = %v, want StorageError", err)
	}
	if store.Saves() != 0 {
		t.Errorf("failed save counted: %d", store.Saves())
	}
}
