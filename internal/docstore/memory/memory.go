// Package memory is the in-memory identity/document-store adapter. It
// backs tests and the default backend, and offers fault injection so
// failure paths stay testable without a real provider.
package memory

import (
	"context"
	"sync"

	"fincal/internal/core"
	"fincal/internal/docstore"
)

type Store struct {
	mu        sync.Mutex
	identity  docstore.Identity
	current   *docstore.Identity
	subs      map[int]func(*docstore.Identity)
	nextSub   int
	snapshots map[string]core.Snapshot

	signInErr error
	loadErr   error
	saveErr   error
	saves     int
}

func New(identity docstore.Identity) *Store {
	return &Store{
		identity:  identity,
		subs:      map[int]func(*docstore.Identity){},
		snapshots: map[string]core.Snapshot{},
	}
}

// Interface conformance.
var (
	_ docstore.Authenticator = (*Store)(nil)
	_ docstore.SnapshotStore = (*Store)(nil)
)

func (s *Store) SignIn(ctx context.Context) (docstore.Identity, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Identity{}, docstore.NewAuthError(docstore.AuthCancelled, "sign-in cancelled, try again", err)
	}
	s.mu.Lock()
	if s.signInErr != nil {
		err := s.signInErr
		s.signInErr = nil
		s.mu.Unlock()
		return docstore.Identity{}, err
	}
	id := s.identity
	s.current = &id
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, &id)
	return id, nil
}

func (s *Store) SignOut(_ context.Context) error {
	s.mu.Lock()
	s.current = nil
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, nil)
	return nil
}

func (s *Store) Subscribe(cb func(*docstore.Identity)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = cb
	current := s.current
	s.mu.Unlock()

	// Deliver the current session state right after registration.
	cb(current)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) Load(_ context.Context, uid string) (*core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	snap, ok := s.snapshots[uid]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *Store) Save(_ context.Context, uid string, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snapshots[uid] = snap
	s.saves++
	return nil
}

// FailNextSignIn injects a one-shot sign-in failure.
func (s *Store) FailNextSignIn(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signInErr = err
}

// FailLoads makes every Load fail with err until reset with nil.
func (s *Store) FailLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// FailSaves makes every Save fail with err until reset with nil.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves counts successful Save calls.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Persisted returns the stored snapshot for uid, if any.
func (s *Store) Persisted(uid string) (core.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[uid]
	return snap, ok
}

// subscribers snapshots the callback set; callers hold s.mu.
func (s *Store) subscribers() []func(*docstore.Identity) {
	out := make([]func(*docstore.Identity), 0, len(s.subs))
	for _, cb := range s.subs {
		out = append(out, cb)
	}
	return out
}

func notify(subs []func(*docstore.Identity), id *docstore.Identity) {
	for _, cb := range subs {
		cb(id)
	}
}
