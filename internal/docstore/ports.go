// Package docstore defines the boundary to the identity/document-store
// collaborator. The engine consumes exactly these capabilities and is
// handed them by construction; it never reaches for ambient globals.
package docstore

import (
	"context"

	"fincal/internal/core"
)

// Identity describes the authenticated user as the provider reports it.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Ports for the outbound collaborator adapters.
type (
	// Authenticator is the identity side of the collaborator.
	Authenticator interface {
		// SignIn runs the provider's authentication flow. Failures are
		// AuthError values with a kind and user guidance.
		SignIn(ctx context.Context) (Identity, error)

		// SignOut ends the provider session. Callers must clear local
		// state regardless of the outcome.
		SignOut(ctx context.Context) error

		// Subscribe registers cb for session changes. The current
		// session is delivered soon after registration and on every
		// change thereafter; nil signals logged-out. The returned
		// function cancels the subscription; re-subscribing first
		// requires cancelling the prior one.
		Subscribe(cb func(*Identity)) (cancel func())
	}

	// SnapshotStore is the document side of the collaborator.
	SnapshotStore interface {
		// Load returns the persisted snapshot for uid, or (nil, nil)
		// when none exists yet.
		Load(ctx context.Context, uid string) (*core.Snapshot, error)

		// Save persists the snapshot, last write wins. Callers do not
		// retry a failed save; the next debounce cycle covers it.
		Save(ctx context.Context, uid string, snap core.Snapshot) error
	}
)
