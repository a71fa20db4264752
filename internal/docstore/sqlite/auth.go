package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fincal/internal/docstore"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 7 * 24 * time.Hour

// Authenticator is a local email/password identity provider. The first
// sign-in for an unknown email registers the user; later sign-ins check
// the password against its bcrypt hash. Sessions persist in the
// database so a later process can resume without the password.
type Authenticator struct {
	repo        *Repository
	email       string
	password    string
	displayName string
	tokens      *gocache.Cache

	mu      sync.Mutex
	current *docstore.Identity
	token   string
	subs    map[int]func(*docstore.Identity)
	nextSub int
}

var _ docstore.Authenticator = (*Authenticator)(nil)

func NewAuthenticator(repo *Repository, email, password, displayName string) *Authenticator {
	return &Authenticator{
		repo:        repo,
		email:       email,
		password:    password,
		displayName: displayName,
		tokens:      gocache.New(sessionTTL, time.Hour),
		subs:        map[int]func(*docstore.Identity){},
	}
}

func (a *Authenticator) SignIn(ctx context.Context) (docstore.Identity, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Identity{}, docstore.NewAuthError(docstore.AuthCancelled, "sign-in cancelled, try again", err)
	}

	id, err := a.verifyOrRegister(ctx)
	if err != nil {
		return docstore.Identity{}, err
	}

	token := uuid.NewString()
	_, err = a.repo.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, id.UID, time.Now().UTC().Add(sessionTTL))
	if err != nil {
		return docstore.Identity{}, docstore.NewAuthError(docstore.AuthProvider, "could not open a session, try again", err)
	}
	a.tokens.Set(token, id, gocache.DefaultExpiration)

	a.setCurrent(&id, token)

	slog.InfoContext(ctx, "signed in",
		"user_id", id.UID,
		"email", id.Email)

	return id, nil
}

// Resume restores the newest unexpired session for the configured
// email, if one exists, and reports whether it did.
func (a *Authenticator) Resume(ctx context.Context) bool {
	var token string
	err := a.repo.db.QueryRowContext(ctx, `
		SELECT s.token
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE u.email = ? AND s.expires_at > ?
		ORDER BY s.created_at DESC LIMIT 1`,
		a.email, time.Now().UTC()).Scan(&token)
	if err != nil {
		return false
	}

	id, err := a.IdentityByToken(ctx, token)
	if err != nil {
		return false
	}
	a.setCurrent(&id, token)

	slog.InfoContext(ctx, "session resumed", "user_id", id.UID)
	return true
}

// IdentityByToken resolves a session token, consulting the in-process
// cache before the database.
func (a *Authenticator) IdentityByToken(ctx context.Context, token string) (docstore.Identity, error) {
	if v, ok := a.tokens.Get(token); ok {
		return v.(docstore.Identity), nil
	}

	var id docstore.Identity
	err := a.repo.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.display_name, u.photo_url
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ? AND s.expires_at > ?`,
		token, time.Now().UTC()).
		Scan(&id.UID, &id.Email, &id.DisplayName, &id.PhotoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Identity{}, docstore.NewAuthError(docstore.AuthProvider, "session expired, sign in again", err)
	}
	if err != nil {
		return docstore.Identity{}, docstore.NewAuthError(docstore.AuthProvider, "could not verify the session", err)
	}

	a.tokens.Set(token, id, gocache.DefaultExpiration)
	return id, nil
}

// SignOut ends the provider session. The engine clears its local state
// regardless of the returned error.
func (a *Authenticator) SignOut(ctx context.Context) error {
	a.mu.Lock()
	token := a.token
	a.mu.Unlock()

	var provErr error
	if token != "" {
		if _, err := a.repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
			provErr = docstore.NewAuthError(docstore.AuthProvider, "sign-out did not reach the provider", err)
		}
		a.tokens.Delete(token)
	}

	a.setCurrent(nil, "")
	return provErr
}

func (a *Authenticator) Subscribe(cb func(*docstore.Identity)) (cancel func()) {
	a.mu.Lock()
	subID := a.nextSub
	a.nextSub++
	a.subs[subID] = cb
	current := a.current
	a.mu.Unlock()

	cb(current)

	return func() {
		a.mu.Lock()
		delete(a.subs, subID)
		a.mu.Unlock()
	}
}

// Current returns the active session's identity, if any.
func (a *Authenticator) Current() (docstore.Identity, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return docstore.Identity{}, false
	}
	return *a.current, true
}

func (a *Authenticator) verifyOrRegister(ctx context.Context) (docstore.Identity, error) {
	var (
		id   docstore.Identity
		hash []byte
	)
	err := a.repo.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, photo_url, password_hash
		FROM users WHERE email = ?`, a.email).
		Scan(&id.UID, &id.Email, &id.DisplayName, &id.PhotoURL, &hash)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return a.register(ctx)
	case err != nil:
		return docstore.Identity{}, docstore.NewAuthError(docstore.AuthProvider, "could not reach the identity store", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(a.password)); err != nil {
		return docstore.Identity{}, docstore.NewAuthError(docstore.AuthProvider,
			fmt.Sprintf("invalid credentials for %s", a.email), err)
	}
	return id, nil
}

func (a *Authenticator) register(ctx context.Context) (docstore.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
	if err != nil {
		return docstore.Identity{}, docstore.NewAuthError(docstore.AuthProvider, "could not register the user", err)
	}

	id := docstore.Identity{
		UID:         uuid.NewString(),
		Email:       a.email,
		DisplayName: a.displayName,
	}
	_, err = a.repo.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, photo_url, password_hash)
		VALUES (?, ?, ?, ?, ?)`,
		id.UID, id.Email, id.DisplayName, id.PhotoURL, hash)
	if err != nil {
		return docstore.Identity{}, docstore.NewAuthError(docstore.AuthProvider, "could not register the user", err)
	}

	slog.InfoContext(ctx, "registered new user", "user_id", id.UID, "email", id.Email)
	return id, nil
}

func (a *Authenticator) setCurrent(id *docstore.Identity, token string) {
	a.mu.Lock()
	a.current = id
	a.token = token
	subs := make([]func(*docstore.Identity), 0, len(a.subs))
	for _, cb := range a.subs {
		subs = append(subs, cb)
	}
	a.mu.Unlock()

	for _, cb := range subs {
		cb(id)
	}
}
