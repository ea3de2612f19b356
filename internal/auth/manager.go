// Package auth owns the lifecycle of the user's session: restoring it
// from durable storage at startup, logging in and out, and keeping the
// API client's bearer token and the credential store in step with every
// state change.
package auth

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/grumpytracker/grumpy-client/internal/api"
)

// Session is a point-in-time snapshot of the authentication state.
type Session struct {
	// Token is the bearer credential, empty when anonymous.
	Token string
	// CurrentUser is the display username, empty when anonymous.
	CurrentUser string
	// IsAdmin mirrors the token's is_admin claim. Display only.
	IsAdmin bool
	// Initialized becomes true once startup restoration has run.
	Initialized bool
}

// Credentials is the pair of values kept in durable storage. Both are
// written and cleared together.
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Store is the durable credential storage the manager persists to.
type Store interface {
	// Load returns the stored credentials; a missing store yields empty
	// credentials and no error.
	Load() (Credentials, error)
	Save(Credentials) error
	Clear() error
}

// Result is the tagged outcome of an auth operation. Operations never
// return a Go error to their caller; expected failures (wrong password,
// duplicate username, network trouble) come back as Messages ready for
// display.
type Result struct {
	OK       bool
	Messages []string
}

// Manager owns the session. All mutation goes through it: it is the only
// writer of the API client's token and the only writer of the store, and
// it never writes the store before Initialize has completed.
type Manager struct {
	api   *api.Client
	store Store
	log   *zap.Logger

	mu       sync.Mutex
	initOnce sync.Once
	session  Session
	onChange func(Session)
}

// NewManager constructs a Manager. logger may be nil.
func NewManager(client *api.Client, store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{api: client, store: store, log: logger}
}

// OnChange registers an observer invoked with a session snapshot after
// every state change, storage already updated. Call before Initialize.
func (m *Manager) OnChange(fn func(Session)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Session returns a snapshot of the current state.
func (m *Manager) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Initialize restores the session from durable storage. It runs once;
// later calls are no-ops, so its effect is idempotent. A malformed
// stored token means "no valid session": the manager proceeds as
// anonymous rather than failing startup.
func (m *Manager) Initialize() {
	m.initOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		creds, err := m.store.Load()
		if err != nil {
			m.log.Warn("could not read stored session", zap.Error(err))
			creds = Credentials{}
		}
		if creds.Token != "" {
			_, isAdmin, err := decodeToken(creds.Token)
			if err != nil {
				m.log.Warn("stored token is malformed, starting anonymous", zap.Error(err))
			} else {
				m.session.Token = creds.Token
				m.session.CurrentUser = creds.Username
				m.session.IsAdmin = isAdmin
				m.api.SetToken(creds.Token)
			}
		}
		m.session.Initialized = true
		m.notifyLocked()
	})
}

// Login authenticates against the backend. On success the session,
// the API client token, and durable storage are all updated before the
// result is returned; on failure nothing is mutated.
func (m *Manager) Login(ctx context.Context, username, password string) Result {
	token, err := m.api.Login(ctx, username, password)
	if err != nil {
		return failure(err)
	}

	user, isAdmin, err := decodeToken(token)
	if err != nil || user == "" {
		// The server issued a token we cannot decode; keep the session
		// usable with the submitted username and no admin rights.
		m.log.Warn("could not decode issued token", zap.Error(err))
		user, isAdmin = username, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Token = token
	m.session.CurrentUser = user
	m.session.IsAdmin = isAdmin
	m.api.SetToken(token)
	m.persistLocked()
	m.notifyLocked()
	return Result{OK: true}
}

// NewUser is the registration profile for Signup.
type NewUser struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

// Signup registers a new account. Success logs out whatever session was
// active, since the new account's credentials were never authenticated;
// failure mutates nothing.
func (m *Manager) Signup(ctx context.Context, user NewUser) Result {
	payload := api.Record{
		"username":  user.Username,
		"password":  user.Password,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
	}
	if _, err := m.api.Signup(ctx, payload); err != nil {
		return failure(err)
	}
	m.Logout()
	return Result{OK: true}
}

// Logout clears the session unconditionally. No server round-trip is
// required for correctness; the bearer token simply stops being sent.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session.Token = ""
	m.session.CurrentUser = ""
	m.session.IsAdmin = false
	m.api.SetToken("")
	m.persistLocked()
	m.notifyLocked()
}

// persistLocked writes the (token, username) pair to durable storage, or
// clears both entries when the token is empty. Writes are gated on
// initialization so blank startup defaults can never clobber a stored
// session that has not been read back yet.
func (m *Manager) persistLocked() {
	if !m.session.Initialized {
		return
	}
	var err error
	if m.session.Token == "" {
		err = m.store.Clear()
	} else {
		err = m.store.Save(Credentials{Token: m.session.Token, Username: m.session.CurrentUser})
	}
	if err != nil {
		m.log.Error("could not persist session", zap.Error(err))
	}
}

func (m *Manager) notifyLocked() {
	if m.onChange != nil {
		m.onChange(m.session)
	}
}

func failure(err error) Result {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		return Result{Messages: reqErr.Messages}
	}
	return Result{Messages: []string{err.Error()}}
}
