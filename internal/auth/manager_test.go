package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grumpytracker/grumpy-client/internal/api"
)

// memStore is an in-memory Store so tests can observe persistence.
type memStore struct {
	creds   Credentials
	present bool
	saves   int
	clears  int
}

func (s *memStore) Load() (Credentials, error) { return s.creds, nil }

func (s *memStore) Save(creds Credentials) error {
	s.creds = creds
	s.present = true
	s.saves++
	return nil
}

func (s *memStore) Clear() error {
	s.creds = Credentials{}
	s.present = false
	s.clears++
	return nil
}

// newBackend serves login and signup the way the real backend does:
// login issues a signed token for the jdoe/secret pair, signup accepts
// any profile with a username.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	token := signTestToken(t, "jdoe", false)

	r := chi.NewRouter()
	r.Post("/api/v1/users/auth", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(req.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["username"] != "jdoe" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error": {"message": "Wrong username or password"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"token": "`+token+`"}`)
	})
	r.Post("/api/v1/users/", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(req.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["username"] == "" || body["username"] == nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error": {"message": ["username is required"]}}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success": "User created"}`)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestManager(t *testing.T, store Store) (*Manager, *api.Client) {
	t.Helper()
	srv := newBackend(t)
	client, err := api.New(api.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return NewManager(client, store, nil), client
}

func TestInitializeRestoresStoredSession(t *testing.T) {
	token := signTestToken(t, "jdoe", true)
	store := &memStore{creds: Credentials{Token: token, Username: "jdoe"}, present: true}
	m, client := newTestManager(t, store)

	m.Initialize()

	sess := m.Session()
	assert.True(t, sess.Initialized)
	assert.Equal(t, token, sess.Token)
	assert.Equal(t, "jdoe", sess.CurrentUser)
	assert.True(t, sess.IsAdmin)
	assert.Equal(t, token, client.Token())

	// Restoring reads storage, it never writes it.
	assert.Zero(t, store.saves)
	assert.Zero(t, store.clears)

	// Repeat calls have no further effect.
	m.Initialize()
	assert.Equal(t, sess, m.Session())
}

func TestInitializeMalformedTokenStartsAnonymous(t *testing.T) {
	store := &memStore{creds: Credentials{Token: "not-a-jwt", Username: "jdoe"}, present: true}
	m, client := newTestManager(t, store)

	m.Initialize()

	sess := m.Session()
	assert.True(t, sess.Initialized)
	assert.Empty(t, sess.Token)
	assert.Empty(t, sess.CurrentUser)
	assert.False(t, sess.IsAdmin)
	assert.Empty(t, client.Token())
}

func TestLoginSuccess(t *testing.T) {
	store := &memStore{}
	m, client := newTestManager(t, store)
	m.Initialize()

	res := m.Login(context.Background(), "jdoe", "secret")

	require.True(t, res.OK)
	sess := m.Session()
	assert.Equal(t, "jdoe", sess.CurrentUser)
	assert.False(t, sess.IsAdmin)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, sess.Token, client.Token())

	// Both storage keys written together.
	assert.True(t, store.present)
	assert.Equal(t, sess.Token, store.creds.Token)
	assert.Equal(t, "jdoe", store.creds.Username)
}

func TestLoginFailureMutatesNothing(t *testing.T) {
	store := &memStore{}
	m, client := newTestManager(t, store)
	m.Initialize()
	before := m.Session()

	res := m.Login(context.Background(), "baduser", "badpass")

	require.False(t, res.OK)
	assert.Equal(t, []string{"Wrong username or password"}, res.Messages)
	assert.Equal(t, before, m.Session())
	assert.Empty(t, client.Token())
	assert.Zero(t, store.saves)
}

func TestLoginNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := api.New(api.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	srv.Close()

	m := NewManager(client, &memStore{}, nil)
	m.Initialize()

	res := m.Login(context.Background(), "jdoe", "secret")

	require.False(t, res.OK)
	require.Len(t, res.Messages, 1)
	assert.NotEmpty(t, res.Messages[0])
}

func TestSignupSuccessLogsOut(t *testing.T) {
	store := &memStore{}
	m, client := newTestManager(t, store)
	m.Initialize()
	require.True(t, m.Login(context.Background(), "jdoe", "secret").OK)

	res := m.Signup(context.Background(), NewUser{
		Username: "newbie", Password: "pw", FirstName: "New", LastName: "User",
		Email: "new@example.com",
	})

	require.True(t, res.OK)
	sess := m.Session()
	assert.Empty(t, sess.Token)
	assert.Empty(t, sess.CurrentUser)
	assert.Empty(t, client.Token())
	assert.False(t, store.present)
}

func TestSignupFailureMutatesNothing(t *testing.T) {
	store := &memStore{}
	m, _ := newTestManager(t, store)
	m.Initialize()
	require.True(t, m.Login(context.Background(), "jdoe", "secret").OK)
	before := m.Session()

	res := m.Signup(context.Background(), NewUser{})

	require.False(t, res.OK)
	assert.Equal(t, []string{"username is required"}, res.Messages)
	assert.Equal(t, before, m.Session())
	assert.True(t, store.present)
}

func TestLogoutClearsEverything(t *testing.T) {
	store := &memStore{}
	m, client := newTestManager(t, store)
	m.Initialize()
	require.True(t, m.Login(context.Background(), "jdoe", "secret").OK)

	m.Logout()

	sess := m.Session()
	assert.Empty(t, sess.Token)
	assert.Empty(t, sess.CurrentUser)
	assert.False(t, sess.IsAdmin)
	assert.Empty(t, client.Token())
	assert.False(t, store.present)
	assert.Equal(t, 1, store.clears)
}

func TestNoStorageWriteBeforeInitialize(t *testing.T) {
	store := &memStore{}
	m, _ := newTestManager(t, store)

	// Mutating before Initialize is a caller defect, but it must never
	// clobber a stored session that has not been read back yet.
	m.Logout()

	assert.Zero(t, store.saves)
	assert.Zero(t, store.clears)
}

func TestOnChangeObserver(t *testing.T) {
	store := &memStore{}
	m, _ := newTestManager(t, store)

	var snapshots []Session
	m.OnChange(func(s Session) { snapshots = append(snapshots, s) })

	m.Initialize()
	require.True(t, m.Login(context.Background(), "jdoe", "secret").OK)
	m.Logout()

	require.Len(t, snapshots, 3)
	assert.True(t, snapshots[0].Initialized)
	assert.Empty(t, snapshots[0].Token)
	assert.Equal(t, "jdoe", snapshots[1].CurrentUser)
	assert.Empty(t, snapshots[2].Token)

	// The observer sees storage already updated.
	assert.False(t, store.present)
}
