package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
	"github.com/eventdeck/eventdeck-client/internal/notify"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeAPI struct {
	login       func(domain.Credentials) (string, error)
	currentUser func() (domain.UserDetail, error)
	logoutErr   error
	logouts     int
}

func (f *fakeAPI) Login(_ context.Context, creds domain.Credentials) (string, error) {
	return f.login(creds)
}

func (f *fakeAPI) Register(_ context.Context, in domain.Registration) (domain.UserDetail, error) {
	return domain.UserDetail{ID: "9", Username: in.Username, Email: in.Email}, nil
}

func (f *fakeAPI) CurrentUser(context.Context) (domain.UserDetail, error) {
	return f.currentUser()
}

func (f *fakeAPI) Logout(context.Context) error {
	f.logouts++
	return f.logoutErr
}

type memTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memTokens) SaveToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memTokens) LoadToken(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memTokens) ClearToken(context.Context) error {
	return m.SaveToken(context.Background(), "")
}

type countingEmitter struct{ n int }

func (c *countingEmitter) Emit(e notify.Event) {
	if e.Type == notify.EventSessionChanged {
		c.n++
	}
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func alice() domain.UserDetail {
	return domain.UserDetail{ID: "1", Username: "alice", Authorities: []string{domain.AuthorityUser}}
}

func newSession(api *fakeAPI, tokens TokenStore) (*Session, *countingEmitter) {
	em := &countingEmitter{}
	s := New(Options{API: api, Tokens: tokens, Emitter: em, Now: func() time.Time { return now }})
	return s, em
}

func TestSession_LoginLoadsUser(t *testing.T) {
	token := signed(t, jwt.MapClaims{"sub": "alice", "exp": now.Add(time.Hour).Unix()})
	api := &fakeAPI{
		login: func(c domain.Credentials) (string, error) {
			if c.Password != "pw" {
				return "", domainerrors.ErrUnauthorized
			}
			return token, nil
		},
		currentUser: func() (domain.UserDetail, error) { return alice(), nil },
	}
	tokens := &memTokens{}
	s, em := newSession(api, tokens)

	u, err := s.Login(context.Background(), domain.Credentials{Username: "alice", Password: "pw"})

	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, token, s.Token())
	assert.Equal(t, token, tokens.token)
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.IsUserLoaded())
	assert.False(t, s.IsAdmin())
	assert.False(t, s.Loading())
	assert.GreaterOrEqual(t, em.n, 2)

	summary, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, domain.EntityID("1"), summary.ID)
}

func TestSession_LoginFailureLeavesSessionEmpty(t *testing.T) {
	api := &fakeAPI{login: func(domain.Credentials) (string, error) { return "", domainerrors.ErrUnauthorized }}
	s, _ := newSession(api, nil)

	u, err := s.Login(context.Background(), domain.Credentials{Username: "alice", Password: "bad"})

	assert.Nil(t, u)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	assert.False(t, s.IsAuthenticated())
}

func TestSession_FetchUserAnonymousClears(t *testing.T) {
	anon := false
	api := &fakeAPI{currentUser: func() (domain.UserDetail, error) {
		return domain.UserDetail{Authenticated: &anon}, nil
	}}
	tokens := &memTokens{token: "opaque"}
	s, _ := newSession(api, tokens)
	require.NoError(t, s.Restore(context.Background()))
	require.Equal(t, "opaque", s.Token())

	u, err := s.FetchUser(context.Background())

	require.NoError(t, err)
	assert.Nil(t, u)
	assert.Empty(t, s.Token())
	assert.Empty(t, tokens.token)
	assert.False(t, s.IsAuthenticated())
}

func TestSession_FetchUserUnauthorizedLogsOut(t *testing.T) {
	api := &fakeAPI{currentUser: func() (domain.UserDetail, error) {
		return domain.UserDetail{}, domainerrors.Unauthorized("Session expired")
	}}
	s, _ := newSession(api, nil)
	require.NoError(t, s.SetToken(context.Background(), "opaque"))

	var loggedOut int
	s.OnLoggedOut(func() { loggedOut++ })

	_, err := s.FetchUser(context.Background())

	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	assert.Empty(t, s.Token())
	assert.Equal(t, 1, api.logouts)
	assert.Equal(t, 1, loggedOut)
}

func TestSession_FetchUserOtherErrorKeepsSession(t *testing.T) {
	api := &fakeAPI{currentUser: func() (domain.UserDetail, error) {
		return domain.UserDetail{}, domainerrors.Unavailable("offline")
	}}
	s, _ := newSession(api, nil)
	require.NoError(t, s.SetToken(context.Background(), "opaque"))

	_, err := s.FetchUser(context.Background())

	assert.ErrorIs(t, err, domainerrors.ErrUnavailable)
	assert.Equal(t, "opaque", s.Token())
	assert.Zero(t, api.logouts)
}

func TestSession_Logout(t *testing.T) {
	tests := []struct {
		name          string
		explicit      bool
		remoteErr     error
		wantListeners int
	}{
		{"explicit", true, nil, 1},
		{"implicit", false, nil, 0},
		{"remote failure still clears", true, errors.New("connection refused"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				currentUser: func() (domain.UserDetail, error) { return alice(), nil },
				logoutErr:   tt.remoteErr,
			}
			tokens := &memTokens{}
			s, _ := newSession(api, tokens)
			require.NoError(t, s.SetToken(context.Background(), "opaque"))
			_, err := s.FetchUser(context.Background())
			require.NoError(t, err)

			var calls int
			s.OnLoggedOut(func() { calls++ })

			s.Logout(context.Background(), tt.explicit)

			assert.Equal(t, tt.wantListeners, calls)
			assert.Equal(t, 1, api.logouts)
			assert.False(t, s.IsAuthenticated())
			assert.False(t, s.IsUserLoaded())
			assert.Empty(t, tokens.token)
			_, ok := s.CurrentUser()
			assert.False(t, ok)
		})
	}
}

func TestSession_HandleUnauthorized(t *testing.T) {
	api := &fakeAPI{currentUser: func() (domain.UserDetail, error) { return alice(), nil }}
	tokens := &memTokens{}
	s, em := newSession(api, tokens)
	require.NoError(t, s.SetToken(context.Background(), "opaque"))
	_, err := s.FetchUser(context.Background())
	require.NoError(t, err)
	before := em.n

	s.HandleUnauthorized("Session expired. Please login again.")

	assert.Empty(t, s.Token())
	assert.False(t, s.IsUserLoaded())
	assert.Empty(t, tokens.token)
	assert.Zero(t, api.logouts, "no remote logout on 401")
	assert.Greater(t, em.n, before)
}

func TestSession_SetTokenDropsExpiredJWT(t *testing.T) {
	tokens := &memTokens{}
	s, _ := newSession(&fakeAPI{}, tokens)
	require.NoError(t, s.SetToken(context.Background(), "opaque"))

	expired := signed(t, jwt.MapClaims{"sub": "alice", "exp": now.Add(-time.Minute).Unix()})
	err := s.SetToken(context.Background(), expired)

	assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
	assert.Empty(t, s.Token())
	assert.Empty(t, tokens.token)
}

func TestSession_RestoreDiscardsExpiredToken(t *testing.T) {
	expired := signed(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()})
	tokens := &memTokens{token: expired}
	s, _ := newSession(&fakeAPI{}, tokens)

	require.NoError(t, s.Restore(context.Background()))

	assert.Empty(t, s.Token())
	assert.Empty(t, tokens.token)
}

func TestSession_IsAdmin(t *testing.T) {
	tests := []struct {
		name string
		user domain.UserDetail
		want bool
	}{
		{"authorities", domain.UserDetail{Authorities: []string{domain.AuthorityAdmin}}, true},
		{"roles", domain.UserDetail{Roles: []string{domain.AuthorityAdmin}}, true},
		{"role", domain.UserDetail{Role: domain.AuthorityAdmin}, true},
		{"plain user", domain.UserDetail{Authorities: []string{domain.AuthorityUser}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{currentUser: func() (domain.UserDetail, error) { return tt.user, nil }}
			s, _ := newSession(api, nil)
			assert.False(t, s.IsAdmin())

			_, err := s.FetchUser(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.IsAdmin())
		})
	}
}

func TestParseClaims(t *testing.T) {
	token := signed(t, jwt.MapClaims{
		"sub":         "1",
		"username":    "alice",
		"iat":         now.Unix(),
		"exp":         now.Add(time.Hour).Unix(),
		"authorities": []any{map[string]any{"authority": "ROLE_ADMIN"}, "ROLE_USER"},
	})

	c, err := ParseClaims(token)

	require.NoError(t, err)
	assert.Equal(t, "1", c.Subject)
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER"}, c.Authorities)
	assert.True(t, c.ExpiresAt.Equal(now.Add(time.Hour)))
	assert.False(t, c.Expired(now))
	assert.True(t, c.Expired(now.Add(time.Hour)))

	_, err = ParseClaims("opaque")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestClaims_NoExpiryNeverExpires(t *testing.T) {
	c, err := ParseClaims(signed(t, jwt.MapClaims{"sub": "1"}))
	require.NoError(t, err)
	assert.False(t, c.Expired(now.AddDate(10, 0, 0)))
}
