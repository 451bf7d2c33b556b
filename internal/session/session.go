// Package session holds the signed-in identity: the bearer token, the
// current user record and the reaction to the backend rejecting the token.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/notify"
)

// API is the remote surface used for authentication.
type API interface {
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	Register(ctx context.Context, in domain.Registration) (domain.UserDetail, error)
	CurrentUser(ctx context.Context) (domain.UserDetail, error)
	Logout(ctx context.Context) error
}

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	SaveToken(ctx context.Context, token string) error
	LoadToken(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

// Emitter receives session change notifications.
type Emitter interface {
	Emit(event notify.Event)
}

// Options configures a Session. Only API is required.
type Options struct {
	API     API
	Tokens  TokenStore
	Emitter Emitter
	Logger  *slog.Logger
	Now     func() time.Time
}

// Session is safe for concurrent use.
type Session struct {
	api     API
	tokens  TokenStore
	emitter Emitter
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	token     string
	user      *domain.UserDetail
	loading   bool
	loggedOut []func()
}

// New creates an anonymous session.
func New(opts Options) *Session {
	s := &Session{
		api:     opts.API,
		tokens:  opts.Tokens,
		emitter: opts.Emitter,
		logger:  logger.OrDiscard(opts.Logger),
		now:     opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Restore loads a persisted token. An expired token is discarded.
func (s *Session) Restore(ctx context.Context) error {
	if s.tokens == nil {
		return nil
	}
	token, err := s.tokens.LoadToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	if err := s.SetToken(ctx, token); err != nil {
		if errors.Is(err, domainerrors.ErrTokenExpired) {
			s.logger.Info("discarded expired session token")
			return nil
		}
		return err
	}
	return nil
}

// SetToken installs token, or clears the session when token is empty.
// Expired JWTs are rejected and clear the session. Opaque tokens are
// accepted as they are.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if token != "" {
		if claims, err := ParseClaims(token); err == nil && claims.Expired(s.now()) {
			s.clear(ctx)
			return domainerrors.TokenExpired("session token has expired")
		}
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.persist(ctx, token)
	s.emit()
	return nil
}

// Login exchanges credentials for a token and loads the account behind it.
func (s *Session) Login(ctx context.Context, creds domain.Credentials) (*domain.UserDetail, error) {
	s.setLoading(true)
	token, err := s.api.Login(ctx, creds)
	s.setLoading(false)
	if err != nil {
		return nil, err
	}

	if err := s.SetToken(ctx, token); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", "username", creds.Username)
	return s.FetchUser(ctx)
}

// Register creates an account. It does not sign in.
func (s *Session) Register(ctx context.Context, in domain.Registration) (domain.UserDetail, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	return s.api.Register(ctx, in)
}

// FetchUser loads the account behind the current token. It returns nil
// without error when the backend reports an anonymous session, which also
// clears the session. A 401 logs out before the error is returned.
func (s *Session) FetchUser(ctx context.Context) (*domain.UserDetail, error) {
	s.setLoading(true)
	u, err := s.api.CurrentUser(ctx)
	s.setLoading(false)

	if err != nil {
		if errors.Is(err, domainerrors.ErrUnauthorized) {
			s.Logout(ctx, true)
		}
		return nil, err
	}

	if u.IsUnauthenticated() {
		s.clear(ctx)
		return nil, nil
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	s.emit()

	out := u
	return &out, nil
}

// Logout ends the session. The remote call is best effort; local state is
// always cleared. Listeners registered with OnLoggedOut run only for an
// explicit logout.
func (s *Session) Logout(ctx context.Context, explicit bool) {
	s.setLoading(true)
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("logout request failed", "error", err)
	}
	s.clear(ctx)
	s.setLoading(false)

	if !explicit {
		return
	}
	s.mu.RLock()
	listeners := append([]func(){}, s.loggedOut...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

// OnLoggedOut registers fn to run after every explicit logout.
func (s *Session) OnLoggedOut(fn func()) {
	s.mu.Lock()
	s.loggedOut = append(s.loggedOut, fn)
	s.mu.Unlock()
}

// HandleUnauthorized drops the token and the user after the backend rejected
// the token. It matches remote.UnauthorizedHandler.
func (s *Session) HandleUnauthorized(message string) {
	s.logger.Warn("session rejected by backend", "message", message)
	s.clear(context.Background())
}

// Token returns the bearer token, empty when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Claims decodes the current token.
func (s *Session) Claims() (Claims, error) {
	token := s.Token()
	if token == "" {
		return Claims{}, domainerrors.Unauthorized("no session token")
	}
	return ParseClaims(token)
}

// User returns a copy of the loaded account.
func (s *Session) User() (domain.UserDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.UserDetail{}, false
	}
	return *s.user, true
}

// CurrentUser returns the signed-in user's directory entry.
func (s *Session) CurrentUser() (domain.UserSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.userLoadedLocked() {
		return domain.UserSummary{}, false
	}
	return s.user.Summary(), true
}

// IsAuthenticated reports whether a token is held or a user is loaded.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" || s.userLoadedLocked()
}

// IsUserLoaded reports whether an authenticated account record is held.
func (s *Session) IsUserLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userLoadedLocked()
}

// IsAdmin reports whether the loaded account holds ROLE_ADMIN.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin()
}

// Loading reports whether an authentication request is in flight.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) userLoadedLocked() bool {
	return s.user != nil && !s.user.IsUnauthenticated()
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) clear(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.persist(ctx, "")
	s.emit()
}

func (s *Session) persist(ctx context.Context, token string) {
	if s.tokens == nil {
		return
	}
	var err error
	if token == "" {
		err = s.tokens.ClearToken(ctx)
	} else {
		err = s.tokens.SaveToken(ctx, token)
	}
	if err != nil {
		s.logger.Warn("failed to persist session token", "error", err)
	}
}

func (s *Session) emit() {
	if s.emitter != nil {
		s.emitter.Emit(notify.New(notify.EventSessionChanged, ""))
	}
}
