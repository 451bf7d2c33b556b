package mockapi

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eventdeck/eventdeck-client/internal/auth"
	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
)

// maxFailedLogins locks an account.
const maxFailedLogins = 5

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "User login",
		Description: "Exchanges credentials for a bearer token",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/auth/register",
		Summary:       "Register new user",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodPost,
		Path:          "/api/auth/logout",
		Summary:       "Logout",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleLogout)
}

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-current-user",
		Method:      http.MethodGet,
		Path:        "/api/me",
		Summary:     "Get current user",
		Description: "Returns the account behind the token, or an anonymous marker without one",
		Tags:        []string{"Users"},
	}, s.handleMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/api/users",
		Summary:     "List users",
		Tags:        []string{"Users"},
	}, s.handleListUsers)
}

// === DTOs ===

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body domain.Credentials
}

// TokenOutput wraps the login response.
type TokenOutput struct {
	Body domain.Token
}

// RegisterInput wraps the registration request.
type RegisterInput struct {
	Body domain.Registration
}

// UserOutput wraps one account.
type UserOutput struct {
	Body domain.UserDetail
}

// UsersOutput wraps the directory.
type UsersOutput struct {
	Body []domain.UserSummary
}

// AnonymousUser is the body of /me without a token.
type AnonymousUser struct {
	Authenticated bool `json:"authenticated"`
}

// MeOutput wraps /me, which answers either shape.
type MeOutput struct {
	Body any
}

// === Handlers ===

func (s *Server) handleLogin(_ context.Context, input *LoginInput) (*TokenOutput, error) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	a, ok := s.data.accountByName(input.Body.Username)
	if !ok {
		return nil, domainerrors.InvalidCredentials("Invalid username or password")
	}
	if !a.user.Enabled || !a.user.AccountNonLocked {
		return nil, domainerrors.InvalidCredentials("Account is disabled or locked")
	}
	if !auth.VerifyPassword(a.passwordHash, input.Body.Password) {
		a.user.FailedLoginAttempts++
		if a.user.FailedLoginAttempts >= maxFailedLogins {
			a.user.AccountNonLocked = false
		}
		return nil, domainerrors.InvalidCredentials("Invalid username or password")
	}

	token, err := s.tokens.Issue(a.user)
	if err != nil {
		return nil, err
	}
	a.user.FailedLoginAttempts = 0
	a.user.LastLogin = s.data.stamp()

	s.logger.Info("user logged in", "username", a.user.Username)
	return &TokenOutput{Body: domain.Token{Token: token}}, nil
}

func (s *Server) handleRegister(_ context.Context, input *RegisterInput) (*UserOutput, error) {
	in := input.Body
	if in.Username == "" || in.Password == "" {
		return nil, domainerrors.Validation("username and password are required")
	}
	return s.createAccount(domain.UserInput{
		Username:         in.Username,
		Email:            in.Email,
		Password:         in.Password,
		Authorities:      []string{domain.AuthorityUser},
		Enabled:          true,
		AccountNonLocked: true,
	})
}

func (s *Server) handleLogout(context.Context, *struct{}) (*struct{}, error) {
	return nil, nil
}

func (s *Server) handleMe(ctx context.Context, _ *struct{}) (*MeOutput, error) {
	if ctx.Value(claimsKey) == nil && ctx.Value(badTokenKey) == nil {
		return &MeOutput{Body: AnonymousUser{Authenticated: false}}, nil
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	a, ok := s.data.account(userID)
	if !ok {
		return nil, huma.Error401Unauthorized(msgSessionExpired)
	}
	u := a.user
	authenticated := true
	u.Authenticated = &authenticated
	return &MeOutput{Body: u}, nil
}

func (s *Server) handleListUsers(ctx context.Context, _ *struct{}) (*UsersOutput, error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	out := make([]domain.UserSummary, len(s.data.accounts))
	for i, a := range s.data.accounts {
		out[i] = a.user.Summary()
	}
	return &UsersOutput{Body: out}, nil
}

// createAccount hashes the password and stores a new account.
func (s *Server) createAccount(in domain.UserInput) (*UserOutput, error) {
	hash, err := auth.HashPassword(in.Password, s.params)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if _, exists := s.data.accountByName(in.Username); exists {
		return nil, domainerrors.Conflict("username already taken")
	}
	now := s.data.stamp()
	a := &account{
		user: domain.UserDetail{
			ID:               s.data.newID(),
			Username:         in.Username,
			Email:            in.Email,
			Enabled:          in.Enabled,
			AccountNonLocked: in.AccountNonLocked,
			Authorities:      slices.Clone(in.Authorities),
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		passwordHash: hash,
	}
	s.data.accounts = append(s.data.accounts, a)
	return &UserOutput{Body: a.user}, nil
}
