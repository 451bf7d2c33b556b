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

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "admin-list-users",
		Method:      http.MethodGet,
		Path:        "/api/admin/users",
		Summary:     "List accounts",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "admin-get-user",
		Method:      http.MethodGet,
		Path:        "/api/admin/users/{id}",
		Summary:     "Get account",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID:   "admin-create-user",
		Method:        http.MethodPost,
		Path:          "/api/admin/users",
		Summary:       "Create account",
		Tags:          []string{"Admin"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAdminCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "admin-update-user",
		Method:      http.MethodPut,
		Path:        "/api/admin/users/{id}",
		Summary:     "Update account",
		Description: "Replaces the account fields. An empty password keeps the current one.",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID:   "admin-delete-user",
		Method:        http.MethodDelete,
		Path:          "/api/admin/users/{id}",
		Summary:       "Delete account",
		Description:   "Deletes an account, its participations and its task assignments",
		Tags:          []string{"Admin"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleAdminDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "admin-stats",
		Method:      http.MethodGet,
		Path:        "/api/admin/stats",
		Summary:     "Platform counters",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminStats)
}

// === DTOs ===

// UserIDInput identifies an account.
type UserIDInput struct {
	ID string `path:"id" doc:"User ID"`
}

// AdminUsersOutput wraps the account list.
type AdminUsersOutput struct {
	Body []domain.UserDetail
}

// AdminUserInput wraps a create request.
type AdminUserInput struct {
	Body domain.UserInput
}

// AdminUpdateUserInput wraps an update request.
type AdminUpdateUserInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body domain.UserInput
}

// AdminStatsOutput wraps the counters.
type AdminStatsOutput struct {
	Body domain.AdminKPIs
}

// === Handlers ===

func (s *Server) handleAdminListUsers(ctx context.Context, _ *struct{}) (*AdminUsersOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	out := make([]domain.UserDetail, len(s.data.accounts))
	for i, a := range s.data.accounts {
		out[i] = a.user
	}
	return &AdminUsersOutput{Body: out}, nil
}

func (s *Server) handleAdminGetUser(ctx context.Context, input *UserIDInput) (*UserOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()
	a, ok := s.data.account(domain.NewEntityID(input.ID))
	if !ok {
		return nil, domainerrors.NotFoundf("user %s not found", input.ID)
	}
	return &UserOutput{Body: a.user}, nil
}

func (s *Server) handleAdminCreateUser(ctx context.Context, input *AdminUserInput) (*UserOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if input.Body.Username == "" || input.Body.Password == "" {
		return nil, domainerrors.Validation("username and password are required")
	}
	return s.createAccount(input.Body)
}

func (s *Server) handleAdminUpdateUser(ctx context.Context, input *AdminUpdateUserInput) (*UserOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	in := input.Body

	var hash string
	if in.Password != "" {
		var err error
		if hash, err = auth.HashPassword(in.Password, s.params); err != nil {
			return nil, domainerrors.Validation(err.Error())
		}
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	id := domain.NewEntityID(input.ID)
	a, ok := s.data.account(id)
	if !ok {
		return nil, domainerrors.NotFoundf("user %s not found", id)
	}
	if other, taken := s.data.accountByName(in.Username); taken && other != a {
		return nil, domainerrors.Conflict("username already taken")
	}

	if in.Username != "" {
		a.user.Username = in.Username
	}
	a.user.Email = in.Email
	a.user.Enabled = in.Enabled
	if in.AccountNonLocked && !a.user.AccountNonLocked {
		a.user.FailedLoginAttempts = 0
	}
	a.user.AccountNonLocked = in.AccountNonLocked
	if len(in.Authorities) > 0 {
		a.user.Authorities = slices.Clone(in.Authorities)
	}
	if hash != "" {
		a.passwordHash = hash
	}
	a.user.UpdatedAt = s.data.stamp()
	return &UserOutput{Body: a.user}, nil
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, input *UserIDInput) (*struct{}, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	id := domain.NewEntityID(input.ID)
	if _, ok := s.data.account(id); !ok {
		return nil, domainerrors.NotFoundf("user %s not found", id)
	}
	s.data.accounts = slices.DeleteFunc(s.data.accounts, func(a *account) bool { return a.user.ID.Equal(id) })
	for _, r := range s.data.events {
		r.organizers = slices.DeleteFunc(r.organizers, id.Equal)
		r.members = slices.DeleteFunc(r.members, id.Equal)
	}
	for i := range s.data.tasks {
		if s.data.tasks[i].AssignedToID.Equal(id) {
			s.data.tasks[i].AssignedToID = ""
		}
	}
	return nil, nil
}

func (s *Server) handleAdminStats(ctx context.Context, _ *struct{}) (*AdminStatsOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	s.data.mu.RLock()
	defer s.data.mu.RUnlock()

	var completed int
	for _, t := range s.data.tasks {
		if t.Completed {
			completed++
		}
	}
	var rate float64
	if len(s.data.tasks) > 0 {
		rate = float64(completed) / float64(len(s.data.tasks))
	}

	organizers := make(map[domain.EntityID]struct{})
	for _, r := range s.data.events {
		for _, id := range r.organizers {
			organizers[id] = struct{}{}
		}
	}

	return &AdminStatsOutput{Body: domain.AdminKPIs{
		TotalUsers:         len(s.data.accounts),
		TotalEvents:        len(s.data.events),
		TaskCompletionRate: rate,
		ActiveOrganizers:   len(organizers),
	}}, nil
}
