// Package admin backs the administration screens: account management and
// the operational dashboard assembled from the backend's actuator.
package admin

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	"github.com/eventdeck/eventdeck-client/internal/logger"
)

// API is the remote admin and actuator surface.
type API interface {
	AdminListUsers(ctx context.Context) ([]domain.UserDetail, error)
	AdminCreateUser(ctx context.Context, in domain.UserInput) (domain.UserDetail, error)
	AdminUpdateUser(ctx context.Context, userID domain.EntityID, in domain.UserInput) (domain.UserDetail, error)
	AdminDeleteUser(ctx context.Context, userID domain.EntityID) error
	AdminStats(ctx context.Context) (domain.AdminKPIs, error)
	Health(ctx context.Context) (domain.Health, error)
	Metric(ctx context.Context, name string) (domain.Metric, error)
	RequestMetrics(ctx context.Context, uri string) (domain.Metric, error)
}

// LocalData exposes the reconciliation store's collections for KPI
// fallbacks.
type LocalData interface {
	Events() []domain.Event
	Tasks() []domain.Task
}

// Service holds the admin user list and the last dashboard snapshot.
type Service struct {
	api       API
	local     LocalData
	seedUsers []domain.UserDetail
	logger    *slog.Logger

	mu      sync.RWMutex
	users   []domain.UserDetail
	stats   *Stats
	loading bool
}

// NewService creates a Service. seedUsers replace the list when the first
// fetch fails.
func NewService(api API, local LocalData, seedUsers []domain.UserDetail, log *slog.Logger) *Service {
	return &Service{
		api:       api,
		local:     local,
		seedUsers: seedUsers,
		logger:    logger.OrDiscard(log),
	}
}

// Users returns a copy of the held user list.
func (s *Service) Users() []domain.UserDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

// Loading reports whether a request is in flight.
func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Service) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// FetchUsers reloads the user list. On failure the current list is kept,
// or replaced with the seed users when it is empty. The error is logged,
// not returned.
func (s *Service) FetchUsers(ctx context.Context) []domain.UserDetail {
	s.setLoading(true)
	defer s.setLoading(false)

	users, err := s.api.AdminListUsers(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn("failed to fetch users", "error", err)
		if len(s.users) == 0 {
			s.users = slices.Clone(s.seedUsers)
		}
		return slices.Clone(s.users)
	}
	s.users = users
	return slices.Clone(s.users)
}

// CreateUser creates an account and appends it to the list.
func (s *Service) CreateUser(ctx context.Context, in domain.UserInput) (domain.UserDetail, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	u, err := s.api.AdminCreateUser(ctx, in)
	if err != nil {
		return domain.UserDetail{}, err
	}

	s.mu.Lock()
	s.users = append(s.users, u)
	s.mu.Unlock()
	return u, nil
}

// UpdateUser updates an account and replaces it in the list when held.
func (s *Service) UpdateUser(ctx context.Context, userID domain.EntityID, in domain.UserInput) (domain.UserDetail, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	u, err := s.api.AdminUpdateUser(ctx, userID, in)
	if err != nil {
		return domain.UserDetail{}, err
	}

	s.mu.Lock()
	if i := s.indexOf(userID); i >= 0 {
		s.users[i] = u
	}
	s.mu.Unlock()
	return u, nil
}

// DeleteUser deletes an account and drops it from the list.
func (s *Service) DeleteUser(ctx context.Context, userID domain.EntityID) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.AdminDeleteUser(ctx, userID); err != nil {
		return err
	}

	s.mu.Lock()
	s.users = slices.DeleteFunc(s.users, func(u domain.UserDetail) bool { return u.ID.Equal(userID) })
	s.mu.Unlock()
	return nil
}

func (s *Service) indexOf(userID domain.EntityID) int {
	return slices.IndexFunc(s.users, func(u domain.UserDetail) bool { return u.ID.Equal(userID) })
}
