package domain

import "slices"

// ParticipantRole is the role a user holds within one event.
type ParticipantRole string

const (
	// RoleOrganizer can manage the event.
	RoleOrganizer ParticipantRole = "ORGANIZER"
	// RoleMember takes part in the event.
	RoleMember ParticipantRole = "MEMBER"
)

// Valid reports whether r is a known participant role.
func (r ParticipantRole) Valid() bool {
	return r == RoleOrganizer || r == RoleMember
}

// Authorities granted to accounts by the backend.
const (
	AuthorityUser  = "ROLE_USER"
	AuthorityAdmin = "ROLE_ADMIN"
)

// UserSummary is the directory view of a user.
type UserSummary struct {
	ID       EntityID `json:"id"`
	Username string   `json:"username"`
	Avatar   string   `json:"avatar,omitempty"`
	Email    string   `json:"email,omitempty"`
}

// Participant is a user enrolled in an event under a role.
type Participant struct {
	ID       EntityID        `json:"id"`
	Username string          `json:"username,omitempty"`
	Avatar   string          `json:"avatar,omitempty"`
	Email    string          `json:"email"`
	Role     ParticipantRole `json:"role,omitempty"`
}

// ParticipantFromUser builds a participant record for u under role.
func ParticipantFromUser(u UserSummary, role ParticipantRole) Participant {
	return Participant{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
		Email:    u.Email,
		Role:     role,
	}
}

// NeedsHydration reports whether display fields are missing.
func (p Participant) NeedsHydration() bool {
	return p.Username == "" || p.Avatar == ""
}

// Hydrate fills missing display fields from the directory entry.
func (p *Participant) Hydrate(u UserSummary) {
	if p.Username == "" {
		p.Username = u.Username
	}
	if p.Avatar == "" {
		p.Avatar = u.Avatar
	}
	if p.Email == "" {
		p.Email = u.Email
	}
}

// UserDetail is the full account record returned by /me and the admin API.
type UserDetail struct {
	ID                  EntityID `json:"id"`
	Username            string   `json:"username"`
	Email               string   `json:"email"`
	Enabled             bool     `json:"enabled"`
	AccountNonLocked    bool     `json:"accountNonLocked"`
	Avatar              string   `json:"avatar,omitempty"`
	FailedLoginAttempts int      `json:"failedLoginAttempts"`
	LastLogin           string   `json:"lastLogin,omitempty"`
	CreatedAt           string   `json:"createdAt,omitempty"`
	UpdatedAt           string   `json:"updatedAt,omitempty"`
	Authorities         []string `json:"authorities"`
	Roles               []string `json:"roles,omitempty"`
	Role                string   `json:"role,omitempty"`
	Authenticated       *bool    `json:"authenticated,omitempty"`
}

// Summary projects the account to its directory view.
func (u UserDetail) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
		Email:    u.Email,
	}
}

// IsAdmin reports whether any of authorities, roles or role grants ROLE_ADMIN.
func (u UserDetail) IsAdmin() bool {
	return slices.Contains(u.Authorities, AuthorityAdmin) ||
		slices.Contains(u.Roles, AuthorityAdmin) ||
		u.Role == AuthorityAdmin
}

// IsUnauthenticated reports whether the backend explicitly flagged the
// session as anonymous.
func (u UserDetail) IsUnauthenticated() bool {
	return u.Authenticated != nil && !*u.Authenticated
}

// FindUser returns the directory entry with the given id.
func FindUser(users []UserSummary, id EntityID) (UserSummary, bool) {
	for _, u := range users {
		if u.ID.Equal(id) {
			return u, true
		}
	}
	return UserSummary{}, false
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the self-service sign-up request body.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInput is the admin create/update request body. An empty password
// leaves the stored one unchanged on update.
type UserInput struct {
	Username         string   `json:"username"`
	Email            string   `json:"email"`
	Password         string   `json:"password,omitempty"`
	Authorities      []string `json:"authorities"`
	Enabled          bool     `json:"enabled"`
	AccountNonLocked bool     `json:"accountNonLocked"`
}
