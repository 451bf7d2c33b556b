package validation

import (
	"strings"

	"github.com/eventdeck/eventdeck-client/internal/domain"
)

// EventForm is the create/edit event form.
type EventForm struct {
	Title        string `json:"title" validate:"required,min=3,max=100"`
	Description  string `json:"description" validate:"required,min=10,max=1000"`
	Date         string `json:"date" validate:"required,instant"`
	LocationName string `json:"locationName" validate:"required,min=3,max=100"`
	Street       string `json:"street" validate:"required,min=2,max=100"`
	City         string `json:"city" validate:"required,min=2,max=100"`
	ZipCode      string `json:"zipCode" validate:"required,min=2,max=20"`
	Country      string `json:"country" validate:"required,min=2,max=100"`
}

// Input converts the form to a request body.
func (f EventForm) Input() domain.EventInput {
	return domain.EventInput{
		Title:        strings.TrimSpace(f.Title),
		Description:  strings.TrimSpace(f.Description),
		Date:         f.Date,
		LocationName: strings.TrimSpace(f.LocationName),
		Street:       strings.TrimSpace(f.Street),
		City:         strings.TrimSpace(f.City),
		ZipCode:      strings.TrimSpace(f.ZipCode),
		Country:      strings.TrimSpace(f.Country),
	}
}

// TaskForm is the add-task form.
type TaskForm struct {
	Description  string          `json:"description" validate:"required,min=3,max=500"`
	AssignedToID domain.EntityID `json:"assignedToId" validate:"required"`
	DueDate      string          `json:"dueDate" validate:"required,instant"`
}

// Input converts the form to a creation request for eventID.
func (f TaskForm) Input(eventID domain.EntityID) domain.TaskInput {
	return domain.TaskInput{
		Description:  strings.TrimSpace(f.Description),
		DueDate:      f.DueDate,
		AssignedToID: f.AssignedToID,
		EventID:      eventID,
	}
}

// ParticipantForm is the add-participant form.
type ParticipantForm struct {
	UserID domain.EntityID        `json:"userId" validate:"required"`
	Role   domain.ParticipantRole `json:"role" validate:"required,participant_role"`
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// Credentials converts the form to a login request.
func (f LoginForm) Credentials() domain.Credentials {
	return domain.Credentials{Username: strings.TrimSpace(f.Username), Password: f.Password}
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,min=6,eqfield=Password"`
}

// Registration converts the form to a sign-up request.
func (f RegisterForm) Registration() domain.Registration {
	return domain.Registration{
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}
}

// UserForm is the admin create/edit user form. An empty password keeps the
// stored one; a set password must be confirmed.
type UserForm struct {
	Username         string   `json:"username" validate:"required,min=3,max=50"`
	Email            string   `json:"email" validate:"required,email"`
	Password         string   `json:"password" validate:"omitempty,min=6"`
	ConfirmPassword  string   `json:"confirmPassword" validate:"eqfield=Password"`
	Authorities      []string `json:"authorities" validate:"required,min=1,dive,oneof=ROLE_USER ROLE_ADMIN"`
	Enabled          bool     `json:"enabled"`
	AccountNonLocked bool     `json:"accountNonLocked"`
}

// NewUserForm returns the defaults of a new account.
func NewUserForm() UserForm {
	return UserForm{
		Authorities:      []string{domain.AuthorityUser},
		Enabled:          true,
		AccountNonLocked: true,
	}
}

// Input converts the form to an admin request body.
func (f UserForm) Input() domain.UserInput {
	return domain.UserInput{
		Username:         strings.TrimSpace(f.Username),
		Email:            strings.TrimSpace(f.Email),
		Password:         f.Password,
		Authorities:      f.Authorities,
		Enabled:          f.Enabled,
		AccountNonLocked: f.AccountNonLocked,
	}
}
