package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
	"github.com/eventdeck/eventdeck-client/internal/validation"
)

func validEvent() validation.EventForm {
	return validation.EventForm{
		Title:        "Spring fair",
		Description:  "Annual school spring fair",
		Date:         "2026-04-18T10:00:00.000Z",
		LocationName: "Main hall",
		Street:       "1 School Rd",
		City:         "Lyon",
		ZipCode:      "69001",
		Country:      "France",
	}
}

func TestValidator_EventForm(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		mutate    func(f *validation.EventForm)
		wantField string
		wantMsg   string
	}{
		{"valid", func(*validation.EventForm) {}, "", ""},
		{"plain date accepted", func(f *validation.EventForm) { f.Date = "2026-04-18" }, "", ""},
		{"title too short", func(f *validation.EventForm) { f.Title = "ab" }, "title", "must be at least 3 characters"},
		{"missing title", func(f *validation.EventForm) { f.Title = "" }, "title", "is required"},
		{"description too short", func(f *validation.EventForm) { f.Description = "short" }, "description", "must be at least 10 characters"},
		{"bad date", func(f *validation.EventForm) { f.Date = "next friday" }, "date", "must be a valid date"},
		{"zip too long", func(f *validation.EventForm) { f.ZipCode = strings.Repeat("9", 21) }, "zipCode", "must not exceed 20 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validEvent()
			tt.mutate(&form)

			err := v.Validate(form)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
			assert.Equal(t, tt.wantMsg, validation.FieldErrors(err)[tt.wantField])
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestValidator_TaskForm(t *testing.T) {
	v := validation.New()

	err := v.Validate(validation.TaskForm{Description: "Buy chairs", AssignedToID: "2", DueDate: "2026-04-01"})
	assert.NoError(t, err)

	err = v.Validate(validation.TaskForm{Description: "ok"})
	fields := validation.FieldErrors(err)
	assert.Equal(t, "must be at least 3 characters", fields["description"])
	assert.Equal(t, "is required", fields["assignedToId"])
	assert.Equal(t, "is required", fields["dueDate"])

	in := validation.TaskForm{Description: "  Buy chairs ", AssignedToID: "2", DueDate: "2026-04-01"}.Input("5")
	assert.Equal(t, domain.TaskInput{Description: "Buy chairs", AssignedToID: "2", DueDate: "2026-04-01", EventID: "5"}, in)
}

func TestValidator_ParticipantForm(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(validation.ParticipantForm{UserID: "3", Role: domain.RoleMember}))

	err := v.Validate(validation.ParticipantForm{UserID: "3", Role: "GUEST"})
	assert.Equal(t, "must be one of: ORGANIZER MEMBER", validation.FieldErrors(err)["role"])

	err = v.Validate(validation.ParticipantForm{Role: domain.RoleOrganizer})
	assert.Equal(t, "is required", validation.FieldErrors(err)["userId"])
}

func TestValidator_RegisterForm(t *testing.T) {
	v := validation.New()

	form := validation.RegisterForm{Username: "alice", Email: "alice@example.com", Password: "secret1", ConfirmPassword: "secret1"}
	assert.NoError(t, v.Validate(form))

	form.ConfirmPassword = "secret2"
	assert.Equal(t, "must match password", validation.FieldErrors(v.Validate(form))["confirmPassword"])

	form.ConfirmPassword = form.Password
	form.Email = "not-an-email"
	assert.Equal(t, "must be a valid email address", validation.FieldErrors(v.Validate(form))["email"])
}

func TestValidator_LoginForm(t *testing.T) {
	v := validation.New()

	err := v.Validate(validation.LoginForm{Username: "al", Password: "12345"})
	fields := validation.FieldErrors(err)
	assert.Len(t, fields, 2)
	assert.Equal(t, "must be at least 3 characters", fields["username"])
	assert.Equal(t, "must be at least 6 characters", fields["password"])

	creds := validation.LoginForm{Username: " alice ", Password: "secret"}.Credentials()
	assert.Equal(t, "alice", creds.Username)
}

func TestValidator_UserForm(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		mutate    func(f *validation.UserForm)
		wantField string
		wantMsg   string
	}{
		{"defaults with empty password", func(*validation.UserForm) {}, "", ""},
		{"matching password", func(f *validation.UserForm) { f.Password, f.ConfirmPassword = "secret1", "secret1" }, "", ""},
		{"unconfirmed password", func(f *validation.UserForm) { f.Password = "secret1" }, "confirmPassword", "must match password"},
		{"short password", func(f *validation.UserForm) { f.Password, f.ConfirmPassword = "abc", "abc" }, "password", "must be at least 6 characters"},
		{"no authorities", func(f *validation.UserForm) { f.Authorities = []string{} }, "authorities", "must contain at least 1 item(s)"},
		{"unknown authority", func(f *validation.UserForm) { f.Authorities = []string{"ROLE_ROOT"} }, "authorities[0]", "must be one of: ROLE_USER ROLE_ADMIN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validation.NewUserForm()
			form.Username = "carla"
			form.Email = "carla@example.com"
			tt.mutate(&form)

			err := v.Validate(form)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantMsg, validation.FieldErrors(err)[tt.wantField])
		})
	}
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, validation.FieldErrors(domainerrors.ErrNotFound))
	assert.Nil(t, validation.FieldErrors(nil))
}
