package account

import (
	"errors"
	"testing"

	"scenario-admin/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() NewUserForm {
	return NewUserForm{
		FirstName:       " Ada ",
		LastName:        "Lovelace",
		Email:           "  Ada@Example.COM ",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		IsAdmin:         true,
	}
}

func validate(t *testing.T, obj any) error {
	t.Helper()
	RegisterValidators()
	return binding.Validator.ValidateStruct(obj)
}

func TestNewUserFormValidation(t *testing.T) {
	require.NoError(t, validate(t, validForm()))

	tests := []struct {
		name   string
		mutate func(*NewUserForm)
		field  string
		want   string
	}{
		{"first name", func(f *NewUserForm) { f.FirstName = " " }, "first_name", "Please enter first name"},
		{"last name", func(f *NewUserForm) { f.LastName = "" }, "last_name", "Please enter last name"},
		{"email", func(f *NewUserForm) { f.Email = "\t" }, "email", "Please enter an email"},
		{"short password", func(f *NewUserForm) { f.Password, f.ConfirmPassword = "12345", "12345" }, "password", "Password must be at least 6 characters"},
		{"mismatch", func(f *NewUserForm) { f.ConfirmPassword = "other12" }, "confirm_password", "Passwords do not match"},
		{"first problem wins", func(f *NewUserForm) { f.LastName, f.ConfirmPassword = "", "nope" }, "last_name", "Please enter last name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			err := validate(t, f)
			require.Error(t, err)

			verr, ok := AsValidationError(err)
			require.True(t, ok)
			assert.ErrorIs(t, verr, models.ErrInvalidInput)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.want, verr.Error())
		})
	}
}

func TestAsValidationErrorIgnoresOtherErrors(t *testing.T) {
	_, ok := AsValidationError(errors.New("malformed body"))
	assert.False(t, ok)
	_, ok = AsValidationError(nil)
	assert.False(t, ok)
}

func TestLoginFormValidation(t *testing.T) {
	assert.NoError(t, validate(t, LoginForm{Email: "a@b.c", Password: "x"}))
	assert.Error(t, validate(t, LoginForm{Email: "  ", Password: "x"}))
	assert.Error(t, validate(t, LoginForm{Email: "a@b.c"}))
}

func TestWithoutPasswords(t *testing.T) {
	f := validForm().WithoutPasswords()
	assert.Empty(t, f.Password)
	assert.Empty(t, f.ConfirmPassword)
	assert.Equal(t, "Lovelace", f.LastName)
}

func TestNewUserFormPayload(t *testing.T) {
	p := validForm().Payload()
	assert.Equal(t, models.NewUserPayload{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "secret1",
		IsAdmin:   true,
	}, p)
}
