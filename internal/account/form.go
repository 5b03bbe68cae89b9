package account

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"scenario-admin/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// MinPasswordLength is the shortest password the admin form accepts.
const MinPasswordLength = 6

var registerOnce sync.Once

// RegisterValidators adds the tags used by the account forms to gin's binding
// validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", validators.NotBlank)
		}
	})
}

// NewUserForm is the "create user" form as posted by an admin. Field order is
// the order errors are reported in.
type NewUserForm struct {
	FirstName       string `form:"first_name" binding:"notblank"`
	LastName        string `form:"last_name" binding:"notblank"`
	Email           string `form:"email" binding:"notblank"`
	Password        string `form:"password" binding:"min=6"`
	ConfirmPassword string `form:"confirm_password" binding:"eqfield=Password"`
	IsAdmin         bool   `form:"is_admin"`
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `form:"email" binding:"notblank"`
	Password string `form:"password" binding:"required"`
}

// WithoutPasswords returns a copy safe to render back into the page.
func (f NewUserForm) WithoutPasswords() NewUserForm {
	f.Password, f.ConfirmPassword = "", ""
	return f
}

var newUserMessages = map[string]struct{ field, message string }{
	"FirstName":       {"first_name", "Please enter first name"},
	"LastName":        {"last_name", "Please enter last name"},
	"Email":           {"email", "Please enter an email"},
	"Password":        {"password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)},
	"ConfirmPassword": {"confirm_password", "Passwords do not match"},
}

// AsValidationError turns the first binding failure of a NewUserForm into the
// message shown above the form. ok is false for anything that is not a tag
// failure, e.g. a malformed body.
func AsValidationError(err error) (*models.ValidationError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return nil, false
	}
	fe := verrs[0]
	if m, ok := newUserMessages[fe.StructField()]; ok {
		return models.NewValidationError(m.field, "%s", m.message), true
	}
	return models.NewValidationError(fe.Field(), "Invalid %s", strings.ToLower(fe.Field())), true
}

// Payload normalises the form into the POST /user body.
func (f NewUserForm) Payload() models.NewUserPayload {
	return models.NewUserPayload{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.ToLower(strings.TrimSpace(f.Email)),
		Password:  f.Password,
		IsAdmin:   f.IsAdmin,
	}
}
