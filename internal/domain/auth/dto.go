package auth

import (
	"strings"

	"github.com/teamzen/hris-backend-go/internal/domain/user"
	"github.com/teamzen/hris-backend-go/internal/pkg/validator"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LoginResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresIn   int64             `json:"expires_in"`
	User        user.UserResponse `json:"user"`
}
