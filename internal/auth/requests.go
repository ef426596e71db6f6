package auth

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/redmonkez12/favorite-movies-api/internal/validation"
)

const (
	maxEmailLen    = 254
	minPasswordLen = 6
	maxPasswordLen = 50
	maxNameLen     = 100
)

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r *RegisterRequest) Validate() error {
	errs := validation.Errors{}
	validateEmail(errs, r.Email)
	validatePassword(errs, "password", r.Password)

	name := strings.TrimSpace(r.Name)
	switch {
	case name == "":
		errs.Add("name", "is required")
	case utf8.RuneCountInString(name) > maxNameLen:
		errs.Add("name", "must be at most 100 characters")
	}
	return errs.Err()
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest carries the ID token returned by Google Identity Services.
type GoogleLoginRequest struct {
	Credential string `json:"credential"`
}

// ForgotPasswordRequest represents the password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	errs := validation.Errors{}
	validateEmail(errs, r.Email)
	return errs.Err()
}

// ResetPasswordRequest represents the password reset confirmation
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r *ResetPasswordRequest) Validate() error {
	errs := validation.Errors{}
	validatePassword(errs, "password", r.Password)
	return errs.Err()
}

func validateEmail(errs validation.Errors, email string) {
	if email == "" {
		errs.Add("email", "is required")
		return
	}
	if len(email) > maxEmailLen {
		errs.Add("email", "must be at most 254 characters")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		errs.Add("email", "must be a valid email address")
	}
}

func validatePassword(errs validation.Errors, field, password string) {
	n := utf8.RuneCountInString(password)
	switch {
	case password == "":
		errs.Add(field, "is required")
	case n < minPasswordLen:
		errs.Add(field, "must be at least 6 characters")
	case n > maxPasswordLen:
		errs.Add(field, "must be at most 50 characters")
	}
}
