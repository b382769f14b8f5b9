package domain

import (
	"errors"
	"fmt"
	"strings"
)

const MinPasswordLength = 6

var (
	ErrMissingField     = errors.New("required field is empty")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

type Customer struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

type SignUp struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

type SignIn struct {
	Email    string
	Password string
}

// ProfileUpdate carries the fields to change; empty fields are left as they are.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

type Auth struct {
	AccessToken string
	Customer    Customer
}

// ValidateSignUp checks a registration form before it is sent. confirm is the repeated password.
func ValidateSignUp(req SignUp, confirm string) error {
	required := []struct {
		name  string
		value string
	}{
		{"first name", req.FirstName},
		{"last name", req.LastName},
		{"email", req.Email},
		{"password", req.Password},
	}

	var errs []error
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, fmt.Errorf("%s: %w", field.name, ErrMissingField))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if req.Password != confirm {
		return ErrPasswordMismatch
	}
	if len(req.Password) < MinPasswordLength {
		return fmt.Errorf("%w: at least %d characters", ErrPasswordTooShort, MinPasswordLength)
	}

	return nil
}
