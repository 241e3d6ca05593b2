package session

import (
	"fmt"
	"regexp"

	"github.com/quickplate/quickplate-go/core"
)

// Preflight input validation. These checks run before any network call so
// malformed input never produces a round trip; the backend still enforces
// its own rules.

var (
	sapIDPattern = regexp.MustCompile(`^\d{6,11}$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

const minPasswordLength = 6

func validateCredentials(sapID, password string) error {
	if sapID == "" {
		return fmt.Errorf("SAP ID is required: %w", core.ErrValidation)
	}
	if !sapIDPattern.MatchString(sapID) {
		return fmt.Errorf("invalid SAP ID format: %w", core.ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("password is required: %w", core.ErrValidation)
	}
	return nil
}

func validateSignup(req core.SignupRequest) error {
	if err := validateCredentials(req.SAPID, req.Password); err != nil {
		return err
	}
	if len(req.Name) < 2 {
		return fmt.Errorf("name is too short: %w", core.ErrValidation)
	}
	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		return fmt.Errorf("invalid phone number: %w", core.ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, core.ErrValidation)
	}
	if req.Password != req.ConfirmPassword {
		return fmt.Errorf("passwords do not match: %w", core.ErrPasswordMismatch)
	}
	return nil
}

func validatePasswordChange(oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("old and new passwords are required: %w", core.ErrValidation)
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, core.ErrValidation)
	}
	return nil
}
