package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	errValidation = errors.New("validation")

	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	appIDPattern = regexp.MustCompile(`^[0-9]+$`)
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	maxSteamIDLen  = 100
)

type classifiedError struct {
	kind error
	msg  string
}

func (e *classifiedError) Error() string { return e.msg }

func (e *classifiedError) Unwrap() error { return e.kind }

func validationErrorf(format string, args ...any) error {
	return &classifiedError{
		kind: errValidation,
		msg:  fmt.Sprintf(format, args...),
	}
}

// IsValidationError reports whether err came from input validation.
func IsValidationError(err error) bool {
	return errors.Is(err, errValidation)
}

// CreateUserRequest is the payload accepted by user creation.
type CreateUserRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	SteamID  *string `json:"steam_id,omitempty"`
}

// Validate normalizes and checks the request fields.
func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	if n := utf8.RuneCountInString(r.Username); n < minUsernameLen || n > maxUsernameLen {
		return validationErrorf("username must be between %d and %d characters", minUsernameLen, maxUsernameLen)
	}
	if !emailPattern.MatchString(r.Email) {
		return validationErrorf("invalid email address")
	}
	if r.SteamID != nil && utf8.RuneCountInString(*r.SteamID) > maxSteamIDLen {
		return validationErrorf("steam_id must be at most %d characters", maxSteamIDLen)
	}
	return nil
}

// ValidateAppID enforces the numeric string form used by app and file
// routes.
func ValidateAppID(appID string) error {
	if appID == "" || !appIDPattern.MatchString(appID) {
		return validationErrorf("app_id must be numeric")
	}
	return nil
}
