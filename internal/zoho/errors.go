package zoho

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("zoho credentials not configured")
	ErrAuth          = errors.New("failed to get access token")
)

// ConfigurationError names the credential values that are missing
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrConfiguration, strings.Join(e.Missing, ", "))
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// AuthError is returned when the token endpoint does not hand out an access token.
// Details carries the remote payload for diagnostics.
type AuthError struct {
	StatusCode int
	Details    string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", ErrAuth, e.Details)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrAuth, e.Err)
	}
	return ErrAuth.Error()
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the CRM REST API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zoho API error (status %d): %s", e.StatusCode, e.Body)
}
