package identity

import (
	"net/url"
	"regexp"
	"strings"

	apperrors "github.com/waitwell/edflow/backend/pkg/errors"
)

// patientPathPattern matches the wristband URL path and captures the
// anonymized patient identifier: a constant prefix plus four digits.
var patientPathPattern = regexp.MustCompile(`^/patient/(anon_\d{4})$`)

// Validator checks scanned wristband tokens against the deployment
// origin and extracts the patient identifier. It is a pure predicate
// plus extraction: no side effects, no network.
type Validator struct {
	scheme string
	host   string
}

// NewValidator creates a validator bound to the expected public origin,
// e.g. "http://localhost:3000". The origin must parse; a bad origin is a
// deployment configuration error.
func NewValidator(publicOrigin string) (*Validator, error) {
	parsed, err := url.Parse(publicOrigin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, apperrors.NewValidationError("public origin must be a valid absolute URL")
	}
	return &Validator{
		scheme: parsed.Scheme,
		host:   parsed.Host,
	}, nil
}

// Validate returns the patient identifier embedded in a scanned token.
// Malformed URLs, foreign origins and malformed identifiers all return a
// validation error; Validate never panics on arbitrary input.
func (v *Validator) Validate(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", apperrors.NewValidationError("token is empty")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", apperrors.NewValidationError("token is not a valid URL")
	}

	if parsed.Scheme != v.scheme || parsed.Host != v.host {
		return "", apperrors.NewValidationError("token does not match the expected origin")
	}

	match := patientPathPattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return "", apperrors.NewValidationError("token path is not a patient wristband link")
	}

	return match[1], nil
}
