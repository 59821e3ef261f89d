package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waitwell/edflow/backend/internal/domain/identity"
)

func newValidator(t *testing.T) *identity.Validator {
	t.Helper()
	v, err := identity.NewValidator("http://localhost:3000")
	require.NoError(t, err)
	return v
}

func TestValidator_Validate_AcceptsWristbandURL(t *testing.T) {
	v := newValidator(t)

	id, err := v.Validate("http://localhost:3000/patient/anon_1234")

	assert.NoError(t, err)
	assert.Equal(t, "anon_1234", id)
}

func TestValidator_Validate_RejectsForeignOrigin(t *testing.T) {
	v := newValidator(t)

	_, err := v.Validate("http://evil.com/patient/anon_1234")

	assert.Error(t, err)
}

func TestValidator_Validate_RejectsWrongPort(t *testing.T) {
	v := newValidator(t)

	_, err := v.Validate("http://localhost:8080/patient/anon_1234")

	assert.Error(t, err)
}

func TestValidator_Validate_RejectsMalformedIdentifier(t *testing.T) {
	v := newValidator(t)

	cases := []string{
		"http://localhost:3000/patient/anon_12",
		"http://localhost:3000/patient/anon_12345",
		"http://localhost:3000/patient/bob",
		"http://localhost:3000/patient/anon_1234/extra",
		"http://localhost:3000/staff/anon_1234",
	}
	for _, token := range cases {
		_, err := v.Validate(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestValidator_Validate_MalformedURLsAreInvalidNotFatal(t *testing.T) {
	v := newValidator(t)

	for _, token := range []string{"", "   ", "::::", "%zz", "not a url at all"} {
		_, err := v.Validate(token)
		assert.Error(t, err, "token %q", token)
	}
}

func TestNewValidator_RejectsBadOrigin(t *testing.T) {
	_, err := identity.NewValidator("not-an-origin")
	assert.Error(t, err)
}
