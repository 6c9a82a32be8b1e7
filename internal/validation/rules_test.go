package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/actiongate/actiongate/internal/errors"
)

func TestPasswordStrength(t *testing.T) {
	rule := PasswordStrength{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	}

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{name: "all classes present", password: "Dispatch#2026ok"},
		{name: "too short", password: "Ab1!", wantErr: "at least 8 characters"},
		{name: "no uppercase", password: "dispatch#2026ok", wantErr: "uppercase letter"},
		{name: "no lowercase", password: "DISPATCH#2026OK", wantErr: "lowercase letter"},
		{name: "no number", password: "Dispatch#okay", wantErr: "at least one number"},
		{name: "no special character", password: "Dispatch2026ok", wantErr: "special character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("non-string value", func(t *testing.T) {
		err := rule.Validate(42)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be a string")
	})
}

func TestPasswordStrength_MinLengthMessage(t *testing.T) {
	// The limit must render as digits in the message, whatever its size.
	rule := PasswordStrength{MinLength: 12}

	err := rule.Validate("elevenchars")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 12 characters")
}

func TestPasswordStrength_LengthOnlyPolicy(t *testing.T) {
	rule := PasswordStrength{MinLength: 10}

	assert.NoError(t, rule.Validate("tencharsok"))
	assert.Error(t, rule.Validate("ninechars"))
}

func TestEmail(t *testing.T) {
	valid := []string{
		"operator@example.com",
		"first.last@mail.example.com",
		"ops+oncall@example.io",
	}
	for _, email := range valid {
		t.Run("valid "+email, func(t *testing.T) {
			assert.NoError(t, Email.Validate(email))
		})
	}

	invalid := []string{
		"operatorexample.com",
		"operator@",
		"@example.com",
		"operator@example",
		"oper ator@example.com",
	}
	for _, email := range invalid {
		t.Run("invalid "+email, func(t *testing.T) {
			assert.Error(t, Email.Validate(email))
		})
	}
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("token-hash-value"))
	assert.NoError(t, NoWhitespace.Validate("two words"), "interior whitespace is allowed")
	assert.Error(t, NoWhitespace.Validate(" padded"))
	assert.Error(t, NoWhitespace.Validate("padded "))
	assert.Error(t, NoWhitespace.Validate("\tpadded\n"))
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("ci-deploy"))

	for _, input := range []string{"   ", "\t\t", "\n", " \t\n "} {
		assert.Error(t, NotBlank.Validate(input), "input %q should be rejected as blank", input)
	}
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	wrapped := WrapValidationError(assert.AnError)
	require.Error(t, wrapped)
	assert.ErrorIs(t, wrapped, apperrors.ErrInvalidInput)
	assert.Contains(t, wrapped.Error(), assert.AnError.Error())
}
