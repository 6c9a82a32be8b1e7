// Package validation carries the request validation rules shared by the
// action handlers and the domain models. Rules return jellydator/validation
// errors; WrapValidationError converts them into the application's
// ErrInvalidInput taxonomy so the dispatch pipeline can map them to a
// validation failure envelope.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/actiongate/actiongate/internal/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// WrapValidationError marks a validation failure as ErrInvalidInput. Returns
// nil for nil so callers can wrap unconditionally.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PasswordStrength enforces a configurable password policy. The zero value
// accepts everything; callers enable the character-class requirements they
// need.
type PasswordStrength struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

// Validate checks the value against the configured policy. Requirements are
// reported one at a time, shortest check first, so the caller sees a single
// actionable message.
func (p PasswordStrength) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}

	if len(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			"password must be at least "+strconv.Itoa(p.MinLength)+" characters",
		)
	}

	if p.RequireUpper && !containsRuneClass(s, unicode.IsUpper) {
		return validation.NewError(
			"validation_password_uppercase",
			"password must contain at least one uppercase letter",
		)
	}

	if p.RequireLower && !containsRuneClass(s, unicode.IsLower) {
		return validation.NewError(
			"validation_password_lowercase",
			"password must contain at least one lowercase letter",
		)
	}

	if p.RequireNumber && !containsRuneClass(s, unicode.IsNumber) {
		return validation.NewError("validation_password_number", "password must contain at least one number")
	}

	if p.RequireSpecial && !containsRuneClass(s, isSpecialRune) {
		return validation.NewError(
			"validation_password_special",
			"password must contain at least one special character",
		)
	}

	return nil
}

func containsRuneClass(s string, in func(rune) bool) bool {
	for _, r := range s {
		if in(r) {
			return true
		}
	}
	return false
}

func isSpecialRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// Email checks the basic user@host.tld shape. Deliverability is the mail
// system's problem, not the gateway's.
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace rejects values with leading or trailing whitespace, which in
// copied tokens and names is almost always a paste accident.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank rejects values that are empty once whitespace is trimmed. Unlike
// validation.Required it catches all-whitespace strings.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
