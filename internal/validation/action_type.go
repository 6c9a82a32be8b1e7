// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"

	validation "github.com/jellydator/validation"
)

// ActionTypeMaxLength is the maximum accepted length of an action type string.
const ActionTypeMaxLength = 128

// actionTypeRegex matches dot-separated lowercase identifiers such as
// "system.ping" or "credentials.create". Each segment is [a-z0-9_]+.
var actionTypeRegex = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)

// ActionType validates that a string is a well-formed action type identifier.
var ActionType = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_action_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if len(s) > ActionTypeMaxLength {
		return validation.NewError(
			"validation_action_type_length",
			"must be at most 128 characters",
		)
	}
	if !actionTypeRegex.MatchString(s) {
		return validation.NewError(
			"validation_action_type_format",
			"must be dot-separated lowercase identifiers (e.g. system.ping)",
		)
	}
	return nil
})
