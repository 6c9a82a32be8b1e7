package httputil

import "strings"

// RedactedValue replaces sensitive values in serialized output.
const RedactedValue = "[REDACTED]"

// sensitiveKeyFragments flags map keys whose values must never be serialized
// into error details, audit metadata, or log fields. Matching is
// case-insensitive on key substrings, so "client_secret", "Authorization",
// and "refresh_token" are all caught.
var sensitiveKeyFragments = []string{
	"password",
	"token",
	"secret",
	"authorization",
	"credential",
	"api_key",
	"private_key",
	"passphrase",
}

// Redact returns a copy of values with every sensitive entry replaced by
// RedactedValue. Nested maps and slices are walked recursively. The input map
// is never modified. A nil input yields nil.
func Redact(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}

	redacted := make(map[string]any, len(values))
	for key, value := range values {
		if isSensitiveKey(key) {
			redacted[key] = RedactedValue
			continue
		}
		redacted[key] = redactValue(value)
	}
	return redacted
}

func redactValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return Redact(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = redactValue(item)
		}
		return items
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, fragment := range sensitiveKeyFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
