// Package domain defines authentication and authorization domain models.
// Implements capability-based access control with hashed bearer credentials
// and per-action permission overrides.
package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Capability defines the classes of operations a credential may perform.
// Actions declare the capabilities they require; credentials carry the
// capabilities they were granted.
type Capability string

const (
	// ReadCapability allows read-only actions.
	ReadCapability Capability = "read"

	// WriteCapability allows actions that create or update data.
	WriteCapability Capability = "write"

	// DeleteCapability allows actions that remove data.
	DeleteCapability Capability = "delete"

	// AdminCapability allows management actions (credentials, permissions, audit).
	AdminCapability Capability = "admin"
)

// AllCapabilities lists every known capability in a stable order.
var AllCapabilities = []Capability{
	ReadCapability,
	WriteCapability,
	DeleteCapability,
	AdminCapability,
}

// IsValid reports whether the capability is one of the known values.
func (c Capability) IsValid() bool {
	return slices.Contains(AllCapabilities, c)
}

// ParseCapabilities parses a comma-separated capability list such as
// "read,write". Whitespace around entries is ignored and empty entries are
// skipped. Returns an error naming the first unknown capability.
func ParseCapabilities(s string) ([]Capability, error) {
	var capabilities []Capability
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		capability := Capability(part)
		if !capability.IsValid() {
			return nil, fmt.Errorf("unknown capability: %q", part)
		}
		if !slices.Contains(capabilities, capability) {
			capabilities = append(capabilities, capability)
		}
	}
	return capabilities, nil
}
