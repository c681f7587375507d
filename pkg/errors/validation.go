package errors

import (
	"strings"
	"unicode"
)

// MaxNodeNameLength bounds node names, which double as script file names.
const MaxNodeNameLength = 64

// ValidateNodeName rejects names that cannot come from the node registry or
// a script directory: empty, overly long, control characters or path
// separators.
func ValidateNodeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "node name cannot be empty")
	}
	if len(name) > MaxNodeNameLength {
		return New(ErrCodeInvalidInput, "node name too long (max %d characters)", MaxNodeNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "node name cannot contain path components: %q", name)
	}
	return nil
}

// ValidateSlot checks a node slot index against limit (exclusive). A limit
// of 0 or less only rejects negative indices.
func ValidateSlot(index, limit int) error {
	if index < 0 {
		return New(ErrCodeInvalidSlot, "slot index %d is negative", index)
	}
	if limit > 0 && index >= limit {
		return New(ErrCodeInvalidSlot, "slot index %d out of range (max %d)", index, limit-1)
	}
	return nil
}
