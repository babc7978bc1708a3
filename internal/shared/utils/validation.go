package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// String length limits
const (
	MaxIDLength    = 512
	MaxLabelLength = 256
	MaxQueryLength = 256
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateItemID validates a catalog item id. Item ids embed package and
// lookup keys verbatim, so only emptiness, length and null bytes are checked.
func ValidateItemID(itemID string) error {
	return ValidateString(itemID, "item id", 1, MaxIDLength, true)
}

// ValidateLabel validates a rename label. Blank labels are allowed and clear
// the override.
func ValidateLabel(label string) error {
	return ValidateString(label, "label", 0, MaxLabelLength, false)
}

// ValidateQuery validates a filter query
func ValidateQuery(query string) error {
	return ValidateString(query, "query", 0, MaxQueryLength, false)
}
