package application

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// ValidateOneOf checks that value is one of allowed
func ValidateOneOf(fieldName, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return &ValidationError{
		Field:   fieldName,
		Message: fmt.Sprintf("unknown %s %q (want one of %s)", formatFieldName(fieldName), value, strings.Join(allowed, ", ")),
	}
}

// ValidateRelPath checks that a node path is relative to the package root
// and does not escape it
func ValidateRelPath(fieldName, path string) error {
	if err := ValidateRequired(fieldName, path); err != nil {
		return err
	}
	if strings.HasPrefix(path, "/") || path == ".." || strings.HasPrefix(path, "../") {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be relative to the package root, got: %s", formatFieldName(fieldName), path),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "rootPath" -> "root path")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"rootPath": "root path",
		"nodePath": "node path",
		"typeID":   "type ID",
		"format":   "format",
		"profile":  "profile",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}
