// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/entitygate/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// CapabilityName validates the shape of a capability name: lowercase words
// separated by underscores, as in "list_entities".
var CapabilityName = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "" {
			return true // Let Required handle empty strings
		}
		for _, r := range s {
			if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
				return false
			}
		}
		return s[0] != '_' && s[len(s)-1] != '_'
	},
	validation.NewError("validation_capability_name", "must contain only lowercase letters, digits and underscores"),
)
