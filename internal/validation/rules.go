// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/coffio/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// PositiveSeconds validates that an integer number of seconds (a key-context
// periodicity) is strictly positive. The KeyContext constructor runs this
// before the value ever reaches time-period division, where zero or
// negative periodicity would be nonsensical.
var PositiveSeconds = validation.By(func(value interface{}) error {
	seconds, ok := value.(int64)
	if !ok {
		return validation.NewError("validation_positive_seconds_type", "must be an integer number of seconds")
	}
	if seconds <= 0 {
		return validation.NewError("validation_positive_seconds", "periodicity must be a positive number of seconds")
	}
	return nil
})
