// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/credentials/internal/errors"
)

var (
	// identifierRegex matches opaque identifiers used for systems and consumers.
	identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// Identifier validates opaque identifiers (system names, consumer ids): ASCII
// letters, digits, dots, dashes and underscores, starting with an alphanumeric.
var Identifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return identifierRegex.MatchString(s)
	},
	validation.NewError(
		"validation_identifier",
		"must contain only letters, digits, dots, dashes and underscores",
	),
)

// UUID validates that a string is a well formed UUID
var UUID = validation.NewStringRuleWithError(
	func(s string) bool {
		return uuid.Validate(s) == nil
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)
