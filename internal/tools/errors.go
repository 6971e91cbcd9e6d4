package tools

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError describes one invalid or missing argument.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError is returned when tool arguments do not match the tool's
// declared arguments. It lists every offending field.
type ValidationError struct {
	Tool   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(parts, "; "))
}

// NotAuthorizedError is returned when a tool is called before an access
// token is available.
type NotAuthorizedError struct{}

func (e *NotAuthorizedError) Error() string {
	return "not authorized with HubSpot: complete /install first"
}

// IsValidationError reports whether err is a ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var target *ValidationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
