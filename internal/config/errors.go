package config

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError is returned when the configuration is incomplete or
// invalid. It is fatal at startup.
type ConfigurationError struct {
	// Missing lists required variables that were not set.
	Missing []string

	Message     string
	Details     string
	Suggestions []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
	}
	return e.Message
}

// DetailedError returns a multi-line message with details and suggestions.
func (e *ConfigurationError) DetailedError() string {
	parts := []string{fmt.Sprintf("Configuration error: %s", e.Message)}

	for _, name := range e.Missing {
		parts = append(parts, fmt.Sprintf("  Missing: %s", name))
	}

	if e.Details != "" {
		parts = append(parts, fmt.Sprintf("  Details: %s", e.Details))
	}

	if len(e.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range e.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

// IsConfigurationError reports whether err is a ConfigurationError and
// returns it.
func IsConfigurationError(err error) (*ConfigurationError, bool) {
	var target *ConfigurationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
