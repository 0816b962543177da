package commands

import (
	"fmt"
	"strings"
	"unicode/utf8"

	memora_errors "memora/pkg/errors"

	"github.com/google/uuid"
)

const (
	MaxTitleLength      = 200
	MaxBodyLength       = 2000
	MaxResponseLength   = 1000
	MaxOptionLength     = 100
	MaxReasonLength     = 500
	MaxCommunityNameLen = 100
	MaxCommunitySlugLen = 50
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", memora_errors.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// requireLength checks the trimmed rune length of value against [min, max].
func requireLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < min || n > max {
		if min == 0 {
			return invalid("%s must be at most %d characters", field, max)
		}
		return invalid("%s must be between %d and %d characters", field, min, max)
	}
	return nil
}

func requireID(field string, id uuid.UUID) error {
	if id == uuid.Nil {
		return invalid("%s is required", field)
	}
	return nil
}
