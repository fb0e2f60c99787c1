package profile

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// prefixLen is the length of the random directory prefix.
const prefixLen = 8

// ValidateName checks a profile name against the allowed character set:
// letters, digits, space, hyphen and underscore, with at least one letter or
// digit and no surrounding spaces.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: name %q must not start or end with a space", ErrValidation, name)
	}

	hasAlnum := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			hasAlnum = true
		case r == ' ', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: name %q contains disallowed character %q", ErrValidation, name, r)
		}
	}
	if !hasAlnum {
		return fmt.Errorf("%w: name %q must contain a letter or digit", ErrValidation, name)
	}
	return nil
}

// SanitizeName turns a valid profile name into the suffix of its directory
// name: lowercased, with spaces replaced by hyphens.
func SanitizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// randomPrefix returns 8 lowercase hex characters from a random UUID.
func randomPrefix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:prefixLen]
}

// directoryName builds "<prefix>.<sanitized name>".
func directoryName(prefix, name string) string {
	if len(prefix) > prefixLen {
		prefix = prefix[:prefixLen]
	}
	return strings.ToLower(prefix) + "." + SanitizeName(name)
}
