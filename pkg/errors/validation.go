package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateContainerName validates a container name given on the command line
// or in an API request.
//
// Container names come from inventory group names, so the rules only reject
// what can never be a group:
//   - No empty names
//   - No control characters
//   - No surrounding whitespace
//   - Maximum length of 256 characters
func ValidateContainerName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "container name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "container name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "container name contains invalid control characters")
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidInput, "container name has leading or trailing whitespace")
	}

	return nil
}

// ValidatePrefix validates a configlet prefix. Empty and "none" are valid and
// disable prefixing.
func ValidatePrefix(prefix string) error {
	if len(prefix) > 64 {
		return New(ErrCodeInvalidInput, "configlet prefix too long (max 64 characters)")
	}
	for _, r := range prefix {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return New(ErrCodeInvalidInput, "configlet prefix contains invalid character %q", r)
		}
	}
	return nil
}

// ValidatePath validates a file path passed to the CLI.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateSnapshotID validates a snapshot identifier. Snapshot IDs are UUIDs,
// which also keeps them safe to use as file names.
func ValidateSnapshotID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "snapshot id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid snapshot id %q", id)
	}
	return nil
}

// ValidateFormat validates an output format against the supported list.
func ValidateFormat(format string, supported ...string) error {
	for _, s := range supported {
		if format == s {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(supported, ", "))
}
