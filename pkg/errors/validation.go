package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxLabelLength bounds vertex labels accepted from graph files and the API.
const maxLabelLength = 1024

// ValidateLabel validates a vertex label from untrusted input.
//
// Labels may be empty (the vertex id is displayed instead) but must not
// contain control characters other than tab and newline, and are limited to
// 1024 bytes.
func ValidateLabel(label string) error {
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidVertex, "label too long (max %d characters)", maxLabelLength)
	}
	for _, r := range label {
		if r == '\t' || r == '\n' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidVertex, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateVertexID validates a vertex id from untrusted input.
// Ids must be non-negative; negative ids are reserved for synthetic roots.
func ValidateVertexID(id int) error {
	if id < 0 {
		return New(ErrCodeInvalidVertex, "vertex id must not be negative: %d", id)
	}
	return nil
}

// stateNameRegex matches names accepted for persisted view states.
var stateNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateStateName validates a view-state name for safety.
// It ensures the name is a simple basename without path components, since
// state names become file names in the state directory.
func ValidateStateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "state name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "state name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "state name cannot contain path traversal sequences (..)")
	}
	if !stateNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid state name: %q", name)
	}
	return nil
}

// ValidatePath validates a user-supplied file path for safety.
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
