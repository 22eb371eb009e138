package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a local file path taken from flags or a config file.
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

// elementIDRegex matches ids that are safe to splice into a CSS selector.
var elementIDRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// ValidateElementID validates an element id or id prefix used to locate
// nodes in the host document.
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidConfig, "element id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidConfig, "element id too long (max 128 characters)")
	}
	if !elementIDRegex.MatchString(id) {
		return New(ErrCodeInvalidConfig, "invalid element id: %q", id)
	}
	return nil
}

// ValidateEmail performs a shallow check on a footer contact address.
// An empty address is valid and means "no link".
func ValidateEmail(addr string) error {
	if addr == "" {
		return nil
	}
	at := strings.IndexByte(addr, '@')
	if at <= 0 || at == len(addr)-1 || strings.ContainsAny(addr, " \t\r\n<>\"") {
		return New(ErrCodeInvalidConfig, "invalid email address: %q", addr)
	}
	return nil
}
