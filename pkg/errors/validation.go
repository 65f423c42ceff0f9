package errors

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultMaxDocumentBytes bounds documents accepted over the network.
const DefaultMaxDocumentBytes = 1 << 20

// ValidateDocument checks text accepted from a request or file before it
// reaches the parser. Syntax is not checked here; the validator reports it.
//
// Rules:
//   - not blank
//   - at most max bytes (max <= 0 disables the limit)
//   - valid UTF-8 without NUL bytes
func ValidateDocument(text string, max int) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidInput, "document cannot be empty")
	}
	if max > 0 && len(text) > max {
		return New(ErrCodeDocumentTooLarge, "document too large (%d bytes, max %d)", len(text), max)
	}
	if !utf8.ValidString(text) {
		return New(ErrCodeInvalidInput, "document is not valid UTF-8")
	}
	if strings.ContainsRune(text, 0) {
		return New(ErrCodeInvalidInput, "document contains NUL bytes")
	}
	return nil
}

// ValidateChoice checks that value is one of allowed, ignoring case. The
// error carries code and names the field.
func ValidateChoice(code Code, field, value string, allowed []string) error {
	if slices.ContainsFunc(allowed, func(a string) bool { return strings.EqualFold(a, value) }) {
		return nil
	}
	return New(code, "invalid %s %q (must be one of: %s)", field, value, strings.Join(allowed, ", "))
}

// ValidateSnapshotID checks that id is a UUID as issued by the snapshot
// store.
func ValidateSnapshotID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "snapshot id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return New(ErrCodeInvalidInput, "invalid snapshot id %q", id)
	}
	return nil
}

// ValidatePath validates a file path given on the command line.
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
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
