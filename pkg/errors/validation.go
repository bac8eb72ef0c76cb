package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidateName validates a data-block or command argument name.
// Names are display names and may contain spaces and dots, but never
// control characters.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	return nil
}

// ValidateOutputPath validates the path of the exported document.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
//   - Extension, if any, must be .json
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path must name a file, not a directory")
	}

	if ext := filepath.Ext(path); ext != "" && !strings.EqualFold(ext, ".json") {
		return New(ErrCodeInvalidPath, "output path must have a .json extension, got %q", ext)
	}

	return nil
}

// formatVersionRegex matches "major.minor" format versions.
var formatVersionRegex = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)

// ValidateFormatVersion validates a document format version such as "6.02".
func ValidateFormatVersion(v string) error {
	if !formatVersionRegex.MatchString(v) {
		return New(ErrCodeInvalidVersion, "format version must look like MAJOR.MINOR: %q", v)
	}
	return nil
}
