// Package validation provides input validation utilities for foldpipe.
package validation

import (
	"fmt"
	"strings"
)

// HasExtension reports whether name ends in suffix, ignoring case.
// suffix includes the leading dot, e.g. ".ct".
func HasExtension(name, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(suffix))
}

// ValidateFilename validates a bare file name before it is sent as the
// multipart file name.
//
// Returns an error if the filename:
//   - Is empty
//   - Contains path separators (/ or \)
//   - Is ".."
//   - Contains null bytes
func ValidateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.ContainsRune(filename, 0) {
		return fmt.Errorf("filename contains null byte: %q", filename)
	}
	if strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("filename cannot contain path separators: %s", filename)
	}
	if filename == ".." {
		return fmt.Errorf("filename cannot be '..'")
	}
	return nil
}
