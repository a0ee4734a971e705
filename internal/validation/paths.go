// Package validation guards the request inputs that reach the filesystem or
// the network: content paths, websocket origins and fetch base URLs.
package validation

import (
	"path"
	"strings"

	toerrors "github.com/conneroisu/codetour/internal/errors"
)

// dangerous characters in a content path
var dangerousPathChars = []string{"\x00", "\\", ";", "|", "`", "$", "<", ">"}

// ValidateContentPath checks a path requested from the content root and
// returns it cleaned and relative. A single leading slash is allowed; any
// ".." segment is treated as a traversal attempt. Hidden segments such as
// .codetour.yml or .git are refused.
func ValidateContentPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", toerrors.ErrInvalidPath(p)
	}

	for _, char := range dangerousPathChars {
		if strings.Contains(p, char) {
			return "", toerrors.ErrInvalidPath(p).WithContext("character", char)
		}
	}

	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return "", toerrors.ErrPathTraversal(p)
		}
	}
	for _, segment := range strings.Split(p, "/") {
		if len(segment) > 1 && strings.HasPrefix(segment, ".") {
			return "", toerrors.ErrInvalidPath(p).WithContext("segment", segment)
		}
	}

	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if clean == "" || clean == "." {
		return "", toerrors.ErrInvalidPath(p)
	}
	return clean, nil
}

// SanitizeInput removes control characters other than common whitespace
func SanitizeInput(input string) string {
	var sanitized strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' || r == '\r' {
			sanitized.WriteRune(r)
		}
	}
	return sanitized.String()
}
