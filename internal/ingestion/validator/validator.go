// Package validator checks source files before they are read.
package validator

import (
	"fmt"
	"io/fs"
	"strings"
)

// Violation is one failed rule.
type Violation struct {
	Field  string
	Reason string
}

// ValidationError lists every rule a source failed, in rule order.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Reason
	}
	return strings.Join(parts, "; ")
}

// Has reports whether field failed any rule.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// ValidateSource accepts a non-blank path naming a regular file of at most
// maxBytes. A maxBytes of zero or less disables the size rule.
func ValidateSource(path string, info fs.FileInfo, maxBytes int64) error {
	var out []Violation
	if strings.TrimSpace(path) == "" {
		out = append(out, Violation{"path", "path is required"})
	}
	switch {
	case info == nil:
		out = append(out, Violation{"type", "file information is missing"})
	case info.IsDir():
		out = append(out, Violation{"type", "is a directory"})
	case !info.Mode().IsRegular():
		out = append(out, Violation{"type", fmt.Sprintf("not a regular file (%s)", info.Mode().Type())})
	case maxBytes > 0 && info.Size() > maxBytes:
		out = append(out, Violation{"size", fmt.Sprintf("%d bytes exceeds the %d byte limit", info.Size(), maxBytes)})
	}
	if len(out) > 0 {
		return &ValidationError{Violations: out}
	}
	return nil
}
