package common

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// CleanPath sanitizes a file path to prevent directory traversal
func CleanPath(path string) (string, error) {
	cleaned := filepath.Clean(path)

	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid path: contains directory traversal")
	}

	if !filepath.IsAbs(cleaned) {
		abs, err := filepath.Abs(cleaned)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		cleaned = abs
	}

	return cleaned, nil
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ValidateIdentifier checks that a name is a safe unquoted Snowflake
// identifier. Identifiers cannot be bound as query parameters, so anything
// interpolated into DDL/DML must pass this check first.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier is empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("identifier %q exceeds 255 characters", name)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("identifier %q contains invalid characters", name)
	}
	return nil
}

// QualifiedName joins database, schema and object names, validating each part
func QualifiedName(parts ...string) (string, error) {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if err := ValidateIdentifier(p); err != nil {
			return "", err
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return "", fmt.Errorf("no identifier parts given")
	}
	return strings.Join(kept, "."), nil
}
