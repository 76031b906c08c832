package tools

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxIdentifierLength bounds table and column names in bytes.
const MaxIdentifierLength = 128

// ValidateIdentifier checks that name can be used as a table or column
// name: letters, digits and underscores, not starting with a digit.
func ValidateIdentifier(name string) error {
	switch {
	case name == "":
		return ErrEmptyIdentifier
	case len(name) > MaxIdentifierLength:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrIdentifierTooLong, len(name), MaxIdentifierLength)
	}

	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("%w: %q at byte %d", ErrInvalidCharacter, r, i)
	}
	return nil
}

// ValidateTableName validates a table name that will be interpolated into SQL.
// An empty name is reported as ErrMissingTableName since it means the form
// or link never carried one.
func ValidateTableName(name string) error {
	if name == "" {
		return ErrMissingTableName
	}
	if err := ValidateIdentifier(name); err != nil {
		return fmt.Errorf("invalid table name %q: %w", name, err)
	}
	return nil
}

// IsReservedTable reports whether a table belongs to the storage engine or
// the migration bookkeeping rather than to the application.
func IsReservedTable(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "sqlite_") || lower == "schema_migrations"
}
