// Package tools provides shared utilities for the blog server.
package tools

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions.
var (
	ErrSchema            = errors.New("table not found")
	ErrReservedTable     = errors.New("cannot query reserved table")
	ErrMissingTableName  = errors.New("tablename is required")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrEmptyIdentifier   = errors.New("identifier cannot be empty")
	ErrIdentifierTooLong = errors.New("identifier exceeds maximum length")
	ErrInvalidCharacter  = errors.New("identifier contains invalid characters")
	ErrColumnMismatch    = errors.New("column mismatch")
	ErrNoRowSelected     = errors.New("no row selected")
	ErrNotFound          = errors.New("not found")

	ErrUpload          = errors.New("upload failed")
	ErrNoFileSelected  = fmt.Errorf("%w: no file selected", ErrUpload)
	ErrInvalidFilename = fmt.Errorf("%w: invalid filename", ErrUpload)
)

// TableNotFoundErr returns an error indicating a table was not found.
func TableNotFoundErr(table string) error {
	return fmt.Errorf("%w: %s", ErrSchema, table)
}

// ColumnMismatchErr wraps err (usually a schema error) as a malformed write target.
func ColumnMismatchErr(table string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrColumnMismatch, table, err)
}

// NotFoundErr returns an error for a missing route or static asset.
func NotFoundErr(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}
