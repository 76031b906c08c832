package tools

import (
	"errors"
	"net/http"
)

// StatusOf maps an error to the HTTP status code it should be reported with.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNoFileSelected),
		errors.Is(err, ErrInvalidFilename):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpload):
		return http.StatusInternalServerError
	case errors.Is(err, ErrColumnMismatch),
		errors.Is(err, ErrNoRowSelected),
		errors.Is(err, ErrMissingTableName),
		errors.Is(err, ErrInvalidIdentifier),
		errors.Is(err, ErrEmptyIdentifier),
		errors.Is(err, ErrIdentifierTooLong),
		errors.Is(err, ErrInvalidCharacter):
		return http.StatusBadRequest
	case errors.Is(err, ErrReservedTable):
		return http.StatusForbidden
	case errors.Is(err, ErrSchema),
		errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespErr writes a plain-text error response with the status from StatusOf.
func RespErr(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(StatusOf(err))
	w.Write([]byte(err.Error()))
}
