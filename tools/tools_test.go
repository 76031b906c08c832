package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"table missing", TableNotFoundErr("nope"), http.StatusNotFound},
		{"column mismatch", ColumnMismatchErr("nope", TableNotFoundErr("nope")), http.StatusBadRequest},
		{"no row", ErrNoRowSelected, http.StatusBadRequest},
		{"missing tablename", ErrMissingTableName, http.StatusBadRequest},
		{"bad identifier", ValidateTableName("a;b"), http.StatusBadRequest},
		{"reserved", fmt.Errorf("%w: sqlite_master", ErrReservedTable), http.StatusForbidden},
		{"no file", ErrNoFileSelected, http.StatusBadRequest},
		{"bad filename", ErrInvalidFilename, http.StatusBadRequest},
		{"copy failure", fmt.Errorf("%w: disk full", ErrUpload), http.StatusInternalServerError},
		{"route", NotFoundErr("/nowhere"), http.StatusNotFound},
		{"driver", errors.New("database is locked"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestRespErr(t *testing.T) {
	rec := httptest.NewRecorder()

	RespErr(rec, ErrNoRowSelected)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no row selected", rec.Body.String())
}

func TestValidateTableName(t *testing.T) {
	assert.NoError(t, ValidateTableName("rireki"))
	assert.NoError(t, ValidateTableName("_member2"))
	assert.ErrorIs(t, ValidateTableName(""), ErrMissingTableName)
	assert.ErrorIs(t, ValidateTableName("1abc"), ErrInvalidCharacter)
	assert.ErrorIs(t, ValidateTableName("rireki; DROP TABLE member"), ErrInvalidCharacter)
	assert.ErrorIs(t, ValidateTableName("a-b"), ErrInvalidCharacter)
	assert.NoError(t, ValidateTableName("履歴"))
	assert.NoError(t, ValidateTableName("t1_2"))
	assert.ErrorIs(t, ValidateTableName(strings.Repeat("a", MaxIdentifierLength+1)), ErrIdentifierTooLong)
}

func TestIsReservedTable(t *testing.T) {
	assert.True(t, IsReservedTable("sqlite_sequence"))
	assert.True(t, IsReservedTable("SQLITE_MASTER"))
	assert.True(t, IsReservedTable("schema_migrations"))
	assert.False(t, IsReservedTable("rireki"))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod", "info")

	h := LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/portal", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"path":"/portal"`)
	assert.Contains(t, buf.String(), `"status":418`)
}

func TestLoggingMiddlewareKeepsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod", "info")

	h := LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod", "info")

	h := PanicRecoveryMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
	assert.Contains(t, buf.String(), "panic recovered")
}

func TestNewLoggerLevels(t *testing.T) {
	ctx := context.Background()

	prod := NewLogger("prod", "info")
	assert.False(t, prod.Enabled(ctx, slog.LevelDebug))
	assert.True(t, prod.Enabled(ctx, slog.LevelInfo))

	local := NewLogger("local", "debug")
	assert.True(t, local.Enabled(ctx, slog.LevelDebug))

	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestPrettyHandlerWritesMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "local", "debug").With(slog.String("component", "test"))

	log.Info("hello", slog.Any("err", errors.New("bad thing")))

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, `"component": "test"`)
	assert.Contains(t, out, `"err": "bad thing"`)
}
