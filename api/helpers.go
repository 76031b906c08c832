package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/joe-ervin05/myblog/tools"
)

// PageHandler renders into buf; a non-nil error replaces the page with an
// error response.
type PageHandler func(buf *bytes.Buffer, req *http.Request) error

// ActionHandler performs a form write and returns the table to redirect to.
type ActionHandler func(req *http.Request) (string, error)

func (h *Handler) withPage(handler PageHandler) http.HandlerFunc {
	return func(wr http.ResponseWriter, req *http.Request) {
		var buf bytes.Buffer

		if err := handler(&buf, req); err != nil {
			h.respErr(wr, req, err)
			return
		}

		wr.Header().Set("Content-Type", "text/html; charset=utf-8")
		wr.WriteHeader(http.StatusOK)
		buf.WriteTo(wr)
	}
}

// withAction parses a url-encoded form body, runs handler, and redirects to
// the listing of the table it touched.
func (h *Handler) withAction(handler ActionHandler) http.HandlerFunc {
	return func(wr http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(wr, req.Body, 1048576)
		defer req.Body.Close()

		if err := req.ParseForm(); err != nil {
			h.respErr(wr, req, err)
			return
		}

		table, err := handler(req)
		if err != nil {
			h.respErr(wr, req, err)
			return
		}

		http.Redirect(wr, req, tableShowURL(table), http.StatusFound)
	}
}

func (h *Handler) respErr(wr http.ResponseWriter, req *http.Request, err error) {
	status := tools.StatusOf(err)

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed",
			slog.String("path", req.URL.Path),
			slog.Any("error", err),
		)
	} else {
		h.log.Debug("request rejected",
			slog.String("path", req.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}

	tools.RespErr(wr, err)
}

func tableShowURL(table string) string {
	return "/tableshow?tablename=" + url.QueryEscape(table)
}

func insertURL(table, photo string) string {
	return "/insert?tablename=" + url.QueryEscape(table) + "&photo=" + url.QueryEscape(photo)
}
