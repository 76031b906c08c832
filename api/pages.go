package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joe-ervin05/myblog/daos"
	"github.com/joe-ervin05/myblog/photos"
	"github.com/joe-ervin05/myblog/tools"
)

func (h *Handler) handlePortal() http.HandlerFunc {
	return h.withPage(func(buf *bytes.Buffer, req *http.Request) error {
		page, err := h.store.Page(req.Context(), daos.ParsePage(req.URL.Query().Get("page")))
		if err != nil {
			return err
		}

		return h.views.Portal(buf, page)
	})
}

func (h *Handler) handleTableShow() http.HandlerFunc {
	return h.withPage(func(buf *bytes.Buffer, req *http.Request) error {
		tbl, rows, err := h.store.List(req.Context(), req.URL.Query().Get(daos.FieldTableName))
		if err != nil {
			return err
		}

		return h.views.Table(buf, tbl, rows)
	})
}

func (h *Handler) handleInsertForm() http.HandlerFunc {
	return h.withPage(func(buf *bytes.Buffer, req *http.Request) error {
		query := req.URL.Query()
		table := query.Get(daos.FieldTableName)

		if table == daos.TableRireki {
			return h.views.InsertPost(buf, query.Get("photo"), h.now())
		}

		tbl, err := h.store.Columns(req.Context(), table)
		if err != nil {
			return err
		}

		return h.views.Insert(buf, tbl)
	})
}

func (h *Handler) handleUpdateForm() http.HandlerFunc {
	return h.withPage(func(buf *bytes.Buffer, req *http.Request) error {
		tbl, rows, err := h.store.List(req.Context(), req.URL.Query().Get(daos.FieldTableName))
		if err != nil {
			return err
		}

		return h.views.Update(buf, tbl, rows)
	})
}

func (h *Handler) handleDeleteForm() http.HandlerFunc {
	return h.withPage(func(buf *bytes.Buffer, req *http.Request) error {
		tbl, rows, err := h.store.List(req.Context(), req.URL.Query().Get(daos.FieldTableName))
		if err != nil {
			return err
		}

		return h.views.Delete(buf, tbl, rows)
	})
}

func (h *Handler) handleInsert() http.HandlerFunc {
	return h.withAction(func(req *http.Request) (string, error) {
		table := req.PostForm.Get(daos.FieldTableName)

		key, err := h.store.Insert(req.Context(), table, req.PostForm)
		if err != nil {
			return "", err
		}

		h.log.Info("row inserted", slog.String("table", table), slog.Int64("key", key))
		return table, nil
	})
}

func (h *Handler) handleUpdate() http.HandlerFunc {
	return h.withAction(func(req *http.Request) (string, error) {
		table := req.PostForm.Get(daos.FieldTableName)
		key := req.PostForm.Get(daos.FieldSelectedRow)

		n, err := h.store.Update(req.Context(), table, key, req.PostForm)
		if err != nil {
			return "", err
		}

		h.log.Info("row updated", slog.String("table", table), slog.String("key", key), slog.Int64("affected", n))
		return table, nil
	})
}

func (h *Handler) handleDelete() http.HandlerFunc {
	return h.withAction(func(req *http.Request) (string, error) {
		table := req.PostForm.Get(daos.FieldTableName)
		key := req.PostForm.Get(daos.FieldSelectedRow)

		n, err := h.store.Delete(req.Context(), table, key)
		if err != nil {
			return "", err
		}

		h.log.Info("row deleted", slog.String("table", table), slog.String("key", key), slog.Int64("affected", n))
		return table, nil
	})
}

// handleUpload stores a multipart "file" part under its original base name
// and sends the browser back to the insert form with the photo filled in.
func (h *Handler) handleUpload() http.HandlerFunc {
	return func(wr http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(wr, req.Body, h.cfg.MaxUploadBytes)
		defer req.Body.Close()

		if err := req.ParseMultipartForm(32 << 20); err != nil {
			h.respErr(wr, req, fmt.Errorf("%w: %w", tools.ErrUpload, err))
			return
		}
		defer req.MultipartForm.RemoveAll()

		table := req.FormValue(daos.FieldTableName)
		if table == "" {
			table = daos.TableRireki
		}

		file, header, err := req.FormFile("file")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				err = tools.ErrNoFileSelected
			}
			h.respErr(wr, req, err)
			return
		}
		defer file.Close()

		name, err := h.photos.Save(header.Filename, file)
		if err != nil {
			h.respErr(wr, req, err)
			return
		}

		http.Redirect(wr, req, insertURL(table, name), http.StatusFound)
	}
}

func (h *Handler) handlePhoto() http.HandlerFunc {
	return func(wr http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")

		f, err := h.photos.Open(name)
		if err != nil {
			h.respErr(wr, req, err)
			return
		}
		defer f.Close()

		wr.Header().Set("Content-Type", photos.ContentType(name))
		wr.WriteHeader(http.StatusOK)
		io.Copy(wr, f)
	}
}

func (h *Handler) handleIndex() http.HandlerFunc {
	return func(wr http.ResponseWriter, req *http.Request) {
		data, err := os.ReadFile(h.cfg.IndexPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				err = tools.NotFoundErr(req.URL.Path)
			}
			h.respErr(wr, req, err)
			return
		}

		wr.Header().Set("Content-Type", "text/html; charset=utf-8")
		wr.WriteHeader(http.StatusOK)
		wr.Write(data)
	}
}

func (h *Handler) handleNotFound() http.HandlerFunc {
	return func(wr http.ResponseWriter, req *http.Request) {
		tools.RespErr(wr, tools.NotFoundErr(req.URL.Path))
	}
}
