// Package api wires the blog's HTML pages, form endpoints, photo upload and
// JSON read API onto one chi router.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/joe-ervin05/myblog/config"
	"github.com/joe-ervin05/myblog/daos"
	"github.com/joe-ervin05/myblog/photos"
	"github.com/joe-ervin05/myblog/tools"
	"github.com/joe-ervin05/myblog/views"
)

// Store is the row store the handlers read and write through.
type Store interface {
	Columns(ctx context.Context, table string) (daos.Table, error)
	List(ctx context.Context, table string) (daos.Table, []daos.Row, error)
	Page(ctx context.Context, number int) (daos.Page, error)
	Insert(ctx context.Context, table string, form url.Values) (int64, error)
	Update(ctx context.Context, table, key string, form url.Values) (int64, error)
	Delete(ctx context.Context, table, key string) (int64, error)
}

// Handler holds the dependencies shared by every route.
type Handler struct {
	store  Store
	photos *photos.Store
	views  *views.Renderer
	cfg    config.Config
	log    *slog.Logger
	now    func() time.Time
}

// NewHandler builds a Handler. The logger is tagged with the api component.
func NewHandler(store Store, photoStore *photos.Store, renderer *views.Renderer, cfg config.Config, log *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		photos: photoStore,
		views:  renderer,
		cfg:    cfg,
		log:    log.With(slog.String("component", "api")),
		now:    time.Now,
	}
}

// Router registers all routes on a new chi router.
//
// Routes:
//   - GET / and /portal?page=N - newest-first post listing, three per page
//   - GET /tableshow?tablename=T - every row of T
//   - GET /insert?tablename=T&photo=P - insert form (post form for rireki)
//   - GET /update?tablename=T, GET /delete?tablename=T - row selection forms
//   - POST /insert_ex, /update_ex, /delete_ex - form writes, 302 to /tableshow
//   - POST /upphoto - multipart photo upload, 302 back to /insert
//   - GET /photos/{name} - stored photos
//   - GET /index.html - optional static landing page
//   - GET /api/v1/... - JSON read API
//
// Anything else is a plain-text 404.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(tools.PanicRecoveryMiddleware(h.log))
	r.Use(tools.LoggingMiddleware(h.log))

	r.NotFound(h.handleNotFound())
	r.MethodNotAllowed(h.handleNotFound())

	r.Get("/", h.handlePortal())
	r.Get("/portal", h.handlePortal())
	r.Get("/tableshow", h.handleTableShow())
	r.Get("/insert", h.handleInsertForm())
	r.Get("/update", h.handleUpdateForm())
	r.Get("/delete", h.handleDeleteForm())

	r.Post("/insert_ex", h.handleInsert())
	r.Post("/update_ex", h.handleUpdate())
	r.Post("/delete_ex", h.handleDelete())

	r.Post("/upphoto", h.handleUpload())
	r.Get("/photos/{name}", h.handlePhoto())
	r.Get("/index.html", h.handleIndex())

	api := humachi.New(r, huma.DefaultConfig("myblog API", "1.0.0"))
	h.SetupRoutes(api)

	return r
}
