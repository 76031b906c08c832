package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/joe-ervin05/myblog/daos"
	"github.com/joe-ervin05/myblog/tools"
)

// HealthOutput is the health check response.
type HealthOutput struct {
	Body struct {
		Status string `json:"status" example:"OK" doc:"Health status of the service"`
	}
}

// TableInput selects a table by path.
type TableInput struct {
	Table string `path:"table" doc:"Table name"`
}

// TableOutput is a table's live columns and every row.
type TableOutput struct {
	Body struct {
		Table   string     `json:"table"`
		Columns []daos.Col `json:"columns"`
		Rows    []daos.Row `json:"rows"`
	}
}

// PortalInput carries the raw page parameter so bad values clamp to 1
// instead of failing validation.
type PortalInput struct {
	Page string `query:"page" doc:"Page number, 1-based"`
}

// PortalOutput is one page of posts, newest first.
type PortalOutput struct {
	Body struct {
		Page       int           `json:"page"`
		TotalPages int           `json:"total_pages"`
		HasPrev    bool          `json:"has_prev"`
		HasNext    bool          `json:"has_next"`
		Posts      []daos.Rireki `json:"posts"`
	}
}

// SetupRoutes registers the JSON read API.
func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Health check endpoint",
		Tags:        []string{"health"},
	}, h.healthCheck)

	huma.Register(api, huma.Operation{
		OperationID: "get-table",
		Method:      http.MethodGet,
		Path:        "/api/v1/tables/{table}",
		Summary:     "List a table's columns and rows",
		Tags:        []string{"tables"},
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, h.getTable)

	huma.Register(api, huma.Operation{
		OperationID: "get-portal",
		Method:      http.MethodGet,
		Path:        "/api/v1/portal",
		Summary:     "Page through posts, newest first",
		Tags:        []string{"posts"},
	}, h.getPortal)
}

func (h *Handler) healthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	h.log.Debug("health check request received")

	out := &HealthOutput{}
	out.Body.Status = "OK"
	return out, nil
}

func (h *Handler) getTable(ctx context.Context, in *TableInput) (*TableOutput, error) {
	tbl, rows, err := h.store.List(ctx, in.Table)
	if err != nil {
		return nil, humaErr(err)
	}

	out := &TableOutput{}
	out.Body.Table = tbl.Name
	out.Body.Columns = tbl.Columns
	out.Body.Rows = rows
	return out, nil
}

func (h *Handler) getPortal(ctx context.Context, in *PortalInput) (*PortalOutput, error) {
	page, err := h.store.Page(ctx, daos.ParsePage(in.Page))
	if err != nil {
		return nil, humaErr(err)
	}

	out := &PortalOutput{}
	out.Body.Page = page.Number
	out.Body.TotalPages = page.TotalPages
	out.Body.HasPrev = page.HasPrev()
	out.Body.HasNext = page.HasNext()
	out.Body.Posts = page.Posts
	return out, nil
}

func humaErr(err error) error {
	return huma.NewError(tools.StatusOf(err), err.Error())
}
