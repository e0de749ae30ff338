// Package handlers serves the dashboard pages. Every page request builds a
// fresh view-model, refreshes it once and renders the result as HTML, or as
// JSON for clients that ask for it.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/sp-admin/auth"
	"github.com/diewo77/sp-admin/httpx"
	"github.com/diewo77/sp-admin/internal/listview"
	"github.com/diewo77/sp-admin/internal/logger"
	"github.com/diewo77/sp-admin/internal/middleware"
	"github.com/diewo77/sp-admin/internal/modal"
	"github.com/diewo77/sp-admin/internal/remote"
	"github.com/diewo77/sp-admin/internal/services"
	"github.com/diewo77/sp-admin/internal/table"
	"github.com/diewo77/sp-admin/validation"
	"github.com/diewo77/sp-admin/view"
)

// Remote is what page handlers share: the API client and the image URLs
// rows are built with.
type Remote struct {
	Client              *remote.Client
	UploadsBaseURL      string
	PlaceholderImageURL string
	Logger              *zap.Logger
	// Now is overridden in tests.
	Now func() time.Time
}

func (d Remote) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Remote) log(r *http.Request) *zap.Logger {
	base := d.Logger
	if base == nil {
		base = zap.NewNop()
	}
	return logger.FromContext(r.Context(), base)
}

// env builds the per-request view-model environment; the overlay comes from
// the query string.
func (d Remote) env(r *http.Request, overlay modal.State) services.Env {
	return services.Env{
		Client:              d.Client,
		Lang:                middleware.LangFrom(r),
		UploadsBaseURL:      d.UploadsBaseURL,
		PlaceholderImageURL: d.PlaceholderImageURL,
		Logger:              d.log(r),
		Modal:               overlay,
	}
}

// listPayload is the JSON shape of every list page.
type listPayload[R any] struct {
	State  string           `json:"state"`
	Rows   []R              `json:"rows"`
	Total  int              `json:"total"`
	Error  string           `json:"error,omitempty"`
	Notice *listview.Notice `json:"notice,omitempty"`
}

func newListPayload[R any](state listview.State, rows []R, err error, notice *listview.Notice) listPayload[R] {
	p := listPayload[R]{State: state.String(), Rows: rows, Total: len(rows), Notice: notice}
	if p.Rows == nil {
		p.Rows = []R{}
	}
	if err != nil {
		p.Error = err.Error()
	}
	return p
}

// noticeOf returns the pending notice of a view-model, nil when none.
func noticeOf(n listview.Notice, ok bool) *listview.Notice {
	if !ok {
		return nil
	}
	return &n
}

// closeHref links back to the grid with no overlay.
func closeHref(path string, q table.Query) string {
	v := q.Values()
	if s := v.Encode(); s != "" {
		return path + "?" + s
	}
	return path
}

// overlayHref links to the grid with overlay s opened.
func overlayHref(path string, q table.Query, s modal.State) string {
	v := q.Values()
	for k, vals := range s.Values() {
		v[k] = vals
	}
	if enc := v.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

// formAction is where an overlay form posts, carrying the grid state so
// the redirect after it lands on the same page.
func formAction(path string, q table.Query) string { return closeHref(path, q) }

func render(w http.ResponseWriter, r *http.Request, log *zap.Logger, status int, page string, data map[string]any) {
	if err := view.RenderStatus(w, r, status, page, data); err != nil {
		log.Error("render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// redirectWithFlash finishes a successful form post.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, n listview.Notice, target string) {
	middleware.SetFlash(w, string(n.Level), n.Code)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// failureStatus maps a mutation error to the status of the re-rendered
// page. A missing record and an unreachable API answer alike.
func failureStatus(err error) int {
	if errors.Is(err, listview.ErrReadOnly) {
		return http.StatusMethodNotAllowed
	}
	return http.StatusBadGateway
}

func writeValidation(w http.ResponseWriter, v validation.Violations) {
	httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
}

func wantsJSON(r *http.Request) bool { return auth.WantsJSON(r) }

// notFound renders the error page, or a JSON error.
func notFound(w http.ResponseWriter, r *http.Request, log *zap.Logger) {
	if wantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	render(w, r, log, http.StatusNotFound, "error.html", map[string]any{
		"Status": http.StatusNotFound, "Message": "error.not_found",
	})
}
