package handlers

import (
	"net/http"

	"github.com/diewo77/sp-admin/httpx"
	"github.com/diewo77/sp-admin/internal/modal"
	"github.com/diewo77/sp-admin/internal/models"
	"github.com/diewo77/sp-admin/internal/services"
	"github.com/diewo77/sp-admin/internal/table"
)

// WorkSummaryHandler serves the read-only work summary page of a provider.
type WorkSummaryHandler struct {
	Remote
}

func NewWorkSummaryHandler(d Remote) *WorkSummaryHandler {
	return &WorkSummaryHandler{Remote: d}
}

type workSummaryPayload struct {
	listPayload[services.WorkSummaryRow]
	User services.UserHeader `json:"user"`
}

func (h *WorkSummaryHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID := models.ID(r.PathValue("id"))
	if userID == "" {
		notFound(w, r, h.log(r))
		return
	}
	q := table.ParseQuery(r.URL.Query())
	vm := services.NewWorkSummaries(h.env(r, modal.State{}), userID)
	defer vm.Close()
	_ = vm.Refresh(r.Context())

	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, workSummaryPayload{
			listPayload: newListPayload(vm.State(), vm.Rows(), vm.Err(), nil),
			User:        vm.Header(),
		})
		return
	}

	path := WorkSummaryPath(userID)
	render(w, r, h.log(r), http.StatusOK, "worksummary.html", map[string]any{
		"Header": vm.Header(),
		"Table":  workSummaryTable().Apply(vm.Rows(), q),
		"State":  vm.State().String(),
		"HeaderActions": []table.Action{
			{Name: "back", Label: "nav.workoffs", Href: WorkoffsPath},
			{Name: "refresh", Label: "action.refresh", Href: closeHref(path, q)},
		},
	})
}
