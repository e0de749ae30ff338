package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/sp-admin/gate"
	"github.com/diewo77/sp-admin/internal/table"
)

// Link is one dashboard card, shown when Can allows Resource/Action.
type Link struct {
	Resource string
	Action   gate.Action
	Label    string
	Href     string
}

// DashboardHandler is the landing page every signed-in admin may open.
type DashboardHandler struct {
	Links  []Link
	Can    func(ctx context.Context, resource string, action gate.Action) bool
	Logger *zap.Logger
}

func NewDashboardHandler(can func(ctx context.Context, resource string, action gate.Action) bool, logger *zap.Logger, links ...Link) *DashboardHandler {
	return &DashboardHandler{Links: links, Can: can, Logger: logger}
}

func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	visible := []table.Action{}
	for _, l := range h.Links {
		if h.Can != nil && h.Can(r.Context(), l.Resource, l.Action) {
			visible = append(visible, table.Action{Name: l.Resource, Label: l.Label, Href: l.Href})
		}
	}
	log := h.Logger
	if log == nil {
		log = zap.NewNop()
	}
	render(w, r, log, http.StatusOK, "dashboard.html", map[string]any{"Links": visible})
}
