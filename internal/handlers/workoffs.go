package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/sp-admin/httpx"
	"github.com/diewo77/sp-admin/internal/listview"
	"github.com/diewo77/sp-admin/internal/middleware"
	"github.com/diewo77/sp-admin/internal/modal"
	"github.com/diewo77/sp-admin/internal/models"
	"github.com/diewo77/sp-admin/internal/services"
	"github.com/diewo77/sp-admin/internal/table"
	"github.com/diewo77/sp-admin/validation"
)

const fieldWorkoffProvider = "fld_adminid"

// WorkoffHandler serves the Manage Workoffs page.
type WorkoffHandler struct {
	Remote
}

func NewWorkoffHandler(d Remote) *WorkoffHandler {
	return &WorkoffHandler{Remote: d}
}

type workoffForm struct {
	ProviderID models.ID
	StartDate  string
	EndDate    string
	Total      string
	Violations validation.Violations
}

func (f *workoffForm) validate(known map[string]bool) {
	v := validation.Violations{}
	validation.Required(fieldWorkoffProvider, f.ProviderID.String(), v)
	if known != nil {
		validation.SubsetOf(fieldWorkoffProvider, []string{f.ProviderID.String()}, known, v)
	}
	validation.Required(models.FieldWorkoffStart, f.StartDate, v)
	validation.Date(models.FieldWorkoffStart, f.StartDate, v)
	validation.Required(models.FieldWorkoffEnd, f.EndDate, v)
	validation.Date(models.FieldWorkoffEnd, f.EndDate, v)
	validation.EndNotBefore(models.FieldWorkoffEnd, f.StartDate, f.EndDate, v)
	validation.PositiveInt(models.FieldWorkoffTotal, f.Total, v)
	f.Violations = v
}

// allotment applies the form fields one by one, the way the form edits
// them; the total resets the balance.
func (f workoffForm) allotment(now time.Time) (models.WorkoffAllotment, error) {
	a := models.NewWorkoffAllotment(f.ProviderID, now.UTC().Format(time.RFC3339))
	var err error
	for _, field := range []struct{ name, value string }{
		{models.FieldWorkoffStart, f.StartDate},
		{models.FieldWorkoffEnd, f.EndDate},
		{models.FieldWorkoffTotal, f.Total},
	} {
		if a, err = a.WithField(field.name, field.value); err != nil {
			return a, err
		}
	}
	return a, nil
}

type workoffInput struct {
	ProviderID models.ID     `json:"fld_adminid"`
	StartDate  string        `json:"fld_workoffs_startdate"`
	EndDate    string        `json:"fld_workoffs_enddate"`
	Total      models.Scalar `json:"fld_total_no_of_work_offs"`
}

func parseWorkoffForm(r *http.Request) (workoffForm, error) {
	if isJSONBody(r) {
		var in workoffInput
		if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&in); err != nil {
			return workoffForm{}, err
		}
		return workoffForm{
			ProviderID: models.ID(strings.TrimSpace(in.ProviderID.String())),
			StartDate:  strings.TrimSpace(in.StartDate),
			EndDate:    strings.TrimSpace(in.EndDate),
			Total:      strings.TrimSpace(in.Total.String()),
		}, nil
	}
	if err := r.ParseForm(); err != nil {
		return workoffForm{}, err
	}
	return workoffForm{
		ProviderID: models.ID(strings.TrimSpace(r.PostForm.Get(fieldWorkoffProvider))),
		StartDate:  strings.TrimSpace(r.PostForm.Get(models.FieldWorkoffStart)),
		EndDate:    strings.TrimSpace(r.PostForm.Get(models.FieldWorkoffEnd)),
		Total:      strings.TrimSpace(r.PostForm.Get(models.FieldWorkoffTotal)),
	}, nil
}

type workoffDetail struct {
	Workoff     models.Workoff
	Row         services.WorkoffRow
	Reason      string
	AddHref     string
	SummaryHref string
}

func (h *WorkoffHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := table.ParseQuery(r.URL.Query())
	overlay := modal.Parse(r.URL.Query())
	vm := services.NewWorkoffs(h.env(r, overlay))
	defer vm.Close()
	_ = vm.Refresh(ctx)

	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, newListPayload(vm.State(), vm.Rows(), vm.Err(), nil))
		return
	}

	data := map[string]any{}
	switch overlay.Kind {
	case modal.Add:
		data["Form"] = workoffForm{ProviderID: overlay.ID}
	case modal.View:
		x, err := vm.Get(ctx, overlay.ID)
		if err != nil {
			h.log(r).Warn("workoff lookup failed", zap.String("id", overlay.ID.String()), zap.Error(err))
			vm.Modal().Close()
			data["Notice"] = &listview.Notice{Level: listview.NoticeError, Code: "error.not_found"}
			break
		}
		row := services.DeriveWorkoffRows([]models.Workoff{x}, vm.Providers.Index(), middleware.LangFrom(r))[0]
		data["Detail"] = workoffDetail{
			Workoff:     x,
			Row:         row,
			Reason:      x.Reason,
			AddHref:     overlayHref(WorkoffsPath, q, modal.State{Kind: modal.Add, ID: x.ProviderID}),
			SummaryHref: WorkSummaryPath(x.ProviderID),
		}
	}
	h.render(w, r, vm, q, http.StatusOK, data)
}

// Create grants a provider an allotment of workoffs.
func (h *WorkoffHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log(r)
	q := table.ParseQuery(r.URL.Query())
	jsonClient := wantsJSON(r) || isJSONBody(r)
	form, err := parseWorkoffForm(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	vm := services.NewWorkoffs(h.env(r, modal.State{Kind: modal.Add, ID: form.ProviderID}))
	defer vm.Close()

	var known map[string]bool
	if commit, err := vm.Providers.Load(ctx); err == nil {
		commit()
		known = make(map[string]bool)
		for _, id := range vm.Providers.Keys() {
			known[id.String()] = true
		}
	} else {
		log.Warn("providers unavailable, skipping roster check", zap.Error(err))
	}
	form.validate(known)

	if form.Violations.Empty() {
		var a models.WorkoffAllotment
		if a, err = form.allotment(h.now()); err == nil {
			err = vm.Create(ctx, a)
		}
		n, _ := vm.Notice()
		switch {
		case err == nil && jsonClient:
			httpx.JSON(w, http.StatusCreated, newListPayload(vm.State(), vm.Rows(), vm.Err(), &n))
			return
		case err == nil:
			redirectWithFlash(w, r, n, closeHref(WorkoffsPath, q))
			return
		case jsonClient:
			httpx.JSONError(w, failureStatus(err), n.Code, nil)
			return
		}
		_ = vm.Refresh(ctx)
		h.render(w, r, vm, q, failureStatus(err), map[string]any{"Form": form})
		return
	}

	if jsonClient {
		writeValidation(w, form.Violations)
		return
	}
	_ = vm.Refresh(ctx)
	h.render(w, r, vm, q, http.StatusUnprocessableEntity, map[string]any{"Form": form})
}

func (h *WorkoffHandler) render(w http.ResponseWriter, r *http.Request, vm *services.Workoffs, q table.Query, status int, data map[string]any) {
	overlay := vm.Modal().State()
	back := closeHref(WorkoffsPath, q)
	data["Table"] = workoffsTable(q).Apply(vm.Rows(), q)
	data["State"] = vm.State().String()
	data["Modal"] = overlay
	data["CloseHref"] = back
	data["FormAction"] = formAction(WorkoffsPath, q)
	data["HeaderActions"] = []table.Action{
		{Name: "refresh", Label: "action.refresh", Href: back},
		{Name: "add", Label: "workoffs.add", Href: overlayHref(WorkoffsPath, q, modal.State{Kind: modal.Add})},
	}
	if _, set := data["Notice"]; !set {
		if n := noticeOf(vm.Notice()); n != nil {
			data["Notice"] = n
		}
	}
	if form, ok := data["Form"].(workoffForm); ok {
		providers := vm.Providers.Items()
		opts := make([]providerOption, len(providers))
		for i, p := range providers {
			opts[i] = providerOption{ID: p.ID, Label: p.DisplayName(), Selected: p.ID == form.ProviderID}
		}
		data["Options"] = opts
	}
	render(w, r, h.log(r), status, "workoffs.html", data)
}
