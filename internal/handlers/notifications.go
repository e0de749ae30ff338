package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/sp-admin/httpx"
	"github.com/diewo77/sp-admin/internal/format"
	"github.com/diewo77/sp-admin/internal/listview"
	"github.com/diewo77/sp-admin/internal/modal"
	"github.com/diewo77/sp-admin/internal/models"
	"github.com/diewo77/sp-admin/internal/selection"
	"github.com/diewo77/sp-admin/internal/services"
	"github.com/diewo77/sp-admin/internal/table"
	"github.com/diewo77/sp-admin/validation"
)

// Form buttons of the notification overlay.
const (
	intentSave      = "save"
	intentSelectAll = "select_all"
	intentRemove    = "remove:"
)

// Notification form fields.
const (
	fieldTitle       = "fld_title"
	fieldDueDate     = "fld_due_date"
	fieldDescription = "fld_description"
	fieldUsers       = "fld_userid"
)

const maxJSONBody = 1 << 20

// NotificationHandler serves the Manage Notifications page.
type NotificationHandler struct {
	Remote
}

func NewNotificationHandler(d Remote) *NotificationHandler {
	return &NotificationHandler{Remote: d}
}

type notificationForm struct {
	Title       string
	DueDate     string
	Description string
	SelectAll   bool
	Selected    *selection.Set
	Violations  validation.Violations
}

func formFromNotification(x models.Notification) notificationForm {
	due := x.DueDate
	if d, ok := format.ParseDate(x.DueDate); ok {
		due = d.Format(validation.DateLayout)
	}
	return notificationForm{
		Title:       x.Title,
		DueDate:     due,
		Description: x.Description,
		Selected:    selection.NewSet(x.AssignedIDs...),
	}
}

func (f notificationForm) payload() models.Notification {
	return models.Notification{
		Title:       f.Title,
		Description: f.Description,
		DueDate:     f.DueDate,
		AssignedIDs: f.Selected.Selected(),
		AdminID:     models.DefaultNotificationAdminID,
	}
}

// validate checks the form against the active roster. known is false when
// the roster could not be loaded; unknown ids are not flagged then.
func (f *notificationForm) validate(now time.Time, active []models.ID, known bool) {
	v := validation.Violations{}
	validation.Required(fieldTitle, f.Title, v)
	validation.Required(fieldDueDate, f.DueDate, v)
	validation.DateNotBefore(fieldDueDate, f.DueDate, now, v)
	validation.Required(fieldDescription, format.PlainText(f.Description), v)
	ids := models.Strings(f.Selected.Selected())
	validation.RequiredList(fieldUsers, ids, v)
	if known {
		set := make(map[string]bool, len(active))
		for _, id := range active {
			set[id.String()] = true
		}
		validation.SubsetOf(fieldUsers, ids, set, v)
	}
	f.Violations = v
}

type notificationInput struct {
	Title       string   `json:"fld_title"`
	Description string   `json:"fld_description"`
	DueDate     string   `json:"fld_due_date"`
	UserIDs     []string `json:"fld_userid"`
	SelectAll   bool     `json:"select_all"`
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// parseNotificationForm reads a form post or a JSON body. JSON bodies
// always save.
func parseNotificationForm(r *http.Request) (notificationForm, string, error) {
	if isJSONBody(r) {
		var in notificationInput
		if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&in); err != nil {
			return notificationForm{}, "", err
		}
		return notificationForm{
			Title:       strings.TrimSpace(in.Title),
			DueDate:     strings.TrimSpace(in.DueDate),
			Description: in.Description,
			SelectAll:   in.SelectAll,
			Selected:    selection.NewSet(models.IDs(in.UserIDs)...),
		}, intentSave, nil
	}
	if err := r.ParseForm(); err != nil {
		return notificationForm{}, "", err
	}
	f := notificationForm{
		Title:       strings.TrimSpace(r.PostForm.Get(fieldTitle)),
		DueDate:     strings.TrimSpace(r.PostForm.Get(fieldDueDate)),
		Description: r.PostForm.Get(fieldDescription),
		SelectAll:   r.PostForm.Get("select_all") == "on",
		Selected:    selection.NewSet(models.IDs(r.PostForm[fieldUsers])...),
	}
	intent := r.PostForm.Get("intent")
	if intent == "" {
		intent = intentSave
	}
	return f, intent, nil
}

type providerOption struct {
	ID       models.ID
	Label    string
	Selected bool
}

type notificationDetail struct {
	Row         services.NotificationRow
	Description string
}

// List renders the grid plus the overlay named by the query string.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := table.ParseQuery(r.URL.Query())
	overlay := modal.Parse(r.URL.Query())
	vm := services.NewNotifications(h.env(r, overlay))
	defer vm.Close()
	_ = vm.Refresh(ctx)

	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, newListPayload(vm.State(), vm.Rows(), vm.Err(), nil))
		return
	}

	data := map[string]any{}
	switch overlay.Kind {
	case modal.Add:
		data["Form"] = notificationForm{Selected: selection.NewSet()}
	case modal.Edit, modal.View:
		x, err := vm.Get(ctx, overlay.ID)
		if err != nil {
			h.log(r).Warn("notification lookup failed", zap.String("id", overlay.ID.String()), zap.Error(err))
			vm.Modal().Close()
			data["Notice"] = &listview.Notice{Level: listview.NoticeError, Code: "error.not_found"}
			break
		}
		if overlay.Kind == modal.Edit {
			form := formFromNotification(x)
			form.SelectAll = selection.AllSelected(form.Selected.Selected(), vm.ActiveIDs())
			data["Form"] = form
		} else {
			env := h.env(r, overlay)
			row := services.DeriveNotificationRows([]models.Notification{x}, vm.Providers.Index(), env)[0]
			data["Detail"] = notificationDetail{Row: row, Description: x.Description}
		}
	case modal.ConfirmDelete:
		if vm.Select(overlay.ID) {
			x, _ := vm.Selected()
			data["Subject"] = x.Title
		}
	}
	h.render(w, r, vm, q, http.StatusOK, data)
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, modal.State{Kind: modal.Add})
}

func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := models.ID(r.PathValue("id"))
	if id == "" {
		notFound(w, r, h.log(r))
		return
	}
	h.save(w, r, modal.State{Kind: modal.Edit, ID: id})
}

// save handles every button of the add and edit overlays. Select-all and
// chip removal re-render the form; save validates and writes.
func (h *NotificationHandler) save(w http.ResponseWriter, r *http.Request, overlay modal.State) {
	ctx := r.Context()
	log := h.log(r)
	q := table.ParseQuery(r.URL.Query())
	form, intent, err := parseNotificationForm(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	vm := services.NewNotifications(h.env(r, overlay))
	defer vm.Close()

	switch {
	case intent == intentSelectAll:
		_ = vm.Refresh(ctx)
		selection.SelectAll(form.Selected, form.SelectAll, vm.ActiveIDs())
		h.render(w, r, vm, q, http.StatusOK, map[string]any{"Form": form})
		return
	case strings.HasPrefix(intent, intentRemove):
		form.Selected.Remove(models.ID(strings.TrimPrefix(intent, intentRemove)))
		_ = vm.Refresh(ctx)
		form.SelectAll = selection.AllSelected(form.Selected.Selected(), vm.ActiveIDs())
		h.render(w, r, vm, q, http.StatusOK, map[string]any{"Form": form})
		return
	}

	commit, rosterErr := vm.Active.Load(ctx)
	if rosterErr == nil {
		commit()
	} else {
		log.Warn("active providers unavailable, skipping roster check", zap.Error(rosterErr))
	}
	active := vm.ActiveIDs()
	if form.SelectAll {
		selection.SelectAll(form.Selected, true, active)
	}
	form.validate(h.now(), active, rosterErr == nil)
	if !form.Violations.Empty() {
		if unknown := selection.Unknown(form.Selected.Selected(), active); rosterErr == nil && len(unknown) > 0 {
			log.Info("notification form names inactive providers", zap.Strings("ids", models.Strings(unknown)))
		}
		if wantsJSON(r) || isJSONBody(r) {
			writeValidation(w, form.Violations)
			return
		}
		_ = vm.Refresh(ctx)
		h.render(w, r, vm, q, http.StatusUnprocessableEntity, map[string]any{"Form": form})
		return
	}

	status := http.StatusCreated
	if overlay.Kind == modal.Add {
		err = vm.Create(ctx, form.payload())
	} else {
		status = http.StatusOK
		err = vm.Update(ctx, overlay.ID, form.payload())
	}
	n, _ := vm.Notice()
	if err != nil {
		if wantsJSON(r) || isJSONBody(r) {
			httpx.JSONError(w, failureStatus(err), n.Code, nil)
			return
		}
		_ = vm.Refresh(ctx)
		h.render(w, r, vm, q, failureStatus(err), map[string]any{"Form": form})
		return
	}
	if wantsJSON(r) || isJSONBody(r) {
		httpx.JSON(w, status, newListPayload(vm.State(), vm.Rows(), vm.Err(), &n))
		return
	}
	redirectWithFlash(w, r, n, closeHref(NotificationsPath, q))
}

// Delete runs the confirmed delete.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := models.ID(r.PathValue("id"))
	if id == "" {
		notFound(w, r, h.log(r))
		return
	}
	q := table.ParseQuery(r.URL.Query())
	vm := services.NewNotifications(h.env(r, modal.State{Kind: modal.ConfirmDelete, ID: id}))
	defer vm.Close()

	err := vm.Delete(ctx, id)
	n, _ := vm.Notice()
	if wantsJSON(r) {
		if err != nil {
			httpx.JSONError(w, failureStatus(err), n.Code, nil)
			return
		}
		httpx.JSON(w, http.StatusOK, newListPayload(vm.State(), vm.Rows(), vm.Err(), &n))
		return
	}
	if err != nil {
		_ = vm.Refresh(ctx)
		data := map[string]any{}
		if vm.Select(id) {
			x, _ := vm.Selected()
			data["Subject"] = x.Title
		}
		h.render(w, r, vm, q, failureStatus(err), data)
		return
	}
	redirectWithFlash(w, r, n, closeHref(NotificationsPath, q))
}

// render fills the page data shared by every state of the page.
func (h *NotificationHandler) render(w http.ResponseWriter, r *http.Request, vm *services.Notifications, q table.Query, status int, data map[string]any) {
	overlay := vm.Modal().State()
	back := closeHref(NotificationsPath, q)
	data["Table"] = notificationsTable(q).Apply(vm.Rows(), q)
	data["State"] = vm.State().String()
	data["Modal"] = overlay
	data["CloseHref"] = back
	data["Today"] = h.now().Format(validation.DateLayout)
	data["HeaderActions"] = []table.Action{
		{Name: "refresh", Label: "action.refresh", Href: back},
		{Name: "add", Label: "notifications.add", Href: overlayHref(NotificationsPath, q, modal.State{Kind: modal.Add})},
	}
	switch overlay.Kind {
	case modal.Add:
		data["FormAction"] = formAction(NotificationsPath, q)
	case modal.Edit:
		data["FormAction"] = formAction(NotificationsPath+"/"+overlay.ID.String(), q)
	case modal.ConfirmDelete:
		data["ConfirmAction"] = formAction(NotificationsPath+"/"+overlay.ID.String()+"/delete", q)
	}
	if _, set := data["Notice"]; !set {
		if n := noticeOf(vm.Notice()); n != nil {
			data["Notice"] = n
		}
	}
	if form, ok := data["Form"].(notificationForm); ok {
		data["Options"] = providerOptions(vm.Active.Items(), form.Selected.Selected())
		data["Chips"] = vm.Chips(form.Selected.Selected())
	}
	render(w, r, h.log(r), status, "notifications.html", data)
}

func providerOptions(active []models.Provider, selected []models.ID) []providerOption {
	on := make(map[models.ID]bool, len(selected))
	for _, id := range selected {
		on[id] = true
	}
	out := make([]providerOption, len(active))
	for i, p := range active {
		out[i] = providerOption{ID: p.ID, Label: p.Handle(), Selected: on[p.ID]}
	}
	return out
}
