package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/sp-admin/internal/models"
	"github.com/diewo77/sp-admin/internal/remote"
	"github.com/diewo77/sp-admin/internal/remote/remotetest"
)

const placeholder = "https://img.example/none.jpg"

var fixedNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testRemote(api *remotetest.API) Remote {
	return Remote{
		Client:              api.Client(),
		UploadsBaseURL:      "https://img.example/uploads",
		PlaceholderImageURL: placeholder,
		Now:                 func() time.Time { return fixedNow },
	}
}

func scriptNotifications(api *remotetest.API) {
	api.Handle(http.MethodGet, "/notifications/", http.StatusOK,
		`[{"_id":1,"fld_title":"Quarterly review","fld_due_date":"2025-02-01","fld_userid":["p1"]},
		  {"_id":2,"fld_title":"Orphan","fld_userid":["pX"]}]`)
	api.Handle(http.MethodGet, "/users/serviceproviders", http.StatusOK,
		`[{"_id":"p1","fld_name":"Alice","fld_username":"alice"},{"_id":"p2","fld_name":"Bob","fld_username":"bob"}]`)
	api.Handle(http.MethodGet, "/users/activeserviceproviders", http.StatusOK,
		`[{"_id":"p1","fld_username":"alice"},{"_id":"p2","fld_username":"bob"}]`)
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func validNotificationForm() url.Values {
	return url.Values{
		"fld_adminid":     {"1"},
		"fld_title":       {"Holiday schedule"},
		"fld_due_date":    {"2025-02-01"},
		"fld_description": {"<p>Office closed</p>"},
		"fld_userid":      {"p1"},
		"intent":          {"save"},
	}
}

func TestNotificationListJSON(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	h := NewNotificationHandler(testRemote(api))

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		State string `json:"state"`
		Total int    `json:"total"`
		Rows  []struct {
			Title string `json:"title"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.State)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "Quarterly review", body.Rows[0].Title)
}

func TestNotificationListHTML(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	h := NewNotificationHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Manage Notifications")
	assert.Contains(t, body, "Quarterly review")
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "Provider with ID pX not found.")
}

func TestNotificationListPrimaryFailure(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodGet, "/notifications/", http.StatusInternalServerError, `{}`)
	h := NewNotificationHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not load data")
}

func TestNotificationEditOverlayPrefills(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	api.Handle(http.MethodGet, "/notifications/5", http.StatusOK,
		`{"_id":5,"fld_title":"Old title","fld_due_date":"2025-03-01T00:00:00.000Z","fld_description":"<p>x</p>","fld_userid":["p1"]}`)
	h := NewNotificationHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/notifications?modal=edit&id=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Edit Notification")
	assert.Contains(t, body, `value="Old title"`)
	assert.Contains(t, body, `value="2025-03-01"`)
	assert.Contains(t, body, `action="/notifications/5"`)
	assert.Contains(t, body, `value="remove:p1"`)
}

func TestNotificationEditOverlayMissingRecord(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	h := NewNotificationHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/notifications?modal=edit&id=404", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Not found")
	assert.NotContains(t, body, "Edit Notification")
}

func TestNotificationCreateRedirectsWithFlash(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	api.Handle(http.MethodPost, "/notifications", http.StatusCreated, `{}`)
	h := NewNotificationHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.Create(rec, postForm("/notifications", validNotificationForm()))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/notifications", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "notifications.create_ok")

	posts := api.Requests(http.MethodPost, "/notifications")
	require.Len(t, posts, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(posts[0].Body, &sent))
	assert.Equal(t, "Holiday schedule", sent["fld_title"])
	assert.Equal(t, "2025-02-01", sent["fld_due_date"])
	assert.Equal(t, []any{"p1"}, sent["fld_userid"])
	assert.EqualValues(t, "1", sent["fld_adminid"])
}

func TestNotificationCreateValidation(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	h := NewNotificationHandler(testRemote(api))

	form := validNotificationForm()
	form.Del("fld_title")
	rec := httptest.NewRecorder()
	h.Create(rec, postForm("/notifications", form))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Add Notification")
	assert.Contains(t, body, "Required")
	assert.Zero(t, api.Count(http.MethodPost, "/notifications"))
}

func TestNotificationCreateRejectsPastDueDate(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	h := NewNotificationHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.Create(rec, postJSON(http.MethodPost, "/notifications",
		`{"fld_title":"Late","fld_due_date":"2024-12-31","fld_description":"<p>x</p>","fld_userid":["p1"]}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_failed", body.Error)
	assert.Equal(t, "date_in_past", body.Details["fld_due_date"])
}

func TestNotificationCreateUnknownProvider(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	h := NewNotificationHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.Create(rec, postJSON(http.MethodPost, "/notifications",
		`{"fld_title":"T","fld_due_date":"2025-02-01","fld_description":"<p>x</p>","fld_userid":["zz"]}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unknown_provider", body.Details["fld_userid"])
	assert.Zero(t, api.Count(http.MethodPost, "/notifications"))
}

func TestNotificationCreateFailureKeepsOverlay(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	api.Handle(http.MethodPost, "/notifications", http.StatusInternalServerError, `{}`)
	h := NewNotificationHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.Create(rec, postForm("/notifications", validNotificationForm()))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Error creating notification!")
	assert.Contains(t, body, "Add Notification")
	assert.Contains(t, body, `value="Holiday schedule"`)
}

func TestNotificationSelectAllIntent(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	h := NewNotificationHandler(testRemote(api))

	form := validNotificationForm()
	form.Del("fld_userid")
	form.Set("select_all", "on")
	form.Set("intent", "select_all")
	rec := httptest.NewRecorder()
	h.Create(rec, postForm("/notifications", form))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="remove:p1"`)
	assert.Contains(t, body, `value="remove:p2"`)
	assert.Contains(t, body, "checked")
	assert.Zero(t, api.Count(http.MethodPost, "/notifications"))
}

func TestNotificationRemoveChipIntent(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	h := NewNotificationHandler(testRemote(api))

	form := validNotificationForm()
	form["fld_userid"] = []string{"p1", "p2"}
	form.Set("intent", "remove:p1")
	rec := httptest.NewRecorder()
	h.Create(rec, postForm("/notifications", form))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, `value="remove:p1"`)
	assert.Contains(t, body, `value="remove:p2"`)
	assert.Zero(t, api.Count(http.MethodPost, "/notifications"))
}

func TestNotificationUpdateJSON(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	api.Handle(http.MethodPut, "/notifications/1", http.StatusOK, `{}`)
	h := NewNotificationHandler(testRemote(api))

	req := postJSON(http.MethodPut, "/notifications/1",
		`{"fld_title":"Renamed","fld_due_date":"2025-02-01","fld_description":"<p>x</p>","select_all":true}`)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	puts := api.Requests(http.MethodPut, "/notifications/1")
	require.Len(t, puts, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(puts[0].Body, &sent))
	assert.Equal(t, []any{"p1", "p2"}, sent["fld_userid"])

	var body struct {
		Notice struct {
			Level string `json:"level"`
			Code  string `json:"code"`
		} `json:"notice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "notifications.update_ok", body.Notice.Code)
}

func TestNotificationDeleteJSON(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	api.Handle(http.MethodDelete, "/notifications/5", http.StatusOK, `{}`)
	h := NewNotificationHandler(testRemote(api))

	req := httptest.NewRequest(http.MethodDelete, "/notifications/5", nil)
	req.Header.Set("Accept", "application/json")
	req.SetPathValue("id", "5")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, api.Count(http.MethodDelete, "/notifications/5"))
	assert.Equal(t, 1, api.Count(http.MethodGet, "/notifications/"))
}

func TestNotificationDeleteRedirects(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	api.Handle(http.MethodDelete, "/notifications/1", http.StatusOK, `{}`)
	h := NewNotificationHandler(testRemote(api))

	req := postForm("/notifications/1/delete?page=2", url.Values{})
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/notifications?page=2", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "notifications.delete_ok")
}

func TestNotificationDeleteFailureKeepsConfirm(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	api.Handle(http.MethodDelete, "/notifications/1", http.StatusInternalServerError, `{}`)
	h := NewNotificationHandler(testRemote(api))

	req := postForm("/notifications/1/delete", url.Values{})
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Error deleting notification")
	assert.Contains(t, body, "want to delete this notification?")
	assert.Contains(t, body, "Quarterly review")
}

func scriptWorkoffs(api *remotetest.API) {
	api.Handle(http.MethodGet, "/workoffs/", http.StatusOK,
		`[{"_id":"w1","fld_service_provider_id":"p1","fld_start_date":"2025-02-01","fld_end_date":"2025-02-03","fld_reason":"Family trip","fld_addedon":"2025-01-01T10:00:00.000Z"}]`)
	api.Handle(http.MethodGet, "/users/serviceproviders", http.StatusOK,
		`[{"_id":"p1","fld_name":"Alice","fld_username":"alice"}]`)
}

func validWorkoffForm() url.Values {
	return url.Values{
		"fld_adminid":               {"p1"},
		"fld_workoffs_startdate":    {"2025-02-01"},
		"fld_workoffs_enddate":      {"2025-02-05"},
		"fld_total_no_of_work_offs": {"4"},
	}
}

func TestWorkoffListHTML(t *testing.T) {
	api := remotetest.New(t)
	scriptWorkoffs(api)
	h := NewWorkoffHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/workoffs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Manage Workoffs")
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "Family trip")
}

func TestWorkoffViewOverlay(t *testing.T) {
	api := remotetest.New(t)
	scriptWorkoffs(api)
	api.Handle(http.MethodGet, "/workoffs/w1", http.StatusOK,
		`{"_id":"w1","fld_service_provider_id":"p1","fld_start_date":"2025-02-01","fld_reason":"Family trip","fld_total_no_of_work_offs":4}`)
	h := NewWorkoffHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/workoffs?modal=view&id=w1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Workoff Details")
	assert.Contains(t, body, `href="/users/p1/worksummary"`)
	assert.Contains(t, body, "modal=add")
}

func TestWorkoffCreatePostsAllotment(t *testing.T) {
	api := remotetest.New(t)
	scriptWorkoffs(api)
	api.Handle(http.MethodPost, "/manageworkoffs", http.StatusCreated, `{}`)
	h := NewWorkoffHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.Create(rec, postForm("/workoffs", validWorkoffForm()))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/workoffs", rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "workoffs.add_ok")

	posts := api.Requests(http.MethodPost, "/manageworkoffs")
	require.Len(t, posts, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(posts[0].Body, &sent))
	assert.Equal(t, "p1", sent["fld_adminid"])
	assert.Equal(t, "2025-02-01", sent["fld_workoffs_startdate"])
	assert.Equal(t, "2025-02-05", sent["fld_workoffs_enddate"])
	assert.EqualValues(t, 4, sent["fld_total_no_of_work_offs"])
	assert.EqualValues(t, 4, sent["fld_work_offs_balance"])
	assert.EqualValues(t, 0, sent["fld_work_offs_availed"])
	assert.Equal(t, "2025-01-01T12:00:00Z", sent["fld_addedon"])
}

func TestWorkoffCreateValidationJSON(t *testing.T) {
	api := remotetest.New(t)
	h := NewWorkoffHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.Create(rec, postJSON(http.MethodPost, "/workoffs",
		`{"fld_adminid":"p1","fld_workoffs_startdate":"2025-02-05","fld_workoffs_enddate":"2025-02-01","fld_total_no_of_work_offs":0}`))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "end_before_start", body.Details["fld_workoffs_enddate"])
	assert.Equal(t, "must_be_positive", body.Details["fld_total_no_of_work_offs"])
	assert.Zero(t, api.Count(http.MethodPost, "/manageworkoffs"))
}

func TestWorkoffCreateFailure(t *testing.T) {
	api := remotetest.New(t)
	scriptWorkoffs(api)
	api.Handle(http.MethodPost, "/manageworkoffs", http.StatusInternalServerError, `{}`)
	h := NewWorkoffHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.Create(rec, postForm("/workoffs", validWorkoffForm()))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Failed to add workoff")
	assert.Contains(t, body, `value="2025-02-05"`)
}

func TestWorkSummaryUnknownUser(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodGet, "/worksummaries/user/u1", http.StatusOK,
		`[{"_id":"s1","fld_projectid":"gone","status":"done"}]`)
	api.Handle(http.MethodGet, "/projects", http.StatusOK, `[]`)
	h := NewWorkSummaryHandler(testRemote(api))

	req := httptest.NewRequest(http.MethodGet, "/users/u1/worksummary", nil)
	req.Header.Set("Accept", "application/json")
	req.SetPathValue("id", "u1")
	rec := httptest.NewRecorder()
	h.Show(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		State string `json:"state"`
		User  struct {
			Name  string `json:"name"`
			Image string `json:"image"`
			Found bool   `json:"found"`
		} `json:"user"`
		Rows []struct {
			Project string `json:"project"`
			Status  string `json:"status"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.State)
	assert.Equal(t, "Unknown", body.User.Name)
	assert.Equal(t, placeholder, body.User.Image)
	assert.False(t, body.User.Found)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, "Unknown Project", body.Rows[0].Project)
	assert.Equal(t, "done", body.Rows[0].Status)
}

func TestWorkSummaryHTML(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodGet, "/worksummaries/user/p1", http.StatusOK,
		`[{"_id":"s1","fld_projectid":"pr1","fld_description":"<b>Shipped</b>","status":"done"}]`)
	api.Handle(http.MethodGet, "/projects", http.StatusOK, `[{"_id":"pr1","fld_title":"Website"}]`)
	api.Handle(http.MethodGet, "/users/find/p1", http.StatusOK, `{"_id":"p1","fld_name":"Alice","fld_profile_image":"a.png"}`)
	h := NewWorkSummaryHandler(testRemote(api))

	req := httptest.NewRequest(http.MethodGet, "/users/p1/worksummary", nil)
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()
	h.Show(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "Website")
	assert.Contains(t, body, "Shipped")
	assert.Contains(t, body, "https://img.example/uploads/a.png")
}

func TestHealthReportsBreakers(t *testing.T) {
	api := remotetest.New(t)
	rec := httptest.NewRecorder()
	Health(nil, api.Client())(
		rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status   string            `json:"status"`
		Breakers map[string]string `json:"breakers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Len(t, body.Breakers, 6)
	assert.Equal(t, "closed", body.Breakers["notifications"])
}

func TestNotificationViewSanitizesDescription(t *testing.T) {
	api := remotetest.New(t)
	scriptNotifications(api)
	api.Handle(http.MethodGet, "/notifications/7", http.StatusOK,
		`{"_id":7,"fld_title":"Hostile","fld_description":"<p>hi</p><script>alert(document.domain)</script><img src=x onerror=alert(1)>","fld_userid":["p1"]}`)
	h := NewNotificationHandler(testRemote(api))

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/notifications?modal=view&id=7", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "View Notification")
	assert.Contains(t, body, "<p>hi</p>")
	assert.NotContains(t, body, "<script>alert")
	assert.NotContains(t, body, "onerror")
	assert.NotContains(t, body, "document.domain")
}

func TestHealthIgnoresDisabledBreaker(t *testing.T) {
	api := remotetest.New(t)
	client := api.Client(remote.WithBreaker(remote.BreakerConfig{FailureThreshold: 0}))
	api.Handle(http.MethodGet, "/notifications/", http.StatusInternalServerError, `{}`)
	for i := 0; i < 3; i++ {
		_, _ = remote.NewFetcher[models.Notification](client, remote.Notifications).Fetch(context.Background())
	}

	rec := httptest.NewRecorder()
	Health(nil, client)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status   string            `json:"status"`
		Breakers map[string]string `json:"breakers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "closed", body.Breakers["notifications"])
}
