package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/sp-admin/internal/listview"
	"github.com/diewo77/sp-admin/internal/modal"
	"github.com/diewo77/sp-admin/internal/models"
	"github.com/diewo77/sp-admin/internal/remote/remotetest"
)

const placeholder = "https://img.example/none.jpg"

func testEnv(api *remotetest.API) Env {
	return Env{
		Client:              api.Client(),
		Lang:                "en",
		UploadsBaseURL:      "https://img.example/uploads",
		PlaceholderImageURL: placeholder,
	}
}

func TestNotificationsJoinProviders(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodGet, "/notifications/", http.StatusOK,
		`[{"_id":1,"fld_title":"A","fld_due_date":"2025-01-01","fld_userid":["p1"]},
		  {"_id":2,"fld_userid":["pX"]}]`)
	api.Handle(http.MethodGet, "/users/serviceproviders", http.StatusOK,
		`[{"_id":"p1","fld_name":"Alice","fld_profile_image":"a.png"}]`)
	api.Handle(http.MethodGet, "/users/activeserviceproviders", http.StatusOK, `[]`)

	n := NewNotifications(testEnv(api))
	require.NoError(t, n.Refresh(context.Background()))

	rows := n.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Title)
	assert.Equal(t, "1/1/2025", rows[0].DueDate)
	require.Len(t, rows[0].Assigned, 1)
	assert.Equal(t, "Alice", rows[0].Assigned[0].Label)
	assert.Equal(t, "https://img.example/uploads/a.png", rows[0].Assigned[0].Image)

	assert.Equal(t, models.ID("2"), rows[1].ID)
	assert.Equal(t, "Provider with ID pX not found.", rows[1].AssignedLabels())
	assert.Equal(t, placeholder, rows[1].Assigned[0].Image)
}

func TestNotificationsChipsUseActiveUsernames(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodGet, "/notifications/", http.StatusOK, `[]`)
	api.Handle(http.MethodGet, "/users/activeserviceproviders", http.StatusOK,
		`[{"_id":"p1","fld_username":"alice","fld_name":"Alice A"},{"_id":"p2"}]`)

	n := NewNotifications(testEnv(api))
	require.NoError(t, n.Refresh(context.Background()))

	assert.Equal(t, []models.ID{"p1", "p2"}, n.ActiveIDs())
	chips := n.Chips([]models.ID{"p1", "p2", "p9"})
	require.Len(t, chips, 3)
	assert.Equal(t, "alice", chips[0].Label)
	assert.Equal(t, "No Name", chips[1].Label)
	assert.False(t, chips[2].Found)
	assert.Equal(t, "Provider with ID p9 not found.", chips[2].Label)
}

func TestNotificationsPrimaryFailure(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodGet, "/notifications/", http.StatusBadGateway, `{}`)

	n := NewNotifications(testEnv(api))
	require.Error(t, n.Refresh(context.Background()))
	assert.Equal(t, listview.Failed, n.State())
	assert.NotNil(t, n.Rows())
	assert.Empty(t, n.Rows())
}

func TestNotificationsDeleteFailureNotice(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodGet, "/notifications/", http.StatusOK, `[{"_id":"5","fld_title":"x"}]`)
	api.Handle(http.MethodDelete, "/notifications/5", http.StatusInternalServerError, `{}`)

	env := testEnv(api)
	env.Modal = modal.State{Kind: modal.ConfirmDelete, ID: "5"}
	n := NewNotifications(env)
	require.NoError(t, n.Refresh(context.Background()))

	require.Error(t, n.Delete(context.Background(), "5"))
	notice, ok := n.Notice()
	require.True(t, ok)
	assert.Equal(t, "notifications.delete_failed", notice.Code)
	assert.Equal(t, modal.ConfirmDelete, n.Modal().State().Kind)
	assert.Len(t, n.Rows(), 1)
	assert.Equal(t, 1, api.Count(http.MethodGet, "/notifications/"))
}

func TestWorkoffRowsAndUnknownProvider(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodGet, "/workoffs/", http.StatusOK,
		`[{"_id":"w1","fld_service_provider_id":"p1","fld_start_date":"2024-05-01","fld_end_date":"2024-05-03","fld_duration":3,"fld_reason":"trip","fld_addedon":"2024-04-20T08:00:00Z"},
		  {"_id":"w2","fld_service_provider_id":"p2"}]`)
	api.Handle(http.MethodGet, "/users/serviceproviders", http.StatusOK, `[{"_id":"p1","fld_name":"Alice"}]`)

	w := NewWorkoffs(testEnv(api))
	require.NoError(t, w.Refresh(context.Background()))
	rows := w.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0].User)
	assert.Equal(t, "5/1/2024", rows[0].StartDate)
	assert.Equal(t, "3", rows[0].Duration)
	assert.Equal(t, "4/20/2024", rows[0].AddedOn)
	assert.Equal(t, UnknownProvider, rows[1].User)
	assert.Equal(t, "No Date", rows[1].AddedOn)
	assert.Equal(t, int64(0), rows[1].AddedOnMillis)
}

func TestWorkoffAllotmentPostsToManageRoute(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodGet, "/workoffs/", http.StatusOK, `[]`)
	api.Handle(http.MethodPost, "/manageworkoffs", http.StatusCreated, `{}`)

	env := testEnv(api)
	env.Modal = modal.State{Kind: modal.Add, ID: "p1"}
	w := NewWorkoffs(env)

	a := models.NewWorkoffAllotment("p1", "2024-01-01T00:00:00Z")
	a, err := a.WithField(models.FieldWorkoffTotal, "4")
	require.NoError(t, err)
	require.NoError(t, w.Create(context.Background(), a))

	posts := api.Requests(http.MethodPost, "/manageworkoffs")
	require.Len(t, posts, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal(posts[0].Body, &body))
	assert.Equal(t, "p1", body["fld_adminid"])
	assert.EqualValues(t, 4, body["fld_total_no_of_work_offs"])
	assert.EqualValues(t, 4, body["fld_work_offs_balance"])
	assert.EqualValues(t, 0, body["fld_work_offs_availed"])

	notice, _ := w.Notice()
	assert.Equal(t, "workoffs.add_ok", notice.Code)
	assert.False(t, w.Modal().State().Open())
}

func TestWorkoffAllotmentFailureNotice(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodPost, "/manageworkoffs", http.StatusBadRequest, `{}`)

	w := NewWorkoffs(testEnv(api))
	require.Error(t, w.Create(context.Background(), models.NewWorkoffAllotment("p1", "")))
	notice, ok := w.Notice()
	require.True(t, ok)
	assert.Equal(t, "workoffs.add_failed", notice.Code)
	assert.Equal(t, 0, api.Count(http.MethodGet, "/workoffs/"))
}

func TestWorkSummaries(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodGet, "/worksummaries/user/u1", http.StatusOK,
		`[{"_id":"s1","fld_projectid":"pr1","fld_description":"<p>did it</p>","status":"Done","fld_addedon":"2024-02-02"},
		  {"_id":"s2","fld_projectid":"pr2"},
		  {"_id":"s3","fld_projectid":"gone"}]`)
	api.Handle(http.MethodGet, "/projects", http.StatusOK, `[{"_id":"pr1","fld_title":"Site"},{"_id":"pr2"}]`)
	api.Handle(http.MethodGet, "/users/find/u1", http.StatusOK, `{"_id":"u1","fld_name":"Uma","fld_profile_image":"u.png"}`)

	s := NewWorkSummaries(testEnv(api), "u1")
	assert.Equal(t, LoadingUser, s.Header().Name)
	require.NoError(t, s.Refresh(context.Background()))

	rows := s.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "Site", rows[0].Project)
	assert.Equal(t, "did it", rows[0].Description)
	assert.Equal(t, "Done", rows[0].Status)
	assert.Equal(t, "No Title", rows[1].Project)
	assert.Equal(t, "No Description", rows[1].Description)
	assert.Equal(t, "No Status", rows[1].Status)
	assert.Equal(t, UnknownProject, rows[2].Project)

	h := s.Header()
	assert.True(t, h.Found)
	assert.Equal(t, "Uma", h.Name)
	assert.Equal(t, "https://img.example/uploads/u.png", h.Image)

	assert.ErrorIs(t, s.Delete(context.Background(), "s1"), listview.ErrReadOnly)
}

func TestWorkSummaryUnknownUser(t *testing.T) {
	api := remotetest.New(t)
	api.Handle(http.MethodGet, "/worksummaries/user/u1", http.StatusOK, `[]`)
	api.Handle(http.MethodGet, "/users/find/u1", http.StatusInternalServerError, `{}`)

	s := NewWorkSummaries(testEnv(api), "u1")
	require.NoError(t, s.Refresh(context.Background()))
	h := s.Header()
	assert.False(t, h.Found)
	assert.Equal(t, UnknownUser, h.Name)
	assert.Equal(t, placeholder, h.Image)
	assert.Equal(t, listview.Ready, s.State())
}
