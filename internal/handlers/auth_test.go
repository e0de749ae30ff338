package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/sp-admin/auth"
	"github.com/diewo77/sp-admin/gate"
	"github.com/diewo77/sp-admin/internal/db"
	"github.com/diewo77/sp-admin/internal/models"
)

func setupAuth(t *testing.T) (*AuthHandler, *auth.Sessions) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	for _, a := range []struct{ username, adminType string }{
		{"root", models.AdminTypeSuper},
		{"staff", models.AdminTypeStaff},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
		require.NoError(t, err)
		require.NoError(t, conn.Create(&models.Admin{Username: a.username, Password: string(hash), AdminType: a.adminType}).Error)
	}
	sessions := auth.NewSessions("test-secret", time.Hour)
	return NewAuthHandler(conn, sessions, nil), sessions
}

func TestLoginLandsByAdminType(t *testing.T) {
	h, sessions := setupAuth(t)

	for username, want := range map[string]string{"root": NotificationsPath, "staff": DashboardPath} {
		rec := httptest.NewRecorder()
		h.Login(rec, postForm("/login", url.Values{"username": {username}, "password": {"secret"}}))

		require.Equal(t, http.StatusSeeOther, rec.Code, username)
		assert.Equal(t, want, rec.Header().Get("Location"), username)

		res := rec.Result()
		var token string
		for _, c := range res.Cookies() {
			if c.Name == auth.CookieName {
				token = c.Value
			}
		}
		require.NotEmpty(t, token, username)
		sess, err := sessions.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, username, sess.Username)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h, _ := setupAuth(t)

	rec := httptest.NewRecorder()
	h.Login(rec, postForm("/login", url.Values{"username": {"root"}, "password": {"nope"}}))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginJSON(t *testing.T) {
	h, _ := setupAuth(t)

	rec := httptest.NewRecorder()
	h.Login(rec, postJSON(http.MethodPost, "/login", `{"username":"ghost","password":"secret"}`))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_credentials")

	rec = httptest.NewRecorder()
	h.Login(rec, postJSON(http.MethodPost, "/login", `{"username":"root","password":"secret"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"admin_type":"SUPERADMIN"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestLoginFormRedirectsSignedIn(t *testing.T) {
	h, _ := setupAuth(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req = req.WithContext(auth.WithSession(req.Context(), auth.Session{AdminID: 2, Username: "staff", AdminType: models.AdminTypeStaff}))
	rec := httptest.NewRecorder()
	h.LoginForm(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DashboardPath, rec.Header().Get("Location"))
}

func TestLogoutClearsSession(t *testing.T) {
	h, _ := setupAuth(t)

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), auth.CookieName+"=;")
}

func TestLogoutNotifiesWithSession(t *testing.T) {
	h, _ := setupAuth(t)
	var got []auth.Session
	h.OnLogout = func(s auth.Session) { got = append(got, s) }

	h.Logout(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Empty(t, got, "no session, nothing to forget")

	sess := auth.Session{AdminID: 1, Username: "root", AdminType: models.AdminTypeSuper}
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = req.WithContext(auth.WithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []auth.Session{sess}, got)
}

func TestDashboardFiltersLinks(t *testing.T) {
	can := func(_ context.Context, resource string, _ gate.Action) bool { return resource == "notification" }
	h := NewDashboardHandler(can, nil,
		Link{Resource: "notification", Action: gate.ActionList, Label: "nav.notifications", Href: NotificationsPath},
		Link{Resource: "workoff", Action: gate.ActionList, Label: "nav.workoffs", Href: WorkoffsPath},
	)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	h.Show(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/notifications"`)
	assert.NotContains(t, body, `href="/workoffs"`)
}

func TestDashboardRestricted(t *testing.T) {
	h := NewDashboardHandler(func(context.Context, string, gate.Action) bool { return false }, nil,
		Link{Resource: "workoff", Action: gate.ActionList, Label: "nav.workoffs", Href: WorkoffsPath})

	rec := httptest.NewRecorder()
	h.Show(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "requires a superadmin account")
}
