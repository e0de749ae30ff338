package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/sp-admin/auth"
	"github.com/diewo77/sp-admin/httpx"
	"github.com/diewo77/sp-admin/internal/models"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

type AuthHandler struct {
	db       *gorm.DB
	sessions *auth.Sessions
	logger   *zap.Logger

	// OnLogout runs with the session being cleared, when there is one.
	OnLogout func(auth.Session)
}

func NewAuthHandler(db *gorm.DB, sessions *auth.Sessions, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{db: db, sessions: sessions, logger: logger}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// landing is where a fresh session starts: superadmins go straight to the
// notifications, everyone else to the dashboard.
func landing(adminType string) string {
	if adminType == models.AdminTypeSuper {
		return NotificationsPath
	}
	return DashboardPath
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.FromContext(r.Context()); ok {
		http.Redirect(w, r, landing(sess.AdminType), http.StatusSeeOther)
		return
	}
	render(w, r, h.logger, http.StatusOK, "login.html", map[string]any{"Username": "", "Error": ""})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if isJSONBody(r) {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&c); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
			return
		}
	} else {
		c = credentials{Username: r.FormValue("username"), Password: r.FormValue("password")}
	}
	c.Username = strings.TrimSpace(c.Username)

	admin, err := h.authenticate(c)
	if err != nil {
		h.logger.Info("login rejected", zap.String("username", c.Username), zap.Error(err))
		if wantsJSON(r) || isJSONBody(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		render(w, r, h.logger, http.StatusUnauthorized, "login.html", map[string]any{
			"Username": c.Username, "Error": "login.invalid",
		})
		return
	}

	sess := auth.Session{AdminID: admin.ID, Username: admin.Username, AdminType: admin.AdminType}
	if err := h.sessions.Issue(w, sess); err != nil {
		h.logger.Error("issue session", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("login", zap.Uint("admin_id", admin.ID), zap.String("admin_type", admin.AdminType))
	if wantsJSON(r) || isJSONBody(r) {
		httpx.JSON(w, http.StatusOK, admin)
		return
	}
	http.Redirect(w, r, landing(admin.AdminType), http.StatusSeeOther)
}

var errBadCredentials = errors.New("invalid username or password")

func (h *AuthHandler) authenticate(c credentials) (models.Admin, error) {
	var admin models.Admin
	if c.Username == "" || c.Password == "" {
		return admin, errBadCredentials
	}
	if err := h.db.Where("username = ?", c.Username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return admin, errBadCredentials
		}
		return admin, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(c.Password)); err != nil {
		return admin, errBadCredentials
	}
	return admin, nil
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.FromContext(r.Context()); ok && h.OnLogout != nil {
		h.OnLogout(sess)
	}
	h.sessions.Clear(w)
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
