package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/diewo77/sp-admin/auth"
	"github.com/diewo77/sp-admin/gate"
	"github.com/diewo77/sp-admin/httpx"
	"github.com/diewo77/sp-admin/internal/logger"
	"github.com/diewo77/sp-admin/internal/middleware"
	"github.com/diewo77/sp-admin/internal/policy"
	"github.com/diewo77/sp-admin/view"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *policy.RouterConfig
	log       *zap.Logger
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *policy.RouterConfig, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
		log:       log,
	}
	// Templates hide navigation the admin may not enter; the resolver keeps
	// policy types out of the view package.
	view.SetCanResolver(func(r *http.Request, resource, action string) bool {
		if routerCfg == nil || routerCfg.AuthGate == nil {
			return false
		}
		return routerCfg.AuthGate.Can(r.Context(), resource, gate.Action(action))
	})
	view.SetFlashResolver(middleware.FlashFrom)
	app.setupRoutes()

	// AccessLog wraps the mux directly so it sees the matched pattern.
	var h http.Handler = middleware.AccessLog(log)(app.mux)
	h = middleware.Flash(h)
	h = middleware.Prefs(h)
	h = routerCfg.Sessions.Middleware(h)
	h = logger.Middleware(log)(h)
	h = httpx.Recover(log)(h)
	app.handler = h
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	ah := a.routerCfg.AuthHandler

	a.mux.HandleFunc("GET /{$}", a.landingPage)
	a.mux.HandleFunc("GET /login", ah.LoginForm)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("GET /logout", ah.Logout)
	a.mux.HandleFunc("POST /logout", ah.Logout)
	a.mux.HandleFunc("GET /healthz", a.routerCfg.Health)
	a.mux.Handle("GET /metrics", promhttp.Handler())
	a.mux.Handle("GET /static/", view.Static())

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes (any signed-in admin)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /dashboard",
		policy.Enter(gate.RequireAuthenticated[auth.Session](policy.LoginPath))(http.HandlerFunc(a.routerCfg.DashboardHandler.Show)))

	// ─────────────────────────────────────────────────────────────────────────
	// Protected resource routes (require specific permissions)
	// ─────────────────────────────────────────────────────────────────────────
	nh := a.routerCfg.NotificationHandler
	wh := a.routerCfg.WorkoffHandler
	sh := a.routerCfg.WorkSummaryHandler

	// Notifications - require notification:list, notification:create, etc.
	a.mux.Handle("GET /notifications",
		a.requirePermission(policy.ResourceNotification, gate.ActionList)(http.HandlerFunc(nh.List)))
	a.mux.Handle("POST /notifications",
		a.requirePermission(policy.ResourceNotification, gate.ActionCreate)(http.HandlerFunc(nh.Create)))
	a.mux.Handle("POST /notifications/{id}",
		a.requirePermission(policy.ResourceNotification, gate.ActionUpdate)(http.HandlerFunc(nh.Update)))
	a.mux.Handle("PUT /notifications/{id}",
		a.requirePermission(policy.ResourceNotification, gate.ActionUpdate)(http.HandlerFunc(nh.Update)))
	a.mux.Handle("POST /notifications/{id}/delete",
		a.requirePermission(policy.ResourceNotification, gate.ActionDelete)(http.HandlerFunc(nh.Delete)))
	a.mux.Handle("DELETE /notifications/{id}",
		a.requirePermission(policy.ResourceNotification, gate.ActionDelete)(http.HandlerFunc(nh.Delete)))

	// Workoffs
	a.mux.Handle("GET /workoffs",
		a.requirePermission(policy.ResourceWorkoff, gate.ActionList)(http.HandlerFunc(wh.List)))
	a.mux.Handle("POST /workoffs",
		a.requirePermission(policy.ResourceWorkoff, gate.ActionCreate)(http.HandlerFunc(wh.Create)))

	// Work summaries of one provider
	a.mux.Handle("GET /users/{id}/worksummary",
		a.requirePermission(policy.ResourceWorkSummary, gate.ActionView)(http.HandlerFunc(sh.Show)))
}

// requirePermission wraps a handler to require specific resource permission.
func (a *App) requirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return a.routerCfg.AuthGate.RequirePermission(resourceType, action)
}

// landingPage sends visitors to their start page.
func (a *App) landingPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		http.Redirect(w, r, policy.LoginPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, policy.LandingPath, http.StatusSeeOther)
}
