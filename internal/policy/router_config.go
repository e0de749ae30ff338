package policy

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/sp-admin/auth"
	"github.com/diewo77/sp-admin/gate"
	"github.com/diewo77/sp-admin/internal/handlers"
)

// ProfileCacheTTL bounds how long an admin type change takes to apply.
const ProfileCacheTTL = 5 * time.Minute

// RouterConfig holds configured handlers and middleware for the application.
type RouterConfig struct {
	// AuthGate provides authorization checks and middleware
	AuthGate *AuthGate
	Sessions *auth.Sessions

	AuthHandler         *handlers.AuthHandler
	DashboardHandler    *handlers.DashboardHandler
	NotificationHandler *handlers.NotificationHandler
	WorkoffHandler      *handlers.WorkoffHandler
	WorkSummaryHandler  *handlers.WorkSummaryHandler
	Health              http.HandlerFunc
}

// NewRouterConfig wires the gate and every page handler. Profiles are read
// from the admin table and cached for ProfileCacheTTL.
func NewRouterConfig(db *gorm.DB, sessions *auth.Sessions, rem handlers.Remote) *RouterConfig {
	authGate := NewAuthGate(db, ProfileCacheTTL)

	dashboard := handlers.NewDashboardHandler(authGate.Can, rem.Logger,
		handlers.Link{Resource: ResourceNotification, Action: gate.ActionList, Label: "nav.notifications", Href: handlers.NotificationsPath},
		handlers.Link{Resource: ResourceWorkoff, Action: gate.ActionList, Label: "nav.workoffs", Href: handlers.WorkoffsPath},
	)

	authHandler := handlers.NewAuthHandler(db, sessions, rem.Logger)
	authHandler.OnLogout = authGate.Forget

	return &RouterConfig{
		AuthGate:            authGate,
		Sessions:            sessions,
		AuthHandler:         authHandler,
		DashboardHandler:    dashboard,
		NotificationHandler: handlers.NewNotificationHandler(rem),
		WorkoffHandler:      handlers.NewWorkoffHandler(rem),
		WorkSummaryHandler:  handlers.NewWorkSummaryHandler(rem),
		Health:              handlers.Health(db, rem.Client),
	}
}
