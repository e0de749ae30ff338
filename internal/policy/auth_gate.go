package policy

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/sp-admin/auth"
	"github.com/diewo77/sp-admin/gate"
	"github.com/diewo77/sp-admin/httpx"
)

// Paths the page guards redirect to.
const (
	LoginPath   = "/login"
	LandingPath = "/dashboard"
)

// AuthGate is the central authorization point of the dashboard.
type AuthGate struct {
	Resolver      gate.ProfileResolver[auth.Session]
	CacheResolver *gate.CachedResolver[auth.Session]
}

// NewAuthGate resolves profiles from the admin table, cached for cacheTTL.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[auth.Session](NewDBProfileResolver(db), cacheTTL)
	return &AuthGate{Resolver: cached, CacheResolver: cached}
}

// NewSessionGate trusts the session claims; used when no admin store is
// wired, e.g. in tests.
func NewSessionGate() *AuthGate {
	return &AuthGate{Resolver: SessionProfileResolver()}
}

// Can checks one permission for the request's session.
func (ag *AuthGate) Can(ctx context.Context, resourceType string, action gate.Action) bool {
	sess, ok := auth.FromContext(ctx)
	return gate.Authorize(ctx, ag.Resolver, sess, ok, gate.NewPermission(resourceType, action)) == nil
}

// Guard builds the entry guard of a page.
func (ag *AuthGate) Guard(resourceType string, action gate.Action) gate.Guard[auth.Session] {
	return gate.RequirePermission(ag.Resolver, gate.NewPermission(resourceType, action), LoginPath, LandingPath)
}

// Forget drops the cached profile of one session; wired to logout.
func (ag *AuthGate) Forget(sess auth.Session) {
	if ag.CacheResolver != nil {
		ag.CacheResolver.Invalidate(sess)
	}
}

// InvalidateAll drops cached profiles, e.g. after admin types changed.
func (ag *AuthGate) InvalidateAll() {
	if ag.CacheResolver != nil {
		ag.CacheResolver.InvalidateAll()
	}
}

// Enter evaluates guard once for the request. Denied HTML requests are
// redirected; JSON clients get 401 when unauthenticated and 403 otherwise.
func Enter(guard gate.Guard[auth.Session]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := auth.FromContext(r.Context())
			d := guard(r.Context(), sess, ok)
			if d.Allow {
				next.ServeHTTP(w, r)
				return
			}
			if auth.WantsJSON(r) {
				if !ok {
					httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				} else {
					httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				}
				return
			}
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		})
	}
}

// RequirePermission is Enter over the permission guard.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return Enter(ag.Guard(resourceType, action))
}
