// Package gate provides permission checks and page entry guards. It has no
// dependency on the dashboard's session or storage types: the subject type
// is a type parameter.
package gate

import "context"

// Decision is the outcome of a page guard: either allow, or redirect to
// Redirect.
type Decision struct {
	Allow    bool
	Redirect string
}

func Allow() Decision { return Decision{Allow: true} }

func RedirectTo(path string) Decision { return Decision{Redirect: path} }

// Guard decides whether a page may be entered. authenticated is false when
// the request carries no valid session, in which case user is the zero
// value.
type Guard[U any] func(ctx context.Context, user U, authenticated bool) Decision

// Authorize checks one permission for user through resolver.
func Authorize[U any](ctx context.Context, resolver ProfileResolver[U], user U, authenticated bool, perm Permission) error {
	if !authenticated {
		return ErrUnauthorized
	}
	profile, err := resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return ErrForbidden
	}
	if !profile.HasPermission(perm) {
		return ErrForbidden
	}
	return nil
}

// RequirePermission builds a guard that sends anonymous visitors to
// loginPath and authenticated ones lacking perm to deniedPath.
func RequirePermission[U any](resolver ProfileResolver[U], perm Permission, loginPath, deniedPath string) Guard[U] {
	return func(ctx context.Context, user U, authenticated bool) Decision {
		switch Authorize(ctx, resolver, user, authenticated, perm) {
		case nil:
			return Allow()
		case ErrUnauthorized:
			return RedirectTo(loginPath)
		default:
			return RedirectTo(deniedPath)
		}
	}
}

// RequireAuthenticated only checks that a session exists.
func RequireAuthenticated[U any](loginPath string) Guard[U] {
	return func(_ context.Context, _ U, authenticated bool) Decision {
		if !authenticated {
			return RedirectTo(loginPath)
		}
		return Allow()
	}
}
