// Package auth issues and verifies the dashboard session: a signed JWT in
// an HttpOnly cookie carrying the admin id and admin type.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "session"
	issuer     = "sp-admin"
)

// Session is what a signed-in request knows about its admin.
type Session struct {
	AdminID   uint
	Username  string
	AdminType string
}

// Verifier rechecks a parsed session on every request, e.g. that the admin
// still exists. Returning false clears the cookie.
type Verifier func(ctx context.Context, s Session) bool

type claims struct {
	Username  string `json:"usr,omitempty"`
	AdminType string `json:"adm"`
	jwt.RegisteredClaims
}

// Sessions signs and parses session cookies.
type Sessions struct {
	secret   []byte
	ttl      time.Duration
	secure   bool
	now      func() time.Time
	verifier Verifier
}

type Option func(*Sessions)

// WithSecureCookie marks the cookie Secure (HTTPS deployments).
func WithSecureCookie(secure bool) Option { return func(s *Sessions) { s.secure = secure } }

func WithVerifier(v Verifier) Option { return func(s *Sessions) { s.verifier = v } }

func withClock(now func() time.Time) Option { return func(s *Sessions) { s.now = now } }

func NewSessions(secret string, ttl time.Duration, opts ...Option) *Sessions {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	s := &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Sign returns the token for sess.
func (s *Sessions) Sign(sess Session) (string, error) {
	if sess.AdminID == 0 {
		return "", errors.New("auth: session without admin id")
	}
	now := s.now()
	c := claims{
		Username:  sess.Username,
		AdminType: sess.AdminType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(sess.AdminID), 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify parses and validates a token.
func (s *Sessions) Verify(token string) (Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("auth: %w", err)
	}
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return Session{}, errors.New("auth: invalid subject")
	}
	return Session{AdminID: uint(id), Username: c.Username, AdminType: c.AdminType}, nil
}

// Issue sets the session cookie.
func (s *Sessions) Issue(w http.ResponseWriter, sess Session) error {
	token, err := s.Sign(sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.now().Add(s.ttl),
	})
	return nil
}

// Clear deletes the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true, Secure: s.secure, SameSite: http.SameSiteLaxMode})
}

// Parse reads the session from the request cookie.
func (s *Sessions) Parse(r *http.Request) (Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Session{}, false
	}
	sess, err := s.Verify(c.Value)
	if err != nil {
		return Session{}, false
	}
	return sess, true
}

type ctxKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by Middleware.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// Middleware attaches the session to the request context when the cookie
// is valid. A session the verifier rejects is cleared.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := s.Parse(r); ok {
			if s.verifier != nil && !s.verifier(r.Context(), sess) {
				s.Clear(w)
			} else {
				r = r.WithContext(WithSession(r.Context(), sess))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// WantsJSON reports a client that asked for JSON and not HTML.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
