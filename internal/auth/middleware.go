package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type claimsKey struct{}

// WithClaims stores claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext retrieves claims stored by WithClaims.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// Middleware validates bearer tokens on every request except CORS preflights and the configured
// public paths. A path ending in "/" opens its whole subtree.
type Middleware struct {
	cfg    Config
	exact  map[string]struct{}
	prefix []string
}

// NewMiddleware constructs a Middleware opening publicPaths to unauthenticated callers.
func NewMiddleware(cfg Config, publicPaths ...string) Middleware {
	m := Middleware{cfg: cfg, exact: make(map[string]struct{})}
	for _, p := range publicPaths {
		if strings.HasSuffix(p, "/") {
			m.prefix = append(m.prefix, p)
			continue
		}
		m.exact[p] = struct{}{}
	}
	return m
}

func (m Middleware) public(r *http.Request) bool {
	if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
		return true
	}
	if _, ok := m.exact[r.URL.Path]; ok {
		return true
	}
	for _, p := range m.prefix {
		if strings.HasPrefix(r.URL.Path, p) {
			return true
		}
	}
	return false
}

// Wrap wraps an http.Handler with authentication. Rejections use the API's {"type","detail"} body.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.public(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := bearerClaims(r, m.cfg)
		if err != nil {
			unauthorized(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func bearerClaims(r *http.Request, cfg Config) (*Claims, error) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	switch {
	case scheme == "":
		return nil, ErrMissingToken
	case !found || !strings.EqualFold(scheme, "bearer"):
		return nil, ErrInvalidToken
	}
	return Parse(token, cfg)
}

func unauthorized(w http.ResponseWriter, err error) {
	challenge := `Bearer`
	if !errors.Is(err, ErrMissingToken) {
		challenge = `Bearer error="invalid_token"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"type": "unauthorized", "detail": err.Error()})
}
