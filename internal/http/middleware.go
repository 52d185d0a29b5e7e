package http

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/sweetshop/internal/metrics"
)

// Identity resolved by the gateway in front of this service.
const (
	UserIDHeader = "X-User-ID"
	RolesHeader  = "X-User-Roles"
)

// RoleFulfilment may move any order through its lifecycle.
const RoleFulfilment = "fulfilment"

type contextKey string

const (
	userIDKey contextKey = "user_id"
	rolesKey  contextKey = "roles"
)

// IdentityMiddleware puts the caller's user id and roles into the request context.
// Requests without a user id pass through and are rejected by the handlers.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		if roles := parseRoles(r.Header.Get(RolesHeader)); len(roles) > 0 {
			ctx = context.WithValue(ctx, rolesKey, roles)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole lets through only identified callers holding role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if getUserIDFromContext(r.Context()) == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
				return
			}

			if !slices.Contains(getRolesFromContext(r.Context()), role) {
				respondError(w, http.StatusForbidden, "forbidden", "requires role "+role)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func getUserIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

func getRolesFromContext(ctx context.Context) []string {
	roles, _ := ctx.Value(rolesKey).([]string)
	return roles
}

func parseRoles(header string) []string {
	var roles []string
	for _, role := range strings.Split(header, ",") {
		if role = strings.ToLower(strings.TrimSpace(role)); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

// MetricsMiddleware records count and latency per route pattern, so path
// parameters do not explode label cardinality.
func MetricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			pattern := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = r.Method + " " + rctx.RoutePattern()
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			m.ObserveRequest(pattern, status, time.Since(start))
		})
	}
}
