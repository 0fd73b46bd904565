package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mirindaq/EcomStore-sub002/internal/identity"
	"github.com/mirindaq/EcomStore-sub002/pkg/httputil"
)

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Identity reads the gateway-forwarded identity headers (X-User-ID,
// X-User-Role, X-User-Email, X-User-Name) and stores a role-tagged principal
// on the request context. Requests without the headers stay anonymous.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idStr := r.Header.Get("X-User-ID")
		role := r.Header.Get("X-User-Role")
		if idStr == "" || role == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		email := r.Header.Get("X-User-Email")
		name := r.Header.Get("X-User-Name")

		var p *identity.Principal
		switch identity.Role(role) {
		case identity.RoleStaff:
			p = identity.NewStaffPrincipal(identity.Staff{ID: id, Email: email, Name: name})
		case identity.RoleCustomer:
			p = identity.NewCustomerPrincipal(identity.Customer{ID: id, Email: email, Name: name})
		default:
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), p)))
	})
}

// RequireStaff rejects requests whose principal is absent or not staff.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := identity.FromContext(r.Context())
		if p == nil {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
			})
			return
		}
		if _, err := p.Staff(); err != nil {
			httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "WRONG_ROLE", Message: "staff role required"},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
