package rbac

import (
	"net/http"
)

// Require enforces a single permission with DefaultPolicy.
func Require(perm string) func(http.Handler) http.Handler {
	return DefaultPolicy.Require(perm)
}

// Require enforces a single permission.
func (p Policy) Require(perm string) func(http.Handler) http.Handler {
	return p.guard(func(role Role) bool { return p.Allows(role, perm) })
}

// RequireAny enforces that the role has at least one of the permissions.
func (p Policy) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return p.guard(func(role Role) bool { return p.AllowsAny(role, perms...) })
}

func (p Policy) guard(ok func(Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pr, found := FromContext(r.Context())
			if !found || !ok(pr.Role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
