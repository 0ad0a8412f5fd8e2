package rbac

import (
	"context"
	"slices"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	Subject string
	Role    Role
	// Courses limits the courses the caller may act on. Empty means no limit,
	// which is what local logins without a course list get.
	Courses []string
}

// InCourse reports whether the principal may act on courseID. Admins are
// never limited.
func (p Principal) InCourse(courseID string) bool {
	if p.Role == RoleAdmin || len(p.Courses) == 0 {
		return true
	}
	return courseID != "" && slices.Contains(p.Courses, courseID)
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// CourseAllowed is InCourse for the request's principal; a request without
// one is refused.
func CourseAllowed(ctx context.Context, courseID string) bool {
	p, ok := FromContext(ctx)
	return ok && p.InCourse(courseID)
}
