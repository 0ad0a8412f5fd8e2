package rbac

import "strings"

// Policy maps a role to permission patterns. A pattern is an exact
// permission, "*", or a namespace wildcard such as "gradescale:*".
type Policy map[Role][]string

// Allows reports whether role holds perm. Unknown roles hold nothing.
func (p Policy) Allows(role Role, perm string) bool {
	for _, pattern := range p[role] {
		if matchPerm(pattern, perm) {
			return true
		}
	}
	return false
}

func (p Policy) AllowsAny(role Role, perms ...string) bool {
	for _, perm := range perms {
		if p.Allows(role, perm) {
			return true
		}
	}
	return false
}

func matchPerm(pattern, perm string) bool {
	switch {
	case pattern == "*", pattern == perm:
		return true
	case strings.HasSuffix(pattern, ":*"):
		ns := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(perm, ns)
	}
	return false
}
