package rbac

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

const (
	PermGradeScaleView = "gradescale:view"
	PermGradeScaleEdit = "gradescale:edit"
	PermCourseSettings = "course:settings"
)

// DefaultPolicy is what the service enforces unless a caller builds its own.
var DefaultPolicy = Policy{
	RoleStudent: {PermGradeScaleView},
	RoleTeacher: {"gradescale:*", PermCourseSettings},
	RoleAdmin:   {"*"},
}
