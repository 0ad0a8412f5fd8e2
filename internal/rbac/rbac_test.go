package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	cases := []struct {
		role Role
		perm string
		want bool
	}{
		{RoleStudent, PermGradeScaleView, true},
		{RoleStudent, PermGradeScaleEdit, false},
		{RoleTeacher, PermGradeScaleEdit, true},
		{RoleTeacher, PermCourseSettings, true},
		{RoleTeacher, "course:delete", false},
		{RoleTeacher, "gradescales:view", false},
		{RoleAdmin, "anything:at-all", true},
		{"ghost", PermGradeScaleView, false},
	}
	for _, tc := range cases {
		if got := DefaultPolicy.Allows(tc.role, tc.perm); got != tc.want {
			t.Errorf("Allows(%s, %s) = %v", tc.role, tc.perm, got)
		}
	}
	if !DefaultPolicy.AllowsAny(RoleStudent, PermCourseSettings, PermGradeScaleView) {
		t.Errorf("AllowsAny should match view")
	}
}

func TestPrincipalCourses(t *testing.T) {
	scoped := Principal{Subject: "tina", Role: RoleTeacher, Courses: []string{"c1", "c2"}}
	if !scoped.InCourse("c2") || scoped.InCourse("c3") || scoped.InCourse("") {
		t.Errorf("scoped teacher: %+v", scoped)
	}
	if !(Principal{Role: RoleTeacher}).InCourse("anything") {
		t.Errorf("unscoped teacher should reach every course")
	}
	if !(Principal{Role: RoleAdmin, Courses: []string{"c1"}}).InCourse("c9") {
		t.Errorf("admin is never limited")
	}

	ctx := WithPrincipal(context.Background(), scoped)
	if !CourseAllowed(ctx, "c1") || CourseAllowed(ctx, "c9") {
		t.Errorf("CourseAllowed")
	}
	if CourseAllowed(context.Background(), "c1") {
		t.Errorf("anonymous request allowed")
	}
}

func TestRequire(t *testing.T) {
	h := Require(PermGradeScaleEdit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for role, want := range map[Role]int{"": 403, RoleStudent: 403, RoleTeacher: 200} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if role != "" {
			req = req.WithContext(WithPrincipal(context.Background(), Principal{Subject: "x", Role: role}))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Errorf("role %q: %d, want %d", role, rr.Code, want)
		}
	}

	either := DefaultPolicy.RequireAny(PermCourseSettings, PermGradeScaleView)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(context.Background(), Principal{Role: RoleStudent}))
	rr := httptest.NewRecorder()
	either.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("RequireAny: %d", rr.Code)
	}
}
