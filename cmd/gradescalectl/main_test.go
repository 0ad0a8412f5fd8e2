package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gs "github.com/mind-engage/mindengage-gradescale/internal/gradescale"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "scale.json")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestValidateCommand(t *testing.T) {
	good := writeFile(t, `{"title":"Quiz","type":"percent","items":{"A":90,"B":80,"F":0}}`)
	var out bytes.Buffer
	if err := run([]string{"validate", "-f", good}, &out); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if strings.TrimSpace(out.String()) != "ok" {
		t.Fatalf("out %q", out.String())
	}

	bad := writeFile(t, `{"title":"Quiz","type":"percent","items":{"A":80,"B":90}}`)
	out.Reset()
	if err := run([]string{"validate", "-f", bad}, &out); err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out.String(), "row 2") || !strings.Contains(out.String(), "B is greater than A") {
		t.Fatalf("out %q", out.String())
	}
}

func TestDefaultsCommand(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"defaults", "-type", "points"}, &out); err != nil {
		t.Fatal(err)
	}
	var rec gs.GradeScale
	if err := json.Unmarshal(out.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Type != gs.Points || len(rec.Items) == 0 || rec.Items[0].Label != "A" {
		t.Fatalf("rec %+v", rec)
	}
	if err := run([]string{"defaults", "-type", "letters"}, &out); err == nil {
		t.Fatal("unknown type accepted")
	}
}

func TestPushCommand(t *testing.T) {
	var got struct {
		CourseID   string        `json:"courseId"`
		GradeScale gs.GradeScale `json:"gradeScale"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/gradescales/update" || r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unexpected", http.StatusTeapot)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		saved := got.GradeScale
		saved.ID = "gs-1"
		_ = json.NewEncoder(w).Encode(saved)
	}))
	defer srv.Close()

	p := writeFile(t, `{"title":"Quiz","type":"percent","items":{"A":90,"F":0}}`)
	var out bytes.Buffer
	err := run([]string{"push", "-f", p, "-url", srv.URL, "-course", "c9", "-token", "tok"}, &out)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if got.CourseID != "c9" || got.GradeScale.Items[0].Label != "A" {
		t.Fatalf("request %+v", got)
	}
	var rec gs.GradeScale
	if err := json.Unmarshal(out.Bytes(), &rec); err != nil || rec.ID != "gs-1" || rec.Title != "Quiz" {
		t.Fatalf("out %s %v", out.String(), err)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run([]string{"frobnicate"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error")
	}
	if err := run(nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected usage error")
	}
}
