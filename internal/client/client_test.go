package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mind-engage/mindengage-gradescale/internal/client"
	gs "github.com/mind-engage/mindengage-gradescale/internal/gradescale"
)

func TestSaveAndWeights(t *testing.T) {
	var gotAuth string
	var gotSave client.SaveRequest
	var gotWeights map[string]bool

	mux := http.NewServeMux()
	mux.HandleFunc("/gradescales/update", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotSave); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		out := gotSave.GradeScale
		out.ID = "srv-1"
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/courses/course-1/use-weights", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotWeights)
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := client.New(client.Config{BaseURL: srv.URL + "/", CourseID: "course-1", Token: "tok", Timeout: 5 * time.Second})
	rec := gs.GradeScale{Title: "Quiz", Type: gs.Percent, Items: gs.Items{{Label: "B", Value: 50}, {Label: "A", Value: 90}}}
	saved, err := c.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("auth header %q", gotAuth)
	}
	if gotSave.CourseID != "course-1" || gotSave.GradeScale.Title != "Quiz" {
		t.Fatalf("request %+v", gotSave)
	}
	if gotSave.GradeScale.Items[0].Label != "B" {
		t.Fatalf("item order lost on the wire: %v", gotSave.GradeScale.Items)
	}
	if saved.ID != "srv-1" || saved.CourseID != "course-1" {
		t.Fatalf("saved %+v", saved)
	}

	if err := c.SetCourseUseWeights(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if v, ok := gotWeights["useWeights"]; !ok || v {
		t.Fatalf("weights body %v", gotWeights)
	}
}

func TestStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "course grading scale is read-only", http.StatusForbidden)
	}))
	defer srv.Close()

	c := client.New(client.Config{BaseURL: srv.URL, CourseID: "c"})
	_, err := c.Save(context.Background(), gs.GradeScale{Title: "x", Type: gs.Points})
	var se *client.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusForbidden || se.Body != "course grading scale is read-only" {
		t.Fatalf("got %v", err)
	}

	if err := client.New(client.Config{BaseURL: srv.URL}).SetCourseUseWeights(context.Background(), false); !errors.Is(err, gs.ErrInvalidArgument) {
		t.Fatalf("missing course: %v", err)
	}
}

func TestClientCredentials(t *testing.T) {
	var tokenCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"cc-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/gradescales/g1", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer cc-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"g1","title":"T","type":"points","maxPoints":10,"isCourseScale":false,"items":{"A":10,"F":0}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := client.New(client.Config{BaseURL: srv.URL, TokenURL: srv.URL + "/token", ClientID: "id", ClientSecret: "secret"})
	rec, err := c.Get(context.Background(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	if tokenCalls != 1 || rec.ID != "g1" || *rec.MaxPoints != 10 || rec.Items[0].Label != "A" {
		t.Fatalf("rec %+v calls %d", rec, tokenCalls)
	}
}

func TestEditorOverHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := &gs.RecordingNotifier{}
	ed := gs.NewEditor(client.New(client.Config{BaseURL: srv.URL, CourseID: "c"}), gs.WithNotifier(n))
	if err := ed.Open(&gs.GradeScale{Title: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := ed.Save(context.Background()); !errors.Is(err, gs.ErrTransport) {
		t.Fatalf("got %v", err)
	}
	if a, ok := n.Current(); !ok || a.Kind != gs.AlertError {
		t.Fatalf("alert %+v", a)
	}
}
