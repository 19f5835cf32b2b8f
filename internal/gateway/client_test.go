package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jasonknight/anthropide-sub001/internal/model"
)

func TestLoadSessionNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no session stored for project"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.LoadSession(context.Background(), "demo")
	if err == nil {
		t.Fatal("LoadSession on 404 returned nil error")
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound(%v) = false, want true", err)
	}
	if got := err.Error(); got != "no session stored for project (http 404)" {
		t.Fatalf("error text = %q", got)
	}
}

func TestSaveSessionSendsDocument(t *testing.T) {
	var gotPath, gotMethod, gotCT string
	var gotBody model.Session
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	doc := model.NewSession()
	doc.Messages = []model.Message{{
		Role:    model.RoleUser,
		Content: []model.ContentBlock{model.TextBlock("hello")},
	}}

	c := NewClient(srv.URL + "/") // trailing slash must not double up
	if err := c.SaveSession(context.Background(), "my project", doc); err != nil {
		t.Fatalf("SaveSession = %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("method = %s, want PUT", gotMethod)
	}
	if gotPath != "/api/projects/my%20project/session" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotCT != "application/json" {
		t.Fatalf("content type = %q", gotCT)
	}
	if gotBody.Model != doc.Model || len(gotBody.Messages) != 1 {
		t.Fatalf("server received %+v", gotBody)
	}
}

func TestErrorMessageFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not json at all", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.CreateProject(context.Background(), "x")
	if err == nil {
		t.Fatal("CreateProject on 502 returned nil error")
	}
	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("error type = %T", err)
	}
	if ge.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", ge.StatusCode)
	}
	if ge.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("message = %q, want status text fallback", ge.Message)
	}
}

func TestUnreachableGateway(t *testing.T) {
	c := NewClient("http://127.0.0.1:1") // nothing listens here
	_, err := c.ListProjects(context.Background())
	if err == nil {
		t.Fatal("ListProjects against closed port returned nil error")
	}
	if IsNotFound(err) {
		t.Fatalf("transport failure classified as not-found: %v", err)
	}
}
