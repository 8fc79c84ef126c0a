package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		requests = append(requests, rec)
		w.WriteHeader(status)
		if response != "" {
			w.Write([]byte(response))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestSelect(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `[{"id":"task-1","title":"hello"}]`)
	client := NewClient(nil, srv.URL, "key", "session")

	rows, err := client.Select(context.Background(), "task")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 || rows[0]["id"] != "task-1" {
		t.Errorf("rows = %v", rows)
	}

	req := (*requests)[0]
	if req.method != http.MethodGet || req.path != "/rest/v1/task" {
		t.Errorf("request = %s %s", req.method, req.path)
	}
	if req.query != "select=*" {
		t.Errorf("query = %q, want select=*", req.query)
	}
	if got := req.header.Get("apikey"); got != "key" {
		t.Errorf("apikey header = %q", got)
	}
	if got := req.header.Get("Authorization"); got != "Bearer session" {
		t.Errorf("authorization = %q, want the session token", got)
	}
}

func TestInsert(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusCreated, "")
	client := NewClient(nil, srv.URL, "key", "session")

	err := client.Insert(context.Background(), "task", map[string]any{"id": "task-1", "title": "hi"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	req := (*requests)[0]
	if req.method != http.MethodPost || req.path != "/rest/v1/task" {
		t.Errorf("request = %s %s", req.method, req.path)
	}
	if got := req.header.Get("Prefer"); got != "return=minimal" {
		t.Errorf("prefer = %q", got)
	}
	if req.body["id"] != "task-1" {
		t.Errorf("body = %v", req.body)
	}
}

func TestUpdateFiltersByID(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusNoContent, "")
	client := NewClient(nil, srv.URL, "key", "")

	err := client.Update(context.Background(), "task", map[string]any{"status": "done"}, "task-1")
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	req := (*requests)[0]
	if req.method != http.MethodPatch {
		t.Errorf("method = %s, want PATCH", req.method)
	}
	if req.query != "id=eq.task-1" {
		t.Errorf("query = %q, want id=eq.task-1", req.query)
	}
	// With no session token the request authenticates with the apikey.
	if got := req.header.Get("Authorization"); got != "Bearer key" {
		t.Errorf("authorization = %q", got)
	}
}

func TestDeleteFiltersByID(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusNoContent, "")
	client := NewClient(nil, srv.URL, "key", "session")

	if err := client.Delete(context.Background(), "task", "task-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	req := (*requests)[0]
	if req.method != http.MethodDelete || req.query != "id=eq.task-1" {
		t.Errorf("request = %s ?%s", req.method, req.query)
	}
}

func TestCurrentUserID(t *testing.T) {
	srv, requests := newTestServer(t, http.StatusOK, `{"id":"user-1","email":"a@b.c"}`)
	client := NewClient(nil, srv.URL, "key", "session")

	id, err := client.CurrentUserID(context.Background())
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if id != "user-1" {
		t.Errorf("id = %q", id)
	}
	if req := (*requests)[0]; req.path != "/auth/v1/user" {
		t.Errorf("path = %q", req.path)
	}
}

func TestUnauthorized(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized, `{"message":"JWT expired"}`)
	client := NewClient(nil, srv.URL, "key", "stale")

	if _, err := client.CurrentUserID(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
	if err := client.Insert(context.Background(), "task", map[string]any{"id": "x"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("insert error = %v, want ErrUnauthorized", err)
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, "")
	client := NewClient(nil, srv.URL, "key", "session")
	if err := client.Delete(context.Background(), "task", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestServerErrorMessage(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `{"message":"db on fire"}`)
	client := NewClient(nil, srv.URL, "key", "session")
	_, err := client.Select(context.Background(), "task")
	if err == nil {
		t.Fatal("expected an error")
	}
}
