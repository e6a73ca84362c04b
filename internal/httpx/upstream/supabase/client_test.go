package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type row struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

func TestSelect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/posts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("select") != "*" {
			t.Errorf("select = %q", q.Get("select"))
		}
		if q.Get("user_id") != "eq.u1" {
			t.Errorf("user_id filter = %q", q.Get("user_id"))
		}
		if q.Get("order") != "created_at.desc" {
			t.Errorf("order = %q", q.Get("order"))
		}
		if r.Header.Get("apikey") != "secret" || r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing auth headers")
		}
		json.NewEncoder(w).Encode([]row{{ID: "1", UserID: "u1"}, {ID: "2", UserID: "u1"}})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "secret")

	var rows []row
	err := c.Select(context.Background(), SelectInput{
		Table:   "posts",
		Filters: []Filter{Eq("user_id", "u1")},
		Order:   &Order{Column: "created_at"},
	}, &rows)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 2 || rows[1].ID != "2" {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.URL.Query().Get("id") != "eq.p1" {
			t.Errorf("id filter = %q", r.URL.Query().Get("id"))
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Errorf("Prefer = %q", r.Header.Get("Prefer"))
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["status"] != "approved" {
			t.Errorf("unexpected body %v", body)
		}
		json.NewEncoder(w).Encode([]row{{ID: "p1", UserID: "u1"}})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	n, err := c.Update(context.Background(), UpdateInput{
		Table:   "posts",
		Filters: []Filter{Eq("id", "p1")},
		Values:  map[string]interface{}{"status": "approved"},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Update() = %d rows, want 1", n)
	}
}

func TestUpdateNoMatchingRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	n, err := c.Update(context.Background(), UpdateInput{
		Table:   "posts",
		Filters: []Filter{Eq("id", "missing")},
		Values:  map[string]interface{}{"status": "approved"},
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Update() = %d rows, want 0", n)
	}
}

func TestUpdateWithoutFilters(t *testing.T) {
	c := New("http://localhost", "secret")
	if _, err := c.Update(context.Background(), UpdateInput{Table: "posts"}); err == nil {
		t.Error("expected an error for an unfiltered update")
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"JWT expired","code":"PGRST301"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	var rows []row
	err := c.Select(context.Background(), SelectInput{Table: "posts"}, &rows)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "PGRST301" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}
