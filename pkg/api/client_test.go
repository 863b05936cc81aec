package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tableflip.dev/dash/pkg/habit"
	"tableflip.dev/dash/pkg/section"
)

func TestWidgetsNormalizesGridDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/widgets" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":"w-1","type":"weather","position":{"row":0,"col":0},"enabled":true}]`))
	}))
	defer srv.Close()

	c, err := NewWithHTTPClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	widgets, err := c.Widgets(context.Background())
	if err != nil {
		t.Fatalf("Widgets: %v", err)
	}
	if len(widgets) != 1 {
		t.Fatalf("widgets = %+v", widgets)
	}
	if widgets[0].Position.Width != 1 || widgets[0].Position.Height != 1 {
		t.Fatalf("grid defaults not filled: %+v", widgets[0].Position)
	}
}

func TestSectionsReturnSorted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"name":"reading","position":2,"enabled":true},
			{"name":"finance","position":0,"enabled":true}
		]`))
	}))
	defer srv.Close()

	c, _ := NewWithHTTPClient(srv.URL, srv.Client())
	sections, err := c.Sections(context.Background())
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}
	if sections[0].Name != "finance" || sections[1].Name != "reading" {
		t.Fatalf("sections not sorted: %+v", sections)
	}
}

func TestSetSectionPositionsSendsFullOrder(t *testing.T) {
	var got []section.Placement
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/sections/positions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := NewWithHTTPClient(srv.URL, srv.Client())
	placements := []section.Placement{
		{Name: "finance", Position: 0},
		{Name: "reading", Position: 1},
	}
	if err := c.SetSectionPositions(context.Background(), placements); err != nil {
		t.Fatalf("SetSectionPositions: %v", err)
	}
	if len(got) != 2 || got[0].Name != "finance" || got[1].Position != 1 {
		t.Fatalf("server saw %+v", got)
	}
}

func TestWidgetDataEscapesID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/widgets/w 1/data" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"temp":5}`))
	}))
	defer srv.Close()

	c, _ := NewWithHTTPClient(srv.URL, srv.Client())
	data, err := c.WidgetData(context.Background(), "w 1")
	if err != nil {
		t.Fatalf("WidgetData: %v", err)
	}
	if string(data) != `{"temp":5}` {
		t.Fatalf("data = %s", data)
	}

	if _, err := c.WidgetData(context.Background(), "  "); err == nil {
		t.Fatalf("blank id should error without a request")
	}
}

func TestSetHabitCompletion(t *testing.T) {
	var got habit.Completion
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/habits/completion" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := NewWithHTTPClient(srv.URL, srv.Client())
	comp := habit.Completion{HabitID: "water", Date: "2026-03-10", Completed: true}
	if err := c.SetHabitCompletion(context.Background(), comp); err != nil {
		t.Fatalf("SetHabitCompletion: %v", err)
	}
	if got != comp {
		t.Fatalf("server saw %+v, want %+v", got, comp)
	}

	if err := c.SetHabitCompletion(context.Background(), habit.Completion{}); err == nil {
		t.Fatalf("empty habit id should error without a request")
	}
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
	}
	for _, tc := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		c, _ := NewWithHTTPClient(srv.URL, srv.Client())
		_, err := c.Widgets(context.Background())
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
		srv.Close()
	}
}

func TestStatusErrorIncludesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "positions must cover every section", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c, _ := NewWithHTTPClient(srv.URL, srv.Client())
	err := c.SetSectionPositions(context.Background(), nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); got != "api: positions must cover every section (status 422)" {
		t.Fatalf("err = %q", got)
	}
}
