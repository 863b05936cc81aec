package store

import (
	"context"
	"testing"
	"time"
)

func TestWatchReportsWidgetWrites(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := s.WriteRaw("widget:w-1", []byte(`{"temp":2}`)); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}

	// Writes are coalesced, so keep draining until our key shows up.
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Key == "widget:w-1" {
				return
			}
		case <-deadline:
			t.Fatalf("widget write never reported")
		}
	}
}

func TestWatchReportsCatalogWrites(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := s.WriteRaw("sections", []byte(`[]`)); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Key == "sections" {
				return
			}
		case <-deadline:
			t.Fatalf("catalog write never reported")
		}
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	cancel()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("watch channel did not close after cancel")
		}
	}
}
