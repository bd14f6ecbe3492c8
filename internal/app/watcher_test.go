package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alright-hq/alright-client/internal/config"
	"github.com/alright-hq/alright-client/internal/mockserver"
	"github.com/alright-hq/alright-client/pkg/publishers"
)

type sink struct {
	mu     sync.Mutex
	events []publishers.MenuEvent
}

func (s *sink) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.MenuEvent
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		s.mu.Lock()
		s.events = append(s.events, evt)
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *sink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func testConfig(t *testing.T, apiURL, sinkURL string) *config.Config {
	t.Helper()
	pubFile := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := "publishers:\n  - id: hook\n    type: http\n    http:\n      url: " + sinkURL + "\n"
	if err := os.WriteFile(pubFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}
	return &config.Config{
		APIBaseURL:             apiURL,
		APITimeout:             2 * time.Second,
		APIResponseMode:        "decode",
		APIUserAgent:           "alright-test",
		PublishersFile:         pubFile,
		WatchInterval:          time.Hour,
		WatchDays:              []int{0, 1},
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(t.TempDir(), "menus.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func TestWatcherAnnouncesMenusOnce(t *testing.T) {
	api := httptest.NewServer(mockserver.New(mockserver.Options{}).Handler("/api"))
	defer api.Close()
	s := &sink{}
	hook := httptest.NewServer(s.handler(t))
	defer hook.Close()

	w, err := NewWatcher(context.Background(), testConfig(t, api.URL+"/api", hook.URL), nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.close()

	if err := w.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce: %v", err)
	}
	if s.count() != 2 {
		t.Fatalf("expected today and tomorrow announced, got %d", s.count())
	}
	if got := len(s.events[0].Dishes); got != 7 {
		t.Fatalf("expected 7 dishes, got %d", got)
	}
	if s.events[0].Source != api.URL+"/api" {
		t.Fatalf("source = %q", s.events[0].Source)
	}

	if err := w.runOnce(context.Background()); err != nil {
		t.Fatalf("second runOnce: %v", err)
	}
	if s.count() != 2 {
		t.Fatalf("menus announced twice, got %d events", s.count())
	}
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	api := httptest.NewServer(mockserver.New(mockserver.Options{}).Handler("/api"))
	defer api.Close()
	s := &sink{}
	hook := httptest.NewServer(s.handler(t))
	defer hook.Close()

	cfg := testConfig(t, api.URL+"/api", hook.URL)
	cfg.StorageType = "none"
	w, err := NewWatcher(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for s.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if s.count() != 2 {
		t.Fatalf("initial pass should announce 2 menus, got %d", s.count())
	}
}

func TestNewWatcherValidation(t *testing.T) {
	if _, err := NewWatcher(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}

	cfg := testConfig(t, "http://localhost:1/api", "http://localhost:1/hook")
	cfg.PublishersFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewWatcher(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing publishers file")
	}

	cfg = testConfig(t, "http://localhost:1/api", "http://localhost:1/hook")
	cfg.StorageType = "cassandra"
	if _, err := NewWatcher(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unknown storage type")
	}
}

func TestNewAPIClientMode(t *testing.T) {
	cfg := &config.Config{APIBaseURL: "http://localhost:1/api", APIResponseMode: "decode"}

	c, err := NewAPIClient(cfg, "stub", nil)
	if err != nil {
		t.Fatalf("NewAPIClient: %v", err)
	}
	if c.Mode() != "stub" {
		t.Fatalf("mode override ignored, got %s", c.Mode())
	}
	if _, err := NewAPIClient(cfg, "lenient", nil); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
