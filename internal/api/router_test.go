package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"rosterforge/internal/api/handler"
	"rosterforge/internal/auth"
	"rosterforge/internal/config"
	"rosterforge/internal/drive"
	"rosterforge/internal/drive/drivetest"
	"rosterforge/internal/logging"
	"rosterforge/internal/model"
	"rosterforge/internal/store"
	"rosterforge/internal/task"
	"rosterforge/pkg/router"
)

func newTestServer(t *testing.T) (*httptest.Server, *task.Registry) {
	t.Helper()

	st, err := store.Open(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	reg := task.NewRegistry(time.Hour, st, logging.Discard())
	t.Cleanup(reg.Stop)

	fake := drivetest.New()
	h := handler.New(reg, st, config.Default(), &auth.OAuth{ClientID: "cid", StateSecret: "s"}, logging.Discard(), func(token string) drive.Gateway {
		return fake
	})

	r := router.New()
	RegisterRoutes(r, h)

	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)
	return srv, reg
}

func TestRegisteredRoutes(t *testing.T) {
	r := router.New()

	st, err := store.Open(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	reg := task.NewRegistry(time.Hour, st, logging.Discard())
	defer reg.Stop()

	h := handler.New(reg, st, config.Default(), &auth.OAuth{}, logging.Discard(), func(token string) drive.Gateway {
		return drivetest.New()
	})
	RegisterRoutes(r, h)

	for _, key := range []string{
		"GET:/healthz",
		"POST:/generate-individuals",
		"POST:/generate-groups",
		"POST:/generate-mixed",
		"POST:/generate",
		"GET:/tasks",
		"POST:/tasks/*/cancel",
		"GET:/tasks/*/watch",
		"GET:/tasks/*",
		"GET:/download-all",
		"GET:/login",
		"GET:/auth/callback",
		"GET:/swagger/*",
	} {
		if _, ok := r.Routes()[key]; !ok {
			t.Errorf("route %s not registered", key)
		}
	}
}

func TestHealthzOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestWatchTaskStreamsUntilTerminal(t *testing.T) {
	srv, reg := newTestServer(t)

	release := make(chan struct{})
	id := reg.Submit("individuals", 2, func(ctx context.Context, tk *task.Task) error {
		tk.Progress(1, map[string]interface{}{"member": "Ada"})
		<-release
		tk.Progress(2, map[string]interface{}{"member": "Bob"})
		return nil
	})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/tasks/" + id + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	close(release)

	deadline := time.Now().Add(5 * time.Second)
	var last model.TaskStatus
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&last); err != nil {
			break
		}
		if last.Status.Terminal() {
			break
		}
	}
	if last.Status != model.StateCompleted {
		t.Fatalf("expected a completed snapshot, got %+v", last)
	}
	if last.Progress.Current != 2 {
		t.Fatalf("expected final progress 2, got %d", last.Progress.Current)
	}
}

func TestWatchUnknownTask(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/tasks/nope/watch")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
