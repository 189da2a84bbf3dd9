package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const watchPollInterval = 250 * time.Millisecond

// GetTask retrieves the live status of a task
// @Summary Get task status
// @Description Retrieve the current status, progress and results of a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} model.TaskStatus "Task status"
// @Failure 404 {object} map[string]interface{} "Task not found"
// @Router /tasks/{id} [get]
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	// Extract task ID from URL path
	path := r.URL.Path
	prefix := "/tasks/"

	if !strings.HasPrefix(path, prefix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	taskID := path[len(prefix):]
	if taskID == "" {
		http.Error(w, "Task ID is required", http.StatusBadRequest)
		return
	}

	st, ok := h.Registry.Get(taskID)
	if !ok {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	writeJSON(w, st)
}

// CancelTask requests cooperative cancellation of a running task
// @Summary Cancel task
// @Description Ask a running task to stop at its next unit boundary; a task that already finished reports its terminal status instead
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} map[string]interface{} "Cancellation requested or terminal status"
// @Failure 404 {object} map[string]interface{} "Task not found"
// @Router /tasks/{id}/cancel [post]
func (h *Handler) CancelTask(w http.ResponseWriter, r *http.Request) {
	// Extract task ID from URL path
	path := r.URL.Path
	prefix := "/tasks/"
	suffix := "/cancel"

	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	taskID := path[len(prefix) : len(path)-len(suffix)]
	if taskID == "" {
		http.Error(w, "Task ID is required", http.StatusBadRequest)
		return
	}

	res := h.Registry.Cancel(taskID)
	if !res.Found {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if res.AlreadyTerminal {
		writeJSON(w, map[string]interface{}{
			"task_id": taskID,
			"status":  res.Status,
		})
		return
	}

	writeJSON(w, map[string]interface{}{
		"task_id": taskID,
		"status":  "cancelling",
	})
}

// ListTasks returns the recent task audit history
// @Summary List recent tasks
// @Description Recent tasks from the durable audit store, newest first
// @Tags tasks
// @Produce json
// @Param limit query int false "Maximum rows to return (default 50)"
// @Success 200 {object} map[string]interface{} "Recent tasks"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	tasks, err := h.Store.Recent(limit)
	if err != nil {
		http.Error(w, "Failed to fetch tasks", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// WatchTask streams status snapshots over a websocket
// @Summary Watch a task
// @Description Upgrade to a websocket and receive a status snapshot whenever the task changes; the connection closes after the terminal snapshot
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 101 {string} string "Switching protocols"
// @Failure 404 {object} map[string]interface{} "Task not found"
// @Router /tasks/{id}/watch [get]
func (h *Handler) WatchTask(w http.ResponseWriter, r *http.Request) {
	// Extract task ID from URL path
	path := r.URL.Path
	prefix := "/tasks/"
	suffix := "/watch"

	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	taskID := path[len(prefix) : len(path)-len(suffix)]
	st, ok := h.Registry.Get(taskID)
	if !ok {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(st); err != nil {
		return
	}
	lastSent := st.UpdatedAt

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	for !st.Status.Terminal() {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		st, ok = h.Registry.Get(taskID)
		if !ok {
			// Swept from the registry mid-watch
			return
		}
		if !st.UpdatedAt.After(lastSent) {
			continue
		}
		if err := conn.WriteJSON(st); err != nil {
			return
		}
		lastSent = st.UpdatedAt
	}
}
