package task

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"rosterforge/internal/logging"
	"rosterforge/internal/model"
)

// History receives task lifecycle events for durable audit rows. The
// registry itself stays in-memory; history is write-only and never read
// back into live state.
type History interface {
	TaskSubmitted(st model.TaskStatus)
	TaskFinished(st model.TaskStatus)
}

// CancelResult is the outcome of a cancel request
type CancelResult struct {
	Found           bool
	AlreadyTerminal bool
	Status          model.TaskState
}

type entry struct {
	status model.TaskStatus
	cancel context.CancelFunc
}

// Registry owns every live task record. One worker goroutine per task id
// writes; arbitrary pollers read snapshots. Entries for terminal tasks are
// swept after the retention window so long-running processes do not
// accumulate unbounded history.
type Registry struct {
	mu        sync.RWMutex
	tasks     map[string]*entry
	retention time.Duration
	history   History
	log       *logging.Logger
	cron      *cron.Cron
}

// NewRegistry builds an empty registry. history may be nil.
func NewRegistry(retention time.Duration, history History, log *logging.Logger) *Registry {
	if log == nil {
		log = logging.Discard()
	}
	return &Registry{
		tasks:     make(map[string]*entry),
		retention: retention,
		history:   history,
		log:       log,
	}
}

// Runner is one batch worker invocation. It must return nil on full
// completion, the context error when it observed cancellation, and any
// other error to fail the task.
type Runner func(ctx context.Context, t *Task) error

// Submit registers a queued task with a fixed unit total and schedules run
// on its own goroutine. It returns the task id immediately; all remote I/O
// happens out-of-band.
func (r *Registry) Submit(kind string, total int, run Runner) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now().UTC()

	st := model.TaskStatus{
		ID:        id,
		Kind:      kind,
		Status:    model.StateQueued,
		Progress:  model.Progress{Current: 0, Total: total, Percent: 0.0},
		Results:   []model.ResultRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.tasks[id] = &entry{status: st, cancel: cancel}
	r.mu.Unlock()

	if r.history != nil {
		r.history.TaskSubmitted(st)
	}
	r.log.Printf("[SUBMIT] id=%s kind=%s total=%d", id, kind, total)

	go r.execute(ctx, id, run)
	return id
}

func (r *Registry) execute(ctx context.Context, id string, run Runner) {
	defer func() {
		if rec := recover(); rec != nil {
			r.finalize(id, model.StateError, fmt.Sprintf("panic: %v", rec))
		}
	}()

	r.setState(id, model.StateRunning)
	err := run(ctx, &Task{id: id, reg: r, ctx: ctx})
	switch {
	case err == nil:
		r.finalize(id, model.StateCompleted, "")
	case errors.Is(err, context.Canceled):
		r.finalize(id, model.StateCancelled, "")
	default:
		r.finalize(id, model.StateError, err.Error())
	}
}

// Get returns a consistent snapshot of the status record
func (r *Registry) Get(id string) (model.TaskStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tasks[id]
	if !ok {
		return model.TaskStatus{}, false
	}
	return snapshot(e.status), true
}

// Cancel signals the task's worker to stop at its next iteration boundary.
// Terminal tasks are left untouched.
func (r *Registry) Cancel(id string) CancelResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tasks[id]
	if !ok {
		return CancelResult{}
	}
	if e.status.Status.Terminal() {
		return CancelResult{Found: true, AlreadyTerminal: true, Status: e.status.Status}
	}
	e.cancel()
	r.log.Printf("[CANCEL] id=%s status=%s", id, e.status.Status)
	return CancelResult{Found: true, Status: e.status.Status}
}

// Len reports the number of live entries (swept entries excluded)
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// Sweep drops terminal tasks whose finished_at is older than the retention
// window and returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := time.Now().UTC().Add(-r.retention)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.tasks {
		if e.status.Status.Terminal() && e.status.FinishedAt != nil && e.status.FinishedAt.Before(cutoff) {
			delete(r.tasks, id)
			removed++
		}
	}
	if removed > 0 {
		r.log.Printf("[SWEEP] removed=%d remaining=%d", removed, len(r.tasks))
	}
	return removed
}

// StartSweeper schedules Sweep on the given cron spec (e.g. "@every 10m")
func (r *Registry) StartSweeper(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { r.Sweep() }); err != nil {
		return fmt.Errorf("sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	r.cron = c
	return nil
}

// Stop halts the sweeper, if running
func (r *Registry) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// --- mutations, worker-side ---

func (r *Registry) setState(id string, s model.TaskState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tasks[id]
	if !ok || e.status.Status.Terminal() {
		return
	}
	e.status.Status = s
	e.status.UpdatedAt = time.Now().UTC()
}

func (r *Registry) finalize(id string, s model.TaskState, errMsg string) {
	r.mu.Lock()
	e, ok := r.tasks[id]
	if !ok || e.status.Status.Terminal() {
		r.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	e.status.Status = s
	e.status.Error = errMsg
	e.status.UpdatedAt = now
	e.status.FinishedAt = &now
	final := snapshot(e.status)
	r.mu.Unlock()

	if r.history != nil {
		r.history.TaskFinished(final)
	}
	if errMsg != "" {
		r.log.Printf("[%s] id=%s err=%s", s, id, errMsg)
	} else {
		r.log.Printf("[%s] id=%s units=%d/%d", s, id, final.Progress.Current, final.Progress.Total)
	}
}

func (r *Registry) progress(id string, step int, last map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tasks[id]
	if !ok || e.status.Status.Terminal() {
		return
	}
	total := e.status.Progress.Total
	e.status.Progress = model.Progress{
		Current: step,
		Total:   total,
		Percent: round2(float64(step) * 100 / math.Max(1, float64(total))),
	}
	e.status.Last = last
	e.status.UpdatedAt = time.Now().UTC()
}

func (r *Registry) record(id string, rec model.ResultRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.tasks[id]
	if !ok || e.status.Status.Terminal() {
		return
	}
	e.status.Results = append(e.status.Results, rec)
	e.status.UpdatedAt = time.Now().UTC()
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func snapshot(st model.TaskStatus) model.TaskStatus {
	out := st
	out.Results = append([]model.ResultRecord(nil), st.Results...)
	if st.Last != nil {
		last := make(map[string]interface{}, len(st.Last))
		for k, v := range st.Last {
			last[k] = v
		}
		out.Last = last
	}
	if st.FinishedAt != nil {
		t := *st.FinishedAt
		out.FinishedAt = &t
	}
	return out
}
