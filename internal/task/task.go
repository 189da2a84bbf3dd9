package task

import (
	"context"

	"rosterforge/internal/model"
)

// Task is the worker-side handle to one registry entry. All status
// mutations for a task id flow through its handle, which keeps the single
// writer guarantee.
type Task struct {
	id  string
	reg *Registry
	ctx context.Context
}

// ID returns the task identifier
func (t *Task) ID() string { return t.id }

// Err surfaces the cooperative cancellation signal. Workers poll it once
// per iteration boundary, never mid-call, so an in-flight remote call
// always completes.
func (t *Task) Err() error {
	return t.ctx.Err()
}

// Progress publishes the step counter and the meta of the unit just done
func (t *Task) Progress(step int, last map[string]interface{}) {
	t.reg.progress(t.id, step, last)
}

// Record appends one result to the task's append-only result list
func (t *Task) Record(rec model.ResultRecord) {
	t.reg.record(t.id, rec)
}
