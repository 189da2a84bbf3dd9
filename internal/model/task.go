package model

import "time"

// TaskState is the lifecycle state of a batch task
type TaskState string

const (
	StateQueued    TaskState = "queued"
	StateRunning   TaskState = "running"
	StateCompleted TaskState = "completed"
	StateCancelled TaskState = "cancelled"
	StateError     TaskState = "error"
)

// Terminal reports whether no further state transition is allowed
func (s TaskState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateError
}

// Progress reports how far a task has advanced through its fixed unit total
type Progress struct {
	Current int     `json:"current"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// ResultRecord describes one unit of remote effect produced by a worker
type ResultRecord struct {
	Type   string `json:"type"`             // folder, group_sheet[_existing], indiv_group_sheet[_existing], solo_sheet[_existing], individuals_folder
	Group  string `json:"group,omitempty"`  // group label, when the unit belongs to a group
	Member string `json:"member,omitempty"` // member name, when the unit is per-person
	Folder string `json:"folder,omitempty"` // link of the containing Individuals folder (solo sheets)
	Link   string `json:"link"`             // webViewLink of the created or reused artifact
}

// TaskStatus is the full status record for one task, returned verbatim by the API
type TaskStatus struct {
	ID         string                 `json:"task_id"`
	Kind       string                 `json:"kind"` // individuals, groups, mixed
	Status     TaskState              `json:"status"`
	Progress   Progress               `json:"progress"`
	Results    []ResultRecord         `json:"results"`
	Last       map[string]interface{} `json:"last,omitempty"` // meta of the most recent unit
	Error      string                 `json:"error,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
	FinishedAt *time.Time             `json:"finished_at,omitempty"`
}
