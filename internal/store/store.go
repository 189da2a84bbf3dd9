package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rosterforge/internal/logging"
	"rosterforge/internal/model"
)

// Store keeps a durable audit trail of tasks in sqlite. The registry
// remains the source of truth while a task is live; the store only
// records submissions and final outcomes so they survive restarts.
type Store struct {
	db  *sql.DB
	log *logging.Logger
}

// Record is one audited task row, as returned by Recent.
type Record struct {
	ID         string     `json:"task_id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Open opens (or creates) the sqlite database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func Open(path string, log *logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		results TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		finished_at DATETIME
	);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// TaskSubmitted records a freshly queued task.
func (s *Store) TaskSubmitted(st model.TaskStatus) {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO tasks (id, kind, status, created_at) VALUES (?, ?, ?, ?)`,
		st.ID, st.Kind, string(st.Status), st.CreatedAt,
	)
	if err != nil {
		s.log.Printf("store: record submit %s: %v", st.ID, err)
	}
}

// TaskFinished records the terminal outcome of a task, including its
// accumulated results.
func (s *Store) TaskFinished(st model.TaskStatus) {
	results, err := json.Marshal(st.Results)
	if err != nil {
		results = []byte("[]")
	}
	_, err = s.db.Exec(
		`UPDATE tasks SET status = ?, error = ?, results = ?, finished_at = ? WHERE id = ?`,
		string(st.Status), st.Error, string(results), st.FinishedAt, st.ID,
	)
	if err != nil {
		s.log.Printf("store: record finish %s: %v", st.ID, err)
	}
}

// Recent returns up to limit audited tasks, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, kind, status, error, created_at, finished_at
		 FROM tasks ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Kind, &r.Status, &r.Error, &r.CreatedAt, &finished); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Results returns the stored result records of a finished task, or nil
// if the task is unknown or still running.
func (s *Store) Results(id string) ([]model.ResultRecord, error) {
	var raw string
	err := s.db.QueryRow(`SELECT results FROM tasks WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var recs []model.ResultRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
