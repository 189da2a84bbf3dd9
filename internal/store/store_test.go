package store

import (
	"testing"
	"time"

	"rosterforge/internal/logging"
	"rosterforge/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)

	created := time.Now().UTC().Truncate(time.Second)
	s.TaskSubmitted(model.TaskStatus{
		ID:        "t1",
		Kind:      "individuals",
		Status:    model.StateQueued,
		CreatedAt: created,
	})

	recs, err := s.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].ID != "t1" || recs[0].Status != string(model.StateQueued) {
		t.Fatalf("unexpected record %+v", recs[0])
	}
	if recs[0].FinishedAt != nil {
		t.Fatalf("expected nil finished_at for running task")
	}

	finished := created.Add(2 * time.Second)
	s.TaskFinished(model.TaskStatus{
		ID:     "t1",
		Kind:   "individuals",
		Status: model.StateCompleted,
		Results: []model.ResultRecord{
			{Type: "solo_sheet", Member: "Ada", Link: "https://drive.example/x"},
		},
		FinishedAt: &finished,
	})

	recs, err = s.Recent(10)
	if err != nil {
		t.Fatalf("recent after finish: %v", err)
	}
	if recs[0].Status != string(model.StateCompleted) {
		t.Fatalf("expected completed, got %s", recs[0].Status)
	}
	if recs[0].FinishedAt == nil {
		t.Fatalf("expected finished_at to be set")
	}

	results, err := s.Results("t1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 1 || results[0].Member != "Ada" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestStoreRecentOrderAndLimit(t *testing.T) {
	s := openTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"a", "b", "c"} {
		s.TaskSubmitted(model.TaskStatus{
			ID:        id,
			Kind:      "groups",
			Status:    model.StateQueued,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	recs, err := s.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].ID != "c" || recs[1].ID != "b" {
		t.Fatalf("expected newest first, got %s, %s", recs[0].ID, recs[1].ID)
	}
}

func TestStoreResultsUnknownTask(t *testing.T) {
	s := openTestStore(t)

	results, err := s.Results("missing")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results != nil {
		t.Fatalf("expected nil results for unknown task, got %+v", results)
	}
}
