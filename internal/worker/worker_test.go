package worker_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"rosterforge/internal/drive"
	"rosterforge/internal/drive/drivetest"
	"rosterforge/internal/model"
	"rosterforge/internal/task"
	"rosterforge/internal/worker"
)

func waitTerminal(t *testing.T, r *task.Registry, id string) model.TaskStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		st, ok := r.Get(id)
		if !ok {
			t.Fatalf("task %s disappeared", id)
		}
		if st.Status.Terminal() {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never finished", id)
	return model.TaskStatus{}
}

func newFixture() (*drivetest.Fake, drive.Item, worker.Templates) {
	fake := drivetest.New()
	root := fake.Add("", drive.Item{Name: "Course", MimeType: drive.MimeFolder})
	indiv := fake.Add("", drive.Item{Name: "Indiv Template", MimeType: drive.MimeSheet})
	group := fake.Add("", drive.Item{Name: "Group Template", MimeType: drive.MimeSheet})
	member := fake.Add("", drive.Item{Name: "Member Template", MimeType: drive.MimeSheet})
	return fake, root, worker.Templates{Individual: indiv.ID, Group: group.ID, GroupMember: member.ID}
}

func TestIndividualsFlow(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)
	names := []string{"Alice", "Bob"}

	id := reg.Submit("individuals", len(names), worker.New(fake).Individuals(names, root.ID, tmpl))
	st := waitTerminal(t, reg, id)

	if st.Status != model.StateCompleted {
		t.Fatalf("status = %s (%s)", st.Status, st.Error)
	}
	if len(st.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(st.Results))
	}
	for i, name := range names {
		r := st.Results[i]
		if r.Type != "solo_sheet" || r.Member != name || r.Link == "" || r.Folder == "" {
			t.Errorf("result[%d] = %+v", i, r)
		}
	}
	if st.Progress.Current != 2 || st.Progress.Percent != 100.0 {
		t.Errorf("progress = %+v", st.Progress)
	}

	// one Individuals folder, one sheet per name
	if fake.FolderCreates != 1 || fake.Copies != 2 {
		t.Errorf("creates = %d copies = %d", fake.FolderCreates, fake.Copies)
	}
}

func TestIndividualsIdempotent(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)
	names := []string{"Alice", "Bob", "Carol"}

	first := reg.Submit("individuals", len(names), worker.New(fake).Individuals(names, root.ID, tmpl))
	waitTerminal(t, reg, first)
	copiesAfterFirst := fake.Copies

	second := reg.Submit("individuals", len(names), worker.New(fake).Individuals(names, root.ID, tmpl))
	st := waitTerminal(t, reg, second)

	if st.Status != model.StateCompleted {
		t.Fatalf("status = %s (%s)", st.Status, st.Error)
	}
	if fake.Copies != copiesAfterFirst || fake.FolderCreates != 1 {
		t.Errorf("second run mutated the store: copies %d -> %d, folders %d",
			copiesAfterFirst, fake.Copies, fake.FolderCreates)
	}
	for i, r := range st.Results {
		if r.Type != "solo_sheet_existing" {
			t.Errorf("result[%d].Type = %s, want solo_sheet_existing", i, r.Type)
		}
	}
}

func TestGroupsFlow(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)
	rows := []model.GroupRow{
		{Label: "1", Members: []string{"Alice", "Bob"}},
		{Label: "2", Members: []string{"Carol", "Dan", "Eve"}},
	}
	total := model.TotalUnits(rows) // (2+2)+(2+3) = 9

	id := reg.Submit("groups", total, worker.New(fake).Groups(rows, root.ID, tmpl))
	st := waitTerminal(t, reg, id)

	if st.Status != model.StateCompleted {
		t.Fatalf("status = %s (%s)", st.Status, st.Error)
	}
	if st.Progress.Current != 9 || st.Progress.Total != 9 {
		t.Errorf("progress = %+v", st.Progress)
	}

	wantTypes := []string{
		"folder", "group_sheet", "indiv_group_sheet", "indiv_group_sheet",
		"folder", "group_sheet", "indiv_group_sheet", "indiv_group_sheet", "indiv_group_sheet",
	}
	if len(st.Results) != len(wantTypes) {
		t.Fatalf("results = %d, want %d", len(st.Results), len(wantTypes))
	}
	for i, want := range wantTypes {
		if st.Results[i].Type != want {
			t.Errorf("result[%d].Type = %s, want %s", i, st.Results[i].Type, want)
		}
	}
	if st.Results[0].Group != "1" || st.Results[4].Group != "2" {
		t.Error("group labels not carried through")
	}
}

func TestGroupsIdempotent(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)
	rows := []model.GroupRow{{Label: "1", Members: []string{"Alice", "Bob"}}}

	waitTerminal(t, reg, reg.Submit("groups", model.TotalUnits(rows), worker.New(fake).Groups(rows, root.ID, tmpl)))
	copies, folders := fake.Copies, fake.FolderCreates

	st := waitTerminal(t, reg, reg.Submit("groups", model.TotalUnits(rows), worker.New(fake).Groups(rows, root.ID, tmpl)))
	if fake.Copies != copies || fake.FolderCreates != folders {
		t.Error("second run created artifacts")
	}
	for _, r := range st.Results {
		if r.Type != "folder" && !strings.HasSuffix(r.Type, "_existing") {
			t.Errorf("unexpected non-existing result on rerun: %s", r.Type)
		}
	}
}

func TestMixedFlow(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)
	rows := []model.GroupRow{
		{Label: "1", Members: []string{"A", "B"}},
		{Label: "2", Members: []string{"C"}},
	}
	groups, solos := model.SplitMixed(rows)
	total := model.TotalUnits(groups) + len(solos)
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}

	id := reg.Submit("mixed", total, worker.New(fake).Mixed(rows, root.ID, tmpl))
	st := waitTerminal(t, reg, id)

	if st.Status != model.StateCompleted {
		t.Fatalf("status = %s (%s)", st.Status, st.Error)
	}
	wantTypes := []string{"folder", "group_sheet", "indiv_group_sheet", "indiv_group_sheet",
		"individuals_folder", "solo_sheet"}
	if len(st.Results) != len(wantTypes) {
		t.Fatalf("results = %v", st.Results)
	}
	for i, want := range wantTypes {
		if st.Results[i].Type != want {
			t.Errorf("result[%d].Type = %s, want %s", i, st.Results[i].Type, want)
		}
	}
	if st.Progress.Current != 5 {
		t.Errorf("progress = %+v", st.Progress)
	}
	// Group 2 must not have its own folder: its one member went solo
	if got, _ := fake.FindChildrenByName(context.Background(), root.ID, "Group 2"); len(got) != 0 {
		t.Error("solo row produced a group folder")
	}
}

func TestMixedNoSolosSkipsIndividualsFolder(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)
	rows := []model.GroupRow{{Label: "1", Members: []string{"A", "B"}}}

	st := waitTerminal(t, reg, reg.Submit("mixed", model.TotalUnits(rows), worker.New(fake).Mixed(rows, root.ID, tmpl)))
	if st.Status != model.StateCompleted {
		t.Fatalf("status = %s", st.Status)
	}
	if got, _ := fake.FindChildrenByName(context.Background(), root.ID, "Individuals"); len(got) != 0 {
		t.Error("Individuals folder created with no solo rows")
	}
}

// copyGate wraps the fake so a test can cancel the task right after a
// specific copy lands, before the next iteration boundary.
type copyGate struct {
	*drivetest.Fake
	after  int
	copies int
	fire   func()
}

func (g *copyGate) CopyAsSpreadsheet(ctx context.Context, sourceID, name, parentID string) (drive.Item, error) {
	it, err := g.Fake.CopyAsSpreadsheet(ctx, sourceID, name, parentID)
	if err == nil {
		g.copies++
		if g.copies == g.after && g.fire != nil {
			g.fire()
		}
	}
	return it, err
}

func TestIndividualsCancellation(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)
	names := []string{"Alice", "Bob", "Carol", "Dan"}

	var taskID string
	submitted := make(chan struct{})
	gate := &copyGate{Fake: fake, after: 2, fire: func() {
		<-submitted
		reg.Cancel(taskID)
	}}

	taskID = reg.Submit("individuals", len(names), worker.New(gate).Individuals(names, root.ID, tmpl))
	close(submitted)
	st := waitTerminal(t, reg, taskID)

	if st.Status != model.StateCancelled {
		t.Fatalf("status = %s, want cancelled", st.Status)
	}
	// the in-flight unit finished, nothing after it started
	if len(st.Results) != 2 || fake.Copies != 2 {
		t.Errorf("results = %d copies = %d, want 2 and 2", len(st.Results), fake.Copies)
	}
}

func TestGroupsRowFinishesBeforeCancel(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)
	rows := []model.GroupRow{
		{Label: "1", Members: []string{"A", "B"}},
		{Label: "2", Members: []string{"C", "D"}},
	}

	var taskID string
	submitted := make(chan struct{})
	// fire right after Group 1's requirements sheet: the rest of row 1
	// must still complete, row 2 must never start
	gate := &copyGate{Fake: fake, after: 1, fire: func() {
		<-submitted
		reg.Cancel(taskID)
	}}

	taskID = reg.Submit("groups", model.TotalUnits(rows), worker.New(gate).Groups(rows, root.ID, tmpl))
	close(submitted)
	st := waitTerminal(t, reg, taskID)

	if st.Status != model.StateCancelled {
		t.Fatalf("status = %s, want cancelled", st.Status)
	}
	if st.Progress.Current != 4 { // folder + sheet + 2 members of row 1
		t.Errorf("progress.Current = %d, want 4", st.Progress.Current)
	}
	if got, _ := fake.FindChildrenByName(context.Background(), root.ID, "Group 2"); len(got) != 0 {
		t.Error("row 2 started despite cancellation")
	}
}

func TestGatewayErrorFailsTask(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)

	fake.Err = io.ErrUnexpectedEOF
	st := waitTerminal(t, reg, reg.Submit("individuals", 1,
		worker.New(fake).Individuals([]string{"Alice"}, root.ID, tmpl)))

	if st.Status != model.StateError {
		t.Fatalf("status = %s, want error", st.Status)
	}
	if st.Error == "" {
		t.Error("error description missing")
	}
	if st.FinishedAt == nil {
		t.Error("finished_at missing")
	}
}

func TestAmbiguousNameFailsTask(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)

	indiv := fake.Add(root.ID, drive.Item{Name: "Individuals", MimeType: drive.MimeFolder})
	fake.Add(indiv.ID, drive.Item{Name: "Alice - Individual Feedback", MimeType: drive.MimeSheet})
	fake.Add(indiv.ID, drive.Item{Name: "Alice - Individual Feedback", MimeType: drive.MimeSheet})

	st := waitTerminal(t, reg, reg.Submit("individuals", 1,
		worker.New(fake).Individuals([]string{"Alice"}, root.ID, tmpl)))

	if st.Status != model.StateError {
		t.Fatalf("status = %s, want error", st.Status)
	}
	if !strings.Contains(st.Error, "multiple children") {
		t.Errorf("error = %q", st.Error)
	}
}

// ctxGate wraps the fake with a copy that respects ctx the way the real
// HTTP client does, and fires cancellation while a copy is in flight.
type ctxGate struct {
	*drivetest.Fake
	fire      func()
	fired     bool
	ctxBroken bool
}

func (g *ctxGate) CopyAsSpreadsheet(ctx context.Context, sourceID, name, parentID string) (drive.Item, error) {
	if !g.fired {
		g.fired = true
		g.fire()
	}
	select {
	case <-ctx.Done():
		g.ctxBroken = true
		return drive.Item{}, ctx.Err()
	default:
	}
	return g.Fake.CopyAsSpreadsheet(ctx, sourceID, name, parentID)
}

func TestGroupsRowSurvivesCancelDuringRemoteCall(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)
	rows := []model.GroupRow{
		{Label: "1", Members: []string{"A", "B"}},
		{Label: "2", Members: []string{"C"}},
	}

	var taskID string
	submitted := make(chan struct{})
	cancelled := make(chan struct{})
	// cancel while the requirements-sheet copy is still executing; every
	// later call sees the cancelled registry ctx if the worker leaks it
	gate := &ctxGate{Fake: fake, fire: func() {
		<-submitted
		reg.Cancel(taskID)
		close(cancelled)
	}}

	taskID = reg.Submit("groups", model.TotalUnits(rows), worker.New(gate).Groups(rows, root.ID, tmpl))
	close(submitted)
	<-cancelled
	st := waitTerminal(t, reg, taskID)

	if st.Status != model.StateCancelled {
		t.Fatalf("status = %s, want cancelled", st.Status)
	}
	if gate.ctxBroken {
		t.Fatal("a remote call was aborted mid-flight")
	}
	// row 1 completed in full, row 2 never started
	if st.Progress.Current != 4 {
		t.Errorf("progress.Current = %d, want 4", st.Progress.Current)
	}
	if len(st.Results) != 4 {
		t.Errorf("results = %d, want 4", len(st.Results))
	}
	if got, _ := fake.FindChildrenByName(context.Background(), root.ID, "Group 2"); len(got) != 0 {
		t.Error("row 2 started despite cancellation")
	}
}

func TestIndividualsSheetSurvivesCancelDuringRemoteCall(t *testing.T) {
	fake, root, tmpl := newFixture()
	reg := task.NewRegistry(time.Hour, nil, nil)
	names := []string{"Alice", "Bob"}

	var taskID string
	submitted := make(chan struct{})
	cancelled := make(chan struct{})
	gate := &ctxGate{Fake: fake, fire: func() {
		<-submitted
		reg.Cancel(taskID)
		close(cancelled)
	}}

	taskID = reg.Submit("individuals", len(names), worker.New(gate).Individuals(names, root.ID, tmpl))
	close(submitted)
	<-cancelled
	st := waitTerminal(t, reg, taskID)

	if st.Status != model.StateCancelled {
		t.Fatalf("status = %s, want cancelled", st.Status)
	}
	if gate.ctxBroken {
		t.Fatal("a remote call was aborted mid-flight")
	}
	// Alice's in-flight sheet landed, Bob's never started
	if len(st.Results) != 1 || fake.Copies != 1 {
		t.Errorf("results = %d copies = %d, want 1 and 1", len(st.Results), fake.Copies)
	}
}
