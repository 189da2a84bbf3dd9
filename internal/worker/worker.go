// Package worker holds the batch state machines that turn a parsed roster
// into remote folders and sheet copies, publishing progress into the task
// registry as they go.
package worker

import (
	"context"
	"fmt"

	"rosterforge/internal/drive"
	"rosterforge/internal/model"
	"rosterforge/internal/task"
)

const (
	individualsFolderName = "Individuals"
	soloSheetSuffix       = " - Individual Feedback"
	contributionSuffix    = " - Individual Contribution"
	requirementsSuffix    = " - Requirements"
)

// Templates carries the source artifact ids a flow copies from. Only the
// ids the flow needs have to be set.
type Templates struct {
	Individual  string // solo feedback sheets
	Group       string // per-group requirements sheet
	GroupMember string // per-member contribution sheet
}

// Runner builds task runners bound to one gateway (one user's credentials)
type Runner struct {
	gw drive.Gateway
}

// New wraps a gateway
func New(gw drive.Gateway) *Runner {
	return &Runner{gw: gw}
}

// Individuals returns the runner for a flat name list: every name becomes a
// feedback sheet inside one shared "Individuals" subfolder. Cancellation is
// checked before each name.
func (r *Runner) Individuals(names []string, rootFolderID string, tmpl Templates) task.Runner {
	return func(ctx context.Context, t *task.Task) error {
		// remote calls are never aborted mid-flight; t.Err() below is the
		// only place cancellation takes effect
		ctx = context.WithoutCancel(ctx)
		folder, _, err := drive.FindOrCreateFolder(ctx, r.gw, rootFolderID, individualsFolderName)
		if err != nil {
			return err
		}
		for i, name := range names {
			if err := t.Err(); err != nil {
				return err
			}
			existing, err := r.soloSheet(ctx, t, folder, name, tmpl.Individual, true)
			if err != nil {
				return err
			}
			meta := map[string]interface{}{"member": name}
			if existing {
				meta["skipped"] = true
			}
			t.Progress(i+1, meta)
		}
		return nil
	}
}

// Groups returns the runner for group rows: per row one "Group {label}"
// folder, one requirements sheet and one contribution sheet per member.
// Cancellation is observed at row boundaries only; a row in flight always
// finishes.
func (r *Runner) Groups(rows []model.GroupRow, rootFolderID string, tmpl Templates) task.Runner {
	return func(ctx context.Context, t *task.Task) error {
		ctx = context.WithoutCancel(ctx)
		step := 0
		for _, row := range rows {
			if err := t.Err(); err != nil {
				return err
			}
			if err := r.groupRow(ctx, t, row, rootFolderID, tmpl, &step); err != nil {
				return err
			}
		}
		return nil
	}
}

// Mixed returns the runner used by the legacy single-endpoint flow: rows
// with more than one member are groups, single-member rows are deferred
// into a solo pass against a lazily created "Individuals" subfolder.
func (r *Runner) Mixed(rows []model.GroupRow, rootFolderID string, tmpl Templates) task.Runner {
	groups, solos := model.SplitMixed(rows)
	return func(ctx context.Context, t *task.Task) error {
		ctx = context.WithoutCancel(ctx)
		step := 0
		for _, row := range groups {
			if err := t.Err(); err != nil {
				return err
			}
			if err := r.groupRow(ctx, t, row, rootFolderID, tmpl, &step); err != nil {
				return err
			}
		}

		if len(solos) == 0 {
			return nil
		}
		folder, _, err := drive.FindOrCreateFolder(ctx, r.gw, rootFolderID, individualsFolderName)
		if err != nil {
			return err
		}
		t.Record(model.ResultRecord{Type: "individuals_folder", Link: folder.Link})

		for _, name := range solos {
			if err := t.Err(); err != nil {
				return err
			}
			if _, err := r.soloSheet(ctx, t, folder, name, tmpl.Individual, false); err != nil {
				return err
			}
			step++
			t.Progress(step, map[string]interface{}{"member": name, "op": "solo"})
		}
		return nil
	}
}

// groupRow performs the three-part unit for one roster row, advancing step
// and publishing progress after every part.
func (r *Runner) groupRow(ctx context.Context, t *task.Task, row model.GroupRow, rootFolderID string, tmpl Templates, step *int) error {
	folderName := "Group " + row.Label
	folder, _, err := drive.FindOrCreateFolder(ctx, r.gw, rootFolderID, folderName)
	if err != nil {
		return err
	}
	t.Record(model.ResultRecord{Type: "folder", Group: row.Label, Link: folder.Link})
	*step++
	t.Progress(*step, map[string]interface{}{"group": row.Label, "op": "folder"})

	sheetName := folderName + requirementsSuffix
	res, err := drive.Reconcile(ctx, r.gw, folder.ID, sheetName)
	if err != nil {
		return err
	}
	if res.Exists {
		t.Record(model.ResultRecord{Type: "group_sheet_existing", Group: row.Label, Link: res.Item.Link})
	} else {
		copy, err := r.gw.CopyAsSpreadsheet(ctx, tmpl.Group, sheetName, folder.ID)
		if err != nil {
			return fmt.Errorf("group %s requirements sheet: %w", row.Label, err)
		}
		t.Record(model.ResultRecord{Type: "group_sheet", Group: row.Label, Link: copy.Link})
	}
	*step++
	t.Progress(*step, map[string]interface{}{"group": row.Label, "op": "group_sheet"})

	for _, member := range row.Members {
		target := member + contributionSuffix
		res, err := drive.Reconcile(ctx, r.gw, folder.ID, target)
		if err != nil {
			return err
		}
		if res.Exists {
			t.Record(model.ResultRecord{Type: "indiv_group_sheet_existing", Group: row.Label, Member: member, Link: res.Item.Link})
		} else {
			copy, err := r.gw.CopyAsSpreadsheet(ctx, tmpl.GroupMember, target, folder.ID)
			if err != nil {
				return fmt.Errorf("contribution sheet for %s: %w", member, err)
			}
			t.Record(model.ResultRecord{Type: "indiv_group_sheet", Group: row.Label, Member: member, Link: copy.Link})
		}
		*step++
		t.Progress(*step, map[string]interface{}{"group": row.Label, "member": member, "op": "indiv"})
	}
	return nil
}

// soloSheet reconciles and copies one individual feedback sheet. withFolder
// controls whether the record carries the containing folder's link, which
// the individuals-only flow does and the mixed flow does not.
func (r *Runner) soloSheet(ctx context.Context, t *task.Task, folder drive.Item, name, templateID string, withFolder bool) (existing bool, err error) {
	target := name + soloSheetSuffix
	res, err := drive.Reconcile(ctx, r.gw, folder.ID, target)
	if err != nil {
		return false, err
	}
	rec := model.ResultRecord{Member: name}
	if withFolder {
		rec.Folder = folder.Link
	}
	if res.Exists {
		rec.Type = "solo_sheet_existing"
		rec.Link = res.Item.Link
		t.Record(rec)
		return true, nil
	}
	copy, err := r.gw.CopyAsSpreadsheet(ctx, templateID, target, folder.ID)
	if err != nil {
		return false, fmt.Errorf("feedback sheet for %s: %w", name, err)
	}
	rec.Type = "solo_sheet"
	rec.Link = copy.Link
	t.Record(rec)
	return false, nil
}
