package drive

import (
	"context"
	"errors"
	"fmt"
)

// ErrAmbiguousName is returned when a folder holds more than one child with
// the target name. The store has no uniqueness constraint, so this can only
// come from foreign writes; creating alongside would make it worse.
var ErrAmbiguousName = errors.New("drive: multiple children share the target name")

// Resolution is the outcome of a find-before-create check
type Resolution struct {
	Exists bool
	Item   Item
}

// Reconcile decides, for a (parent, name) pair, whether a creation should be
// skipped in favor of an existing child. Every worker calls this before any
// remote mutation, which is what makes repeated runs converge instead of
// duplicating artifacts. The check-then-act pair is not atomic against
// concurrent foreign writes; that is accepted (see Reconciler notes in
// DESIGN.md).
func Reconcile(ctx context.Context, gw Gateway, parentID, name string) (Resolution, error) {
	matches, err := gw.FindChildrenByName(ctx, parentID, name)
	if err != nil {
		return Resolution{}, err
	}
	switch len(matches) {
	case 0:
		return Resolution{}, nil
	case 1:
		return Resolution{Exists: true, Item: matches[0]}, nil
	default:
		return Resolution{}, fmt.Errorf("%w: %q under %s (%d matches)", ErrAmbiguousName, name, parentID, len(matches))
	}
}

// ReconcileFolder is Reconcile restricted to folder-typed children. A
// same-named non-folder child is ignored, matching how the folder hierarchy
// was originally built.
func ReconcileFolder(ctx context.Context, gw Gateway, parentID, name string) (Resolution, error) {
	matches, err := gw.FindChildrenByName(ctx, parentID, name)
	if err != nil {
		return Resolution{}, err
	}
	var folders []Item
	for _, m := range matches {
		if m.MimeType == MimeFolder {
			folders = append(folders, m)
		}
	}
	switch len(folders) {
	case 0:
		return Resolution{}, nil
	case 1:
		return Resolution{Exists: true, Item: folders[0]}, nil
	default:
		return Resolution{}, fmt.Errorf("%w: folder %q under %s (%d matches)", ErrAmbiguousName, name, parentID, len(folders))
	}
}

// FindOrCreateFolder reconciles and creates in one step, since every caller
// of ReconcileFolder wants the folder to exist afterwards.
func FindOrCreateFolder(ctx context.Context, gw Gateway, parentID, name string) (Item, bool, error) {
	res, err := ReconcileFolder(ctx, gw, parentID, name)
	if err != nil {
		return Item{}, false, err
	}
	if res.Exists {
		return res.Item, true, nil
	}
	created, err := gw.CreateFolder(ctx, parentID, name)
	if err != nil {
		return Item{}, false, err
	}
	return created, false, nil
}
