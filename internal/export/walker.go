// Package export turns a remote folder tree into a local mirror of PDFs
// and raw files, ready for zip packaging.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rosterforge/internal/drive"
)

// ErrNotPDF marks an export response that was not actually PDF content.
// Saving such a payload under a .pdf name would hide the failure from the
// user, so it is surfaced loudly instead.
var ErrNotPDF = errors.New("export: response is not a PDF")

// Walker replicates a remote folder tree under a local directory
type Walker struct {
	gw drive.Gateway
}

func NewWalker(gw drive.Gateway) *Walker {
	return &Walker{gw: gw}
}

// Run walks folderID recursively into destRoot. Entries whose id is in
// skip are omitted entirely; everything else is routed by type: folders
// recurse, native sheets use the fixed-layout PDF export, document-like
// types use the generic PDF export, shortcuts are resolved first and
// anything else is downloaded unchanged.
func (w *Walker) Run(ctx context.Context, folderID, destRoot string, skip map[string]bool) error {
	return w.walk(ctx, folderID, destRoot, skip)
}

func (w *Walker) walk(ctx context.Context, folderID, dir string, skip map[string]bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	pageToken := ""
	for {
		page, err := w.gw.ListChildren(ctx, folderID, pageToken)
		if err != nil {
			return err
		}
		for _, it := range page.Items {
			if skip[it.ID] {
				continue
			}
			if err := w.route(ctx, it, dir, skip); err != nil {
				return err
			}
		}
		if page.NextPageToken == "" {
			return nil
		}
		pageToken = page.NextPageToken
	}
}

func (w *Walker) route(ctx context.Context, it drive.Item, dir string, skip map[string]bool) error {
	switch it.MimeType {
	case drive.MimeFolder:
		return w.walk(ctx, it.ID, filepath.Join(dir, Sanitize(it.Name)), skip)
	case drive.MimeSheet:
		rc, err := w.gw.ExportSheetPDF(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("export sheet %q: %w", it.Name, err)
		}
		return w.savePDF(rc, dir, it.Name)
	case drive.MimeDoc, drive.MimeSlide, drive.MimeDrawing:
		rc, err := w.gw.ExportPDF(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("export %q: %w", it.Name, err)
		}
		return w.savePDF(rc, dir, it.Name)
	case drive.MimeShortcut:
		target, err := w.resolveShortcut(ctx, it)
		if err != nil {
			return err
		}
		if skip[target.ID] {
			return nil
		}
		return w.route(ctx, target, dir, skip)
	default:
		rc, err := w.gw.DownloadRaw(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("download %q: %w", it.Name, err)
		}
		return save(rc, filepath.Join(dir, Sanitize(it.Name)))
	}
}

// resolveShortcut follows a shortcut to its target's metadata so the target
// can be routed like a directly listed child.
func (w *Walker) resolveShortcut(ctx context.Context, it drive.Item) (drive.Item, error) {
	targetID := it.ShortcutTargetID
	if targetID == "" {
		meta, err := w.gw.GetMetadata(ctx, it.ID)
		if err != nil {
			return drive.Item{}, fmt.Errorf("resolve shortcut %q: %w", it.Name, err)
		}
		targetID = meta.ShortcutTargetID
	}
	if targetID == "" {
		return drive.Item{}, fmt.Errorf("resolve shortcut %q: no target", it.Name)
	}
	target, err := w.gw.GetMetadata(ctx, targetID)
	if err != nil {
		return drive.Item{}, fmt.Errorf("resolve shortcut %q target: %w", it.Name, err)
	}
	return target, nil
}

// savePDF validates the payload actually is PDF before writing it under a
// .pdf name.
func (w *Walker) savePDF(rc io.ReadCloser, dir, name string) error {
	defer rc.Close()

	head := make([]byte, 5)
	n, err := io.ReadFull(rc, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("export %q: %w", name, err)
	}
	if string(head[:n]) != "%PDF-" {
		return fmt.Errorf("%w: %q", ErrNotPDF, name)
	}

	out := filepath.Join(dir, Sanitize(name)+".pdf")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(head[:n]); err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		return fmt.Errorf("write %q: %w", out, err)
	}
	return nil
}

func save(rc io.ReadCloser, path string) error {
	defer rc.Close()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, rc); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// Sanitize makes a remote display name safe for local filesystems:
// forbidden characters become underscores, surrounding whitespace and
// trailing dots go away.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(strings.TrimSpace(b.String()), " .")
}
