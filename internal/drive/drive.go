package drive

import (
	"context"
	"errors"
	"io"
)

// Drive mime types the generator and exporter route on
const (
	MimeFolder   = "application/vnd.google-apps.folder"
	MimeSheet    = "application/vnd.google-apps.spreadsheet"
	MimeDoc      = "application/vnd.google-apps.document"
	MimeSlide    = "application/vnd.google-apps.presentation"
	MimeDrawing  = "application/vnd.google-apps.drawing"
	MimeShortcut = "application/vnd.google-apps.shortcut"
	MimePDF      = "application/pdf"
)

// spreadsheetish sources are force-converted to native sheets on copy
var spreadsheetishMimes = map[string]bool{
	MimeSheet: true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true, // .xlsx
	"application/vnd.ms-excel":                          true,                 // .xls
	"text/csv":                                          true,                 // .csv
	"application/vnd.oasis.opendocument.spreadsheet":    true,                 // .ods
}

// Spreadsheetish reports whether a mime type is accepted as a sheet template
func Spreadsheetish(mime string) bool {
	return spreadsheetishMimes[mime]
}

// Item is the metadata subset the service needs for any remote artifact
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Link     string `json:"webViewLink,omitempty"`

	// populated only for shortcut items
	ShortcutTargetID   string `json:"shortcutTargetId,omitempty"`
	ShortcutTargetMime string `json:"shortcutTargetMime,omitempty"`
}

// ChildPage is one page of a folder listing
type ChildPage struct {
	Items         []Item
	NextPageToken string
}

// ErrNotFound is returned for ids the remote store does not know
var ErrNotFound = errors.New("drive: not found")

// Gateway is the capability surface over the remote storage API. All
// mutations and reads go through it so workers and the exporter can be
// tested against an in-memory double.
type Gateway interface {
	GetMetadata(ctx context.Context, id string) (Item, error)
	ListChildren(ctx context.Context, parentID, pageToken string) (ChildPage, error)
	// FindChildrenByName returns every untrashed child of parentID whose
	// name matches exactly (case-sensitive).
	FindChildrenByName(ctx context.Context, parentID, name string) ([]Item, error)
	CreateFolder(ctx context.Context, parentID, name string) (Item, error)
	// CopyAsSpreadsheet copies sourceID under parentID as a native
	// spreadsheet regardless of the source mime type.
	CopyAsSpreadsheet(ctx context.Context, sourceID, name, parentID string) (Item, error)
	// ExportSheetPDF exports a native spreadsheet with the fixed page
	// layout (A4, fit width, gridlines and notes on, frozen panes repeated).
	ExportSheetPDF(ctx context.Context, id string) (io.ReadCloser, error)
	// ExportPDF is the generic document/slide/drawing PDF export
	ExportPDF(ctx context.Context, id string) (io.ReadCloser, error)
	DownloadRaw(ctx context.Context, id string) (io.ReadCloser, error)
}
