package drive

import (
	"context"
	"fmt"
)

// EnsureSpreadsheetish verifies a template id resolves to something the
// copy operation can force-convert into a native sheet. label names the
// form field in the returned error.
func EnsureSpreadsheetish(ctx context.Context, gw Gateway, id, label string) error {
	meta, err := gw.GetMetadata(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	if !Spreadsheetish(meta.MimeType) {
		return fmt.Errorf("%s (%s) is not a spreadsheet file: %s; use a native sheet, Excel, CSV or ODS",
			label, meta.Name, meta.MimeType)
	}
	return nil
}
