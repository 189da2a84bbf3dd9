package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"rosterforge/internal/export"
	"rosterforge/pkg/utils"
)

// DownloadAll exports a Drive folder tree as a zip of PDFs
// @Summary Download a folder as PDFs
// @Description Walk the folder, exporting spreadsheets and documents to PDF and copying everything else verbatim, then stream the result as a zip archive
// @Tags export
// @Produce application/zip
// @Param folderId query string true "Folder ID to export"
// @Param skipIds query string false "Comma-separated file IDs to omit"
// @Success 200 {file} file "Zip archive"
// @Failure 400 {object} map[string]interface{} "Missing folderId"
// @Failure 401 {object} map[string]interface{} "Missing access token"
// @Failure 500 {object} map[string]interface{} "Export failure"
// @Router /download-all [get]
func (h *Handler) DownloadAll(w http.ResponseWriter, r *http.Request) {
	gw := h.gateway(w, r)
	if gw == nil {
		return
	}

	folderID := r.URL.Query().Get("folderId")
	if folderID == "" {
		http.Error(w, "folderId is required", http.StatusBadRequest)
		return
	}

	skip := map[string]bool{}
	if raw := r.URL.Query().Get("skipIds"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				skip[id] = true
			}
		}
	}

	meta, err := gw.GetMetadata(r.Context(), folderID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to resolve folder: %v", err), http.StatusBadRequest)
		return
	}

	tmpDir, err := os.MkdirTemp("", "rosterforge-export-")
	if err != nil {
		http.Error(w, "Failed to create working directory", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	root := export.Sanitize(meta.Name)
	if root == "" {
		root = "export"
	}
	dest := filepath.Join(tmpDir, root)

	walker := export.NewWalker(gw)
	if err := walker.Run(r.Context(), folderID, dest, skip); err != nil {
		h.Log.Printf("download-all: walk %s: %v", folderID, err)
		http.Error(w, fmt.Sprintf("Export failed: %v", err), http.StatusInternalServerError)
		return
	}

	filename := utils.TimestampedName(root, ".zip")
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.ZipDir(tmpDir, w); err != nil {
		// Headers are already out; all we can do is log
		h.Log.Printf("download-all: zip %s: %v", folderID, err)
	}
}
