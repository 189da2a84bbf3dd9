package handler

import (
	"io"
	"net/http"

	"rosterforge/internal/drive"
	"rosterforge/internal/model"
	"rosterforge/internal/roster"
	"rosterforge/internal/worker"
)

const maxRosterUpload = 10 << 20

// rosterUpload pulls the uploaded roster file out of the multipart form.
func rosterUpload(r *http.Request, field string) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxRosterUpload); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

// GenerateIndividuals starts a task creating one feedback sheet per roster name
// @Summary Generate individual feedback sheets
// @Description Upload a roster of names and start an asynchronous task that copies the template once per name into an "Individuals" subfolder
// @Tags generate
// @Accept multipart/form-data
// @Produce json
// @Param folderId formData string true "Destination folder ID"
// @Param indivTemplateId formData string true "Template spreadsheet ID"
// @Param roster formData file true "Roster file (.csv or .xlsx)"
// @Success 200 {object} map[string]interface{} "task_id of the queued task"
// @Failure 400 {object} map[string]interface{} "Bad roster or template"
// @Failure 401 {object} map[string]interface{} "Missing access token"
// @Router /generate-individuals [post]
func (h *Handler) GenerateIndividuals(w http.ResponseWriter, r *http.Request) {
	gw := h.gateway(w, r)
	if gw == nil {
		return
	}

	data, filename, err := rosterUpload(r, "roster")
	if err != nil {
		http.Error(w, "Roster file is required", http.StatusBadRequest)
		return
	}
	folderID := r.FormValue("folderId")
	templateID := r.FormValue("indivTemplateId")
	if folderID == "" || templateID == "" {
		http.Error(w, "folderId and indivTemplateId are required", http.StatusBadRequest)
		return
	}

	names, err := roster.ParseNames(data, filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(names) == 0 {
		http.Error(w, "Roster contains no names", http.StatusBadRequest)
		return
	}
	if err := drive.EnsureSpreadsheetish(r.Context(), gw, templateID, "indivTemplateId"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	run := worker.New(gw).Individuals(names, folderID, worker.Templates{Individual: templateID})
	id := h.Registry.Submit("individuals", len(names), run)

	writeJSON(w, map[string]interface{}{"task_id": id})
}

// GenerateGroups starts a task building group folders with requirement and member sheets
// @Summary Generate group workspaces
// @Description Upload a roster of groups and start an asynchronous task that builds one folder per group with a requirements sheet and one contribution sheet per member
// @Tags generate
// @Accept multipart/form-data
// @Produce json
// @Param folderId formData string true "Destination folder ID"
// @Param groupTemplateId formData string true "Requirements template spreadsheet ID"
// @Param indivGroupTemplateId formData string true "Member contribution template spreadsheet ID"
// @Param roster formData file true "Roster file with Group and Members columns"
// @Success 200 {object} map[string]interface{} "task_id of the queued task"
// @Failure 400 {object} map[string]interface{} "Bad roster or template"
// @Failure 401 {object} map[string]interface{} "Missing access token"
// @Router /generate-groups [post]
func (h *Handler) GenerateGroups(w http.ResponseWriter, r *http.Request) {
	gw := h.gateway(w, r)
	if gw == nil {
		return
	}

	data, filename, err := rosterUpload(r, "roster")
	if err != nil {
		http.Error(w, "Roster file is required", http.StatusBadRequest)
		return
	}
	folderID := r.FormValue("folderId")
	groupTemplate := r.FormValue("groupTemplateId")
	memberTemplate := r.FormValue("indivGroupTemplateId")
	if folderID == "" || groupTemplate == "" || memberTemplate == "" {
		http.Error(w, "folderId, groupTemplateId and indivGroupTemplateId are required", http.StatusBadRequest)
		return
	}

	rows, err := roster.ParseGroupRows(data, filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(rows) == 0 {
		http.Error(w, "Roster contains no groups", http.StatusBadRequest)
		return
	}
	if err := drive.EnsureSpreadsheetish(r.Context(), gw, groupTemplate, "groupTemplateId"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := drive.EnsureSpreadsheetish(r.Context(), gw, memberTemplate, "indivGroupTemplateId"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tmpl := worker.Templates{Group: groupTemplate, GroupMember: memberTemplate}
	run := worker.New(gw).Groups(rows, folderID, tmpl)
	id := h.Registry.Submit("groups", model.TotalUnits(rows), run)

	writeJSON(w, map[string]interface{}{"task_id": id})
}

// GenerateMixed starts a task handling rosters that mix groups and solo students
// @Summary Generate mixed group and solo artifacts
// @Description Rows with more than one member become group workspaces; single-member rows become solo feedback sheets under a shared "Individuals" folder
// @Tags generate
// @Accept multipart/form-data
// @Produce json
// @Param folderId formData string true "Destination folder ID"
// @Param indivTemplateId formData string false "Solo feedback template (required when solo rows exist)"
// @Param groupTemplateId formData string false "Requirements template (required when group rows exist)"
// @Param indivGroupTemplateId formData string false "Member contribution template (required when group rows exist)"
// @Param roster formData file true "Roster file with Group and Members columns"
// @Success 200 {object} map[string]interface{} "task_id of the queued task"
// @Failure 400 {object} map[string]interface{} "Bad roster or missing template for the rows present"
// @Failure 401 {object} map[string]interface{} "Missing access token"
// @Router /generate-mixed [post]
func (h *Handler) GenerateMixed(w http.ResponseWriter, r *http.Request) {
	h.generateMixed(w, r, "roster")
}

// GenerateLegacy is the historical alias of /generate-mixed whose form
// field for the roster file is named "groups".
// @Summary Generate mixed artifacts (legacy form field)
// @Tags generate
// @Accept multipart/form-data
// @Produce json
// @Param folderId formData string true "Destination folder ID"
// @Param groups formData file true "Roster file with Group and Members columns"
// @Success 200 {object} map[string]interface{} "task_id of the queued task"
// @Failure 400 {object} map[string]interface{} "Bad roster or missing template for the rows present"
// @Failure 401 {object} map[string]interface{} "Missing access token"
// @Router /generate [post]
func (h *Handler) GenerateLegacy(w http.ResponseWriter, r *http.Request) {
	h.generateMixed(w, r, "groups")
}

func (h *Handler) generateMixed(w http.ResponseWriter, r *http.Request, field string) {
	gw := h.gateway(w, r)
	if gw == nil {
		return
	}

	data, filename, err := rosterUpload(r, field)
	if err != nil {
		http.Error(w, "Roster file is required", http.StatusBadRequest)
		return
	}
	folderID := r.FormValue("folderId")
	if folderID == "" {
		http.Error(w, "folderId is required", http.StatusBadRequest)
		return
	}

	rows, err := roster.ParseGroupRows(data, filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(rows) == 0 {
		http.Error(w, "Roster contains no rows", http.StatusBadRequest)
		return
	}

	tmpl := worker.Templates{
		Individual:  r.FormValue("indivTemplateId"),
		Group:       r.FormValue("groupTemplateId"),
		GroupMember: r.FormValue("indivGroupTemplateId"),
	}

	// Only the templates the rows actually need have to be present.
	groups, solos := model.SplitMixed(rows)
	if len(groups) > 0 && (tmpl.Group == "" || tmpl.GroupMember == "") {
		http.Error(w, "groupTemplateId and indivGroupTemplateId are required for group rows", http.StatusBadRequest)
		return
	}
	if len(solos) > 0 && tmpl.Individual == "" {
		http.Error(w, "indivTemplateId is required for solo rows", http.StatusBadRequest)
		return
	}
	for _, check := range []struct{ id, label string }{
		{tmpl.Individual, "indivTemplateId"},
		{tmpl.Group, "groupTemplateId"},
		{tmpl.GroupMember, "indivGroupTemplateId"},
	} {
		if check.id == "" {
			continue
		}
		if err := drive.EnsureSpreadsheetish(r.Context(), gw, check.id, check.label); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	total := model.TotalUnits(groups) + len(solos)
	run := worker.New(gw).Mixed(rows, folderID, tmpl)
	id := h.Registry.Submit("mixed", total, run)

	writeJSON(w, map[string]interface{}{"task_id": id})
}
