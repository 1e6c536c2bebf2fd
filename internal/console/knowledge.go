// ABOUTME: Knowledge base page handlers for the active tenant
// ABOUTME: URL ingestion, sequential multi-file upload with per-file statuses, and deletion

package console

import (
	"net/http"
	"strings"

	"github.com/dotstark/ragchat-console/internal/backend"
	"github.com/dotstark/ragchat-console/internal/validate"
)

const expiredPlanMessage = "Your free trial has ended. Upgrade to keep managing your knowledge base."

// uploadStatus is the per-file outcome shown after a batch upload.
type uploadStatus struct {
	Name  string
	Error string // empty means uploaded
}

// knowledgeView bundles everything the knowledge page template needs.
type knowledgeView struct {
	Tenants  []backend.Tenant
	Active   *backend.Tenant
	Items    []backend.KnowledgeItem
	Error    string
	Notice   string
	Uploads  []uploadStatus
	ReadOnly bool
}

// handleKnowledge renders the knowledge base for the active tenant
func (c *Console) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	r, csrfToken := c.ensureCSRFToken(w, r)

	view := c.loadKnowledgeView(r, sess.Token)
	view.ReadOnly = planExpired(sess)
	c.renderKnowledge(w, sess, view, csrfToken)
}

// loadKnowledgeView fetches the tenant list plus the active tenant's items.
// Fetch failures surface as an inline notice, never a hard error page.
func (c *Console) loadKnowledgeView(r *http.Request, token string) knowledgeView {
	var view knowledgeView

	tenants, err := c.backend.ListTenants(r.Context(), token)
	c.observe("list_tenants", err)
	if err != nil {
		c.logger.Warn("failed to list tenants", "error", err)
		view.Notice = backend.Detail(err, "Could not load organizations")
		return view
	}
	view.Tenants = tenants
	view.Active = activeTenant(r, tenants)
	if view.Active == nil {
		return view
	}

	items, err := c.backend.ListKnowledgeItems(r.Context(), token, view.Active.ID)
	c.observe("list_knowledge", err)
	if err != nil {
		c.logger.Warn("failed to list knowledge items", "error", err, "tenant_id", view.Active.ID)
		view.Notice = backend.Detail(err, "Could not load knowledge items")
		return view
	}
	view.Items = items
	return view
}

// handleKnowledgeAddURL ingests one web page into the active tenant
func (c *Console) handleKnowledgeAddURL(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	r, csrfToken := c.ensureCSRFToken(w, r)
	view := c.loadKnowledgeView(r, sess.Token)
	view.ReadOnly = planExpired(sess)

	if view.ReadOnly {
		view.Error = expiredPlanMessage
		c.renderKnowledge(w, sess, view, csrfToken)
		return
	}
	if view.Active == nil {
		view.Error = "Create an organization before adding knowledge."
		c.renderKnowledge(w, sess, view, csrfToken)
		return
	}

	pageURL := strings.TrimSpace(r.FormValue("url"))
	if pageURL == "" {
		view.Error = "Please enter a URL."
		c.renderKnowledge(w, sess, view, csrfToken)
		return
	}

	_, err := c.backend.AddURL(r.Context(), sess.Token, view.Active.ID, pageURL)
	c.observe("add_url", err)
	if err != nil {
		c.logger.Warn("failed to add URL", "error", err, "tenant_id", view.Active.ID)
		view.Error = backend.Detail(err, "Could not add the URL")
		c.renderKnowledge(w, sess, view, csrfToken)
		return
	}

	c.logger.Info("knowledge URL added", "tenant_id", view.Active.ID)
	http.Redirect(w, r, "/knowledge", http.StatusSeeOther)
}

// handleKnowledgeUpload ingests a batch of files one at a time. Validation
// rejections never block other files; the first backend failure aborts the
// remainder with no rollback of files already uploaded.
func (c *Console) handleKnowledgeUpload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)

	if err := r.ParseMultipartForm(validate.MaxUploadSize + 1024); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	r, csrfToken := c.ensureCSRFToken(w, r)
	view := c.loadKnowledgeView(r, sess.Token)
	view.ReadOnly = planExpired(sess)

	if view.ReadOnly {
		view.Error = expiredPlanMessage
		c.renderKnowledge(w, sess, view, csrfToken)
		return
	}
	if view.Active == nil {
		view.Error = "Create an organization before adding knowledge."
		c.renderKnowledge(w, sess, view, csrfToken)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		view.Error = "Please choose at least one file."
		c.renderKnowledge(w, sess, view, csrfToken)
		return
	}
	category := r.FormValue("category")

	checks := make([]validate.FileCheck, len(headers))
	for i, h := range headers {
		checks[i] = validate.FileCheck{Name: h.Filename, Size: h.Size}
	}
	accepted, rejections := validate.Files(checks)

	statuses := make([]uploadStatus, 0, len(headers))
	for _, rej := range rejections {
		statuses = append(statuses, uploadStatus{Name: rej.Name, Error: rej.Error})
	}

	// One upload in flight at a time; a backend failure stops the loop
	aborted := false
	for _, idx := range accepted {
		h := headers[idx]
		if aborted {
			statuses = append(statuses, uploadStatus{Name: h.Filename, Error: "Skipped after an earlier failure"})
			continue
		}

		file, err := h.Open()
		if err != nil {
			c.logger.Warn("failed to open upload", "error", err, "file", h.Filename)
			statuses = append(statuses, uploadStatus{Name: h.Filename, Error: "Could not read the file"})
			aborted = true
			continue
		}

		_, err = c.backend.UploadFile(r.Context(), sess.Token, view.Active.ID, h.Filename, category, file)
		_ = file.Close()
		c.observe("upload_file", err)
		if err != nil {
			c.logger.Warn("upload failed", "error", err, "file", h.Filename, "tenant_id", view.Active.ID)
			statuses = append(statuses, uploadStatus{Name: h.Filename, Error: backend.Detail(err, "Upload failed")})
			aborted = true
			continue
		}
		statuses = append(statuses, uploadStatus{Name: h.Filename})
	}

	// Refresh the list once after the loop so successful uploads show up
	view = c.loadKnowledgeView(r, sess.Token)
	view.ReadOnly = planExpired(sess)
	view.Uploads = statuses
	c.renderKnowledge(w, sess, view, csrfToken)
}

// handleKnowledgeDelete removes one item from the active tenant
func (c *Console) handleKnowledgeDelete(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	itemID := r.PathValue("id")
	if itemID == "" {
		http.Error(w, "Item ID required", http.StatusBadRequest)
		return
	}

	r, csrfToken := c.ensureCSRFToken(w, r)
	view := c.loadKnowledgeView(r, sess.Token)
	view.ReadOnly = planExpired(sess)

	if view.ReadOnly {
		view.Error = expiredPlanMessage
		c.renderKnowledge(w, sess, view, csrfToken)
		return
	}
	if view.Active == nil {
		http.Redirect(w, r, "/knowledge", http.StatusSeeOther)
		return
	}

	err := c.backend.DeleteKnowledgeItem(r.Context(), sess.Token, view.Active.ID, itemID)
	c.observe("delete_knowledge", err)
	if err != nil {
		c.logger.Warn("failed to delete knowledge item", "error", err, "item_id", itemID)
		view.Error = backend.Detail(err, "Could not delete the item")
		c.renderKnowledge(w, sess, view, csrfToken)
		return
	}

	c.logger.Info("knowledge item deleted", "item_id", itemID, "tenant_id", view.Active.ID)
	http.Redirect(w, r, "/knowledge", http.StatusSeeOther)
}
