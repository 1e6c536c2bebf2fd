// ABOUTME: Organizations page and the 4-step tenant setup wizard
// ABOUTME: Wizard drafts live server-side per session; only step 1 is validated

package console

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dotstark/ragchat-console/internal/backend"
	"github.com/dotstark/ragchat-console/internal/validate"
)

// Wizard step bounds. Step 1 is the name, 2 social links, 3 webhook tokens,
// 4 messaging bot config.
const (
	wizardFirstStep = 1
	wizardLastStep  = 4
)

// wizardState is one session's in-progress tenant draft.
type wizardState struct {
	Step     int
	TenantID int64 // 0 means the wizard creates a new tenant

	Name             string
	FBPageURL        string
	InstaPageURL     string
	FBVerifyToken    string
	FBAccessToken    string
	InstaAccessToken string
	TelegramBotToken string
	TelegramChatID   string
}

// getWizard returns a copy of the session's draft, or nil. Handlers mutate
// the copy and publish it back with setWizard, so concurrent requests never
// share a draft.
func (c *Console) getWizard(sessionID string) *wizardState {
	c.wizardMu.Lock()
	defer c.wizardMu.Unlock()
	ws, ok := c.wizards[sessionID]
	if !ok {
		return nil
	}
	cp := *ws
	return &cp
}

func (c *Console) setWizard(sessionID string, ws *wizardState) {
	c.wizardMu.Lock()
	defer c.wizardMu.Unlock()
	cp := *ws
	c.wizards[sessionID] = &cp
}

func (c *Console) clearWizard(sessionID string) {
	c.wizardMu.Lock()
	defer c.wizardMu.Unlock()
	delete(c.wizards, sessionID)
}

// handleOrganizations renders the tenant list
func (c *Console) handleOrganizations(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	r, csrfToken := c.ensureCSRFToken(w, r)

	tenants, err := c.backend.ListTenants(r.Context(), sess.Token)
	c.observe("list_tenants", err)
	errMsg := ""
	if err != nil {
		if sessionGone(err) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		c.logger.Warn("failed to list tenants", "error", err)
		errMsg = backend.Detail(err, "Could not load organizations")
	}

	c.renderOrganizations(w, sess, tenants, activeTenant(r, tenants), errMsg, csrfToken)
}

// handleSelectTenant switches the active tenant
func (c *Console) handleSelectTenant(w http.ResponseWriter, r *http.Request) {
	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	id := r.FormValue("tenant_id")
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		http.Error(w, "Tenant ID required", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TenantCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	redirect := r.FormValue("redirect")
	if redirect == "" || !strings.HasPrefix(redirect, "/") {
		redirect = "/organizations"
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// handleWizardNew starts a create wizard at step 1
func (c *Console) handleWizardNew(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	c.setWizard(sess.ID, &wizardState{Step: wizardFirstStep})
	http.Redirect(w, r, "/organizations/wizard", http.StatusSeeOther)
}

// handleWizardEdit starts an edit wizard prefilled from the tenant record
func (c *Console) handleWizardEdit(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Tenant ID required", http.StatusBadRequest)
		return
	}

	tenants, err := c.backend.ListTenants(r.Context(), sess.Token)
	c.observe("list_tenants", err)
	if err != nil {
		c.logger.Warn("failed to list tenants", "error", err)
		http.Redirect(w, r, "/organizations", http.StatusSeeOther)
		return
	}

	var tenant *backend.Tenant
	for i := range tenants {
		if tenants[i].ID == id {
			tenant = &tenants[i]
			break
		}
	}
	if tenant == nil {
		http.Error(w, "Organization not found", http.StatusNotFound)
		return
	}

	c.setWizard(sess.ID, &wizardState{
		Step:             wizardFirstStep,
		TenantID:         tenant.ID,
		Name:             tenant.Name,
		FBPageURL:        strDeref(tenant.FBPageURL),
		InstaPageURL:     strDeref(tenant.InstaPageURL),
		FBVerifyToken:    strDeref(tenant.FBVerifyToken),
		FBAccessToken:    strDeref(tenant.FBAccessToken),
		InstaAccessToken: strDeref(tenant.InstaAccessToken),
		TelegramBotToken: strDeref(tenant.TelegramBotToken),
		TelegramChatID:   strDeref(tenant.TelegramChatID),
	})
	http.Redirect(w, r, "/organizations/wizard", http.StatusSeeOther)
}

// handleWizardPage renders the current wizard step
func (c *Console) handleWizardPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	ws := c.getWizard(sess.ID)
	if ws == nil {
		http.Redirect(w, r, "/organizations", http.StatusSeeOther)
		return
	}

	r, csrfToken := c.ensureCSRFToken(w, r)
	c.renderWizard(w, sess, ws, "", csrfToken)
}

// handleWizardNext saves the current step's fields and advances. Step 1 is
// the only gated step: a blank name blocks both Next and the final submit.
func (c *Console) handleWizardNext(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	ws := c.getWizard(sess.ID)
	if ws == nil {
		http.Redirect(w, r, "/organizations", http.StatusSeeOther)
		return
	}

	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	c.saveWizardStep(ws, r)

	if ws.Step == wizardFirstStep {
		if msg := validate.TenantName(ws.Name); msg != "" {
			c.setWizard(sess.ID, ws)
			_, csrfToken := c.ensureCSRFToken(w, r)
			c.renderWizard(w, sess, ws, msg, csrfToken)
			return
		}
	}

	if ws.Step < wizardLastStep {
		ws.Step++
		c.setWizard(sess.ID, ws)
		http.Redirect(w, r, "/organizations/wizard", http.StatusSeeOther)
		return
	}

	// Final submit re-checks the name before touching the backend
	if msg := validate.TenantName(ws.Name); msg != "" {
		ws.Step = wizardFirstStep
		c.setWizard(sess.ID, ws)
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderWizard(w, sess, ws, msg, csrfToken)
		return
	}

	c.setWizard(sess.ID, ws)
	c.submitWizard(w, r, ws)
}

// handleWizardBack saves the current step's fields and steps back, never
// below step 1.
func (c *Console) handleWizardBack(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	ws := c.getWizard(sess.ID)
	if ws == nil {
		http.Redirect(w, r, "/organizations", http.StatusSeeOther)
		return
	}

	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	c.saveWizardStep(ws, r)
	if ws.Step > wizardFirstStep {
		ws.Step--
	}
	c.setWizard(sess.ID, ws)
	http.Redirect(w, r, "/organizations/wizard", http.StatusSeeOther)
}

// handleWizardCancel discards the draft entirely
func (c *Console) handleWizardCancel(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	c.clearWizard(sess.ID)
	http.Redirect(w, r, "/organizations", http.StatusSeeOther)
}

// saveWizardStep copies the posted fields for the step being shown
func (c *Console) saveWizardStep(ws *wizardState, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		return
	}
	switch ws.Step {
	case 1:
		ws.Name = strings.TrimSpace(r.FormValue("name"))
	case 2:
		ws.FBPageURL = strings.TrimSpace(r.FormValue("fb_url"))
		ws.InstaPageURL = strings.TrimSpace(r.FormValue("insta_url"))
	case 3:
		ws.FBVerifyToken = strings.TrimSpace(r.FormValue("fb_verify_token"))
		ws.FBAccessToken = strings.TrimSpace(r.FormValue("fb_access_token"))
		ws.InstaAccessToken = strings.TrimSpace(r.FormValue("insta_access_token"))
	case 4:
		ws.TelegramBotToken = strings.TrimSpace(r.FormValue("telegram_bot_token"))
		ws.TelegramChatID = strings.TrimSpace(r.FormValue("telegram_chat_id"))
	}
}

// submitWizard creates or updates the tenant and resets the draft
func (c *Console) submitWizard(w http.ResponseWriter, r *http.Request, ws *wizardState) {
	sess := sessionFromContext(r)

	params := backend.TenantParams{
		Name:             ws.Name,
		FBPageURL:        optStr(ws.FBPageURL),
		InstaPageURL:     optStr(ws.InstaPageURL),
		FBVerifyToken:    optStr(ws.FBVerifyToken),
		FBAccessToken:    optStr(ws.FBAccessToken),
		InstaAccessToken: optStr(ws.InstaAccessToken),
		TelegramBotToken: optStr(ws.TelegramBotToken),
		TelegramChatID:   optStr(ws.TelegramChatID),
	}

	var (
		tenant *backend.Tenant
		err    error
	)
	if ws.TenantID == 0 {
		tenant, err = c.backend.CreateTenant(r.Context(), sess.Token, params)
		c.observe("create_tenant", err)
	} else {
		tenant, err = c.backend.UpdateTenant(r.Context(), sess.Token, ws.TenantID, params)
		c.observe("update_tenant", err)
	}
	if err != nil {
		c.logger.Error("failed to save organization", "error", err)
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderWizard(w, sess, ws, backend.Detail(err, "Could not save the organization"), csrfToken)
		return
	}

	// A newly created tenant becomes the active one
	if ws.TenantID == 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     TenantCookieName,
			Value:    strconv.FormatInt(tenant.ID, 10),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	c.clearWizard(sess.ID)
	c.logger.Info("organization saved", "tenant_id", tenant.ID, "name", tenant.Name)
	http.Redirect(w, r, "/organizations", http.StatusSeeOther)
}

// optStr returns nil for blank strings so optional fields serialize as null
func optStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
