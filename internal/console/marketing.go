// ABOUTME: Public marketing pages and the plan upgrade action
// ABOUTME: Home, pricing, and the upgrade handler that flips a session to standard

package console

import (
	"net/http"

	"github.com/dotstark/ragchat-console/internal/store"
)

// handleHome renders the marketing landing page
func (c *Console) handleHome(w http.ResponseWriter, r *http.Request) {
	sess, _ := c.getSession(r)
	c.renderHomePage(w, sess)
}

// handlePricing renders the pricing page. Logged-in visitors see an upgrade
// button; anonymous visitors get a signup link.
func (c *Console) handlePricing(w http.ResponseWriter, r *http.Request) {
	sess, _ := c.getSession(r)
	r, csrfToken := c.ensureCSRFToken(w, r)
	c.renderPricingPage(w, sess, "", csrfToken)
}

// handleUpgrade moves the session to the standard plan. Billing is handled
// out of band; this only flips the UI gates.
func (c *Console) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	sess := sessionFromContext(r)
	if err := c.sessions.UpdatePlan(r.Context(), sess.ID, store.PlanStandard, nil); err != nil {
		c.logger.Error("failed to upgrade plan", "error", err)
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderPricingPage(w, sess, "Upgrade failed, please try again", csrfToken)
		return
	}

	c.logger.Info("plan upgraded", "email", sess.Email)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
