// ABOUTME: Template rendering functions for the console UI
// ABOUTME: Loads templates from the embedded filesystem and renders them

package console

import (
	"html/template"
	"net/http"
	"time"

	"github.com/dotstark/ragchat-console/internal/backend"
	"github.com/dotstark/ragchat-console/internal/session"
	"github.com/dotstark/ragchat-console/internal/store"
)

// pageData carries the fields every page template expects from base.html:
// nav state, plan badge, and the CSRF token for forms.
type pageData struct {
	Title         string
	ActivePage    string
	LoggedIn      bool
	Email         string
	Plan          string
	TrialDaysLeft int
	CSRFToken     string
}

// pageDataFor builds the shared layout fields. sess may be nil for
// anonymous visitors on the marketing pages.
func pageDataFor(title, activePage string, sess *store.Session, csrfToken string) pageData {
	pd := pageData{
		Title:      title,
		ActivePage: activePage,
		CSRFToken:  csrfToken,
	}
	if sess != nil {
		pd.LoggedIn = true
		pd.Email = sess.Email
		pd.Plan = sess.PlanType
		if sess.PlanType == store.PlanFreeTrial {
			pd.TrialDaysLeft = session.TrialDaysLeft(sess.TrialEndDate, time.Now())
		}
	}
	return pd
}

type homeData struct {
	pageData
}

type pricingData struct {
	pageData
	Error string
}

type authData struct {
	pageData
	Error  string
	Notice string
}

type dashboardData struct {
	pageData
	Stats overviewStats
	Error string
}

type organizationsData struct {
	pageData
	Tenants []backend.Tenant
	Active  *backend.Tenant
	Error   string
}

type wizardData struct {
	pageData
	Wizard *wizardState
	Error  string
}

type knowledgeData struct {
	pageData
	View knowledgeView
}

type chatData struct {
	pageData
	View chatView
}

func (c *Console) render(w http.ResponseWriter, data any, files ...string) {
	tmpl := template.Must(template.ParseFS(templateFS, files...))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		c.logger.Error("failed to render template", "error", err, "template", files[len(files)-1])
	}
}

func (c *Console) renderHomePage(w http.ResponseWriter, sess *store.Session) {
	data := homeData{pageData: pageDataFor("RAG Chat", "home", sess, "")}
	c.render(w, data, "templates/base.html", "templates/home.html")
}

func (c *Console) renderPricingPage(w http.ResponseWriter, sess *store.Session, errMsg, csrfToken string) {
	data := pricingData{
		pageData: pageDataFor("Pricing", "pricing", sess, csrfToken),
		Error:    errMsg,
	}
	c.render(w, data, "templates/base.html", "templates/pricing.html")
}

func (c *Console) renderLoginPage(w http.ResponseWriter, errMsg, notice, csrfToken string) {
	data := authData{
		pageData: pageDataFor("Log In", "login", nil, csrfToken),
		Error:    errMsg,
		Notice:   notice,
	}
	c.render(w, data, "templates/base.html", "templates/login.html")
}

func (c *Console) renderRegisterPage(w http.ResponseWriter, errMsg, csrfToken string) {
	data := authData{
		pageData: pageDataFor("Create Account", "register", nil, csrfToken),
		Error:    errMsg,
	}
	c.render(w, data, "templates/base.html", "templates/register.html")
}

func (c *Console) renderDashboard(w http.ResponseWriter, sess *store.Session, stats overviewStats, errMsg, csrfToken string) {
	data := dashboardData{
		pageData: pageDataFor("Dashboard", "dashboard", sess, csrfToken),
		Stats:    stats,
		Error:    errMsg,
	}
	c.render(w, data, "templates/base.html", "templates/dashboard.html")
}

func (c *Console) renderOrganizations(w http.ResponseWriter, sess *store.Session, tenants []backend.Tenant, active *backend.Tenant, errMsg, csrfToken string) {
	data := organizationsData{
		pageData: pageDataFor("Organizations", "organizations", sess, csrfToken),
		Tenants:  tenants,
		Active:   active,
		Error:    errMsg,
	}
	c.render(w, data, "templates/base.html", "templates/organizations.html")
}

func (c *Console) renderWizard(w http.ResponseWriter, sess *store.Session, ws *wizardState, errMsg, csrfToken string) {
	title := "New Organization"
	if ws.TenantID != 0 {
		title = "Edit Organization"
	}
	data := wizardData{
		pageData: pageDataFor(title, "organizations", sess, csrfToken),
		Wizard:   ws,
		Error:    errMsg,
	}
	c.render(w, data, "templates/base.html", "templates/wizard.html")
}

func (c *Console) renderKnowledge(w http.ResponseWriter, sess *store.Session, view knowledgeView, csrfToken string) {
	data := knowledgeData{
		pageData: pageDataFor("Knowledge Base", "knowledge", sess, csrfToken),
		View:     view,
	}
	c.render(w, data, "templates/base.html", "templates/knowledge.html")
}

func (c *Console) renderChatPage(w http.ResponseWriter, sess *store.Session, view chatView, csrfToken string) {
	data := chatData{
		pageData: pageDataFor("Chat Playground", "chat", sess, csrfToken),
		View:     view,
	}
	c.render(w, data, "templates/base.html", "templates/chat.html")
}
