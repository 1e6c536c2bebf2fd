// ABOUTME: Chat playground handlers for trying the bot against the active tenant
// ABOUTME: Optimistic transcript append with markdown-rendered assistant replies

package console

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/dotstark/ragchat-console/internal/backend"
	"github.com/dotstark/ragchat-console/internal/chat"
)

var markdown = goldmark.New()

// chatMessageView is one transcript entry prepared for the template.
type chatMessageView struct {
	IsUser  bool
	Status  string
	Text    string
	HTML    template.HTML // assistant replies only, rendered from markdown
	Sources []string
}

// chatView bundles everything the chat page template needs.
type chatView struct {
	Tenants  []backend.Tenant
	Active   *backend.Tenant
	Messages []chatMessageView
	Error    string
}

// handleChatPage renders the transcript for the active tenant. An expired
// plan loses chat access entirely.
func (c *Console) handleChatPage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	if planExpired(sess) {
		c.history.Clear(sess.ID)
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}

	r, csrfToken := c.ensureCSRFToken(w, r)
	view := c.loadChatView(r, sess.ID, sess.Token, "")
	c.renderChatPage(w, sess, view, csrfToken)
}

// handleChatSend appends the user message before asking the backend. With no
// active tenant the send is rejected locally and no backend call happens.
func (c *Console) handleChatSend(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	if planExpired(sess) {
		c.history.Clear(sess.ID)
		http.Redirect(w, r, "/pricing", http.StatusSeeOther)
		return
	}

	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	r, csrfToken := c.ensureCSRFToken(w, r)

	tenants, err := c.backend.ListTenants(r.Context(), sess.Token)
	c.observe("list_tenants", err)
	if err != nil {
		c.logger.Warn("failed to list tenants", "error", err)
		view := chatView{Error: backend.Detail(err, "Could not load organizations")}
		c.renderChatPage(w, sess, view, csrfToken)
		return
	}

	active := activeTenant(r, tenants)
	if active == nil {
		// No network call happens for this rejection
		view := c.buildChatView(tenants, nil, sess.ID, "Select an organization before chatting.")
		c.renderChatPage(w, sess, view, csrfToken)
		return
	}

	message := strings.TrimSpace(r.FormValue("message"))
	if message == "" {
		view := c.buildChatView(tenants, active, sess.ID, "Please enter a message.")
		c.renderChatPage(w, sess, view, csrfToken)
		return
	}

	// Optimistic append: the user message is in the transcript before the
	// backend is asked, and stays there if the ask fails.
	userMsg := c.history.AppendUser(sess.ID, active.ID, message)

	resp, err := c.backend.Ask(r.Context(), sess.Token, active.ID, message)
	c.observe("ask", err)
	if err != nil {
		c.logger.Warn("chat ask failed", "error", err, "tenant_id", active.ID)
		c.history.Fail(sess.ID, userMsg.ID, backend.Detail(err, "Sorry, something went wrong. Please try again."))
	} else {
		c.history.Answer(sess.ID, userMsg.ID, resp.Response, resp.Sources)
	}

	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

// handleChatClear wipes the transcript
func (c *Console) handleChatClear(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	c.history.Clear(sess.ID)
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

// loadChatView fetches tenants and builds the transcript view
func (c *Console) loadChatView(r *http.Request, sessionID, token, errMsg string) chatView {
	tenants, err := c.backend.ListTenants(r.Context(), token)
	c.observe("list_tenants", err)
	if err != nil {
		c.logger.Warn("failed to list tenants", "error", err)
		return chatView{Error: backend.Detail(err, "Could not load organizations")}
	}
	return c.buildChatView(tenants, activeTenant(r, tenants), sessionID, errMsg)
}

func (c *Console) buildChatView(tenants []backend.Tenant, active *backend.Tenant, sessionID, errMsg string) chatView {
	view := chatView{Tenants: tenants, Active: active, Error: errMsg}
	if active == nil {
		return view
	}

	for _, msg := range c.history.Messages(sessionID, active.ID) {
		mv := chatMessageView{
			IsUser:  msg.IsUser,
			Status:  msg.Status,
			Text:    msg.Text,
			Sources: msg.Sources,
		}
		if !msg.IsUser && msg.Status == chat.StatusAnswered {
			mv.HTML = renderMarkdown(msg.Text)
		}
		view.Messages = append(view.Messages, mv)
	}
	return view
}

// renderMarkdown converts an assistant reply to HTML. Goldmark escapes raw
// HTML by default, so backend output can't inject markup.
func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}
