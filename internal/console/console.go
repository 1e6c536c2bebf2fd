// ABOUTME: Web console package for the RAG chat admin UI
// ABOUTME: Routes, authentication middleware, CSRF protection, and shared helpers

package console

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/dotstark/ragchat-console/internal/backend"
	"github.com/dotstark/ragchat-console/internal/chat"
	"github.com/dotstark/ragchat-console/internal/metrics"
	"github.com/dotstark/ragchat-console/internal/session"
	"github.com/dotstark/ragchat-console/internal/store"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "ragchat_session"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "ragchat_csrf"

	// TenantCookieName holds the active tenant selection
	TenantCookieName = "ragchat_tenant"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const sessionContextKey contextKey = "console_session"
const csrfContextKey contextKey = "csrf_token"

// Config holds console configuration
type Config struct {
	// BaseURL is the external URL of the console
	BaseURL string

	// TrialDays is how long a new account's free trial runs
	TrialDays int
}

// Console handles all web UI routes.
type Console struct {
	sessions *session.Manager
	backend  *backend.Client
	history  *chat.History
	metrics  *metrics.Metrics
	config   Config
	logger   *slog.Logger

	wizardMu sync.Mutex
	wizards  map[string]*wizardState
}

// New creates a console handler. metrics may be nil when scraping is disabled.
func New(sessions *session.Manager, client *backend.Client, history *chat.History, m *metrics.Metrics, cfg Config) *Console {
	return &Console{
		sessions: sessions,
		backend:  client,
		history:  history,
		metrics:  m,
		config:   cfg,
		logger:   slog.Default().With("component", "console"),
		wizards:  make(map[string]*wizardState),
	}
}

// RegisterRoutes registers all console routes on the given mux
func (c *Console) RegisterRoutes(mux *http.ServeMux) {
	// Public routes (no auth required)
	mux.HandleFunc("GET /{$}", c.handleHome)
	mux.HandleFunc("GET /pricing", c.handlePricing)
	mux.HandleFunc("GET /login", c.handleLoginPage)
	mux.HandleFunc("POST /login", c.handleLogin)
	mux.HandleFunc("GET /register", c.handleRegisterPage)
	mux.HandleFunc("POST /register", c.handleRegister)

	// Protected routes (auth required)
	mux.HandleFunc("POST /logout", c.requireAuth(c.handleLogout))
	mux.HandleFunc("POST /pricing/upgrade", c.requireAuth(c.handleUpgrade))
	mux.HandleFunc("GET /dashboard", c.requireAuth(c.handleDashboard))

	// Organizations and the setup wizard
	mux.HandleFunc("GET /organizations", c.requireAuth(c.handleOrganizations))
	mux.HandleFunc("POST /organizations/select", c.requireAuth(c.handleSelectTenant))
	mux.HandleFunc("GET /organizations/new", c.requireAuth(c.handleWizardNew))
	mux.HandleFunc("GET /organizations/{id}/edit", c.requireAuth(c.handleWizardEdit))
	mux.HandleFunc("GET /organizations/wizard", c.requireAuth(c.handleWizardPage))
	mux.HandleFunc("POST /organizations/wizard/next", c.requireAuth(c.handleWizardNext))
	mux.HandleFunc("POST /organizations/wizard/back", c.requireAuth(c.handleWizardBack))
	mux.HandleFunc("POST /organizations/wizard/cancel", c.requireAuth(c.handleWizardCancel))

	// Knowledge base
	mux.HandleFunc("GET /knowledge", c.requireAuth(c.handleKnowledge))
	mux.HandleFunc("POST /knowledge/url", c.requireAuth(c.handleKnowledgeAddURL))
	mux.HandleFunc("POST /knowledge/upload", c.requireAuth(c.handleKnowledgeUpload))
	mux.HandleFunc("POST /knowledge/{id}/delete", c.requireAuth(c.handleKnowledgeDelete))

	// Chat playground
	mux.HandleFunc("GET /chat", c.requireAuth(c.handleChatPage))
	mux.HandleFunc("POST /chat/send", c.requireAuth(c.handleChatSend))
	mux.HandleFunc("POST /chat/clear", c.requireAuth(c.handleChatClear))

	c.logger.Info("console routes registered")
}

// requireAuth wraps a handler to require a live session
func (c *Console) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := c.getSession(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next(w, r.WithContext(ctx))
	}
}

// getSession loads the session referenced by the cookie, with the plan
// already re-derived.
func (c *Console) getSession(r *http.Request) (*store.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}
	return c.sessions.Get(r.Context(), cookie.Value)
}

// sessionFromContext retrieves the session placed by requireAuth
func sessionFromContext(r *http.Request) *store.Session {
	sess, _ := r.Context().Value(sessionContextKey).(*store.Session)
	return sess
}

// getCSRFToken retrieves the CSRF token from the request context
func getCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey).(string)
	return token
}

// ensureCSRFToken generates a CSRF token if not present and adds it to context
func (c *Console) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		ctx := context.WithValue(r.Context(), csrfContextKey, cookie.Value)
		return r.WithContext(ctx), cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		c.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // Will fail validation, but won't crash
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	ctx := context.WithValue(r.Context(), csrfContextKey, token)
	return r.WithContext(ctx), token
}

// validateCSRF checks the CSRF token from form against cookie
func (c *Console) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	if formToken == "" {
		// Also check header for htmx requests
		formToken = r.Header.Get("X-CSRF-Token")
	}

	return formToken != "" && formToken == cookie.Value
}

// setSessionCookie points the browser at a freshly created session
func (c *Console) setSessionCookie(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearCookie expires a cookie by name
func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// activeTenant resolves the tenant cookie against the user's tenants. Falls
// back to the first tenant when the cookie is missing or stale.
func activeTenant(r *http.Request, tenants []backend.Tenant) *backend.Tenant {
	if len(tenants) == 0 {
		return nil
	}
	cookie, err := r.Cookie(TenantCookieName)
	if err == nil {
		if id, perr := strconv.ParseInt(cookie.Value, 10, 64); perr == nil {
			for i := range tenants {
				if tenants[i].ID == id {
					return &tenants[i]
				}
			}
		}
	}
	return &tenants[0]
}

// ReleaseSession drops the in-memory state held for a session: its chat
// transcript and any wizard draft. Wired as the session manager's evict
// callback so expired sessions don't pin memory.
func (c *Console) ReleaseSession(sessionID string) {
	c.history.Clear(sessionID)
	c.clearWizard(sessionID)
}

// observe records a backend call on the metrics registry when one is wired.
func (c *Console) observe(operation string, err error) {
	if c.metrics != nil {
		c.metrics.ObserveBackendCall(operation, err)
	}
}

// planExpired reports whether the session's plan blocks paid features.
func planExpired(sess *store.Session) bool {
	return sess.PlanType == store.PlanExpired
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// sessionGone reports whether the backend rejected the bearer token, meaning
// the login is dead upstream and the user has to sign in again.
func sessionGone(err error) bool {
	var apiErr *backend.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
