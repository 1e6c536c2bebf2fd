// ABOUTME: Login, registration, and logout handlers
// ABOUTME: Field validation runs before any backend call; sessions seed the trial plan

package console

import (
	"net/http"
	"time"

	"github.com/dotstark/ragchat-console/internal/backend"
	"github.com/dotstark/ragchat-console/internal/store"
	"github.com/dotstark/ragchat-console/internal/validate"
)

// handleLoginPage renders the login page
func (c *Console) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go straight to the dashboard
	if _, err := c.getSession(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	notice := ""
	if r.URL.Query().Get("registered") == "true" {
		notice = "Account created. Please log in."
	}

	r, csrfToken := c.ensureCSRFToken(w, r)
	c.renderLoginPage(w, "", notice, csrfToken)
}

// handleLogin processes the login form
func (c *Console) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLoginPage(w, "Invalid form data", "", csrfToken)
		return
	}

	if !c.validateCSRF(r) {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLoginPage(w, "Invalid request, please try again", "", csrfToken)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	// Field checks happen before any network call
	if msg := validate.Email(email); msg != "" {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLoginPage(w, msg, "", csrfToken)
		return
	}
	if password == "" {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLoginPage(w, "Password is required", "", csrfToken)
		return
	}

	auth, err := c.backend.Login(r.Context(), email, password)
	c.observe("login", err)
	if err != nil {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLoginPage(w, backend.Detail(err, "Invalid email or password"), "", csrfToken)
		return
	}

	// The backend doesn't report plan state, so a fresh login seeds the trial
	// window; Login re-derives before storing so a past end date lands as
	// expired rather than free_trial.
	trialEnd := time.Now().Add(time.Duration(c.config.TrialDays) * 24 * time.Hour)
	sess, err := c.sessions.Login(r.Context(), auth.AccessToken, email, store.PlanFreeTrial, &trialEnd)
	if err != nil {
		c.logger.Error("failed to create session", "error", err)
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderLoginPage(w, "An error occurred", "", csrfToken)
		return
	}

	c.setSessionCookie(w, r, sess)
	c.logger.Info("login successful", "email", email)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleRegisterPage renders the signup page
func (c *Console) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, err := c.getSession(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	r, csrfToken := c.ensureCSRFToken(w, r)
	c.renderRegisterPage(w, "", csrfToken)
}

// handleRegister processes the signup form
func (c *Console) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderRegisterPage(w, "Invalid form data", csrfToken)
		return
	}

	if !c.validateCSRF(r) {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderRegisterPage(w, "Invalid request, please try again", csrfToken)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	fullName := r.FormValue("full_name")
	phone := r.FormValue("phone_number")

	// All field checks happen before any network call
	for _, msg := range []string{
		validate.Email(email),
		validate.Password(password),
		validate.Phone(phone),
	} {
		if msg != "" {
			_, csrfToken := c.ensureCSRFToken(w, r)
			c.renderRegisterPage(w, msg, csrfToken)
			return
		}
	}

	_, err := c.backend.Register(r.Context(), backend.RegisterParams{
		Email:       email,
		Password:    password,
		FullName:    fullName,
		PhoneNumber: phone,
	})
	c.observe("register", err)
	if err != nil {
		_, csrfToken := c.ensureCSRFToken(w, r)
		c.renderRegisterPage(w, backend.Detail(err, "Registration failed, please try again"), csrfToken)
		return
	}

	// No session yet: the user signs in with the new credentials, and that
	// login seeds the free trial window.
	c.logger.Info("account registered", "email", email)
	http.Redirect(w, r, "/login?registered=true", http.StatusSeeOther)
}

// handleLogout destroys the session and clears all console cookies
func (c *Console) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		// Don't block logout on a bad token, just note it
		if !c.validateCSRF(r) {
			c.logger.Warn("logout request with invalid CSRF token")
		}
	}

	sess := sessionFromContext(r)
	if err := c.sessions.Logout(r.Context(), sess.ID); err != nil {
		c.logger.Error("failed to delete session", "error", err)
	}
	c.history.Clear(sess.ID)
	c.clearWizard(sess.ID)

	clearCookie(w, SessionCookieName)
	clearCookie(w, CSRFCookieName)
	clearCookie(w, TenantCookieName)

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
