// ABOUTME: Test fixture and handler tests for auth, dashboard, and plan upgrade
// ABOUTME: Runs the console against an httptest backend and a mock session store

package console

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotstark/ragchat-console/internal/backend"
	"github.com/dotstark/ragchat-console/internal/chat"
	"github.com/dotstark/ragchat-console/internal/session"
	"github.com/dotstark/ragchat-console/internal/store"
)

const testCSRF = "csrf-test-token"

type fixture struct {
	console  *Console
	sessions *session.Manager
	store    *store.MockStore
	history  *chat.History
	mux      *http.ServeMux
}

func newFixture(t *testing.T, backendHandler http.Handler) *fixture {
	t.Helper()

	srv := httptest.NewServer(backendHandler)
	t.Cleanup(srv.Close)

	st := store.NewMockStore()
	sessions := session.New(st, time.Hour)
	history := chat.NewHistory()
	c := New(sessions, backend.New(srv.URL, 5*time.Second), history, nil, Config{TrialDays: 7})
	sessions.SetEvictFunc(c.ReleaseSession)

	mux := http.NewServeMux()
	c.RegisterRoutes(mux)

	return &fixture{console: c, sessions: sessions, store: st, history: history, mux: mux}
}

// login creates a session directly on the manager, bypassing the backend.
func (f *fixture) login(t *testing.T, plan string, trialEnd *time.Time) *store.Session {
	t.Helper()
	sess, err := f.sessions.Login(context.Background(), "backend-token", "user@example.com", plan, trialEnd)
	require.NoError(t, err)
	return sess
}

// request builds a request with CSRF and session cookies attached.
func (f *fixture) request(method, target string, form url.Values, sess *store.Session) *http.Request {
	var body io.Reader
	if form != nil {
		form.Set("csrf_token", testCSRF)
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: testCSRF})
	if sess != nil {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.ID})
	}
	return req
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func futureTrial() *time.Time {
	end := time.Now().Add(5 * 24 * time.Hour)
	return &end
}

func TestRequireAuth_RedirectsWithoutSession(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())

	rec := f.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLogin_CreatesSessionAndRedirects(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_, _ = w.Write([]byte(`{"access_token": "tok-abc"}`))
	}))

	form := url.Values{"email": {"user@example.com"}, "password": {"Passw0rd"}}
	rec := f.do(f.request(http.MethodPost, "/login", form, nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookieName {
			sessionCookie = ck
		}
	}
	require.NotNil(t, sessionCookie, "login must set the session cookie")

	sess, err := f.sessions.Get(context.Background(), sessionCookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", sess.Token)
	assert.Equal(t, store.PlanFreeTrial, sess.PlanType)
	require.NotNil(t, sess.TrialEndDate)
}

func TestLogin_InvalidEmailNeverCallsBackend(t *testing.T) {
	calls := 0
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	form := url.Values{"email": {"not-an-email"}, "password": {"Passw0rd"}}
	rec := f.do(f.request(http.MethodPost, "/login", form, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "valid email")
	assert.Zero(t, calls, "validation failures must not reach the backend")
}

func TestLogin_BackendDetailSurfaces(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Incorrect email or password"}`))
	}))

	form := url.Values{"email": {"user@example.com"}, "password": {"Passw0rd"}}
	rec := f.do(f.request(http.MethodPost, "/login", form, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Incorrect email or password")
}

func TestRegister_WeakPasswordNeverCallsBackend(t *testing.T) {
	calls := 0
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	form := url.Values{
		"email":        {"user@example.com"},
		"password":     {"password"},
		"phone_number": {"+15551234567"},
	}
	rec := f.do(f.request(http.MethodPost, "/register", form, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password must be")
	assert.Zero(t, calls)
}

func TestRegister_RedirectsToLoginWithoutSession(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		_, _ = w.Write([]byte(`{"access_token": "tok-new"}`))
	}))

	form := url.Values{
		"email":        {"new@example.com"},
		"password":     {"Passw0rd"},
		"full_name":    {"New User"},
		"phone_number": {"+15551234567"},
	}
	rec := f.do(f.request(http.MethodPost, "/register", form, nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?registered=true", rec.Header().Get("Location"))

	// Registration never logs the user in; the trial is seeded at first login.
	for _, ck := range rec.Result().Cookies() {
		assert.NotEqual(t, SessionCookieName, ck.Name, "register must not create a session")
	}

	// The login page acknowledges the fresh account
	page := f.do(httptest.NewRequest(http.MethodGet, "/login?registered=true", nil))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Account created. Please log in.")
}

func TestLogin_SeedsTrialWindow(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token": "tok-abc"}`))
	}))

	form := url.Values{"email": {"user@example.com"}, "password": {"Passw0rd"}}
	rec := f.do(f.request(http.MethodPost, "/login", form, nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var sessionCookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookieName {
			sessionCookie = ck
		}
	}
	require.NotNil(t, sessionCookie)

	sess, err := f.sessions.Get(context.Background(), sessionCookie.Value)
	require.NoError(t, err)
	assert.Equal(t, store.PlanFreeTrial, sess.PlanType)
	require.NotNil(t, sess.TrialEndDate)
	// Trial end is seeded trial-days out from now
	assert.InDelta(t, 7*24*time.Hour, time.Until(*sess.TrialEndDate), float64(time.Minute))
}

func TestLogout_DestroysSessionAndTranscript(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())
	sess := f.login(t, store.PlanStandard, nil)
	f.history.AppendUser(sess.ID, 1, "hello")

	rec := f.do(f.request(http.MethodPost, "/logout", url.Values{}, sess))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	_, err := f.sessions.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	assert.Empty(t, f.history.Messages(sess.ID, 1))
}

func TestSweep_ReleasesExpiredSessionState(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())

	dead := &store.Session{
		ID:        "sess-old",
		Token:     "backend-token",
		Email:     "user@example.com",
		PlanType:  store.PlanStandard,
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.store.CreateSession(context.Background(), dead))
	f.history.AppendUser("sess-old", 1, "hello")
	f.console.setWizard("sess-old", &wizardState{Step: 2, Name: "Acme"})

	f.sessions.Sweep(context.Background())

	assert.Empty(t, f.history.Messages("sess-old", 1), "sweep must drop the transcript")
	assert.Nil(t, f.console.getWizard("sess-old"), "sweep must drop the wizard draft")
}

func TestUpgrade_MovesSessionToStandard(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())
	sess := f.login(t, store.PlanFreeTrial, futureTrial())

	rec := f.do(f.request(http.MethodPost, "/pricing/upgrade", url.Values{}, sess))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	got, err := f.sessions.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, store.PlanStandard, got.PlanType)
	assert.Nil(t, got.TrialEndDate)
}

func TestUpgrade_RequiresCSRF(t *testing.T) {
	f := newFixture(t, http.NotFoundHandler())
	sess := f.login(t, store.PlanFreeTrial, futureTrial())

	req := httptest.NewRequest(http.MethodPost, "/pricing/upgrade", strings.NewReader(""))
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.ID})
	rec := f.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDashboard_RendersCounters(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer backend-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/tenants/":
			_, _ = w.Write([]byte(`[{"id": 1, "name": "Acme"}]`))
		case "/users/me/conversation_count/":
			_, _ = w.Write([]byte(`{"count": 42}`))
		case "/users/me/knowledge_item_count/":
			_, _ = w.Write([]byte(`{"count": 9}`))
		case "/users/me/recent_activity/":
			_, _ = w.Write([]byte(`[{"id": "a1", "title": "Uploaded guide.pdf"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	sess := f.login(t, store.PlanStandard, nil)

	rec := f.do(f.request(http.MethodGet, "/dashboard", nil, sess))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "42")
	assert.Contains(t, body, "9")
	assert.Contains(t, body, "Uploaded guide.pdf")
}

func TestDashboard_SingleErrorString(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/me/conversation_count/" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail": "counter service down"}`))
			return
		}
		switch r.URL.Path {
		case "/tenants/":
			_, _ = w.Write([]byte(`[]`))
		case "/users/me/knowledge_item_count/":
			_, _ = w.Write([]byte(`{"count": 0}`))
		case "/users/me/recent_activity/":
			_, _ = w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	sess := f.login(t, store.PlanStandard, nil)

	rec := f.do(f.request(http.MethodGet, "/dashboard", nil, sess))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "counter service down")
}

func TestExpiredTrial_SessionReadsAsExpired(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tenants/":
			_, _ = w.Write([]byte(`[]`))
		default:
			_, _ = w.Write([]byte(`{"count": 0}`))
		}
	}))

	past := time.Now().Add(-24 * time.Hour)
	sess := f.login(t, store.PlanFreeTrial, &past)

	got, err := f.sessions.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, store.PlanExpired, got.PlanType)
}
