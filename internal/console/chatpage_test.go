// ABOUTME: Tests for the chat playground handlers
// ABOUTME: Covers no-tenant rejection, optimistic append, failure replies, and plan gating

package console

import (
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotstark/ragchat-console/internal/chat"
	"github.com/dotstark/ragchat-console/internal/store"
)

func chatBackend(askCalls *atomic.Int64, askStatus int, askBody string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tenants/":
			_, _ = w.Write([]byte(`[{"id": 7, "name": "Acme"}]`))
		case "/chatbot/ask":
			askCalls.Add(1)
			w.WriteHeader(askStatus)
			_, _ = w.Write([]byte(askBody))
		default:
			http.NotFound(w, r)
		}
	})
}

func TestChatSend_NoTenantMakesNoBackendCall(t *testing.T) {
	backendCalls := 0
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tenants/" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		backendCalls++
	}))
	sess := f.login(t, store.PlanStandard, nil)

	form := url.Values{"message": {"hello"}}
	rec := f.do(f.request(http.MethodPost, "/chat/send", form, sess))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Select an organization before chatting")
	assert.Zero(t, backendCalls, "sending without a tenant must not reach the chatbot")
}

func TestChatSend_AppendsAndAnswers(t *testing.T) {
	var askCalls atomic.Int64
	f := newFixture(t, chatBackend(&askCalls, http.StatusOK, `{"response": "We are **open** 9-5.", "sources": ["faq.pdf"]}`))
	sess := f.login(t, store.PlanStandard, nil)

	form := url.Values{"message": {"what are your hours?"}}
	rec := f.do(f.request(http.MethodPost, "/chat/send", form, sess))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, int64(1), askCalls.Load())

	msgs := f.history.Messages(sess.ID, 7)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].IsUser)
	assert.Equal(t, chat.StatusAnswered, msgs[0].Status)
	assert.Equal(t, "We are **open** 9-5.", msgs[1].Text)
	assert.Equal(t, []string{"faq.pdf"}, msgs[1].Sources)

	// The transcript page renders the reply as markdown
	page := f.do(f.request(http.MethodGet, "/chat", nil, sess))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "<strong>open</strong>")
	assert.Contains(t, page.Body.String(), "faq.pdf")
}

func TestChatSend_FailureKeepsUserMessage(t *testing.T) {
	var askCalls atomic.Int64
	f := newFixture(t, chatBackend(&askCalls, http.StatusBadGateway, `{"detail": "model unavailable"}`))
	sess := f.login(t, store.PlanStandard, nil)

	form := url.Values{"message": {"hello"}}
	rec := f.do(f.request(http.MethodPost, "/chat/send", form, sess))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	// The optimistic user message survives the failure
	msgs := f.history.Messages(sess.ID, 7)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].IsUser)
	assert.Equal(t, chat.StatusFailed, msgs[0].Status)
	assert.Equal(t, "model unavailable", msgs[1].Text)
}

func TestChatSend_BlankMessageRejected(t *testing.T) {
	var askCalls atomic.Int64
	f := newFixture(t, chatBackend(&askCalls, http.StatusOK, `{}`))
	sess := f.login(t, store.PlanStandard, nil)

	rec := f.do(f.request(http.MethodPost, "/chat/send", url.Values{"message": {"   "}}, sess))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a message")
	assert.Zero(t, askCalls.Load())
}

func TestChatClear(t *testing.T) {
	var askCalls atomic.Int64
	f := newFixture(t, chatBackend(&askCalls, http.StatusOK, `{}`))
	sess := f.login(t, store.PlanStandard, nil)
	f.history.AppendUser(sess.ID, 7, "hello")

	rec := f.do(f.request(http.MethodPost, "/chat/clear", url.Values{}, sess))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, f.history.Messages(sess.ID, 7))
}

func TestChat_ExpiredPlanRedirectsToPricingAndClears(t *testing.T) {
	var askCalls atomic.Int64
	f := newFixture(t, chatBackend(&askCalls, http.StatusOK, `{}`))

	past := time.Now().Add(-24 * time.Hour)
	sess := f.login(t, store.PlanFreeTrial, &past)
	f.history.AppendUser(sess.ID, 7, "stale message")

	rec := f.do(f.request(http.MethodGet, "/chat", nil, sess))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pricing", rec.Header().Get("Location"))
	assert.Empty(t, f.history.Messages(sess.ID, 7))

	rec = f.do(f.request(http.MethodPost, "/chat/send", url.Values{"message": {"hi"}}, sess))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pricing", rec.Header().Get("Location"))
	assert.Zero(t, askCalls.Load())
}

func TestChat_TenantSwitchClearsTranscript(t *testing.T) {
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tenants/" {
			_, _ = w.Write([]byte(`[{"id": 1, "name": "Acme"}, {"id": 2, "name": "Globex"}]`))
			return
		}
		http.NotFound(w, r)
	}))
	sess := f.login(t, store.PlanStandard, nil)
	f.history.AppendUser(sess.ID, 1, "hello acme")

	// View chat with tenant 2 active
	req := f.request(http.MethodGet, "/chat", nil, sess)
	req.AddCookie(&http.Cookie{Name: TenantCookieName, Value: "2"})
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hello acme")
	assert.Empty(t, f.history.Messages(sess.ID, 1), "old tenant transcript is discarded")
}
