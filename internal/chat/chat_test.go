// ABOUTME: Tests for chat transcript lifecycle
// ABOUTME: Covers optimistic append, answer/fail resolution, and tenant-switch clearing

package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendUser_IsPendingBeforeResolution(t *testing.T) {
	h := NewHistory()

	msg := h.AppendUser("sess-1", 1, "hello")
	assert.True(t, msg.IsUser)
	assert.Equal(t, StatusPending, msg.Status)

	msgs := h.Messages("sess-1", 1)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, StatusPending, msgs[0].Status)
}

func TestAnswer_ResolvesUserMessageAndAppendsReply(t *testing.T) {
	h := NewHistory()

	user := h.AppendUser("sess-1", 1, "what are your hours?")
	reply := h.Answer("sess-1", user.ID, "We are open 9-5.", []string{"faq.pdf"})

	assert.False(t, reply.IsUser)
	assert.Equal(t, []string{"faq.pdf"}, reply.Sources)

	msgs := h.Messages("sess-1", 1)
	require.Len(t, msgs, 2)
	assert.Equal(t, StatusAnswered, msgs[0].Status)
	assert.Equal(t, StatusAnswered, msgs[1].Status)
}

func TestFail_MarksUserMessageFailed(t *testing.T) {
	h := NewHistory()

	user := h.AppendUser("sess-1", 1, "hello")
	h.Fail("sess-1", user.ID, "Sorry, something went wrong.")

	msgs := h.Messages("sess-1", 1)
	require.Len(t, msgs, 2)
	assert.Equal(t, StatusFailed, msgs[0].Status)
	assert.Equal(t, StatusFailed, msgs[1].Status)
	assert.Equal(t, "Sorry, something went wrong.", msgs[1].Text)
}

func TestMessages_TenantSwitchClearsTranscript(t *testing.T) {
	h := NewHistory()

	h.AppendUser("sess-1", 1, "hello tenant one")
	require.Len(t, h.Messages("sess-1", 1), 1)

	// Reading as a different tenant discards the old transcript.
	assert.Empty(t, h.Messages("sess-1", 2))
	assert.Empty(t, h.Messages("sess-1", 1))
}

func TestAppendUser_TenantSwitchStartsFresh(t *testing.T) {
	h := NewHistory()

	h.AppendUser("sess-1", 1, "hello tenant one")
	h.AppendUser("sess-1", 2, "hello tenant two")

	msgs := h.Messages("sess-1", 2)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello tenant two", msgs[0].Text)
}

func TestClear(t *testing.T) {
	h := NewHistory()

	h.AppendUser("sess-1", 1, "hello")
	h.Clear("sess-1")
	assert.Empty(t, h.Messages("sess-1", 1))
}

func TestTranscriptsAreIsolatedPerSession(t *testing.T) {
	h := NewHistory()

	h.AppendUser("sess-1", 1, "from session one")
	h.AppendUser("sess-2", 1, "from session two")

	msgs := h.Messages("sess-2", 1)
	require.Len(t, msgs, 1)
	assert.Equal(t, "from session two", msgs[0].Text)
}
