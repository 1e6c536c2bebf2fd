// ABOUTME: In-memory chat transcripts, one per browser session
// ABOUTME: Optimistic append of user messages with pending/answered/failed resolution

package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message statuses. A user message starts pending the moment it is appended,
// before any network call, and resolves once the backend answers or fails.
const (
	StatusPending  = "pending"
	StatusAnswered = "answered"
	StatusFailed   = "failed"
)

// Message is one entry in a transcript, either side of the conversation.
type Message struct {
	ID        string
	Text      string
	IsUser    bool
	Status    string
	Sources   []string
	Timestamp time.Time
}

// transcript holds the messages for one session, pinned to the tenant that
// was active when the first message was sent.
type transcript struct {
	tenantID int64
	messages []Message
}

// History keeps every live transcript. Transcripts never survive a restart;
// conversation history worth keeping lives in the backend.
type History struct {
	mu          sync.Mutex
	transcripts map[string]*transcript
}

// NewHistory creates an empty transcript registry.
func NewHistory() *History {
	return &History{transcripts: make(map[string]*transcript)}
}

// Messages returns a copy of the session's transcript for the given tenant.
// Switching tenants discards whatever was said to the previous one.
func (h *History) Messages(sessionID string, tenantID int64) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	tr := h.transcripts[sessionID]
	if tr == nil {
		return nil
	}
	if tr.tenantID != tenantID {
		delete(h.transcripts, sessionID)
		return nil
	}

	out := make([]Message, len(tr.messages))
	copy(out, tr.messages)
	return out
}

// AppendUser records a user message as pending and returns it. This happens
// before the backend call so the message renders even if the call fails.
func (h *History) AppendUser(sessionID string, tenantID int64, text string) Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	tr := h.transcripts[sessionID]
	if tr == nil || tr.tenantID != tenantID {
		tr = &transcript{tenantID: tenantID}
		h.transcripts[sessionID] = tr
	}

	msg := Message{
		ID:        uuid.New().String(),
		Text:      text,
		IsUser:    true,
		Status:    StatusPending,
		Timestamp: time.Now(),
	}
	tr.messages = append(tr.messages, msg)
	return msg
}

// Answer resolves a pending user message and appends the assistant's reply.
func (h *History) Answer(sessionID, userMsgID, reply string, sources []string) Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	tr := h.transcripts[sessionID]
	if tr == nil {
		return Message{}
	}
	h.setStatus(tr, userMsgID, StatusAnswered)

	msg := Message{
		ID:        uuid.New().String(),
		Text:      reply,
		IsUser:    false,
		Status:    StatusAnswered,
		Sources:   sources,
		Timestamp: time.Now(),
	}
	tr.messages = append(tr.messages, msg)
	return msg
}

// Fail resolves a pending user message as failed and appends an error reply
// so the transcript shows what went wrong inline.
func (h *History) Fail(sessionID, userMsgID, errText string) Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	tr := h.transcripts[sessionID]
	if tr == nil {
		return Message{}
	}
	h.setStatus(tr, userMsgID, StatusFailed)

	msg := Message{
		ID:        uuid.New().String(),
		Text:      errText,
		IsUser:    false,
		Status:    StatusFailed,
		Timestamp: time.Now(),
	}
	tr.messages = append(tr.messages, msg)
	return msg
}

// Clear drops the session's transcript. Called on logout, on an explicit
// clear, and when a plan expires mid-session.
func (h *History) Clear(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.transcripts, sessionID)
}

func (h *History) setStatus(tr *transcript, msgID, status string) {
	for i := range tr.messages {
		if tr.messages[i].ID == msgID {
			tr.messages[i].Status = status
			return
		}
	}
}
