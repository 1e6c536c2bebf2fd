// ABOUTME: Store interface and data types for ragchat-console persistence
// ABOUTME: Defines the Session record and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a requested session does not exist
var ErrSessionNotFound = errors.New("session not found")

// Plan type constants mirroring the backend's subscription tiers
const (
	PlanFreeTrial = "free_trial"
	PlanStandard  = "standard"
	PlanExpired   = "expired"
)

// Session is the server-side record of one browser login. It mirrors the
// state the product keeps for a user between requests: the backend bearer
// token plus the plan flags that gate the UI.
type Session struct {
	ID           string
	Token        string // backend API bearer token
	Email        string
	PlanType     string // free_trial, standard, expired, or empty
	TrialEndDate *time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Store defines the interface for session persistence
type Store interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateSessionPlan(ctx context.Context, id, planType string, trialEndDate *time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) ([]string, error)
	CountSessions(ctx context.Context) (int, error)

	// Close releases any resources held by the store
	Close() error
}
