// ABOUTME: Session lifecycle manager for the console
// ABOUTME: Login/logout/plan updates over the store, with trial expiry re-derived on every read

package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dotstark/ragchat-console/internal/store"
)

// Manager owns browser sessions: it creates them on login, destroys them on
// logout, and applies the plan derivation rule on every read.
type Manager struct {
	store    store.Store
	duration time.Duration
	logger   *slog.Logger
	evict    func(sessionID string)
}

// New creates a session manager backed by the given store. duration is how
// long a session lives before the user has to log in again.
func New(st store.Store, duration time.Duration) *Manager {
	return &Manager{
		store:    st,
		duration: duration,
		logger:   slog.Default().With("component", "session"),
	}
}

// SetEvictFunc registers a callback invoked with the ID of any session
// dropped outside an explicit logout, so callers can release per-session
// state they hold elsewhere. Must be set before the manager serves traffic.
func (m *Manager) SetEvictFunc(fn func(sessionID string)) {
	m.evict = fn
}

// DerivePlan applies the trial expiry rule: a free_trial plan whose trial end
// has passed reads as expired, independent of what was persisted.
func DerivePlan(planType string, trialEndDate *time.Time, now time.Time) string {
	if planType == store.PlanFreeTrial && trialEndDate != nil && now.After(*trialEndDate) {
		return store.PlanExpired
	}
	return planType
}

// TrialDaysLeft returns the number of whole or partial days remaining on a
// trial, rounded up. Zero or negative means the trial is over.
func TrialDaysLeft(trialEndDate *time.Time, now time.Time) int {
	if trialEndDate == nil {
		return 0
	}
	diff := trialEndDate.Sub(now)
	return int((diff + 24*time.Hour - 1) / (24 * time.Hour))
}

// Login persists a new session for a freshly authenticated user and returns
// it. The plan is re-derived before storing so a stale free_trial never
// survives a login.
func (m *Manager) Login(ctx context.Context, token, email, planType string, trialEndDate *time.Time) (*store.Session, error) {
	now := time.Now()
	sess := &store.Session{
		ID:           uuid.New().String(),
		Token:        token,
		Email:        email,
		PlanType:     DerivePlan(planType, trialEndDate, now),
		TrialEndDate: trialEndDate,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.duration),
	}

	if err := m.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	m.logger.Info("session created", "email", email, "plan", sess.PlanType)
	return sess, nil
}

// Get loads a session and re-derives the effective plan. A session whose
// backend token has already expired is dropped and reported as missing.
func (m *Manager) Get(ctx context.Context, id string) (*store.Session, error) {
	sess, err := m.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if tokenExpired(sess.Token, time.Now()) {
		m.logger.Info("backend token expired, dropping session", "email", sess.Email)
		_ = m.store.DeleteSession(ctx, id)
		if m.evict != nil {
			m.evict(id)
		}
		return nil, store.ErrSessionNotFound
	}

	sess.PlanType = DerivePlan(sess.PlanType, sess.TrialEndDate, time.Now())
	return sess, nil
}

// UpdatePlan rewrites the stored plan fields, e.g. after an upgrade.
func (m *Manager) UpdatePlan(ctx context.Context, id, planType string, trialEndDate *time.Time) error {
	if err := m.store.UpdateSessionPlan(ctx, id, planType, trialEndDate); err != nil {
		return fmt.Errorf("updating plan: %w", err)
	}
	m.logger.Info("plan updated", "session", id, "plan", planType)
	return nil
}

// Logout destroys the session. Destroying a session that is already gone is
// not an error.
func (m *Manager) Logout(ctx context.Context, id string) error {
	if err := m.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Sweep removes sessions past their expiry and evicts their per-session
// state. Intended to be called periodically by the server.
func (m *Manager) Sweep(ctx context.Context) {
	ids, err := m.store.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		m.logger.Warn("failed to sweep expired sessions", "error", err)
		return
	}
	for _, id := range ids {
		if m.evict != nil {
			m.evict(id)
		}
	}
	if len(ids) > 0 {
		m.logger.Info("swept expired sessions", "count", len(ids))
	}
}

// Count returns the number of stored sessions.
func (m *Manager) Count(ctx context.Context) (int, error) {
	return m.store.CountSessions(ctx)
}

// tokenExpired reports whether the backend bearer token carries an exp claim
// in the past. The signature is NOT verified — the backend does that on every
// call — this only lets the console drop sessions that are certain to fail
// upstream. Tokens that are not JWTs or carry no exp claim are assumed live.
func tokenExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}
