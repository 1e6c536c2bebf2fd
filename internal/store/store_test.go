// ABOUTME: Tests for session persistence against both Store implementations
// ABOUTME: Covers create/get/update/delete and expiry cleanup

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories returns constructors for every Store implementation so the
// same behavior is verified against each.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"mock": func(t *testing.T) Store {
			return NewMockStore()
		},
	}
}

func testSession(id string) *Session {
	trialEnd := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)
	return &Session{
		ID:           id,
		Token:        "backend-bearer-token",
		Email:        "user@example.com",
		PlanType:     PlanFreeTrial,
		TrialEndDate: &trialEnd,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
}

func TestStore_CreateAndGetSession(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			want := testSession("sess-1")
			require.NoError(t, s.CreateSession(ctx, want))

			got, err := s.GetSession(ctx, "sess-1")
			require.NoError(t, err)
			assert.Equal(t, want.Token, got.Token)
			assert.Equal(t, want.Email, got.Email)
			assert.Equal(t, PlanFreeTrial, got.PlanType)
			require.NotNil(t, got.TrialEndDate)
			assert.True(t, want.TrialEndDate.Equal(*got.TrialEndDate))
		})
	}
}

func TestStore_GetSession_NotFound(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)

			_, err := s.GetSession(context.Background(), "missing")
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestStore_GetSession_Expired(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			sess := testSession("sess-expired")
			sess.ExpiresAt = time.Now().Add(-time.Minute)
			require.NoError(t, s.CreateSession(ctx, sess))

			_, err := s.GetSession(ctx, "sess-expired")
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestStore_UpdateSessionPlan(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			require.NoError(t, s.CreateSession(ctx, testSession("sess-2")))
			require.NoError(t, s.UpdateSessionPlan(ctx, "sess-2", PlanStandard, nil))

			got, err := s.GetSession(ctx, "sess-2")
			require.NoError(t, err)
			assert.Equal(t, PlanStandard, got.PlanType)
			assert.Nil(t, got.TrialEndDate)
		})
	}
}

func TestStore_UpdateSessionPlan_NotFound(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)

			err := s.UpdateSessionPlan(context.Background(), "missing", PlanStandard, nil)
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestStore_DeleteSession(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			require.NoError(t, s.CreateSession(ctx, testSession("sess-3")))
			require.NoError(t, s.DeleteSession(ctx, "sess-3"))

			_, err := s.GetSession(ctx, "sess-3")
			assert.ErrorIs(t, err, ErrSessionNotFound)

			// Deleting twice is not an error
			assert.NoError(t, s.DeleteSession(ctx, "sess-3"))
		})
	}
}

func TestStore_DeleteExpiredSessions(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			live := testSession("sess-live")
			require.NoError(t, s.CreateSession(ctx, live))

			dead := testSession("sess-dead")
			dead.ExpiresAt = time.Now().Add(-time.Hour)
			require.NoError(t, s.CreateSession(ctx, dead))

			ids, err := s.DeleteExpiredSessions(ctx, time.Now())
			require.NoError(t, err)
			assert.Equal(t, []string{"sess-dead"}, ids)

			_, err = s.GetSession(ctx, "sess-live")
			assert.NoError(t, err)
		})
	}
}

func TestStore_CountSessions(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			ctx := context.Background()

			count, err := s.CountSessions(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, count)

			require.NoError(t, s.CreateSession(ctx, testSession("sess-1")))
			require.NoError(t, s.CreateSession(ctx, testSession("sess-2")))

			count, err = s.CountSessions(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)
		})
	}
}
