// ABOUTME: Dashboard overview handler
// ABOUTME: Fetches stat counters and recent activity from the backend concurrently

package console

import (
	"net/http"
	"sync"

	"github.com/dotstark/ragchat-console/internal/backend"
)

// overviewStats is everything the dashboard needs from the backend.
type overviewStats struct {
	TenantCount       int
	ConversationCount int
	KnowledgeCount    int
	Activity          []backend.ActivityItem
}

// handleDashboard renders the overview page. The four backend fetches run
// concurrently; any failure collapses to one error string with no retry.
func (c *Console) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	r, csrfToken := c.ensureCSRFToken(w, r)

	var (
		mu       sync.Mutex
		stats    overviewStats
		fetchErr error
	)
	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if fetchErr == nil {
			fetchErr = err
		}
	}

	ctx := r.Context()
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		tenants, err := c.backend.ListTenants(ctx, sess.Token)
		c.observe("list_tenants", err)
		if err != nil {
			setErr(err)
			return
		}
		mu.Lock()
		stats.TenantCount = len(tenants)
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		count, err := c.backend.ConversationCount(ctx, sess.Token)
		c.observe("conversation_count", err)
		if err != nil {
			setErr(err)
			return
		}
		mu.Lock()
		stats.ConversationCount = count
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		count, err := c.backend.KnowledgeItemCount(ctx, sess.Token)
		c.observe("knowledge_item_count", err)
		if err != nil {
			setErr(err)
			return
		}
		mu.Lock()
		stats.KnowledgeCount = count
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		activity, err := c.backend.RecentActivity(ctx, sess.Token)
		c.observe("recent_activity", err)
		if err != nil {
			setErr(err)
			return
		}
		mu.Lock()
		stats.Activity = activity
		mu.Unlock()
	}()

	wg.Wait()

	errMsg := ""
	if fetchErr != nil {
		c.logger.Warn("dashboard fetch failed", "error", fetchErr)
		errMsg = backend.Detail(fetchErr, "Could not load dashboard data")
	}

	c.renderDashboard(w, sess, stats, errMsg, csrfToken)
}
